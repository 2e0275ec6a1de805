package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
	"github.com/wolfman30/clinic-admin-platform/internal/staff"
	"github.com/wolfman30/clinic-admin-platform/internal/validation"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// AddReceptionistRequest is the POST /admin/add-receptionist body.
type AddReceptionistRequest struct {
	FullName     string       `json:"fullName" validate:"required,min=2"`
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=6"`
	Gender       string       `json:"gender" validate:"required,oneof=Male Female Other"`
	Contact      string       `json:"contact" validate:"required,min=5"`
	Address      string       `json:"address" validate:"required,min=5"`
	SalaryAmount staff.Amount `json:"salaryAmount" validate:"gt=0,lt=10000000000"`
}

func (r *AddReceptionistRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *AddReceptionistRequest) ValidationMessages() map[string]string {
	return receptionistMessages
}

// EditReceptionistRequest is the PUT /admin/edit-receptionist/{publicId} body.
type EditReceptionistRequest struct {
	FullName     string        `json:"fullName" validate:"omitempty,min=2"`
	Email        string        `json:"email" validate:"omitempty,email"`
	Password     string        `json:"password" validate:"omitempty,min=6"`
	Gender       string        `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Contact      string        `json:"contact" validate:"omitempty,min=5"`
	Address      string        `json:"address" validate:"omitempty,min=5"`
	SalaryAmount *staff.Amount `json:"salaryAmount" validate:"omitempty,gt=0,lt=10000000000"`
}

func (r *EditReceptionistRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	if r.SalaryAmount != nil && *r.SalaryAmount == 0 {
		r.SalaryAmount = nil
	}
}

func (r *EditReceptionistRequest) ValidationMessages() map[string]string {
	return receptionistMessages
}

var receptionistMessages = map[string]string{
	"fullName.min":      "Full name too short",
	"fullName.required": "Full name too short",
	"email.email":       "Invalid email",
	"email.required":    "Invalid email",
	"password.min":      "Password must be at least 6 characters",
	"password.required": "Password must be at least 6 characters",
	"salaryAmount.gt":   "Salary must be a positive number",
	"salaryAmount.lt":   "Salary is too large",
}

// ReceptionistCreatedView is the data object returned after onboarding.
type ReceptionistCreatedView struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"publicId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	Address   string    `json:"address"`
	Gender    string    `json:"gender"`
	Salary    float64   `json:"salary"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReceptionistListItem is one row of GET /admin/receptionists.
type ReceptionistListItem struct {
	PublicID  string   `json:"publicId"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Gender    string   `json:"gender"`
	Contact   string   `json:"contact"`
	Address   string   `json:"address"`
	Salary    *float64 `json:"salary"`
	IsDeleted bool     `json:"isDeleted"`
}

// ReceptionistDetailView is the full nested receptionist record.
type ReceptionistDetailView struct {
	ID        int64        `json:"id"`
	PublicID  string       `json:"publicId"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Gender    string       `json:"gender"`
	Contact   string       `json:"contact"`
	Address   string       `json:"address"`
	IsDeleted bool         `json:"isDeleted"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Role      RoleView     `json:"role"`
	Salaries  []SalaryView `json:"salaries"`
}

// AdminReceptionistsHandler serves the receptionist record endpoints.
type AdminReceptionistsHandler struct {
	staffHandler
}

func NewAdminReceptionistsHandler(service *staff.Service, validator *validation.Validator, exposeErrors bool, logger *logging.Logger) *AdminReceptionistsHandler {
	return &AdminReceptionistsHandler{staffHandler: newStaffHandler(service, validator, exposeErrors, logger)}
}

// Add handles POST /admin/add-receptionist.
func (h *AdminReceptionistsHandler) Add(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Body[AddReceptionistRequest](h.validator, w, r)
	if !ok {
		return
	}
	m, err := h.service.Create(r.Context(), staff.CreateInput{
		Role:     staff.RoleReceptionist,
		Name:     req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Contact:  req.Contact,
		Address:  req.Address,
		Salary:   float64(req.SalaryAmount),
	})
	switch {
	case isConflict(err):
		respond.JSON(w, http.StatusConflict, map[string]any{"success": false, "message": msgEmailTaken})
		return
	case err != nil:
		h.logger.Error("staff request failed", "op", "add receptionist", "error", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Internal Server Error."})
		return
	}

	view := ReceptionistCreatedView{
		ID:        m.User.ID,
		PublicID:  m.User.PublicID,
		FullName:  m.User.Name,
		Email:     m.User.Email,
		Contact:   m.User.Contact,
		Address:   m.User.Address,
		Gender:    m.User.Gender,
		Role:      m.User.Role.Name,
		CreatedAt: m.User.CreatedAt,
	}
	if s, ok := m.CurrentSalary(); ok {
		view.Salary = s.Amount
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Receptionist added successfully.",
		"data":    view,
	})
}

// Count handles GET /admin/receptionists/count.
func (h *AdminReceptionistsHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context(), staff.RoleReceptionist)
	switch {
	case errors.Is(err, staff.ErrRoleNotFound):
		respond.Message(w, http.StatusNotFound, "Receptionist role not found. Please ensure roles are initialized.")
		return
	case err != nil:
		h.internalError(w, "count receptionists", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":            "Receptionist count retrieved successfully.",
		"totalReceptionists": n,
	})
}

// Get handles GET /admin/receptionist/{publicId}.
func (h *AdminReceptionistsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), staff.RoleReceptionist, publicIDParam(r))
	switch {
	case isNotFound(err):
		respond.Message(w, http.StatusNotFound, "Receptionist not found.")
		return
	case err != nil:
		h.internalError(w, "get receptionist", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"receptionist": ReceptionistDetailView{
		ID:        m.User.ID,
		PublicID:  m.User.PublicID,
		Name:      m.User.Name,
		Email:     m.User.Email,
		Gender:    m.User.Gender,
		Contact:   m.User.Contact,
		Address:   m.User.Address,
		IsDeleted: m.User.IsDeleted,
		CreatedAt: m.User.CreatedAt,
		UpdatedAt: m.User.UpdatedAt,
		Role:      RoleView{ID: m.User.Role.ID, Name: m.User.Role.Name, Prefix: m.User.Role.Prefix},
		Salaries:  salaryViews(m.Salaries),
	}})
}

// List handles GET /admin/receptionists.
func (h *AdminReceptionistsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listFilter(r, staff.RoleReceptionist))
	switch {
	case errors.Is(err, staff.ErrRoleNotFound):
		respond.Message(w, http.StatusNotFound, "Receptionist role not found. Please ensure roles are initialized.")
		return
	case err != nil:
		h.internalError(w, "list receptionists", err)
		return
	}
	items := make([]ReceptionistListItem, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, ReceptionistListItem{
			PublicID:  s.User.PublicID,
			Name:      s.User.Name,
			Email:     s.User.Email,
			Gender:    s.User.Gender,
			Contact:   s.User.Contact,
			Address:   s.User.Address,
			Salary:    s.LatestSalary,
			IsDeleted: s.User.IsDeleted,
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":    "Receptionists retrieved successfully.",
		"pagination": page.Pagination,
		"data":       items,
	})
}

// Edit handles PUT /admin/edit-receptionist/{publicId}.
func (h *AdminReceptionistsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Body[EditReceptionistRequest](h.validator, w, r)
	if !ok {
		return
	}
	in := staff.UpdateInput{
		Name:     req.FullName,
		Email:    req.Email,
		Gender:   req.Gender,
		Contact:  req.Contact,
		Address:  req.Address,
		Password: req.Password,
	}
	if req.SalaryAmount != nil {
		amount := float64(*req.SalaryAmount)
		in.Salary = &amount
	}

	res, err := h.service.Update(r.Context(), staff.RoleReceptionist, publicIDParam(r), in)
	switch {
	case isNotFound(err):
		respond.Message(w, http.StatusNotFound, "Receptionist not found.")
		return
	case isConflict(err):
		respond.Message(w, http.StatusConflict, msgEmailTaken)
		return
	case err != nil:
		h.internalError(w, "edit receptionist", err)
		return
	}
	if !res.Changed() {
		respond.Message(w, http.StatusOK, "No changes detected.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Receptionist updated successfully.",
		"updates": h.updatesBody(res),
	})
}

// Delete handles DELETE /admin/delete-receptionist/{publicId}.
func (h *AdminReceptionistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Delete(r.Context(), staff.RoleReceptionist, publicIDParam(r))
	switch {
	case isNotFound(err):
		respond.JSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Receptionist not found."})
		return
	case err != nil:
		h.logger.Error("staff request failed", "op", "delete receptionist", "error", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Internal Server Error while deleting Receptionist."})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Receptionist deleted successfully (soft delete applied).",
		"data":    DeletedView{PublicID: u.PublicID, Name: u.Name, IsDeleted: u.IsDeleted, DeletedAt: u.UpdatedAt},
	})
}
