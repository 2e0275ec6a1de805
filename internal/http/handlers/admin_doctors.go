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

// AddDoctorRequest is the POST /admin/add-doctor body.
type AddDoctorRequest struct {
	FullName     string       `json:"fullName" validate:"required,min=2"`
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=6"`
	Gender       string       `json:"gender" validate:"required,oneof=Male Female Other"`
	Contact      string       `json:"contact" validate:"required,min=5"`
	Address      string       `json:"address" validate:"required,min=5"`
	LatestDegree string       `json:"latestDegree" validate:"required"`
	Designation  string       `json:"designation" validate:"required,oneof=Intern Senior"`
	Salary       staff.Amount `json:"salary" validate:"gt=0,lt=10000000000"`
	StartTime    string       `json:"startTime" validate:"required,hhmm"`
	EndTime      string       `json:"endTime" validate:"required,hhmm"`
}

func (r *AddDoctorRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *AddDoctorRequest) ValidationMessages() map[string]string {
	return doctorMessages
}

// EditDoctorRequest is the PUT /admin/edit-doctor/{publicId} body. Every field
// is optional; empty values are treated as absent.
type EditDoctorRequest struct {
	FullName     string        `json:"fullName" validate:"omitempty,min=2"`
	Email        string        `json:"email" validate:"omitempty,email"`
	Password     string        `json:"password" validate:"omitempty,min=6"`
	Gender       string        `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Contact      string        `json:"contact" validate:"omitempty,min=5"`
	Address      string        `json:"address" validate:"omitempty,min=5"`
	LatestDegree string        `json:"latestDegree"`
	Designation  string        `json:"designation" validate:"omitempty,oneof=Intern Senior"`
	Salary       *staff.Amount `json:"salary" validate:"omitempty,gt=0,lt=10000000000"`
	StartTime    string        `json:"startTime" validate:"omitempty,hhmm"`
	EndTime      string        `json:"endTime" validate:"omitempty,hhmm"`
}

func (r *EditDoctorRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.LatestDegree = strings.TrimSpace(r.LatestDegree)
	if r.Salary != nil && *r.Salary == 0 {
		r.Salary = nil
	}
}

func (r *EditDoctorRequest) ValidationMessages() map[string]string {
	return doctorMessages
}

var doctorMessages = map[string]string{
	"fullName.min":          "Full name too short",
	"fullName.required":     "Full name too short",
	"email.email":           "Invalid email",
	"email.required":        "Invalid email",
	"password.min":          "Password must be at least 6 characters",
	"password.required":     "Password must be at least 6 characters",
	"latestDegree.required": "Latest degree is required",
	"designation.required":  "Designation is required",
	"salary.gt":             "Salary must be a positive number",
	"salary.lt":             "Salary is too large",
	"startTime.required":    "startTime must be in HH:MM format",
	"startTime.hhmm":        "startTime must be in HH:MM format",
	"endTime.required":      "endTime must be in HH:MM format",
	"endTime.hhmm":          "endTime must be in HH:MM format",
}

// DoctorCreatedView is the flattened doctor returned after onboarding.
type DoctorCreatedView struct {
	PublicID     string  `json:"publicId"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Gender       string  `json:"gender"`
	Contact      string  `json:"contact"`
	Address      string  `json:"address"`
	Degree       string  `json:"degree"`
	Designation  string  `json:"designation"`
	WorkingStart *string `json:"workingStart"`
	WorkingEnd   *string `json:"workingEnd"`
	Salary       float64 `json:"salary"`
	IsDeleted    bool    `json:"isDeleted"`
}

// DoctorListItem is one row of GET /admin/doctors.
type DoctorListItem struct {
	PublicID     string   `json:"publicId"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Gender       string   `json:"gender"`
	Contact      string   `json:"contact"`
	Address      string   `json:"address"`
	Degree       *string  `json:"degree"`
	Designation  *string  `json:"designation"`
	WorkingStart *string  `json:"workingStart"`
	WorkingEnd   *string  `json:"workingEnd"`
	Salary       *float64 `json:"salary"`
	IsDeleted    bool     `json:"isDeleted"`
}

// DoctorDetailsView is the doctor extension inside DoctorDetailView.
type DoctorDetailsView struct {
	ID           int64   `json:"id"`
	Degree       string  `json:"degree"`
	Designation  string  `json:"designation"`
	WorkingStart *string `json:"workingStart"`
	WorkingEnd   *string `json:"workingEnd"`
}

// DoctorDetailView is the full nested doctor record.
type DoctorDetailView struct {
	ID            int64              `json:"id"`
	PublicID      string             `json:"publicId"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Gender        string             `json:"gender"`
	Contact       string             `json:"contact"`
	Address       string             `json:"address"`
	IsDeleted     bool               `json:"isDeleted"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Role          RoleView           `json:"role"`
	DoctorDetails *DoctorDetailsView `json:"doctorDetails"`
	Salaries      []SalaryView       `json:"salaries"`
}

// AdminDoctorsHandler serves the doctor record endpoints.
type AdminDoctorsHandler struct {
	staffHandler
}

// NewAdminDoctorsHandler serves the doctor admin routes. A nil validator uses validation.New.
func NewAdminDoctorsHandler(service *staff.Service, validator *validation.Validator, exposeErrors bool, logger *logging.Logger) *AdminDoctorsHandler {
	return &AdminDoctorsHandler{staffHandler: newStaffHandler(service, validator, exposeErrors, logger)}
}

// Add handles POST /admin/add-doctor.
func (h *AdminDoctorsHandler) Add(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Body[AddDoctorRequest](h.validator, w, r)
	if !ok {
		return
	}
	m, err := h.service.Create(r.Context(), staff.CreateInput{
		Role:        staff.RoleDoctor,
		Name:        req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		Gender:      req.Gender,
		Contact:     req.Contact,
		Address:     req.Address,
		Salary:      float64(req.Salary),
		Degree:      req.LatestDegree,
		Designation: req.Designation,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	switch {
	case isConflict(err):
		respond.Message(w, http.StatusConflict, msgEmailTaken)
		return
	case err != nil:
		h.internalError(w, "add doctor", err)
		return
	}

	view := DoctorCreatedView{
		PublicID:  m.User.PublicID,
		Name:      m.User.Name,
		Email:     m.User.Email,
		Gender:    m.User.Gender,
		Contact:   m.User.Contact,
		Address:   m.User.Address,
		IsDeleted: m.User.IsDeleted,
	}
	if m.Doctor != nil {
		view.Degree = m.Doctor.Degree
		view.Designation = m.Doctor.Designation
		view.WorkingStart = h.reading(m.Doctor.WorkingStart)
		view.WorkingEnd = h.reading(m.Doctor.WorkingEnd)
	}
	if s, ok := m.CurrentSalary(); ok {
		view.Salary = s.Amount
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message": "Doctor added successfully.",
		"doctor":  view,
	})
}

// Count handles GET /admin/doctors/count.
func (h *AdminDoctorsHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context(), staff.RoleDoctor)
	switch {
	case errors.Is(err, staff.ErrRoleNotFound):
		respond.Message(w, http.StatusNotFound, "Doctor role not found. Please ensure roles are initialized.")
		return
	case err != nil:
		h.internalError(w, "count doctors", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":      "Doctor count retrieved successfully.",
		"totalDoctors": n,
	})
}

// Get handles GET /admin/doctor/{publicId}.
func (h *AdminDoctorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), staff.RoleDoctor, publicIDParam(r))
	switch {
	case isNotFound(err):
		respond.Message(w, http.StatusNotFound, "Doctor not found.")
		return
	case err != nil:
		h.internalError(w, "get doctor", err)
		return
	}

	view := DoctorDetailView{
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
	}
	if m.Doctor != nil {
		view.DoctorDetails = &DoctorDetailsView{
			ID:           m.Doctor.ID,
			Degree:       m.Doctor.Degree,
			Designation:  m.Doctor.Designation,
			WorkingStart: h.reading(m.Doctor.WorkingStart),
			WorkingEnd:   h.reading(m.Doctor.WorkingEnd),
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"doctor": view})
}

// List handles GET /admin/doctors.
func (h *AdminDoctorsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listFilter(r, staff.RoleDoctor))
	switch {
	case errors.Is(err, staff.ErrRoleNotFound):
		respond.Message(w, http.StatusNotFound, "Doctor role not found. Please ensure roles are initialized.")
		return
	case err != nil:
		h.internalError(w, "list doctors", err)
		return
	}

	items := make([]DoctorListItem, 0, len(page.Items))
	for _, s := range page.Items {
		item := DoctorListItem{
			PublicID:  s.User.PublicID,
			Name:      s.User.Name,
			Email:     s.User.Email,
			Gender:    s.User.Gender,
			Contact:   s.User.Contact,
			Address:   s.User.Address,
			Salary:    s.LatestSalary,
			IsDeleted: s.User.IsDeleted,
		}
		if s.Doctor != nil {
			degree, designation := s.Doctor.Degree, s.Doctor.Designation
			item.Degree = &degree
			item.Designation = &designation
			item.WorkingStart = h.reading(s.Doctor.WorkingStart)
			item.WorkingEnd = h.reading(s.Doctor.WorkingEnd)
		}
		items = append(items, item)
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":    "Doctors retrieved successfully.",
		"pagination": page.Pagination,
		"data":       items,
	})
}

// Edit handles PUT /admin/edit-doctor/{publicId}.
func (h *AdminDoctorsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Body[EditDoctorRequest](h.validator, w, r)
	if !ok {
		return
	}
	in := staff.UpdateInput{
		Name:        req.FullName,
		Email:       req.Email,
		Gender:      req.Gender,
		Contact:     req.Contact,
		Address:     req.Address,
		Password:    req.Password,
		Degree:      req.LatestDegree,
		Designation: req.Designation,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.Salary != nil {
		amount := float64(*req.Salary)
		in.Salary = &amount
	}

	res, err := h.service.Update(r.Context(), staff.RoleDoctor, publicIDParam(r), in)
	switch {
	case isNotFound(err):
		respond.Message(w, http.StatusNotFound, "Doctor not found.")
		return
	case isConflict(err):
		respond.Message(w, http.StatusConflict, msgEmailTaken)
		return
	case err != nil:
		h.internalError(w, "edit doctor", err)
		return
	}
	if !res.Changed() {
		respond.Message(w, http.StatusOK, "No changes detected.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Doctor updated successfully.",
		"updates": h.updatesBody(res),
	})
}

// Delete handles DELETE /admin/delete-doctor/{publicId}.
func (h *AdminDoctorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Delete(r.Context(), staff.RoleDoctor, publicIDParam(r))
	switch {
	case isNotFound(err):
		respond.JSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Doctor not found"})
		return
	case err != nil:
		h.logger.Error("staff request failed", "op", "delete doctor", "error", err)
		body := map[string]any{"success": false, "message": "Internal Server Error while deleting doctor"}
		if h.exposeErrors {
			body["error"] = err.Error()
		}
		respond.JSON(w, http.StatusInternalServerError, body)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Doctor deleted successfully (soft delete applied)",
		"data":    DeletedView{PublicID: u.PublicID, Name: u.Name, IsDeleted: u.IsDeleted, DeletedAt: u.UpdatedAt},
	})
}
