package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
	"github.com/wolfman30/clinic-admin-platform/internal/staff"
	"github.com/wolfman30/clinic-admin-platform/internal/validation"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

const (
	msgEmailTaken = "A user with this email already exists."
	msgInternal   = "An internal error occurred. Please try again later."
)

// staffHandler holds what the doctor and receptionist handlers share.
type staffHandler struct {
	service      *staff.Service
	validator    *validation.Validator
	exposeErrors bool
	logger       *logging.Logger
}

func newStaffHandler(service *staff.Service, validator *validation.Validator, exposeErrors bool, logger *logging.Logger) staffHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if validator == nil {
		validator = validation.New()
	}
	return staffHandler{service: service, validator: validator, exposeErrors: exposeErrors, logger: logger}
}

func (h staffHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("staff request failed", "op", op, "error", err)
	respond.Error(w, http.StatusInternalServerError, msgInternal, err, h.exposeErrors)
}

func (h staffHandler) reading(t *time.Time) *string {
	return h.service.Clock().Reading(t)
}

// listFilter parses ?page, ?limit and ?search. Unparseable numbers fall back to
// the defaults.
func listFilter(r *http.Request, role string) staff.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return staff.ListFilter{Role: role, Search: q.Get("search"), Page: page, Limit: limit}
}

func publicIDParam(r *http.Request) string {
	return chi.URLParam(r, "publicId")
}

// RoleView is the nested role object of detail responses.
type RoleView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// SalaryView is one salary history entry.
type SalaryView struct {
	ID       int64      `json:"id"`
	Amount   float64    `json:"amount"`
	PaidTill *time.Time `json:"paidTill"`
}

// DeletedView is the data object of delete responses.
type DeletedView struct {
	PublicID  string    `json:"publicId"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"isDeleted"`
	DeletedAt time.Time `json:"deletedAt"`
}

func salaryViews(history []staff.Salary) []SalaryView {
	out := make([]SalaryView, 0, len(history))
	for _, s := range history {
		out = append(out, SalaryView{ID: s.ID, Amount: s.Amount, PaidTill: s.PaidTill})
	}
	return out
}

func userUpdates(p staff.UserPatch, passwordChanged bool) map[string]any {
	out := map[string]any{}
	setIf(out, "name", p.Name)
	setIf(out, "email", p.Email)
	setIf(out, "gender", p.Gender)
	setIf(out, "contact", p.Contact)
	setIf(out, "address", p.Address)
	if passwordChanged {
		out["passwordUpdated"] = true
	}
	return out
}

func setIf(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

// updatesBody renders the "updates" object, omitting untouched sections.
func (h staffHandler) updatesBody(res *staff.UpdateResult) map[string]any {
	updates := map[string]any{}
	if u := userUpdates(res.Patch.User, res.PasswordChanged); len(u) > 0 {
		updates["user"] = u
	}
	d := res.Patch.Doctor
	doc := map[string]any{}
	setIf(doc, "degree", d.Degree)
	setIf(doc, "designation", d.Designation)
	if d.WorkingStart != nil {
		doc["workingStart"] = h.reading(d.WorkingStart)
	}
	if d.WorkingEnd != nil {
		doc["workingEnd"] = h.reading(d.WorkingEnd)
	}
	if len(doc) > 0 {
		updates["doctor"] = doc
	}
	if res.Salary != nil {
		updates["salary"] = res.Salary.Amount
	}
	return updates
}

func isNotFound(err error) bool {
	return errors.Is(err, staff.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, staff.ErrEmailTaken)
}
