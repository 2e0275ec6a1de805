package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-admin-platform/internal/auth"
	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
	"github.com/wolfman30/clinic-admin-platform/internal/validation"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// LoginRequest is the POST /admin/login body.
type LoginRequest struct {
	PublicID string `json:"publicId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.PublicID = strings.TrimSpace(r.PublicID)
}

func (r *LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"publicId.required": "publicId is required",
		"password.required": "Password is required",
	}
}

// AdminView is the admin summary returned by login and /me.
type AdminView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func adminView(acct *auth.Account) AdminView {
	return AdminView{ID: acct.PublicID, Name: acct.Name, Role: acct.Role}
}

// AdminSessionHandler serves login, logout and the current-admin profile.
type AdminSessionHandler struct {
	service      *auth.Service
	validator    *validation.Validator
	secureCookie bool
	logger       *logging.Logger
}

// NewAdminSessionHandler builds the session handler. secureCookie marks the
// cookie Secure and hides internal error detail, as in production.
func NewAdminSessionHandler(service *auth.Service, validator *validation.Validator, secureCookie bool, logger *logging.Logger) *AdminSessionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &AdminSessionHandler{service: service, validator: validator, secureCookie: secureCookie, logger: logger}
}

// Login handles POST /admin/login.
func (h *AdminSessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Body[LoginRequest](h.validator, w, r)
	if !ok {
		return
	}
	session, err := h.service.Login(r.Context(), req.PublicID, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotAdmin):
		respond.Message(w, http.StatusUnauthorized, "Unauthorized")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		respond.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		h.logger.Error("admin login failed", "error", err)
		respond.Internal(w, err, !h.secureCookie)
		return
	}

	auth.SetSessionCookie(w, session.Token, h.service.TokenTTL(), h.secureCookie)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"admin":   adminView(session.Account),
	})
}

// Logout handles POST /admin/logout. The cookie is cleared even when
// revocation fails.
func (h *AdminSessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), auth.TokenFromCookie(r)); err != nil {
		h.logger.Warn("failed to revoke session on logout", "error", err)
	}
	auth.ClearSessionCookie(w, h.secureCookie)
	respond.Message(w, http.StatusOK, "Logout successful")
}

// Me handles GET /admin/me. Only the session cookie is consulted.
func (h *AdminSessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromCookie(r)
	if token == "" {
		respond.Message(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	acct, err := h.service.Profile(r.Context(), token)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		respond.Message(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"admin": adminView(acct)})
}
