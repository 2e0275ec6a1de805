package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/clinic-admin-platform/internal/auth"
	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

type stubAccounts map[string]*auth.Account

func (s stubAccounts) FindAccount(_ context.Context, publicID string) (*auth.Account, error) {
	acct, ok := s[publicID]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return acct, nil
}

func newSessionHandler(t *testing.T) (*AdminSessionHandler, stubAccounts, *auth.TokenManager) {
	t.Helper()
	hasher := passwords.NewBcrypt(bcrypt.MinCost)
	hash, err := hasher.Hash("admin123")
	require.NoError(t, err)
	accounts := stubAccounts{
		"A-01-Root":    {PublicID: "A-01-Root", Name: "Root", Role: auth.RoleAdmin, PasswordHash: hash},
		"D-01-AliKhan": {PublicID: "D-01-AliKhan", Name: "Ali Khan", Role: "Doctor", PasswordHash: hash},
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := auth.NewService(accounts, hasher, tokens, auth.ServiceOptions{Logger: logging.Default()})
	return NewAdminSessionHandler(svc, nil, false, logging.Default()), accounts, tokens
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAdminSessionLogin(t *testing.T) {
	h, _, _ := newSessionHandler(t)

	rec := serve(h.Login, http.MethodPost, "/admin/login", `{"publicId":" A-01-Root ","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, map[string]any{"id": "A-01-Root", "name": "Root", "role": "Admin"}, body["admin"])

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestAdminSessionLoginFailures(t *testing.T) {
	h, _, _ := newSessionHandler(t)

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"wrong password", `{"publicId":"A-01-Root","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"not an admin", `{"publicId":"D-01-AliKhan","password":"admin123"}`, http.StatusUnauthorized, "Unauthorized"},
		{"unknown user", `{"publicId":"A-09-Ghost","password":"admin123"}`, http.StatusUnauthorized, "Unauthorized"},
		{"missing fields", `{}`, http.StatusBadRequest, "Validation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h.Login, http.MethodPost, "/admin/login", tc.body, "")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, decodeJSON(t, rec)["message"])
			assert.Nil(t, sessionCookie(rec))
		})
	}
}

func TestAdminSessionLoginValidationMessages(t *testing.T) {
	h, _, _ := newSessionHandler(t)

	rec := serve(h.Login, http.MethodPost, "/admin/login", `{"publicId":"   "}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeJSON(t, rec)["errors"].(map[string]any)
	assert.Equal(t, "publicId is required", errs["publicId"])
	assert.Equal(t, "Password is required", errs["password"])
}

func TestAdminSessionMe(t *testing.T) {
	h, accounts, tokens := newSessionHandler(t)

	rec := serve(h.Me, http.MethodGet, "/admin/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decodeJSON(t, rec)["message"])

	token, _, err := tokens.Issue(accounts["A-01-Root"])
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A-01-Root", decodeJSON(t, rec)["admin"].(map[string]any)["id"])

	req = httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeJSON(t, rec)["message"])

	delete(accounts, "A-01-Root")
	req = httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeJSON(t, rec)["message"])
}

func TestAdminSessionLogoutClearsCookie(t *testing.T) {
	h, _, _ := newSessionHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "whatever"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeJSON(t, rec)["message"])
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}
