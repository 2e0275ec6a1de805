package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-admin-platform/internal/auth"
	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// TokenHeader is the alternate header carrying the session token.
const TokenHeader = "atoken"

// SessionVerifier resolves a session token to its claims.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AdminSession gates admin endpoints on a valid administrator session. The
// token is read from the session cookie, then the atoken header, then a
// Bearer Authorization header.
func AdminSession(verifier SessionVerifier, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				respond.Message(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}
			claims, err := verifier.Verify(r.Context(), token)
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				respond.Message(w, http.StatusUnauthorized, "Token expired. Please log in again.")
				return
			case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenRevoked), errors.Is(err, auth.ErrMissingToken):
				respond.Message(w, http.StatusUnauthorized, "Invalid token.")
				return
			case err != nil:
				logger.Error("session verification failed", "path", r.URL.Path, "error", err)
				respond.Message(w, http.StatusInternalServerError, "Internal server error during authentication.")
				return
			}
			if claims.Role != auth.RoleAdmin {
				logger.Warn("non-admin session rejected", "public_id", claims.AdminID, "role", claims.Role)
				respond.Message(w, http.StatusForbidden, "Forbidden: Admin access only.")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// SessionToken extracts the session token from r.
func SessionToken(r *http.Request) string {
	if token := auth.TokenFromCookie(r); token != "" {
		return token
	}
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
