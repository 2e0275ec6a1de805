package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-admin-platform/internal/audit"
	"github.com/wolfman30/clinic-admin-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

var tracer = otel.Tracer("clinicadmin.auth")

// Auditor records security-relevant events.
type Auditor interface {
	Record(ctx context.Context, event audit.Event) error
}

// Session is the result of a successful login.
type Session struct {
	Token   string
	Claims  *Claims
	Account *Account
}

// Service authenticates administrators and verifies their session tokens.
type Service struct {
	accounts AccountStore
	hasher   passwords.Hasher
	tokens   *TokenManager
	denylist Denylist
	auditor  Auditor
	metrics  *metrics.AuthMetrics
	logger   *logging.Logger
}

// ServiceOptions carries the optional collaborators of Service.
type ServiceOptions struct {
	Denylist Denylist
	Auditor  Auditor
	Metrics  *metrics.AuthMetrics
	Logger   *logging.Logger
}

// NewService wires the login flow.
func NewService(accounts AccountStore, hasher passwords.Hasher, tokens *TokenManager, opts ServiceOptions) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		denylist: opts.Denylist,
		auditor:  opts.Auditor,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// TokenTTL returns how long issued sessions stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Login checks publicID/password and issues a session token. Unknown,
// deleted, or non-admin accounts yield ErrNotAdmin; a wrong password yields
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, publicID, password string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()
	span.SetAttributes(attribute.String("admin.public_id", publicID))

	acct, err := s.accounts.FindAccount(ctx, publicID)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		s.metrics.ObserveLogin("error")
		return nil, fmt.Errorf("auth: find account: %w", err)
	}
	if acct == nil || acct.IsDeleted || acct.Role != RoleAdmin {
		s.metrics.ObserveLogin("unauthorized")
		s.logger.Warn("admin login rejected", "public_id", publicID, "reason", "not_admin")
		return nil, ErrNotAdmin
	}

	ok, err := s.hasher.Matches(acct.PasswordHash, password)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, fmt.Errorf("auth: compare password: %w", err)
	}
	if !ok {
		s.metrics.ObserveLogin("invalid_credentials")
		s.logger.Warn("admin login rejected", "public_id", publicID, "reason", "bad_password")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(acct)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, err
	}
	s.metrics.ObserveLogin("success")
	s.record(ctx, audit.Event{Type: audit.EventAdminLogin, ActorPublicID: acct.PublicID})
	s.logger.Info("admin logged in", "public_id", acct.PublicID)
	return &Session{Token: token, Claims: claims, Account: acct}, nil
}

// Verify parses token and rejects revoked sessions.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes token until its natural expiry. Tokens that no longer verify
// are ignored; the caller clears the cookie regardless.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.denylist == nil {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.record(ctx, audit.Event{Type: audit.EventAdminLogout, ActorPublicID: claims.AdminID})
	return nil
}

// Profile resolves the account behind a session token.
func (s *Service) Profile(ctx context.Context, token string) (*Account, error) {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	acct, err := s.accounts.FindAccount(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("auth: find account: %w", err)
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, event); err != nil {
		s.logger.Error("failed to record audit event", "event_type", event.Type, "error", err)
	}
}
