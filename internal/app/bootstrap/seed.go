package bootstrap

import (
	"context"
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/clinic-admin-platform/internal/config"
	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// Seeder is the part of the staff repository used at startup.
type Seeder interface {
	EnsureRoles(ctx context.Context) error
	SeedAdmin(ctx context.Context, publicID, name, passwordHash string) (bool, error)
}

// SeedAdmin ensures the role set and the bootstrap administrator exist.
// The administrator is skipped when INIT_ADMIN_ID or INIT_ADMIN_PASSWORD is unset.
func SeedAdmin(ctx context.Context, store Seeder, hasher passwords.Hasher, cfg *appconfig.Config, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	if err := store.EnsureRoles(ctx); err != nil {
		return err
	}

	publicID := strings.TrimSpace(cfg.InitAdminID)
	if publicID == "" || cfg.InitAdminPassword == "" {
		logger.Info("initial admin not configured, skipping seed")
		return nil
	}
	hash, err := hasher.Hash(cfg.InitAdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash admin password: %w", err)
	}
	created, err := store.SeedAdmin(ctx, publicID, cfg.InitAdminName, hash)
	if err != nil {
		return err
	}
	if !created {
		logger.Info("initial admin already exists", "public_id", publicID)
		return nil
	}
	logger.Info("initial admin seeded", "public_id", publicID)
	return nil
}
