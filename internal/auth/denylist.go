package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records token ids revoked before their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenylist stores revoked token ids as expiring Redis keys.
type RedisDenylist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisDenylist returns nil when client is nil so callers can treat revocation as disabled.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	if client == nil {
		return nil
	}
	return &RedisDenylist{client: client, prefix: "session:revoked:", now: time.Now}
}

func (d *RedisDenylist) key(tokenID string) string {
	return d.prefix + tokenID
}

// Revoke marks tokenID revoked until the given expiry. A nil denylist is a no-op.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if d == nil || tokenID == "" {
		return nil
	}
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d == nil || tokenID == "" {
		return false, nil
	}
	err := d.client.Get(ctx, d.key(tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("auth: check revocation: %w", err)
	}
}

var _ Denylist = (*RedisDenylist)(nil)
