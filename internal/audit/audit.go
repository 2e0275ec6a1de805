// Package audit keeps an append-only trail of administrator actions.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names an audited action.
type EventType string

const (
	// EventAdminLogin is logged when an administrator signs in.
	EventAdminLogin EventType = "admin.login"
	// EventAdminLogout is logged when an administrator signs out.
	EventAdminLogout EventType = "admin.logout"
	// EventStaffCreated is logged when a doctor or receptionist is onboarded.
	EventStaffCreated EventType = "staff.created"
	// EventStaffUpdated is logged when a staff record changes.
	EventStaffUpdated EventType = "staff.updated"
	// EventStaffDeleted is logged when a staff record is soft-deleted.
	EventStaffDeleted EventType = "staff.deleted"
)

// Event is one immutable audit record.
type Event struct {
	ID              string          `json:"id"`
	Type            EventType       `json:"event_type"`
	ActorPublicID   string          `json:"actor_public_id,omitempty"`
	SubjectPublicID string          `json:"subject_public_id,omitempty"`
	Details         json.RawMessage `json:"details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Service writes audit events to Postgres.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	if db == nil {
		return nil
	}
	return &Service{db: db}
}

// Record inserts the event. A nil service discards events.
func (s *Service) Record(ctx context.Context, event Event) error {
	if s == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO admin_audit_events (
			id, event_type, actor_public_id, subject_public_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		nullString(event.ActorPublicID),
		nullString(event.SubjectPublicID),
		nullJSON(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record event: %w", err)
	}
	return nil
}

// Details marshals v for Event.Details, returning nil on failure.
func Details(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
