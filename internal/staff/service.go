package staff

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/clinic-admin-platform/internal/audit"
	"github.com/wolfman30/clinic-admin-platform/internal/auth"
	"github.com/wolfman30/clinic-admin-platform/internal/notify"
	"github.com/wolfman30/clinic-admin-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

var tracer = otel.Tracer("clinicadmin.staff")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Store is the persistence surface the service depends on.
type Store interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateMember(ctx context.Context, in NewMember) (*Member, error)
	GetMember(ctx context.Context, publicID string) (*Member, error)
	CountActive(ctx context.Context, role string) (int, error)
	List(ctx context.Context, f ListFilter) ([]Summary, int, error)
	ApplyPatch(ctx context.Context, m *Member, p Patch) (*Salary, error)
	SoftDelete(ctx context.Context, role, publicID string) (*User, error)
}

// Auditor records administrator actions.
type Auditor interface {
	Record(ctx context.Context, event audit.Event) error
}

// Welcomer notifies newly onboarded staff.
type Welcomer interface {
	StaffWelcome(ctx context.Context, w notify.Welcome) error
}

// Options carries the optional collaborators of Service.
type Options struct {
	Auditor  Auditor
	Welcomer Welcomer
	Metrics  *metrics.StaffMetrics
	Logger   *logging.Logger
}

// Service implements the doctor and receptionist record operations.
type Service struct {
	store    Store
	hasher   passwords.Hasher
	clock    *Clock
	auditor  Auditor
	welcomer Welcomer
	metrics  *metrics.StaffMetrics
	logger   *logging.Logger
}

// NewService wires staff operations over store. Nil Options fields fall back to no-op collaborators.
func NewService(store Store, hasher passwords.Hasher, clock *Clock, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if clock == nil {
		clock = NewClock(nil, opts.Logger)
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		clock:    clock,
		auditor:  opts.Auditor,
		welcomer: opts.Welcomer,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// Clock returns the clinic clock used for working hours.
func (s *Service) Clock() *Clock {
	return s.clock
}

// CreateInput is a validated onboarding request. Doctor fields are ignored for
// other roles.
type CreateInput struct {
	Role        string
	Name        string
	Email       string
	Password    string
	Gender      string
	Contact     string
	Address     string
	Salary      float64
	Degree      string
	Designation string
	StartTime   string
	EndTime     string
}

// Create onboards a staff member.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Member, error) {
	ctx, span := tracer.Start(ctx, "staff.create")
	defer span.End()
	span.SetAttributes(attribute.String("staff.role", in.Role))

	m, err := s.create(ctx, in)
	s.metrics.ObserveOperation(entity(in.Role), "create", outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	s.record(ctx, audit.Event{
		Type:            audit.EventStaffCreated,
		ActorPublicID:   auth.ActorID(ctx),
		SubjectPublicID: m.User.PublicID,
		Details:         audit.Details(map[string]string{"role": in.Role}),
	})
	if s.welcomer != nil {
		if err := s.welcomer.StaffWelcome(ctx, notify.Welcome{
			Name:     m.User.Name,
			Email:    m.User.Email,
			PublicID: m.User.PublicID,
			Role:     in.Role,
		}); err != nil {
			s.logger.Warn("welcome email failed", "public_id", m.User.PublicID, "error", err)
		}
	}
	s.logger.Info("staff member created", "role", in.Role, "public_id", m.User.PublicID)
	return m, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (*Member, error) {
	if in.Email != "" {
		taken, err := s.store.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	nm := NewMember{
		Role:         in.Role,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Gender:       in.Gender,
		Contact:      in.Contact,
		Address:      in.Address,
		Salary:       RoundCents(in.Salary),
	}
	if in.Role == RoleDoctor {
		nm.Doctor = &Doctor{
			Degree:       in.Degree,
			Designation:  in.Designation,
			WorkingStart: s.clock.ToInstant(in.StartTime),
			WorkingEnd:   s.clock.ToInstant(in.EndTime),
		}
	}
	return s.store.CreateMember(ctx, nm)
}

// Get loads a member of role by public id. Members of other roles are reported
// as ErrNotFound.
func (s *Service) Get(ctx context.Context, role, publicID string) (*Member, error) {
	ctx, span := tracer.Start(ctx, "staff.get")
	defer span.End()

	m, err := s.store.GetMember(ctx, publicID)
	if err == nil && m.User.Role.Name != role {
		err = ErrNotFound
	}
	s.metrics.ObserveOperation(entity(role), "get", outcome(err))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Count returns the number of active members of role.
func (s *Service) Count(ctx context.Context, role string) (int, error) {
	n, err := s.store.CountActive(ctx, role)
	s.metrics.ObserveOperation(entity(role), "count", outcome(err))
	return n, err
}

// NormalizeListFilter applies paging defaults: page at least 1, limit 10 when
// unset and otherwise clamped to [1, 100].
func NormalizeListFilter(f ListFilter) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit == 0:
		f.Limit = defaultPageSize
	case f.Limit < 1:
		f.Limit = 1
	case f.Limit > maxPageSize:
		f.Limit = maxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Page is one page of list results.
type Page struct {
	Items      []Summary
	Pagination Pagination
}

// List returns a page of active members.
func (s *Service) List(ctx context.Context, f ListFilter) (*Page, error) {
	ctx, span := tracer.Start(ctx, "staff.list")
	defer span.End()

	f = NormalizeListFilter(f)
	span.SetAttributes(attribute.String("staff.role", f.Role), attribute.Int("staff.page", f.Page))

	items, total, err := s.store.List(ctx, f)
	s.metrics.ObserveOperation(entity(f.Role), "list", outcome(err))
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Pagination: NewPagination(total, f.Page, f.Limit)}, nil
}

// UpdateInput carries a partial edit. Empty strings and a nil Salary mean
// "not provided".
type UpdateInput struct {
	Name        string
	Email       string
	Gender      string
	Contact     string
	Address     string
	Password    string
	Degree      string
	Designation string
	StartTime   string
	EndTime     string
	Salary      *float64
}

// UpdateResult describes what an edit changed.
type UpdateResult struct {
	Patch           Patch
	PasswordChanged bool
	Salary          *Salary
}

// Changed reports whether anything was written.
func (r *UpdateResult) Changed() bool {
	return r != nil && !r.Patch.Empty()
}

// Update diffs in against the stored member and writes only what changed.
func (s *Service) Update(ctx context.Context, role, publicID string, in UpdateInput) (*UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "staff.update")
	defer span.End()
	span.SetAttributes(attribute.String("staff.role", role), attribute.String("staff.public_id", publicID))

	res, err := s.update(ctx, role, publicID, in)
	s.metrics.ObserveOperation(entity(role), "update", outcome(err))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if res.Changed() {
		s.record(ctx, audit.Event{
			Type:            audit.EventStaffUpdated,
			ActorPublicID:   auth.ActorID(ctx),
			SubjectPublicID: publicID,
			Details:         audit.Details(map[string]any{"fields": res.changedFields()}),
		})
	}
	return res, nil
}

func (s *Service) update(ctx context.Context, role, publicID string, in UpdateInput) (*UpdateResult, error) {
	m, err := s.store.GetMember(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if m.User.Role.Name != role {
		return nil, ErrNotFound
	}

	res := &UpdateResult{}
	p := &res.Patch
	p.User.Name = changed(in.Name, m.User.Name)
	p.User.Email = changed(in.Email, m.User.Email)
	p.User.Gender = changed(in.Gender, m.User.Gender)
	p.User.Contact = changed(in.Contact, m.User.Contact)
	p.User.Address = changed(in.Address, m.User.Address)

	if strings.TrimSpace(in.Password) != "" {
		same, err := s.hasher.Matches(m.User.PasswordHash, in.Password)
		if err != nil {
			return nil, err
		}
		if !same {
			hash, err := s.hasher.Hash(in.Password)
			if err != nil {
				return nil, err
			}
			p.User.PasswordHash = &hash
			res.PasswordChanged = true
		}
	}

	if role == RoleDoctor && m.Doctor != nil {
		p.Doctor.Degree = changed(in.Degree, m.Doctor.Degree)
		p.Doctor.Designation = changed(in.Designation, m.Doctor.Designation)
		p.Doctor.WorkingStart = s.changedHours(in.StartTime, m.Doctor.WorkingStart)
		p.Doctor.WorkingEnd = s.changedHours(in.EndTime, m.Doctor.WorkingEnd)
	}

	if in.Salary != nil {
		amount := RoundCents(*in.Salary)
		current, ok := m.CurrentSalary()
		if !ok || RoundCents(current.Amount) != amount {
			p.Salary = &amount
		}
	}

	if p.Empty() {
		return res, nil
	}
	appended, err := s.store.ApplyPatch(ctx, m, *p)
	if err != nil {
		return nil, err
	}
	res.Salary = appended
	return res, nil
}

// changedHours returns the new instant for reading when its HH:mm differs from
// current. Stored dates drift, so instants are never compared directly.
func (s *Service) changedHours(reading string, current *time.Time) *time.Time {
	if strings.TrimSpace(reading) == "" {
		return nil
	}
	next := s.clock.ToInstant(reading)
	if next == nil {
		return nil
	}
	a, b := s.clock.Reading(next), s.clock.Reading(current)
	if b != nil && *a == *b {
		return nil
	}
	return next
}

func (r *UpdateResult) changedFields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	u, d := r.Patch.User, r.Patch.Doctor
	add("name", u.Name != nil)
	add("email", u.Email != nil)
	add("gender", u.Gender != nil)
	add("contact", u.Contact != nil)
	add("address", u.Address != nil)
	add("password", u.PasswordHash != nil)
	add("degree", d.Degree != nil)
	add("designation", d.Designation != nil)
	add("workingStart", d.WorkingStart != nil)
	add("workingEnd", d.WorkingEnd != nil)
	add("salary", r.Patch.Salary != nil)
	return fields
}

// Delete soft-deletes a member of role. Repeated calls succeed.
func (s *Service) Delete(ctx context.Context, role, publicID string) (*User, error) {
	ctx, span := tracer.Start(ctx, "staff.delete")
	defer span.End()

	u, err := s.store.SoftDelete(ctx, role, publicID)
	s.metrics.ObserveOperation(entity(role), "delete", outcome(err))
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Event{
		Type:            audit.EventStaffDeleted,
		ActorPublicID:   auth.ActorID(ctx),
		SubjectPublicID: u.PublicID,
	})
	s.logger.Info("staff member soft-deleted", "role", role, "public_id", u.PublicID)
	return u, nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, event); err != nil {
		s.logger.Error("failed to record audit event", "event_type", event.Type, "error", err)
	}
}

func changed(next, current string) *string {
	if next == "" || next == current {
		return nil
	}
	v := next
	return &v
}

func entity(role string) string {
	return strings.ToLower(role)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRoleNotFound):
		return "not_found"
	case errors.Is(err, ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}

var _ Store = (*Repository)(nil)
