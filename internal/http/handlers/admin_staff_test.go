package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/clinic-admin-platform/internal/passwords"
	"github.com/wolfman30/clinic-admin-platform/internal/staff"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

// memStaffStore is an in-memory staff.Store keyed by public id.
type memStaffStore struct {
	members   map[string]*staff.Member
	nextID    int64
	now       time.Time
	createErr error
}

func newMemStaffStore() *memStaffStore {
	return &memStaffStore{
		members: map[string]*staff.Member{},
		now:     time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
	}
}

func (s *memStaffStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, m := range s.members {
		if m.User.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStaffStore) CreateMember(_ context.Context, in staff.NewMember) (*staff.Member, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	prefix := staff.PrefixForRole(in.Role)
	var existing []string
	for id, m := range s.members {
		if m.User.Role.Name == in.Role {
			existing = append(existing, id)
		}
	}
	s.nextID++
	s.now = s.now.Add(time.Minute)
	m := &staff.Member{
		User: staff.User{
			ID:           s.nextID,
			PublicID:     staff.NextPublicID(prefix, existing, in.Name),
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: in.PasswordHash,
			Gender:       in.Gender,
			Contact:      in.Contact,
			Address:      in.Address,
			Role:         staff.Role{Name: in.Role, Prefix: prefix},
			CreatedAt:    s.now,
			UpdatedAt:    s.now,
		},
		Salaries: []staff.Salary{{ID: s.nextID, UserID: s.nextID, Amount: in.Salary, CreatedAt: s.now}},
	}
	if in.Doctor != nil {
		d := *in.Doctor
		d.ID, d.UserID = s.nextID, s.nextID
		m.Doctor = &d
	}
	s.members[m.User.PublicID] = m
	return m, nil
}

func (s *memStaffStore) GetMember(_ context.Context, publicID string) (*staff.Member, error) {
	m, ok := s.members[publicID]
	if !ok {
		return nil, staff.ErrNotFound
	}
	return m, nil
}

func (s *memStaffStore) active(role string) []*staff.Member {
	var out []*staff.Member
	for _, m := range s.members {
		if m.User.Role.Name == role && !m.User.IsDeleted {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.CreatedAt.After(out[j].User.CreatedAt) })
	return out
}

func (s *memStaffStore) CountActive(_ context.Context, role string) (int, error) {
	return len(s.active(role)), nil
}

func (s *memStaffStore) List(_ context.Context, f staff.ListFilter) ([]staff.Summary, int, error) {
	var matched []*staff.Member
	for _, m := range s.active(f.Role) {
		if f.Search == "" || strings.Contains(strings.ToLower(m.User.Name), strings.ToLower(f.Search)) {
			matched = append(matched, m)
		}
	}
	out := []staff.Summary{}
	for i := f.Offset(); i < len(matched) && i < f.Offset()+f.Limit; i++ {
		m := matched[i]
		sum := staff.Summary{User: m.User, Doctor: m.Doctor}
		if cur, ok := m.CurrentSalary(); ok {
			amount := cur.Amount
			sum.LatestSalary = &amount
		}
		out = append(out, sum)
	}
	return out, len(matched), nil
}

func (s *memStaffStore) ApplyPatch(_ context.Context, m *staff.Member, p staff.Patch) (*staff.Salary, error) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&m.User.Name, p.User.Name)
	apply(&m.User.Email, p.User.Email)
	apply(&m.User.Gender, p.User.Gender)
	apply(&m.User.Contact, p.User.Contact)
	apply(&m.User.Address, p.User.Address)
	apply(&m.User.PasswordHash, p.User.PasswordHash)
	if m.Doctor != nil {
		apply(&m.Doctor.Degree, p.Doctor.Degree)
		apply(&m.Doctor.Designation, p.Doctor.Designation)
		if p.Doctor.WorkingStart != nil {
			m.Doctor.WorkingStart = p.Doctor.WorkingStart
		}
		if p.Doctor.WorkingEnd != nil {
			m.Doctor.WorkingEnd = p.Doctor.WorkingEnd
		}
	}
	if p.Salary == nil {
		return nil, nil
	}
	s.nextID++
	sal := staff.Salary{ID: s.nextID, UserID: m.User.ID, Amount: *p.Salary}
	m.Salaries = append(m.Salaries, sal)
	return &sal, nil
}

func (s *memStaffStore) SoftDelete(_ context.Context, role, publicID string) (*staff.User, error) {
	m, ok := s.members[publicID]
	if !ok || m.User.Role.Name != role {
		return nil, staff.ErrNotFound
	}
	if !m.User.IsDeleted {
		s.now = s.now.Add(time.Minute)
		m.User.IsDeleted = true
		m.User.UpdatedAt = s.now
	}
	u := m.User
	return &u, nil
}

var clinicZone = time.FixedZone("PKT", 5*60*60)

func newStaffService(t *testing.T) (*staff.Service, *memStaffStore) {
	t.Helper()
	store := newMemStaffStore()
	clock := staff.NewClock(clinicZone, logging.Default()).WithNow(func() time.Time { return store.now })
	svc := staff.NewService(store, passwords.NewBcrypt(bcrypt.MinCost), clock, staff.Options{Logger: logging.Default()})
	return svc, store
}

// serve runs h with an optional {publicId} route param.
func serve(h http.HandlerFunc, method, target, body, publicID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if publicID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("publicId", publicID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
