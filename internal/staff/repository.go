package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/clinic-admin-platform/internal/auth"
)

// Querier is satisfied by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is the subset of *pgxpool.Pool the repository needs.
type PgxPool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists staff members in Postgres.
type Repository struct {
	pool PgxPool
}

// NewRepository returns a Postgres-backed Store.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		return nil
	}
	return &Repository{pool: pool}
}

// NewMember is everything needed to onboard one staff member.
type NewMember struct {
	Role         string
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	Contact      string
	Address      string
	Doctor       *Doctor
	Salary       float64
}

// UserPatch holds changed user columns; nil fields are left alone.
type UserPatch struct {
	Name         *string
	Email        *string
	Gender       *string
	Contact      *string
	Address      *string
	PasswordHash *string
}

func (p UserPatch) empty() bool {
	return p.Name == nil && p.Email == nil && p.Gender == nil && p.Contact == nil && p.Address == nil && p.PasswordHash == nil
}

// DoctorPatch holds changed doctor columns.
type DoctorPatch struct {
	Degree       *string
	Designation  *string
	WorkingStart *time.Time
	WorkingEnd   *time.Time
}

func (p DoctorPatch) empty() bool {
	return p.Degree == nil && p.Designation == nil && p.WorkingStart == nil && p.WorkingEnd == nil
}

// Patch is the set of changes computed by a diff against stored values.
type Patch struct {
	User   UserPatch
	Doctor DoctorPatch
	Salary *float64
}

// Empty reports whether the patch would write nothing.
func (p Patch) Empty() bool {
	return p.User.empty() && p.Doctor.empty() && p.Salary == nil
}

// EnsureRoles inserts the fixed role set. Existing rows are untouched.
func (r *Repository) EnsureRoles(ctx context.Context) error {
	for _, role := range DefaultRoles {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO roles (name, prefix) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, role.Name, role.Prefix); err != nil {
			return fmt.Errorf("staff: ensure role %s: %w", role.Name, err)
		}
	}
	return nil
}

func roleByName(ctx context.Context, q Querier, name string) (Role, error) {
	var role Role
	err := q.QueryRow(ctx, `SELECT id, name, prefix FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Prefix)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrRoleNotFound
	}
	if err != nil {
		return Role{}, fmt.Errorf("staff: load role %s: %w", name, err)
	}
	return role, nil
}

// FindAccount implements auth.AccountStore.
func (r *Repository) FindAccount(ctx context.Context, publicID string) (*auth.Account, error) {
	var acct auth.Account
	err := r.pool.QueryRow(ctx, `
		SELECT u.public_id, u.name, r.name, u.password_hash, u.is_deleted
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.public_id = $1
	`, publicID).Scan(&acct.PublicID, &acct.Name, &acct.Role, &acct.PasswordHash, &acct.IsDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: find account: %w", err)
	}
	return &acct, nil
}

// EmailExists reports whether any user, deleted or not, already owns email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("staff: check email: %w", err)
	}
	return exists, nil
}

// CreateMember inserts the user, its role extension and the initial salary in
// one transaction. Public-ID allocation is serialized per role with an
// advisory lock held until commit.
func (r *Repository) CreateMember(ctx context.Context, in NewMember) (*Member, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("staff: begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	var role Role
	err = tx.QueryRow(ctx, `
		INSERT INTO roles (name, prefix) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, prefix
	`, in.Role, PrefixForRole(in.Role)).Scan(&role.ID, &role.Name, &role.Prefix)
	if err != nil {
		return nil, fmt.Errorf("staff: resolve role: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "public_id:"+in.Role); err != nil {
		return nil, fmt.Errorf("staff: lock public id allocation: %w", err)
	}
	existing, err := publicIDsForRole(ctx, tx, role.ID)
	if err != nil {
		return nil, err
	}
	publicID := NextPublicID(PrefixForRole(in.Role), existing, in.Name)

	m := &Member{User: User{
		PublicID:     publicID,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Gender:       in.Gender,
		Contact:      in.Contact,
		Address:      in.Address,
		Role:         role,
	}}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (public_id, name, email, password_hash, gender, contact, address, role_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, is_deleted, created_at, updated_at
	`, publicID, in.Name, in.Email, in.PasswordHash, in.Gender, in.Contact, in.Address, role.ID).
		Scan(&m.User.ID, &m.User.IsDeleted, &m.User.CreatedAt, &m.User.UpdatedAt)
	if err != nil {
		return nil, mapWriteError("insert user", err)
	}

	switch {
	case in.Doctor != nil:
		d := *in.Doctor
		d.UserID = m.User.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO doctors (user_id, degree, designation, working_start, working_end)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, d.UserID, d.Degree, d.Designation, d.WorkingStart, d.WorkingEnd).Scan(&d.ID)
		if err != nil {
			return nil, mapWriteError("insert doctor", err)
		}
		m.Doctor = &d
	case in.Role == RoleReceptionist:
		if _, err := tx.Exec(ctx, `INSERT INTO receptionists (user_id) VALUES ($1)`, m.User.ID); err != nil {
			return nil, mapWriteError("insert receptionist", err)
		}
	}

	salary, err := appendSalary(ctx, tx, m.User.ID, in.Salary)
	if err != nil {
		return nil, err
	}
	m.Salaries = []Salary{salary}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteError("commit create", err)
	}
	return m, nil
}

func publicIDsForRole(ctx context.Context, q Querier, roleID int64) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT public_id FROM users WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, fmt.Errorf("staff: list public ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("staff: scan public id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: list public ids: %w", err)
	}
	return ids, nil
}

func appendSalary(ctx context.Context, q Querier, userID int64, amount float64) (Salary, error) {
	s := Salary{UserID: userID, Amount: amount}
	err := q.QueryRow(ctx, `
		INSERT INTO salaries (user_id, amount) VALUES ($1, $2)
		RETURNING id, created_at
	`, userID, amount).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return Salary{}, mapWriteError("insert salary", err)
	}
	return s, nil
}

// GetMember loads a member with its role, doctor row and full salary history.
func (r *Repository) GetMember(ctx context.Context, publicID string) (*Member, error) {
	var (
		m        Member
		doctorID *int64
		degree   *string
		desig    *string
		start    *time.Time
		end      *time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.public_id, u.name, COALESCE(u.email, ''), u.password_hash,
			COALESCE(u.gender, ''), COALESCE(u.contact, ''), COALESCE(u.address, ''),
			u.is_deleted, u.created_at, u.updated_at,
			r.id, r.name, r.prefix,
			d.id, d.degree, d.designation, d.working_start, d.working_end
		FROM users u
		JOIN roles r ON r.id = u.role_id
		LEFT JOIN doctors d ON d.user_id = u.id
		WHERE u.public_id = $1
	`, publicID).Scan(
		&m.User.ID, &m.User.PublicID, &m.User.Name, &m.User.Email, &m.User.PasswordHash,
		&m.User.Gender, &m.User.Contact, &m.User.Address,
		&m.User.IsDeleted, &m.User.CreatedAt, &m.User.UpdatedAt,
		&m.User.Role.ID, &m.User.Role.Name, &m.User.Role.Prefix,
		&doctorID, &degree, &desig, &start, &end,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: get member: %w", err)
	}
	if doctorID != nil {
		m.Doctor = &Doctor{
			ID:           *doctorID,
			UserID:       m.User.ID,
			Degree:       deref(degree),
			Designation:  deref(desig),
			WorkingStart: start,
			WorkingEnd:   end,
		}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount, paid_till, created_at
		FROM salaries
		WHERE user_id = $1
		ORDER BY id
	`, m.User.ID)
	if err != nil {
		return nil, fmt.Errorf("staff: load salaries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s Salary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Amount, &s.PaidTill, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("staff: scan salary: %w", err)
		}
		m.Salaries = append(m.Salaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: load salaries: %w", err)
	}
	return &m, nil
}

// CountActive counts non-deleted members of a role.
func (r *Repository) CountActive(ctx context.Context, roleName string) (int, error) {
	role, err := roleByName(ctx, r.pool, roleName)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE role_id = $1 AND is_deleted = FALSE
	`, role.ID).Scan(&n); err != nil {
		return 0, fmt.Errorf("staff: count members: %w", err)
	}
	return n, nil
}

// List returns one page of active members plus the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Summary, int, error) {
	role, err := roleByName(ctx, r.pool, f.Role)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"u.role_id = $1", "u.is_deleted = FALSE"}
	args := []any{role.ID}
	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		cond := fmt.Sprintf("u.name ILIKE $%d OR u.email ILIKE $%d", n, n)
		if f.Role == RoleDoctor {
			cond += fmt.Sprintf(" OR d.designation ILIKE $%d", n)
		}
		where = append(where, "("+cond+")")
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM users u
		LEFT JOIN doctors d ON d.user_id = u.id
		WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("staff: count list: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	query := fmt.Sprintf(`
		SELECT u.id, u.public_id, u.name, COALESCE(u.email, ''), COALESCE(u.gender, ''),
			COALESCE(u.contact, ''), COALESCE(u.address, ''), u.is_deleted, u.created_at, u.updated_at,
			d.id, d.degree, d.designation, d.working_start, d.working_end,
			(SELECT s.amount FROM salaries s WHERE s.user_id = u.id ORDER BY s.id DESC LIMIT 1)
		FROM users u
		LEFT JOIN doctors d ON d.user_id = u.id
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("staff: list members: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0, f.Limit)
	for rows.Next() {
		var (
			s        Summary
			doctorID *int64
			degree   *string
			desig    *string
			start    *time.Time
			end      *time.Time
		)
		if err := rows.Scan(
			&s.User.ID, &s.User.PublicID, &s.User.Name, &s.User.Email, &s.User.Gender,
			&s.User.Contact, &s.User.Address, &s.User.IsDeleted, &s.User.CreatedAt, &s.User.UpdatedAt,
			&doctorID, &degree, &desig, &start, &end,
			&s.LatestSalary,
		); err != nil {
			return nil, 0, fmt.Errorf("staff: scan member: %w", err)
		}
		s.User.Role = role
		if doctorID != nil {
			s.Doctor = &Doctor{ID: *doctorID, UserID: s.User.ID, Degree: deref(degree), Designation: deref(desig), WorkingStart: start, WorkingEnd: end}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("staff: list members: %w", err)
	}
	return out, total, nil
}

// ApplyPatch writes every non-empty part of p in one transaction. It returns
// the appended salary row when p.Salary is set.
func (r *Repository) ApplyPatch(ctx context.Context, m *Member, p Patch) (*Salary, error) {
	if p.Empty() {
		return nil, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("staff: begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	if !p.User.empty() {
		set := newSetClause()
		set.add("name", p.User.Name)
		set.add("email", p.User.Email)
		set.add("gender", p.User.Gender)
		set.add("contact", p.User.Contact)
		set.add("address", p.User.Address)
		set.add("password_hash", p.User.PasswordHash)
		query, args := set.build("users", "updated_at = now()", "id", m.User.ID)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, mapWriteError("update user", err)
		}
	}

	if !p.Doctor.empty() {
		if m.Doctor == nil {
			return nil, fmt.Errorf("staff: update doctor: %w", ErrNotFound)
		}
		set := newSetClause()
		set.add("degree", p.Doctor.Degree)
		set.add("designation", p.Doctor.Designation)
		set.add("working_start", p.Doctor.WorkingStart)
		set.add("working_end", p.Doctor.WorkingEnd)
		query, args := set.build("doctors", "", "id", m.Doctor.ID)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, mapWriteError("update doctor", err)
		}
	}

	var appended *Salary
	if p.Salary != nil {
		s, err := appendSalary(ctx, tx, m.User.ID, *p.Salary)
		if err != nil {
			return nil, err
		}
		appended = &s
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteError("commit update", err)
	}
	return appended, nil
}

// SoftDelete flags the member of roleName as deleted. Deleting an already
// deleted member succeeds and keeps the original deletion time.
func (r *Repository) SoftDelete(ctx context.Context, roleName, publicID string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		UPDATE users u
		SET is_deleted = TRUE,
			updated_at = CASE WHEN u.is_deleted THEN u.updated_at ELSE now() END
		FROM roles r
		WHERE r.id = u.role_id AND r.name = $2 AND u.public_id = $1
		RETURNING u.id, u.public_id, u.name, u.is_deleted, u.updated_at
	`, publicID, roleName).Scan(&u.ID, &u.PublicID, &u.Name, &u.IsDeleted, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: soft delete: %w", err)
	}
	return &u, nil
}

// SeedAdmin inserts an administrator under a fixed public id unless that id
// is already taken. It reports whether a row was written.
func (r *Repository) SeedAdmin(ctx context.Context, publicID, name, passwordHash string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO users (public_id, name, password_hash, role_id)
		SELECT $1, $2, $3, id FROM roles WHERE name = $4
		ON CONFLICT (public_id) DO NOTHING
	`, publicID, name, passwordHash, RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("staff: seed admin: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

type setClause struct {
	cols []string
	args []any
}

func newSetClause() *setClause {
	return &setClause{}
}

func (s *setClause) add(col string, v any) {
	switch val := v.(type) {
	case *string:
		if val == nil {
			return
		}
		s.args = append(s.args, *val)
	case *time.Time:
		if val == nil {
			return
		}
		s.args = append(s.args, *val)
	default:
		return
	}
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

func (s *setClause) build(table, extra, keyCol string, key int64) (string, []any) {
	cols := s.cols
	if extra != "" {
		cols = append(cols, extra)
	}
	args := append(s.args, key)
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", table, strings.Join(cols, ", "), keyCol, len(args)), args
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "public_id"):
			return ErrPublicIDTaken
		}
	}
	return fmt.Errorf("staff: %s: %w", op, err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ auth.AccountStore = (*Repository)(nil)
