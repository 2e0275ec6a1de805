// Package staff manages clinic staff records (doctors, receptionists, administrators)
// on top of a relational store.
package staff

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Role names known to the system.
const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RoleReceptionist = "Receptionist"
	RolePatient      = "Patient"
)

// DefaultRoles is the fixed role set ensured at startup.
var DefaultRoles = []Role{
	{Name: RoleAdmin, Prefix: "A"},
	{Name: RoleDoctor, Prefix: "D"},
	{Name: RoleReceptionist, Prefix: "R"},
	{Name: RolePatient, Prefix: "P"},
}

// Gender values accepted for users.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Designation values accepted for doctors.
const (
	DesignationIntern = "Intern"
	DesignationSenior = "Senior"
)

// Role is a named group of users sharing a public-ID prefix.
type Role struct {
	ID     int64
	Name   string
	Prefix string
}

// User is the shared identity row every staff member owns.
type User struct {
	ID           int64
	PublicID     string
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	Contact      string
	Address      string
	Role         Role
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Doctor is the 1:1 extension row for users with the Doctor role.
type Doctor struct {
	ID           int64
	UserID       int64
	Degree       string
	Designation  string
	WorkingStart *time.Time
	WorkingEnd   *time.Time
}

// Salary is one entry of a user's append-only salary history.
type Salary struct {
	ID        int64
	UserID    int64
	Amount    float64
	PaidTill  *time.Time
	CreatedAt time.Time
}

// Member is a user with its role extension and salary history.
type Member struct {
	User     User
	Doctor   *Doctor
	Salaries []Salary
}

// CurrentSalary returns the most recently created salary row.
func (m *Member) CurrentSalary() (Salary, bool) {
	if m == nil || len(m.Salaries) == 0 {
		return Salary{}, false
	}
	latest := m.Salaries[0]
	for _, s := range m.Salaries[1:] {
		if s.ID > latest.ID {
			latest = s
		}
	}
	return latest, true
}

// Summary is the row shape returned by list queries.
type Summary struct {
	User         User
	Doctor       *Doctor
	LatestSalary *float64
}

// ListFilter selects a page of active members for one role.
type ListFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

// Offset returns the row offset for the page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page in list responses.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Amount is a positive money value that accepts JSON numbers or numeric strings.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("amount must be numeric")
	}
	*a = Amount(RoundCents(v))
	return nil
}

// RoundCents rounds v to the two decimal places the salaries table stores.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
