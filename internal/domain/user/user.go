package user

import (
	"errors"
	"math"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already in use")
	ErrInvalidRole = errors.New("invalid role")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public is the client-facing projection of a user record.
type Public struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Public() Public {
	return Public{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.Role == nil
}

// Apply copies the set fields of p onto u and bumps UpdatedAt.
func (p Patch) Apply(u *User, now time.Time) error {
	if p.Role != nil && !p.Role.Valid() {
		return ErrInvalidRole
	}

	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}

	u.UpdatedAt = now
	return nil
}

// Page is one offset page of users plus the unfiltered total.
type Page struct {
	Items []User
	Total int
}

// NormalizePage clamps page numbers below 1 to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset returns the row offset for a 1-based page. Pages too large to
// address saturate at math.MaxInt, which every store treats as past the end.
func Offset(page, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}

	skip := NormalizePage(page) - 1
	if skip > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return skip * pageSize
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
