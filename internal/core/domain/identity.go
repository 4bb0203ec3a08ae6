package domain

import (
	"strings"
	"time"
)

// Role names carried in the token role claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// NormalizeRole upper-cases and trims a role name so "admin" and " ADMIN" compare equal.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// ProfileUpdate carries the optional fields of a profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// IsEmpty reports whether no field was supplied.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}
