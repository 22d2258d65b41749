package models

import (
	"time"

	"github.com/google/uuid"
)

// User role in the lost & found flow
// "founder" stores found items, "finder" claims them, "both" may do either
type Role string

const (
	RoleFounder Role = "founder"
	RoleFinder  Role = "finder"
	RoleBoth    Role = "both"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleFinder, RoleBoth:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Email          string
	Phone          string
	Role           Role
	HashedPassword string
	IsActive       bool
	LastLogin      *time.Time // nil until first login
}

// HasRole reports whether the user role is one of allowed
// Membership is exact: "both" is its own role, not a superset
func (u User) HasRole(allowed ...Role) bool {
	for _, role := range allowed {
		if u.Role == role {
			return true
		}
	}
	return false
}
