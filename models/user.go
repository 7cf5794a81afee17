package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleCustomer
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Language     string    `db:"language" json:"language"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserPatch carries the admin-editable fields; only non-nil fields are applied.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ProfilePatch is the customer self-service subset of UserPatch.
type ProfilePatch struct {
	Name      *string `json:"name"`
	Language  *string `json:"language"`
	AvatarURL *string `json:"avatar_url"`
	Password  *string `json:"password"`
}
