package domain

import (
	"errors"
	"time"
)

// Staff errors
var (
	ErrStaffNotFound      = errors.New("staff user not found")
	ErrStaffExists        = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// Staff role constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// StaffUser is a back-office identity able to operate the gate and the
// member registry.
type StaffUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func ValidateRole(role string) error {
	if role != RoleAdmin && role != RoleOperator {
		return ErrInvalidRole
	}
	return nil
}
