package model

import (
	"strings"
	"time"
)

// Admin is a department administrator.
type Admin struct {
	ID           string     `json:"id" yaml:"-"`
	Name         string     `json:"name" yaml:"name"`
	Department   Department `json:"department" yaml:"department"`
	Email        string     `json:"email" yaml:"email"`
	PasswordHash string     `json:"-" yaml:"-"`
	CreatedAt    time.Time  `json:"-" yaml:"-"`
}

// NormalizeEmail trims and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Principal is the identity asserted by a verified admin credential.
type Principal struct {
	AdminID    string
	Department Department
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminView is the public projection of an Admin.
type AdminView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
	Email      string     `json:"email"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string    `json:"token"`
	Admin AdminView `json:"admin"`
}
