package models

import (
	"strings"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleProctor UserRole = "proctor"
	RoleAdmin   UserRole = "admin"
)

// User is resolved from Casdoor and never persisted by this service
type User struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

// RoleFromCasdoor maps a Casdoor role name or user type onto an internal role
func RoleFromCasdoor(name string) UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin", "administrator":
		return RoleAdmin
	case "teacher", "instructor", "educator":
		return RoleTeacher
	case "proctor", "supervisor":
		return RoleProctor
	default:
		return RoleStudent
	}
}

// DisplayName falls back to the email, then the id, when Casdoor has no display name
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
