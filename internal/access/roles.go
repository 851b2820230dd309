package access

import (
	"errors"
	"fmt"
	"strings"
)

// Role determines which views and navigation links a session may see.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Public paths.
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	LogoutPath   = "/logout"
)

// Dashboard paths, one per role.
const (
	PatientDashboardPath = "/patient/dashboard"
	DoctorDashboardPath  = "/doctor/dashboard"
	AdminDashboardPath   = "/admin/dashboard"
)

// ErrUnknownRole is a configuration error: a session carries a role outside the known set.
var ErrUnknownRole = errors.New("access: unknown role")

// ParseRole normalizes a role string received from the backend.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// DefaultDashboardFor returns the landing view for a role.
func DefaultDashboardFor(role Role) (string, error) {
	switch role {
	case RolePatient:
		return PatientDashboardPath, nil
	case RoleDoctor:
		return DoctorDashboardPath, nil
	case RoleAdmin:
		return AdminDashboardPath, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
}

// LandingPath is DefaultDashboardFor with the anonymous fallback applied.
func LandingPath(s *Session) string {
	if s == nil {
		return LoginPath
	}
	path, err := DefaultDashboardFor(s.Role)
	if err != nil {
		return LoginPath
	}
	return path
}
