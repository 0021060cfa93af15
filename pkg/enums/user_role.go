package enums

import "fmt"

// UserRole describes the allowed values for the `rol` column in usuario.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleDeveloper UserRole = "developer"
	UserRoleUser      UserRole = "user"
	UserRoleGuest     UserRole = "guest"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleDeveloper,
	UserRoleUser,
	UserRoleGuest,
}

// IsValid reports whether the value matches the canonical role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManagePanel reports whether the role may use the administrative panel.
func (r UserRole) CanManagePanel() bool {
	return r == UserRoleAdmin || r == UserRoleDeveloper
}

// ParseUserRole converts the raw string to UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
