package enums

import "fmt"

// UserRole represents a system-level permissions role. Values are stored
// verbatim in the users table and in JWT claims.
type UserRole string

const (
	UserRoleFarmer      UserRole = "petani"
	UserRoleAdmin       UserRole = "admin"
	UserRoleDistributor UserRole = "distributor"
	UserRoleSuperAdmin  UserRole = "super_admin"
)

var validUserRoles = []UserRole{
	UserRoleFarmer,
	UserRoleAdmin,
	UserRoleDistributor,
	UserRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may act on behalf of the program office.
func (u UserRole) IsStaff() bool {
	return u == UserRoleAdmin || u == UserRoleSuperAdmin
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
