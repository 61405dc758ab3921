package auth

import "fmt"

// Role is the closed set of staff roles known to the system. It is a defined
// type rather than a bare string so that role checks can be exhaustive.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleClinician     Role = "CLINICIAN"
	RoleNurse         Role = "NURSE"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdministrator, RoleClinician, RoleNurse}

// ParseRole converts a raw string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdministrator:
		return RoleAdministrator, nil
	case RoleClinician:
		return RoleClinician, nil
	case RoleNurse:
		return RoleNurse, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
