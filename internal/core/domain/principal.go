package domain

// Role is an opaque permission tag held by a principal. Membership is
// OR-combined; there is no role hierarchy or inheritance.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Principal is the authenticated actor for a request. It is built fresh per
// request from verified claims and never persisted.
type Principal struct {
	ID    string
	Email string
	Roles []Role
}

// Anonymous is the zero principal used for unauthenticated requests.
var Anonymous = Principal{}

// IsAuthenticated reports whether the principal carries a verified identity.
func (p Principal) IsAuthenticated() bool {
	return p.ID != ""
}

// HasAnyRole reports whether the principal holds at least one of the
// required roles.
func (p Principal) HasAnyRole(required []Role) bool {
	if len(required) == 0 {
		return false
	}

	held := make(map[Role]struct{}, len(p.Roles))
	for _, role := range p.Roles {
		held[role] = struct{}{}
	}

	for _, role := range required {
		if _, ok := held[role]; ok {
			return true
		}
	}
	return false
}

// RoleNames converts a role slice to plain strings for token claims.
func RoleNames(roles []Role) []string {
	if len(roles) == 0 {
		return nil
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return names
}

// RolesFromNames converts claim strings back to roles, dropping blanks.
func RolesFromNames(names []string) []Role {
	if len(names) == 0 {
		return nil
	}
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		roles = append(roles, Role(name))
	}
	return roles
}
