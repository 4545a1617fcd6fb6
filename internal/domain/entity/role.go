package entity

// Role is a named authorization level carried in access token claims.
type Role string

const (
	// RoleVisitor is assigned to every account at registration.
	RoleVisitor Role = "visitor"
	// RoleAdministrator gates catalog mutations.
	RoleAdministrator Role = "administrator"
)

// Roles is a set of roles attached to a user.
type Roles []Role

// ToStrings converts the role set to plain strings for token claims.
func (r Roles) ToStrings() []string {
	out := make([]string, 0, len(r))
	for _, role := range r {
		out = append(out, string(role))
	}

	return out
}

// RolesFromStrings builds a role set from plain strings.
func RolesFromStrings(ss []string) Roles {
	out := make(Roles, 0, len(ss))
	for _, s := range ss {
		out = append(out, Role(s))
	}

	return out
}

// Contains reports whether the set includes the given role.
func (r Roles) Contains(role Role) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}

	return false
}
