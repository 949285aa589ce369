package entity

import (
	"fmt"
	"sort"
)

// Role is an authorization tag held by a User.
// Persisted by its symbolic name, never by ordinal.
type Role string

const (
	RoleBuyer         Role = "Buyer"
	RoleArtisan       Role = "Artisan"
	RoleSupport       Role = "Support"
	RoleAdministrator Role = "Administrator"
)

// BaseRole is granted on creation and can never be removed.
const BaseRole = RoleBuyer

var roleOrder = map[Role]int{
	RoleBuyer:         0,
	RoleArtisan:       1,
	RoleSupport:       2,
	RoleAdministrator: 3,
}

// AllRoles returns the closed set of roles in declaration order.
func AllRoles() []Role {
	return []Role{RoleBuyer, RoleArtisan, RoleSupport, RoleAdministrator}
}

func (r Role) Valid() bool {
	_, ok := roleOrder[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole maps a symbolic name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// roleSet keeps set semantics for roles; callers only ever see copies.
type roleSet map[Role]struct{}

func newRoleSet(roles ...Role) roleSet {
	s := make(roleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s roleSet) has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s roleSet) sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return roleOrder[out[i]] < roleOrder[out[j]] })
	return out
}
