// internal/authz/policy.go
package authz

import (
	"storyhub/internal/auth"
)

// PolicyKind selects the requirement a Policy produces
type PolicyKind int

const (
	// KindAuthenticated requires any principal
	KindAuthenticated PolicyKind = iota
	// KindRole requires an exact role
	KindRole
	// KindOwnerOrRole requires ownership of the addressed resource or a role
	KindOwnerOrRole
)

// Policy is the static rule a route declares. The concrete Requirement is
// built per request once the owner descriptor is known.
type Policy struct {
	Kind PolicyKind
	Role auth.Role
}

// RequireAuthentication admits any authenticated principal
func RequireAuthentication() Policy {
	return Policy{Kind: KindAuthenticated}
}

// RequireRole admits only principals with role
func RequireRole(role auth.Role) Policy {
	return Policy{Kind: KindRole, Role: role}
}

// RequireOwnerOrRole admits the resource owner or principals with role
func RequireOwnerOrRole(role auth.Role) Policy {
	return Policy{Kind: KindOwnerOrRole, Role: role}
}

// NeedsOwner reports whether the owner descriptor must be resolved first
func (p Policy) NeedsOwner() bool {
	return p.Kind == KindOwnerOrRole
}

// Requirement builds the requirement for owner
func (p Policy) Requirement(owner OwnerDescriptor) Requirement {
	switch p.Kind {
	case KindRole:
		return RoleEquals{Role: p.Role}
	case KindOwnerOrRole:
		return SelfOrRole{OwnerID: owner.OwnerID, Role: p.Role}
	default:
		return AuthenticatedOnly{}
	}
}
