// internal/authz/types.go
package authz

import (
	"errors"

	"storyhub/internal/auth"
)

// ErrResourceNotFound is returned when the addressed resource does not exist
var ErrResourceNotFound = errors.New("resource not found")

// Reason classifies an authorization decision
type Reason string

const (
	ReasonOK                 Reason = "OK"
	ReasonNoToken            Reason = "NO_TOKEN"
	ReasonInvalidToken       Reason = "INVALID_TOKEN"
	ReasonUserNotFound       Reason = "USER_NOT_FOUND"
	ReasonForbiddenRole      Reason = "FORBIDDEN_ROLE"
	ReasonForbiddenOwnership Reason = "FORBIDDEN_OWNERSHIP"
)

// Decision is the outcome of one authorization check. It is computed per
// request and never cached.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision             { return Decision{Allowed: true, Reason: ReasonOK} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

// IdentityReason maps an identity failure to its decision reason
func IdentityReason(err error) Reason {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		return ReasonNoToken
	case errors.Is(err, auth.ErrUserNotFound):
		return ReasonUserNotFound
	default:
		return ReasonInvalidToken
	}
}

// ResourceType names the kinds of resource a gate can address
type ResourceType string

const (
	ResourceStory    ResourceType = "story"
	ResourceCategory ResourceType = "category"
	ResourceChapter  ResourceType = "chapter"
	ResourceUser     ResourceType = "user"
)

// OwnerDescriptor says who controls a resource instance. OwnerID is empty
// for resource types without per-instance ownership.
type OwnerDescriptor struct {
	Type    ResourceType
	OwnerID string
}

// HasOwner reports whether the resource has a per-instance owner
func (d OwnerDescriptor) HasOwner() bool {
	return d.OwnerID != ""
}

// Requirement is the access rule an endpoint needs satisfied. The set of
// requirements is closed: RoleEquals, SelfOrRole and AuthenticatedOnly.
type Requirement interface {
	// Name is used as a log and metric label
	Name() string
	requirement()
}

// RoleEquals is satisfied when the principal has Role
type RoleEquals struct {
	Role auth.Role
}

// SelfOrRole is satisfied when the principal owns the resource or has Role
type SelfOrRole struct {
	OwnerID string
	Role    auth.Role
}

// AuthenticatedOnly is satisfied by any resolved principal
type AuthenticatedOnly struct{}

func (RoleEquals) Name() string        { return "role_equals" }
func (SelfOrRole) Name() string        { return "self_or_role" }
func (AuthenticatedOnly) Name() string { return "authenticated_only" }

func (RoleEquals) requirement()        {}
func (SelfOrRole) requirement()        {}
func (AuthenticatedOnly) requirement() {}
