// internal/authz/engine.go
package authz

import (
	"fmt"

	"storyhub/internal/auth"
)

// Authorize decides whether p satisfies req. It is pure: the same principal
// and requirement always yield the same decision. A nil principal is denied
// with ReasonNoToken.
func Authorize(p *auth.Principal, req Requirement) Decision {
	if p == nil {
		return deny(ReasonNoToken)
	}

	switch r := req.(type) {
	case AuthenticatedOnly:
		return allow()

	case RoleEquals:
		if p.Role == r.Role {
			return allow()
		}
		return deny(ReasonForbiddenRole)

	case SelfOrRole:
		// self first, then role; the result is a plain OR
		if r.OwnerID != "" && p.ID == r.OwnerID {
			return allow()
		}
		if p.Role == r.Role {
			return allow()
		}
		return deny(ReasonForbiddenOwnership)

	default:
		panic(fmt.Sprintf("authz: unknown requirement %T", req))
	}
}
