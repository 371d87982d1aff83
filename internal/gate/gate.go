// internal/gate/gate.go
package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storyhub/internal/auth"
	"storyhub/internal/authz"
	"storyhub/internal/httputils"
	"storyhub/internal/observability/logging"
	"storyhub/internal/observability/metrics"

	"github.com/gorilla/mux"
)

// StatusClientClosedRequest is written when the client goes away mid-pipeline
const StatusClientClosedRequest = 499

// Metric reasons recorded outside the decision reasons
const (
	reasonCancelled = "CANCELLED"
	reasonNotFound  = "NOT_FOUND"
	reasonError     = "ERROR"
)

// Rule declares how one route is protected
type Rule struct {
	// Name identifies the rule in logs and metrics, e.g. "story.update"
	Name string

	// Resource is the type of resource the route addresses
	Resource authz.ResourceType

	// IDVar is the mux variable holding the resource id. Defaults to "id".
	IDVar string

	// Policy is the access rule
	Policy authz.Policy
}

func (r Rule) idVar() string {
	if r.IDVar == "" {
		return "id"
	}
	return r.IDVar
}

// IdentityResolver turns an Authorization header into a principal
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (*auth.Principal, error)
}

// OwnerResolver looks up the owner descriptor of a resource instance
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, rt authz.ResourceType, id string) (authz.OwnerDescriptor, error)
}

// Gate runs the identity, existence and permission checks in that order
// before a protected handler. The first failing stage ends the request.
type Gate struct {
	identity IdentityResolver
	owners   OwnerResolver
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// New creates a gate
func New(identity IdentityResolver, owners OwnerResolver, logger *logging.Logger, metrics *metrics.Collector) *Gate {
	return &Gate{
		identity: identity,
		owners:   owners,
		logger:   logger.WithModule("gate"),
		metrics:  metrics,
	}
}

// Protect wraps next with the gate for rule. next only runs when every stage
// passes and the request is still live; it finds the principal with
// auth.PrincipalFromContext.
func (g *Gate) Protect(rule Rule, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContextOr(ctx, g.logger).With("rule", rule.Name)

		// Stage 1: identity
		principal, err := g.identity.Resolve(ctx, r.Header.Get("Authorization"))
		if g.cancelled(ctx, w, logger, rule) {
			return
		}
		if err != nil {
			if isIdentityFailure(err) {
				reason := authz.IdentityReason(err)
				logger.Info("Request not authenticated", "reason", reason, logging.Err(err))
				g.metrics.RecordAuthorization(rule.Name, string(reason))
				httputils.WriteMessage(w, http.StatusUnauthorized, auth.Message(err))
				return
			}
			g.internalError(w, logger, rule, "Identity resolution failed", err)
			return
		}
		logger = logger.With(logging.Principal(principal.ID, string(principal.Role)))

		// Stage 2: existence, only when the requirement names an owner
		owner := authz.OwnerDescriptor{Type: rule.Resource}
		if rule.Policy.NeedsOwner() {
			id := mux.Vars(r)[rule.idVar()]
			owner, err = g.owners.ResolveOwner(ctx, rule.Resource, id)
			if g.cancelled(ctx, w, logger, rule) {
				return
			}
			if errors.Is(err, authz.ErrResourceNotFound) {
				logger.Info("Resource not found", "resource", rule.Resource, "id", id)
				g.metrics.RecordAuthorization(rule.Name, reasonNotFound)
				httputils.WriteMessage(w, http.StatusNotFound, notFoundMessage(rule.Resource))
				return
			}
			if err != nil {
				g.internalError(w, logger, rule, "Owner resolution failed", err)
				return
			}
		}

		// Stage 3: permission
		req := rule.Policy.Requirement(owner)
		decision := authz.Authorize(principal, req)
		g.metrics.RecordAuthorization(rule.Name, string(decision.Reason))
		if !decision.Allowed {
			logger.Info("Request forbidden", "requirement", req.Name(), "reason", decision.Reason)
			httputils.WriteMessage(w, http.StatusForbidden, forbiddenMessage(decision.Reason, rule.Resource))
			return
		}

		if g.cancelled(ctx, w, logger, rule) {
			return
		}

		logger.Debug("Request authorized", "requirement", req.Name())
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(ctx, principal)))
	})
}

func (g *Gate) cancelled(ctx context.Context, w http.ResponseWriter, logger *logging.Logger, rule Rule) bool {
	if err := ctx.Err(); err != nil {
		logger.Info("Request cancelled before authorization completed", logging.Err(err))
		g.metrics.RecordAuthorization(rule.Name, reasonCancelled)
		httputils.WriteMessage(w, StatusClientClosedRequest, "Request cancelled")
		return true
	}
	return false
}

func (g *Gate) internalError(w http.ResponseWriter, logger *logging.Logger, rule Rule, msg string, err error) {
	logger.Error(msg, logging.Err(err))
	g.metrics.RecordAuthorization(rule.Name, reasonError)
	httputils.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
}

func isIdentityFailure(err error) bool {
	return errors.Is(err, auth.ErrNoToken) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrUserNotFound)
}

var displayNames = map[authz.ResourceType]string{
	authz.ResourceStory:    "Story",
	authz.ResourceCategory: "Category",
	authz.ResourceChapter:  "Chapter",
	authz.ResourceUser:     "User",
}

func notFoundMessage(rt authz.ResourceType) string {
	return displayNames[rt] + " not found"
}

func forbiddenMessage(reason authz.Reason, rt authz.ResourceType) string {
	if reason == authz.ReasonForbiddenOwnership {
		owner := "owner"
		if rt == authz.ResourceStory {
			owner = "uploader"
		}
		return fmt.Sprintf("Forbidden: Only the %s or an admin can modify this %s", owner, rt)
	}
	return "Forbidden: Insufficient permissions"
}
