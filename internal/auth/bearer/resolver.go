// internal/auth/bearer/resolver.go
package bearer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storyhub/internal/auth"
	"storyhub/internal/auth/credential"
	"storyhub/internal/models"
	"storyhub/internal/observability/logging"
	"storyhub/internal/observability/metrics"
	"storyhub/internal/store"
)

// Authentication outcome labels
const (
	OutcomeOK           = "ok"
	OutcomeNoToken      = "no_token"
	OutcomeInvalidToken = "invalid_token"
	OutcomeUserNotFound = "user_not_found"
	OutcomeError        = "error"
)

const prefix = "Bearer "

// Resolver turns an Authorization header into a Principal
type Resolver struct {
	verifier credential.Verifier
	users    store.Store
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// New creates a resolver that verifies credentials with verifier and loads
// the referenced user from users
func New(verifier credential.Verifier, users store.Store, logger *logging.Logger, metrics *metrics.Collector) *Resolver {
	return &Resolver{
		verifier: verifier,
		users:    users,
		logger:   logger.WithModule("auth.bearer"),
		metrics:  metrics,
	}
}

// Resolve verifies the credential in header and returns the principal it
// names. The role always comes from the stored user record. Failures are
// auth.ErrNoToken, auth.ErrInvalidToken or auth.ErrUserNotFound; any other
// error comes from the store.
func (r *Resolver) Resolve(ctx context.Context, header string) (*auth.Principal, error) {
	logger := logging.FromContextOr(ctx, r.logger)

	token := strings.TrimPrefix(header, prefix)
	if token == "" {
		logger.Debug("No bearer token present")
		r.metrics.RecordAuthentication(OutcomeNoToken)
		return nil, auth.ErrNoToken
	}

	claims, err := r.verifier.Verify(ctx, token)
	if err != nil {
		// the cause stays server-side
		logger.Warn("Token validation failed", logging.Err(err))
		r.metrics.RecordAuthentication(OutcomeInvalidToken)
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	var user models.User
	err = r.users.FindByID(ctx, store.Users, claims.Subject, &user, store.WithoutFields("password"))
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("Token references a missing user", "user_id", claims.Subject)
		r.metrics.RecordAuthentication(OutcomeUserNotFound)
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		r.metrics.RecordAuthentication(OutcomeError)
		return nil, fmt.Errorf("failed to load user %s: %w", claims.Subject, err)
	}

	p := &auth.Principal{ID: user.ID.Hex(), Role: user.Role}
	logger.Debug("Bearer token valid", logging.Principal(p.ID, string(p.Role)))
	r.metrics.RecordAuthentication(OutcomeOK)
	return p, nil
}
