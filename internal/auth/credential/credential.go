// internal/auth/credential/credential.go
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storyhub/internal/config"
	"storyhub/internal/observability/logging"
)

// ErrInvalidCredential is returned for any credential that fails verification
var ErrInvalidCredential = errors.New("invalid credential")

// Claims is the verified content of a bearer credential
type Claims struct {
	// Subject is the id of the user the credential was issued for
	Subject string

	// ExpiresAt is zero when the credential carries no expiry
	ExpiresAt time.Time
}

// Verifier checks the signature and expiry of a raw bearer credential
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Issuer mints credentials for a user id
type Issuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// NewFromConfig returns the verifier selected by cfg.Auth.Type, plus an issuer
// when credentials are minted locally. The issuer is nil for OIDC.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Verifier, Issuer, error) {
	logger = logger.WithModule("auth.credential")

	switch cfg.Auth.Type {
	case config.AuthSecret:
		if cfg.UsesDefaultSecret() {
			logger.Warn("Using the development JWT secret, set STORYHUB_JWT_SECRET outside development")
		}
		issuer, err := NewSecretIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Shared secret credential verification enabled", "ttl", cfg.Auth.JWTTTL)
		return NewSecretVerifier(cfg.Auth.JWTSecret), issuer, nil

	case config.AuthOIDC:
		logger.Debug("Initializing OIDC provider", "issuer", cfg.Auth.OIDC.Issuer)
		verifier, err := NewOIDCVerifier(ctx, cfg.Auth.OIDC.Issuer, cfg.Auth.OIDC.ClientID)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("OIDC credential verification enabled", "issuer", cfg.Auth.OIDC.Issuer)
		return verifier, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown auth type: %q", cfg.Auth.Type)
	}
}
