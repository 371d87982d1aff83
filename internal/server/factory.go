// internal/server/factory.go
package server

import (
	"context"
	"crypto/tls"
	"fmt"

	"storyhub/internal/auth/bearer"
	"storyhub/internal/auth/credential"
	"storyhub/internal/authz/ownership"
	"storyhub/internal/config"
	"storyhub/internal/gate"
	"storyhub/internal/handlers"
	"storyhub/internal/observability"
	"storyhub/internal/observability/logging"
	"storyhub/internal/router"
	"storyhub/internal/store"
	"storyhub/internal/store/memory"
	"storyhub/internal/store/mongostore"
	tlsconfig "storyhub/internal/tls"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize TLS configuration
	var tlsCfg *tls.Config
	if cfg.TLS.Enabled {
		tlsSetup := &tlsconfig.Config{
			Logger:   logger,
			CertPath: cfg.TLS.CertPath,
			KeyPath:  cfg.TLS.KeyPath,
		}
		if tlsCfg, err = tlsSetup.GetTLSConfig(); err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Initialize credential verification
	verifier, issuer, err := credential.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential verification: %w", err)
	}

	// Connect the store last so nothing above leaks a connection on failure
	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	db = store.Instrument(db, obs.Metrics)

	// Initialize the gate: identity, then ownership, then policy
	resolver := bearer.New(verifier, db, logger, obs.Metrics)
	g := gate.New(resolver, ownership.NewGuard(db), logger, obs.Metrics)

	// Initialize router
	h := handlers.New(handlers.Config{
		Store:      db,
		Issuer:     issuer,
		BcryptCost: cfg.Auth.BcryptCost,
	}, logger)
	apiRouter := router.New(router.Config{RequestTimeout: cfg.Server.RequestTimeout}, h, g, obs)

	// Create server configuration
	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	// Create and return the server
	return New(serverConfig, apiRouter, obs.MetricsHandler(), logger, db), nil
}

// openStore creates the configured store
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (store.Store, error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		logger.Warn("Using the in-memory store, data is lost on restart")
		return memory.New(), nil
	case config.StoreMongo:
		s, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}
}
