// internal/config/types.go
package config

import (
	"time"
)

// Store types
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Credential verification modes
const (
	AuthSecret = "secret"
	AuthOIDC   = "oidc"
)

// DefaultJWTSecret is only acceptable for local development.
const DefaultJWTSecret = "your_jwt_secret_change_me_outside_dev"

// MinJWTSecretLength is the HS256 minimum key size in bytes
const MinJWTSecretLength = 32

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
		// RequestTimeout bounds every request, including collaborator calls
		RequestTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
	}

	// Store holds persistence configuration
	Store struct {
		// Type is the store implementation (mongo, memory)
		Type string
		// MongoURI is the MongoDB connection string
		MongoURI string
		// Database is the MongoDB database name
		Database string
	}

	// Auth holds credential configuration
	Auth struct {
		// Type selects how bearer credentials are verified (secret, oidc)
		Type string

		// JWTSecret is the shared HMAC secret for issued tokens
		JWTSecret string
		// JWTTTL is the lifetime of tokens issued at login
		JWTTTL time.Duration
		// BcryptCost is the cost used when hashing passwords
		BcryptCost int

		// OIDC holds external issuer configuration
		OIDC struct {
			// Issuer is the OIDC issuer URL
			Issuer string
			// ClientID is the expected audience or authorized party
			ClientID string
		}
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
		// LogFormat is the log format (text, json)
		LogFormat string
	}
}

// UsesDefaultSecret reports whether the development JWT secret is in effect.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.Type == AuthSecret && c.Auth.JWTSecret == DefaultJWTSecret
}
