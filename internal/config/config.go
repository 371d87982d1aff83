// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is prepended to every setting name when read from the environment
const EnvPrefix = "STORYHUB"

// legacyEnv lists settings that are also honoured under their unprefixed names
var legacyEnv = []string{"JWT_SECRET", "MONGO_URI"}

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	for _, name := range legacyEnv {
		if err := v.BindEnv(name, EnvPrefix+"_"+name, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return fromViper(v)
}

// fromViper builds a validated Config from a populated viper instance
func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{}
	var err error

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	if config.Server.ShutdownTimeout, err = duration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}
	if config.Server.RequestTimeout, err = duration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate TLS configuration
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")

	// Populate store configuration
	config.Store.Type = strings.ToLower(v.GetString("STORE_TYPE"))
	config.Store.MongoURI = v.GetString("MONGO_URI")
	config.Store.Database = v.GetString("MONGO_DATABASE")

	// Populate credential configuration
	config.Auth.Type = strings.ToLower(v.GetString("AUTH_TYPE"))
	config.Auth.JWTSecret = v.GetString("JWT_SECRET")
	if config.Auth.JWTTTL, err = duration(v, "JWT_TTL"); err != nil {
		return nil, err
	}
	config.Auth.BcryptCost = v.GetInt("BCRYPT_COST")
	config.Auth.OIDC.Issuer = v.GetString("AUTH_OIDC_ISSUER")
	config.Auth.OIDC.ClientID = v.GetString("AUTH_OIDC_CLIENT_ID")

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")
	config.Observability.LogFormat = strings.ToLower(v.GetString("LOG_FORMAT"))

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func duration(v *viper.Viper, name string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToLower(name), err)
	}
	return d, nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		// Check if certificate and key files exist
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	if err := validateStoreConfig(cfg); err != nil {
		return err
	}

	if err := validateAuthConfig(cfg); err != nil {
		return err
	}

	switch cfg.Observability.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", cfg.Observability.LogFormat)
	}

	return nil
}

// validateStoreConfig validates persistence configuration
func validateStoreConfig(cfg *Config) error {
	switch cfg.Store.Type {
	case StoreMemory:
		return nil
	case StoreMongo:
		if cfg.Store.MongoURI == "" {
			return fmt.Errorf("MongoDB URI is required when using the mongo store")
		}
		if cfg.Store.Database == "" {
			return fmt.Errorf("MongoDB database is required when using the mongo store")
		}
		return nil
	default:
		return fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}
}

// validateAuthConfig validates credential configuration
func validateAuthConfig(cfg *Config) error {
	switch cfg.Auth.Type {
	case AuthSecret:
		if len(cfg.Auth.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT secret must be at least %d bytes", MinJWTSecretLength)
		}
		if cfg.Auth.JWTTTL <= 0 {
			return fmt.Errorf("JWT TTL must be positive")
		}
	case AuthOIDC:
		if cfg.Auth.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when OIDC is enabled")
		}
		if cfg.Auth.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
	default:
		return fmt.Errorf("unknown auth type: %q", cfg.Auth.Type)
	}

	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return nil
}
