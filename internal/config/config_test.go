package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables that would leak in from the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range Settings {
		t.Setenv(EnvPrefix+"_"+s.Env, "")
	}
	for _, name := range legacyEnv {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":6969", cfg.Server.Address)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, StoreMongo, cfg.Store.Type)
	assert.Equal(t, "storyhub", cfg.Store.Database)
	assert.Equal(t, AuthSecret, cfg.Auth.Type)
	assert.Equal(t, 720*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORYHUB_SERVER_ADDR", ":8080")
	t.Setenv("STORYHUB_STORE_TYPE", "MEMORY")
	t.Setenv("JWT_SECRET", "s3cret-s3cret-s3cret-s3cret-s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, StoreMemory, cfg.Store.Type)
	assert.Equal(t, "s3cret-s3cret-s3cret-s3cret-s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoadPrefixedSecretWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy-secret-legacy-secret-legacy")
	t.Setenv("STORYHUB_JWT_SECRET", "prefixed-secret-prefixed-secret-xx")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed-secret-prefixed-secret-xx", cfg.Auth.JWTSecret)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "storyhub.yaml")
	content := "SERVER_ADDR: \":7000\"\nLOG_FORMAT: json\nJWT_TTL: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, time.Hour, cfg.Auth.JWTTTL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "bad duration",
			env:  map[string]string{"STORYHUB_SHUTDOWN_TIMEOUT": "soon"},
			want: "invalid shutdown_timeout",
		},
		{
			name: "unknown store",
			env:  map[string]string{"STORYHUB_STORE_TYPE": "postgres"},
			want: "unknown store type",
		},
		{
			name: "unknown auth",
			env:  map[string]string{"STORYHUB_AUTH_TYPE": "basic"},
			want: "unknown auth type",
		},
		{
			name: "oidc without issuer",
			env:  map[string]string{"STORYHUB_AUTH_TYPE": "oidc", "STORYHUB_AUTH_OIDC_CLIENT_ID": "storyhub"},
			want: "OIDC issuer is required",
		},
		{
			name: "bcrypt cost too low",
			env:  map[string]string{"STORYHUB_BCRYPT_COST": "2"},
			want: "bcrypt cost",
		},
		{
			name: "short secret",
			env:  map[string]string{"JWT_SECRET": "your_jwt_secret"},
			want: "JWT secret must be at least",
		},
		{
			name: "tls without cert",
			env:  map[string]string{"STORYHUB_TLS_ENABLED": "true"},
			want: "TLS certificate path is required",
		},
		{
			name: "unknown log format",
			env:  map[string]string{"STORYHUB_LOG_FORMAT": "xml"},
			want: "unknown log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettingsLookup(t *testing.T) {
	s, ok := Settings.Lookup("MONGO_URI")
	require.True(t, ok)
	assert.True(t, s.Required)

	_, ok = Settings.Lookup("UPSTREAM_URL")
	assert.False(t, ok)
}
