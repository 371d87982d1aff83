// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Int type for integer settings
	Int SettingType = "int"
	// Duration type for settings parsed with time.ParseDuration
	Duration SettingType = "duration"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Env is the environment variable name for the setting
	Env string
	// Required indicates whether the setting is required
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Lookup returns the setting with the given name
func (sl SettingList) Lookup(name string) (Setting, bool) {
	for _, s := range sl {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the API server listens",
		Type:    String,
		Default: ":6969",
		Env:     "SERVER_ADDR",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
		Env:     "METRICS_ADDR",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    Duration,
		Default: "30s",
		Env:     "SHUTDOWN_TIMEOUT",
	},
	{
		Name:    "REQUEST_TIMEOUT",
		Short:   "Maximum time a single request may take",
		Type:    Duration,
		Default: "15s",
		Env:     "REQUEST_TIMEOUT",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Enable TLS for the API server",
		Type:    Bool,
		Default: false,
		Env:     "TLS_ENABLED",
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
		Env:     "TLS_CERT_PATH",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
		Env:     "TLS_KEY_PATH",
	},

	// Store settings
	{
		Name:    "STORE_TYPE",
		Short:   "Persistence backend (mongo, memory)",
		Type:    String,
		Default: StoreMongo,
		Env:     "STORE_TYPE",
	},
	{
		Name:     "MONGO_URI",
		Short:    "MongoDB connection string",
		Type:     String,
		Default:  "mongodb://localhost:27017",
		Env:      "MONGO_URI",
		Required: true,
	},
	{
		Name:    "MONGO_DATABASE",
		Short:   "MongoDB database name",
		Type:    String,
		Default: "storyhub",
		Env:     "MONGO_DATABASE",
	},

	// Credentials
	{
		Name:    "AUTH_TYPE",
		Short:   "Bearer credential verification (secret, oidc)",
		Type:    String,
		Default: AuthSecret,
		Env:     "AUTH_TYPE",
	},
	{
		Name:    "JWT_SECRET",
		Short:   "Shared secret used to sign and verify tokens",
		Type:    String,
		Default: DefaultJWTSecret,
		Env:     "JWT_SECRET",
	},
	{
		Name:    "JWT_TTL",
		Short:   "Lifetime of tokens issued at login",
		Type:    Duration,
		Default: "720h",
		Env:     "JWT_TTL",
	},
	{
		Name:    "BCRYPT_COST",
		Short:   "bcrypt cost for password hashing",
		Type:    Int,
		Default: 10,
		Env:     "BCRYPT_COST",
	},
	{
		Name:    "AUTH_OIDC_ISSUER",
		Short:   "OIDC issuer URL",
		Type:    String,
		Default: "",
		Env:     "AUTH_OIDC_ISSUER",
	},
	{
		Name:    "AUTH_OIDC_CLIENT_ID",
		Short:   "OIDC client ID",
		Type:    String,
		Default: "",
		Env:     "AUTH_OIDC_CLIENT_ID",
	},

	// Observability
	{
		Name:    "LOG_LEVEL",
		Short:   "Logging level",
		Type:    String,
		Default: "info",
		Env:     "LOG_LEVEL",
	},
	{
		Name:    "LOG_FORMAT",
		Short:   "Logging format (text, json)",
		Type:    String,
		Default: "text",
		Env:     "LOG_FORMAT",
	},
}
