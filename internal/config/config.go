package config

import "time"

// Config is the process-wide configuration. It is loaded once at startup and never mutated.
type Config interface {
	EnvConfig
	CorsConfig
	ShopifyConfig
	SessionConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetRedisURL() string
	GetEnv() string
	IsProduction() bool
	GetBaseURL() string
	GetUpstreamTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// LookupFunc returns the raw value of a configuration variable, or "" when unset.
type LookupFunc func(key string) string

type mainConfig struct {
	EnvVars
	Cors
	Shopify
	Session
	Security
}

// New loads the configuration from the process environment.
func New() Config {
	return Load(osLookup)
}

// Load builds the configuration from an arbitrary lookup, e.g. a map in tests.
func Load(lookup LookupFunc) Config {
	return mainConfig{
		EnvVars:  loadEnvVars(lookup),
		Cors:     loadCors(lookup),
		Shopify:  loadShopify(lookup),
		Session:  loadSession(lookup),
		Security: loadSecurity(lookup),
	}
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) string {
		return values[key]
	}
}
