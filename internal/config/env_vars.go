package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	portEnvVar            = "PORT"
	appNameVar            = "APP_NAME"
	folderEnvVar          = "FOLDER"
	baseURLVar            = "APP_URL"
	envVar                = "ENV"
	redisURLVar           = "REDIS_URL"
	upstreamTimeoutEnvVar = "UPSTREAM_TIMEOUT"

	productionEnv = "production"
)

type EnvVars struct {
	port            string
	appName         string
	dataFolder      string
	redisURL        string
	env             string
	baseURL         string
	upstreamTimeout time.Duration
}

var _ EnvConfig = EnvVars{}

func loadEnvVars(lookup LookupFunc) EnvVars {
	port := valueOr(lookup, portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return EnvVars{
		port:            port,
		appName:         valueOr(lookup, appNameVar, "Storefront Dashboard"),
		dataFolder:      valueOr(lookup, folderEnvVar, "./data"),
		redisURL:        lookup(redisURLVar),
		env:             valueOr(lookup, envVar, "DEV"),
		baseURL:         strings.TrimRight(valueOr(lookup, baseURLVar, "http://localhost:8080"), "/"),
		upstreamTimeout: durationOr(lookup, upstreamTimeoutEnvVar, 10*time.Second),
	}
}

func (e EnvVars) GetPort() string {
	return e.port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetDataFolder() string {
	return e.dataFolder
}

func (e EnvVars) GetRedisURL() string {
	return e.redisURL
}

func (e EnvVars) GetEnv() string {
	return e.env
}

func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.env, productionEnv)
}

// GetBaseURL returns the public base URL of the app (e.g. "https://dashboard.example.com").
// The OAuth redirect URI is built from it.
func (e EnvVars) GetBaseURL() string {
	return e.baseURL
}

// GetUpstreamTimeout bounds every call to the commerce platform.
func (e EnvVars) GetUpstreamTimeout() time.Duration {
	return e.upstreamTimeout
}

// LoadDotEnv loads .env.local and .env into the process environment if present.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", f).Msg("Could not load env file")
		}
	}
}

func osLookup(key string) string {
	return os.Getenv(key)
}

func valueOr(lookup LookupFunc, key, defaultValue string) string {
	value := strings.TrimSpace(lookup(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func durationOr(lookup LookupFunc, key string, defaultValue time.Duration) time.Duration {
	raw := lookup(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}

func intOr(lookup LookupFunc, key string, defaultValue int) int {
	raw := lookup(key)
	if raw == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid integer, using default")
		return defaultValue
	}
	return i
}

func floatOr(lookup LookupFunc, key string, defaultValue float64) float64 {
	raw := lookup(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid number, using default")
		return defaultValue
	}
	return f
}
