package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings read from the environment
type Config struct {
	MongoURI string
	MongoDB  string
	RedisURI string
	Port     string

	JWTSecret        string
	OperatorUsername string
	OperatorPassword string

	HotspotThreshold float64
	CatalogCacheSize int
	CatalogCacheTTL  time.Duration
	ProjectCacheTTL  time.Duration

	// PrincipleAliasesFile optionally points at a YAML file of extra
	// principle label aliases.
	PrincipleAliasesFile string
	LogLevel             string
}

// Load reads the configuration, falling back to local development defaults
func Load() *Config {
	return &Config{
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:              getEnv("MONGO_DB", "ethicscore"),
		RedisURI:             getEnv("REDIS_URI", "localhost:6379"),
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		OperatorUsername:     getEnv("OPERATOR_USERNAME", "admin"),
		OperatorPassword:     getEnv("OPERATOR_PASSWORD", "admin123"),
		HotspotThreshold:     getEnvFloat("HOTSPOT_THRESHOLD", 0.5),
		CatalogCacheSize:     getEnvInt("CATALOG_CACHE_SIZE", 128),
		CatalogCacheTTL:      getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		ProjectCacheTTL:      getEnvDuration("PROJECT_CACHE_TTL", 10*time.Minute),
		PrincipleAliasesFile: getEnv("PRINCIPLE_ALIASES_FILE", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

// RedisAddr strips an optional redis:// scheme from RedisURI
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the JSON logger used by every binary
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.SlogLevel()}))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}
