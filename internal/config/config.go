package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSupabase = "supabase"
	StoreBackendSQLite   = "sqlite"
)

type Config struct {
	Port               string
	AppEnv             string
	LogLevel           string
	AccessLog          bool
	EnableDocs         bool
	DBUrl              string
	JWTSecret          string
	TokenTTL           time.Duration
	StoreBackend       string
	SQLitePath         string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseTable      string
	GeminiAPIKey       string
	PlanModel          string
	AnalysisModel      string
	DefaultLanguage    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	geminiKey, exists := os.LookupEnv("GEMINI_API_KEY")
	if !exists || geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AccessLog:          getEnvBool("ACCESS_LOG", true),
		EnableDocs:         getEnvBool("ENABLE_DOCS", false),
		DBUrl:              getEnv("DB_URL", ""),
		JWTSecret:          jwtSecret,
		TokenTTL:           time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		SQLitePath:         getEnv("SQLITE_PATH", "healthquest.db"),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseTable:      getEnv("SUPABASE_TABLE", "profiles"),
		GeminiAPIKey:       geminiKey,
		PlanModel:          getEnv("PLAN_MODEL", "gemini-3-pro-preview"),
		AnalysisModel:      getEnv("ANALYSIS_MODEL", "gemini-3-flash-preview"),
		DefaultLanguage:    strings.ToLower(getEnv("DEFAULT_LANGUAGE", "pt")),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("DB_URL is required for the postgres store")
		}
	case StoreBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase store")
		}
		if c.DBUrl == "" {
			return fmt.Errorf("DB_URL is required for user accounts")
		}
	case StoreBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be greater than 0")
	}
	return nil
}

// UsesPostgres reports whether user accounts live in postgres. The sqlite
// backend keeps accounts and snapshots in the same file.
func (c *Config) UsesPostgres() bool {
	return c.StoreBackend != StoreBackendSQLite
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// DocsEnabled reports whether the API docs are served. They never are outside
// development.
func (c *Config) DocsEnabled() bool {
	return c.IsDevelopment() && c.EnableDocs
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
