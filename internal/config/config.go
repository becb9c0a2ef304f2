// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database selection, rate limiting, the
// hosted auth and AI providers, feature flags and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/tenx-cards/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "tenx-cards")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and configures the database.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite path
	URL    string // Postgres DSN
}

// WindowLimit is a fixed-window budget.
type WindowLimit struct {
	Window time.Duration
	Max    int
}

// RateLimitConfig groups the global token bucket and the per-endpoint
// fixed windows.
type RateLimitConfig struct {
	RPS        float64 // tokens per second (>= 0)
	Burst      int     // bucket size (>= 1)
	Auth       WindowLimit
	Generation WindowLimit
	Store      string // memory|redis
	RedisURL   string
}

// AuthConfig points at the hosted auth provider.
type AuthConfig struct {
	URL          string // SUPABASE_URL
	AnonKey      string // SUPABASE_ANON_KEY
	JWTSecret    string // SUPABASE_JWT_SECRET, verifies session tokens
	RedirectURL  string // where e-mail links land
	CookieSecure bool   // Secure attribute on session cookies
}

// AIConfig points at the OpenAI-compatible completion gateway.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 90s, generation calls are slow
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / routing
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	AppEnv           string // development|staging|production, drives feature flags
	FeatureFlagsPath string // optional YAML file, hot reloaded
	ProblemTypeBase  string // base URI for problem "type"

	DB        DBConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	AI        AIConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / routing
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		AppEnv:           strings.ToLower(getenv("APP_ENV", "development")),
		FeatureFlagsPath: getenv("FEATURE_FLAGS_PATH", ""),
		ProblemTypeBase:  getenv("PROBLEM_TYPE_BASE", "https://10xcards.app/problems/"),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    sysutil.FirstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("SUPABASE_DB_URL")),
		},

		RateLimit: RateLimitConfig{
			RPS:   getfloat("RATE_RPS", 5.0),
			Burst: getint("RATE_BURST", 10),
			Auth: WindowLimit{
				Window: getdur("AUTH_RATE_WINDOW", 15*time.Minute),
				Max:    getint("AUTH_RATE_MAX", 5),
			},
			Generation: WindowLimit{
				Window: getdur("GENERATION_RATE_WINDOW", time.Hour),
				Max:    getint("GENERATION_RATE_MAX", 10),
			},
			Store:    strings.ToLower(getenv("RATE_LIMIT_STORE", "memory")),
			RedisURL: getenv("REDIS_URL", ""),
		},

		Auth: AuthConfig{
			URL:          strings.TrimRight(getenv("SUPABASE_URL", ""), "/"),
			AnonKey:      getenv("SUPABASE_ANON_KEY", ""),
			JWTSecret:    getenv("SUPABASE_JWT_SECRET", ""),
			RedirectURL:  getenv("AUTH_REDIRECT_URL", ""),
			CookieSecure: getbool("AUTH_COOKIE_SECURE", true),
		},

		AI: AIConfig{
			APIKey:  getenv("OPENROUTER_API_KEY", ""),
			BaseURL: strings.TrimRight(getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
			Model:   getenv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			Timeout: getdur("AI_TIMEOUT", 60*time.Second),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "tenx-cards"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.RateLimit.RPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateLimit.Burst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.RateLimit.Auth.Window <= 0 || cfg.RateLimit.Auth.Max < 1 {
		return cfg, errors.New("AUTH_RATE_WINDOW must be > 0 and AUTH_RATE_MAX >= 1")
	}
	if cfg.RateLimit.Generation.Window <= 0 || cfg.RateLimit.Generation.Max < 1 {
		return cfg, errors.New("GENERATION_RATE_WINDOW must be > 0 and GENERATION_RATE_MAX >= 1")
	}
	switch cfg.RateLimit.Store {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.RateLimit.RedisURL) == "" {
			return cfg, errors.New("REDIS_URL is required when RATE_LIMIT_STORE=redis")
		}
	default:
		return cfg, errors.New("RATE_LIMIT_STORE must be one of: memory, redis")
	}
	if cfg.Auth.URL != "" {
		if u, err := url.Parse(cfg.Auth.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return cfg, errors.New("SUPABASE_URL must be an absolute URL")
		}
	}
	if u, err := url.Parse(cfg.AI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return cfg, errors.New("OPENROUTER_BASE_URL must be an absolute URL")
	}
	if cfg.AI.Timeout <= 0 {
		return cfg, errors.New("AI_TIMEOUT must be > 0")
	}
	if u, err := url.Parse(cfg.ProblemTypeBase); err != nil || u.Scheme == "" {
		return cfg, errors.New("PROBLEM_TYPE_BASE must be an absolute URI")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// AuthEnabled reports whether the hosted auth provider is configured.
func (c Config) AuthEnabled() bool {
	return c.Auth.URL != "" && c.Auth.AnonKey != ""
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
