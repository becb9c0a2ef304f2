package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Clear all env that might affect defaults. t.Setenv isolates per test.
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / routing
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("APP_ENV", "Production")
	t.Setenv("FEATURE_FLAGS_PATH", "flags.yaml")
	t.Setenv("DB_DRIVER", "postgresql") // normalized to "postgres"
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/cards")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10
	t.Setenv("AUTH_RATE_WINDOW", "1m")
	t.Setenv("AUTH_RATE_MAX", "3")
	t.Setenv("RATE_LIMIT_STORE", "REDIS")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")

	// Providers
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("OPENROUTER_MODEL", "meta/llama")
	t.Setenv("AI_TIMEOUT", "5s")

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Idempotency
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / routing
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/routing unexpected: %+v", cfg)
	}

	// App
	if cfg.AppEnv != "production" || cfg.FeatureFlagsPath != "flags.yaml" {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.URL != "postgres://u:p@db:5432/cards" {
		t.Fatalf("db unexpected: %+v", cfg.DB)
	}

	// Rate limiting (parse fallback to defaults)
	rl := cfg.RateLimit
	if rl.RPS != 5.0 || rl.Burst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", rl)
	}
	if rl.Auth.Window != time.Minute || rl.Auth.Max != 3 || rl.Generation.Window != time.Hour || rl.Generation.Max != 10 {
		t.Fatalf("window limits unexpected: %+v", rl)
	}
	if rl.Store != "redis" || rl.RedisURL != "redis://cache:6379/0" {
		t.Fatalf("limiter store unexpected: %+v", rl)
	}

	// Providers
	if cfg.Auth.URL != "https://abc.supabase.co" || !cfg.AuthEnabled() || !cfg.Auth.CookieSecure {
		t.Fatalf("auth unexpected: %+v", cfg.Auth)
	}
	if cfg.AI.Model != "meta/llama" || cfg.AI.Timeout != 5*time.Second || cfg.AI.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("ai unexpected: %+v", cfg.AI)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// Idempotency
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("invalid LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil {
			t.Fatalf("expected LOG_LEVEL validation error")
		}
	})
	t.Run("empty PORT via spaces", func(t *testing.T) {
		t.Setenv("PORT", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "PORT must not be empty") {
			t.Fatalf("expected port validation error, got: %v", err)
		}
	})
	t.Run("non-positive timeouts", func(t *testing.T) {
		t.Setenv("READ_TIMEOUT", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "timeouts must be positive") {
			t.Fatalf("expected timeouts validation error, got: %v", err)
		}
	})
	t.Run("max header bytes <= 0", func(t *testing.T) {
		t.Setenv("MAX_HEADER_BYTES", "0")
		if _, err := Load(); err == nil || !containsErr(err, "MAX_HEADER_BYTES") {
			t.Fatalf("expected MAX_HEADER_BYTES validation error, got: %v", err)
		}
	})
	t.Run("empty DB_PATH", func(t *testing.T) {
		t.Setenv("DB_PATH", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "DB_PATH must not be empty") {
			t.Fatalf("expected DB_PATH validation error, got: %v", err)
		}
	})
	t.Run("unknown DB_DRIVER", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		if _, err := Load(); err == nil || !containsErr(err, "DB_DRIVER") {
			t.Fatalf("expected DB_DRIVER validation error, got: %v", err)
		}
	})
	t.Run("postgres without DATABASE_URL", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("SUPABASE_DB_URL", "")
		if _, err := Load(); err == nil || !containsErr(err, "DATABASE_URL") {
			t.Fatalf("expected DATABASE_URL validation error, got: %v", err)
		}
	})
	t.Run("auth window limit", func(t *testing.T) {
		t.Setenv("AUTH_RATE_MAX", "0")
		if _, err := Load(); err == nil || !containsErr(err, "AUTH_RATE") {
			t.Fatalf("expected AUTH_RATE validation error, got: %v", err)
		}
	})
	t.Run("generation window limit", func(t *testing.T) {
		t.Setenv("GENERATION_RATE_WINDOW", "-1s")
		if _, err := Load(); err == nil || !containsErr(err, "GENERATION_RATE") {
			t.Fatalf("expected GENERATION_RATE validation error, got: %v", err)
		}
	})
	t.Run("redis store without url", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_STORE", "redis")
		t.Setenv("REDIS_URL", "")
		if _, err := Load(); err == nil || !containsErr(err, "REDIS_URL") {
			t.Fatalf("expected REDIS_URL validation error, got: %v", err)
		}
	})
	t.Run("unknown limiter store", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_STORE", "memcached")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_LIMIT_STORE") {
			t.Fatalf("expected RATE_LIMIT_STORE validation error, got: %v", err)
		}
	})
	t.Run("relative SUPABASE_URL", func(t *testing.T) {
		t.Setenv("SUPABASE_URL", "abc.supabase.co")
		if _, err := Load(); err == nil || !containsErr(err, "SUPABASE_URL") {
			t.Fatalf("expected SUPABASE_URL validation error, got: %v", err)
		}
	})
	t.Run("AI timeout", func(t *testing.T) {
		t.Setenv("AI_TIMEOUT", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "AI_TIMEOUT") {
			t.Fatalf("expected AI_TIMEOUT validation error, got: %v", err)
		}
	})
	t.Run("relative PROBLEM_TYPE_BASE", func(t *testing.T) {
		t.Setenv("PROBLEM_TYPE_BASE", "/problems/")
		if _, err := Load(); err == nil || !containsErr(err, "PROBLEM_TYPE_BASE") {
			t.Fatalf("expected PROBLEM_TYPE_BASE validation error, got: %v", err)
		}
	})
	t.Run("rate rps negative", func(t *testing.T) {
		t.Setenv("RATE_RPS", "-1")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_RPS") {
			t.Fatalf("expected RATE_RPS validation error, got: %v", err)
		}
	})
	t.Run("rate burst < 1", func(t *testing.T) {
		t.Setenv("RATE_BURST", "0")
		if _, err := Load(); err == nil || !containsErr(err, "RATE_BURST") {
			t.Fatalf("expected RATE_BURST validation error, got: %v", err)
		}
	})
	t.Run("hsts max age negative", func(t *testing.T) {
		t.Setenv("HSTS_MAX_AGE", "-1s")
		if _, err := Load(); err == nil || !containsErr(err, "HSTS_MAX_AGE") {
			t.Fatalf("expected HSTS_MAX_AGE validation error, got: %v", err)
		}
	})
	t.Run("idempotency ttl non-positive", func(t *testing.T) {
		t.Setenv("IDEMPOTENCY_TTL", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "IDEMPOTENCY_TTL") {
			t.Fatalf("expected IDEMPOTENCY_TTL validation error, got: %v", err)
		}
	})
	t.Run("otel sample ratio out of range", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")
		if _, err := Load(); err == nil || !containsErr(err, "OTEL_TRACES_SAMPLER_ARG") {
			t.Fatalf("expected OTEL_TRACES_SAMPLER_ARG validation error, got: %v", err)
		}
	})

	// Note: API_BASE_PATH validation is effectively unreachable due to normalizeBasePath
	// always ensuring a leading '/' and returning "/" for empty input.
}

// --- helpers ---

func TestEnvGetters(t *testing.T) {
	t.Setenv("CFG_EMPTY", "")
	t.Setenv("CFG_WORD", "val")
	t.Setenv("CFG_RATIO", "0.25")
	t.Setenv("CFG_COUNT", "42")
	t.Setenv("CFG_WINDOW", "150ms")
	t.Setenv("CFG_BAD", "nope")

	if got := getenv("CFG_EMPTY", "d"); got != "d" {
		t.Fatalf("getenv(empty) = %q", got)
	}
	if got := getenv("CFG_WORD", "d"); got != "val" {
		t.Fatalf("getenv(set) = %q", got)
	}
	if getfloat("CFG_RATIO", 0) != 0.25 || getfloat("CFG_BAD", 1.5) != 1.5 {
		t.Fatalf("getfloat parse or fallback failed")
	}
	if getint("CFG_COUNT", 0) != 42 || getint("CFG_BAD", 7) != 7 {
		t.Fatalf("getint parse or fallback failed")
	}
	if getdur("CFG_WINDOW", time.Second) != 150*time.Millisecond || getdur("CFG_BAD", time.Hour) != time.Hour {
		t.Fatalf("getdur parse or fallback failed")
	}
}

func TestGetbool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{" yes ", false, true},
		{"On", false, true},
		{"TRUE", false, true},
		{"0", true, false},
		{" no ", true, false},
		{"Off", true, false},
		{"N", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("CFG_FLAG", tc.raw)
		if got := getbool("CFG_FLAG", tc.def); got != tc.want {
			t.Fatalf("getbool(%q, %v) = %v; want %v", tc.raw, tc.def, got, tc.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\") = %#v; want nil", out)
	}
	got := splitCSV(" https://app.10xcards.dev, ,http://localhost:4321 ,")
	want := []string{"https://app.10xcards.dev", "http://localhost:4321"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV = %#v; want %#v", got, want)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		" / ":      "/",
		"api":      "/api",
		"/api/v1/": "/api/v1",
	} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}

// Ensure tests don't leak env to others.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "SUPABASE_DB_URL", "SUPABASE_URL", "RATE_LIMIT_STORE", "APP_ENV"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PATH", "db.sqlite")
	// Intentionally leave API_BASE_PATH and provider keys unset

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api" {
		t.Fatalf("API_BASE_PATH default expected '/api', got %q", cfg.APIBasePath)
	}
	if cfg.DB.Driver != "sqlite" || cfg.RateLimit.Store != "memory" || cfg.AppEnv != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RateLimit.Auth.Window != 15*time.Minute || cfg.RateLimit.Auth.Max != 5 {
		t.Fatalf("auth window default unexpected: %+v", cfg.RateLimit.Auth)
	}
	if cfg.AI.Model != "openai/gpt-4o-mini" || cfg.AI.Timeout != time.Minute {
		t.Fatalf("ai defaults unexpected: %+v", cfg.AI)
	}
	if cfg.ProblemTypeBase != "https://10xcards.app/problems/" {
		t.Fatalf("problem type base default unexpected: %q", cfg.ProblemTypeBase)
	}
	if cfg.AuthEnabled() {
		t.Fatalf("auth should be disabled without SUPABASE_URL")
	}
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	// No special env needed; defaults are valid.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}
