package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/tenx-cards/internal/config"
	"github.com/tbourn/tenx-cards/internal/features"
	"github.com/tbourn/tenx-cards/internal/http/middleware"
	"github.com/tbourn/tenx-cards/internal/llm"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/repo"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:     "/api",
		AppEnv:          "test",
		ProblemTypeBase: "https://10xcards.app/problems/",
		RateLimit: config.RateLimitConfig{
			RPS:        100,
			Burst:      100,
			Auth:       config.WindowLimit{Window: time.Minute, Max: 5},
			Generation: config.WindowLimit{Window: time.Minute, Max: 1},
		},
		Auth:           config.AuthConfig{JWTSecret: testSecret},
		AI:             config.AIConfig{Timeout: 5 * time.Second},
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, d Deps, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if d.DB == nil {
		d.DB = newTestDB(t)
	}
	d.Logger = zerolog.Nop()
	r := gin.New()
	RegisterRoutes(r, d, cfg)
	return r
}

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := middleware.SessionClaims{
		Email: userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{middleware.SessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func send(r http.Handler, method, path, tok string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func problemOf(t *testing.T, w *httptest.ResponseRecorder, status int, code string) problem.Details {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, problem.ContentType) {
		t.Fatalf("content type = %q", ct)
	}
	var d problem.Details
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("json: %v", err)
	}
	if d.Code != code {
		t.Fatalf("code = %q, want %q", d.Code, code)
	}
	return d
}

type stubGenerator struct{ calls int }

func (g *stubGenerator) Model() string { return "test/model" }

func (g *stubGenerator) Generate(context.Context, string) ([]llm.Proposal, string, error) {
	g.calls++
	return []llm.Proposal{{Front: fmt.Sprintf("Question %d?", g.calls), Back: "Answer."}}, "test/model", nil
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newRouter(t, Deps{}, testConfig())

	w := send(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	w = send(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	d := problemOf(t, send(r, http.MethodGet, "/nope", "", nil), http.StatusNotFound, "system/route-not-found")
	if d.Instance != "/nope" || d.Type != "https://10xcards.app/problems/system/route-not-found" {
		t.Fatalf("problem = %+v", d)
	}

	problemOf(t, send(r, http.MethodPost, "/health", "", nil), http.StatusMethodNotAllowed, "system/method-not-allowed")
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://app.example"}}
	r := newRouter(t, Deps{}, cfg)

	w := send(r, http.MethodGet, "/health", "", nil, "Origin", "http://app.example")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("credentials = %q", got)
	}

	// httptest requests target example.com, so this origin is not cross-origin.
	w = send(r, http.MethodGet, "/health", "", nil, "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("same-origin GET /health = %d", w.Code)
	}
}

func TestRegisterRoutes_CORSRejectsForeignOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://app.example"}}
	r := newRouter(t, Deps{}, cfg)

	w := send(r, http.MethodGet, "/api/features", "", nil, "Origin", "http://evil.example")
	d := problemOf(t, w, http.StatusForbidden, "system/forbidden-origin")
	if d.Instance != "/api/features" {
		t.Fatalf("instance = %q", d.Instance)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin echoed: %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/features", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	problemOf(t, w, http.StatusForbidden, "system/forbidden-origin")
}

func TestRegisterRoutes_HealthReportsDatabaseDown(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, Deps{DB: db}, testConfig())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	w := send(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /health = %d", w.Code)
	}
}

func TestRegisterRoutes_SessionsAndFeatures(t *testing.T) {
	flags := features.New("test", features.Defaults())
	r := newRouter(t, Deps{Flags: flags}, testConfig())

	problemOf(t, send(r, http.MethodGet, "/api/collections", "", nil), http.StatusUnauthorized, "auth/unauthorized")

	tok := token(t, "u1")
	w := send(r, http.MethodPost, "/api/collections", tok, map[string]any{"name": "Biology"})
	if w.Code != http.StatusCreated || !strings.HasPrefix(w.Header().Get("Location"), "/api/collections/") {
		t.Fatalf("create = %d %v (%s)", w.Code, w.Header(), w.Body.String())
	}
	if w := send(r, http.MethodGet, "/api/collections", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}

	flags.Set(features.Collections, false)
	problemOf(t, send(r, http.MethodGet, "/api/collections", tok, nil), http.StatusServiceUnavailable, "system/feature-disabled")
	// the flag is checked before the session
	problemOf(t, send(r, http.MethodGet, "/api/collections", "", nil), http.StatusServiceUnavailable, "system/feature-disabled")

	// no auth provider wired in this engine
	problemOf(t, send(r, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@b.co", "password": "x"}),
		http.StatusServiceUnavailable, "system/feature-disabled")

	w = send(r, http.MethodGet, "/api/features", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"collections":false`) {
		t.Fatalf("features = %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_GenerationPipeline(t *testing.T) {
	gen := &stubGenerator{}
	r := newRouter(t, Deps{Generator: gen}, testConfig())
	tok := token(t, "u1")
	body := map[string]any{"sourceText": strings.Repeat("Photosynthesis turns light into chemical energy. ", 25)}

	w := send(r, http.MethodPost, "/api/generations", tok, body, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("first = %d (%s)", w.Code, w.Body.String())
	}

	// replays are served even when the window is spent
	w = send(r, http.MethodPost, "/api/generations", tok, body, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated || w.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay = %d %v", w.Code, w.Header())
	}

	w = send(r, http.MethodPost, "/api/generations", tok, body, middleware.HeaderIdempotencyKey, "k-2")
	problemOf(t, w, http.StatusTooManyRequests, "generation/rate-limited")
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	if gen.calls != 1 {
		t.Fatalf("model called %d times", gen.calls)
	}
}

func TestRegisterRoutes_GenerationWithoutModel(t *testing.T) {
	r := newRouter(t, Deps{}, testConfig())
	body := map[string]any{"sourceText": strings.Repeat("Plate tectonics shape the continents. ", 30)}

	w := send(r, http.MethodPost, "/api/generations", token(t, "u1"), body)
	problemOf(t, w, http.StatusServiceUnavailable, "generation/model-unavailable")
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}
