// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, feature flags, sessions, idempotency, and rate
// limiting.
//
// Every API handler returns an error; WithProblemHandling turns it into an
// application/problem+json response.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/tenx-cards/docs"
	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/config"
	"github.com/tbourn/tenx-cards/internal/features"
	"github.com/tbourn/tenx-cards/internal/http/handlers"
	"github.com/tbourn/tenx-cards/internal/http/middleware"
	"github.com/tbourn/tenx-cards/internal/ratelimit"
	"github.com/tbourn/tenx-cards/internal/repo"
	"github.com/tbourn/tenx-cards/internal/services"
)

// Deps carries the collaborators built by main.
type Deps struct {
	DB    *gorm.DB
	Flags *features.Flags
	// AuthProvider is the hosted auth client (*gotrue.Client).
	AuthProvider services.AuthProvider
	// Generator may be nil; generation then answers
	// generation/model-unavailable.
	Generator services.ProposalGenerator

	// Limiters default to in-memory stores sized from config.
	AuthLimiter       ratelimit.Limiter
	GenerationLimiter ratelimit.Limiter

	Logger zerolog.Logger
}

// Tunables of the generation flow.
const (
	duplicateThreshold = 0.8
	maxExistingFronts  = 500
	maxBodyBytes       = 1 << 20
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RequestLogger + RedactingLogger: scoped logger, PII-free access log
//  4. Recovery: panics become system/unexpected problems
//  5. Body size limiter
//  6. Metrics
//  7. Problem type base
//  8. Token-bucket limiter per user/IP
//  9. CORS, security headers, gzip
//
// Per route: feature flag, then session, then (generation only) idempotency
// and the fixed-window limiter. Replays skip the limiter.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		apperr.RegisterJSONFieldNames(v)
	}

	log := d.Logger
	flags := d.Flags
	if flags == nil {
		flags = features.New(cfg.AppEnv, features.Defaults())
	}
	authLimiter := d.AuthLimiter
	if authLimiter == nil {
		authLimiter = memoryLimiter(log, "auth", cfg.RateLimit.Auth)
	}
	genLimiter := d.GenerationLimiter
	if genLimiter == nil {
		genLimiter = memoryLimiter(log, "generation", cfg.RateLimit.Generation)
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RedactingLogger(log, middleware.RedactOptions{
		MaskHeaders: []string{"apikey", "X-Supabase-Auth"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.Use(middleware.ProblemTypeBase(cfg.ProblemTypeBase))

	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		middleware.WriteProblem(c, apperr.SystemRouteNotFound.Newf("No route for %s %s.", c.Request.Method, c.Request.URL.Path))
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.WriteProblem(c, apperr.SystemMethodNotAllowed.Newf("%s is not allowed on %s.", c.Request.Method, c.Request.URL.Path))
	})

	// Operational endpoints
	r.GET("/health", handlers.Health(pingDB(d.DB)))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Dependency injection: services ← repo/db/providers
	authSvc := &services.AuthService{Provider: d.AuthProvider, RedirectURL: cfg.Auth.RedirectURL}
	colSvc := services.NewCollectionService(d.DB, repo.Collections{})
	cardSvc := &services.FlashcardService{DB: d.DB}
	genSvc := &services.GenerationService{
		DB:                 d.DB,
		AI:                 d.Generator,
		Timeout:            cfg.AI.Timeout,
		DuplicateThreshold: duplicateThreshold,
		MaxExistingFronts:  maxExistingFronts,
		IdempotencyTTL:     cfg.IdempotencyTTL,
	}

	h := handlers.New(handlers.Deps{
		Auth:        authSvc,
		Collections: colSvc,
		Flashcards:  cardSvc,
		Generations: genSvc,
		Features:    flags,
		AuthLimiter: authLimiter,
		Cookies:     handlers.CookieOptions{Secure: cfg.Auth.CookieSecure},
		BasePath:    cfg.APIBasePath,
	})
	wrap := middleware.WithProblemHandling
	session := middleware.RequireSession(middleware.NewSessionVerifier(cfg.Auth.JWTSecret))

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.GET("/features", wrap(h.ListFeatures))

	// Auth
	auth := api.Group("/auth", middleware.RequireFeature(flags, features.Auth))
	if d.AuthProvider == nil {
		auth.Use(unavailable("Authentication is not configured."))
	}
	{
		auth.POST("/login", wrap(h.Login))
		auth.POST("/register", wrap(h.Register))
		auth.POST("/logout", wrap(h.Logout))
		auth.POST("/reset-password", wrap(h.ResetPassword))
		auth.POST("/resend-verification", wrap(h.ResendVerification))
		auth.GET("/callback", wrap(h.Callback))
		auth.POST("/update-password", session, wrap(h.UpdatePassword))
		auth.GET("/me", session, wrap(h.Me))
	}

	// Collections
	cols := api.Group("/collections", middleware.RequireFeature(flags, features.Collections), session)
	{
		cols.GET("", wrap(h.ListCollections))
		cols.POST("", wrap(h.CreateCollection))
		cols.GET("/:id", wrap(h.GetCollection))
		cols.PATCH("/:id", wrap(h.UpdateCollection))
		cols.DELETE("/:id", wrap(h.DeleteCollection))
	}

	// Flashcards
	cards := api.Group("/flashcards", middleware.RequireFeature(flags, features.Flashcards), session)
	{
		cards.GET("", wrap(h.ListFlashcards))
		cards.POST("", wrap(h.CreateFlashcards))
		cards.GET("/:id", wrap(h.GetFlashcard))
		cards.PATCH("/:id", wrap(h.UpdateFlashcard))
		cards.DELETE("/:id", wrap(h.DeleteFlashcard))
	}

	// Generations
	gens := api.Group("", middleware.RequireFeature(flags, features.Generation), session)
	{
		gens.POST("/generations",
			middleware.IdempotencyKey(middleware.IdempotencyOptions{}, replayLookup(genSvc)),
			middleware.WindowLimit(genLimiter, apperr.GenerationRateLimited, middleware.KeyByUser()),
			wrap(h.CreateGeneration),
		)
		gens.GET("/generations", wrap(h.ListGenerations))
		gens.GET("/generations/:id", wrap(h.GetGeneration))
		gens.GET("/generation-errors", wrap(h.ListGenerationErrors))
	}
}

// corsMiddleware allows every origin without credentials when none are
// configured. Otherwise allow-listed origins are echoed with credentials
// (session cookies need them) and other cross-origin requests get
// system/forbidden-origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey}
	expose := []string{"X-Request-ID", "Content-Length", "ETag", "Location", "Retry-After", "X-RateLimit-Remaining", handlers.HeaderIdempotentReplayed}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// ACAO on every response, including requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    expose,
				AllowCredentials: false,
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			origin := c.GetHeader("Origin")
			if origin == "" || sameOrigin(c.Request, origin) {
				c.Next()
				return
			}
			if _, ok := allowed[origin]; !ok {
				middleware.WriteProblem(c, apperr.SystemForbiddenOrigin.Newf("Origin %s is not allowed.", origin))
				return
			}
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    expose,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// sameOrigin reports whether origin names the host the request was sent to.
// Such requests are not cross-origin and pass without CORS checks.
func sameOrigin(r *http.Request, origin string) bool {
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// unavailable rejects every request of a group whose backing provider is
// not configured.
func unavailable(detail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.WriteProblem(c, apperr.SystemFeatureDisabled.New(detail))
	}
}

// replayLookup reports stored generation responses to the idempotency
// middleware.
func replayLookup(s *services.GenerationService) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, key string) (bool, error) {
		_, found, err := s.FindReplay(ctx, userID, key)
		return found, err
	}
}

// memoryLimiter builds an instrumented in-process limiter. An invalid window
// disables limiting for the scope.
func memoryLimiter(log zerolog.Logger, scope string, wl config.WindowLimit) ratelimit.Limiter {
	l, err := ratelimit.NewInMemory(ratelimit.Config{Window: wl.Window, Max: wl.Max})
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("rate limiting disabled")
		return nil
	}
	return ratelimit.Instrument(scope, l)
}

func pingDB(db *gorm.DB) handlers.PingFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("no database configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
