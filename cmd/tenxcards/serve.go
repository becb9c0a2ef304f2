package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/config"
	"github.com/tbourn/tenx-cards/internal/features"
	"github.com/tbourn/tenx-cards/internal/gotrue"
	httpapi "github.com/tbourn/tenx-cards/internal/http"
	"github.com/tbourn/tenx-cards/internal/llm"
	"github.com/tbourn/tenx-cards/internal/observability"
	"github.com/tbourn/tenx-cards/internal/ratelimit"
	"github.com/tbourn/tenx-cards/internal/repo"
	"github.com/tbourn/tenx-cards/internal/sysutil"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	sysutil.SetLogLevel(cfg.LogLevel)
	log := sysutil.NewLogger(os.Stderr, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, observability.Build{Version: version, Env: cfg.AppEnv})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	flags := features.New(cfg.AppEnv, features.Defaults())
	if cfg.FeatureFlagsPath != "" {
		if err := flags.LoadFile(cfg.FeatureFlagsPath); err != nil {
			return err
		}
	}

	authLimiter, genLimiter, closeLimiters, err := newLimiters(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiters()

	deps := httpapi.Deps{
		DB:                db,
		Flags:             flags,
		AuthLimiter:       authLimiter,
		GenerationLimiter: genLimiter,
		Logger:            log,
	}
	if cfg.AuthEnabled() {
		deps.AuthProvider = gotrue.New(cfg.Auth.URL, cfg.Auth.AnonKey)
	} else {
		log.Warn().Msg("SUPABASE_URL/SUPABASE_ANON_KEY not set, auth endpoints disabled")
	}
	if cfg.AI.APIKey != "" {
		client := llm.New(cfg.AI.APIKey, llm.WithBaseURL(cfg.AI.BaseURL), llm.WithModel(cfg.AI.Model))
		deps.Generator = llm.NewGenerator(client, cfg.AI.Model)
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set, generation answers model-unavailable")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		purgeLoop(gctx, db, log)
		return nil
	})
	if cfg.FeatureFlagsPath != "" {
		g.Go(func() error {
			if err := flags.Watch(gctx, cfg.FeatureFlagsPath, log); err != nil {
				log.Warn().Err(err).Msg("feature flag hot reload disabled")
			}
			return nil
		})
	}
	return g.Wait()
}

// newLimiters builds the auth and generation fixed-window limiters on the
// configured store. The returned close func releases the store.
func newLimiters(ctx context.Context, cfg config.RateLimitConfig) (auth, gen ratelimit.Limiter, closeFn func(), err error) {
	authCfg := ratelimit.Config{Window: cfg.Auth.Window, Max: cfg.Auth.Max}
	genCfg := ratelimit.Config{Window: cfg.Generation.Window, Max: cfg.Generation.Max}

	if cfg.Store != "redis" {
		a, err := ratelimit.NewInMemory(authCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		g, err := ratelimit.NewInMemory(genCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return ratelimit.Instrument("auth", a), ratelimit.Instrument("generation", g), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	a, err := ratelimit.NewRedis(rdb, authCfg, ratelimit.WithPrefix("ratelimit:auth"))
	if err != nil {
		_ = rdb.Close()
		return nil, nil, nil, err
	}
	g, err := ratelimit.NewRedis(rdb, genCfg, ratelimit.WithPrefix("ratelimit:generation"))
	if err != nil {
		_ = rdb.Close()
		return nil, nil, nil, err
	}
	return ratelimit.Instrument("auth", a), ratelimit.Instrument("generation", g), func() { _ = rdb.Close() }, nil
}

// purgeLoop drops expired idempotency records every purgeInterval until ctx
// is done.
func purgeLoop(ctx context.Context, db *gorm.DB, log zerolog.Logger) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.DeleteExpiredIdempotency(ctx, db, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency records")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged idempotency records")
			}
		}
	}
}
