package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/galacash/gateway/docs"
	"github.com/galacash/gateway/internal/api"
	"github.com/galacash/gateway/internal/api/handler"
	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/infrastructure/backend"
	"github.com/galacash/gateway/internal/infrastructure/config"
	redisstore "github.com/galacash/gateway/internal/infrastructure/db/redis"
	"github.com/galacash/gateway/internal/infrastructure/queue"
	"github.com/galacash/gateway/internal/infrastructure/ws"
	"github.com/galacash/gateway/internal/query"
	"github.com/galacash/gateway/internal/session"
	"github.com/galacash/gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                      GalaCash Gateway API
// @version                    1.0
// @description                Session-scoped gateway in front of the GalaCash REST backend.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "galacash-gateway",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("gateway stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.Check{}

	// --- Query store ---
	var store query.Store = query.NewMemoryStore()
	if cfg.Cache.Store == config.CacheStoreRedis {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = redisstore.NewQueryStore(rdb, cfg.Cache.GCTime)
		checks["redis"] = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb, time.Second)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("query cache on redis")
	}
	checks["backend"] = backendCheck(cfg.Backend.URL)

	// --- Cache events → websockets ---
	notifier := ws.NewNotifier(logger.Component("ws"))
	defer notifier.Close()
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, notifier, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// --- Sessions ---
	clientLog := logger.Component("backend")
	clients := func(onAuthFailure func()) (ports.APIClient, error) {
		return backend.New(
			backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout},
			backend.WithLogger(clientLog),
			backend.WithAuthFailureHook(onAuthFailure),
		)
	}
	retry := query.DefaultRetryPolicy()
	retry.BaseDelay = cfg.Cache.RetryDelay
	registry := session.NewRegistry(session.Config{
		TTL:         cfg.Session.TTL,
		IdleTimeout: cfg.Session.IdleTimeout,
		Retry:       retry,
	}, clients, store, dispatcher, log)
	registry.Start(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:      registry,
		Tokens:        middleware.NewTokens(cfg.JWTSecret, cfg.Session.TTL),
		Events:        notifier,
		Checks:        checks,
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		UploadLimit:   cfg.UploadMaxBytes,
		SecureCookies: cfg.IsProduction(),
		Swagger:       !cfg.IsProduction(),
		Log:           logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// backendCheck reports the backend reachable when it answers anything at
// all; auth and routing are not its concern.
func backendCheck(baseURL string) handler.Check {
	client := &http.Client{Timeout: 2 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}
