package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-portal/internal/api/router"
	"github.com/wolfman30/clinic-portal/internal/app/bootstrap"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	appconfig "github.com/wolfman30/clinic-portal/internal/config"
	"github.com/wolfman30/clinic-portal/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-portal/internal/http/middleware"
	"github.com/wolfman30/clinic-portal/internal/observability/metrics"
	"github.com/wolfman30/clinic-portal/internal/sessions"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

const (
	limiterEvictInterval = time.Minute
	sessionSweepInterval = 5 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_store", cfg.SessionStore,
	)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize portal", "error", err)
		os.Exit(1)
	}
	defer app.close()

	go app.limiter.Run(ctx.Done(), limiterEvictInterval)
	go bootstrap.RunSweeper(ctx, app.sweeper, sessionSweepInterval, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", app.srv.Addr)
		if err := app.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

type server struct {
	srv       *http.Server
	limiter   *httpmiddleware.RateLimiter
	redirects *booking.Redirects
	sweeper   bootstrap.Sweeper
	closeFn   func()
}

func (s *server) close() {
	s.redirects.Stop()
	s.closeFn()
}

// setupPortalMetrics builds a dedicated registry with runtime collectors.
func setupPortalMetrics() (http.Handler, *metrics.PortalMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), metrics.NewPortalMetrics(registry)
}

// sessionSecret returns the configured secret or a per-process random one.
func sessionSecret(cfg *appconfig.Config, logger *logging.Logger) (string, error) {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive a restart")
	return hex.EncodeToString(buf), nil
}

func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*server, error) {
	metricsHandler, portalMetrics := setupPortalMetrics()

	api, err := clinicapi.New(clinicapi.Config{
		BaseURL:    cfg.ClinicAPIURL,
		Timeout:    cfg.ClinicAPITimeout,
		MaxRetries: cfg.ClinicAPIMaxRetries,
		Backoff:    cfg.ClinicAPIBackoff,
		Logger:     logger,
		Observer:   portalMetrics,
	})
	if err != nil {
		return nil, err
	}

	backend, err := bootstrap.BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	signer, err := sessions.NewTokenSigner(secret)
	if err != nil {
		backend.Close()
		return nil, err
	}
	manager := sessions.NewManager(backend.Store, signer, cfg.SessionTTL, logger)
	redirects := booking.NewRedirects()
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	checks := map[string]handlers.HealthCheck{}
	if backend.Ping != nil {
		checks["session_store"] = backend.Ping
	}

	// Setup router
	r := router.New(&router.Config{
		Logger: logger,
		Handlers: handlers.Config{
			API:           api,
			Sessions:      manager,
			Redirects:     redirects,
			Metrics:       portalMetrics,
			Logger:        logger,
			CookieName:    cfg.CookieName,
			CookieSecure:  cfg.CookieSecure,
			RedirectDelay: cfg.BookingRedirectDelay,
		},
		MetricsHandler:     metricsHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:       checks,
	})

	return &server{
		srv: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		limiter:   limiter,
		redirects: redirects,
		sweeper:   backend.Sweeper,
		closeFn:   backend.Close,
	}, nil
}
