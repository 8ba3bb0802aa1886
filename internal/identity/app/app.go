package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/aussiebroadwan/passage/internal/identity/http"
	"github.com/aussiebroadwan/passage/internal/identity/metrics"
	"github.com/aussiebroadwan/passage/internal/identity/service"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/internal/identity/store/drivers/postgres"
	"github.com/aussiebroadwan/passage/internal/identity/store/drivers/sqlite"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the identity service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	secrets  Secrets
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	resetService        *service.ResetService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	app.registry, app.metrics = metrics.NewRegistry()

	secrets, err := LoadSecrets(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.secrets = secrets

	if err := app.initDatabase(context.Background()); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.Open(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:     app.secrets.Signing,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
		ResetTTL:   app.cfg.ResetTTL,
		Metrics:    app.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	hasher := cryptox.NewHasher(app.secrets.Pepper)
	app.authService = &service.AuthService{
		Store:   app.db,
		Hasher:  hasher,
		Tokens:  tokens,
		Metrics: app.metrics,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Auth:   app.authService,
		Guard:  &service.Guard{Tokens: tokens},
		Tokens: tokens,
	}
	app.resetService = &service.ResetService{
		Store:  app.db,
		Hasher: hasher,
		Tokens: tokens,
		Notifier: service.LogNotifier{
			Logger:      app.logger,
			IncludeLink: app.cfg.Env == "dev",
		},
		Metrics:   app.metrics,
		BaseURL:   app.cfg.ResetURL,
		SingleUse: app.cfg.ResetSingleUse,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics

	if !app.cfg.ResetSingleUse {
		app.logger.Warn("reset tokens are reusable until they expire")
	}
	if app.cfg.ExposeResetToken {
		app.logger.Warn("reset links are returned in API responses; do not enable outside development")
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	v, err := validate.New()
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	router := httpapi.NewRouter(
		app.tokenService,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.Validator = v
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ResetService = app.resetService
	router.ExposeResetLink = app.cfg.ExposeResetToken
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
