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

	httpapi "github.com/aussiebroadwan/totpenroll/internal/enroll/http"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store/drivers/sqlite"
	"github.com/aussiebroadwan/totpenroll/pkg/cryptox"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the enrollment service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	sealer *cryptox.Sealer
	engine *totpx.Engine

	// Services
	accountService       *service.AccountService
	enrollmentService    *service.EnrollmentService
	authenticatorService *service.AuthenticatorService
	housekeepingService  *service.HousekeepingService

	// HTTP server
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
			Service: "totp-enroll",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		engine: totpx.NewEngine(totpx.WithSkew(uint(cfg.Skew))),
	}

	sealer, err := InitSealer(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.sealer = sealer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("enrollment service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down enrollment service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Unconfirmed secrets are never persisted, so pending enrollments end here.
	if n := app.enrollmentService.Pending(); n > 0 {
		app.logger.Info("discarding pending enrollments", "count", n)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("enrollment service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := sqliteDSN(app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func sqliteDSN(file string) string {
	if file == ":memory:" {
		return file
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	sealed := &service.SealedAuthenticatorStore{
		Store:  app.db,
		Sealer: app.sealer,
	}

	enroller, err := service.NewEnroller(app.engine, sealed, app.cfg.DraftTTL)
	if err != nil {
		return fmt.Errorf("TOTP self test failed: %w", err)
	}

	app.enrollmentService = service.NewEnrollmentService(enroller, app.db.Accounts(), app.cfg.Issuer, app.logger)
	app.accountService = &service.AccountService{
		Store:       app.db,
		Enrollments: app.enrollmentService,
		Logger:      app.logger,
	}
	app.authenticatorService = &service.AuthenticatorService{
		Store:          app.db,
		Authenticators: sealed,
		Engine:         app.engine,
		Logger:         app.logger,
		Now:            time.Now,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.enrollmentService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.QREndpoint = app.cfg.QREndpoint
	router.QRSize = app.cfg.QRSize
	router.AccountService = app.accountService
	router.EnrollmentService = app.enrollmentService
	router.AuthenticatorService = app.authenticatorService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
