// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/saasmon/adapters/clock"
	"github.com/artpar/saasmon/adapters/http/api"
	"github.com/artpar/saasmon/adapters/idgen"
	"github.com/artpar/saasmon/adapters/memory"
	"github.com/artpar/saasmon/adapters/metrics"
	"github.com/artpar/saasmon/adapters/sqlite"
	"github.com/artpar/saasmon/app"
	"github.com/artpar/saasmon/config"
	"github.com/artpar/saasmon/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB // nil for the memory driver
	Store      ports.AccountStore
	Accounts   *app.AccountService
	Analytics  *app.AnalyticsService
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// New creates and initializes the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)
	logger.Info().Str("driver", cfg.Database.Driver).Msg("initializing saasmon")

	a := &App{Logger: logger}

	store, db, err := openStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	a.Store = store
	a.DB = db

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	ids := idgen.NewObjectID()
	clk := clock.Real{}
	a.Accounts = app.NewAccountService(store, ids, clk, logger)
	a.Analytics = app.NewAnalyticsService(store, logger)

	handler := api.NewHandler(api.Deps{
		Accounts:  a.Accounts,
		Analytics: a.Analytics,
		Metrics:   a.Metrics,
		Logger:    logger,
	})

	mux := chi.NewRouter()
	mux.Mount("/", handler.Router())
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// OpenStore builds the configured account store, running migrations for the
// sqlite driver. Exposed for the seed command, which writes through the same
// store the server uses.
func OpenStore(cfg config.DatabaseConfig) (ports.AccountStore, *sqlite.DB, error) {
	return openStore(cfg)
}

func openStore(cfg config.DatabaseConfig) (ports.AccountStore, *sqlite.DB, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewAccountStore(), nil, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return sqlite.NewAccountStore(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("http server listening")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	return a.Close()
}

// Close releases held resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SetLogLevel adjusts the global log level at runtime (config hot reload).
func SetLogLevel(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(l)
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
