// Package cli provides the bootstrap shared by every pocketwise command:
// logging, environment, configuration and the session the commands drive.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pocketwise/internal/app"
	"pocketwise/internal/backend"
	"pocketwise/internal/config"
	"pocketwise/internal/core"
	"pocketwise/internal/ledger"
	applog "pocketwise/internal/log"
	"pocketwise/internal/metrics"
	"pocketwise/internal/storage"
)

// SetupLogger builds the process logger at the given level and makes it the
// slog default.
func SetupLogger(level string, out io.Writer) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	if out != nil {
		cfg.Output = out
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads path, or .env when path is empty. A missing default
// .env is not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig loads the configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session is an opened ledger with its controller.
type Session struct {
	Controller *app.Controller
	Metrics    *metrics.Prometheus
	Adapter    *storage.Adapter
	backend    *backend.BackendResult
}

// OpenSession creates the configured backend, loads the persisted
// transactions and starts a controller over them. extra options are
// applied after the configured ones.
func OpenSession(ctx context.Context, cfg *config.Config, logger *applog.Logger, extra ...app.Option) (*Session, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	adapter := storage.NewAdapter(res.KV, cfg.StorageKey, logger)
	txns := adapter.Load(ctx)
	store := ledger.New(adapter, txns, ledger.WithLogger(logger))
	m := metrics.NewPrometheus()

	opts := []app.Option{
		app.WithFormatter(core.NewFormatter(cfg.CurrencySymbol)),
		app.WithSearchDelay(cfg.SearchDebounce),
		app.WithDefaultCategories(cfg.DefaultCategories),
		app.WithMetrics(m),
		app.WithLogger(logger),
	}
	ctrl := app.New(store, append(opts, extra...)...)
	ctrl.Start(ctx)

	logger.InfoContext(ctx, "Session opened",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, bcfg.Type,
		applog.FieldKey, adapter.Key(),
		applog.FieldCount, store.Len())

	return &Session{Controller: ctrl, Metrics: m, Adapter: adapter, backend: res}, nil
}

// Close stops the controller and releases the backend.
func (s *Session) Close() error {
	s.Controller.Close()
	return s.backend.Close()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
