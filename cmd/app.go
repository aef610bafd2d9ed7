package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Tiliavir/clicktime-assistant/internal/aggregate"
	"github.com/Tiliavir/clicktime-assistant/internal/clicktime"
	"github.com/Tiliavir/clicktime-assistant/internal/config"
	"github.com/Tiliavir/clicktime-assistant/internal/flow"
	"github.com/Tiliavir/clicktime-assistant/internal/ingest"
	"github.com/Tiliavir/clicktime-assistant/internal/llm"
	"github.com/Tiliavir/clicktime-assistant/internal/poster"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
	"github.com/Tiliavir/clicktime-assistant/internal/storage/sqlite"
	"github.com/Tiliavir/clicktime-assistant/internal/suggest"
)

// app holds what every command needs: config, logger and the store.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   storage.Store
	closers []func() error

	agg *aggregate.Aggregator
}

func newApp(path, level string, ephemeral bool) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level != "" {
		cfg.Log.Level = level
	}
	logger, closeLog := config.SetupLogger(cfg.Log.File, cfg.Log.SlogLevel())

	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	backend := cfg.Storage.Backend
	if ephemeral {
		backend = "memory"
	}
	store, closeStore, err := openStore(backend, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}
	a.store = store
	a.agg = aggregate.New(store, logger)
	logger.Debug("opened store", "backend", backend)
	return a, nil
}

func openStore(backend string, sc config.StorageConfig) (storage.Store, func() error, error) {
	switch backend {
	case "memory":
		return storage.NewMemory(), nil, nil
	case "", "dir", "sqlite":
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want dir, sqlite, or memory)", backend)
	}

	base, err := storage.BaseDir()
	if err != nil {
		return nil, nil, err
	}
	path := sc.StoragePath(base)
	if backend != "sqlite" {
		return storage.NewDir(path), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// Close releases the store and the log file, in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) settings() *ingest.Settings {
	return ingest.NewSettings(a.store)
}

// clickTime returns nil when no token is configured.
func (a *app) clickTime(ctx context.Context) *clicktime.Client {
	c, err := clicktime.New(ctx, a.cfg.ClickTime.BaseURL, a.cfg.ClickTime.AuthToken, nil)
	if err != nil {
		a.logger.Debug("clicktime client unavailable", "error", err)
		return nil
	}
	return c
}

func (a *app) dispatcher(ctx context.Context) *ingest.Dispatcher {
	var controls ingest.ControlFetcher
	if c := a.clickTime(ctx); c != nil {
		controls = c
	}
	return ingest.NewDispatcher(a.store, a.settings(), controls, a.agg, a.logger)
}

// requester tolerates a missing API key; Request then logs and returns
// nothing. Any other LLM configuration problem is an error.
func (a *app) requester() (*suggest.Requester, error) {
	c, err := llm.New(a.cfg.LLM, nil)
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		c = nil
	case err != nil:
		return nil, err
	}
	return suggest.New(a.store, c, a.cfg.LLM.Temperature, a.logger), nil
}

func (a *app) poster(ctx context.Context, refresher poster.Refresher) *poster.Poster {
	var creator poster.EntryCreator
	if c := a.clickTime(ctx); c != nil {
		creator = c
	}
	return poster.New(a.store, creator, a.settings(), refresher, a.logger)
}

func (a *app) runner(ctx context.Context, refresher poster.Refresher) (*flow.Runner, error) {
	rq, err := a.requester()
	if err != nil {
		return nil, err
	}
	return flow.New(a.store, rq, a.poster(ctx, refresher), a.logger), nil
}
