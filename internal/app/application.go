package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/fixture"
	"github.com/raysh454/addrmeta/internal/fixtureserver"
	"github.com/raysh454/addrmeta/internal/logging"
	"github.com/raysh454/addrmeta/internal/store"
)

// Application is the runtime state container shared by the commands. It
// holds the config and logger and lazily opens the snapshot store.
type Application struct {
	Config *Config
	Logger logging.Logger

	mu    sync.Mutex
	store *store.Store
}

// NewApplication constructs an Application. A nil cfg uses DefaultConfig.
func NewApplication(cfg *Config, logger logging.Logger) *Application {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	RegisterDefaultBackends()
	return &Application{
		Config: cfg,
		Logger: logging.OrNop(logger),
	}
}

// Store opens the snapshot database on first use.
func (a *Application) Store() (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	if a.Config.DBPath == "" {
		return nil, errors.New("no snapshot database configured")
	}
	s, err := store.Open(a.Config.DBPath, a.Logger)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// Dataset resolves the fixture data to serve. With a database configured
// the selected snapshot is used, falling back to the file or embedded data
// when the database holds no snapshot yet.
func (a *Application) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	if a.Config.DBPath == "" {
		return fixture.LoadDataset(a.Config.FetchCfg.Fixture)
	}

	s, err := a.Store()
	if err != nil {
		return nil, err
	}

	if id := a.Config.SnapshotID; id != "" {
		ds, err := s.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		return ds, nil
	}

	ds, snap, err := s.LoadLatest(ctx)
	switch {
	case errors.Is(err, store.ErrSnapshotNotFound):
		a.Logger.Warn("snapshot database is empty, using fixture data",
			logging.Field{Key: "db", Value: a.Config.DBPath})
		return fixture.LoadDataset(a.Config.FetchCfg.Fixture)
	case err != nil:
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	a.Logger.Debug("serving snapshot",
		logging.Field{Key: "snapshot_id", Value: snap.ID},
		logging.Field{Key: "name", Value: snap.Name})
	return ds, nil
}

// Fixture returns a fixture fetcher over Dataset.
func (a *Application) Fixture(ctx context.Context) (*fixture.Fetcher, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return fixture.New(a.Config.FetchCfg.Fixture, ds, a.Logger)
}

// Fetcher builds the configured backend. The fixture backend is handed the
// resolved dataset so snapshots are honoured.
func (a *Application) Fetcher(ctx context.Context) (fetch.Fetcher, error) {
	cfg := a.Config.FetchCfg
	if cfg.Backend == "" || cfg.Backend == fetch.BackendFixture {
		ds, err := a.Dataset(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Fixture.Dataset = ds
	}
	return fetch.New(cfg, a.Logger)
}

// Server builds the fixture HTTP server.
func (a *Application) Server(ctx context.Context) (*fixtureserver.Server, error) {
	f, err := a.Fixture(ctx)
	if err != nil {
		return nil, err
	}
	cfg := a.Config.ServerCfg
	if cfg.Logger == nil {
		cfg.Logger = a.Logger.With(logging.Field{Key: "component", Value: "fixtureserver"})
	}
	return fixtureserver.New(cfg, f)
}

// Shutdown releases the store, if one was opened.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	a.Logger.Debug("application shut down")
	return nil
}
