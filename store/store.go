// Package store persists litter reports.
//
// Callers use Store, which is bound at construction to one of two backends:
// a LocalStore over a size-constrained key-value store, or a RemoteStore that
// writes to a hosted table and falls back to a LocalStore whenever the table
// fails.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prakriti-darpan/config"
	"prakriti-darpan/models"
)

var (
	// ErrStorageExhausted means the local store stayed full after eviction.
	ErrStorageExhausted = errors.New("store: storage is full and could not be cleared")
	// ErrInvalidReport wraps validation failures on Create and Update.
	ErrInvalidReport = errors.New("store: invalid report")
)

// Backend modes reported by Store.Mode.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Backend is the operation set shared by LocalStore and RemoteStore.
type Backend interface {
	List(ctx context.Context) ([]models.Report, error)
	Get(ctx context.Context, id string) (models.Report, bool, error)
	Create(ctx context.Context, report models.Report) error
	Update(ctx context.Context, report models.Report) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	SeedIfEmpty(ctx context.Context, now time.Time) error
}

// Store is the single entry point for report persistence.
type Store struct {
	backend Backend
	mode    string
	now     func() time.Time
	closers []func(context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for demo data timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCloser registers a function run by Close.
func WithCloser(fn func(context.Context) error) Option {
	return func(s *Store) { s.closers = append(s.closers, fn) }
}

// New returns a Store bound to backend for its whole lifetime.
func New(backend Backend, mode string, opts ...Option) *Store {
	s := &Store{backend: backend, mode: mode, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds the Store described by cfg. The remote table is used only when
// both REMOTE_DB_URL and REMOTE_DB_KEY are set; the local store is always
// opened because it is the fallback.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	kvStore, err := config.OpenLocalStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	local := NewLocalStore(kvStore, logger)
	closeLocal := WithCloser(func(context.Context) error { return kvStore.Close() })

	if !cfg.RemoteConfigured() {
		logger.Info("report store ready", "mode", ModeLocal, "local", cfg.LocalStore)
		return New(local, ModeLocal, closeLocal), nil
	}

	table, err := openTable(ctx, cfg, logger)
	if err != nil {
		_ = kvStore.Close()
		return nil, err
	}
	remote := NewRemoteStore(table, local, logger)
	logger.Info("report store ready", "mode", ModeRemote, "remote", config.RedactURI(cfg.RemoteURL), "local", cfg.LocalStore)
	return New(remote, ModeRemote, WithCloser(remote.Close), closeLocal), nil
}

func openTable(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Table, error) {
	backend, err := cfg.RemoteBackend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.RemoteMongo:
		client, db, err := config.ConnectMongo(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		table := NewMongoTable(client, db)
		if err := table.EnsureIndexes(ctx); err != nil {
			logger.Warn("mongo: index creation failed", "err", err)
		}
		return table, nil
	case config.RemotePostgres:
		db, err := config.ConnectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		table := NewPostgresTable(db)
		if err := table.Migrate(ctx); err != nil {
			logger.Warn("postgres: migration failed", "err", err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unsupported remote backend %q", backend)
	}
}

// Mode reports which backend the store was bound to.
func (s *Store) Mode() string { return s.mode }

// List returns all reports, newest first.
func (s *Store) List(ctx context.Context) ([]models.Report, error) {
	return s.backend.List(ctx)
}

// Get returns the report with the given id, and false when there is none.
func (s *Store) Get(ctx context.Context, id string) (models.Report, bool, error) {
	if id == "" {
		return models.Report{}, false, nil
	}
	return s.backend.Get(ctx, id)
}

// Create validates and stores a new report.
func (s *Store) Create(ctx context.Context, report models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return s.backend.Create(ctx, report)
}

// Update replaces the stored report with the same id. Unknown ids are ignored.
func (s *Store) Update(ctx context.Context, report models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return s.backend.Update(ctx, report)
}

// Delete removes a report. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

// Clear removes every locally stored report.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// SeedIfEmpty stores the demo reports when there are no reports yet. Safe to
// call on every start.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	return s.backend.SeedIfEmpty(ctx, s.now())
}

// Close releases the backend connections.
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
