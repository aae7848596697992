package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"prakriti-darpan/models"
)

// RemoteStore sends every operation to a hosted Table first and, when the
// table fails for any reason, runs the same operation on the local store.
// Remote failures are logged and never returned to the caller.
//
// Clear is the exception: it only ever clears the local copy. Wiping the
// hosted table is not something this service does.
type RemoteStore struct {
	table    Table
	fallback *LocalStore
	logger   *slog.Logger
}

// NewRemoteStore combines a remote table with its local fallback.
func NewRemoteStore(table Table, fallback *LocalStore, logger *slog.Logger) *RemoteStore {
	return &RemoteStore{table: table, fallback: fallback, logger: logger}
}

func (s *RemoteStore) degrade(op string, err error) {
	s.logger.Warn("remote store failed, using local fallback", "op", op, "err", err)
}

func (s *RemoteStore) List(ctx context.Context) ([]models.Report, error) {
	reports, err := s.table.List(ctx)
	if err != nil {
		s.degrade("list", err)
		return s.fallback.List(ctx)
	}
	return reports, nil
}

func (s *RemoteStore) Get(ctx context.Context, id string) (models.Report, bool, error) {
	report, err := s.table.Get(ctx, id)
	switch {
	case err == nil:
		return report, true, nil
	case errors.Is(err, ErrRowNotFound):
		return models.Report{}, false, nil
	default:
		s.degrade("get", err)
		return s.fallback.Get(ctx, id)
	}
}

func (s *RemoteStore) Create(ctx context.Context, report models.Report) error {
	if err := s.table.Insert(ctx, report); err != nil {
		s.degrade("create", err)
		return s.fallback.Create(ctx, report)
	}
	return nil
}

func (s *RemoteStore) Update(ctx context.Context, report models.Report) error {
	if err := s.table.Update(ctx, report); err != nil {
		s.degrade("update", err)
		return s.fallback.Update(ctx, report)
	}
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		s.degrade("delete", err)
		return s.fallback.Delete(ctx, id)
	}
	return nil
}

// Clear empties the local fallback copy only.
func (s *RemoteStore) Clear(ctx context.Context) error {
	s.logger.Info("clear does not touch the remote table; clearing local copy only")
	return s.fallback.Clear(ctx)
}

// SeedIfEmpty batch-inserts the demo reports when List comes back empty.
func (s *RemoteStore) SeedIfEmpty(ctx context.Context, now time.Time) error {
	reports, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(reports) > 0 {
		return nil
	}

	if err := s.table.InsertMany(ctx, DemoReports(now)); err != nil {
		s.degrade("seed", err)
		return s.fallback.SeedIfEmpty(ctx, now)
	}
	s.logger.Info("seeded demo reports into remote table")
	return nil
}

func (s *RemoteStore) Close(ctx context.Context) error {
	return s.table.Close(ctx)
}
