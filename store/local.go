package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"prakriti-darpan/kv"
	"prakriti-darpan/models"

	"github.com/goccy/go-json"
)

// StorageKey is the key the whole report collection is stored under.
const StorageKey = "prakriti_darpan_reports_v1"

// LocalStore keeps the full report collection, newest first, as one JSON
// array under StorageKey in a size-constrained key-value store.
//
// Every operation is a whole-collection read-modify-write; the mutex keeps
// concurrent HTTP handlers in this process from interleaving them.
type LocalStore struct {
	mu     sync.Mutex
	kv     kv.Store
	key    string
	logger *slog.Logger
}

// NewLocalStore returns a LocalStore over the given key-value store.
func NewLocalStore(store kv.Store, logger *slog.Logger) *LocalStore {
	return &LocalStore{kv: store, key: StorageKey, logger: logger}
}

// List returns the stored reports, newest first. A missing, unreadable or
// corrupt collection reads as empty; it never returns an error.
func (s *LocalStore) List(ctx context.Context) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOrEmpty(ctx), nil
}

// Get finds a report by id.
func (s *LocalStore) Get(ctx context.Context, id string) (models.Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.readOrEmpty(ctx) {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.Report{}, false, nil
}

// Create puts the report at the front of the collection. When the store is
// full the oldest quarter of the collection is evicted and the write retried
// once; if that also fails ErrStorageExhausted is returned.
func (s *LocalStore) Create(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("store: save report %q: %w", report.ID, err)
	}
	err = s.write(ctx, prepend(report, reports))
	if err == nil {
		return nil
	}
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		return fmt.Errorf("store: save report %q: %w", report.ID, err)
	}

	s.logger.Warn("local store full, evicting oldest reports", "reports", len(reports))
	return s.evictAndRetry(ctx, report)
}

func (s *LocalStore) evictAndRetry(ctx context.Context, report models.Report) error {
	reports, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("store: save report %q: %w", report.ID, err)
	}
	if len(reports) == 0 {
		return fmt.Errorf("%w: report %q does not fit in an empty store", ErrStorageExhausted, report.ID)
	}

	keep := KeepCount(len(reports))
	if err := s.write(ctx, prepend(report, reports[:keep])); err != nil {
		s.logger.Error("local store still full after eviction", "kept", keep, "err", err)
		return fmt.Errorf("%w: %v", ErrStorageExhausted, err)
	}

	s.logger.Info("evicted old reports to make room", "evicted", len(reports)-keep, "kept", keep)
	return nil
}

// KeepCount is how many of n stored reports survive an eviction: the newest
// 75%, and never all of them.
func KeepCount(n int) int {
	keep := n * 3 / 4
	if keep == n {
		keep = n - 1
	}
	if keep < 0 {
		keep = 0
	}
	return keep
}

// Update replaces the report with the same id in place. Unknown ids are
// ignored.
func (s *LocalStore) Update(ctx context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("store: update report %q: %w", report.ID, err)
	}
	for i := range reports {
		if reports[i].ID == report.ID {
			reports[i] = report
			if err := s.write(ctx, reports); err != nil {
				return fmt.Errorf("store: update report %q: %w", report.ID, err)
			}
			return nil
		}
	}
	return nil
}

// Delete removes the report with the given id, if any.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("store: delete report %q: %w", id, err)
	}
	kept := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(reports) {
		return nil
	}
	if err := s.write(ctx, kept); err != nil {
		return fmt.Errorf("store: delete report %q: %w", id, err)
	}
	return nil
}

// Clear drops the whole collection.
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}

// SeedIfEmpty writes the demo reports when the collection is empty.
func (s *LocalStore) SeedIfEmpty(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("store: seed demo data: %w", err)
	}
	if len(reports) > 0 {
		return nil
	}
	if err := s.write(ctx, DemoReports(now)); err != nil {
		return fmt.Errorf("store: seed demo data: %w", err)
	}
	s.logger.Info("seeded demo reports")
	return nil
}

// readOrEmpty is read for callers that never fail: a kv error reads as an
// empty collection.
func (s *LocalStore) readOrEmpty(ctx context.Context) []models.Report {
	reports, err := s.read(ctx)
	if err != nil {
		s.logger.Error("failed to load reports", "err", err)
		return []models.Report{}
	}
	return reports
}

// read loads the collection. A missing key or malformed content is an empty
// collection; only a kv failure is an error.
func (s *LocalStore) read(ctx context.Context) ([]models.Report, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	if !ok {
		return []models.Report{}, nil
	}

	var reports []models.Report
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		s.logger.Error("stored reports are malformed, treating as empty", "err", err)
		return []models.Report{}, nil
	}
	if reports == nil {
		return []models.Report{}, nil
	}
	return reports, nil
}

func (s *LocalStore) write(ctx context.Context, reports []models.Report) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	return s.kv.Set(ctx, s.key, string(data))
}

func prepend(r models.Report, reports []models.Report) []models.Report {
	out := make([]models.Report, 0, len(reports)+1)
	out = append(out, r)
	return append(out, reports...)
}
