package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"prakriti-darpan/config"
	"prakriti-darpan/logging"
	"prakriti-darpan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	local, _ := newTestLocal(t)
	return New(local, ModeLocal, opts...)
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.Report)
	}{
		{"missing id", func(r *models.Report) { r.ID = "" }},
		{"zero timestamp", func(r *models.Report) { r.Timestamp = 0 }},
		{"missing image", func(r *models.Report) { r.ImageURL = "" }},
		{"unset trash type", func(r *models.Report) { r.TrashType = 0 }},
		{"unset severity", func(r *models.Report) { r.Severity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testReport(1)
			tt.mutate(&r)
			err := s.Create(ctx, r)
			assert.ErrorIs(t, err, ErrInvalidReport)
		})
	}

	reports, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports, "rejected reports are never stored")
}

func TestStore_UpdateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Create(ctx, testReport(1)))

	bad := testReport(1)
	bad.Severity = models.Severity(99)
	assert.ErrorIs(t, s.Update(ctx, bad), ErrInvalidReport)

	got, ok, err := s.Get(ctx, "r001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Medium, got.Severity)
}

func TestStore_GetEmptyID(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, b := testReport(1), testReport(2)
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	reports, _ := s.List(ctx)
	assert.Equal(t, []models.Report{b, a}, reports)

	a2 := a
	a2.Description = "Cleared partially, bottles remain."
	require.NoError(t, s.Update(ctx, a2))
	reports, _ = s.List(ctx)
	assert.Equal(t, []models.Report{b, a2}, reports)

	require.NoError(t, s.Delete(ctx, b.ID))
	reports, _ = s.List(ctx)
	assert.Equal(t, []models.Report{a2}, reports)
}

func TestStore_SeedUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1750000000000)
	s := newTestStore(t, WithClock(func() time.Time { return now }))

	require.NoError(t, s.SeedIfEmpty(ctx))
	require.NoError(t, s.SeedIfEmpty(ctx))

	reports, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, DemoReports(now), reports)
	for _, r := range reports {
		assert.Less(t, r.Timestamp, now.UnixMilli())
		assert.NoError(t, r.Validate())
	}
}

func TestStore_CloseRunsClosers(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	s := newTestStore(t,
		WithCloser(func(context.Context) error { calls = append(calls, "a"); return nil }),
		WithCloser(func(context.Context) error { calls = append(calls, "b"); return boom }),
	)

	err := s.Close(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestOpen_LocalModes(t *testing.T) {
	for _, backend := range []string{config.LocalMemory, config.LocalFile, config.LocalSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				LocalStore:      backend,
				LocalStorePath:  t.TempDir(),
				LocalStoreQuota: 1 << 20,
			}
			ctx := context.Background()

			s, err := Open(ctx, cfg, logging.Discard())
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close(ctx) })
			assert.Equal(t, ModeLocal, s.Mode())

			require.NoError(t, s.Create(ctx, testReport(1)))
			got, ok, err := s.Get(ctx, "r001")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, testReport(1), got)
		})
	}
}

func TestOpen_RemoteNeedsBothURLAndKey(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		LocalStore:      config.LocalMemory,
		LocalStoreQuota: 1 << 20,
		RemoteURL:       "mongodb://db.example:27017",
	}

	s, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer s.Close(ctx)
	assert.Equal(t, ModeLocal, s.Mode())
}

func TestOpen_UnsupportedRemoteScheme(t *testing.T) {
	cfg := &config.Config{
		LocalStore:      config.LocalMemory,
		LocalStoreQuota: 1 << 20,
		RemoteURL:       "mysql://db.example:3306/reports",
		RemoteKey:       "secret",
	}

	_, err := Open(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestInsertManyQuery(t *testing.T) {
	query, args := insertManyQuery([]models.Report{testReport(1), testReport(2)})

	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)")
	assert.Contains(t, query, "($11,$12,$13,$14,$15,$16,$17,$18,$19,$20)")
	assert.Contains(t, query, "ON CONFLICT (id) DO NOTHING")
	assert.Len(t, args, 20)
	assert.Equal(t, "r001", args[0])
	assert.Equal(t, "r002", args[10])
}
