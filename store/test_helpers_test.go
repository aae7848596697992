package store

import (
	"context"
	"fmt"
	"testing"

	"prakriti-darpan/kv"
	"prakriti-darpan/logging"
	"prakriti-darpan/models"

	"github.com/stretchr/testify/require"
)

// newTestLocal returns a LocalStore over an unlimited in-memory kv store.
func newTestLocal(t *testing.T) (*LocalStore, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory(0)
	t.Cleanup(func() { mem.Close() })
	return NewLocalStore(mem, logging.Discard()), mem
}

// testReport builds a report whose serialized size does not depend on n
// (for n < 1000), so quota arithmetic in eviction tests stays exact.
func testReport(n int) models.Report {
	return models.Report{
		ID:           fmt.Sprintf("r%03d", n),
		Timestamp:    1700000000000 + int64(n)*1000,
		ImageURL:     "https://picsum.photos/400/300",
		LocationName: "Godowlia Market",
		TrashType:    models.Plastic,
		Severity:     models.Medium,
		Description:  "Plastic bottles near the gate.",
	}
}

func ids(reports []models.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}

// rawCollection returns the serialized collection exactly as stored.
func rawCollection(t *testing.T, mem *kv.Memory) string {
	t.Helper()
	raw, _, err := mem.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	return raw
}

// fillToCapacity stores n reports and then shrinks the quota so the store is
// exactly full.
func fillToCapacity(t *testing.T, s *LocalStore, mem *kv.Memory, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		require.NoError(t, s.Create(ctx, testReport(i)))
	}
	mem.SetQuota(int64(len(StorageKey) + len(rawCollection(t, mem))))
}
