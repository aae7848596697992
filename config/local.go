package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"prakriti-darpan/kv"
)

// Redis key namespaces. Neither may contain the other: the local store
// measures its quota over every key under RedisKVPrefix.
const (
	RedisKVPrefix       = "prakriti:kv:"
	RedisClassifyPrefix = "prakriti:classify"
)

// OpenLocalStore builds the key-value store that holds the local report
// collection, according to LOCAL_STORE.
func OpenLocalStore(ctx context.Context, cfg *Config) (kv.Store, error) {
	switch cfg.LocalStore {
	case LocalMemory:
		return kv.NewMemory(cfg.LocalStoreQuota), nil
	case LocalFile:
		return kv.NewFile(cfg.LocalStorePath, cfg.LocalStoreQuota)
	case LocalSQLite:
		path := cfg.LocalStorePath
		if filepath.Ext(path) == "" {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, fmt.Errorf("create %q: %w", path, err)
			}
			path = filepath.Join(path, "reports.db")
		}
		return kv.OpenSQLite(path, cfg.LocalStoreQuota)
	case LocalRedis:
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return kv.NewRedis(client, RedisKVPrefix, cfg.LocalStoreQuota), nil
	default:
		return nil, fmt.Errorf("unknown LOCAL_STORE %q", cfg.LocalStore)
	}
}
