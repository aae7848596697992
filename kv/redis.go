package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as plain string keys under a namespace prefix. Quota
// is measured over the namespace only; a server-side maxmemory rejection is
// reported as ErrQuotaExceeded as well.
type Redis struct {
	client *redis.Client
	prefix string
	quota  int64
}

// NewRedis wraps an existing client. The client is closed by Close.
func NewRedis(client *redis.Client, prefix string, quota int64) *Redis {
	return &Redis{client: client, prefix: prefix, quota: quota}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	used, err := r.usageExcluding(ctx, r.prefix+key)
	if err != nil {
		return err
	}
	if overQuota(r.quota, used+entrySize(key, value)) {
		return ErrQuotaExceeded
	}

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		if isOutOfMemory(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("kv: redis set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("kv: redis del %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) usageExcluding(ctx context.Context, skip string) (int64, error) {
	if r.quota <= 0 {
		return 0, nil
	}

	var used int64
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if k == skip {
			continue
		}
		n, err := r.client.StrLen(ctx, k).Result()
		if err != nil {
			return 0, fmt.Errorf("kv: redis strlen %q: %w", k, err)
		}
		used += int64(len(k)-len(r.prefix)) + n
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("kv: redis scan: %w", err)
	}
	return used, nil
}

func isOutOfMemory(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM")
}
