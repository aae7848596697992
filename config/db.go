package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo creates a MongoDB client for the remote table and returns the
// configured database. An unreachable server is logged, not fatal: every
// report operation falls back to the local store until it comes back.
func ConnectMongo(ctx context.Context, cfg *Config, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	dsn, err := cfg.RemoteDSN()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("mongo: ping failed, reports will use the local fallback until it recovers",
			"uri", RedactURI(dsn), "err", err)
	} else {
		logger.Info("mongo: connected", "uri", RedactURI(dsn), "db", cfg.RemoteName,
			"took", time.Since(start).Round(time.Millisecond))
	}

	return client, client.Database(cfg.RemoteName), nil
}

// ConnectPostgres opens the remote PostgreSQL database. Like ConnectMongo it
// only warns when the first ping fails.
func ConnectPostgres(ctx context.Context, cfg *Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := cfg.RemoteDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Warn("postgres: ping failed, reports will use the local fallback until it recovers",
			"uri", RedactURI(dsn), "err", err)
	} else {
		logger.Info("postgres: connected", "uri", RedactURI(dsn))
	}
	return db, nil
}
