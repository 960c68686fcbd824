package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordPrefix = "rec:"
	blobPrefix   = "blob:"
)

// RedisStore implements Store on a single Redis database. Records and blobs
// live in separate key namespaces so a prefix scan over one never sees the
// other.
type RedisStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// OpenRedis parses a redis:// URL, connects and pings.
func OpenRedis(ctx context.Context, url string, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("storage.redis.connected", "addr", opts.Addr, "db", opts.DB)
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) GetRecord(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, recordPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record %q: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) PutRecord(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, recordPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("put record %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetBlob(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, blobPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %q: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) PutBlob(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, blobPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("put blob %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return s.scan(ctx, recordPrefix, prefix)
}

func (s *RedisStore) ListBlobKeys(ctx context.Context, prefix string) ([]string, error) {
	return s.scan(ctx, blobPrefix, prefix)
}

func (s *RedisStore) scan(ctx context.Context, namespace, prefix string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	return keys, nil
}
