// Package storage defines the record/blob store contract the rest of the
// system depends on, with Redis and in-memory implementations. Records are
// JSON documents keyed by string; blobs are opaque bytes. There is no delete
// primitive: the store only grows, matching the collaborator contract.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the key/value collaborator for structured records and binary
// blobs. GetRecord reports absence via the bool rather than an error so that
// optional lookups ("config not yet set") need no error handling.
type Store interface {
	GetRecord(ctx context.Context, key string) ([]byte, bool, error)
	PutRecord(ctx context.Context, key string, data []byte) error
	GetBlob(ctx context.Context, key string) ([]byte, bool, error)
	PutBlob(ctx context.Context, key string, data []byte) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	ListBlobKeys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON reads and unmarshals a record. Returns false when the key is
// absent, leaving out untouched.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	data, ok, err := s.GetRecord(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	return s.PutRecord(ctx, key, data)
}
