// Package kv abstracts the two persisted stores behind a small key-value
// interface so the session manager never touches a concrete backend.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates the requested key does not exist in the bucket.
var ErrKeyNotFound = errors.New("kv: key not found")

// Entry is a single key-value pair returned by Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a bucketed key-value store. Delete is idempotent: removing an
// absent key is not an error. Incr returns the next value of a named counter
// and must be atomic, so concurrent callers never observe the same value.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	Scan(ctx context.Context, bucket string) ([]Entry, error)
	Incr(ctx context.Context, counter string) (int64, error)
}
