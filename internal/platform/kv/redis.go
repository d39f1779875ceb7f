package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on a Redis hash per bucket.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a redis-backed store. All keys are namespaced under
// prefix so multiple services can share one instance.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "kv"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) bucketKey(bucket string) string {
	return r.prefix + ":" + bucket
}

func (r *Redis) counterKey(counter string) string {
	return r.prefix + ":counter:" + counter
}

// Get fetches a field from the bucket hash.
func (r *Redis) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	value, err := r.client.HGet(ctx, r.bucketKey(bucket), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv/redis: get %s/%s: %w", bucket, key, err)
	}
	return value, nil
}

// Put writes a field into the bucket hash.
func (r *Redis) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.bucketKey(bucket), key, value).Err(); err != nil {
		return fmt.Errorf("kv/redis: put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Delete removes a field. Missing fields are not an error.
func (r *Redis) Delete(ctx context.Context, bucket, key string) error {
	if err := r.client.HDel(ctx, r.bucketKey(bucket), key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("kv/redis: delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Scan returns every field of the bucket hash.
func (r *Redis) Scan(ctx context.Context, bucket string) ([]Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.bucketKey(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("kv/redis: scan %s: %w", bucket, err)
	}
	entries := make([]Entry, 0, len(fields))
	for key, value := range fields {
		entries = append(entries, Entry{Key: key, Value: []byte(value)})
	}
	return entries, nil
}

// Incr advances the named counter via redis INCR, which is atomic.
func (r *Redis) Incr(ctx context.Context, counter string) (int64, error) {
	n, err := r.client.Incr(ctx, r.counterKey(counter)).Result()
	if err != nil {
		return 0, fmt.Errorf("kv/redis: incr %s: %w", counter, err)
	}
	return n, nil
}

var _ Store = (*Redis)(nil)
