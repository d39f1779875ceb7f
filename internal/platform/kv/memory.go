package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store used by tests and single-node development.
type Memory struct {
	mu       sync.RWMutex
	buckets  map[string]map[string][]byte
	counters map[string]int64
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		buckets:  make(map[string]map[string][]byte),
		counters: make(map[string]int64),
	}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores a copy of value under bucket/key.
func (m *Memory) Put(ctx context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b[key] = stored
	return nil
}

// Delete removes the key if present.
func (m *Memory) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], key)
	return nil
}

// Scan returns all entries in the bucket ordered by key.
func (m *Memory) Scan(ctx context.Context, bucket string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b := m.buckets[bucket]
	entries := make([]Entry, 0, len(b))
	for key, value := range b {
		out := make([]byte, len(value))
		copy(out, value)
		entries = append(entries, Entry{Key: key, Value: out})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Incr advances the named counter and returns the new value.
func (m *Memory) Incr(ctx context.Context, counter string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counter]++
	return m.counters[counter], nil
}

var _ Store = (*Memory)(nil)
