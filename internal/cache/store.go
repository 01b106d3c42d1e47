package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is used when NewStore is given a non-positive shard count.
const DefaultShards = 16

// entry stores a cached value and the moment it was inserted.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// shard is one independently locked slice of the key space.
type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
}

// Store is a sharded, map-backed cache with a single default TTL.
// Keys hash onto shards so that operations on unrelated keys rarely contend.
// Expiry is checked lazily on read; PurgeExpired and Run reclaim memory.
type Store[V any] struct {
	shards []*shard[V]
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	shards int
	now    func() time.Time
}

// WithShards sets the number of shards.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewStore constructs a Store whose entries live for ttl. A ttl <= 0 disables expiry.
func NewStore[V any](ttl time.Duration, opts ...Option) *Store[V] {
	o := options{shards: DefaultShards, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shards <= 0 {
		o.shards = DefaultShards
	}
	s := &Store[V]{
		shards: make([]*shard[V], o.shards),
		ttl:    ttl,
		now:    o.now,
	}
	for i := range s.shards {
		s.shards[i] = &shard[V]{items: make(map[string]entry[V])}
	}
	return s
}

// TTL returns the default time-to-live applied to every entry.
func (s *Store[V]) TTL() time.Duration { return s.ttl }

func (s *Store[V]) shardFor(key string) *shard[V] {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// expired reports whether an entry inserted at insertedAt is dead at ts.
func (s *Store[V]) expired(insertedAt, ts time.Time) bool {
	if s.ttl <= 0 {
		return false
	}
	return !ts.Before(insertedAt.Add(s.ttl))
}

// Put implements Expiring.Put.
func (s *Store[V]) Put(key string, value V) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.items[key] = entry[V]{value: value, insertedAt: s.now()}
}

// Get implements Expiring.Get.
func (s *Store[V]) Get(key string) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	var zero V
	e, ok := sh.items[key]
	if !ok {
		return zero, false
	}
	if s.expired(e.insertedAt, s.now()) {
		// expired; treat as miss (cleanup deferred to PurgeExpired)
		return zero, false
	}
	return e.value, true
}

// Delete removes a key if present and reports whether it was live.
func (s *Store[V]) Delete(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.items[key]
	if !ok {
		return false
	}
	delete(sh.items, key)
	return !s.expired(e.insertedAt, s.now())
}

// DeleteFunc implements Expiring.DeleteFunc. Shards are visited one at a time,
// each under its own write lock. Expired entries that match are removed but not counted.
func (s *Store[V]) DeleteFunc(match func(key string) bool) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		ts := s.now()
		for k, e := range sh.items {
			if !match(k) {
				continue
			}
			if !s.expired(e.insertedAt, ts) {
				removed++
			}
			delete(sh.items, k)
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len returns the number of non-expired entries.
func (s *Store[V]) Len() int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		ts := s.now()
		for _, e := range sh.items {
			if !s.expired(e.insertedAt, ts) {
				count++
			}
		}
		sh.mu.RUnlock()
	}
	return count
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.items = make(map[string]entry[V])
		sh.mu.Unlock()
	}
}

// PurgeExpired scans every shard, drops expired entries and returns how many went.
func (s *Store[V]) PurgeExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	purged := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		ts := s.now()
		for k, e := range sh.items {
			if s.expired(e.insertedAt, ts) {
				delete(sh.items, k)
				purged++
			}
		}
		sh.mu.Unlock()
	}
	return purged
}

// Run purges expired entries every interval until ctx is done.
func (s *Store[V]) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.PurgeExpired()
		}
	}
}

// Ensure Store implements Expiring at compile time.
var _ Expiring[any] = (*Store[any])(nil)
