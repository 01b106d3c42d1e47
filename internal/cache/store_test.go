package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type fakeClock struct {
	mu sync.Mutex
	ts time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{ts: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ts = c.ts.Add(d)
	c.mu.Unlock()
}

func TestStore_PutGet(t *testing.T) {
	s := NewStore[int](time.Minute)
	s.Put("a", 1)
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got ok=%v v=%v", ok, v)
	}
	if _, ok := s.Get("b"); ok {
		t.Fatalf("expected miss for unknown key")
	}
	if s.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", s.Len())
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[string](time.Second, WithClock(clock.Now))

	s.Put("k", "old")
	clock.Advance(900 * time.Millisecond)
	s.Put("k", "new")
	clock.Advance(500 * time.Millisecond)

	// the overwrite restarted the TTL window
	if v, ok := s.Get("k"); !ok || v != "new" {
		t.Fatalf("expected refreshed value, got ok=%v v=%q", ok, v)
	}
}

func TestStore_TTL_Expiry(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[string](time.Second, WithClock(clock.Now))

	s.Put("k", "v")
	clock.Advance(999 * time.Millisecond)
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Fatalf("expected hit before expiry")
	}

	// an entry is dead once now - insertedAt >= ttl
	clock.Advance(time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatalf("expected miss at exactly ttl")
	}
	if s.Len() != 0 {
		t.Fatalf("expected Len=0 after expiry, got %d", s.Len())
	}
	if n := s.PurgeExpired(); n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
}

func TestStore_NoTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[int](0, WithClock(clock.Now))
	s.Put("k", 7)
	clock.Advance(24 * time.Hour)
	if _, ok := s.Get("k"); !ok {
		t.Fatalf("expected entry without ttl to survive")
	}
	if n := s.PurgeExpired(); n != 0 {
		t.Fatalf("expected nothing purged, got %d", n)
	}
}

func TestStore_DeleteFunc(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[int](time.Minute, WithClock(clock.Now), WithShards(4))
	s.Put("http://h/posts", 1)
	s.Put("http://h/posts/1", 2)
	s.Put("http://h/authors", 3)

	n := s.DeleteFunc(func(k string) bool { return strings.Contains(k, "/posts") })
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if _, ok := s.Get("http://h/posts/1"); ok {
		t.Fatalf("expected posts entry to be removed")
	}
	if v, ok := s.Get("http://h/authors"); !ok || v != 3 {
		t.Fatalf("expected authors entry untouched")
	}
}

func TestStore_DeleteFunc_SkipsExpiredInCount(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[int](time.Second, WithClock(clock.Now))
	s.Put("a", 1)
	clock.Advance(2 * time.Second)
	s.Put("b", 2)

	if n := s.DeleteFunc(func(string) bool { return true }); n != 1 {
		t.Fatalf("expected only the live entry counted, got %d", n)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestStore_Delete_Clear(t *testing.T) {
	s := NewStore[int](time.Minute)
	s.Put("1", 10)
	s.Put("2", 20)
	if !s.Delete("1") {
		t.Fatalf("expected Delete to report a live entry")
	}
	if s.Delete("1") {
		t.Fatalf("expected second Delete to report nothing")
	}
	if s.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected Len=0 after Clear, got %d", s.Len())
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore[int](time.Minute)
	keys := 100
	rounds := 200

	var g errgroup.Group
	for i := 0; i < keys; i++ {
		key := fmt.Sprintf("key-%d", i)
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				s.Put(key, r)
				if _, ok := s.Get(key); !ok {
					return fmt.Errorf("%s: own write not visible", key)
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for r := 0; r < rounds; r++ {
			s.DeleteFunc(func(k string) bool { return strings.HasSuffix(k, "-0") })
		}
		return nil
	})
	// DeleteFunc races with key-0 only; every other key must be stable.
	if err := g.Wait(); err != nil && !strings.HasPrefix(err.Error(), "key-0:") {
		t.Fatal(err)
	}
	for i := 1; i < keys; i++ {
		if v, ok := s.Get(fmt.Sprintf("key-%d", i)); !ok || v != rounds-1 {
			t.Fatalf("key-%d: expected %d, got ok=%v v=%d", i, rounds-1, ok, v)
		}
	}
}

func TestStore_Run_Purges(t *testing.T) {
	clock := newFakeClock()
	s := NewStore[int](time.Second, WithClock(clock.Now))
	s.Put("k", 1)
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for rawLen(s) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper never removed the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// rawLen counts stored entries, expired or not.
func rawLen[V any](s *Store[V]) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.items)
		sh.mu.RUnlock()
	}
	return total
}
