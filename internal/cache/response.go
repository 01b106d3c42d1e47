package cache

import (
	"strings"

	"go.uber.org/zap"

	"blog-api/internal/telemetry"
)

// Addressable is implemented by requests whose responses can be cached.
type Addressable interface {
	// URLParts returns the scheme, host, escaped path and raw query of the request.
	URLParts() (scheme, host, path, rawQuery string)
}

// Key derives the cache key for a request. The escaped path never contains
// '?', so the mapping from parts to key is injective.
func Key(scheme, host, path, rawQuery string) string {
	var b strings.Builder
	b.Grow(len(scheme) + len(host) + len(path) + len(rawQuery) + 4)
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if rawQuery != "" {
		b.WriteByte('?')
		b.WriteString(rawQuery)
	}
	return b.String()
}

// KeyOf derives the cache key of an Addressable request.
func KeyOf(a Addressable) string {
	return Key(a.URLParts())
}

// ResponseCache holds encoded response bodies of read requests.
// It is created once at startup and shared by every pipeline run.
type ResponseCache struct {
	store   Expiring[[]byte]
	log     *zap.Logger
	metrics *telemetry.Metrics
}

// NewResponseCache wraps store. log and metrics may be nil.
func NewResponseCache(store Expiring[[]byte], log *zap.Logger, metrics *telemetry.Metrics) *ResponseCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseCache{store: store, log: log.Named("cache"), metrics: metrics}
}

// Lookup returns the cached body for the request, if any.
func (c *ResponseCache) Lookup(a Addressable) ([]byte, bool) {
	key := KeyOf(a)
	payload, ok := c.store.Get(key)
	c.metrics.CacheLookup(ok)
	if ok {
		c.log.Debug("cache hit", zap.String("key", key))
	}
	return payload, ok
}

// Store caches the body produced for the request.
func (c *ResponseCache) Store(a Addressable, payload []byte) {
	key := KeyOf(a)
	c.store.Put(key, payload)
	c.metrics.CacheStored()
	c.log.Debug("data stored", zap.String("key", key))
}

// Invalidate drops every entry whose key contains resource and returns the count.
// Matching is by substring of the whole key, so a resource path that appears in
// another entry's query string also drops that entry.
func (c *ResponseCache) Invalidate(resource string) int {
	if resource == "" {
		return 0
	}
	n := c.store.DeleteFunc(func(key string) bool {
		return strings.Contains(key, resource)
	})
	c.metrics.CacheInvalidated(resource, n)
	c.log.Debug("cache cleared", zap.String("resource", resource), zap.Int("removed", n))
	return n
}
