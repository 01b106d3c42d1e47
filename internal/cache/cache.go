package cache

// Expiring is the key-value contract the response cache builds on.
// Every entry shares the store's default TTL; an expired entry is reported
// exactly like a missing one.
type Expiring[V any] interface {
	// Put stores the value under key, replacing any previous entry.
	Put(key string, value V)

	// Get returns the value and whether it was present and not expired.
	Get(key string) (V, bool)

	// DeleteFunc removes every entry whose key matches and returns how many were removed.
	DeleteFunc(match func(key string) bool) int
}
