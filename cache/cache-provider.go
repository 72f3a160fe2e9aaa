package cache

import (
	"net/http"
	"time"

	"github.com/always-cache/clientcache/rfc9111"
)

// CacheProvider is an interface for a cache provider.
// It stores and retrieves cache entries by key.
// Entries are never removed, a new entry for the same key replaces the old one.
//
// Implementations must be thread-safe!
type CacheProvider interface {
	// Get returns the stored entry for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	// Implementations return copies, callers may modify the returned entry.
	Get(key string) (CacheEntry, bool, error)
	// Put stores the given entry under its key, replacing any previous entry.
	Put(entry CacheEntry) error
	// Has checks if the specified key exists in the cache.
	Has(key string) bool
	// Keys calls the given callback for each key.
	Keys(cb func(string))
}

// CacheEntry is one stored response.
type CacheEntry struct {
	Key        string
	StatusCode int
	Header     http.Header
	// Body is stored verbatim.
	Body []byte
	// The value of the clock when the response was stored or last validated.
	StoredAt  time.Time
	Policy    rfc9111.FreshnessPolicy
	Validator rfc9111.Validator
}

// Clone returns a deep copy of the entry.
func (e CacheEntry) Clone() CacheEntry {
	c := e
	c.Header = e.Header.Clone()
	if e.Body != nil {
		c.Body = append([]byte(nil), e.Body...)
	}
	return c
}

// IsFresh reports whether the entry may be used at `now` without validation.
func (e CacheEntry) IsFresh(now time.Time) bool {
	return e.Policy.IsFresh(e.StoredAt, now)
}

// TimeToLive returns the remaining freshness of the entry at `now`.
func (e CacheEntry) TimeToLive(now time.Time) time.Duration {
	return e.Policy.TimeToLive(e.StoredAt, now)
}
