package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	serializer "github.com/always-cache/clientcache/pkg/response-serializer"
	"github.com/always-cache/clientcache/rfc9111"
)

// SQLiteCache keeps entries in an in-memory SQLite database.
// The database lives as long as the SQLiteCache; nothing is written to disk.
// Responses are stored in HTTP/1.1 wire format.
type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache opens a new in-memory database.
func NewSQLiteCache() (SQLiteCache, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return SQLiteCache{}, fmt.Errorf("opening sqlite: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		stored_at INTEGER,
		policy INTEGER,
		lifetime INTEGER,
		until INTEGER,
		etag TEXT,
		last_modified INTEGER,
		bytes BLOB
	)`)
	if err != nil {
		db.Close()
		return SQLiteCache{}, fmt.Errorf("creating cache table: %w", err)
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteCache) Get(key string) (CacheEntry, bool, error) {
	var (
		storedAt, lifetime, until, lastModified int64
		policy                                  int
		etag                                    string
		bytes                                   []byte
	)
	err := s.db.QueryRow(`SELECT
		stored_at, policy, lifetime, until, etag, last_modified, bytes
		FROM cache WHERE key = ?`, key).
		Scan(&storedAt, &policy, &lifetime, &until, &etag, &lastModified, &bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, err
	}
	sRes, err := serializer.BytesToResponse(bytes)
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("reading entry %s: %w", key, err)
	}
	return CacheEntry{
		Key:        key,
		StatusCode: sRes.StatusCode,
		Header:     sRes.Header,
		Body:       sRes.Body,
		StoredAt:   fromUnixNano(storedAt),
		Policy: rfc9111.FreshnessPolicy{
			Kind:     rfc9111.FreshnessKind(policy),
			Lifetime: time.Duration(lifetime),
			Until:    fromUnixNano(until),
		},
		Validator: rfc9111.Validator{
			ETag:         etag,
			LastModified: fromUnixNano(lastModified),
		},
	}, true, nil
}

func (s SQLiteCache) Put(ce CacheEntry) error {
	bytes, err := serializer.ResponseToBytes(serializer.StoredResponse{
		StatusCode: ce.StatusCode,
		Header:     ce.Header,
		Body:       ce.Body,
	})
	if err != nil {
		return fmt.Errorf("serializing entry %s: %w", ce.Key, err)
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.Exec(`INSERT OR REPLACE INTO cache
		(key, stored_at, policy, lifetime, until, etag, last_modified, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ce.Key,
		toUnixNano(ce.StoredAt),
		int(ce.Policy.Kind),
		int64(ce.Policy.Lifetime),
		toUnixNano(ce.Policy.Until),
		ce.Validator.ETag,
		toUnixNano(ce.Validator.LastModified),
		bytes,
	)
	return err
}

func (s SQLiteCache) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM cache WHERE key = ?", key).Scan(&one)
	return err == nil
}

func (s SQLiteCache) Keys(cb func(string)) {
	rows, err := s.db.Query("SELECT key FROM cache")
	if err != nil {
		return
	}
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			break
		}
		keys = append(keys, key)
	}
	// the single connection must be released before calling back
	rows.Close()

	for _, key := range keys {
		cb(key)
	}
}

// Close releases the database, discarding all entries.
func (s SQLiteCache) Close() error {
	return s.db.Close()
}

// zero times are stored as 0, since their UnixNano is out of range
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
