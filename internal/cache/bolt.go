package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

var resultsBucket = []byte("results")

// BoltStore persists entries in a bbolt file so results survive restarts.
type BoltStore struct {
	db  *bolt.DB
	now Clock
}

// BoltOption customizes a BoltStore.
type BoltOption func(*BoltStore)

// WithClock overrides the time source.
func WithClock(c Clock) BoltOption {
	return func(s *BoltStore) {
		if c != nil {
			s.now = c
		}
	}
}

// OpenBolt opens (or creates) the cache file at path.
func OpenBolt(path string, opts ...BoltOption) (*BoltStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("cache path is empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt bucket: %w", err)
	}

	s := &BoltStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the fresh entry for key. An expired entry is deleted and reported as a miss.
func (s *BoltStore) Get(key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}

	var (
		entry   Entry
		found   bool
		expired bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(resultsBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("decode cache entry: %w", err)
		}
		if !entry.Fresh(s.now()) {
			expired = true
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}

	if expired {
		if err := s.delete(key); err != nil {
			return Entry{}, false, err
		}
	}
	if !found {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Put stores articles under key, replacing any previous entry.
func (s *BoltStore) Put(key string, articles []domain.Article, ttl time.Duration) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}

	entry := newEntry(key, articles, s.now(), ttl)
	raw, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("encode cache entry: %w", err)
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).Put([]byte(key), raw)
	}); err != nil {
		return Entry{}, fmt.Errorf("write cache entry: %w", err)
	}
	return entry, nil
}

// Purge removes every expired entry.
func (s *BoltStore) Purge() (int, error) {
	now := s.now()
	removed := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil || !e.Fresh(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return removed, nil
}

// Close releases the underlying file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) delete(key string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
