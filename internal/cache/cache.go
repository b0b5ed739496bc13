// Package cache memoizes filtered search results keyed by boosted query text.
// Every entry carries an explicit expiry; an expired entry is a miss.
package cache

import (
	"errors"
	"time"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

// DefaultTTL is how long a result stays fresh.
const DefaultTTL = 10 * time.Minute

// ErrEmptyKey is returned when a cache key is blank.
var ErrEmptyKey = errors.New("cache key is empty")

// Entry is a memoized result.
type Entry struct {
	Key       string           `json:"key"`
	Articles  []domain.Article `json:"articles"`
	StoredAt  time.Time        `json:"stored_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Fresh reports whether the entry is still within its window at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store is a result cache.
type Store interface {
	// Get returns a fresh entry for key. Expired entries report ok=false.
	Get(key string) (Entry, bool, error)
	// Put stores articles under key for ttl.
	Put(key string, articles []domain.Article, ttl time.Duration) (Entry, error)
	// Purge drops every expired entry and returns how many were removed.
	Purge() (int, error)
	Close() error
}

// Clock returns the current time.
type Clock func() time.Time

func newEntry(key string, articles []domain.Article, now time.Time, ttl time.Duration) Entry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	stored := make([]domain.Article, len(articles))
	copy(stored, articles)
	return Entry{
		Key:       key,
		Articles:  stored,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}
