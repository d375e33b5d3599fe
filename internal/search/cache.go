package search

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// Result is one search hit.
type Result struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"` // project, task, board, user
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Entry is a cached result set. Timestamp is Unix milliseconds.
type Entry struct {
	Results   []Result `json:"results"`
	Timestamp int64    `json:"timestamp"`
}

// Entries maps an exact query string to its cached results.
type Entries map[string]Entry

func fresh(e Entry, now time.Time, expiry time.Duration) bool {
	return now.UnixMilli()-e.Timestamp < expiry.Milliseconds()
}

// FreshResults returns the cached results for query if the entry is younger
// than expiry.
func FreshResults(entries Entries, query string, now time.Time, expiry time.Duration) ([]Result, bool) {
	e, ok := entries[query]
	if !ok || !fresh(e, now, expiry) {
		return nil, false
	}
	return e.Results, true
}

// Prune returns a copy of entries without the expired ones.
func Prune(entries Entries, now time.Time, expiry time.Duration) Entries {
	out := make(Entries, len(entries))
	for q, e := range entries {
		if fresh(e, now, expiry) {
			out[q] = e
		}
	}
	return out
}

// Cache is the persisted query cache. Expired entries are dropped lazily,
// whenever the cache is loaded or written.
type Cache struct {
	store  kvstore.Store
	expiry time.Duration
	clock  Clock
	log    logrus.FieldLogger

	mu      sync.Mutex
	entries Entries
}

// NewCache creates a cache over store. A nil clock or logger selects the
// defaults.
func NewCache(store kvstore.Store, expiry time.Duration, clock Clock, log logrus.FieldLogger) *Cache {
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{
		store:   store,
		expiry:  expiry,
		clock:   clock,
		log:     log,
		entries: Entries{},
	}
}

// Load hydrates the cache from the store and writes back the pruned map if
// anything expired. An unreadable cache starts empty.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := kvstore.GetJSON(ctx, c.store, kvstore.SearchCacheKey, Entries{})
	if err != nil {
		c.entries = Entries{}
		return err
	}
	if stored == nil {
		stored = Entries{}
	}
	c.entries = Prune(stored, c.clock.Now(), c.expiry)
	if len(c.entries) != len(stored) {
		c.log.WithField("expired", len(stored)-len(c.entries)).Debug("Pruned search cache")
		c.persistLocked(ctx)
	}
	return nil
}

// Get returns fresh results for query.
func (c *Cache) Get(query string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FreshResults(c.entries, query, c.clock.Now(), c.expiry)
}

// Put records results for query, stamped with the current time.
func (c *Cache) Put(ctx context.Context, query string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.entries = Prune(c.entries, now, c.expiry)
	c.entries[query] = Entry{Results: results, Timestamp: now.UnixMilli()}
	c.persistLocked(ctx)
}

// Clear empties the cache and its persisted copy.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = Entries{}
	c.persistLocked(ctx)
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) persistLocked(ctx context.Context) {
	if err := kvstore.SetJSON(ctx, c.store, kvstore.SearchCacheKey, c.entries); err != nil {
		c.log.WithError(err).Error("Failed to persist search cache")
	}
}
