package search

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDebounce       = 300 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultCacheExpiry    = 5 * time.Minute
	DefaultMaxResults     = 50
)

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

func WithClock(c Clock) SearcherOption {
	return func(s *Searcher) { s.clock = c }
}

func WithLogger(log logrus.FieldLogger) SearcherOption {
	return func(s *Searcher) { s.log = log }
}

func WithDebounce(d time.Duration) SearcherOption {
	return func(s *Searcher) { s.debounce = d }
}

func WithMinQueryLength(n int) SearcherOption {
	return func(s *Searcher) { s.minQueryLength = n }
}

// WithOnSettled registers a callback invoked each time a query settles and
// its results become current.
func WithOnSettled(fn func(query string, results []Result)) SearcherOption {
	return func(s *Searcher) { s.onSettled = fn }
}

// Searcher turns a stream of query edits into at most one lookup per quiet
// period, serving fresh results from the cache when it can.
type Searcher struct {
	cache  *Cache
	lookup Lookup

	clock          Clock
	log            logrus.FieldLogger
	debounce       time.Duration
	minQueryLength int
	onSettled      func(string, []Result)

	debouncer *Debouncer
	ctx       context.Context
	cancel    context.CancelFunc

	mu        sync.Mutex
	query     string
	results   []Result
	searching bool
	gen       uint64 // identifies the settle whose results may be applied
}

// NewSearcher wires a cache and lookup backend together. The cache should
// already be loaded.
func NewSearcher(cache *Cache, lookup Lookup, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		cache:          cache,
		lookup:         lookup,
		clock:          RealClock(),
		log:            logrus.StandardLogger(),
		debounce:       DefaultDebounce,
		minQueryLength: DefaultMinQueryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debouncer = NewDebouncer(s.clock, s.debounce)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// SetQuery records the query text and (re)starts the debounce window.
func (s *Searcher) SetQuery(text string) {
	s.mu.Lock()
	s.query = text
	s.mu.Unlock()

	s.debouncer.Trigger(func() { s.settle(text) })
}

func (s *Searcher) settle(query string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	if utf8.RuneCountInString(query) < s.minQueryLength {
		s.results = nil
		s.searching = false
		s.mu.Unlock()
		s.notify(query, nil)
		return
	}

	if hit, ok := s.cache.Get(query); ok {
		s.results = hit
		s.searching = false
		s.mu.Unlock()
		s.log.WithField("query", query).Debug("Search cache hit")
		s.notify(query, hit)
		return
	}

	s.searching = true
	s.mu.Unlock()

	results, err := s.lookup.Search(s.ctx, query)
	if err != nil {
		s.log.WithError(err).WithField("query", query).Error("Search failed")
		results = nil
	} else {
		s.cache.Put(s.ctx, query, results)
	}

	s.mu.Lock()
	if gen != s.gen {
		// A later query settled while this lookup was in flight.
		s.mu.Unlock()
		return
	}
	s.results = results
	s.searching = false
	s.mu.Unlock()
	s.notify(query, results)
}

func (s *Searcher) notify(query string, results []Result) {
	if s.onSettled != nil {
		s.onSettled(query, results)
	}
}

// ClearSearch resets the query and results and abandons any pending or
// in-flight search.
func (s *Searcher) ClearSearch() {
	s.debouncer.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.query = ""
	s.results = nil
	s.searching = false
}

// ClearCache empties the cache, in memory and in the store.
func (s *Searcher) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results returns the results of the most recent settled query.
func (s *Searcher) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Result(nil), s.results...)
}

func (s *Searcher) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

func (s *Searcher) HasResults() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results) > 0
}

func (s *Searcher) CacheSize() int {
	return s.cache.Len()
}

// Close cancels any pending debounce and in-flight lookup.
func (s *Searcher) Close() {
	s.debouncer.Cancel()
	s.cancel()
}
