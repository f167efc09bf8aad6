// Package store implements the cache that gates provider network access.
//
// Entries are raw provider payloads keyed by provider, location and data
// kind. Every entry is persisted to its own file so repeated invocations of
// the CLI reuse results, and an in-process LRU tier answers repeated lookups
// inside a long-running process. Freshness is decided per data kind.
//
// Storage faults never reach the caller: a failed read is a miss and a failed
// write is dropped after being logged.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherapp/internal/metrics"
)

// ErrCache marks storage-layer faults. It is only ever logged.
var ErrCache = errors.New("cache storage error")

// Kind is the data kind of an entry; each kind has its own max-age.
type Kind string

const (
	// KindCurrent is a current-conditions page.
	KindCurrent Kind = "current"
	// KindLocations is a provider's browse-locations listing.
	KindLocations Kind = "locations"
)

const (
	DefaultCurrentMaxAge   = 900 * time.Second
	DefaultLocationsMaxAge = 86400 * time.Second
	DefaultMemoryEntries   = 256
)

// Policies maps a data kind to its max-age. A kind without a positive
// max-age is never fresh.
type Policies map[Kind]time.Duration

// DefaultPolicies returns the stock max-age for every known kind.
func DefaultPolicies() Policies {
	return Policies{
		KindCurrent:   DefaultCurrentMaxAge,
		KindLocations: DefaultLocationsMaxAge,
	}
}

// Key identifies one cache entry.
type Key struct {
	Provider string
	Location string
	Kind     Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Provider, k.Kind, k.Location)
}

// Entry is a stored payload together with the time it was fetched.
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Store is a concurrency-safe, filesystem-durable cache.
type Store struct {
	dir      string
	policies Policies

	// mu serialises writers so FetchedAt never goes backwards for a key.
	mu sync.Mutex

	mem           *memoryTier
	memoryEntries int
	now           func() time.Time
	logger        logrus.FieldLogger
	metrics       *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for swallowed storage faults.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics enables lookup and write counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithMemoryEntries sizes the in-process tier; zero or less disables it.
func WithMemoryEntries(n int) Option {
	return func(s *Store) { s.memoryEntries = n }
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first write, so an unusable dir degrades to a pass-through cache.
func New(dir string, policies Policies, opts ...Option) (*Store, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		dir:           dir,
		policies:      make(Policies, len(policies)),
		memoryEntries: DefaultMemoryEntries,
		now:           time.Now,
		logger:        discard,
	}
	for kind, maxAge := range policies {
		s.policies[kind] = maxAge
	}
	for _, opt := range opts {
		opt(s)
	}

	mem, err := newMemoryTier(s.memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory tier: %w", err)
	}
	s.mem = mem

	return s, nil
}

// Dir returns the root directory of the durable tier.
func (s *Store) Dir() string {
	return s.dir
}

// MaxAge returns the max-age configured for kind.
func (s *Store) MaxAge(kind Kind) time.Duration {
	return s.policies[kind]
}

// Get returns the payload for key if a fresh entry exists. Stale entries are
// left in place and reported as absent.
func (s *Store) Get(key Key) ([]byte, bool) {
	return s.GetAhead(key, 0)
}

// GetAhead is Get with the max-age shortened by margin, so entries due to
// expire within margin count as stale. A margin at or above the max-age makes
// every entry stale.
func (s *Store) GetAhead(key Key, margin time.Duration) ([]byte, bool) {
	maxAge := s.policies[key.Kind]
	if maxAge <= 0 {
		s.metrics.ObserveLookup(key.Provider, metrics.LookupMiss)
		return nil, false
	}
	maxAge -= max(margin, 0)
	now := s.now()

	if e, ok := s.mem.get(key); ok && s.fresh(e, now, maxAge) {
		s.metrics.ObserveLookup(key.Provider, metrics.LookupHit)
		return clone(e.Payload), true
	}

	// The disk may hold a newer entry written by another process.
	e, err := readEntry(s.path(key))
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.metrics.ObserveLookup(key.Provider, metrics.LookupMiss)
		return nil, false
	case err != nil:
		s.logger.WithFields(logrus.Fields{
			"key":   key.String(),
			"error": err,
		}).Warn("cache read failed, treating as miss")
		s.metrics.ObserveLookup(key.Provider, metrics.LookupError)
		return nil, false
	}

	e = s.promote(key, e)
	if !s.fresh(e, now, maxAge) {
		s.metrics.ObserveLookup(key.Provider, metrics.LookupStale)
		return nil, false
	}

	s.metrics.ObserveLookup(key.Provider, metrics.LookupHit)
	return clone(e.Payload), true
}

// promote copies an entry read from disk into the memory tier and returns
// whichever entry the tier now holds. It runs under mu so a concurrent Put
// is never overwritten by an older disk copy.
func (s *Store) promote(key Key, e Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.add(key, e)
	if cur, ok := s.mem.get(key); ok {
		return cur
	}
	return e
}

// Put stores payload under key with FetchedAt set to now.
func (s *Store) Put(key Key, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetchedAt := s.now()
	if prev, ok := s.mem.get(key); ok {
		if prev.FetchedAt.After(fetchedAt) {
			fetchedAt = prev.FetchedAt
		}
	} else if info, err := os.Stat(s.path(key)); err == nil && info.ModTime().After(fetchedAt) {
		fetchedAt = info.ModTime()
	}

	e := Entry{Payload: clone(payload), FetchedAt: fetchedAt}
	s.mem.add(key, e)

	err := writeEntry(s.path(key), e)
	s.metrics.ObserveWrite(key.Provider, err)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"key":   key.String(),
			"error": err,
		}).Warn("cache write dropped")
	}
}

// Invalidate removes the entry for key from both tiers.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.remove(key)
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithFields(logrus.Fields{
			"key":   key.String(),
			"error": fmt.Errorf("%w: %v", ErrCache, err),
		}).Warn("cache invalidate failed")
	}
}

// Clear removes every entry. Only provider directories and the entry and
// temp files inside them are touched; anything else under the cache
// directory, and the directory itself, is left alone. Unlike the other
// operations it reports failure, since it is only invoked on explicit user
// request.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem.purge()

	providers, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrCache, s.dir, err)
	}

	var errs []error
	for _, p := range providers {
		if !p.IsDir() {
			continue
		}
		if err := clearProviderDir(filepath.Join(s.dir, p.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrCache, s.dir, err)
	}
	return nil
}

func (s *Store) fresh(e Entry, now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.FetchedAt) < maxAge
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
