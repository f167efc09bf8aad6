package weather

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent provider runs when no limit is configured.
const DefaultWorkers = 4

// Request describes one aggregation run. An empty Providers list means every
// registered provider.
type Request struct {
	Providers []ProviderName
	City      string
	Bypass    bool

	// RefreshAhead refetches cached pages that would expire within this
	// duration. It needs a cache implementing AheadCache and is ignored
	// otherwise.
	RefreshAhead time.Duration
}

// Service orchestrates providers for one run: it picks the targets, runs
// resolve, fetch and parse for each through the shared cache, and collects
// the outcomes.
type Service struct {
	registry  *Registry
	cache     Cache
	overrides Overrides
	workers   int
	logger    logrus.FieldLogger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithWorkers bounds the number of providers run concurrently.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger logrus.FieldLogger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new Service.
func NewService(registry *Registry, cache Cache, overrides Overrides, opts ...ServiceOption) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		registry:  registry,
		cache:     cache,
		overrides: overrides,
		workers:   DefaultWorkers,
		logger:    discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the provider registry the service dispatches through.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Run executes one aggregation. An unknown provider name fails the whole run
// before any fetch. Every other failure is recorded on that provider's entry
// and does not affect the others. If ctx is cancelled, no Result is returned.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	targets, err := s.targets(req.Providers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		City:    req.City,
		RunID:   uuid.NewString(),
		Entries: make([]Entry, len(targets)),
	}
	logger := s.logger.WithFields(logrus.Fields{
		"run_id":    res.RunID,
		"city":      req.City,
		"bypass":    req.Bypass,
		"providers": len(targets),
	})
	logger.Debug("aggregation started")
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Entries[i] = s.runProvider(gctx, logger, t, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logger.WithField("error", err).Warn("aggregation cancelled, discarding partial result")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"succeeded": res.Succeeded(),
		"failed":    res.Failed(),
		"duration":  time.Since(started).String(),
	}).Debug("aggregation finished")
	return res, nil
}

func (s *Service) targets(names []ProviderName) ([]Registered, error) {
	if len(names) == 0 {
		return s.registry.All(), nil
	}

	seen := make(map[ProviderName]bool, len(names))
	targets := make([]Registered, 0, len(names))
	for _, name := range names {
		p, ok := s.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, Registered{Name: name, Provider: p})
	}
	return targets, nil
}

func (s *Service) cacheFor(req Request) Cache {
	if req.RefreshAhead <= 0 {
		return s.cache
	}
	if ac, ok := s.cache.(AheadCache); ok {
		return aheadView{AheadCache: ac, margin: req.RefreshAhead}
	}
	return s.cache
}

func (s *Service) runProvider(ctx context.Context, logger logrus.FieldLogger, t Registered, req Request) Entry {
	entry := Entry{Provider: t.Name}
	logger = logger.WithField("provider", t.Name)

	loc, err := t.Provider.ResolveLocation(req.City, s.overrides)
	if err != nil {
		entry.Err = fmt.Errorf("resolve location: %w", err)
		logger.WithField("error", entry.Err).Warn("provider failed")
		return entry
	}
	entry.Location = loc

	raw, err := t.Provider.FetchRaw(ctx, loc, s.cacheFor(req), req.Bypass)
	if err != nil {
		entry.Err = fmt.Errorf("fetch %s: %w", loc.URL, err)
		logger.WithField("error", entry.Err).Warn("provider failed")
		return entry
	}

	reading, err := t.Provider.Parse(raw)
	if err != nil {
		entry.Err = fmt.Errorf("parse: %w", err)
		logger.WithField("error", entry.Err).Warn("provider failed")
		return entry
	}

	entry.Reading = reading
	return entry
}
