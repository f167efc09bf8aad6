package weather

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherapp/internal/metrics"
)

// Middleware wraps a Provider with a cross-cutting concern. Wrappers must
// keep the wrapped provider's name.
type Middleware func(Provider) Provider

// Chain applies mws to p so that mws[0] is the outermost wrapper.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// stageHook is called after each provider stage completes.
type stageHook func(provider ProviderName, stage string, started time.Time, err error)

type observed struct {
	Provider
	hook stageHook
}

func (o *observed) ResolveLocation(city string, overrides Overrides) (Location, error) {
	started := time.Now()
	loc, err := o.Provider.ResolveLocation(city, overrides)
	o.hook(o.Name(), "resolve", started, err)
	return loc, err
}

func (o *observed) FetchRaw(ctx context.Context, loc Location, cache Cache, bypass bool) ([]byte, error) {
	started := time.Now()
	raw, err := o.Provider.FetchRaw(ctx, loc, cache, bypass)
	o.hook(o.Name(), "fetch", started, err)
	return raw, err
}

func (o *observed) Parse(raw []byte) (Reading, error) {
	started := time.Now()
	r, err := o.Provider.Parse(raw)
	o.hook(o.Name(), "parse", started, err)
	return r, err
}

// WithTiming logs the duration of every provider stage at debug level.
func WithTiming(logger logrus.FieldLogger) Middleware {
	return func(p Provider) Provider {
		return &observed{Provider: p, hook: func(name ProviderName, stage string, started time.Time, err error) {
			entry := logger.WithFields(logrus.Fields{
				"provider": name,
				"stage":    stage,
				"duration": time.Since(started).String(),
			})
			if err != nil {
				entry = entry.WithField("error", err)
			}
			entry.Debug("provider stage finished")
		}}
	}
}

// WithMetrics records stage durations and outcomes.
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(p Provider) Provider {
		return &observed{Provider: p, hook: func(name ProviderName, stage string, started time.Time, err error) {
			m.ObserveStage(string(name), stage, started, err)
		}}
	}
}
