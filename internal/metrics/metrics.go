// Package metrics holds the Prometheus collectors shared by the cache store,
// the provider middleware and the serve-mode HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
	LookupError = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing,
// which keeps tests and one-shot CLI runs free of registry plumbing.
type Metrics struct {
	CacheLookups  *prometheus.CounterVec
	CacheWrites   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	ProviderRuns  *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherapp",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherapp",
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Cache writes by provider and status.",
		}, []string{"provider", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherapp",
			Subsystem: "provider",
			Name:      "stage_duration_seconds",
			Help:      "Duration of provider stages (resolve, fetch, parse).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "stage"}),
		ProviderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherapp",
			Subsystem: "provider",
			Name:      "stage_calls_total",
			Help:      "Provider stage calls by provider, stage and status.",
		}, []string{"provider", "stage", "status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherapp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Serve-mode HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(m.CacheLookups, m.CacheWrites, m.StageDuration, m.ProviderRuns, m.HTTPRequests)
	return m
}

// ObserveLookup counts one cache lookup.
func (m *Metrics) ObserveLookup(provider, outcome string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(provider, outcome).Inc()
}

// ObserveWrite counts one cache write.
func (m *Metrics) ObserveWrite(provider string, err error) {
	if m == nil {
		return
	}
	m.CacheWrites.WithLabelValues(provider, status(err)).Inc()
}

// ObserveStage records the duration and outcome of one provider stage.
func (m *Metrics) ObserveStage(provider, stage string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(provider, stage).Observe(time.Since(started).Seconds())
	m.ProviderRuns.WithLabelValues(provider, stage, status(err)).Inc()
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
