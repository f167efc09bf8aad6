package weather

import (
	"context"
	"strings"
	"time"

	"github.com/i474232898/weatherapp/internal/store"
)

// Provider abstracts one external weather source (AccuWeather, RP5, Sinoptik).
//
// The aggregator always calls ResolveLocation, FetchRaw and Parse in that
// order; implementations never call each other's stages.
type Provider interface {
	Name() ProviderName

	// ResolveLocation maps a requested city to this provider's page, applying
	// the override section for this provider if one exists.
	ResolveLocation(city string, overrides Overrides) (Location, error)

	// FetchRaw returns the raw page for loc, consulting cache unless bypass
	// is set and storing every live fetch back into it.
	FetchRaw(ctx context.Context, loc Location, cache Cache, bypass bool) ([]byte, error)

	// Parse extracts labelled values from a raw page.
	Parse(raw []byte) (Reading, error)
}

// Cache is the part of the cache store providers rely on.
type Cache interface {
	Get(key store.Key) ([]byte, bool)
	Put(key store.Key, payload []byte)
}

// AheadCache is a Cache that can also treat entries due to expire within
// margin as stale.
type AheadCache interface {
	Cache
	GetAhead(key store.Key, margin time.Duration) ([]byte, bool)
}

// aheadView presents an AheadCache as a plain Cache with a fixed margin.
type aheadView struct {
	AheadCache
	margin time.Duration
}

func (v aheadView) Get(key store.Key) ([]byte, bool) {
	return v.GetAhead(key, v.margin)
}

// LocationOverride is one provider section of the persisted configuration.
// Empty fields fall back to the provider defaults.
type LocationOverride struct {
	Name string
	URL  string
}

// Overrides holds the persisted per-provider location overrides.
type Overrides map[ProviderName]LocationOverride

// Lookup returns the override section for name, if any.
func (o Overrides) Lookup(name ProviderName) (LocationOverride, bool) {
	if o == nil {
		return LocationOverride{}, false
	}
	ov, ok := o[ProviderName(strings.ToLower(string(name)))]
	return ov, ok
}
