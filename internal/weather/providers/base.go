package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/weatherapp/internal/store"
	"github.com/i474232898/weatherapp/internal/weather"
)

// DefaultCity is the city every provider has a built-in page for.
const DefaultCity = "Kyiv"

// site is the per-variant part of a provider: where its pages live, how to
// request them and what to pull out of them.
type site struct {
	name weather.ProviderName
	// browseURL is the site's location listing page, cached under
	// store.KindLocations once location search is supported.
	browseURL string
	// defaults maps a lower-cased city name to its location.
	defaults map[string]weather.Location
	// header is applied to every page request.
	header http.Header
	rules  []rule
}

// base implements the provider stages shared by every site.
type base struct {
	site
	fetcher *Fetcher
}

func (b *base) Name() weather.ProviderName {
	return b.name
}

// ResolveLocation looks city up in the site's default table, then lets the
// override section for this provider replace the name, the URL, or both.
func (b *base) ResolveLocation(city string, overrides weather.Overrides) (weather.Location, error) {
	loc, ok := b.defaults[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		loc = weather.Location{Name: city}
	}
	loc.Provider = b.name

	if ov, ok := overrides.Lookup(b.name); ok {
		if ov.Name != "" {
			loc.Name = ov.Name
		}
		if ov.URL != "" {
			loc.URL = ov.URL
		}
	}

	if loc.URL == "" {
		return weather.Location{}, fmt.Errorf("%w: no %s page for city %q", weather.ErrConfiguration, b.name, city)
	}
	return loc, nil
}

// FetchRaw returns the page for loc. The cache is only consulted when bypass
// is false; every live page is written back to it.
func (b *base) FetchRaw(ctx context.Context, loc weather.Location, cache weather.Cache, bypass bool) ([]byte, error) {
	key := store.Key{Provider: string(b.name), Location: loc.URL, Kind: store.KindCurrent}
	if !bypass && cache != nil {
		if raw, ok := cache.Get(key); ok {
			return raw, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}
	for k, vs := range b.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	raw, err := b.fetcher.Fetch(ctx, string(b.name), req)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Put(key, raw)
	}
	return raw, nil
}

func (b *base) Parse(raw []byte) (weather.Reading, error) {
	return extract(raw, b.rules)
}
