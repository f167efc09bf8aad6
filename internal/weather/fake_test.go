package weather

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeProvider is a scriptable Provider that records how it was called.
type fakeProvider struct {
	name    ProviderName
	reading Reading

	resolveErr error
	fetchErr   error
	parseErr   error

	// fetch, when set, replaces the scripted fetch behaviour.
	fetch func(ctx context.Context) ([]byte, error)

	fetches  atomic.Int32
	mu       sync.Mutex
	bypasses []bool
}

func (f *fakeProvider) Name() ProviderName { return f.name }

func (f *fakeProvider) ResolveLocation(city string, overrides Overrides) (Location, error) {
	if f.resolveErr != nil {
		return Location{}, f.resolveErr
	}
	loc := Location{Provider: f.name, Name: city, URL: "https://" + string(f.name) + ".test/" + city}
	if ov, ok := overrides.Lookup(f.name); ok {
		loc.Name, loc.URL = ov.Name, ov.URL
	}
	return loc, nil
}

func (f *fakeProvider) FetchRaw(ctx context.Context, loc Location, cache Cache, bypass bool) ([]byte, error) {
	f.fetches.Add(1)
	f.mu.Lock()
	f.bypasses = append(f.bypasses, bypass)
	f.mu.Unlock()

	if f.fetch != nil {
		return f.fetch(ctx)
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return []byte(loc.URL), nil
}

func (f *fakeProvider) Parse(raw []byte) (Reading, error) {
	if f.parseErr != nil {
		return Reading{}, f.parseErr
	}
	return f.reading, nil
}

func newFake(name string, fields ...Field) *fakeProvider {
	return &fakeProvider{name: ProviderName(name), reading: NewReading(fields...)}
}

func registryOf(ps ...*fakeProvider) *Registry {
	r := NewRegistry()
	for _, p := range ps {
		r.Register(p.name, p)
	}
	r.Seal()
	return r
}
