package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherapp/internal/store"
)

func TestService_RunAllInRegistrationOrder(t *testing.T) {
	accu := newFake("accu", Field{"Temperature", "21°"})
	rp5 := newFake("rp5", Field{"Temperature", "+20 °C"})
	sinoptik := newFake("sinoptik", Field{"Temperature", "+19°C"})

	svc := NewService(registryOf(accu, rp5, sinoptik), nil, nil)

	res, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)

	assert.Equal(t, "Kyiv", res.City)
	assert.NotEmpty(t, res.RunID)
	for i, name := range []ProviderName{"accu", "rp5", "sinoptik"} {
		assert.Equal(t, name, res.Entries[i].Provider)
		assert.True(t, res.Entries[i].OK())
	}
	v, _ := res.Entries[1].Reading.Get("Temperature")
	assert.Equal(t, "+20 °C", v)
}

func TestService_PartialFailureIsolation(t *testing.T) {
	accu := newFake("accu", Field{"Condition", "Sunny"})
	rp5 := newFake("rp5", Field{"Condition", "Cloudy"})
	rp5.fetchErr = fmt.Errorf("%w: connection refused", ErrNetwork)
	sinoptik := newFake("sinoptik", Field{"Condition", "Rain"})

	svc := NewService(registryOf(accu, rp5, sinoptik), nil, nil)

	res, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, 1, res.Failed())

	failed, ok := res.Get("rp5")
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrNetwork)

	for _, name := range []ProviderName{"accu", "sinoptik"} {
		e, ok := res.Get(name)
		require.True(t, ok)
		assert.NoError(t, e.Err)
		assert.Equal(t, 1, e.Reading.Len())
	}
}

func TestService_FailureAtEveryStageIsRecorded(t *testing.T) {
	resolve := newFake("resolve")
	resolve.resolveErr = fmt.Errorf("%w: no default", ErrConfiguration)
	fetch := newFake("fetch")
	fetch.fetchErr = fmt.Errorf("%w: status 503", ErrNetwork)
	parse := newFake("parse")
	parse.parseErr = fmt.Errorf("%w: layout changed", ErrParse)

	svc := NewService(registryOf(resolve, fetch, parse), nil, nil)

	res, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err, "provider failures never fail the run")
	assert.Equal(t, 3, res.Failed())

	assert.ErrorIs(t, res.Entries[0].Err, ErrConfiguration)
	assert.ErrorIs(t, res.Entries[1].Err, ErrNetwork)
	assert.ErrorIs(t, res.Entries[2].Err, ErrParse)
	assert.Equal(t, int32(0), resolve.fetches.Load(), "fetch must not run after a resolve failure")
}

func TestService_UnknownProviderFailsFast(t *testing.T) {
	accu := newFake("accu")
	rp5 := newFake("rp5")
	svc := NewService(registryOf(accu, rp5), nil, nil)

	res, err := svc.Run(context.Background(), Request{
		Providers: []ProviderName{"accu", "weather.com"},
		City:      "Kyiv",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Nil(t, res)
	assert.Equal(t, int32(0), accu.fetches.Load())
	assert.Equal(t, int32(0), rp5.fetches.Load())
}

func TestService_ExplicitProvidersOnly(t *testing.T) {
	accu := newFake("accu")
	rp5 := newFake("rp5")
	sinoptik := newFake("sinoptik")
	svc := NewService(registryOf(accu, rp5, sinoptik), nil, nil)

	res, err := svc.Run(context.Background(), Request{
		Providers: []ProviderName{"sinoptik", "accu", "sinoptik"},
		City:      "Kyiv",
		Bypass:    true,
	})
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, ProviderName("sinoptik"), res.Entries[0].Provider)
	assert.Equal(t, ProviderName("accu"), res.Entries[1].Provider)
	assert.Equal(t, int32(0), rp5.fetches.Load())
	assert.Equal(t, []bool{true}, accu.bypasses)
}

func TestService_OverridesReachProviders(t *testing.T) {
	accu := newFake("accu")
	svc := NewService(registryOf(accu), nil, Overrides{
		"accu": {Name: "Lviv", URL: "https://accu.test/lviv"},
	})

	res, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err)
	assert.Equal(t, "Lviv", res.Entries[0].Location.Name)
	assert.Equal(t, "https://accu.test/lviv", res.Entries[0].Location.URL)
}

func TestService_WorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(ctx context.Context) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return []byte("ok"), nil
	}

	var fakes []*fakeProvider
	for i := 0; i < 6; i++ {
		f := newFake(fmt.Sprintf("p%d", i))
		f.fetch = slow
		fakes = append(fakes, f)
	}

	svc := NewService(registryOf(fakes...), nil, nil, WithWorkers(2))
	res, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Succeeded())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestService_CancelledRunDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	blocking := newFake("accu")
	blocking.fetch = func(ctx context.Context) ([]byte, error) {
		close(started)
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
	}
	quick := newFake("rp5")

	svc := NewService(registryOf(blocking, quick), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	res, err := svc.Run(ctx, Request{City: "Kyiv"})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

// aheadCache records the margins it is asked to look ahead by.
type aheadCache struct {
	mu      sync.Mutex
	margins []time.Duration
}

func (c *aheadCache) Get(key store.Key) ([]byte, bool) {
	return c.GetAhead(key, 0)
}

func (c *aheadCache) GetAhead(_ store.Key, margin time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.margins = append(c.margins, margin)
	return []byte("cached"), true
}

func (c *aheadCache) Put(store.Key, []byte) {}

// cacheReader is a provider that only reads its page from the cache.
type cacheReader struct{ *fakeProvider }

func (p cacheReader) FetchRaw(_ context.Context, loc Location, cache Cache, _ bool) ([]byte, error) {
	raw, _ := cache.Get(store.Key{Provider: string(p.name), Location: loc.URL, Kind: store.KindCurrent})
	return raw, nil
}

func TestService_RefreshAheadUsesMargin(t *testing.T) {
	reg := NewRegistry()
	reg.Register("accu", cacheReader{newFake("accu", Field{"Temperature", "21°"})})
	reg.Seal()

	cache := &aheadCache{}
	svc := NewService(reg, cache, nil)

	_, err := svc.Run(context.Background(), Request{City: "Kyiv"})
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), Request{City: "Kyiv", RefreshAhead: 7 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{0, 7 * time.Minute}, cache.margins)
}

var _ AheadCache = (*store.Store)(nil)
