package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weatherapp/internal/weather"
)

const (
	// DefaultUserAgent is sent with every page request; some sites reject
	// the Go default.
	DefaultUserAgent = "Mozilla/5.0 (X11; Fedora; Linux x86_64;)"

	// maxPageSize caps how much of a page is read into memory.
	maxPageSize = 4 << 20
)

var (
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoClient    = errors.New("http client not configured")
)

// Fetcher performs page requests for every provider. Each provider gets its
// own circuit breaker, and concurrent requests for the same page share one
// round trip. There are no retries: a failure is returned to the caller.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    logrus.FieldLogger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker

	group singleflight.Group
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithFetchLogger sets the logger used for breaker state changes.
func WithFetchLogger(logger logrus.FieldLogger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher around client. The client's Timeout bounds
// every request.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	f := &Fetcher{
		client:    client,
		userAgent: DefaultUserAgent,
		logger:    discard,
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) breaker(provider string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.breakers[provider]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        provider,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			OnStateChange: func(name string, from, to gobreaker.State) {
				f.logger.WithFields(logrus.Fields{
					"provider": name,
					"from":     from.String(),
					"to":       to.String(),
				}).Warn("circuit breaker state changed")
			},
		})
		f.breakers[provider] = cb
	}
	return cb
}

// Fetch executes req for provider and returns the response body. Every
// failure is wrapped in weather.ErrNetwork.
func (f *Fetcher) Fetch(ctx context.Context, provider string, req *http.Request) ([]byte, error) {
	if f.client == nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, errNoClient)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req = req.WithContext(ctx)

	key := provider + " " + req.URL.String()
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		return f.breaker(provider).Execute(func() (interface{}, error) {
			return f.do(req)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}

	body := v.([]byte)
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (f *Fetcher) do(req *http.Request) ([]byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageSize))
		return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
