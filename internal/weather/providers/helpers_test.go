package providers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weatherapp/internal/store"
)

// recordingCache is an in-memory weather.Cache that counts its calls.
type recordingCache struct {
	mu      sync.Mutex
	entries map[store.Key][]byte
	gets    int
	puts    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[store.Key][]byte)}
}

func (c *recordingCache) Get(key store.Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	return v, ok
}

func (c *recordingCache) Put(key store.Key, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = payload
}

// testSite is a stand-in provider website.
type testSite struct {
	*httptest.Server
	hits    atomic.Int32
	lastReq atomic.Pointer[http.Request]
}

func newTestSite(t *testing.T, handler http.HandlerFunc) *testSite {
	t.Helper()
	s := &testSite{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.lastReq.Store(r)
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func pageHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}
}

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(&http.Client{Timeout: timeout})
}
