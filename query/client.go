// Package query is the framework's declarative async data loader: a
// reactive key function plus an async fetcher become a loading/data/error
// triple of signals, with in-flight deduplication, stale-time caching,
// retries, and stale-response discard by generation. The cross-query
// cache lives in a Client, an injector-managed singleton shared by every
// query in the process unless a caller scopes one locally.
package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowdeck/viewer/inject"
	"github.com/flowdeck/viewer/internal/telemetry"
	"github.com/flowdeck/viewer/reactive"
)

// entry is one cached fetch outcome, kept until invalidated or replaced.
// keyParts holds the JSON form of each key element so prefix invalidation
// can compare element-wise instead of substring-matching fingerprints.
type entry struct {
	keyParts  []string
	data      any
	fetchedAt time.Time
	staleTime time.Duration
}

// inflight is one shared fetch: value and err are assigned exactly once,
// before done is closed, so any goroutine that observes done closed may
// read both without further synchronization.
type inflight struct {
	done  chan struct{}
	value any
	err   error
}

// Client is the cross-query cache: fingerprint → cached entry, plus
// fingerprint → in-flight fetch for deduplication. All methods except the
// fetch body itself run on the serial loop; background fetch goroutines
// re-enter only by posting completions through reactive.Post.
type Client struct {
	entries  map[string]*entry
	inflight map[string]*inflight
	metrics  *telemetry.QueryMetrics
	now      func() time.Time
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithMetricsRegistry registers the client's prometheus metrics against
// reg. Without it the client carries unregistered no-op collectors.
func WithMetricsRegistry(reg prometheus.Registerer) ClientOption {
	return func(c *Client) { c.metrics = telemetry.NewQueryMetrics(reg) }
}

// WithNow overrides the clock used for freshness checks. Tests use this
// to step time instead of sleeping through stale windows.
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient builds an empty client. Most code never calls this directly:
// queries resolve the shared singleton through the injector, and tests
// that want isolation pass WithClient to New.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		entries:  map[string]*entry{},
		inflight: map[string]*inflight{},
		metrics:  telemetry.NoopQueryMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultClientCtor is the constructor the injector keys the shared singleton
// on. Package-level so every DefaultClient call resolves the same
// instance; tests swap it with inject.Provide(defaultClientCtor, ...).
var defaultClientCtor = func() *Client { return NewClient() }

// DefaultClient returns the process-wide client, creating it through the
// injector on first use. Override it for tests with
// inject.Provide(DefaultClientCtor(), factory) or inject.Reset.
func DefaultClient() *Client {
	return inject.Resolve(defaultClientCtor)
}

// DefaultClientCtor exposes the injector key for the shared client so
// tests can Provide an override for it.
func DefaultClientCtor() func() *Client { return defaultClientCtor }

// fingerprint serialises each key element to JSON and joins them into the
// cache key. Elements that fail to marshal (channels, funcs) fall back to
// their fmt representation rather than failing the whole query; key
// arrays are expected to hold plain data.
func fingerprint(key []any) (string, []string) {
	parts := make([]string, len(key))
	for i, k := range key {
		b, err := json.Marshal(k)
		if err != nil {
			parts[i] = fmt.Sprintf("%q", fmt.Sprint(k))
			continue
		}
		parts[i] = string(b)
	}
	return "[" + strings.Join(parts, ",") + "]", parts
}

// Set stores data for key as if a fetch completed now, with the given
// stale window.
func (c *Client) Set(key []any, data any, staleTime time.Duration) {
	fp, parts := fingerprint(key)
	c.entries[fp] = &entry{keyParts: parts, data: data, fetchedAt: c.now(), staleTime: staleTime}
}

// Get returns the cached data for key, fresh or not.
func (c *Client) Get(key []any) (any, bool) {
	fp, _ := fingerprint(key)
	e, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// IsFresh reports whether key has a cached entry younger than its stale
// window. A zero stale-time entry is never fresh.
func (c *Client) IsFresh(key []any) bool {
	fp, _ := fingerprint(key)
	return c.freshEntry(fp) != nil
}

func (c *Client) freshEntry(fp string) *entry {
	e, ok := c.entries[fp]
	if !ok {
		return nil
	}
	if c.now().Sub(e.fetchedAt) < e.staleTime {
		return e
	}
	return nil
}

// Invalidate removes every cached entry whose key starts with prefix,
// compared element-wise on the JSON form of each element, and returns how
// many entries were removed. Queries notice on their next revalidation;
// invalidation does not itself push new data.
func (c *Client) Invalidate(prefix []any) int {
	_, want := fingerprint(prefix)
	removed := 0
	for fp, e := range c.entries {
		if len(e.keyParts) < len(want) {
			continue
		}
		match := true
		for i, p := range want {
			if e.keyParts[i] != p {
				match = false
				break
			}
		}
		if match {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed
}

// Clear drops every cached entry. In-flight fetches are unaffected; their
// results repopulate the cache when they land.
func (c *Client) Clear() {
	c.entries = map[string]*entry{}
}

// Prefetch warms the cache for key: a no-op if a fresh entry exists or
// the same key is already being fetched, otherwise it starts (or joins)
// a shared fetch whose result is cached with the given stale window and
// otherwise discarded.
func (c *Client) Prefetch(key []any, staleTime time.Duration, fetch func() (any, error)) {
	fp, parts := fingerprint(key)
	if c.freshEntry(fp) != nil {
		return
	}
	c.share(fp, parts, staleTime, fetch)
}

// share returns the in-flight fetch for fp, starting one in a background
// goroutine if none exists. The owning goroutine assigns value/err, closes
// done, and posts the cache store back onto the serial loop; waiters hang
// their own completions off done.
func (c *Client) share(fp string, parts []string, staleTime time.Duration, run func() (any, error)) *inflight {
	if fl, ok := c.inflight[fp]; ok {
		c.metrics.FetchesDeduped.Inc()
		return fl
	}
	fl := &inflight{done: make(chan struct{})}
	c.inflight[fp] = fl
	c.metrics.FetchesStarted.Inc()
	start := time.Now()
	go func() {
		fl.value, fl.err = run()
		close(fl.done)
		telemetry.ObserveLatency(c.metrics.FetchLatency, start)
		reactive.Post(func() {
			delete(c.inflight, fp)
			if fl.err == nil {
				c.entries[fp] = &entry{keyParts: parts, data: fl.value, fetchedAt: c.now(), staleTime: staleTime}
			}
		})
	}()
	return fl
}
