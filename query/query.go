package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/setupctx"
)

// Fetcher loads the data for one key snapshot. It runs on a background
// goroutine; implementations must not touch signals or the DOM — the
// query applies their result back on the serial loop.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Result is what New returns: three observable signals and a refetch
// handle. Data and Error are written only by the query itself; Loading is
// true from the moment a fetch is decided on until its outcome (or a
// fresh cache hit) is applied.
type Result[T any] struct {
	Data    *reactive.Signal[T]
	Loading *reactive.Signal[bool]
	Error   *reactive.Signal[error]

	q *query[T]
}

// Refetch invalidates the current generation and starts a fresh attempt,
// bypassing any fresh cache entry for the current key.
func (r *Result[T]) Refetch() {
	r.q.refetch()
}

type config[T any] struct {
	staleTime  time.Duration
	retry      int
	enabled    func() bool
	initial    T
	hasInitial bool
	onSuccess  func(T)
	onError    func(error)
	client     *Client
}

// Option configures one query.
type Option[T any] func(*config[T])

// WithStaleTime sets the freshness window stored with the cache entries
// this query's fetches write (default 0). A revalidation skips fetching
// while the key's cached entry is younger than the window that entry was
// stored with, whichever writer stored it.
func WithStaleTime[T any](d time.Duration) Option[T] {
	return func(c *config[T]) { c.staleTime = d }
}

// WithRetry sets how many additional attempts follow a failed fetch
// before the error is surfaced. Default 0.
func WithRetry[T any](n int) Option[T] {
	return func(c *config[T]) { c.retry = n }
}

// WithEnabled gates the query on a predicate, evaluated (and tracked, so
// signal reads inside it re-trigger the query) on every revalidation.
// While it returns false no fetch runs and Loading stays false.
func WithEnabled[T any](pred func() bool) Option[T] {
	return func(c *config[T]) { c.enabled = pred }
}

// WithInitialData seeds Data synchronously, before the first fetch lands.
func WithInitialData[T any](v T) Option[T] {
	return func(c *config[T]) { c.initial = v; c.hasInitial = true }
}

// WithOnSuccess registers a callback invoked with each successfully
// applied value (fetched or served fresh from cache).
func WithOnSuccess[T any](fn func(T)) Option[T] {
	return func(c *config[T]) { c.onSuccess = fn }
}

// WithOnError registers a callback invoked with each surfaced error.
func WithOnError[T any](fn func(error)) Option[T] {
	return func(c *config[T]) { c.onError = fn }
}

// WithClient scopes the query to a private client instead of the
// injector's shared singleton. Tests use this for isolation.
func WithClient[T any](c *Client) Option[T] {
	return func(cfg *config[T]) { cfg.client = c }
}

type query[T any] struct {
	id     string
	key    func() []any
	fetch  Fetcher[T]
	cfg    config[T]
	client *Client

	data    *reactive.Signal[T]
	loading *reactive.Signal[bool]
	err     *reactive.Signal[error]

	// generation tags each decided fetch; a completion is applied only if
	// its generation still matches, which is the whole stale-response
	// discard mechanism.
	generation int
	disposed   bool
	effect     *reactive.Effect
}

// New builds a query: an effect tracks every signal read inside key (and
// enabled, if set), and each change revalidates — serving a fresh cache
// entry if one exists, otherwise starting or joining a shared fetch. If a
// setup context is active, the query is disposed with its component; a
// disposed query never writes its signals again, though in-flight work is
// left to finish in the background.
func New[T any](key func() []any, fetch Fetcher[T], opts ...Option[T]) *Result[T] {
	q := &query[T]{id: uuid.NewString(), key: key, fetch: fetch}
	for _, opt := range opts {
		opt(&q.cfg)
	}
	q.client = q.cfg.client
	if q.client == nil {
		q.client = DefaultClient()
	}

	q.data = reactive.NewSignal(q.cfg.initial, reactive.WithDebugName[T]("query:data"))
	q.loading = reactive.NewSignal(false, reactive.WithDebugName[bool]("query:loading"))
	q.err = reactive.NewSignal[error](nil, reactive.WithDebugName[error]("query:error"))

	if h, ok := setupctx.TryCurrent(); ok {
		h.RegisterDisposer(q.dispose)
	}

	// The effect's tracked region covers exactly the key function and the
	// enabled predicate; everything the revalidation itself touches (the
	// query's own signals, the cache) is read untracked so a data write
	// doesn't re-trigger the key effect.
	q.effect = reactive.NewEffect(func() func() {
		keyArr := q.key()
		enabled := q.cfg.enabled == nil || q.cfg.enabled()
		reactive.Untrack(func() any {
			q.revalidate(keyArr, enabled, false)
			return nil
		})
		return nil
	}, reactive.WithEffectDebugName("query:"+q.id))

	return &Result[T]{Data: q.data, Loading: q.loading, Error: q.err, q: q}
}

func (q *query[T]) dispose() {
	if q.disposed {
		return
	}
	q.disposed = true
	q.effect.Dispose()
}

func (q *query[T]) refetch() {
	if q.disposed {
		return
	}
	keyArr := reactive.Untrack(func() []any { return q.key() })
	enabled := q.cfg.enabled == nil || reactive.Untrack(func() bool { return q.cfg.enabled() })
	reactive.Untrack(func() any {
		q.revalidate(keyArr, enabled, true)
		return nil
	})
}

// revalidate is the one decision point: bump the generation, then either
// stand down (disabled), serve fresh cache (unless forced), or start or
// join a fetch whose completion is applied back on the serial loop.
func (q *query[T]) revalidate(keyArr []any, enabled, force bool) {
	if q.disposed {
		return
	}
	q.generation++
	gen := q.generation
	if !enabled {
		q.loading.Set(false)
		return
	}
	fp, parts := fingerprint(keyArr)
	if !force {
		if e := q.client.freshEntry(fp); e != nil {
			q.apply(gen, e.data, nil)
			return
		}
	}
	q.loading.Set(true)
	fl := q.client.share(fp, parts, q.cfg.staleTime, func() (any, error) {
		return q.runFetch(keyArr)
	})
	go func() {
		<-fl.done
		reactive.Post(func() {
			q.apply(gen, fl.value, fl.err)
		})
	}()
}

// runFetch runs the fetcher up to retry+1 times on the fetch goroutine.
// The final error is returned as a value — nothing here can escape as an
// unhandled failure, waiters all read the same (value, err) pair.
func (q *query[T]) runFetch(keyArr []any) (any, error) {
	ctx := context.Background()
	var lastErr error
	for attempt := 0; attempt <= q.cfg.retry; attempt++ {
		if attempt > 0 {
			q.client.metrics.FetchesRetried.Inc()
		}
		v, err := q.fetch(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// apply writes a completed outcome into the query's signals, unless the
// query was disposed or a newer generation superseded this one.
func (q *query[T]) apply(gen int, value any, err error) {
	if q.disposed || gen != q.generation {
		return
	}
	q.loading.Set(false)
	if err != nil {
		q.err.Set(err)
		if q.cfg.onError != nil {
			q.cfg.onError(err)
		}
		return
	}
	v, _ := value.(T)
	q.data.Set(v)
	q.err.Set(nil)
	if q.cfg.onSuccess != nil {
		q.cfg.onSuccess(v)
	}
}
