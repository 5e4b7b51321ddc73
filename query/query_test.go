package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/viewer/dom/memdom"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/setupctx"
)

// useMemScheduler routes reactive.Post and effect batching through a
// memdom scheduler so fetch completions land on a queue the test drains
// explicitly, instead of running on the fetch goroutine.
func useMemScheduler(t *testing.T) {
	t.Helper()
	host := memdom.NewHost()
	reactive.UseScheduler(host.Scheduler())
	t.Cleanup(func() { reactive.UseScheduler(nil) })
}

// waitFor flushes the scheduler until cond holds, failing the test if it
// never does. Fetches complete on background goroutines, so their
// completions arrive on the microtask queue at a time the test can't
// compute; polling with a flush per probe is the deterministic drain.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		reactive.Flush()
		return cond()
	}, time.Second, time.Millisecond)
}

func TestFetchAppliesDataAndClearsLoading(t *testing.T) {
	useMemScheduler(t)
	res := New(
		func() []any { return []any{"answer"} },
		func(ctx context.Context) (int, error) { return 42, nil },
		WithClient[int](NewClient()),
	)

	assert.True(t, res.Loading.Peek())
	waitFor(t, func() bool { return !res.Loading.Peek() })
	assert.Equal(t, 42, res.Data.Peek())
	assert.Nil(t, res.Error.Peek())
}

func TestInitialDataIsVisibleBeforeFirstFetchLands(t *testing.T) {
	useMemScheduler(t)
	gate := make(chan string)
	res := New(
		func() []any { return []any{"slow"} },
		func(ctx context.Context) (string, error) { return <-gate, nil },
		WithClient[string](NewClient()),
		WithInitialData[string]("placeholder"),
	)

	assert.Equal(t, "placeholder", res.Data.Peek())
	gate <- "real"
	waitFor(t, func() bool { return res.Data.Peek() == "real" })
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	useMemScheduler(t)
	scope := reactive.NewSignal("s1")
	gate1 := make(chan string)
	gate2 := make(chan string)
	var calls atomic.Int32

	res := New(
		func() []any { return []any{"x", scope.Get()} },
		func(ctx context.Context) (string, error) {
			if calls.Add(1) == 1 {
				return <-gate1, nil
			}
			return <-gate2, nil
		},
		WithClient[string](NewClient()),
	)

	waitFor(t, func() bool { return calls.Load() == 1 })

	scope.Set("s2")
	waitFor(t, func() bool { return calls.Load() == 2 })

	gate2 <- "R2"
	waitFor(t, func() bool { return res.Data.Peek() == "R2" })

	gate1 <- "R1"
	time.Sleep(10 * time.Millisecond)
	reactive.Flush()
	assert.Equal(t, "R2", res.Data.Peek())
	assert.False(t, res.Loading.Peek())
}

func TestRetryExhaustionSurfacesFinalError(t *testing.T) {
	useMemScheduler(t)
	var calls atomic.Int32
	res := New(
		func() []any { return []any{"failing"} },
		func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "", errors.New("always fails")
		},
		WithClient[string](NewClient()),
		WithRetry[string](2),
	)

	waitFor(t, func() bool { return !res.Loading.Peek() })
	require.NotNil(t, res.Error.Peek())
	assert.Equal(t, "always fails", res.Error.Peek().Error())
	assert.Equal(t, int32(3), calls.Load())
}

func TestDisabledQueryNeverFetches(t *testing.T) {
	useMemScheduler(t)
	enabled := reactive.NewSignal(false)
	var calls atomic.Int32

	res := New(
		func() []any { return []any{"gated"} },
		func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "data", nil
		},
		WithClient[string](NewClient()),
		WithEnabled[string](func() bool { return enabled.Get() }),
	)

	reactive.Flush()
	assert.False(t, res.Loading.Peek())
	assert.Equal(t, int32(0), calls.Load())

	enabled.Set(true)
	waitFor(t, func() bool { return res.Data.Peek() == "data" })
}

func TestConcurrentQueriesShareOneFetch(t *testing.T) {
	useMemScheduler(t)
	client := NewClient()
	gate := make(chan string)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return <-gate, nil
	}
	key := func() []any { return []any{"shared"} }

	a := New(key, fetch, WithClient[string](client))
	b := New(key, fetch, WithClient[string](client))

	assert.True(t, a.Loading.Peek())
	assert.True(t, b.Loading.Peek())

	gate <- "once"
	waitFor(t, func() bool { return a.Data.Peek() == "once" && b.Data.Peek() == "once" })
	assert.Equal(t, int32(1), calls.Load())
}

func TestFreshCacheEntrySkipsFetch(t *testing.T) {
	useMemScheduler(t)
	client := NewClient()
	client.Set([]any{"warm"}, "cached", time.Minute)
	var calls atomic.Int32

	res := New(
		func() []any { return []any{"warm"} },
		func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "fetched", nil
		},
		WithClient[string](client),
		WithStaleTime[string](time.Minute),
	)

	reactive.Flush()
	assert.Equal(t, "cached", res.Data.Peek())
	assert.False(t, res.Loading.Peek())
	assert.Equal(t, int32(0), calls.Load())
}

func TestRefetchBypassesFreshCache(t *testing.T) {
	useMemScheduler(t)
	client := NewClient()
	client.Set([]any{"warm"}, "cached", time.Minute)
	var calls atomic.Int32

	res := New(
		func() []any { return []any{"warm"} },
		func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "fetched", nil
		},
		WithClient[string](client),
		WithStaleTime[string](time.Minute),
	)
	reactive.Flush()
	require.Equal(t, "cached", res.Data.Peek())

	res.Refetch()
	waitFor(t, func() bool { return res.Data.Peek() == "fetched" })
	assert.Equal(t, int32(1), calls.Load())
}

func TestSuccessAndErrorCallbacks(t *testing.T) {
	useMemScheduler(t)
	var got string
	res := New(
		func() []any { return []any{"cb"} },
		func(ctx context.Context) (string, error) { return "value", nil },
		WithClient[string](NewClient()),
		WithOnSuccess[string](func(v string) { got = v }),
	)
	waitFor(t, func() bool { return !res.Loading.Peek() })
	assert.Equal(t, "value", got)

	var gotErr error
	errRes := New(
		func() []any { return []any{"cb-err"} },
		func(ctx context.Context) (string, error) { return "", errors.New("boom") },
		WithClient[string](NewClient()),
		WithOnError[string](func(err error) { gotErr = err }),
	)
	waitFor(t, func() bool { return !errRes.Loading.Peek() })
	require.NotNil(t, gotErr)
	assert.Equal(t, "boom", gotErr.Error())
}

// fakeSetupHost lets the test stand in for a component instance so the
// query registers its disposer the way it would during a real setup.
type fakeSetupHost struct {
	disposers []func()
}

func (h *fakeSetupHost) RegisterDisposer(fn func())  { h.disposers = append(h.disposers, fn) }
func (h *fakeSetupHost) RegisterOnMounted(fn func()) {}

func TestDisposedQueryIgnoresLateCompletion(t *testing.T) {
	useMemScheduler(t)
	gate := make(chan string)
	host := &fakeSetupHost{}

	var res *Result[string]
	setupctx.RunWith(host, func() {
		res = New(
			func() []any { return []any{"doomed"} },
			func(ctx context.Context) (string, error) { return <-gate, nil },
			WithClient[string](NewClient()),
			WithInitialData[string]("initial"),
		)
	})
	require.True(t, res.Loading.Peek())

	for i := len(host.disposers) - 1; i >= 0; i-- {
		host.disposers[i]()
	}

	gate <- "late"
	time.Sleep(10 * time.Millisecond)
	reactive.Flush()
	assert.Equal(t, "initial", res.Data.Peek())
	assert.True(t, res.Loading.Peek())
}
