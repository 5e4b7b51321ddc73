package query

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/viewer/inject"
	"github.com/flowdeck/viewer/reactive"
)

func TestInvalidateByPrefix(t *testing.T) {
	c := NewClient()
	c.Set([]any{"tasks", "1"}, "t1", time.Minute)
	c.Set([]any{"tasks", "2"}, "t2", time.Minute)
	c.Set([]any{"users", "1"}, "u1", time.Minute)

	removed := c.Invalidate([]any{"tasks"})
	assert.Equal(t, 2, removed)

	_, ok := c.Get([]any{"tasks", "1"})
	assert.False(t, ok)
	_, ok = c.Get([]any{"tasks", "2"})
	assert.False(t, ok)
	v, ok := c.Get([]any{"users", "1"})
	require.True(t, ok)
	assert.Equal(t, "u1", v)
}

func TestInvalidateMatchesElementsNotSubstrings(t *testing.T) {
	c := NewClient()
	c.Set([]any{"task"}, "short", time.Minute)
	c.Set([]any{"tasks"}, "long", time.Minute)

	removed := c.Invalidate([]any{"task"})
	assert.Equal(t, 1, removed)
	_, ok := c.Get([]any{"tasks"})
	assert.True(t, ok)
}

func TestFreshnessFollowsStaleTime(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewClient(WithNow(func() time.Time { return now }))

	c.Set([]any{"k"}, "v", time.Minute)
	assert.True(t, c.IsFresh([]any{"k"}))

	now = now.Add(2 * time.Minute)
	assert.False(t, c.IsFresh([]any{"k"}))

	// stale data is still retrievable explicitly
	v, ok := c.Get([]any{"k"})
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestZeroStaleTimeIsNeverFresh(t *testing.T) {
	c := NewClient()
	c.Set([]any{"k"}, "v", 0)
	assert.False(t, c.IsFresh([]any{"k"}))
}

func TestClearDropsEverything(t *testing.T) {
	c := NewClient()
	c.Set([]any{"a"}, 1, time.Minute)
	c.Set([]any{"b"}, 2, time.Minute)
	c.Clear()

	_, ok := c.Get([]any{"a"})
	assert.False(t, ok)
	_, ok = c.Get([]any{"b"})
	assert.False(t, ok)
}

func TestPrefetchIsNoopWhenFresh(t *testing.T) {
	useMemScheduler(t)
	c := NewClient()
	c.Set([]any{"warm"}, "cached", time.Minute)

	var calls atomic.Int32
	c.Prefetch([]any{"warm"}, time.Minute, func() (any, error) {
		calls.Add(1)
		return "fetched", nil
	})
	reactive.Flush()
	assert.Equal(t, int32(0), calls.Load())
}

func TestPrefetchPopulatesCache(t *testing.T) {
	useMemScheduler(t)
	c := NewClient()

	var calls atomic.Int32
	c.Prefetch([]any{"cold"}, time.Minute, func() (any, error) {
		calls.Add(1)
		return "fetched", nil
	})
	waitFor(t, func() bool {
		_, ok := c.Get([]any{"cold"})
		return ok
	})
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.IsFresh([]any{"cold"}))
}

func TestDefaultClientIsAnInjectorSingleton(t *testing.T) {
	inject.Reset()
	t.Cleanup(inject.Reset)

	a := DefaultClient()
	b := DefaultClient()
	assert.Same(t, a, b)

	local := NewClient()
	inject.Provide(DefaultClientCtor(), func() *Client { return local })
	assert.Same(t, local, DefaultClient())
}
