package reactive

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/viewer/dom/memdom"
)

func TestSignalGetSetRoundTrip(t *testing.T) {
	s := NewSignal(1)
	assert.Equal(t, 1, s.Get())
	s.Set(2)
	assert.Equal(t, 2, s.Get())
}

func TestSignalEqualWriteDoesNotNotify(t *testing.T) {
	s := NewSignal(1)
	runs := 0
	NewEffect(func() func() {
		s.Get()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)
	s.Set(1)
	Flush()
	assert.Equal(t, 1, runs, "writing the same value must not schedule the effect again")
}

func TestSignalNaNEqualsNaN(t *testing.T) {
	s := NewSignal(math.NaN())
	runs := 0
	NewEffect(func() func() {
		s.Get()
		runs++
		return nil
	})
	s.Set(math.NaN())
	Flush()
	assert.Equal(t, 1, runs, "NaN written over NaN must be treated as unchanged")
}

func TestSignalUpdate(t *testing.T) {
	s := NewSignal(10)
	s.Update(func(v int) int { return v + 5 })
	assert.Equal(t, 15, s.Get())
}

func TestEffectBatchedOncePerFlush(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	a := NewSignal(1)
	b := NewSignal(2)
	runs := 0
	NewEffect(func() func() {
		_ = a.Get() + b.Get()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	a.Set(10)
	b.Set(20)
	Flush()
	assert.Equal(t, 2, runs, "two writes in the same turn collapse into one rerun")
}

func TestBatchDefersFlushUntilExit(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	a := NewSignal(1)
	runs := 0
	NewEffect(func() func() {
		a.Get()
		runs++
		return nil
	})

	Batch(func() {
		a.Set(2)
		a.Set(3)
		a.Set(4)
	})
	Flush()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 4, a.Get())
}

func TestDerivedLazyRecomputeOnlyOnRead(t *testing.T) {
	a := NewSignal(1)
	computes := 0
	d := NewDerived(func() int {
		computes++
		return a.Get() * 2
	})
	assert.Equal(t, 0, computes, "a fresh derived must not compute until first read")
	assert.Equal(t, 2, d.Get())
	assert.Equal(t, 1, computes)

	a.Set(5)
	assert.Equal(t, 1, computes, "writing a dependency must not itself trigger recomputation")
	assert.Equal(t, 10, d.Get())
	assert.Equal(t, 2, computes)
}

func TestDiamondDependencyRecomputesOncePerDrain(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	a := NewSignal(1)
	b := NewDerived(func() int { return a.Get() + 1 })
	c := NewDerived(func() int { return a.Get() + 2 })
	dComputes := 0
	d := NewDerived(func() int {
		dComputes++
		return b.Get() + c.Get()
	})

	assert.Equal(t, 5, d.Get())
	assert.Equal(t, 1, dComputes)

	runs := 0
	NewEffect(func() func() {
		d.Get()
		runs++
		return nil
	})
	baseline := dComputes

	a.Set(10)
	Flush()
	assert.Equal(t, 2, runs, "the effect reading d runs exactly once for the whole write")
	assert.Equal(t, baseline+1, dComputes, "d recomputes exactly once per drain despite depending on both b and c")
}

func TestDynamicDependencyStopsReactingAfterBranchChange(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	useA := NewSignal(true)
	a := NewSignal(1)
	b := NewSignal(2)
	runs := 0
	NewEffect(func() func() {
		if useA.Get() {
			a.Get()
		} else {
			b.Get()
		}
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	useA.Set(false)
	Flush()
	assert.Equal(t, 2, runs)

	a.Set(100)
	Flush()
	assert.Equal(t, 2, runs, "the effect no longer depends on a after branching away from it")

	b.Set(200)
	Flush()
	assert.Equal(t, 3, runs)
}

func TestDerivedCircularDependencyPanics(t *testing.T) {
	var d *Derived[int]
	d = NewDerived(func() int {
		return d.Get() + 1
	})
	assert.PanicsWithError(t, circularDependencyError("").Error(), func() {
		d.Get()
	})
}

func TestUntrackSuppressesDependency(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	a := NewSignal(1)
	tracked := NewSignal(100)
	runs := 0
	NewEffect(func() func() {
		tracked.Get()
		Untrack(func() int { return a.Get() })
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	a.Set(2)
	Flush()
	assert.Equal(t, 1, runs, "a signal read inside Untrack is not a dependency")

	tracked.Set(101)
	Flush()
	assert.Equal(t, 2, runs)
}

func TestEffectCleanupRunsBeforeRerunAndOnDispose(t *testing.T) {
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	defer UseScheduler(nil)

	a := NewSignal(1)
	var cleanups []string
	e := NewEffect(func() func() {
		v := a.Get()
		return func() { cleanups = append(cleanups, "cleanup-after-"+strconv.Itoa(v)) }
	})

	a.Set(2)
	Flush()
	require.Equal(t, []string{"cleanup-after-1"}, cleanups)

	e.Dispose()
	assert.Equal(t, []string{"cleanup-after-1", "cleanup-after-2"}, cleanups)

	a.Set(3)
	Flush()
	assert.Equal(t, []string{"cleanup-after-1", "cleanup-after-2"}, cleanups, "a disposed effect never runs or cleans up again")
}

func TestIsSignalAndIsDerivedBrands(t *testing.T) {
	s := NewSignal(1)
	d := NewDerived(func() int { return s.Get() })
	assert.True(t, IsSignal(s))
	assert.False(t, IsDerived(s))
	assert.True(t, IsDerived(d))
	assert.False(t, IsSignal(d))
	assert.False(t, IsReactive(42))
	assert.True(t, IsReactive(s))
}
