package reactive

import "github.com/flowdeck/viewer/dom"

// maxCascades bounds how many times a single flush may re-trigger itself
// before it's treated as a runaway write-inside-effect loop rather than a
// legitimate multi-hop cascade. A cascade is allowed, an infinite one
// isn't.
const maxCascades = 1000

type syncScheduler struct{}

func (syncScheduler) QueueMicrotask(fn func()) { fn() }
func (syncScheduler) Flush()                   {}

var (
	hostScheduler dom.Scheduler = syncScheduler{}
	// pendingQueue keeps effects in the order they were first scheduled
	// since the last drain; pendingSet dedupes so an effect invalidated
	// by several dependencies in one batch still runs once.
	pendingQueue   []*Effect
	pendingSet     = map[*Effect]struct{}{}
	flushScheduled bool
	batchDepth     int
)

// FlushObserver receives one call per completed flush: how many effect
// runs it performed, how many of those panicked, and how many re-drain
// passes (cascades) it took before the pending queue was empty. Wired by
// internal/telemetry to prometheus counters; nil by default.
type FlushObserver func(runs, errored, cascades int)

var flushObserver FlushObserver

// SetFlushObserver installs the observer invoked at the end of every
// flush. There is exactly one, process-wide.
func SetFlushObserver(o FlushObserver) {
	flushObserver = o
}

// UseScheduler points the package at the host's microtask queue. Call
// once during startup with the active dom.Host's Scheduler; nothing in
// this module calls it automatically. Without a call, effects run synchronously the instant their
// last dependency changes, which is fine for scripts but loses the
// batched-onto-one-microtask collapsing of multi-signal writes.
func UseScheduler(s dom.Scheduler) {
	if s == nil {
		s = syncScheduler{}
	}
	hostScheduler = s
}

// Post queues fn onto the host scheduler's microtask queue, outside any
// effect batching. The query package uses this to marshal background
// fetch completions back onto the serial loop; everything else in this
// package schedules through effects.
func Post(fn func()) {
	hostScheduler.QueueMicrotask(fn)
}

func scheduleFlush(e *Effect) {
	if _, queued := pendingSet[e]; queued {
		return
	}
	pendingSet[e] = struct{}{}
	pendingQueue = append(pendingQueue, e)
	maybeScheduleFlush()
}

func maybeScheduleFlush() {
	if batchDepth > 0 || flushScheduled || len(pendingQueue) == 0 {
		return
	}
	flushScheduled = true
	hostScheduler.QueueMicrotask(flush)
}

func flush() {
	flushScheduled = false
	cascades := 0
	runs := 0
	errored := 0
	for len(pendingQueue) > 0 {
		cascades++
		if cascades > maxCascades {
			globalErrorHandler("scheduler", circularDependencyError("<cascade bound exceeded>"))
			pendingQueue = nil
			pendingSet = map[*Effect]struct{}{}
			break
		}
		batch := pendingQueue
		pendingQueue = nil
		pendingSet = map[*Effect]struct{}{}
		for _, e := range batch {
			if e.disposed {
				continue
			}
			runs++
			// Cleared before the run so a write the effect makes to its
			// own dependency schedules it again instead of being ignored.
			e.pending = false
			e.run()
			if e.lastRunPanicked {
				errored++
			}
		}
	}
	if flushObserver != nil {
		flushObserver(runs, errored, cascades)
	}
}

// Batch suppresses effect scheduling for the duration of fn: writes to
// any number of signals during fn enqueue their dependent effects as
// usual, but none of them are flushed until fn returns, so an effect that
// depends on several signals written inside the batch runs once instead
// of once per write.
func Batch(fn func()) {
	batchDepth++
	defer func() {
		batchDepth--
		if batchDepth == 0 {
			maybeScheduleFlush()
		}
	}()
	fn()
}

// Flush synchronously drains the host scheduler's pending microtasks,
// running any scheduled effect flush immediately. Production code never
// needs this — the browser drains its own microtask queue — but
// dom/memdom-backed tests call it after a write to assert on the
// resulting DOM without waiting on a real event loop.
func Flush() {
	hostScheduler.Flush()
}
