package reactive

// ErrorHandler receives a panic recovered from an effect body, keyed by
// the effect's debug name if it has one. Wired to internal/telemetry by
// the component shell so effect failures are logged with the
// "Effect error:" prefix instead of crashing the event loop.
type ErrorHandler func(name string, recovered any)

var globalErrorHandler ErrorHandler = func(name string, recovered any) {}

// SetErrorHandler installs the handler invoked whenever an effect body
// panics. There is exactly one, process-wide, matching the rest of this
// package's single-threaded assumptions.
func SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = func(name string, recovered any) {}
	}
	globalErrorHandler = h
}

// Effect subscribes a function to every Signal or Derived it reads,
// re-running it at most once per flush no matter how many of those
// dependencies changed in the batch that triggered it.
type Effect struct {
	name     string
	fn       func() func()
	cleanup  func()
	disposed bool
	pending  bool
	deps     map[dependency]struct{}

	// lastRunPanicked records whether the most recent run's body panicked,
	// read by the scheduler's flush observer for the errored counter.
	lastRunPanicked bool
}

// EffectOption configures an Effect at construction time.
type EffectOption func(*Effect)

// WithEffectDebugName attaches a name surfaced in error-handler calls.
func WithEffectDebugName(name string) EffectOption {
	return func(e *Effect) { e.name = name }
}

// NewEffect runs fn immediately to establish its initial dependencies,
// then re-runs it asynchronously (batched onto the active scheduler)
// whenever any of those dependencies changes. fn may return a cleanup
// function, called right before the next rerun and on Dispose, exactly
// once per run it was returned from.
func NewEffect(fn func() func(), opts ...EffectOption) *Effect {
	e := &Effect{fn: fn, deps: map[dependency]struct{}{}}
	for _, opt := range opts {
		opt(e)
	}
	effectContextHook(e)
	e.run()
	return e
}

// effectContextHook lets the component package register newly created
// effects with the active setup host without this package importing
// component. See SetEffectContextHook.
var effectContextHook func(*Effect) = func(*Effect) {}

// SetEffectContextHook installs the callback invoked synchronously
// whenever NewEffect constructs an effect, before its first run. The
// component package uses this to auto-register the effect's Dispose with
// the currently-running setup, so an effect created during a component's
// setup is torn down when that component unmounts.
func SetEffectContextHook(hook func(*Effect)) {
	if hook == nil {
		hook = func(*Effect) {}
	}
	effectContextHook = hook
}

func (e *Effect) invalidate() {
	if e.disposed || e.pending {
		return
	}
	e.pending = true
	scheduleFlush(e)
}

func (e *Effect) run() {
	if e.disposed {
		return
	}
	if e.cleanup != nil {
		runSwallowingPanic(e.name, e.cleanup)
		e.cleanup = nil
	}
	prevDeps := e.deps
	f := pushFrame(e)
	var recovered any
	var next func()
	func() {
		defer func() {
			recovered = recover()
			popFrame()
		}()
		next = e.fn()
	}()
	commitDeps(e, prevDeps, f)
	e.deps = f.deps
	e.cleanup = next
	e.pending = false
	e.lastRunPanicked = recovered != nil
	if recovered != nil {
		globalErrorHandler(e.name, recovered)
	}
}

// Dispose unsubscribes the effect from every dependency and runs its
// last cleanup, if any. A disposed effect never runs again even if it
// was already pending in a flush.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for dep := range e.deps {
		dep.removeSubscriber(e)
	}
	e.deps = map[dependency]struct{}{}
	if e.cleanup != nil {
		runSwallowingPanic(e.name, e.cleanup)
		e.cleanup = nil
	}
}

func runSwallowingPanic(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			globalErrorHandler(name, r)
		}
	}()
	fn()
}
