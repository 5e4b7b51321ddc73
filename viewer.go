// Package viewer is the framework's public surface in one import: the
// signal core, setup-context accessors, the injector, the template
// engine's combinators, the component registrar, lifecycle hooks, element
// refs, and the query loader, each re-exported from the package that owns
// it. Application code that prefers narrow imports can reach every one of
// these at its home package instead; nothing is defined only here.
package viewer

import (
	"context"
	"time"

	"github.com/flowdeck/viewer/component"
	"github.com/flowdeck/viewer/inject"
	"github.com/flowdeck/viewer/lifecycle"
	"github.com/flowdeck/viewer/query"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/ref"
	"github.com/flowdeck/viewer/setupctx"
	"github.com/flowdeck/viewer/tmpl"
)

// --- signal core ---

// NewSignal creates a mutable reactive cell holding initial.
func NewSignal[T any](initial T, opts ...reactive.SignalOption[T]) *reactive.Signal[T] {
	return reactive.NewSignal(initial, opts...)
}

// NewDerived creates a cached computation over other signals, recomputed
// lazily on read after any dependency changes.
func NewDerived[T any](fn func() T, opts ...reactive.DerivedOption[T]) *reactive.Derived[T] {
	return reactive.NewDerived(fn, opts...)
}

// NewEffect subscribes fn to every signal it reads, re-running it at most
// once per flush when any of them changes.
func NewEffect(fn func() func(), opts ...reactive.EffectOption) *reactive.Effect {
	return reactive.NewEffect(fn, opts...)
}

// Untrack runs fn without registering its signal reads as dependencies of
// the enclosing effect or derived.
func Untrack[T any](fn func() T) T {
	return reactive.Untrack(fn)
}

// Subscribe registers fn against s, firing immediately with the current
// value and again on every change; returns the unsubscribe function.
func Subscribe[T any](s *reactive.Signal[T], fn func(T)) func() {
	return s.Subscribe(fn)
}

// Watch re-runs expr reactively and calls callback with (new, old) when
// its value changes.
func Watch[T any](expr func() T, callback func(newVal, oldVal T), opts ...reactive.WatchOption[T]) *reactive.Effect {
	return reactive.Watch(expr, callback, opts...)
}

var (
	// IsSignal reports whether v is a *reactive.Signal of any type.
	IsSignal = reactive.IsSignal
	// IsDerived reports whether v is a *reactive.Derived of any type.
	IsDerived = reactive.IsDerived
	// IsReactive reports whether v is either.
	IsReactive = reactive.IsReactive
	// Batch coalesces any number of writes inside fn into one flush.
	Batch = reactive.Batch
	// Flush synchronously drains pending microtasks, effect runs included.
	Flush = reactive.Flush
	// UseScheduler points the reactive core at a host's microtask queue.
	UseScheduler = reactive.UseScheduler
)

// Effect re-exports the reactive effect handle.
type Effect = reactive.Effect

// --- setup context ---

var (
	// RunWithSetup pushes host as the active setup context for fn's
	// synchronous span.
	RunWithSetup = setupctx.RunWith
	// HasSetupContext reports whether a setup is currently active.
	HasSetupContext = setupctx.HasContext
	// CurrentSetup returns the active setup host, panicking outside setup.
	CurrentSetup = setupctx.Current
)

// SetupHost is the interface a setup context exposes for cleanup and
// post-mount registration.
type SetupHost = setupctx.Host

// --- injector ---

// Resolve returns the process singleton built by ctor, creating it on
// first use.
func Resolve[T any](ctor func() T) T {
	return inject.Resolve(ctor)
}

// ResolveToken resolves an opaque token to its singleton.
func ResolveToken[T any](t *inject.Token[T]) T {
	return inject.ResolveToken(t)
}

// Provide overrides ctor's singleton with factory, clearing any cached
// instance.
func Provide[T any](ctor func() T, factory func() T) {
	inject.Provide(ctor, factory)
}

// NewToken creates a named opaque injection token with an optional
// default factory.
func NewToken[T any](name string, defaultFactory func() T) *inject.Token[T] {
	return inject.NewToken(name, defaultFactory)
}

// ResetInjector clears every cached singleton and override. Tests only.
var ResetInjector = inject.Reset

// --- template engine ---

// Result is a parsed template plus its live bindings once mounted.
type Result = tmpl.Result

var (
	// Html builds a template result from static parts and expression slots.
	Html = tmpl.Html
	// If returns thunk() when cond is true, an empty result otherwise.
	If = tmpl.If
)

// Each renders items keyed by key, reusing each row's DOM and signals
// across reorders.
func Each[T any](items *reactive.Signal[[]T], key func(T) string, render func(item *reactive.Signal[T], index *reactive.Signal[int]) *tmpl.Result) *tmpl.List[T] {
	return tmpl.Each(items, key, render)
}

// When switches the returned derived between thunk results as cond
// changes; place it directly in a template slot.
func When[T any](cond *reactive.Signal[T], thunk func(T) *tmpl.Result) *reactive.Derived[*tmpl.Result] {
	return tmpl.When(cond, thunk)
}

// --- component shell ---

// Props is the prop map a factory call forwards to a child component.
type Props = component.Props

// PropsProxy is the lazy name→signal view a setup function receives.
type PropsProxy = component.PropsProxy

// Attrs carries host-level attributes (at least Class) for a factory call.
type Attrs = component.Attrs

var (
	// Define registers a custom element and returns its template factory.
	Define = component.Define
	// WithErrorRenderer configures a component's setup-failure fallback.
	WithErrorRenderer = component.WithErrorRenderer
)

// Prop reads a typed prop off the proxy, tracking like any signal read.
func Prop[T any](p *component.PropsProxy, name string) T {
	return component.Prop[T](p, name)
}

// --- lifecycle ---

var (
	// OnMounted queues fn to run after the enclosing component mounts.
	OnMounted = lifecycle.OnMounted
	// OnCleanup registers fn to run when the enclosing component unmounts.
	OnCleanup = lifecycle.OnCleanup
)

// --- element ref ---

// NewRef creates an empty element handle for a `ref="${r}"` binding.
func NewRef[E any]() *ref.Ref[E] {
	return ref.New[E]()
}

// IsRef reports whether v is a *ref.Ref of any element type.
var IsRef = ref.IsRef

// --- query ---

// QueryClient is the cross-query cache.
type QueryClient = query.Client

var (
	// NewQueryClient builds a standalone query cache.
	NewQueryClient = query.NewClient
	// DefaultQueryClient resolves the injector-managed shared cache.
	DefaultQueryClient = query.DefaultClient
)

// NewQuery derives a loading/data/error triple from a reactive key
// function and an async fetcher.
func NewQuery[T any](key func() []any, fetch func(ctx context.Context) (T, error), opts ...query.Option[T]) *query.Result[T] {
	return query.New(key, query.Fetcher[T](fetch), opts...)
}

// QueryStaleTime, QueryRetry, and friends re-export the query options
// under the barrel's naming.
func QueryStaleTime[T any](d time.Duration) query.Option[T] { return query.WithStaleTime[T](d) }
func QueryRetry[T any](n int) query.Option[T]               { return query.WithRetry[T](n) }
func QueryEnabled[T any](pred func() bool) query.Option[T]  { return query.WithEnabled[T](pred) }
