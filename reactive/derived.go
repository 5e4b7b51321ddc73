package reactive

// derivedCore is the non-generic half of Derived: subscriber bookkeeping
// and the dirty/computing flags that make recomputation lazy and
// cycle-safe regardless of the derived's value type.
type derivedCore struct {
	name        string
	subscribers map[subscriber]struct{}
	dirty       bool
	computing   bool
	deps        map[dependency]struct{}
}

func newDerivedCore(name string) *derivedCore {
	return &derivedCore{name: name, subscribers: map[subscriber]struct{}{}, dirty: true, deps: map[dependency]struct{}{}}
}

func (c *derivedCore) addSubscriber(s subscriber)    { c.subscribers[s] = struct{}{} }
func (c *derivedCore) removeSubscriber(s subscriber) { delete(c.subscribers, s) }

// invalidate marks this derived dirty and, the first time it transitions
// from clean to dirty, propagates eagerly to its own subscribers. This
// can enqueue an effect that, once it actually pulls this derived during
// flush, turns out to have read an unchanged value — the effect's own
// read then sees the settled value, so the only cost is a spare run, not
// a glitch.
func (c *derivedCore) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	snapshot := make([]subscriber, 0, len(c.subscribers))
	for s := range c.subscribers {
		snapshot = append(snapshot, s)
	}
	for _, s := range snapshot {
		s.invalidate()
	}
}

func (c *derivedCore) isDerivedBrand() {}

// Derived is a read-only cell computed from other Signals or Deriveds.
// Its function body is re-run on the next Get after any dependency
// changes, never eagerly; a Derived that is never read is never
// recomputed.
type Derived[T any] struct {
	*derivedCore
	compute func() T
	value   T
	equals  func(a, b T) bool
}

// DerivedOption configures a Derived at construction time.
type DerivedOption[T any] func(*Derived[T])

// WithDerivedEqual overrides the default identity-style equality used to
// decide whether a recomputed value differs from the one last delivered
// to a Subscribe callback.
func WithDerivedEqual[T any](eq func(a, b T) bool) DerivedOption[T] {
	return func(d *Derived[T]) { d.equals = eq }
}

// WithDerivedDebugName attaches a name surfaced in circular-dependency
// panic messages.
func WithDerivedDebugName[T any](name string) DerivedOption[T] {
	return func(d *Derived[T]) { d.derivedCore.name = name }
}

// NewDerived builds a lazily-recomputed cell from fn. fn must be pure
// with respect to the signals/deriveds it reads: it is re-run from
// scratch on every recomputation, with no memoization of sub-expressions.
func NewDerived[T any](fn func() T, opts ...DerivedOption[T]) *Derived[T] {
	d := &Derived[T]{derivedCore: newDerivedCore(""), compute: fn, equals: defaultEquals[T]}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get returns the current value, recomputing first if dirty, and
// registers this derived as a dependency of whatever consumer is
// currently recomputing.
func (d *Derived[T]) Get() T {
	if d.dirty {
		d.recompute()
	}
	track(d)
	return d.value
}

// Peek returns the current cached value, forcing a recompute if dirty,
// without registering a dependency on the active consumer.
func (d *Derived[T]) Peek() T {
	if d.dirty {
		d.recompute()
	}
	return d.value
}

func (d *Derived[T]) recompute() {
	if d.computing {
		panic(circularDependencyError(d.derivedCore.name))
	}
	d.computing = true
	prevDeps := d.derivedCore.deps
	f := pushFrame(d)
	var next T
	func() {
		defer func() {
			d.computing = false
			popped := popFrame()
			_ = popped
		}()
		next = d.compute()
	}()
	commitDeps(d, prevDeps, f)
	d.derivedCore.deps = f.deps
	d.dirty = false
	d.value = next
}

func (d *Derived[T]) String() string {
	if d.derivedCore.name != "" {
		return "derived:" + d.derivedCore.name
	}
	return "derived"
}
