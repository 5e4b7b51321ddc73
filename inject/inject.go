// Package inject is the framework's dependency injector: a process-wide
// registry of lazily-instantiated singletons keyed either by a
// constructor or by an opaque named Token, with test-time overrides and
// a reset hook.
//
// The whole framework is single-threaded per host, so this package uses
// plain maps with no locking.
package inject

import "fmt"

// Token is an opaque dependency key for values that aren't naturally a
// constructor — configuration, interfaces, anything NewToken wasn't given
// a concrete type for. Two tokens are the same dependency only if they
// are the same *Token value; NewToken always returns a fresh one.
type Token[T any] struct {
	name    string
	factory func() T
}

// NewToken creates a named token. defaultFactory may be nil, in which
// case Resolve fails with "No provider for token …" until Provide
// installs one.
func NewToken[T any](name string, defaultFactory func() T) *Token[T] {
	return &Token[T]{name: name, factory: defaultFactory}
}

func (t *Token[T]) String() string { return t.name }

var (
	cache      = map[any]any{}
	overrides  = map[any]any{}
	inProgress = map[any]string{}
)

// Resolve returns the singleton instance for a class constructor type C,
// constructing it with new(C)-style zero-value-then-init semantics via
// the supplied constructor on first call. Subsequent calls return the
// cached instance until Provide or Reset runs.
//
// The constructor is both the token and the factory: the key that
// identifies the singleton is the constructor's function pointer
// identity, so a package-level constructor var names one singleton
// everywhere it is referenced.
func Resolve[T any](ctor func() T) T {
	return resolveKeyed(resolveID(ctor), ctor)
}

// resolveID derives a stable cache key from a constructor function's code
// pointer. Two different constructors never collide; the same
// constructor called twice (e.g. a package-level var referencing the
// same func) always resolves to the same singleton.
func resolveID[T any](ctor func() T) string {
	return fmt.Sprintf("ctor:%p", ctor)
}

func resolveKeyed[T any](id string, ctor func() T) T {
	if v, ok := cache[id]; ok {
		return v.(T)
	}
	if _, cycling := inProgress[id]; cycling {
		panic(fmt.Errorf("inject: circular dependency resolving %s", id))
	}
	inProgress[id] = id
	defer delete(inProgress, id)

	var value T
	if ov, ok := overrides[id]; ok {
		value = ov.(func() T)()
	} else {
		value = ctor()
	}
	cache[id] = value
	return value
}

// ResolveToken returns the singleton instance for t, using its override
// factory if Provide installed one, else its default factory. Panics
// with "No provider for token …" if neither exists.
func ResolveToken[T any](t *Token[T]) T {
	key := any(t)
	if v, ok := cache[key]; ok {
		return v.(T)
	}
	if _, cycling := inProgress[key]; cycling {
		panic(fmt.Errorf("inject: circular dependency resolving token %q", t.name))
	}
	inProgress[key] = t.name
	defer delete(inProgress, key)

	factory := t.factory
	if ov, ok := overrides[key]; ok {
		factory = ov.(func() T)
	}
	if factory == nil {
		panic(fmt.Errorf("No provider for token %s", t.name))
	}
	value := factory()
	cache[key] = value
	return value
}

// Provide installs factory as the override used the next time ctor's
// singleton is resolved, clearing any instance already cached for it.
// Tests use this to swap a real dependency for a fake before the code
// under test first resolves it.
func Provide[T any](ctor func() T, factory func() T) {
	id := resolveID(ctor)
	overrides[id] = factory
	delete(cache, id)
}

// ProvideToken installs factory as t's override, clearing any cached
// instance. Calling ProvideToken twice for the same token replaces the
// override; the next ResolveToken call uses the latest one.
func ProvideToken[T any](t *Token[T], factory func() T) {
	key := any(t)
	overrides[key] = factory
	delete(cache, key)
}

// Reset clears every cached instance, every override, and the
// in-progress set. Tests only — production code never calls this, since
// a live component tree may be holding references to the singletons
// being cleared.
func Reset() {
	cache = map[any]any{}
	overrides = map[any]any{}
	inProgress = map[any]string{}
}
