package reactive

// AnyReadable is the untyped face of a Signal[T] or Derived[T] that the
// template engine's slot dispatcher needs: read the current value boxed
// as any, and subscribe a boxed callback, without tmpl ever knowing T.
// Every Signal[T] and Derived[T] satisfies it.
type AnyReadable interface {
	GetAny() any
	SubscribeAny(fn func(any)) func()
}

// GetAny returns the current value boxed as any, tracking like Get.
func (s *Signal[T]) GetAny() any { return s.Get() }

// SubscribeAny is the untyped form of Subscribe.
func (s *Signal[T]) SubscribeAny(fn func(any)) func() {
	return s.Subscribe(func(v T) { fn(v) })
}

// GetAny returns the current value boxed as any, recomputing first if
// dirty, tracking like Get.
func (d *Derived[T]) GetAny() any { return d.Get() }

// SubscribeAny is the untyped form of Subscribe.
func (d *Derived[T]) SubscribeAny(fn func(any)) func() {
	return d.Subscribe(func(v T) { fn(v) })
}

// AsAnyReadable returns v as an AnyReadable if it is a *Signal[T] or
// *Derived[T] for some T, and ok=false otherwise. tmpl's slot dispatcher
// uses this to decide whether an expression slot's value is reactive.
func AsAnyReadable(v any) (AnyReadable, bool) {
	r, ok := v.(AnyReadable)
	return r, ok
}
