package tmpl

import "github.com/flowdeck/viewer/reactive"

// If returns thunk()'s Result when cond is true and an empty Result
// otherwise. Since cond is a plain bool here, the choice is made once,
// at call time; to switch between branches as a condition changes, read
// a signal into a bool yourself and call If inside a reactive slot (an
// Effect, or just place the *reactive.Signal/Derived itself as the slot
// value if the branches don't need fresh state each switch), or use When
// for a signal-driven condition.
func If(cond bool, thunk func() *Result) *Result {
	if cond {
		return thunk()
	}
	return Html(nil)
}

// When re-renders thunk(cond.Get()) every time cond changes, returning a
// Derived whose current value is always the live-for-this-condition
// Result. Place the Derived itself as a template slot value: the
// text-slot dispatcher recognizes any reactive.AnyReadable and remounts
// its content, template/component/nil/array alike, on every change.
func When[T any](cond *reactive.Signal[T], thunk func(T) *Result) *reactive.Derived[*Result] {
	return reactive.NewDerived(func() *Result {
		return thunk(cond.Get())
	})
}

// WhenDerived is the Derived-sourced counterpart to When, for a condition
// that is itself computed rather than a plain Signal.
func WhenDerived[T any](cond *reactive.Derived[T], thunk func(T) *Result) *reactive.Derived[*Result] {
	return reactive.NewDerived(func() *Result {
		return thunk(cond.Get())
	})
}
