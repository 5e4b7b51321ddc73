package component

import "github.com/flowdeck/viewer/reactive"

// Props is how a caller passes values into a component factory: each
// value is either a plain Go value (applied once) or anything
// satisfying reactive.AnyReadable (subscribed, so later writes to the
// source propagate into the child's own props signal).
type Props map[string]any

// PropsProxy is what a setup function receives in place of a raw Props
// map: reading a key lazily creates (and then returns) the backing
// signal for that key, and the mount path writes into those same
// signals as the caller-supplied prop values change, so a setup function
// that calls Get inside an Effect reacts to prop changes the same way it
// would to any other signal.
type PropsProxy struct {
	signals map[string]*reactive.Signal[any]
}

func newPropsProxy() *PropsProxy {
	return &PropsProxy{signals: map[string]*reactive.Signal[any]{}}
}

func (p *PropsProxy) signal(name string) *reactive.Signal[any] {
	s, ok := p.signals[name]
	if !ok {
		s = reactive.NewSignal[any](nil, reactive.WithDebugName[any]("prop:"+name))
		p.signals[name] = s
	}
	return s
}

// Get reads prop name's current value, tracking it like any other
// signal read if called during an Effect or Derived recomputation.
func (p *PropsProxy) Get(name string) any {
	return p.signal(name).Get()
}

// Set overwrites prop name's value. Called by the mount path for
// caller-supplied values and by subscriptions feeding a reactive prop
// source; setup code only ever reads through Get.
func (p *PropsProxy) Set(name string, v any) {
	p.signal(name).Set(v)
}

// Prop reads prop name as T, tracking the read like Get. Panics if the
// prop exists but holds a value that isn't assignable to T (a
// programmer error: the caller passed the wrong type for a documented
// prop), matching this repo's fail-fast treatment of API misuse.
func Prop[T any](p *PropsProxy, name string) T {
	v := p.Get(name)
	if v == nil {
		var zero T
		return zero
	}
	t, ok := v.(T)
	if !ok {
		panic(propTypeError(name))
	}
	return t
}

func propTypeError(name string) error {
	return propErr{name}
}

type propErr struct{ name string }

func (e propErr) Error() string {
	return "component: prop \"" + e.name + "\" is not assignable to the requested type"
}
