package component

import (
	"reflect"
	"strings"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/tmpl"
)

// SetupFunc is a component's setup function: given its props proxy and
// host element, it runs once per mount and returns the template result
// to mount into that element.
type SetupFunc func(props *PropsProxy, el dom.Element) *tmpl.Result

// ErrorRenderer produces a fallback template result for a component
// whose setup (or earlier error renderer call) panicked.
type ErrorRenderer func() *tmpl.Result

// definition is what Define registers: a tag, its setup function, and
// its configured extras.
type definition struct {
	tag           string
	setup         SetupFunc
	errorRenderer ErrorRenderer
}

// Option configures a definition at Define time.
type Option func(*definition)

// WithErrorRenderer installs the fallback rendered in place of a setup
// that panics (or, if the renderer itself panics, the package's default
// inline marker is used instead).
func WithErrorRenderer(r ErrorRenderer) Option {
	return func(d *definition) { d.errorRenderer = r }
}

// Attrs carries host-level concerns a factory call applies to the
// component's own host element rather than forwarding as a prop: at
// least Class, add/removed on the host element's class list independent
// of any class: directive the component's own template uses internally.
type Attrs struct {
	Class any
}

// Factory is what Define returns: call it from a template's expression
// slot (or from Go code building one up) to produce a value the
// template engine mounts as a child component.
type Factory func(props Props, attrs ...Attrs) tmpl.ComponentSlot

// Define registers a component under tag with the given setup function,
// returning a factory callable from a template slot. Calling the
// returned factory does not itself create anything: mounting happens
// when the template engine walks the slot holding its result. A host's
// CustomElementRegistry learns tag the first time one of this factory's
// results is mounted on that host.
func Define(tag string, setup SetupFunc, opts ...Option) Factory {
	def := &definition{tag: tag, setup: setup}
	for _, opt := range opts {
		opt(def)
	}
	return func(props Props, attrs ...Attrs) tmpl.ComponentSlot {
		var a Attrs
		if len(attrs) > 0 {
			a = attrs[0]
		}
		return &boundFactory{def: def, props: props, attrs: a}
	}
}

// boundFactory is the ComponentSlot the template engine mounts: a
// definition together with the specific props/attrs one template
// expression slot supplied.
type boundFactory struct {
	def   *definition
	props Props
	attrs Attrs
}

// MountComponent implements tmpl.ComponentSlot.
func (b *boundFactory) MountComponent(host dom.Host, parent dom.Node, before dom.Node) (dom.Node, func()) {
	ensureRegistered(host, b.def)

	el := host.Document().CreateElement(b.def.tag)
	props := newPropsProxy()
	propDisposers := applyProps(props, b.props)
	classDispose := applyHostClass(el, b.attrs.Class)

	inst := mountInstance(b.def, host, el, props)
	instancesByElement[el] = inst
	parent.InsertBefore(el, before)

	return el, func() {
		delete(instancesByElement, el)
		unmountInstance(inst)
		for _, d := range propDisposers {
			d()
		}
		classDispose()
		if p := el.Parent(); p != nil {
			p.RemoveChild(el)
		}
	}
}

// applyProps writes every raw value once and subscribes every reactive
// value so later writes to its source propagate into props, returning
// the subscriptions' unsubscribe functions.
func applyProps(props *PropsProxy, values Props) []func() {
	var disposers []func()
	for name, v := range values {
		if r, ok := reactive.AsAnyReadable(v); ok {
			props.Set(name, r.GetAny())
			disposers = append(disposers, r.SubscribeAny(func(next any) { props.Set(name, next) }))
			continue
		}
		props.Set(name, v)
	}
	return disposers
}

// applyHostClass mirrors tmpl's managed-class binding but operates on
// the component's own host element, kept as a code path distinct from
// the child template's internal class: bookkeeping so neither stomps the
// other.
func applyHostClass(el dom.Element, class any) func() {
	if class == nil {
		return func() {}
	}
	if r, ok := reactive.AsAnyReadable(class); ok {
		applied := map[string]struct{}{}
		eff := reactive.NewEffect(func() func() {
			next := hostClassNames(r.GetAny())
			for name := range applied {
				if _, keep := next[name]; !keep {
					el.RemoveClass(name)
				}
			}
			for name := range next {
				el.AddClass(name)
			}
			applied = next
			return nil
		}, reactive.WithEffectDebugName("component:host-class"))
		return eff.Dispose
	}
	names := hostClassNames(class)
	for name := range names {
		el.AddClass(name)
	}
	return func() {
		for name := range names {
			el.RemoveClass(name)
		}
	}
}

func hostClassNames(v any) map[string]struct{} {
	out := map[string]struct{}{}
	switch t := v.(type) {
	case string:
		for _, s := range strings.Fields(t) {
			out[s] = struct{}{}
		}
	case []string:
		for _, s := range t {
			if s != "" {
				out[s] = struct{}{}
			}
		}
	default:
		if rv := reflect.ValueOf(v); rv.IsValid() && rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				if s, ok := rv.Index(i).Interface().(string); ok && s != "" {
					out[s] = struct{}{}
				}
			}
		}
	}
	return out
}

// --- custom-element registry wiring ---
//
// ensureRegistered gives every definition a second, independent mount
// path: a host that creates an instance of tag directly through its
// CustomElementRegistry (rather than through a template factory slot)
// gets the same setup/template-mount/dispose lifecycle, with props
// seeded from whatever static attributes the element already carries.

type registryKey struct {
	host dom.Host
	tag  string
}

var registeredHosts = map[registryKey]bool{}
var instancesByElement = map[dom.Element]*Instance{}

func init() {
	// A purely dynamic single-slot attribute on an element that is a
	// mounted framework component lands in the child's props instead of
	// the DOM: attr="${v}" on <task-list> behaves like the factory's
	// Props entry rather than a dead string attribute.
	tmpl.SetComponentPropForwarder(func(el dom.Element, name string, v any) bool {
		inst, ok := instancesByElement[el]
		if !ok {
			return false
		}
		inst.props.Set(name, v)
		return true
	})
}

// Reset clears the registry-wiring bookkeeping, the same "process-wide
// mutable state, reset via a documented hook" contract inject.Reset
// follows. Tests that create a fresh host per case don't need this
// (a new host never collides with a previous test's registryKey), but a
// test that reuses one host across Define calls for the same tag does.
func Reset() {
	registeredHosts = map[registryKey]bool{}
	instancesByElement = map[dom.Element]*Instance{}
}

func ensureRegistered(host dom.Host, def *definition) {
	key := registryKey{host, def.tag}
	if registeredHosts[key] {
		return
	}
	registeredHosts[key] = true
	host.CustomElements().Define(def.tag,
		func(el dom.Element) {
			props := newPropsProxy()
			for name, v := range el.Attributes() {
				props.Set(name, v)
			}
			instancesByElement[el] = mountInstance(def, host, el, props)
		},
		func(el dom.Element) {
			if inst, ok := instancesByElement[el]; ok {
				unmountInstance(inst)
				delete(instancesByElement, el)
			}
		},
	)
}
