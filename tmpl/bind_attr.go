package tmpl

import (
	"strings"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/internal/telemetry"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/ref"
)

// bindElementAttrs inspects every attribute the host's parser set on el
// and, for the ones carrying a slot sentinel, dispatches to the
// directive the attribute name selects: @event, class:name, class,
// html:inner, ref, or (the default) a plain reactive attribute.
func bindElementAttrs(ctx *bindCtx, el dom.Element) {
	for name, value := range el.Attributes() {
		segments := splitSentinels(value)
		if !hasSlot(segments) {
			continue
		}
		switch {
		case strings.HasPrefix(name, "@"):
			bindEvent(ctx, el, name, segments)
		case strings.HasPrefix(name, "class:"):
			bindClassToggle(ctx, el, strings.TrimPrefix(name, "class:"), segments)
		case name == "class":
			el.RemoveAttribute(name)
			bindManagedClass(ctx, el, segments)
		case name == "html:inner":
			el.RemoveAttribute(name)
			bindInnerHTML(ctx, el, segments)
		case name == "ref":
			el.RemoveAttribute(name)
			bindRef(ctx, el, segments)
		default:
			bindAttribute(ctx, el, name, segments)
		}
	}
}

func hasSlot(segments []valueSegment) bool {
	for _, s := range segments {
		if s.isSlot {
			return true
		}
	}
	return false
}

// evalSegments reads every segment's current value (tracking, if called
// inside an Effect run) and concatenates them into the attribute's
// rendered string.
func evalSegments(ctx *bindCtx, segments []valueSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		if !seg.isSlot {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(stringify(readTracked(ctx, seg.slot)))
	}
	return b.String()
}

// readTracked returns the current value of slot n, registering a
// dependency on it if it's reactive and this call happens inside an
// Effect run (reactive.Signal/Derived.Get does the tracking; GetAny just
// forwards to Get).
func readTracked(ctx *bindCtx, n int) any {
	v := ctx.slot(n)
	if r, ok := reactive.AsAnyReadable(v); ok {
		return r.GetAny()
	}
	return v
}

// soleSlot returns the single slot index of segments if it is exactly
// one slot occupying the whole value (the "purely dynamic single-slot"
// shape directives other than the plain-attribute row require), or
// false otherwise.
func soleSlot(segments []valueSegment) (int, bool) {
	if len(segments) != 1 || !segments[0].isSlot {
		return 0, false
	}
	return segments[0].slot, true
}

// componentPropForwarder is set once by the component shell (see
// SetComponentPropForwarder): given an element that is a mounted
// framework component, write the value through its typed prop setter and
// report true; false means the caller falls back to the DOM attribute.
var componentPropForwarder func(el dom.Element, name string, v any) bool

// SetComponentPropForwarder installs the seam bindAttributeSingle uses to
// forward purely dynamic single-slot attributes on framework-component
// elements into the component's props instead of the DOM attribute. The
// component package sets it at init, keeping tmpl free of a component
// import the same way reactive.SetEffectContextHook keeps reactive free
// of one.
func SetComponentPropForwarder(fn func(el dom.Element, name string, v any) bool) {
	componentPropForwarder = fn
}

func bindAttribute(ctx *bindCtx, el dom.Element, name string, segments []valueSegment) {
	if n, ok := soleSlot(segments); ok {
		bindAttributeSingle(ctx, el, name, n)
		return
	}
	eff := reactive.NewEffect(func() func() {
		el.SetAttribute(name, evalSegments(ctx, segments))
		return nil
	}, reactive.WithEffectDebugName("tmpl:attr:"+name))
	ctx.result.addDisposer(eff.Dispose)
}

// bindAttributeSingle handles a single-slot attribute (attr="${v}"),
// which follows the nil/false-removes, true-is-bare, otherwise-stringify
// contract instead of naive string concatenation.
func bindAttributeSingle(ctx *bindCtx, el dom.Element, name string, slot int) {
	eff := reactive.NewEffect(func() func() {
		v := readTracked(ctx, slot)
		if componentPropForwarder != nil && componentPropForwarder(el, name, v) {
			return nil
		}
		switch v {
		case nil, false:
			el.RemoveAttribute(name)
		case true:
			el.SetAttribute(name, "")
		default:
			el.SetAttribute(name, stringify(v))
		}
		return nil
	}, reactive.WithEffectDebugName("tmpl:attr:"+name))
	ctx.result.addDisposer(eff.Dispose)
}

func bindClassToggle(ctx *bindCtx, el dom.Element, class string, segments []valueSegment) {
	n, ok := soleSlot(segments)
	if !ok {
		return
	}
	eff := reactive.NewEffect(func() func() {
		if truthy(readTracked(ctx, n)) {
			el.AddClass(class)
		} else {
			el.RemoveClass(class)
		}
		return nil
	}, reactive.WithEffectDebugName("tmpl:class:"+class))
	ctx.result.addDisposer(eff.Dispose)
}

// bindManagedClass manages exactly the class names the bound value names
// (a string of space-separated names, or a []string), adding newly named
// classes and removing ones this binding previously added but the new
// value no longer names. It never touches classes a class: directive (or
// static markup) put on the element.
func bindManagedClass(ctx *bindCtx, el dom.Element, segments []valueSegment) {
	n, ok := soleSlot(segments)
	if !ok {
		return
	}
	applied := map[string]struct{}{}
	eff := reactive.NewEffect(func() func() {
		next := classNamesOf(readTracked(ctx, n))
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
	}, reactive.WithEffectDebugName("tmpl:class"))
	ctx.result.addDisposer(eff.Dispose)
}

func classNamesOf(v any) map[string]struct{} {
	out := map[string]struct{}{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s != "" {
				out[s] = struct{}{}
			}
		}
	case string:
		for _, s := range strings.Fields(t) {
			out[s] = struct{}{}
		}
	}
	return out
}

func bindInnerHTML(ctx *bindCtx, el dom.Element, segments []valueSegment) {
	n, ok := soleSlot(segments)
	if !ok {
		return
	}
	eff := reactive.NewEffect(func() func() {
		el.SetInnerHTML(stringify(readTracked(ctx, n)))
		return nil
	}, reactive.WithEffectDebugName("tmpl:html:inner"))
	ctx.result.addDisposer(eff.Dispose)
}

func bindRef(ctx *bindCtx, el dom.Element, segments []valueSegment) {
	n, ok := soleSlot(segments)
	if !ok {
		return
	}
	v := ctx.slot(n)
	setter, ok := v.(ref.Setter)
	if !ok {
		return
	}
	setter.SetAny(el)
	ctx.result.addDisposer(func() { setter.ClearAny() })
}

var modifierKeys = map[string]bool{"enter": true, "escape": true, "space": true, "tab": true}

// bindEvent parses the "@event[.mod...]" attribute name and wires the
// slot's handler (func() or func(any)) as a listener with the parsed
// modifiers, removing the directive attribute since it is never a real
// DOM attribute.
func bindEvent(ctx *bindCtx, el dom.Element, name string, segments []valueSegment) {
	el.RemoveAttribute(name)
	n, ok := soleSlot(segments)
	if !ok {
		return
	}
	parts := strings.Split(strings.TrimPrefix(name, "@"), ".")
	eventName := parts[0]
	var opts dom.EventListenerOptions
	for _, mod := range parts[1:] {
		switch mod {
		case "stop", "stop-propagation":
			opts.StopPropagation = true
		case "prevent", "prevent-default":
			opts.PreventDefault = true
		case "once":
			opts.Once = true
		default:
			if modifierKeys[mod] {
				opts.Keys = append(opts.Keys, mod)
			}
		}
	}

	v := ctx.slot(n)
	listener := wrapHandler(eventName, v)
	if listener == nil {
		return
	}
	el.AddEventListener(eventName, opts, listener)
	ctx.result.addDisposer(func() { el.RemoveEventListener(eventName, listener) })
}

func wrapHandler(eventName string, v any) dom.EventListener {
	switch fn := v.(type) {
	case dom.EventListener:
		return withRecover(eventName, fn)
	case func(any):
		return withRecover(eventName, fn)
	case func():
		return withRecover(eventName, func(any) { fn() })
	default:
		return nil
	}
}

func withRecover(eventName string, fn func(any)) dom.EventListener {
	return func(event any) {
		defer func() {
			if r := recover(); r != nil {
				telemetry.Capture("Event handler error for '"+eventName+"':", r)
			}
		}()
		fn(event)
	}
}
