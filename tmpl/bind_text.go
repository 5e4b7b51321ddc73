package tmpl

import (
	"reflect"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/reactive"
)

// bindTextSlot replaces the comment marker tn with whatever content slot
// n names, dispatching on the slot value's kind: a static primitive, a
// reactive primitive, a static template/component/array, or a reactive
// one of those.
func bindTextSlot(ctx *bindCtx, tn dom.TextNode, slot int) {
	v := ctx.slot(slot)

	if r, ok := reactive.AsAnyReadable(v); ok {
		bindReactiveSlot(ctx, tn, r)
		return
	}
	bindStaticSlot(ctx, tn, v)
}

// bindStaticSlot mounts v once, in place of the marker, and never
// revisits it. The marker comment itself stays in the tree as an anchor
// so later siblings keep a stable reference point.
func bindStaticSlot(ctx *bindCtx, marker dom.TextNode, v any) {
	parent := marker.Parent()
	if parent == nil {
		return
	}
	dispose := mountContent(ctx, parent, marker, v)
	if dispose != nil {
		ctx.result.addDisposer(dispose)
	}
}

// bindReactiveSlot brackets the slot with two persistent comment anchors
// and re-mounts the content between them on every change of r, via an
// Effect. The parent is re-read from the start anchor on each run rather
// than captured once, since a reactive slot can itself live inside
// another reactive slot that gets detached and reattached elsewhere.
func bindReactiveSlot(ctx *bindCtx, marker dom.TextNode, r reactive.AnyReadable) {
	parent := marker.Parent()
	if parent == nil {
		return
	}
	doc := ctx.host.Document()
	start := doc.CreateComment("tmpl-slot-start")
	end := doc.CreateComment("tmpl-slot-end")
	parent.InsertBefore(start, marker)
	parent.InsertBefore(end, marker)
	parent.RemoveChild(marker)

	var dispose func()
	eff := reactive.NewEffect(func() func() {
		if dispose != nil {
			dispose()
			dispose = nil
		}
		p := start.Parent()
		if p == nil {
			return nil
		}
		dispose = mountContent(ctx, p, end, resolveAny(r))
		return nil
	}, reactive.WithEffectDebugName("tmpl:slot"))

	ctx.result.addDisposer(func() {
		eff.Dispose()
		if dispose != nil {
			dispose()
		}
		for _, n := range []dom.Node{start, end} {
			if p := n.Parent(); p != nil {
				p.RemoveChild(n)
			}
		}
	})
}

// mountContent inserts v's rendered form into parent immediately before
// before, returning a function that tears it back down (or nil if v
// needed no teardown). v has already had any reactive wrapper peeled off
// by the caller.
func mountContent(ctx *bindCtx, parent dom.Node, before dom.Node, v any) func() {
	switch t := v.(type) {
	case nil:
		return nil
	case *Result:
		t.Mount(ctx.host, parent, before)
		return t.Dispose
	case ComponentSlot:
		_, dispose := t.MountComponent(ctx.host, parent, before)
		return dispose
	case eachBinding:
		return t.mountEach(ctx, parent, before)
	default:
		if rv, ok := isSlice(v); ok {
			return mountSlice(ctx, parent, before, rv)
		}
		return mountText(ctx, parent, before, stringify(v))
	}
}

func mountText(ctx *bindCtx, parent dom.Node, before dom.Node, text string) func() {
	if text == "" {
		return nil
	}
	node := ctx.host.Document().CreateTextNode(text)
	parent.InsertBefore(node, before)
	return func() {
		if p := node.Parent(); p != nil {
			p.RemoveChild(node)
		}
	}
}

func mountSlice(ctx *bindCtx, parent dom.Node, before dom.Node, rv reflect.Value) func() {
	var disposers []func()
	for i := 0; i < rv.Len(); i++ {
		if d := mountContent(ctx, parent, before, rv.Index(i).Interface()); d != nil {
			disposers = append(disposers, d)
		}
	}
	return func() {
		for i := len(disposers) - 1; i >= 0; i-- {
			disposers[i]()
		}
	}
}
