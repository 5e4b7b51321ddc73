package tmpl

import (
	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/reactive"
)

// eachBinding is the seam between Each[T]'s generic reconciliation logic
// and the non-generic text-slot dispatcher in bind_text.go, the same
// "define the interface on the leaf side" trick ComponentSlot uses.
type eachBinding interface {
	mountEach(ctx *bindCtx, parent dom.Node, before dom.Node) func()
}

// eachEntry is one surviving keyed row: its rendered Result plus the
// per-row signals render was given, kept alive so a later reconcile can
// push an updated item/index into them instead of re-rendering.
type eachEntry[T any] struct {
	result *Result
	item   *reactive.Signal[T]
	index  *reactive.Signal[int]
}

// List is the value Each returns: a slot value recognized by the
// text-position dispatcher, reconciling its rendered rows against items
// every time items changes.
type List[T any] struct {
	items  *reactive.Signal[[]T]
	key    func(T) string
	render func(item *reactive.Signal[T], index *reactive.Signal[int]) *Result
}

// Each renders render(item, index) once per element of items, keyed by
// key(item). On every change to items it reconciles in a single O(n)
// pass: rows whose key persists keep their mounted DOM and bindings
// (only their item/index signals are updated), new keys are rendered
// fresh, and rows whose key disappeared are disposed. Reusing the same
// key twice within one items value is undefined: the later occurrence
// wins and the earlier one's row is dropped without disposal.
func Each[T any](items *reactive.Signal[[]T], key func(T) string, render func(item *reactive.Signal[T], index *reactive.Signal[int]) *Result) *List[T] {
	return &List[T]{items: items, key: key, render: render}
}

func (l *List[T]) mountEach(ctx *bindCtx, parent dom.Node, before dom.Node) func() {
	entries := map[string]*eachEntry[T]{}

	eff := reactive.NewEffect(func() func() {
		// before's live parent, since a top-level list's nodes leave the
		// clone fragment once the enclosing Result is mounted.
		p := parent
		if before != nil {
			if bp := before.Parent(); bp != nil {
				p = bp
			}
		}
		reconcileEach(ctx, p, before, entries, l.items.Get(), l.key, l.render)
		return nil
	}, reactive.WithEffectDebugName("tmpl:each"))

	return func() {
		eff.Dispose()
		for _, e := range entries {
			e.result.Dispose()
		}
	}
}

// reconcileEach walks items once, back to front, tracking the DOM node
// each row must sit immediately before (nextAnchor). Processing in
// reverse lets every InsertBefore reference a node that's already in its
// final position, so the whole pass is a single O(n) sweep with no
// lookahead.
func reconcileEach[T any](
	ctx *bindCtx,
	parent dom.Node,
	before dom.Node,
	entries map[string]*eachEntry[T],
	items []T,
	key func(T) string,
	render func(*reactive.Signal[T], *reactive.Signal[int]) *Result,
) {
	seen := make(map[string]struct{}, len(items))
	nextAnchor := before

	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		e, ok := entries[k]
		if !ok {
			itemSig := reactive.NewSignal(item)
			idxSig := reactive.NewSignal(i)
			e = &eachEntry[T]{item: itemSig, index: idxSig}
			e.result = render(itemSig, idxSig)
			e.result.Mount(ctx.host, parent, nextAnchor)
			entries[k] = e
		} else {
			e.item.Set(item)
			e.index.Set(i)
			moveBefore(parent, e.result.topNodes, nextAnchor)
		}
		if len(e.result.topNodes) > 0 {
			nextAnchor = e.result.topNodes[0]
		}
	}

	for k, e := range entries {
		if _, ok := seen[k]; !ok {
			e.result.Dispose()
			delete(entries, k)
		}
	}
}

// moveBefore repositions nodes, in order, to sit immediately before
// anchor. Nodes already there incur a harmless remove+reinsert.
func moveBefore(parent dom.Node, nodes []dom.Node, anchor dom.Node) {
	for _, n := range nodes {
		parent.InsertBefore(n, anchor)
	}
}
