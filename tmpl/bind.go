package tmpl

import "github.com/flowdeck/viewer/dom"

// walkBind recurses over a freshly cloned subtree, converting every slot
// marker it finds into a binding. Comment nodes are never recursed into
// (they have no children); elements are recursed into after their own
// attributes are bound, since binding an attribute never changes the
// element's child list.
func walkBind(ctx *bindCtx, n dom.Node) {
	switch n.Kind() {
	case dom.KindComment:
		tn := n.(dom.TextNode)
		if slot, ok := isSlotMarkerComment(tn.Data()); ok {
			bindTextSlot(ctx, tn, slot)
		}
		return
	case dom.KindElement:
		bindElementAttrs(ctx, n.(dom.Element))
	}
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		walkBind(ctx, c)
		c = next
	}
}
