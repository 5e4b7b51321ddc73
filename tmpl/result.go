package tmpl

import "github.com/flowdeck/viewer/dom"

// Result is a parsed template plus, once mounted, its live bindings. It
// is the value every template-producing function in this module returns
// (Html, Each's render callback, If/When's thunk): something with a
// Mount and a Dispose, owned by whichever template or component placed
// it.
type Result struct {
	compiled *compiledTemplate
	slots    []any

	topNodes  []dom.Node
	disposers []func()
	mounted   bool
	disposed  bool
}

// Html parses (or reuses the cached parse of) the static markup
// described by parts, with each element of slots substituted at the
// matching ${} position, and returns a Result ready to Mount.
func Html(parts []string, slots ...any) *Result {
	return &Result{compiled: compile(parts), slots: slots}
}

// Mount clones the cached parsed markup, walks it once creating a
// binding for every expression slot, and inserts the resulting top-level
// nodes into parent immediately before before (or at the end of parent's
// children if before is nil). Calling Mount twice on the same Result is
// a no-op after the first call.
func (r *Result) Mount(host dom.Host, parent dom.Node, before dom.Node) {
	if r.mounted {
		return
	}
	r.mounted = true

	te := getTemplateElement(host, r.compiled)
	clone := te.Content().CloneNode()

	var top []dom.Node
	for c := clone.FirstChild(); c != nil; {
		next := c.NextSibling()
		top = append(top, c)
		c = next
	}

	ctx := &bindCtx{host: host, result: r}
	for _, n := range top {
		walkBind(ctx, n)
	}
	// Bindings of top-level slots insert and remove nodes directly in the
	// clone, so the nodes to move are collected again after binding.
	top = top[:0]
	for c := clone.FirstChild(); c != nil; c = c.NextSibling() {
		top = append(top, c)
	}
	for _, n := range top {
		parent.InsertBefore(n, before)
	}
	r.topNodes = top
}

// addDisposer appends fn to this Result's disposer list, run in reverse
// order on Dispose. Every binding that creates an Effect, subscribes to
// an emitter, or otherwise holds a live resource registers its teardown
// here rather than relying on any surrounding setup context, since a
// Result can be (and, for list entries and reactive slots, always is)
// mounted outside of any component's setup call.
func (r *Result) addDisposer(fn func()) {
	r.disposers = append(r.disposers, fn)
}

// Dispose tears down every binding this Result created (in reverse
// registration order, swallowing panics so one failing disposer doesn't
// block the rest) and detaches its top-level nodes from their current
// parent. Calling Dispose twice is a no-op the second time.
func (r *Result) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	for i := len(r.disposers) - 1; i >= 0; i-- {
		runDisposer(r.disposers[i])
	}
	for _, n := range r.topNodes {
		if p := n.Parent(); p != nil {
			p.RemoveChild(n)
		}
	}
}

func runDisposer(fn func()) {
	defer func() { recover() }()
	fn()
}

// bindCtx threads the host and owning Result through the recursive bind
// walk so every binding helper can create effects, register disposers,
// and reach the slot values by index.
type bindCtx struct {
	host   dom.Host
	result *Result
}

func (c *bindCtx) slot(n int) any {
	if n < 0 || n >= len(c.result.slots) {
		panic(invalidSlotErr(n))
	}
	return c.result.slots[n]
}

// --- per-host template element cache ---

type templateElemKey struct {
	c *compiledTemplate
	h dom.Host
}

var templateElementCache = map[templateElemKey]dom.TemplateElement{}

func getTemplateElement(host dom.Host, c *compiledTemplate) dom.TemplateElement {
	key := templateElemKey{c, host}
	if te, ok := templateElementCache[key]; ok {
		return te
	}
	te := host.Document().ParseTemplate(c.markup)
	templateElementCache[key] = te
	return te
}
