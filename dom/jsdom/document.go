//go:build js && wasm

package jsdom

import (
	"fmt"
	"syscall/js"

	"github.com/flowdeck/viewer/dom"
)

// Document wraps the browser's global document object.
type Document struct {
	doc js.Value
}

func newDocument() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) CreateElement(tag string) dom.Element {
	return wrap(d.doc.Call("createElement", tag))
}

func (d *Document) CreateTextNode(data string) dom.TextNode {
	return wrap(d.doc.Call("createTextNode", data))
}

func (d *Document) CreateComment(data string) dom.TextNode {
	return wrap(d.doc.Call("createComment", data))
}

func (d *Document) CreateDocumentFragment() dom.Node {
	return wrap(d.doc.Call("createDocumentFragment"))
}

// ParseTemplate creates a real <template> element, sets its innerHTML
// once, and returns its .content DocumentFragment, the browser's native
// parse-once, clone-repeatedly primitive.
func (d *Document) ParseTemplate(markup string) dom.TemplateElement {
	tplEl := d.doc.Call("createElement", "template")
	tplEl.Set("innerHTML", markup)
	return &templateElement{content: tplEl.Get("content")}
}

type templateElement struct {
	content js.Value
}

func (t *templateElement) Content() dom.Node { return toNode(t.content) }

// Registry wraps window.customElements.
type Registry struct {
	doc      js.Value
	defined  map[string]bool
	connects map[string]func(el dom.Element)
	discons  map[string]func(el dom.Element)
}

func newRegistry() *Registry {
	return &Registry{
		doc:      js.Global().Get("document"),
		defined:  map[string]bool{},
		connects: map[string]func(el dom.Element){},
		discons:  map[string]func(el dom.Element){},
	}
}

func (r *Registry) Define(tag string, connected func(el dom.Element), disconnected func(el dom.Element)) {
	if r.defined[tag] {
		panic(fmt.Sprintf("dom: custom element %q already defined", tag))
	}
	r.defined[tag] = true
	r.connects[tag] = connected
	r.discons[tag] = disconnected

	// The real registration of a JS custom element class that forwards
	// connectedCallback/disconnectedCallback into r.connects/r.discons is
	// done by the page's bootstrap script, which must define the global
	// __viewerDefine called here and call back into Go via the
	// __viewerDispatch global registered in jsdom.Bootstrap.
	registerBridge(tag, r)
}

func (r *Registry) CreateInstance(tag string) dom.Element {
	el := r.doc.Call("createElement", tag)
	return wrap(el)
}

// Bootstrap exposes the Go-side callback invoked by the JS bridge class's
// connectedCallback/disconnectedCallback. The page's bootstrap script
// calls `globalThis.__viewerDispatch(tag, "connected"|"disconnected", el)`.
func Bootstrap(reg *Registry) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		tag := args[0].String()
		phase := args[1].String()
		el := wrap(args[2])
		switch phase {
		case "connected":
			if fn := reg.connects[tag]; fn != nil {
				fn(el)
			}
		case "disconnected":
			if fn := reg.discons[tag]; fn != nil {
				fn(el)
			}
		}
		return nil
	})
	js.Global().Set("__viewerDispatch", cb)
}

func registerBridge(tag string, reg *Registry) {
	js.Global().Call("__viewerDefine", tag)
}

// Scheduler schedules microtasks via the browser's queueMicrotask.
type Scheduler struct {
	pending int
}

func newScheduler() *Scheduler { return &Scheduler{} }

func (s *Scheduler) QueueMicrotask(fn func()) {
	s.pending++
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		s.pending--
		fn()
		cb.Release()
		return nil
	})
	js.Global().Call("queueMicrotask", cb)
}

// Flush does nothing: queued microtasks run at the browser's own
// microtask checkpoint, never synchronously from a Flush call.
func (s *Scheduler) Flush() {
	// The browser owns its own microtask queue; there is no synchronous
	// drain primitive exposed to WASM. Callers that need deterministic
	// flushing (tests) use dom/memdom instead.
}

// Host bundles the browser document, registry, and scheduler.
type Host struct {
	doc   *Document
	reg   *Registry
	sched *Scheduler
}

// New returns the production dom.Host backed by the browser the WASM
// binary is running in.
func New() *Host {
	h := &Host{doc: newDocument(), reg: newRegistry(), sched: newScheduler()}
	Bootstrap(h.reg)
	return h
}

func (h *Host) Document() dom.Document                   { return h.doc }
func (h *Host) CustomElements() dom.CustomElementRegistry { return h.reg }
func (h *Host) Scheduler() dom.Scheduler                  { return h.sched }
