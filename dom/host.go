// Package dom declares the host-runtime contract the reactive viewer
// framework is built against: element and text-node creation, class-list
// and attribute manipulation, event wiring, template parsing, a
// custom-elements registry, and a microtask scheduler.
//
// The reactive core, the template engine, and the component shell never
// import syscall/js directly — they depend only on these interfaces. A
// production build supplies dom/jsdom (build-tagged js/wasm); every test
// in this module runs against dom/memdom, an in-memory host with no
// external dependency.
package dom

// NodeKind distinguishes the handful of node types the framework cares
// about. Real DOM has many more; the framework never needs them.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
	KindComment
	KindFragment
)

// Node is the minimal surface shared by every kind of node the engine
// touches: insertion, removal, and traversal.
type Node interface {
	Kind() NodeKind
	Parent() Node
	NextSibling() Node
	PrevSibling() Node
	FirstChild() Node

	// AppendChild appends child as the last child of this node.
	AppendChild(child Node)
	// InsertBefore inserts newNode before referenceNode (or at the end if
	// referenceNode is nil).
	InsertBefore(newNode, referenceNode Node)
	// RemoveChild detaches child from this node's children.
	RemoveChild(child Node)

	// CloneNode returns a deep copy of this node (and its subtree) that is
	// not yet attached to any parent. The template engine clones a cached
	// parse tree on every mount.
	CloneNode() Node
}

// TextNode is a text or comment node with mutable character data.
type TextNode interface {
	Node
	Data() string
	SetData(string)
}

// Element is a node with a tag name, attributes, a class list, and
// children capable of hosting event listeners.
type Element interface {
	Node
	EventTarget

	TagName() string

	GetAttribute(name string) (value string, ok bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	// Attributes returns a snapshot of every attribute currently set on
	// the element, including ones the host's markup parser set from
	// static HTML (tmpl's binding walk uses this to discover which
	// attributes carry a slot sentinel, since there is no way to ask a
	// host element "which names do you have" other than enumerating).
	Attributes() map[string]string

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// SetInnerHTML replaces the element's children with the parsed
	// result of html. Used only by the opt-in html:inner binding.
	SetInnerHTML(html string)

	// Children returns the element's immediate child nodes, in order.
	Children() []Node
}

// EventListener receives a host event payload. The payload shape is
// intentionally opaque (any) — the template engine's event bindings type
// -assert or pass it straight to the handler fn supplied at the slot.
type EventListener func(event any)

// EventTarget supports add/remove of listeners keyed by event name.
type EventTarget interface {
	AddEventListener(name string, opts EventListenerOptions, listener EventListener)
	RemoveEventListener(name string, listener EventListener)
}

// EventListenerOptions carries the modifiers the template engine's
// `@event[.mod...]` syntax supports.
type EventListenerOptions struct {
	StopPropagation bool
	PreventDefault  bool
	Once            bool
	// Keys restricts a keyboard listener to firing only for the named
	// keys (e.g. "enter", "escape", "space", "tab"). Empty means no
	// restriction.
	Keys []string
}

// TemplateElement is the host's "parse this markup once" primitive,
// analogous to an HTML <template> element: Content returns a fragment
// that can be cloned repeatedly without re-parsing.
type TemplateElement interface {
	Content() Node
}

// Document creates nodes and parses template markup.
type Document interface {
	CreateElement(tag string) Element
	CreateTextNode(data string) TextNode
	CreateComment(data string) TextNode
	CreateDocumentFragment() Node

	// ParseTemplate parses html once into a TemplateElement whose Content
	// can be cloned on every mount without re-parsing.
	ParseTemplate(html string) TemplateElement
}

// CustomElementRegistry mirrors the browser's customElements object:
// components register a tag name together with lifecycle callbacks, and
// the host invokes them as elements with that tag are connected to and
// disconnected from the live tree.
type CustomElementRegistry interface {
	// Define registers tag with callbacks invoked by the host when an
	// element instance of that tag is attached or detached. Define panics
	// if tag is already registered, mirroring window.customElements.
	Define(tag string, connected func(el Element), disconnected func(el Element))

	// CreateInstance creates a new element for an already-defined tag and
	// immediately runs its connected callback, mirroring
	// document.createElement for a custom tag followed by insertion.
	CreateInstance(tag string) Element
}

// Scheduler queues microtasks, the async boundary the signal core
// batches effect execution on.
type Scheduler interface {
	// QueueMicrotask schedules fn to run on the next microtask drain. The
	// host coalesces nothing; callers (the reactive scheduler) own
	// coalescing.
	QueueMicrotask(fn func())
	// Flush synchronously runs every microtask queued so far, including
	// ones enqueued by tasks that ran during this same Flush (cascades).
	Flush()
}

// Host bundles everything the framework's upper layers need from the
// runtime: document access, a custom-element registry, and a scheduler.
type Host interface {
	Document() Document
	CustomElements() CustomElementRegistry
	Scheduler() Scheduler
}
