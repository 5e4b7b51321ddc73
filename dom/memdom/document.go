package memdom

import (
	"fmt"
	"sync"

	"github.com/flowdeck/viewer/dom"
)

// Document is the in-memory dom.Document implementation.
type Document struct{}

func NewDocument() *Document { return &Document{} }

func (d *Document) CreateElement(tag string) dom.Element { return newElementNode(tag) }

func (d *Document) CreateTextNode(data string) dom.TextNode {
	return &node{kind: dom.KindText, data: data}
}

func (d *Document) CreateComment(data string) dom.TextNode {
	return &node{kind: dom.KindComment, data: data}
}

func (d *Document) CreateDocumentFragment() dom.Node {
	return &node{kind: dom.KindFragment}
}

func (d *Document) ParseTemplate(markup string) dom.TemplateElement {
	return &templateElement{content: parseFragment(markup)}
}

type templateElement struct {
	content *node
}

func (t *templateElement) Content() dom.Node { return t.content }

// Registry is the in-memory custom-elements registry.
type Registry struct {
	defs map[string]definition
}

type definition struct {
	connected    func(el dom.Element)
	disconnected func(el dom.Element)
}

func NewRegistry() *Registry { return &Registry{defs: map[string]definition{}} }

func (r *Registry) Define(tag string, connected func(el dom.Element), disconnected func(el dom.Element)) {
	if _, exists := r.defs[tag]; exists {
		panic(fmt.Sprintf("dom: custom element %q already defined", tag))
	}
	r.defs[tag] = definition{connected: connected, disconnected: disconnected}
}

func (r *Registry) CreateInstance(tag string) dom.Element {
	def, ok := r.defs[tag]
	if !ok {
		panic(fmt.Sprintf("dom: no definition for custom element %q", tag))
	}
	el := newElementNode(tag)
	if def.connected != nil {
		def.connected(el)
	}
	return el
}

// Disconnect runs tag's disconnected callback for el. memdom has no
// MutationObserver equivalent, so tests call this explicitly to simulate
// removal from the live tree (the jsdom adapter receives the browser's
// disconnectedCallback through its __viewerDispatch bridge instead).
func (r *Registry) Disconnect(tag string, el dom.Element) {
	if def, ok := r.defs[tag]; ok && def.disconnected != nil {
		def.disconnected(el)
	}
}

// Scheduler is a synchronous, FIFO microtask queue. Flush drains tasks
// queued during the drain itself, so a task that schedules further work
// cascades within one Flush call; the reactive package layers its own
// cascade bound on top.
//
// The queue itself is guarded by a mutex: query fetch completions post
// onto it from their fetch goroutine, the one place the framework's
// otherwise serial model touches a second goroutine. Tasks still only
// ever run on the goroutine that calls Flush.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
}

func NewScheduler() *Scheduler { return &Scheduler{} }

func (s *Scheduler) QueueMicrotask(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

func (s *Scheduler) Flush() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		task()
	}
}

// Host bundles a Document, Registry, and Scheduler into a dom.Host.
type Host struct {
	doc   *Document
	reg   *Registry
	sched *Scheduler
}

func NewHost() *Host {
	return &Host{doc: NewDocument(), reg: NewRegistry(), sched: NewScheduler()}
}

func (h *Host) Document() dom.Document                     { return h.doc }
func (h *Host) CustomElements() dom.CustomElementRegistry   { return h.reg }
func (h *Host) Scheduler() dom.Scheduler                   { return h.sched }
func (h *Host) Registry() *Registry                        { return h.reg }
