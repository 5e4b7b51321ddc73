// Package memdom is an in-memory implementation of the dom host contract.
// It backs every test in this module and doubles as a reference host for
// examples that don't need a real browser. There is no parsing shortcut:
// ParseTemplate runs markup through golang.org/x/net/html's HTML5
// fragment parser, where the jsdom adapter hands the same markup to the
// browser's own parser.
package memdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/flowdeck/viewer/dom"
)

type node struct {
	kind     dom.NodeKind
	parent   *node
	children []*node

	// element fields
	tag        string
	attrs      map[string]string
	classes    map[string]struct{}
	listeners  map[string][]listenerEntry

	// text/comment fields
	data string
}

type listenerEntry struct {
	opts dom.EventListenerOptions
	fn   dom.EventListener
}

func newElementNode(tag string) *node {
	return &node{kind: dom.KindElement, tag: tag, attrs: map[string]string{}, classes: map[string]struct{}{}, listeners: map[string][]listenerEntry{}}
}

func (n *node) Kind() dom.NodeKind { return n.kind }

func (n *node) Parent() dom.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) NextSibling() dom.Node {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n {
			if i+1 < len(n.parent.children) {
				return n.parent.children[i+1]
			}
			return nil
		}
	}
	return nil
}

func (n *node) PrevSibling() dom.Node {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n {
			if i > 0 {
				return n.parent.children[i-1]
			}
			return nil
		}
	}
	return nil
}

func (n *node) FirstChild() dom.Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *node) AppendChild(child dom.Node) {
	c := child.(*node)
	c.detach()
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) InsertBefore(newNode, referenceNode dom.Node) {
	c := newNode.(*node)
	c.detach()
	c.parent = n
	if referenceNode == nil {
		n.children = append(n.children, c)
		return
	}
	ref := referenceNode.(*node)
	idx := len(n.children)
	for i, ch := range n.children {
		if ch == ref {
			idx = i
			break
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = c
}

func (n *node) RemoveChild(child dom.Node) {
	c := child.(*node)
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (n *node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *node) CloneNode() dom.Node {
	clone := &node{kind: n.kind, tag: n.tag, data: n.data}
	if n.attrs != nil {
		clone.attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			clone.attrs[k] = v
		}
	}
	if n.classes != nil {
		clone.classes = make(map[string]struct{}, len(n.classes))
		for k := range n.classes {
			clone.classes[k] = struct{}{}
		}
	}
	if n.kind == dom.KindElement {
		clone.listeners = map[string][]listenerEntry{}
	}
	for _, child := range n.children {
		clone.AppendChild(child.CloneNode())
	}
	return clone
}

// --- TextNode ---

func (n *node) Data() string     { return n.data }
func (n *node) SetData(d string) { n.data = d }

// --- Element ---

func (n *node) TagName() string { return n.tag }

func (n *node) GetAttribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) SetAttribute(name, value string) {
	if n.attrs == nil {
		n.attrs = map[string]string{}
	}
	n.attrs[name] = value
}

func (n *node) RemoveAttribute(name string) {
	delete(n.attrs, name)
}

func (n *node) Attributes() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

func (n *node) AddClass(name string) {
	if n.classes == nil {
		n.classes = map[string]struct{}{}
	}
	n.classes[name] = struct{}{}
	n.syncClassAttr()
}

func (n *node) RemoveClass(name string) {
	delete(n.classes, name)
	n.syncClassAttr()
}

func (n *node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

func (n *node) syncClassAttr() {
	names := make([]string, 0, len(n.classes))
	for name := range n.classes {
		names = append(names, name)
	}
	if len(names) == 0 {
		delete(n.attrs, "class")
		return
	}
	if n.attrs == nil {
		n.attrs = map[string]string{}
	}
	n.attrs["class"] = strings.Join(names, " ")
}

func (n *node) SetInnerHTML(markup string) {
	n.children = nil
	frag := parseFragment(markup)
	for _, child := range frag.children {
		n.AppendChild(child)
	}
}

func (n *node) Children() []dom.Node {
	out := make([]dom.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) AddEventListener(name string, opts dom.EventListenerOptions, listener dom.EventListener) {
	if n.listeners == nil {
		n.listeners = map[string][]listenerEntry{}
	}
	n.listeners[name] = append(n.listeners[name], listenerEntry{opts: opts, fn: listener})
}

func (n *node) RemoveEventListener(name string, listener dom.EventListener) {
	entries := n.listeners[name]
	for i, e := range entries {
		// Go has no function identity equality at the value level for
		// closures, so entries are compared by the %p of the func value:
		// the first registered listener whose pointer matches is removed.
		if fmt.Sprintf("%p", e.fn) == fmt.Sprintf("%p", listener) {
			n.listeners[name] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch simulates the host firing an event named name on element el,
// invoking every matching listener in registration order, honoring Once.
// Tests use this to exercise @event bindings end to end.
func Dispatch(el dom.Element, name string, payload any) {
	n := el.(*node)
	entries := append([]listenerEntry(nil), n.listeners[name]...)
	remaining := n.listeners[name][:0]
	fired := make(map[int]bool)
	for i, e := range entries {
		e.fn(payload)
		fired[i] = e.opts.Once
	}
	for i, e := range entries {
		if !fired[i] {
			remaining = append(remaining, e)
		}
	}
	if n.listeners != nil {
		n.listeners[name] = remaining
	}
}

func parseFragment(markup string) *node {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	frag := &node{kind: dom.KindFragment}
	if err != nil {
		frag.AppendChild(&node{kind: dom.KindText, data: markup})
		return frag
	}
	for _, n := range nodes {
		if child := fromHTMLNode(n); child != nil {
			frag.AppendChild(child)
		}
	}
	return frag
}

func fromHTMLNode(n *html.Node) *node {
	switch n.Type {
	case html.ElementNode:
		el := newElementNode(n.Data)
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					el.classes[c] = struct{}{}
				}
			}
			el.attrs[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTMLNode(c); child != nil {
				el.AppendChild(child)
			}
		}
		return el
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return &node{kind: dom.KindText, data: n.Data}
	case html.CommentNode:
		return &node{kind: dom.KindComment, data: n.Data}
	default:
		return nil
	}
}
