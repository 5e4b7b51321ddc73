//go:build js && wasm

// Package jsdom adapts the browser's DOM, reachable through syscall/js,
// to the dom.Host contract. This is the production host: a WASM binary
// built with GOOS=js GOARCH=wasm and served to a browser uses jsdom.New
// to obtain the Host it hands to the component shell.
package jsdom

import (
	"strings"
	"syscall/js"

	"github.com/flowdeck/viewer/dom"
)

type jsNode struct {
	v js.Value
}

func wrap(v js.Value) *jsNode {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &jsNode{v: v}
}

func (n *jsNode) Kind() dom.NodeKind {
	switch n.v.Get("nodeType").Int() {
	case 1:
		return dom.KindElement
	case 3:
		return dom.KindText
	case 8:
		return dom.KindComment
	default:
		return dom.KindFragment
	}
}

func (n *jsNode) Parent() dom.Node      { return toNode(n.v.Get("parentNode")) }
func (n *jsNode) NextSibling() dom.Node { return toNode(n.v.Get("nextSibling")) }
func (n *jsNode) PrevSibling() dom.Node { return toNode(n.v.Get("previousSibling")) }
func (n *jsNode) FirstChild() dom.Node  { return toNode(n.v.Get("firstChild")) }

func (n *jsNode) AppendChild(child dom.Node) {
	n.v.Call("appendChild", unwrap(child))
}

func (n *jsNode) InsertBefore(newNode, referenceNode dom.Node) {
	var ref js.Value
	if referenceNode == nil {
		ref = js.Null()
	} else {
		ref = unwrap(referenceNode)
	}
	n.v.Call("insertBefore", unwrap(newNode), ref)
}

func (n *jsNode) RemoveChild(child dom.Node) {
	n.v.Call("removeChild", unwrap(child))
}

func (n *jsNode) CloneNode() dom.Node {
	return toNode(n.v.Call("cloneNode", true))
}

func toNode(v js.Value) dom.Node {
	w := wrap(v)
	if w == nil {
		return nil
	}
	return w
}

func unwrap(n dom.Node) js.Value {
	if n == nil {
		return js.Null()
	}
	return n.(*jsNode).v
}

// --- text/comment ---

func (n *jsNode) Data() string     { return n.v.Get("data").String() }
func (n *jsNode) SetData(d string) { n.v.Set("data", d) }

// --- element ---

func (n *jsNode) TagName() string { return strings.ToLower(n.v.Get("tagName").String()) }

func (n *jsNode) GetAttribute(name string) (string, bool) {
	if !n.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return n.v.Call("getAttribute", name).String(), true
}

func (n *jsNode) SetAttribute(name, value string) {
	n.v.Call("setAttribute", name, value)
}

func (n *jsNode) RemoveAttribute(name string) {
	n.v.Call("removeAttribute", name)
}

func (n *jsNode) Attributes() map[string]string {
	list := n.v.Get("attributes")
	out := make(map[string]string, list.Length())
	for i := 0; i < list.Length(); i++ {
		attr := list.Index(i)
		out[attr.Get("name").String()] = attr.Get("value").String()
	}
	return out
}

func (n *jsNode) AddClass(name string)    { n.v.Get("classList").Call("add", name) }
func (n *jsNode) RemoveClass(name string) { n.v.Get("classList").Call("remove", name) }
func (n *jsNode) HasClass(name string) bool {
	return n.v.Get("classList").Call("contains", name).Bool()
}

func (n *jsNode) SetInnerHTML(markup string) { n.v.Set("innerHTML", markup) }

func (n *jsNode) Children() []dom.Node {
	list := n.v.Get("childNodes")
	out := make([]dom.Node, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		if child := toNode(list.Index(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

type jsListener struct {
	fn      js.Func
	wrapped dom.EventListener
}

func (n *jsNode) AddEventListener(name string, opts dom.EventListenerOptions, listener dom.EventListener) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		if len(opts.Keys) > 0 {
			key := strings.ToLower(ev.Get("key").String())
			allowed := false
			for _, k := range opts.Keys {
				if matchesKeyAlias(key, k) {
					allowed = true
					break
				}
			}
			if !allowed {
				return nil
			}
		}
		if opts.StopPropagation {
			ev.Call("stopPropagation")
		}
		if opts.PreventDefault {
			ev.Call("preventDefault")
		}
		listener(ev)
		return nil
	})
	jsOpts := map[string]any{"once": opts.Once}
	n.v.Call("addEventListener", name, cb, jsOpts)
	storeListener(n, name, listener, jsListener{fn: cb, wrapped: listener})
}

// RemoveEventListener detaches the most recently added listener for name.
// Go closures have no identity comparable across an any-typed boundary, so
// unlike the browser's own removeEventListener (which compares function
// references), this removes in LIFO order; template bindings only ever
// add one listener per binding and remove it once on dispose, so ordering
// never matters in practice.
func (n *jsNode) RemoveEventListener(name string, listener dom.EventListener) {
	if l, ok := takeListener(n, name); ok {
		n.v.Call("removeEventListener", name, l.fn)
		l.fn.Release()
	}
}

func matchesKeyAlias(actual, alias string) bool {
	switch alias {
	case "enter":
		return actual == "enter"
	case "escape":
		return actual == "escape" || actual == "esc"
	case "space":
		return actual == " " || actual == "spacebar"
	case "tab":
		return actual == "tab"
	default:
		return actual == alias
	}
}

// listenerRegistry keeps the js.Func a listener was registered with so it
// can be released and detached by RemoveEventListener. Keyed by element
// identity + event name since syscall/js values aren't comparable map keys
// across wraps.
var listenerRegistry = map[string][]jsListener{}

func listenerKey(n *jsNode, name string) string {
	return n.v.Get("__jsdomId").String() + "|" + name
}

func storeListener(n *jsNode, name string, wrapped dom.EventListener, l jsListener) {
	ensureID(n)
	k := listenerKey(n, name)
	listenerRegistry[k] = append(listenerRegistry[k], l)
}

func takeListener(n *jsNode, name string) (jsListener, bool) {
	k := listenerKey(n, name)
	entries := listenerRegistry[k]
	if len(entries) == 0 {
		return jsListener{}, false
	}
	l := entries[len(entries)-1]
	listenerRegistry[k] = entries[:len(entries)-1]
	return l, true
}

var idCounter int

func ensureID(n *jsNode) {
	if n.v.Get("__jsdomId").Truthy() {
		return
	}
	idCounter++
	n.v.Set("__jsdomId", idCounter)
}
