package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/dom/memdom"
	"github.com/flowdeck/viewer/lifecycle"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/tmpl"
)

func newTestHost(t *testing.T) *memdom.Host {
	t.Helper()
	host := memdom.NewHost()
	reactive.UseScheduler(host.Scheduler())
	t.Cleanup(func() {
		reactive.UseScheduler(nil)
		Reset()
	})
	return host
}

func textOf(n dom.Node) string {
	if n == nil {
		return ""
	}
	if tn, ok := n.(dom.TextNode); ok && n.Kind() == dom.KindText {
		return tn.Data()
	}
	var out string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out += textOf(c)
	}
	return out
}

func TestMountRunsSetupAndMountsTemplate(t *testing.T) {
	host := newTestHost(t)
	Greeting := Define("x-greeting", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		return tmpl.Html([]string{"<span>hi ", "</span>"}, Prop[string](props, "name"))
	})

	root := host.Document().CreateElement("div")
	slot := Greeting(Props{"name": "Ada"})
	el, dispose := slot.MountComponent(host, root, nil)

	require.NotNil(t, el)
	assert.Equal(t, "hi Ada", textOf(root))

	dispose()
	assert.Nil(t, root.FirstChild())
}

func TestReactivePropPropagatesIntoChild(t *testing.T) {
	host := newTestHost(t)
	Greeting := Define("x-greeting2", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		return tmpl.Html([]string{"<span>hi ", "</span>"}, reactive.NewDerived(func() string {
			return Prop[string](props, "name")
		}))
	})

	name := reactive.NewSignal("Ada")
	root := host.Document().CreateElement("div")
	slot := Greeting(Props{"name": name})
	slot.MountComponent(host, root, nil)

	assert.Equal(t, "hi Ada", textOf(root))

	name.Set("Grace")
	reactive.Flush()
	assert.Equal(t, "hi Grace", textOf(root))
}

func TestSetupPanicRendersFallback(t *testing.T) {
	host := newTestHost(t)
	Bomb := Define("x-bomb", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		panic("boom")
	})

	root := host.Document().CreateElement("div")
	slot := Bomb(nil)
	slot.MountComponent(host, root, nil)

	assert.NotNil(t, root.FirstChild())
}

func TestErrorRendererUsedOnPanic(t *testing.T) {
	host := newTestHost(t)
	Bomb := Define("x-bomb2", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		panic("boom")
	}, WithErrorRenderer(func() *tmpl.Result {
		return tmpl.Html([]string{"<p>failed</p>"})
	}))

	root := host.Document().CreateElement("div")
	slot := Bomb(nil)
	slot.MountComponent(host, root, nil)

	assert.Equal(t, "failed", textOf(root))
}

func TestOnMountedHookRunsAfterTemplateMount(t *testing.T) {
	host := newTestHost(t)
	var sawChild bool
	Widget := Define("x-widget", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		lifecycle.OnMounted(func() { sawChild = el.FirstChild() != nil })
		return tmpl.Html([]string{"<b>child</b>"})
	})

	root := host.Document().CreateElement("div")
	slot := Widget(nil)
	slot.MountComponent(host, root, nil)

	assert.True(t, sawChild)
}

func TestOnCleanupRunsOnDispose(t *testing.T) {
	host := newTestHost(t)
	cleaned := false
	Widget := Define("x-widget2", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		lifecycle.OnCleanup(func() { cleaned = true })
		return tmpl.Html([]string{"<b>child</b>"})
	})

	root := host.Document().CreateElement("div")
	slot := Widget(nil)
	_, dispose := slot.MountComponent(host, root, nil)
	assert.False(t, cleaned)

	dispose()
	assert.True(t, cleaned)
}

func TestHostClassAppliedIndependentlyOfChildClasses(t *testing.T) {
	host := newTestHost(t)
	Widget := Define("x-widget3", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		return tmpl.Html([]string{`<div class:inner="true"></div>`})
	})

	root := host.Document().CreateElement("div")
	slot := Widget(nil, Attrs{Class: "outer-class"})
	el, _ := slot.MountComponent(host, root, nil)

	host2 := el.(dom.Element)
	assert.True(t, host2.HasClass("outer-class"))
}

func TestCustomElementRegistryPathMountsSameLifecycle(t *testing.T) {
	host := newTestHost(t)
	raw := Define("x-raw", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		return tmpl.Html([]string{"<span>raw ", "</span>"}, Prop[string](props, "greeting"))
	})

	// Trigger registration as a side effect of a normal factory mount.
	root := host.Document().CreateElement("div")
	Factory := func() Factory { return nil }
	_ = Factory
	placeholder := Define("x-raw-trigger", func(props *PropsProxy, el dom.Element) *tmpl.Result {
		return tmpl.Html(nil)
	})
	placeholder(nil).MountComponent(host, root, nil)
	raw(nil).MountComponent(host, root, nil)

	el := host.CustomElements().CreateInstance("x-raw")
	assert.Equal(t, "raw ", textOf(el))
}
