package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/dom/memdom"
)

func newTestHost(t *testing.T) *memdom.Host {
	t.Helper()
	host := memdom.NewHost()
	UseScheduler(host.Scheduler())
	t.Cleanup(func() { UseScheduler(nil) })
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

func TestBatchedWritesRunEffectOnce(t *testing.T) {
	newTestHost(t)
	a := NewSignal(0)
	b := NewSignal(0)
	c := NewSignal(0)

	runs := 0
	NewEffect(func() func() {
		a.Get()
		b.Get()
		c.Get()
		runs++
		return nil
	})
	runs = 0

	a.Set(1)
	b.Set(2)
	c.Set(3)
	Flush()

	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, a.Get())
	assert.Equal(t, 2, b.Get())
	assert.Equal(t, 3, c.Get())
}

func TestReactiveTextThroughBarrel(t *testing.T) {
	host := newTestHost(t)
	name := NewSignal("Alice")

	r := Html([]string{"<span>", "</span>"}, name)
	parent := host.Document().CreateElement("div")
	r.Mount(host, parent, nil)
	assert.Equal(t, "Alice", textOf(parent))

	name.Set("Bob")
	Flush()
	assert.Equal(t, "Bob", textOf(parent))
}

func TestDiamondDependencyComputesOncePerDrain(t *testing.T) {
	newTestHost(t)
	a := NewSignal(1)
	b := NewDerived(func() int { return a.Get() * 2 })
	c := NewDerived(func() int { return a.Get() + 10 })

	dRuns := 0
	d := NewDerived(func() int {
		dRuns++
		return b.Get() + c.Get()
	})

	got := 0
	NewEffect(func() func() {
		got = d.Get()
		return nil
	})
	assert.Equal(t, 13, got)

	dRuns = 0
	a.Set(2)
	Flush()
	assert.Equal(t, 16, got)
	assert.Equal(t, 1, dRuns)
}
