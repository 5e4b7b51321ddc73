package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitCallsSubscribersInOrder(t *testing.T) {
	e := New[string, int]()
	var order []int
	e.Subscribe("tick", func(p int) { order = append(order, p*10) })
	e.Subscribe("tick", func(p int) { order = append(order, p*100) })
	e.Emit("tick", 1)
	assert.Equal(t, []int{10, 100}, order)
}

func TestUnsubscribeStopsFutureEmits(t *testing.T) {
	e := New[string, int]()
	calls := 0
	unsub := e.Subscribe("tick", func(int) { calls++ })
	e.Emit("tick", 1)
	unsub()
	e.Emit("tick", 1)
	assert.Equal(t, 1, calls)
}

func TestRemovalDuringEmitDoesNotSkipSiblings(t *testing.T) {
	e := New[string, int]()
	var second, third bool
	var unsubFirst func()
	unsubFirst = e.Subscribe("tick", func(int) { unsubFirst() })
	e.Subscribe("tick", func(int) { second = true })
	e.Subscribe("tick", func(int) { third = true })
	e.Emit("tick", 1)
	assert.True(t, second)
	assert.True(t, third)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	e := New[string, int]()
	e.Subscribe("tick", func(int) { panic("boom") })
	ran := false
	e.Subscribe("tick", func(int) { ran = true })
	assert.NotPanics(t, func() { e.Emit("tick", 1) })
	assert.True(t, ran)
}

func TestBridgeTracksEmittedValues(t *testing.T) {
	e := New[string, int]()
	sig := Bridge(e, "tick", func(p int) int { return p * 2 }, 0)
	assert.Equal(t, 0, sig.Get())
	e.Emit("tick", 5)
	assert.Equal(t, 10, sig.Get())
}

func TestClearRemovesAllSubscribers(t *testing.T) {
	e := New[string, int]()
	calls := 0
	e.Subscribe("tick", func(int) { calls++ })
	e.Clear()
	e.Emit("tick", 1)
	assert.Equal(t, 0, calls)
}
