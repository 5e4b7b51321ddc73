// Package emitter is a typed, synchronous pub/sub base: a standalone
// event hub any package can embed, with automatic unsubscription for
// subscriptions made during a component's setup.
package emitter

import (
	"github.com/flowdeck/viewer/internal/telemetry"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/setupctx"
)

// Emitter is a typed pub/sub hub. Each event is identified by a
// comparable name value of type E (commonly a string or small enum), and
// the payload type is fixed at Emitter[E, P] construction. A type that
// publishes events with several payload shapes embeds one Emitter per
// shape.
type Emitter[E comparable, P any] struct {
	subscribers map[E][]*subscription[P]
}

type subscription[P any] struct {
	fn    func(P)
	alive bool
}

// New constructs an empty Emitter.
func New[E comparable, P any]() *Emitter[E, P] {
	return &Emitter[E, P]{subscribers: map[E][]*subscription[P]{}}
}

// Emit calls every subscriber registered for name, in subscription order,
// passing payload. Each subscriber runs in its own recover boundary so
// one throwing does not stop the rest; the list iterated is a snapshot
// taken before the first call, so a subscriber removing itself (or
// another subscriber) during emission can't skip or double-fire a
// sibling. Re-entrant Emit calls from within a subscriber are allowed and
// resolve depth-first, same as any other ordinary Go call stack.
func (e *Emitter[E, P]) Emit(name E, payload P) {
	subs := e.subscribers[name]
	snapshot := make([]*subscription[P], len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		if !s.alive {
			continue
		}
		callSwallowingPanic(name, s.fn, payload)
	}
}

func callSwallowingPanic[E comparable, P any](name E, fn func(P), payload P) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Capture(subscriberErrorPrefix(name), r)
		}
	}()
	fn(payload)
}

func subscriberErrorPrefix[E comparable](name E) string {
	return "Emitter: subscriber for '" + toString(name) + "' threw:"
}

func toString[E comparable](name E) string {
	if s, ok := any(name).(string); ok {
		return s
	}
	return "event"
}

// Subscribe registers fn to run on every future Emit(name, ...) and
// returns an unsubscribe function. If a setup context is active at
// subscription time, the unsubscribe is also registered as a disposer on
// the active host, so a component that subscribes during setup is
// automatically unsubscribed on unmount without remembering to call the
// returned function itself.
func (e *Emitter[E, P]) Subscribe(name E, fn func(P)) func() {
	sub := &subscription[P]{fn: fn, alive: true}
	e.subscribers[name] = append(e.subscribers[name], sub)
	unsubscribe := func() {
		if !sub.alive {
			return
		}
		sub.alive = false
		list := e.subscribers[name]
		for i, s := range list {
			if s == sub {
				e.subscribers[name] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	if host, ok := setupctx.TryCurrent(); ok {
		host.RegisterDisposer(unsubscribe)
	}
	return unsubscribe
}

// Bridge subscribes to name and returns a read-only Signal that starts at
// initial and updates to selector(payload) on each matching Emit. Use
// this to expose an emitter-driven value to the template engine and
// effects without hand-writing a Signal.Set in every handler.
func Bridge[E comparable, P, T any](e *Emitter[E, P], name E, selector func(P) T, initial T) *reactive.Signal[T] {
	sig := reactive.NewSignal(initial)
	e.Subscribe(name, func(p P) {
		sig.Set(selector(p))
	})
	return sig
}

// Clear removes every subscriber for every event name. Tests only.
func (e *Emitter[E, P]) Clear() {
	e.subscribers = map[E][]*subscription[P]{}
}
