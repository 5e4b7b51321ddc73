// Package lifecycle exposes the two component lifecycle hooks, OnMounted
// and OnCleanup. Both only make sense during a component's setup call
// and delegate entirely to setupctx.Current.
package lifecycle

import "github.com/flowdeck/viewer/setupctx"

// OnMounted registers fn to run once, after the enclosing component's
// template has been mounted into the live document. Must be called
// during setup(); panics via setupctx.Current otherwise.
func OnMounted(fn func()) {
	setupctx.Current().RegisterOnMounted(fn)
}

// OnCleanup registers fn to run once when the enclosing component is
// unmounted, alongside every other disposer registered during its setup
// (effects, emitter subscriptions, refs). Must be called during setup().
func OnCleanup(fn func()) {
	setupctx.Current().RegisterDisposer(fn)
}
