package component

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/internal/telemetry"
	"github.com/flowdeck/viewer/reactive"
	"github.com/flowdeck/viewer/setupctx"
	"github.com/flowdeck/viewer/tmpl"
)

// Instance is one mounted occurrence of a Define'd component: the setup
// host every Effect/Emitter/lifecycle hook created during its setup call
// registers cleanup with, and the owner of the template result that
// setup produced.
type Instance struct {
	id  string
	tag string

	el    dom.Element
	props *PropsProxy

	result *tmpl.Result

	disposers []func()
	onMounted []func()
	disposed  bool
}

// RegisterDisposer implements setupctx.Host.
func (in *Instance) RegisterDisposer(fn func()) {
	in.disposers = append(in.disposers, fn)
}

// RegisterOnMounted implements setupctx.Host.
func (in *Instance) RegisterOnMounted(fn func()) {
	in.onMounted = append(in.onMounted, fn)
}

// ID returns this instance's stable identifier, stamped onto every
// error captured for the instance (setup failures, mounted-hook and
// disposer panics) so reports from two mounts of the same tag stay
// distinguishable.
func (in *Instance) ID() string { return in.id }

var _ setupctx.Host = (*Instance)(nil)

func init() {
	reactive.SetEffectContextHook(func(e *reactive.Effect) {
		if h, ok := setupctx.TryCurrent(); ok {
			if in, ok := h.(*Instance); ok {
				in.RegisterDisposer(e.Dispose)
			}
		}
	})
	reactive.SetErrorHandler(func(name string, recovered any) {
		prefix := "Effect error:"
		if name != "" {
			prefix = fmt.Sprintf("Effect error (%s):", name)
		}
		telemetry.Capture(prefix, recovered)
	})
}

// mountInstance runs the full mount sequence against a freshly created
// element: untracked setup, template mount, post-mount queue, falling
// back to def's error renderer (or a default inline marker) on any
// panic rather than ever letting one escape to the host runtime's
// connected callback.
func mountInstance(def *definition, host dom.Host, el dom.Element, props *PropsProxy) *Instance {
	in := &Instance{id: uuid.NewString(), tag: def.tag, el: el, props: props}

	ok := runCatching(def.tag, in.ID(), func() {
		var res *tmpl.Result
		reactive.Untrack(func() any {
			setupctx.RunWith(in, func() {
				res = def.setup(props, el)
			})
			return nil
		})
		if res == nil {
			res = tmpl.Html(nil)
		}
		res.Mount(host, el, nil)
		in.result = res
		for _, fn := range in.onMounted {
			runHookSwallowingPanic(def.tag, in.ID(), fn)
		}
	})
	if !ok {
		renderFallback(def, host, el, in.ID())
	}
	return in
}

func runHookSwallowingPanic(tag, instanceID string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.CaptureTagged(componentErrorPrefix(tag), r, instanceTags(instanceID))
		}
	}()
	fn()
}

// runCatching runs fn, reporting (and swallowing) any panic through
// telemetry under the "Component <tag> setup error:" prefix, tagged with
// the failing instance's id, returning whether fn completed without
// panicking.
func runCatching(tag, instanceID string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			telemetry.CaptureTagged(componentErrorPrefix(tag), r, instanceTags(instanceID))
		}
	}()
	fn()
	return true
}

func instanceTags(instanceID string) map[string]string {
	return map[string]string{"instance": instanceID}
}

func componentErrorPrefix(tag string) string {
	return "Component <" + tag + "> setup error:"
}

// renderFallback mounts def's configured error renderer (or the default
// inline marker if none is configured, or if the error renderer itself
// throws) in place of whatever the failed setup would have produced.
func renderFallback(def *definition, host dom.Host, el dom.Element, instanceID string) {
	var res *tmpl.Result
	if def.errorRenderer != nil {
		ok := runCatching(def.tag, instanceID, func() { res = def.errorRenderer() })
		if !ok {
			res = nil
		}
	}
	if res == nil {
		res = defaultErrorTemplate(def.tag)
	}
	res.Mount(host, el, nil)
}

func defaultErrorTemplate(tag string) *tmpl.Result {
	return tmpl.Html([]string{"<!--component-error:" + tag + "-->"})
}

// unmountInstance runs the unmount sequence: dispose the template
// result, then run the disposer list in reverse registration order
// (swallowing panics so one bad disposer doesn't block the rest), then
// clear the host. Idempotent.
func unmountInstance(in *Instance) {
	if in.disposed {
		return
	}
	in.disposed = true
	if in.result != nil {
		in.result.Dispose()
		in.result = nil
	}
	for i := len(in.disposers) - 1; i >= 0; i-- {
		runHookSwallowingPanic(in.tag, in.ID(), in.disposers[i])
	}
	in.disposers = nil
}
