package tmpl

import (
	"fmt"
	"reflect"

	"github.com/flowdeck/viewer/dom"
	"github.com/flowdeck/viewer/reactive"
)

// stringify renders a slot value as attribute/text content the way the
// engine's "any other attr"/text-position rows describe: nil becomes the
// empty string, bool and numeric types use their natural Go formatting,
// everything else falls back to fmt.Sprint.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// isSlice reports whether v is a slice of any element type, the
// "Array of any of the above" slot-value row.
func isSlice(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	return rv, rv.Kind() == reflect.Slice
}

// ComponentSlot is implemented by whatever value a component.Define
// factory call produces, letting tmpl mount a child custom element
// without importing the component package (the same "define the
// interface on the leaf side" seam reactive.SetEffectContextHook uses
// between reactive and component).
type ComponentSlot interface {
	// MountComponent creates and connects the child element into parent
	// before the reference node (nil meaning "at the end"), returning the
	// node that was inserted and a dispose function that runs the child's
	// unmount sequence.
	MountComponent(host dom.Host, parent dom.Node, before dom.Node) (dom.Node, func())
}

// truthy mirrors the engine's class:/attribute boolean coercion: nil,
// false, the empty string, and the zero value of numeric kinds are
// falsy; everything else (including a non-empty slice/map) is truthy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() != 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// resolveAny reads an AnyReadable's current boxed value through GetAny,
// or returns v unchanged if it isn't one. GetAny tracks the read, so
// calling it inside an Effect's run (as bindReactiveSlot does) makes that
// Effect depend on the slot's source.
func resolveAny(v any) any {
	if r, ok := reactive.AsAnyReadable(v); ok {
		return r.GetAny()
	}
	return v
}
