// Package ref implements element refs: an opaque container the template
// engine writes into when a `ref="${r}"` binding mounts, and clears back
// to the zero value when that binding's template result is disposed.
package ref

// refBrand lets IsRef recognize a Ref of unknown element type without a
// type switch over every instantiation, the same brand technique
// reactive.IsSignal uses.
type refBrand interface{ isRefBrand() }

// Ref is a handle a caller creates and passes into a template's
// `ref="${r}"` attribute position. The template engine writes the
// mounted element into Current and resets it to the zero value on
// dispose; it is never written by any other code path.
type Ref[E any] struct {
	Current E
}

// New constructs an empty Ref.
func New[E any]() *Ref[E] {
	return &Ref[E]{}
}

func (r *Ref[E]) isRefBrand() {}

// Set is called by the template engine's ref binding on mount.
func (r *Ref[E]) Set(v E) { r.Current = v }

// Clear is called by the template engine's ref binding on dispose,
// resetting Current to the zero value of E.
func (r *Ref[E]) Clear() {
	var zero E
	r.Current = zero
}

// IsRef reports whether v is a *Ref[E] for some E. The template engine's
// ref binding does not call it; it type-asserts the slot value to Setter.
func IsRef(v any) bool {
	_, ok := v.(refBrand)
	return ok
}

// Setter is the narrow interface tmpl needs from a Ref of unknown element
// type: write the mounted element in, clear it out on dispose. Every
// *Ref[E] satisfies it directly, since tmpl only ever has an any-typed
// slot value and cannot know E at binding-creation time.
type Setter interface {
	SetAny(v any)
	ClearAny()
}

// SetAny writes v into Current if it is assignable to E, and is a no-op
// otherwise (a ref bound to the wrong element type silently stays nil
// rather than panicking a mount).
func (r *Ref[E]) SetAny(v any) {
	if e, ok := v.(E); ok {
		r.Set(e)
	}
}

// ClearAny resets Current to the zero value of E.
func (r *Ref[E]) ClearAny() { r.Clear() }
