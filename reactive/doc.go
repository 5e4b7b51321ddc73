// Package reactive implements the signal core of the viewer framework:
// mutable reactive cells (Signal), cached derivations (Derived), and
// side-effectful subscribers (Effect), batched onto a host microtask.
//
// The package is a leaf: it knows nothing about setup contexts,
// components, or the DOM. The component shell wires itself in through
// SetEffectContextHook so that effects created during a component's
// setup are auto-disposed with that component, without this package
// importing the component package.
package reactive
