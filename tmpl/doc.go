// Package tmpl is the template engine: a tagged-template-literal-style
// builder that parses static markup once, interns it by content, and
// creates surgical per-binding DOM updates for each expression slot on
// every mount — text, attribute, class-toggle, event, ref, trusted-HTML,
// nested template, component factory, and reactive slot — plus a keyed
// list combinator and a conditional combinator.
//
// Go has no native tagged-template-literal syntax, so the call shape is
// Html(parts, slots...) rather than a backtick literal; parts is the
// array of static text surrounding each ${...} expression, exactly the
// way a JS tagged template call receives them. Since Go re-allocates a
// []string literal on every evaluation, identity-based interning (what a
// JS engine gets for free) isn't available — this package interns by the
// joined content of parts instead, which is observably equivalent for a
// template engine's purposes: the same source text always parses to the
// same binding plan.
//
// No virtual DOM, no output diffing: every update is a binding created at
// bind.go time and re-applied by an github.com/flowdeck/viewer/reactive
// Effect when its dependencies change. The keyed-list combinator
// identifies rows by key, reuses surviving rows' DOM and signals, and
// disposes what disappeared.
package tmpl
