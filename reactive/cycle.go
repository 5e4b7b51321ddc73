package reactive

import "fmt"

// circularDependencyError is raised when a Derived's own recomputation
// tries to read itself, directly or through a chain of other Deriveds.
// Each derivedCore tracks its own "computing" flag (see derived.go); this
// helper just formats the message consistently.
func circularDependencyError(name string) error {
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Errorf("reactive: circular dependency detected at derived %s", name)
}
