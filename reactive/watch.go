package reactive

// WatchOption configures Watch.
type WatchOption[T any] func(*watchConfig[T])

type watchConfig[T any] struct {
	equals   func(a, b T) bool
	name     string
	immediate bool
}

// WithWatchEqual overrides the equality used to decide whether the
// tracked expression's value actually changed between runs, suppressing
// the callback when it returns true.
func WithWatchEqual[T any](eq func(a, b T) bool) WatchOption[T] {
	return func(c *watchConfig[T]) { c.equals = eq }
}

// WithWatchDebugName attaches a name surfaced in error-handler calls.
func WithWatchDebugName[T any](name string) WatchOption[T] {
	return func(c *watchConfig[T]) { c.name = name }
}

// WithWatchImmediate runs callback once synchronously at Watch time with
// (initial, initial) instead of waiting for the first change.
func WithWatchImmediate[T any]() WatchOption[T] {
	return func(c *watchConfig[T]) { c.immediate = true }
}

// Watch runs expr inside an Effect and invokes callback with the new and
// previous value whenever expr's result changes, skipping the call when
// the values compare equal. It's a thin convenience over NewEffect for
// the very common "react to one derived value" shape.
func Watch[T any](expr func() T, callback func(newVal, oldVal T), opts ...WatchOption[T]) *Effect {
	cfg := &watchConfig[T]{equals: defaultEquals[T]}
	for _, opt := range opts {
		opt(cfg)
	}
	var prev T
	first := true
	return NewEffect(func() func() {
		cur := expr()
		switch {
		case first:
			first = false
			if cfg.immediate {
				callback(cur, cur)
			}
		case !cfg.equals(prev, cur):
			callback(cur, prev)
		}
		prev = cur
		return nil
	}, WithEffectDebugName(cfg.name))
}
