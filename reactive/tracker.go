package reactive

// dependency is anything a consumer can read and be notified by:
// Signal and Derived both implement it.
type dependency interface {
	addSubscriber(s subscriber)
	removeSubscriber(s subscriber)
}

// subscriber is anything that reacts to a dependency changing: Derived
// (lazily, via a dirty flag) and Effect (eagerly, via scheduling).
type subscriber interface {
	invalidate()
}

// frame records the dependencies a single Derived or Effect recomputation
// reads, so the consumer's subscription set can be replaced wholesale
// after the run — this is what makes dependency tracking dynamic: a
// branch not taken this run is not subscribed to this run.
type frame struct {
	owner subscriber
	deps  map[dependency]struct{}
}

var trackStack []*frame

func pushFrame(owner subscriber) *frame {
	f := &frame{owner: owner, deps: map[dependency]struct{}{}}
	trackStack = append(trackStack, f)
	return f
}

func popFrame() *frame {
	n := len(trackStack)
	f := trackStack[n-1]
	trackStack = trackStack[:n-1]
	return f
}

// track registers dep as read by whatever consumer is currently
// recomputing, if any. Reads outside of a Derived/Effect run (plain
// Signal.Get calls from ordinary code) are untracked by construction:
// there is no active frame to register against.
func track(dep dependency) {
	if len(trackStack) == 0 {
		return
	}
	top := trackStack[len(trackStack)-1]
	if top == nil {
		// Untrack pushes a nil frame to mean "reads here register nothing".
		return
	}
	top.deps[dep] = struct{}{}
}

// commitDeps subscribes owner to exactly the dependencies read during the
// run just finished, unsubscribing from any it no longer reads.
func commitDeps(owner subscriber, prev map[dependency]struct{}, f *frame) {
	for dep := range prev {
		if _, stillUsed := f.deps[dep]; !stillUsed {
			dep.removeSubscriber(owner)
		}
	}
	for dep := range f.deps {
		if _, already := prev[dep]; !already {
			dep.addSubscriber(owner)
		}
	}
}
