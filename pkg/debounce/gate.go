package debounce

// Gate is a two-state value holder: pending input and the last committed value.
// It is not safe for concurrent use; it belongs to a single event loop.
type Gate[T comparable] struct {
	pending   T
	committed T
	listeners []func(T)
}

// New creates a gate with both states set to initial
func New[T comparable](initial T) *Gate[T] {
	return &Gate[T]{pending: initial, committed: initial}
}

// Set records new pending input without committing it
func (g *Gate[T]) Set(v T) {
	g.pending = v
}

// Commit promotes the pending value. It reports whether the committed value changed.
func (g *Gate[T]) Commit() bool {
	return g.promote(g.pending)
}

// CommitValue promotes v instead of the pending value and makes it the pending value too.
func (g *Gate[T]) CommitValue(v T) bool {
	g.pending = v
	return g.promote(v)
}

// Pending returns the uncommitted input
func (g *Gate[T]) Pending() T {
	return g.pending
}

// Committed returns the last committed value
func (g *Gate[T]) Committed() T {
	return g.committed
}

// Dirty reports whether pending input differs from the committed value
func (g *Gate[T]) Dirty() bool {
	return g.pending != g.committed
}

// OnCommit registers fn to run after every commit that changes the committed value
func (g *Gate[T]) OnCommit(fn func(T)) {
	g.listeners = append(g.listeners, fn)
}

func (g *Gate[T]) promote(v T) bool {
	if v == g.committed {
		return false
	}
	g.committed = v
	for _, fn := range g.listeners {
		fn(v)
	}
	return true
}
