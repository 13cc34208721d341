package controller

// EdgeDetector reports transitions of a boolean input. The initial state is
// released, so an input held at startup yields one rising edge.
type EdgeDetector struct {
	prev bool
}

// Observe records v and reports whether it differs from the previous value.
func (e *EdgeDetector) Observe(v bool) bool {
	changed := v != e.prev
	e.prev = v
	return changed
}

// State returns the last observed value.
func (e *EdgeDetector) State() bool { return e.prev }
