package strategy

// Iteration is a cursor-addressed sequence of Steps with one-shot
// replay. The zero cursor points at the first step; Next serves steps
// in order and returns a sentinel once the sequence is exhausted.
//
// Iterations are not safe for concurrent use.
type Iteration struct {
	cursor int
	steps  []Step
	repeat bool
}

// NewIteration wraps the given steps. The Iteration takes ownership of
// the slice.
func NewIteration(steps []Step) *Iteration {
	return &Iteration{steps: steps}
}

// Len returns the number of steps in the sequence.
func (it *Iteration) Len() int {
	return len(it.steps)
}

// Cursor returns the position of the next step to be served.
func (it *Iteration) Cursor() int {
	return it.cursor
}

// Done reports whether the sequence is exhausted. A pending replay
// keeps the iteration live even when the cursor is past the end.
func (it *Iteration) Done() bool {
	return !it.repeat && it.cursor >= len(it.steps)
}

// RepeatStep requests that the next call to Next re-serve the step that
// preceded it. The request is one-shot: it is consumed by the next
// Next call, and repeated requests before that call have no further
// effect.
func (it *Iteration) RepeatStep() {
	it.repeat = true
}

// Next returns the step at the cursor and advances. A pending replay is
// consumed first, rewinding the cursor by one so the previous step is
// served again. Past the end, Next returns a sentinel step.
func (it *Iteration) Next() Step {
	if it.repeat && it.cursor > 0 {
		it.cursor--
		it.repeat = false
	}

	if it.cursor >= len(it.steps) {
		return sentinelStep()
	}

	s := it.steps[it.cursor]
	it.cursor++
	return s
}
