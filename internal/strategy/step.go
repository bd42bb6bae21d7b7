package strategy

import "github.com/mhoffmann/hiersearch/internal/hierarchy"

// Operation selects the structural move a Step describes.
type Operation int

const (
	// Merge collapses a node into its parent.
	Merge Operation = -1
	// Split refines a node into new variants.
	Split Operation = 1
)

func (op Operation) String() string {
	switch op {
	case Merge:
		return "merge"
	case Split:
		return "split"
	default:
		return "none"
	}
}

// SentinelIndex marks a Step that carries no work. A Step with this
// index is returned once an Iteration or Strategy is exhausted; its
// remaining fields are meaningless.
const SentinelIndex = -1

// Step is one candidate move: an operation, an optional target node,
// and the parameter bundle the external refinement routine needs to
// perform it. Steps are values; hand them around freely, but use Clone
// when the overlap slice must not be shared.
type Step struct {
	Index           int
	Target          hierarchy.NodeID // hierarchy.None means no specific target
	Params          Params
	Operation       Operation
	Overlap         []float64
	DirectEnable    bool
	DirectLimit     int
	IterativeEnable bool
}

// Sentinel reports whether this Step signals exhaustion.
func (s Step) Sentinel() bool {
	return s.Index == SentinelIndex
}

// Clone returns an independent copy of the Step. The overlap slice is
// duplicated so the copy never aliases the original.
func (s Step) Clone() Step {
	c := s
	if s.Overlap != nil {
		c.Overlap = make([]float64, len(s.Overlap))
		copy(c.Overlap, s.Overlap)
	}
	return c
}

func sentinelStep() Step {
	return Step{Index: SentinelIndex}
}
