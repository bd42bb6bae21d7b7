package strategy

import "github.com/mhoffmann/hiersearch/internal/hierarchy"

// AcceptancePolicy carries the knobs the outer search loop uses when it
// filters and accepts candidate moves. The strategy engine only stores
// these; it never reads them.
type AcceptancePolicy struct {
	// ObjectiveAcceptTotal passes on this many candidates per objective
	// in sequence; 0 keeps everything.
	ObjectiveAcceptTotal []int

	// ObjectiveAcceptClusters considers only the top N clusters per
	// objective state; 0 keeps everything.
	ObjectiveAcceptClusters []int

	// ObjectiveUpdateOnEachAccept refreshes the objective after every
	// accepted move.
	ObjectiveUpdateOnEachAccept bool

	// MacroAcceptMaxTotal and MicroAcceptMaxTotal cap accepted moves per
	// macro and micro step; 0 means no cap.
	MacroAcceptMaxTotal int
	MicroAcceptMaxTotal int

	// MacroAcceptMaxPerCluster and MicroAcceptMaxPerCluster cap accepted
	// moves per step per cluster; 0 means no cap.
	MacroAcceptMaxPerCluster int
	MicroAcceptMaxPerCluster int

	// FilterAbove prunes candidates whose estimated objective change
	// exceeds this value.
	FilterAbove float64

	// KeepBelow retains candidates whose objective change stays below
	// this value.
	KeepBelow float64

	// MaxEditsLimit bounds the number of edits per move; 0 means no
	// bound.
	MaxEditsLimit int
}

// DefaultAcceptancePolicy returns the policy used when nothing else is
// configured: accept one move at a time and refresh the objective on
// every acceptance.
func DefaultAcceptancePolicy() AcceptancePolicy {
	return AcceptancePolicy{
		ObjectiveAcceptTotal:        []int{0},
		ObjectiveAcceptClusters:     []int{0},
		ObjectiveUpdateOnEachAccept: true,
		MacroAcceptMaxTotal:         1,
		MicroAcceptMaxTotal:         1,
		MacroAcceptMaxPerCluster:    1,
		MicroAcceptMaxPerCluster:    1,
	}
}

// StepKey identifies a (target node, operation) pair in the step
// tracker.
type StepKey struct {
	Node      hierarchy.NodeID
	Operation Operation
}

// Strategy enumerates a bounded parameter space into an ordered
// schedule of macro iterations and serves them one at a time, expanded
// against the caller's current candidate nodes. The schedule is built
// lazily on first use and is deterministic for a given configuration.
//
// A Strategy is driven by exactly one caller at a time; it performs no
// internal synchronization.
type Strategy struct {
	Bounds   SearchBounds
	Overlaps []float64

	// Direct and iterative execution knobs, copied into every step
	// produced.
	DirectEnable    bool
	DirectLimit     int
	IterativeEnable bool

	// EnableMerge and EnableSplit select which operations the schedule
	// contains.
	EnableMerge bool
	EnableSplit bool

	// Accept is stored for the outer loop; the engine never reads it.
	Accept AcceptancePolicy

	// TreeIterator is the node ordering the driver applies when it
	// assembles candidate targets. The engine stores it but never calls
	// it.
	TreeIterator hierarchy.IterFunc

	// StepTracker records, per (node, operation), the macro cursor at
	// which that move was last attempted. Maintained by the driver.
	StepTracker map[StepKey]int

	cursor int
	repeat bool
	macro  []*Iteration
}

// New creates a Strategy over the given bounds. A nil overlaps slice
// defaults to a single zero overlap.
func New(bounds SearchBounds, overlaps []float64) *Strategy {
	if overlaps == nil {
		overlaps = []float64{0}
	}
	return &Strategy{
		Bounds:          bounds,
		Overlaps:        overlaps,
		DirectLimit:     10,
		IterativeEnable: true,
		EnableMerge:     true,
		EnableSplit:     true,
		Accept:          DefaultAcceptancePolicy(),
		TreeIterator:    hierarchy.Dive,
		StepTracker:     make(map[StepKey]int),
		cursor:          -1,
	}
}

// Cursor returns the position of the next macro iteration to serve.
func (st *Strategy) Cursor() int {
	return st.cursor
}

// Seek positions the cursor. Called before the schedule is first built,
// the value acts as a skip count: the build drops that many leading
// parameter combinations and then rewinds the cursor to zero. Called
// after the build, it simply moves the serving position.
func (st *Strategy) Seek(cursor int) {
	st.cursor = cursor
}

// MacroCount returns the number of macro iterations in the schedule,
// building it if needed.
func (st *Strategy) MacroCount() int {
	st.ensureBuilt()
	return len(st.macro)
}

// Templates returns a copy of the schedule: one step slice per macro
// iteration, with every step cloned. Mutating the result does not
// affect the Strategy.
func (st *Strategy) Templates() [][]Step {
	st.ensureBuilt()
	out := make([][]Step, len(st.macro))
	for i, it := range st.macro {
		steps := make([]Step, len(it.steps))
		for j, s := range it.steps {
			steps[j] = s.Clone()
		}
		out[i] = steps
	}
	return out
}

// Done reports whether every macro iteration has been served and no
// replay is pending.
func (st *Strategy) Done() bool {
	st.ensureBuilt()
	return !st.repeat && st.cursor >= len(st.macro)
}

// RepeatStep requests that the next MacroIteration call re-serve the
// previous macro template. Only the cursor is rewound: the template is
// re-expanded against whatever candidates that call supplies, which
// need not match the earlier ones.
func (st *Strategy) RepeatStep() {
	st.repeat = true
}

// Restart discards the schedule and rebuilds it from the current
// configuration, leaving the Strategy positioned at the first macro
// iteration.
func (st *Strategy) Restart() {
	st.repeat = false
	st.cursor = -1
	st.macro = nil
	st.build()
}

// MacroIteration serves the next macro iteration, expanded against the
// given candidate nodes: one step per (template step, candidate) pair,
// template-major, with indices counting up from zero across the whole
// cross product. The returned Iteration is owned by the caller and
// shares no mutable state with the Strategy.
//
// Once the schedule is exhausted, MacroIteration returns a singleton
// iteration holding only a sentinel step.
func (st *Strategy) MacroIteration(clusters []hierarchy.NodeID) *Iteration {
	st.ensureBuilt()

	if st.repeat && st.cursor > 0 {
		st.cursor--
		st.repeat = false
	}

	if st.cursor >= len(st.macro) {
		return NewIteration([]Step{sentinelStep()})
	}

	template := st.macro[st.cursor]
	micros := make([]Step, 0, len(template.steps)*len(clusters))
	n := 0
	for _, s := range template.steps {
		for _, p := range clusters {
			c := s.Clone()
			c.Target = p
			c.Index = n
			n++
			micros = append(micros, c)
		}
	}

	st.cursor++
	return NewIteration(micros)
}

func (st *Strategy) ensureBuilt() {
	if len(st.macro) == 0 {
		st.build()
	}
}

// build enumerates the search axes in fixed nested order: overlap,
// branch depth, branch count, bit width. Each combination contributes a
// one-step merge iteration and a one-step split iteration, subject to
// the enable flags. An inverted range on any axis contributes nothing.
//
// The cursor doubles as a skip count here: combinations numbered below
// it are dropped, which lets a checkpointed cursor resume construction
// partway through the space. The cursor is rewound to zero afterwards.
func (st *Strategy) build() {
	b := st.Bounds.Refine
	searchCursor := -1

	for _, overlap := range st.Overlaps {
		for depth := b.DepthMin; depth <= b.DepthMax; depth++ {
			// Branch axis contributes the single value BranchMax;
			// BranchMin does not widen the search.
			branches := b.BranchMax
			for bits := b.BitMin; bits <= b.BitMax; bits++ {
				searchCursor++
				if searchCursor < st.cursor {
					continue
				}

				if st.EnableMerge {
					st.macro = append(st.macro, NewIteration([]Step{st.mergeStep(overlap)}))
				}
				if st.EnableSplit {
					st.macro = append(st.macro, NewIteration([]Step{st.splitStep(overlap, bits, branches, depth)}))
				}
			}
		}
	}

	st.cursor = 0
}

// mergeStep builds a merge template. Merge generates no structural
// variants, so its refinement bundle stays zero and its extension stays
// disabled.
func (st *Strategy) mergeStep(overlap float64) Step {
	return Step{
		Operation:       Merge,
		Overlap:         []float64{overlap},
		DirectEnable:    st.DirectEnable,
		DirectLimit:     st.DirectLimit,
		IterativeEnable: st.IterativeEnable,
	}
}

// splitStep builds a split template for one point of the search space.
// Ranges collapse to the chosen point values; the uniqueness and
// generality flags come from the bounds.
func (st *Strategy) splitStep(overlap float64, bits, branches, depth int) Step {
	b := st.Bounds.Refine
	return Step{
		Operation: Split,
		Overlap:   []float64{overlap},
		Params: Params{
			Refine: Refinement{
				BitMin:            bits,
				BitMax:            bits,
				BranchMin:         branches,
				BranchMax:         branches,
				DepthMin:          depth,
				DepthMax:          depth,
				Unique:            b.Unique,
				UniqueComplements: b.UniqueComplements,
				General:           b.General,
				Specific:          b.Specific,
			},
			Extend: Extension{
				BranchMin: branches,
				BranchMax: branches,
				Enabled:   true,
			},
		},
		DirectEnable:    st.DirectEnable,
		DirectLimit:     st.DirectLimit,
		IterativeEnable: st.IterativeEnable,
	}
}
