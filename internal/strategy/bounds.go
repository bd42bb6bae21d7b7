package strategy

// Refinement controls how a split generates new structural variants.
// The same type serves two roles: inside SearchBounds the min/max pairs
// describe the ranges the build enumerates, while inside a Step's Params
// they are collapsed to the single point value chosen for that step.
type Refinement struct {
	// BitMin and BitMax bound the pattern bit width.
	BitMin int
	BitMax int

	// BranchMin and BranchMax bound the branch count.
	BranchMin int
	BranchMax int

	// DepthMin and DepthMax bound the branch depth.
	DepthMin int
	DepthMax int

	// Unique requires generated variants to partition matches uniquely.
	Unique bool

	// UniqueComplements requires the complement of a variant to be
	// unique as well.
	UniqueComplements bool

	// PreferMinComplement prefers the smaller half of a complement pair.
	PreferMinComplement bool

	// General and Specific select which direction of refinement is
	// admissible.
	General  bool
	Specific bool
}

// Extension controls the branch growth allowed to accompany a move.
type Extension struct {
	BranchMin int
	BranchMax int
	Enabled   bool
}

// Params is the working parameter bundle attached to a Step. A merge
// step carries a zero Refinement and a disabled Extension; merge does
// not generate new structural variants.
type Params struct {
	Refine Refinement
	Extend Extension
}

// SearchBounds describes the parameter space a Strategy enumerates.
// The Refine ranges are read as search axes: bit width runs
// BitMin..BitMax, branch depth runs DepthMin..DepthMax, and the branch
// axis contributes only BranchMax (BranchMin does not widen the
// search). The flag fields are copied into every split step produced.
type SearchBounds struct {
	Refine Refinement
	Extend Extension
}
