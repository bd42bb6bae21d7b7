package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mhoffmann/hiersearch/internal/hierarchy"
	"github.com/mhoffmann/hiersearch/internal/strategy"
)

// Order names for the candidate-node visitation order.
const (
	OrderDive    = "dive"
	OrderBreadth = "breadth"
)

// AcceptanceConfig mirrors strategy.AcceptancePolicy in the on-disk
// schema. The values are passed through to the outer loop unchanged.
type AcceptanceConfig struct {
	ObjectiveAcceptTotal        []int   `yaml:"objective_accept_total" json:"objectiveAcceptTotal"`
	ObjectiveAcceptClusters     []int   `yaml:"objective_accept_clusters" json:"objectiveAcceptClusters"`
	ObjectiveUpdateOnEachAccept bool    `yaml:"objective_update_on_each_accept" json:"objectiveUpdateOnEachAccept"`
	MacroAcceptMaxTotal         int     `yaml:"macro_accept_max_total" json:"macroAcceptMaxTotal"`
	MicroAcceptMaxTotal         int     `yaml:"micro_accept_max_total" json:"microAcceptMaxTotal"`
	MacroAcceptMaxPerCluster    int     `yaml:"macro_accept_max_per_cluster" json:"macroAcceptMaxPerCluster"`
	MicroAcceptMaxPerCluster    int     `yaml:"micro_accept_max_per_cluster" json:"microAcceptMaxPerCluster"`
	FilterAbove                 float64 `yaml:"filter_above" json:"filterAbove"`
	KeepBelow                   float64 `yaml:"keep_below" json:"keepBelow"`
	MaxEditsLimit               int     `yaml:"max_edits_limit" json:"maxEditsLimit"`
}

// SearchConfig is the full configuration of a search run: the bounds of
// the parameter space, the operation and execution knobs, and the
// acceptance policy handed to the outer loop. It serializes to YAML for
// configuration files and to JSON inside checkpoints.
type SearchConfig struct {
	BitSearchMin     int `yaml:"bit_search_min" json:"bitSearchMin"`
	BitSearchLimit   int `yaml:"bit_search_limit" json:"bitSearchLimit"`
	BranchDepthMin   int `yaml:"branch_depth_min" json:"branchDepthMin"`
	BranchDepthLimit int `yaml:"branch_depth_limit" json:"branchDepthLimit"`
	BranchLimit      int `yaml:"branch_limit" json:"branchLimit"`

	Unique              bool `yaml:"unique" json:"unique"`
	UniqueComplements   bool `yaml:"unique_complements" json:"uniqueComplements"`
	PreferMinComplement bool `yaml:"prefer_min_complement" json:"preferMinComplement"`
	SplitGeneral        bool `yaml:"split_general" json:"splitGeneral"`
	SplitSpecific       bool `yaml:"split_specific" json:"splitSpecific"`

	Overlaps []float64 `yaml:"overlaps" json:"overlaps"`

	EnableMerge bool `yaml:"enable_merge" json:"enableMerge"`
	EnableSplit bool `yaml:"enable_split" json:"enableSplit"`

	DirectEnable    bool `yaml:"direct_enable" json:"directEnable"`
	DirectLimit     int  `yaml:"direct_limit" json:"directLimit"`
	IterativeEnable bool `yaml:"iterative_enable" json:"iterativeEnable"`

	// Order selects the candidate visitation order: "dive" or "breadth".
	Order string `yaml:"order" json:"order"`

	// CheckpointInterval saves a checkpoint every N macro iterations
	// during a run; 0 disables periodic checkpoints.
	CheckpointInterval int `yaml:"checkpoint_interval" json:"checkpointInterval"`

	Accept AcceptanceConfig `yaml:"accept" json:"accept"`
}

// Default returns the configuration used when a field is absent from
// the file: a one-bit, depth-zero search with both operations enabled.
func Default() SearchConfig {
	return SearchConfig{
		BitSearchMin:     1,
		BitSearchLimit:   1,
		BranchDepthMin:   0,
		BranchDepthLimit: 0,
		BranchLimit:      0,
		Unique:           true,
		SplitSpecific:    true,
		Overlaps:         []float64{0},
		EnableMerge:      true,
		EnableSplit:      true,
		DirectLimit:      10,
		IterativeEnable:  true,
		Order:            OrderDive,
		Accept: AcceptanceConfig{
			ObjectiveAcceptTotal:        []int{0},
			ObjectiveAcceptClusters:     []int{0},
			ObjectiveUpdateOnEachAccept: true,
			MacroAcceptMaxTotal:         1,
			MicroAcceptMaxTotal:         1,
			MacroAcceptMaxPerCluster:    1,
			MicroAcceptMaxPerCluster:    1,
		},
	}
}

// Load reads a search configuration, applying defaults for absent
// fields.
func Load(path string) (SearchConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the fields the engine does not tolerate on its own.
// Inverted search ranges are deliberately not rejected: an empty axis
// simply contributes no combinations.
func (c SearchConfig) Validate() error {
	if c.Order != OrderDive && c.Order != OrderBreadth {
		return fmt.Errorf("unknown order %q", c.Order)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("checkpoint_interval must not be negative")
	}
	if c.DirectLimit < 0 {
		return fmt.Errorf("direct_limit must not be negative")
	}
	return nil
}

// Bounds assembles the strategy search bounds from the flat schema.
func (c SearchConfig) Bounds() strategy.SearchBounds {
	return strategy.SearchBounds{
		Refine: strategy.Refinement{
			BitMin:              c.BitSearchMin,
			BitMax:              c.BitSearchLimit,
			BranchMax:           c.BranchLimit,
			DepthMin:            c.BranchDepthMin,
			DepthMax:            c.BranchDepthLimit,
			Unique:              c.Unique,
			UniqueComplements:   c.UniqueComplements,
			PreferMinComplement: c.PreferMinComplement,
			General:             c.SplitGeneral,
			Specific:            c.SplitSpecific,
		},
	}
}

// Policy converts the acceptance section to the strategy's stored form.
func (c SearchConfig) Policy() strategy.AcceptancePolicy {
	return strategy.AcceptancePolicy{
		ObjectiveAcceptTotal:        c.Accept.ObjectiveAcceptTotal,
		ObjectiveAcceptClusters:     c.Accept.ObjectiveAcceptClusters,
		ObjectiveUpdateOnEachAccept: c.Accept.ObjectiveUpdateOnEachAccept,
		MacroAcceptMaxTotal:         c.Accept.MacroAcceptMaxTotal,
		MicroAcceptMaxTotal:         c.Accept.MicroAcceptMaxTotal,
		MacroAcceptMaxPerCluster:    c.Accept.MacroAcceptMaxPerCluster,
		MicroAcceptMaxPerCluster:    c.Accept.MicroAcceptMaxPerCluster,
		FilterAbove:                 c.Accept.FilterAbove,
		KeepBelow:                   c.Accept.KeepBelow,
		MaxEditsLimit:               c.Accept.MaxEditsLimit,
	}
}

// OrderFunc resolves the configured visitation order.
func (c SearchConfig) OrderFunc() hierarchy.IterFunc {
	if c.Order == OrderBreadth {
		return hierarchy.Breadth
	}
	return hierarchy.Dive
}

// Strategy constructs a fully configured Strategy.
func (c SearchConfig) Strategy() *strategy.Strategy {
	overlaps := c.Overlaps
	if len(overlaps) == 0 {
		overlaps = nil
	}

	st := strategy.New(c.Bounds(), overlaps)
	st.EnableMerge = c.EnableMerge
	st.EnableSplit = c.EnableSplit
	st.DirectEnable = c.DirectEnable
	st.DirectLimit = c.DirectLimit
	st.IterativeEnable = c.IterativeEnable
	st.TreeIterator = c.OrderFunc()
	st.Accept = c.Policy()
	return st
}
