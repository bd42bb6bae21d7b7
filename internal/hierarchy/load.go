package hierarchy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSchema models the on-disk hierarchy YAML format:
//
//	root: torsions
//	nodes:
//	  - name: t1
//	    parent: torsions
//	  - name: t2
//	    parent: t1
//
// Nodes must appear after their parent; handles are issued in file order
// so the same file always yields the same IDs.
type fileSchema struct {
	Root  string `yaml:"root"`
	Nodes []struct {
		Name   string `yaml:"name"`
		Parent string `yaml:"parent"`
	} `yaml:"nodes"`
}

// Load reads a hierarchy description from a YAML file.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: read %s: %w", path, err)
	}

	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("hierarchy: parse %s: %w", path, err)
	}
	if f.Root == "" {
		return nil, fmt.Errorf("hierarchy: %s: missing root name", path)
	}

	ix := NewIndex(f.Root)
	for _, n := range f.Nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("hierarchy: %s: node with empty name", path)
		}
		parent, ok := ix.Lookup(n.Parent)
		if !ok {
			return nil, fmt.Errorf("hierarchy: %s: node %q references unknown parent %q", path, n.Name, n.Parent)
		}
		if _, err := ix.Add(parent, n.Name); err != nil {
			return nil, fmt.Errorf("hierarchy: %s: %w", path, err)
		}
	}

	return ix, nil
}
