package hierarchy

import "fmt"

// NodeID is a lightweight handle into an Index. IDs are comparable and
// stable for the lifetime of the Index that issued them. The zero value
// None means "no node".
type NodeID int32

// None is the absent-node handle.
const None NodeID = 0

// Node is a single entry in a classification hierarchy. Up is the parent
// handle (None for the root).
type Node struct {
	ID   NodeID
	Up   NodeID
	Name string
}

// Index is an ordered hierarchy of nodes. Children keep insertion order,
// so iteration order is reproducible across runs.
type Index struct {
	nodes    map[NodeID]Node
	children map[NodeID][]NodeID
	byName   map[string]NodeID
	root     NodeID
	next     NodeID
}

// NewIndex creates a hierarchy containing only a root node with the
// given name.
func NewIndex(rootName string) *Index {
	ix := &Index{
		nodes:    make(map[NodeID]Node),
		children: make(map[NodeID][]NodeID),
		byName:   make(map[string]NodeID),
		next:     1,
	}
	ix.root = ix.insert(None, rootName)
	return ix
}

func (ix *Index) insert(parent NodeID, name string) NodeID {
	id := ix.next
	ix.next++
	ix.nodes[id] = Node{ID: id, Up: parent, Name: name}
	ix.byName[name] = id
	if parent != None {
		ix.children[parent] = append(ix.children[parent], id)
	}
	return id
}

// Add appends a child node under parent and returns its handle.
func (ix *Index) Add(parent NodeID, name string) (NodeID, error) {
	if _, ok := ix.nodes[parent]; !ok {
		return None, fmt.Errorf("hierarchy: unknown parent node %d", parent)
	}
	if _, ok := ix.byName[name]; ok {
		return None, fmt.Errorf("hierarchy: duplicate node name %q", name)
	}
	return ix.insert(parent, name), nil
}

// Root returns the handle of the root node.
func (ix *Index) Root() NodeID {
	return ix.root
}

// Node looks up a node by handle.
func (ix *Index) Node(id NodeID) (Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Lookup resolves a node name to its handle.
func (ix *Index) Lookup(name string) (NodeID, bool) {
	id, ok := ix.byName[name]
	return id, ok
}

// Children returns the ordered child handles of a node. The returned
// slice is owned by the Index and must not be modified.
func (ix *Index) Children(id NodeID) []NodeID {
	return ix.children[id]
}

// Len returns the number of nodes, root included.
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// IterFunc produces a node visitation order rooted at the given node.
// The strategy engine stores one of these but never calls it; the order
// is applied by the driver when it assembles candidate targets.
type IterFunc func(ix *Index, root NodeID) []NodeID

// Dive returns nodes in depth-first preorder starting at root.
func Dive(ix *Index, root NodeID) []NodeID {
	if _, ok := ix.nodes[root]; !ok {
		return nil
	}
	out := make([]NodeID, 0, len(ix.nodes))
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		kids := ix.children[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Breadth returns nodes level by level starting at root.
func Breadth(ix *Index, root NodeID) []NodeID {
	if _, ok := ix.nodes[root]; !ok {
		return nil
	}
	out := make([]NodeID, 0, len(ix.nodes))
	queue := []NodeID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		queue = append(queue, ix.children[id]...)
	}
	return out
}
