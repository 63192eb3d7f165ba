// Package hierarchy builds the working tree model from flat, parent-referenced
// node lists.
//
// Input is a list of [Node] records, each naming its parent by id. BuildForest
// validates the list (unique ids, known parents, no cycles) and produces an
// ordered forest of [TreeNode] values that the layout engines consume and
// annotate in place.
package hierarchy

import (
	"github.com/pkoenig/boxtree/pkg/errors"
)

// Node is a single record of the flat input list.
type Node struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"` // empty means root
}

// Label returns the display label: the name if set, otherwise the id.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// TreeNode is the recursive working model owned by the layout subsystem.
type TreeNode struct {
	// Data is a copy of the originating flat node.
	Data Node

	// Children in insertion order. The permutation engine may reorder
	// this slice as part of its search; every other engine preserves it.
	Children []*TreeNode

	// RootAncestor is the id of the top-level ancestor. Set once during
	// forest construction; read-only to layout engines.
	RootAncestor string

	// Layout is nil before the first CalculateLayout call and fully
	// overwritten by every subsequent call.
	Layout *NodeLayout
}

// IsLeaf reports whether the node has no children.
func (t *TreeNode) IsLeaf() bool {
	return len(t.Children) == 0
}

// Walk visits t and every descendant in pre-order.
func (t *TreeNode) Walk(fn func(*TreeNode)) {
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// WalkForest visits every node of every root in pre-order.
func WalkForest(roots []*TreeNode, fn func(*TreeNode)) {
	for _, r := range roots {
		r.Walk(fn)
	}
}

// Count returns the total number of nodes in the forest.
func Count(roots []*TreeNode) int {
	n := 0
	WalkForest(roots, func(*TreeNode) { n++ })
	return n
}

// BuildForest converts a flat node list into an ordered forest.
//
// Root order and sibling order follow the order of appearance in the input.
// BuildForest returns an error when a node has an empty or duplicate id,
// references an unknown parent, or participates in a parent cycle.
func BuildForest(nodes []Node) ([]*TreeNode, error) {
	byID := make(map[string]*TreeNode, len(nodes))
	for _, n := range nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		if _, exists := byID[n.ID]; exists {
			return nil, errors.New(errors.ErrCodeInvalidHierarchy, "duplicate node id: %q", n.ID)
		}
		byID[n.ID] = &TreeNode{Data: n}
	}

	var roots []*TreeNode
	for _, n := range nodes {
		t := byID[n.ID]
		if n.Parent == "" {
			roots = append(roots, t)
			continue
		}
		parent, ok := byID[n.Parent]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidHierarchy, "node %q references unknown parent %q", n.ID, n.Parent)
		}
		if parent == t {
			return nil, errors.New(errors.ErrCodeInvalidHierarchy, "node %q is its own parent", n.ID)
		}
		parent.Children = append(parent.Children, t)
	}

	// Every node must be reachable from a root; anything left over sits on
	// a parent cycle.
	reached := 0
	for _, r := range roots {
		r.RootAncestor = r.Data.ID
		r.Walk(func(t *TreeNode) {
			t.RootAncestor = r.Data.ID
			reached++
		})
	}
	if reached != len(nodes) {
		for _, n := range nodes {
			if byID[n.ID].RootAncestor == "" {
				return nil, errors.New(errors.ErrCodeInvalidHierarchy, "cycle detected involving node %q", n.ID)
			}
		}
	}

	return roots, nil
}
