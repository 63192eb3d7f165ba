package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

type nodeList struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// WriteJSON encodes a node list as JSON and writes it to w. The output
// re-imports identically with [ReadJSON].
func WriteJSON(nodes []hierarchy.Node, w io.Writer) error {
	out := nodeList{Nodes: make([]node, len(nodes))}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Name: n.Name, Parent: n.Parent}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode node list")
	}
	return nil
}

// ExportJSON writes a node list to a JSON file at path.
func ExportJSON(nodes []hierarchy.Node, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()

	if err := WriteJSON(nodes, f); err != nil {
		return err
	}
	return f.Close()
}
