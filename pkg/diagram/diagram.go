// Package diagram defines the canonical serialization format for laid out
// hierarchies. It is the boundary type between the layout engines and every
// consumer: renderers, the HTTP API, files on disk and the cache.
//
// The format is designed for round-trip fidelity: export, re-import and
// re-export produce identical results. Box coordinates are absolute in one
// shared space, never relative to a parent.
package diagram

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

// FormatVersion is bumped whenever the serialized shape changes in a way
// old readers cannot handle.
const FormatVersion = 1

// Diagram is the serialized result of one layout run.
type Diagram struct {
	// ID uniquely identifies this generation run. It doubles as the
	// handle for cached renders of the same diagram.
	ID string `json:"id" bson:"id"`

	// Version is the serialization format version.
	Version int `json:"version" bson:"version"`

	// GeneratedAt is the UTC timestamp of the layout run.
	GeneratedAt time.Time `json:"generated_at" bson:"generated_at"`

	// LayoutType names the engine that produced the geometry.
	LayoutType string `json:"layout_type" bson:"layout_type"`

	// Width and Height are the overall canvas dimensions.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Nodes is the flat structural input, preserved for re-layout.
	Nodes []Node `json:"nodes" bson:"nodes"`

	// Boxes is the computed geometry, one entry per node in pre-order.
	Boxes []Box `json:"boxes" bson:"boxes"`
}

// Node mirrors the flat input format: id, display name, parent reference.
type Node struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
}

// Box is one positioned rectangle.
type Box struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Depth is the nesting level, 0 for roots. Renderers derive shading
	// from it.
	Depth int `json:"depth" bson:"depth"`

	// Root is the id of the box's top-level ancestor; renderers key
	// color palettes on it.
	Root string `json:"root,omitempty" bson:"root,omitempty"`

	// Leaf marks boxes without children.
	Leaf bool `json:"leaf,omitempty" bson:"leaf,omitempty"`
}

// FromForest captures a laid out forest into the serialization format.
// Every node must carry a layout; run an engine first.
func FromForest(roots []*hierarchy.TreeNode, layoutType string, width, height float64) (Diagram, error) {
	d := Diagram{
		ID:          uuid.NewString(),
		Version:     FormatVersion,
		GeneratedAt: time.Now().UTC(),
		LayoutType:  layoutType,
		Width:       width,
		Height:      height,
	}

	var walk func(n *hierarchy.TreeNode, depth int) error
	walk = func(n *hierarchy.TreeNode, depth int) error {
		if n.Layout == nil {
			return errors.New(errors.ErrCodeInvalidGeometry, "node %s has no layout", n.Data.ID)
		}
		d.Nodes = append(d.Nodes, Node{ID: n.Data.ID, Name: n.Data.Name, Parent: n.Data.Parent})
		d.Boxes = append(d.Boxes, Box{
			ID:     n.Data.ID,
			Label:  n.Data.Label(),
			X:      n.Layout.Box.X,
			Y:      n.Layout.Box.Y,
			Width:  n.Layout.Box.Width,
			Height: n.Layout.Box.Height,
			Depth:  depth,
			Root:   n.RootAncestor,
			Leaf:   n.IsLeaf(),
		})
		for _, c := range n.Children {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r, 0); err != nil {
			return Diagram{}, err
		}
	}
	return d, nil
}

// FlatNodes returns the structural input as hierarchy nodes, ready for
// BuildForest and a fresh layout run.
func (d Diagram) FlatNodes() []hierarchy.Node {
	out := make([]hierarchy.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = hierarchy.Node{ID: n.ID, Name: n.Name, Parent: n.Parent}
	}
	return out
}

// Validate checks structural integrity: version, matching node and box
// sets, and positive box sizes.
func (d Diagram) Validate() error {
	if d.Version != FormatVersion {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram version %d (want %d)", d.Version, FormatVersion)
	}
	if len(d.Boxes) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "diagram has no boxes")
	}
	if len(d.Nodes) != len(d.Boxes) {
		return errors.New(errors.ErrCodeInvalidFormat, "diagram has %d nodes but %d boxes", len(d.Nodes), len(d.Boxes))
	}
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	for _, b := range d.Boxes {
		if !ids[b.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "box %s has no matching node", b.ID)
		}
		if b.Width <= 0 || b.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidGeometry, "box %s has non-positive size %vx%v", b.ID, b.Width, b.Height)
		}
	}
	return nil
}

// Marshal serializes a diagram to pretty-printed JSON.
func Marshal(d Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal diagram")
	}
	return data, nil
}

// Unmarshal deserializes and validates a diagram.
func Unmarshal(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal diagram")
	}
	if d.Version == 0 {
		d.Version = FormatVersion
	}
	if err := d.Validate(); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// WriteFile writes a diagram to a JSON file.
func WriteFile(d Diagram, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ReadFile reads and validates a diagram from a JSON file.
func ReadFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Diagram{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Diagram{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Unmarshal(data)
}
