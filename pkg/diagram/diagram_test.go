package diagram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

func laidOutForest(t *testing.T) []*hierarchy.TreeNode {
	t.Helper()
	roots, err := hierarchy.BuildForest([]hierarchy.Node{
		{ID: "app", Name: "Application"},
		{ID: "svc", Name: "Service", Parent: "app"},
		{ID: "db", Parent: "app"},
	})
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	boxes := map[string]hierarchy.Rect{
		"app": {X: 0, Y: 0, Width: 300, Height: 200},
		"svc": {X: 10, Y: 30, Width: 130, Height: 150},
		"db":  {X: 150, Y: 30, Width: 130, Height: 150},
	}
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		n.Layout = &hierarchy.NodeLayout{Box: boxes[n.Data.ID]}
	})
	return roots
}

func TestFromForest(t *testing.T) {
	d, err := FromForest(laidOutForest(t), "grid", 300, 200)
	if err != nil {
		t.Fatalf("FromForest: %v", err)
	}

	if d.ID == "" {
		t.Error("diagram ID is empty")
	}
	if d.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", d.Version, FormatVersion)
	}
	if d.LayoutType != "grid" {
		t.Errorf("LayoutType = %q", d.LayoutType)
	}
	if len(d.Nodes) != 3 || len(d.Boxes) != 3 {
		t.Fatalf("got %d nodes, %d boxes, want 3 each", len(d.Nodes), len(d.Boxes))
	}

	// Pre-order: parent first, roots carry depth 0.
	if d.Boxes[0].ID != "app" || d.Boxes[0].Depth != 0 {
		t.Errorf("first box = %+v, want app at depth 0", d.Boxes[0])
	}
	if d.Boxes[1].Depth != 1 || d.Boxes[1].Root != "app" {
		t.Errorf("child box = %+v, want depth 1 rooted at app", d.Boxes[1])
	}
	if !d.Boxes[1].Leaf {
		t.Error("svc should be marked leaf")
	}

	// Label falls back to the id when the name is empty.
	if d.Boxes[2].Label != "db" {
		t.Errorf("db label = %q, want id fallback", d.Boxes[2].Label)
	}

	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromForestRequiresLayout(t *testing.T) {
	roots, err := hierarchy.BuildForest([]hierarchy.Node{{ID: "bare"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromForest(roots, "grid", 0, 0); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("err = %v, want INVALID_GEOMETRY", err)
	}
}

func TestRoundTrip(t *testing.T) {
	d, err := FromForest(laidOutForest(t), "flowgrid", 300, 200)
	if err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.ID != d.ID || got.LayoutType != d.LayoutType {
		t.Errorf("identity lost: %+v vs %+v", got, d)
	}
	if len(got.Boxes) != len(d.Boxes) {
		t.Fatalf("box count %d, want %d", len(got.Boxes), len(d.Boxes))
	}
	for i := range d.Boxes {
		if got.Boxes[i] != d.Boxes[i] {
			t.Errorf("box %d = %+v, want %+v", i, got.Boxes[i], d.Boxes[i])
		}
	}

	// Structural input survives for re-layout.
	flat := got.FlatNodes()
	if _, err := hierarchy.BuildForest(flat); err != nil {
		t.Errorf("FlatNodes not rebuildable: %v", err)
	}
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"not json", "{", errors.ErrCodeInvalidFormat},
		{"no boxes", `{"version":1,"nodes":[],"boxes":[]}`, errors.ErrCodeInvalidFormat},
		{"future version", `{"version":99,"nodes":[{"id":"a"}],"boxes":[{"id":"a","width":1,"height":1}]}`, errors.ErrCodeInvalidFormat},
		{"orphan box", `{"version":1,"nodes":[{"id":"a"}],"boxes":[{"id":"b","width":1,"height":1}]}`, errors.ErrCodeInvalidFormat},
		{"degenerate box", `{"version":1,"nodes":[{"id":"a"}],"boxes":[{"id":"a","width":0,"height":5}]}`, errors.ErrCodeInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	d, err := FromForest(laidOutForest(t), "grid", 300, 200)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("ID = %q, want %q", got.ID, d.ID)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}

	if fi, err := os.Stat(path); err == nil && fi.Size() == 0 {
		t.Error("written file is empty")
	}
}
