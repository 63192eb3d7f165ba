package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSampleNodes writes a small valid node list and returns its path.
func writeSampleNodes(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.json")
	data := `{"nodes":[
		{"id":"app","name":"Application"},
		{"id":"api","name":"API","parent":"app"},
		{"id":"db","name":"Database","parent":"app"}
	]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCommand executes the root command with args, caching into a temp dir.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := &CLI{Logger: testCLILogger()}
	root := c.RootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func TestBuildCommand(t *testing.T) {
	input := writeSampleNodes(t)
	output := filepath.Join(t.TempDir(), "normalized.json")

	if err := runCommand(t, "build", input, "-o", output); err != nil {
		t.Fatalf("build: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), `"app"`) {
		t.Error("normalized output should contain the nodes")
	}
}

func TestBuildCommandRejectsBadHierarchy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.json")
	data := `{"nodes":[{"id":"a","parent":"missing"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "build", path); err == nil {
		t.Error("unknown parent should fail the build")
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeSampleNodes(t)
	output := filepath.Join(t.TempDir(), "out.diagram.json")

	err := runCommand(t, "layout", input,
		"-o", output,
		"--engine", "flowgrid",
		"--oracle", "heuristic")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("diagram not written: %v", err)
	}
	if !strings.Contains(string(data), `"boxes"`) {
		t.Error("diagram file should contain boxes")
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeSampleNodes(t)
	output := filepath.Join(t.TempDir(), "diagram.svg")

	err := runCommand(t, "render", input,
		"-o", output,
		"-f", "svg",
		"--oracle", "heuristic")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("svg not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output should be an svg document")
	}
}

func TestRenderCommandRejectsBadFormat(t *testing.T) {
	input := writeSampleNodes(t)
	if err := runCommand(t, "render", input, "-f", "bmp"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestVisualizeCommand(t *testing.T) {
	input := writeSampleNodes(t)
	dir := t.TempDir()
	diagramPath := filepath.Join(dir, "out.diagram.json")

	err := runCommand(t, "layout", input,
		"-o", diagramPath,
		"--oracle", "heuristic")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	svgPath := filepath.Join(dir, "out.svg")
	if err := runCommand(t, "visualize", diagramPath, "-o", svgPath); err != nil {
		t.Fatalf("visualize: %v", err)
	}

	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatalf("svg not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output should be an svg document")
	}
}

func TestCachePathCommand(t *testing.T) {
	if err := runCommand(t, "cache", "path"); err != nil {
		t.Fatalf("cache path: %v", err)
	}
}
