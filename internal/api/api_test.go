package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	t.Cleanup(func() { _ = runner.Close() })
	return NewServer(runner, log.New(io.Discard), "127.0.0.1:0")
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const sampleBody = `{
	"nodes": [
		{"id": "app", "name": "Application"},
		{"id": "api", "name": "API", "parent": "app"},
		{"id": "db", "name": "Database", "parent": "app"}
	],
	"oracle": "heuristic"
}`

func TestHealthz(t *testing.T) {
	h := testServer(t).Routes()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMeta(t *testing.T) {
	h := testServer(t).Routes()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/meta", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Engines []string `json:"engines"`
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Engines) == 0 || len(body.Formats) == 0 {
		t.Errorf("meta should list engines and formats, got %+v", body)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	h := testServer(t).Routes()
	rec := postJSON(t, h, "/api/v1/layout", sampleBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var body layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Diagram.Boxes) != 3 {
		t.Errorf("diagram has %d boxes, want 3", len(body.Diagram.Boxes))
	}
	if body.ForestHash == "" {
		t.Error("forest_hash should be set")
	}
	if body.Stats.NodeCount != 3 {
		t.Errorf("node_count = %d, want 3", body.Stats.NodeCount)
	}
	if body.Stats.RootCount != 1 {
		t.Errorf("root_count = %d, want 1", body.Stats.RootCount)
	}
}

func TestRenderSingleFormatReturnsRawArtifact(t *testing.T) {
	h := testServer(t).Routes()
	body := strings.Replace(sampleBody, `"oracle": "heuristic"`, `"oracle": "heuristic", "formats": ["svg"]`, 1)
	rec := postJSON(t, h, "/api/v1/render", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("body should be an svg document")
	}
}

func TestRenderMultipleFormatsReturnsEnvelope(t *testing.T) {
	h := testServer(t).Routes()
	body := strings.Replace(sampleBody, `"oracle": "heuristic"`, `"oracle": "heuristic", "formats": ["svg", "json"]`, 1)
	rec := postJSON(t, h, "/api/v1/render", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DiagramID == "" {
		t.Error("diagram_id should be set")
	}
	for _, format := range []string{"svg", "json"} {
		if len(resp.Artifacts[format]) == 0 {
			t.Errorf("missing %s artifact", format)
		}
	}
}

func TestRequestValidation(t *testing.T) {
	h := testServer(t).Routes()

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"not json", "not json", http.StatusBadRequest, "INVALID_INPUT"},
		{"no nodes", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"input path rejected", `{"input": "/etc/passwd"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"nodes": [{"id": "a"}], "bogus": true}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad layout type", `{"nodes": [{"id": "a"}], "layout_type": "spiral"}`, http.StatusBadRequest, "INVALID_LAYOUT_TYPE"},
		{"bad format", `{"nodes": [{"id": "a"}], "formats": ["bmp"]}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"duplicate id", `{"nodes": [{"id": "a"}, {"id": "a"}]}`, http.StatusBadRequest, "INVALID_HIERARCHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/api/v1/render", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q (error: %s)", resp.Code, tt.code, resp.Error)
			}
		})
	}
}
