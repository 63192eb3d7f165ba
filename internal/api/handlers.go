package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/pkoenig/boxtree/pkg/cache"
	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/layout"
	"github.com/pkoenig/boxtree/pkg/pipeline"
	"github.com/pkoenig/boxtree/pkg/render"
)

// maxRequestBody caps request bodies at 8 MiB. A flat node list of that
// size is far beyond anything the layout engines handle interactively.
const maxRequestBody = 8 << 20

// contentTypes maps output formats to their MIME types.
var contentTypes = map[render.Format]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
	render.FormatPDF:  "application/pdf",
	render.FormatJSON: "application/json",
	render.FormatDOT:  "text/vnd.graphviz",
}

// layoutResponse is the body returned by POST /api/v1/layout.
type layoutResponse struct {
	Diagram    diagram.Diagram    `json:"diagram"`
	ForestHash string             `json:"forest_hash"`
	Stats      statsResponse      `json:"stats"`
	Cache      pipeline.CacheInfo `json:"cache"`
}

// renderResponse is the body returned by POST /api/v1/render when more
// than one format is requested. Artifact bytes are base64 in JSON.
type renderResponse struct {
	DiagramID  string             `json:"diagram_id"`
	ForestHash string             `json:"forest_hash"`
	Artifacts  map[string][]byte  `json:"artifacts"`
	Stats      statsResponse      `json:"stats"`
	Cache      pipeline.CacheInfo `json:"cache"`
}

// statsResponse mirrors pipeline.Stats with millisecond durations.
type statsResponse struct {
	NodeCount  int     `json:"node_count"`
	RootCount  int     `json:"root_count"`
	ParseMS    float64 `json:"parse_ms"`
	LayoutMS   float64 `json:"layout_ms"`
	RenderMS   float64 `json:"render_ms"`
	PipelineMS float64 `json:"pipeline_ms"`
}

func newStatsResponse(s pipeline.Stats) statsResponse {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return statsResponse{
		NodeCount:  s.NodeCount,
		RootCount:  s.RootCount,
		ParseMS:    ms(s.ParseTime),
		LayoutMS:   ms(s.LayoutTime),
		RenderMS:   ms(s.RenderTime),
		PipelineMS: ms(s.ParseTime + s.LayoutTime + s.RenderTime),
	}
}

// errorResponse is the body returned on any error.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMeta reports the supported layout engines and output formats.
func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"engines": lo.Map(layout.Types, func(t layout.Type, _ int) string { return string(t) }),
		"formats": lo.Map(render.Formats, func(f render.Format, _ int) string { return string(f) }),
	})
}

// handleLayout runs parse and layout only and returns the diagram.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}

	parseStart := time.Now()
	roots, parseHit, err := s.runner.ParseWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	parseTime := time.Since(parseStart)

	layoutStart := time.Now()
	d, layoutHit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), roots, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Diagram:    d,
		ForestHash: forestHash(d),
		Stats: newStatsResponse(pipeline.Stats{
			NodeCount:  len(d.Nodes),
			RootCount:  rootCount(d),
			ParseTime:  parseTime,
			LayoutTime: time.Since(layoutStart),
		}),
		Cache: pipeline.CacheInfo{ParseHit: parseHit, LayoutHit: layoutHit},
	})
}

// forestHash hashes the diagram's flat node list, matching the hash the
// full pipeline reports.
func forestHash(d diagram.Diagram) string {
	data, err := json.Marshal(d.FlatNodes())
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// rootCount counts top-level boxes.
func rootCount(d diagram.Diagram) int {
	n := 0
	for _, b := range d.Boxes {
		if b.Depth == 0 {
			n++
		}
	}
	return n
}

// handleRender runs the full pipeline. A single requested format is
// returned raw with its MIME type; multiple formats come back as a JSON
// envelope with base64 artifacts.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.decodeOptions(w, r)
	if !ok {
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if len(opts.Formats) == 1 {
		format, err := render.ParseFormat(opts.Formats[0])
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[string(format)])
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		DiagramID:  result.Diagram.ID,
		ForestHash: result.ForestHash,
		Artifacts:  result.Artifacts,
		Stats:      newStatsResponse(result.Stats),
		Cache:      result.CacheInfo,
	})
}

// decodeOptions reads pipeline options from the request body and rejects
// anything that would make the server touch its own filesystem.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return pipeline.Options{}, false
	}
	if opts.Input != "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "input files are not accepted over the api, send nodes inline"))
		return pipeline.Options{}, false
	}
	if len(opts.Nodes) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "nodes are required"))
		return pipeline.Options{}, false
	}
	return opts, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidHierarchy,
		errors.ErrCodeInvalidLayoutType,
		errors.ErrCodeInvalidOptions,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidGeometry,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
