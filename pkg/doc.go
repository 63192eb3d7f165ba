// Package pkg provides the core libraries for Boxtree hierarchy layout.
//
// # Overview
//
// Boxtree turns flat, parent-referenced node lists into diagrams of nested,
// non-overlapping boxes. The pkg directory is organized into five main areas:
//
//  1. [hierarchy] - The forest model built from flat node lists
//  2. [layout] - The layout engines that compute box geometry
//  3. [render] - Output sinks (SVG, PNG, PDF, DOT, JSON)
//  4. [pipeline] - Orchestration (parse → layout → render) with caching
//  5. [diagram] - The serializable diagram format the stages exchange
//
// Supporting packages: [io] reads and writes node lists, [measure] sizes
// label text, [cache] stores stage results, [errors] carries coded errors,
// and [buildinfo] exposes build-time version data.
//
// # Architecture
//
// The typical data flow through Boxtree:
//
//	Flat node list (JSON/CSV)
//	         ↓
//	    [hierarchy] package (validate, build forest)
//	         ↓
//	    [layout] package (engine computes box geometry)
//	         ↓
//	    [render] package (diagram to artifact)
//	         ↓
//	    SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
// Lay out a forest and render it:
//
//	import (
//	    "context"
//	    "github.com/pkoenig/boxtree/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Input:      "nodes.json",
//	    LayoutType: "flowgrid",
//	    Formats:    []string{"svg"},
//	})
//
// The individual packages can also be used directly; see their docs.
package pkg
