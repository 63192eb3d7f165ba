// Package io imports and exports flat node lists.
//
// # Overview
//
// A hierarchy enters the system as a flat list of parent-referenced nodes,
// either as JSON or as CSV. This package decodes both into
// [hierarchy.Node] slices and encodes them back for round-trip processing.
// Structural validation (duplicate ids, unknown parents, cycles) happens in
// [hierarchy.BuildForest]; this package only checks that ids are usable.
//
// # JSON Format
//
// The JSON format is an object with a single "nodes" array:
//
//	{
//	  "nodes": [
//	    {"id": "app", "name": "Application"},
//	    {"id": "svc", "name": "Service", "parent": "app"}
//	  ]
//	}
//
// Each node must have an "id". Optional fields:
//   - name: display label (defaults to the id)
//   - parent: id of the parent node (empty for roots)
//
// # CSV Format
//
// The CSV format has a required header row naming the columns, in any
// order. "id" is required; "name" and "parent" are optional:
//
//	id,name,parent
//	app,Application,
//	svc,Service,app
//
// # Import
//
// Use [Import] to dispatch on the file extension, or [ImportJSON],
// [ImportCSV], [ReadJSON], [ReadCSV] directly:
//
//	nodes, err := io.Import("nodes.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// [ExportJSON] and [WriteJSON] emit the JSON format shown above. The
// output re-imports identically.
//
// [hierarchy.Node]: github.com/pkoenig/boxtree/pkg/hierarchy.Node
// [hierarchy.BuildForest]: github.com/pkoenig/boxtree/pkg/hierarchy.BuildForest
package io
