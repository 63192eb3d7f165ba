package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

// Import reads a flat node list from path, dispatching on the file
// extension: .json and .csv are supported.
func Import(path string) ([]hierarchy.Node, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ImportJSON(path)
	case ".csv":
		return ImportCSV(path)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported input format %q (want .json or .csv)", filepath.Ext(path))
	}
}

// ImportJSON reads the JSON node list at path.
func ImportJSON(path string) ([]hierarchy.Node, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// ImportCSV reads the CSV node list at path.
func ImportCSV(path string) ([]hierarchy.Node, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	return f, nil
}

// ReadJSON decodes a JSON node list from r.
//
// The input must be an object with a "nodes" array; each node needs an
// "id" and may carry "name" and "parent". ReadJSON validates ids only;
// run the result through [hierarchy.BuildForest] for structural checks.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]hierarchy.Node, error) {
	var data nodeList
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode node list")
	}

	out := make([]hierarchy.Node, len(data.Nodes))
	for i, n := range data.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		out[i] = hierarchy.Node{ID: n.ID, Name: n.Name, Parent: n.Parent}
	}
	return out, nil
}

// ReadCSV decodes a CSV node list from r. The first record is a header
// naming the columns; "id" is required, "name" and "parent" optional.
func ReadCSV(r io.Reader) ([]hierarchy.Node, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := cols["id"]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "csv header has no id column: %v", header)
	}
	nameCol, hasName := cols["name"]
	parentCol, hasParent := cols["parent"]

	var out []hierarchy.Node
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv line %d", line)
		}

		n := hierarchy.Node{ID: strings.TrimSpace(rec[idCol])}
		if hasName && nameCol < len(rec) {
			n.Name = strings.TrimSpace(rec[nameCol])
		}
		if hasParent && parentCol < len(rec) {
			n.Parent = strings.TrimSpace(rec[parentCol])
		}
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "csv line %d", line)
		}
		out = append(out, n)
	}
	return out, nil
}
