package pipeline

import (
	"encoding/json"
	"os"

	"github.com/pkoenig/boxtree/pkg/cache"
	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
	boxio "github.com/pkoenig/boxtree/pkg/io"
)

// =============================================================================
// Parse Stage
// =============================================================================

// Parse produces the flat node list from the configured input source.
// Inline nodes win over file input; file input is dispatched by extension.
func Parse(opts Options) ([]hierarchy.Node, error) {
	if len(opts.Nodes) > 0 {
		return opts.Nodes, nil
	}
	return boxio.Import(opts.Input)
}

// inputHash returns the content hash the forest cache key is derived from.
// Inline nodes hash their JSON encoding; file input hashes the raw bytes so
// edits to the file invalidate cached parses.
func inputHash(opts Options) (string, error) {
	if len(opts.Nodes) > 0 {
		data, err := marshalNodes(opts.Nodes)
		if err != nil {
			return "", err
		}
		return cache.Hash(data), nil
	}
	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s not found", opts.Input)
		}
		return "", errors.Wrap(errors.ErrCodeInternal, err, "read input %s", opts.Input)
	}
	return cache.Hash(raw), nil
}

// flattenForest recovers the flat node list from a built forest, in the
// forest's pre-order. This is the canonical form layout cache keys hash.
func flattenForest(roots []*hierarchy.TreeNode) []hierarchy.Node {
	var nodes []hierarchy.Node
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		nodes = append(nodes, n.Data)
	})
	return nodes
}

func marshalNodes(nodes []hierarchy.Node) ([]byte, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal nodes")
	}
	return data, nil
}

func unmarshalNodes(data []byte) ([]hierarchy.Node, error) {
	var nodes []hierarchy.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal cached nodes")
	}
	return nodes, nil
}
