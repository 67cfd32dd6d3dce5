package pipeline

import (
	stdio "io"

	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// Load reads the tree stored at path. Decoding and validation failures are
// reported as [errors.ErrCodeInvalidInput].
func Load(path string) (*model.Node, error) {
	if err := errors.ValidatePath(path, false); err != nil {
		return nil, err
	}
	tree, err := io.Import(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load tree")
	}
	if err := validateIDs(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Decode reads a tree from r in the given format.
func Decode(r stdio.Reader, f io.Format) (*model.Node, error) {
	tree, err := io.Read(r, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree")
	}
	if err := validateIDs(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// validateIDs checks node and edge IDs, which end up in graphviz node names
// and cache keys.
func validateIDs(tree *model.Node) error {
	var err error
	model.Walk(tree, func(n, _ *model.Node) bool {
		if err != nil {
			return false
		}
		if err = errors.ValidateElementID(n.ID); err != nil {
			return false
		}
		for _, e := range n.Edges {
			if err = errors.ValidateElementID(e.ID); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
