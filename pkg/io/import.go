package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// Format selects the encoding of a tree document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadJSON decodes a JSON tree from r.
//
// The returned tree is normalized and validated. ReadJSON returns an error
// if the document is malformed or if a node ID is empty or duplicated.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*model.Node, error) {
	var root model.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(&root)
}

// ReadYAML decodes a YAML tree from r. It behaves like [ReadJSON].
func ReadYAML(r io.Reader) (*model.Node, error) {
	var root model.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(&root)
}

// Read decodes a tree in the given format.
func Read(r io.Reader, f Format) (*model.Node, error) {
	if f == FormatYAML {
		return ReadYAML(r)
	}
	return ReadJSON(r)
}

// Import reads the tree stored at path, choosing the decoder from the
// file extension.
func Import(path string) (*model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	root, err := Read(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func finish(root *model.Node) (*model.Node, error) {
	model.Normalize(root)
	if err := model.Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}
