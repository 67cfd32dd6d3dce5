package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// WriteJSON encodes the tree as indented JSON.
func WriteJSON(w io.Writer, root *model.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes the tree as YAML.
func WriteYAML(w io.Writer, root *model.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes the tree in the given format.
func Write(w io.Writer, root *model.Node, f Format) error {
	if f == FormatYAML {
		return WriteYAML(w, root)
	}
	return WriteJSON(w, root)
}

// Export writes the tree to path, choosing the encoder from the file
// extension.
func Export(root *model.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, root, FormatOf(path))
}
