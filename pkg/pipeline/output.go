package pipeline

import (
	"encoding/json"
	stdio "io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// Document is the encoding of a result that carries absolute routes next to
// the tree. The routes stored on the tree keep their coordinate space tags.
type Document struct {
	Tree           *model.Node             `json:"tree" yaml:"tree"`
	AbsoluteRoutes map[string][]geom.Point `json:"absoluteRoutes" yaml:"absoluteRoutes"`
}

// AbsoluteRoutes returns every routed edge's points in diagram coordinates,
// keyed by edge ID.
func AbsoluteRoutes(tree *model.Node) map[string][]geom.Point {
	ix := model.NewIndex(tree)
	out := make(map[string][]geom.Point)
	for _, ref := range ix.Edges() {
		if pts := ix.RouteAbs(ref); pts != nil && ref.Edge.ID != "" {
			out[ref.Edge.ID] = pts
		}
	}
	return out
}

// WriteResult encodes the positioned tree. With absolute set the output is
// a [Document].
func WriteResult(w stdio.Writer, res *Result, f io.Format, absolute bool) error {
	if !absolute {
		return io.Write(w, res.Tree, f)
	}
	doc := Document{Tree: res.Tree, AbsoluteRoutes: AbsoluteRoutes(res.Tree)}
	if f == io.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
