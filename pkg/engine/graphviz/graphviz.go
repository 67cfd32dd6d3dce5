// Package graphviz lays out levels with the Graphviz dot algorithm.
//
// Each level is written as a DOT digraph with fixed-size box nodes, rendered
// to the annotated "dot" output format, and the node centres are read back
// from the pos attributes. Graphviz runs in-process through the WebAssembly
// build bundled with go-graphviz, so no system installation is needed.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bpmnlayout/pkg/engine"
)

// Name is the engine name used in options and on the command line.
const Name = "graphviz"

// pointsPerInch converts pixels to the inch units of DOT sizes.
const pointsPerInch = 72.0

// mainFlowWeight is the dot edge weight given to main-flow edges.
const mainFlowWeight = 100

// RenderFunc turns a DOT document into the annotated dot output.
type RenderFunc func(ctx context.Context, dot string) ([]byte, error)

// Layouter implements [engine.LevelLayouter] on top of Graphviz.
type Layouter struct {
	render RenderFunc
}

// New returns a Graphviz engine for whole trees.
func New() engine.Engine {
	return engine.NewHierarchical(&Layouter{render: Render})
}

// NewWithRenderer returns an engine that uses r instead of the bundled
// Graphviz.
func NewWithRenderer(r RenderFunc) engine.Engine {
	return engine.NewHierarchical(&Layouter{render: r})
}

// Name implements [engine.LevelLayouter].
func (l *Layouter) Name() string { return Name }

// LayoutLevel implements [engine.LevelLayouter].
func (l *Layouter) LayoutLevel(ctx context.Context, lvl *engine.Level) error {
	if len(lvl.Nodes) == 0 {
		return nil
	}
	dot, ids := ToDOT(lvl)
	out, err := l.render(ctx, dot)
	if err != nil {
		return err
	}
	centres, err := ParsePositions(out)
	if err != nil {
		return err
	}
	for i, n := range lvl.Nodes {
		c, ok := centres[ids[i]]
		if !ok {
			return fmt.Errorf("graphviz: no position for node %s", n.ID)
		}
		n.X = c[0] - n.Width/2
		n.Y = -c[1] - n.Height/2
	}
	return nil
}

// ToDOT writes lvl as a DOT digraph. Nodes are renamed n0, n1, ... in level
// order; the returned slice maps the index of each level node to its DOT
// name.
func ToDOT(lvl *engine.Level) (string, []string) {
	o := lvl.Options
	ids := make([]string, len(lvl.Nodes))
	dotID := make(map[*engine.Node]string, len(lvl.Nodes))
	for i, n := range lvl.Nodes {
		ids[i] = "n" + strconv.Itoa(i)
		dotID[n] = ids[i]
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(o.Direction))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(o.NodeNode))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(o.BetweenLayers))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	var first, last []string
	for i, n := range lvl.Nodes {
		attrs := []string{
			"width=" + inches(n.Width),
			"height=" + inches(n.Height),
		}
		if n.Priority() >= engine.PriorityMainFlow {
			attrs = append(attrs, "group=main")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", ids[i], strings.Join(attrs, ", "))
		switch n.LayerConstraint() {
		case engine.LayerFirst:
			first = append(first, ids[i])
		case engine.LayerLast:
			last = append(last, ids[i])
		}
	}
	if len(first) > 0 {
		fmt.Fprintf(&buf, "  { rank=min; %s; }\n", strings.Join(first, "; "))
	}
	if len(last) > 0 {
		fmt.Fprintf(&buf, "  { rank=max; %s; }\n", strings.Join(last, "; "))
	}

	buf.WriteString("\n")
	for _, e := range lvl.Edges {
		if e.Source == e.Target {
			continue
		}
		w := max(1, int(e.Priority))
		if e.Priority >= engine.PriorityMainFlow {
			w = mainFlowWeight
		}
		fmt.Fprintf(&buf, "  %s -> %s [weight=%d];\n", dotID[e.Source], dotID[e.Target], w)
	}
	buf.WriteString("}\n")
	return buf.String(), ids
}

func rankdir(d engine.Direction) string {
	switch d {
	case engine.DirectionLeft:
		return "RL"
	case engine.DirectionDown:
		return "TB"
	case engine.DirectionUp:
		return "BT"
	default:
		return "LR"
	}
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

var (
	nodeBlockRe = regexp.MustCompile(`(?ms)^\s*(n\d+)\s*\[(.*?)\];`)
	posRe       = regexp.MustCompile(`pos="(-?[0-9.e+]+),(-?[0-9.e+]+)"`)
)

// ParsePositions extracts node centres, in points with y pointing up, from
// Graphviz dot output.
func ParsePositions(out []byte) (map[string][2]float64, error) {
	res := make(map[string][2]float64)
	for _, m := range nodeBlockRe.FindAllSubmatch(out, -1) {
		p := posRe.FindSubmatch(m[2])
		if p == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(p[1]), 64)
		y, errY := strconv.ParseFloat(string(p[2]), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("graphviz: bad position %q for %s", p[0], m[1])
		}
		res[string(m[1])] = [2]float64{x, y}
	}
	return res, nil
}

// Render runs the bundled Graphviz on dot and returns the annotated dot
// output.
func Render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
