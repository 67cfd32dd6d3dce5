// Package layout positions BPMN diagrams.
//
// A [Layouter] takes a diagram tree, hands a prepared copy to a generic
// layered [engine.Engine], and then corrects the engine's output for the
// rules the engine does not know about: main-flow alignment, boundary
// branches hanging under their host, artifacts next to their activity,
// lanes and pools stacked edge to edge, group bounds, gateway diamonds and
// edges that cut through unrelated nodes.
//
// All stages work on one deep copy of the input and share one
// [model.Index]. Positions are computed in absolute coordinates and written
// back relative to each node's parent; edge routes are stored in the
// coordinate space they were first tagged with.
package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/engine"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/model"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

// Config configures a [Layouter].
type Config struct {
	// Layout holds the geometric constants. The zero value is replaced by
	// [config.Default].
	Layout *config.Layout

	// Engine computes the base layered placement. Required.
	Engine engine.Engine

	// Debug enables per-stage tracing on the logger.
	Debug bool
}

// Layouter runs the placement pipeline.
type Layouter struct {
	cfg    config.Layout
	engine engine.Engine
	logger *log.Logger
}

// New returns a Layouter. A nil logger, or Debug off, discards stage traces.
func New(cfg Config, logger *log.Logger) *Layouter {
	lc := config.Default()
	if cfg.Layout != nil {
		lc = *cfg.Layout
	}
	if logger == nil || !cfg.Debug {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Layouter{cfg: lc, engine: cfg.Engine, logger: logger}
}

// Result is a positioned diagram.
type Result struct {
	Tree *model.Node
	Plan *Plan
}

// Layout positions a deep copy of tree. userOptions override the layout
// options declared on the tree root, which override the engine defaults.
func (l *Layouter) Layout(ctx context.Context, tree *model.Node, userOptions map[string]string) (*Result, error) {
	if tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is nil")
	}
	if l.engine == nil {
		return nil, errors.New(errors.ErrCodeInvalidOption, "no layout engine configured")
	}
	if err := l.cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout configuration")
	}

	root := tree.Clone()
	model.Normalize(root)
	if err := model.Validate(root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tree")
	}

	plan, err := Prepare(root, userOptions, l.cfg)
	if err != nil {
		return nil, err
	}

	if err := l.runEngine(ctx, plan); err != nil {
		return nil, err
	}

	ix := model.NewIndex(root)
	r := &run{cfg: l.cfg, plan: plan, ix: ix, log: l.logger, ctx: ctx}
	r.stage("merge", func() { MergeEngineResult(ix, plan, l.cfg) })
	r.stage("mainflow", func() { NormalizeMainFlow(ix, plan) })
	r.stage("boundary", func() { HandleBoundaryEvents(ix, plan, l.cfg) })
	r.stage("artifacts", func() { RepositionArtifacts(ix, CollectArtifactInfo(ix), l.cfg) })
	r.stage("lanes", func() {
		RegroupFlattenedPools(ix, plan, l.cfg)
		ArrangeLanes(ix, plan, l.cfg)
	})
	var poolErr error
	r.stage("pools", func() { poolErr = ArrangePools(ix, plan, l.cfg) })
	if poolErr != nil {
		return nil, poolErr
	}
	r.stage("groups", func() { RepositionGroups(ix, CollectGroupInfo(ix, l.cfg)) })
	r.stage("artifact-edges", func() { RecalculateArtifactEdges(ix, l.cfg) })
	r.stage("edgefix", func() {
		n := FixEdges(ix, l.cfg)
		r.log.Debug("rerouted crossing edges", "count", n)
	})
	r.stage("gateways", func() { AdjustGatewayEdges(ix, l.cfg) })
	r.stage("bounds", func() { RecomputeContainerBounds(ix, l.cfg) })

	return &Result{Tree: root, Plan: plan}, nil
}

func (l *Layouter) runEngine(ctx context.Context, plan *Plan) error {
	name := l.engine.Name()
	count := countEngineNodes(plan.Engine)
	observability.Pipeline().OnEngineStart(ctx, name, count)
	start := time.Now()
	err := l.engine.Layout(ctx, plan.Engine)
	observability.Pipeline().OnEngineComplete(ctx, name, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngine, err, "layout engine %s failed", name)
	}
	l.logger.Debug("engine finished", "engine", name, "nodes", count, "took", time.Since(start))
	return nil
}

func countEngineNodes(n *engine.Node) int {
	c := 1
	for _, ch := range n.Children {
		c += countEngineNodes(ch)
	}
	return c
}

// run carries the shared state of one pipeline execution.
type run struct {
	ctx  context.Context
	cfg  config.Layout
	plan *Plan
	ix   *model.Index
	log  *log.Logger
}

func (r *run) stage(name string, fn func()) {
	observability.Pipeline().OnStageStart(r.ctx, name)
	start := time.Now()
	fn()
	r.ix.Refresh()
	took := time.Since(start)
	observability.Pipeline().OnStageComplete(r.ctx, name, took)
	r.log.Debug("stage done", "stage", name, "took", took)
}
