package layout

import (
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/engine"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// Plan is the engine input derived from a diagram, plus the facts the later
// stages need about how it was derived.
type Plan struct {
	// Engine is the tree handed to the layout engine. Lanes, and pools of
	// flattened collaborations, are not part of it: their contents are
	// hoisted into the nearest container that is.
	Engine *engine.Node

	// Options are the root-level engine options after merging.
	Options engine.Options

	// Flattened holds the collaborations whose pools were flattened because
	// a sequence flow or data association crosses pools.
	Flattened map[string]bool

	// Hoisted holds every container that was left out of the engine tree.
	Hoisted map[string]bool

	// Lanes lists every lane in pre-order.
	Lanes []LaneRecord

	// MainFlow holds the nodes reachable from a start event over sequence
	// flows without passing through a boundary event.
	MainFlow map[string]bool

	// Branch holds the nodes reachable only through boundary events.
	Branch map[string]bool
}

// LaneRecord describes a lane removed from the engine tree.
type LaneRecord struct {
	ID       string
	PoolID   string
	ParentID string
	Order    int
	Depth    int
	// Members are the IDs of the lane's direct non-lane children.
	Members []string
}

// Prepare derives the engine input for root. Options are merged with
// userOptions taking precedence over the options declared on root, which
// take precedence over the engine defaults.
func Prepare(root *model.Node, userOptions map[string]string, cfg config.Layout) (*Plan, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is nil")
	}
	ix := model.NewIndex(root)

	merged := engine.MergeOptions(root.LayoutOptions, userOptions)
	opts, err := engine.ParseOptions(merged)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "layout options")
	}
	for _, n := range ix.Nodes() {
		if n == root || !n.IsContainer() || len(n.LayoutOptions) == 0 {
			continue
		}
		if _, err := opts.Apply(n.LayoutOptions); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "layout options of %s", n.ID)
		}
	}

	p := &Plan{
		Options:   opts,
		Flattened: make(map[string]bool),
		Hoisted:   make(map[string]bool),
		MainFlow:  MainFlow(ix),
	}
	p.Branch = BranchNodes(ix, p.MainFlow)

	for _, n := range ix.Nodes() {
		if crossesPools(ix, n) {
			p.Flattened[n.ID] = true
			for _, pool := range n.Children {
				if pool.Category == model.CategoryParticipant && len(pool.Children) > 0 {
					p.Hoisted[pool.ID] = true
				}
			}
		}
	}
	p.Lanes = collectLanes(ix)
	for _, l := range p.Lanes {
		p.Hoisted[l.ID] = true
	}

	b := &engineBuilder{plan: p, cfg: cfg}
	p.Engine = b.node(root)
	p.Engine.Options = engine.MergeOptions(p.Engine.Options, merged)
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if !e.Valid() || e.Category == model.EdgeMessageFlow {
			continue
		}
		p.Engine.Edges = append(p.Engine.Edges, &engine.Edge{ID: e.ID, Source: e.Source(), Target: e.Target()})
	}
	return p, nil
}

// isSequence reports whether e takes part in the control flow. Edges
// without a category are treated as sequence flows.
func isSequence(e *model.Edge) bool {
	return e.Category == model.EdgeSequenceFlow || e.Category == ""
}

// MainFlow returns the nodes reachable from any start event over sequence
// flows, never leaving through a boundary event.
func MainFlow(ix *model.Index) map[string]bool {
	main := make(map[string]bool)
	var queue []string
	for _, n := range ix.Nodes() {
		if n.Category == model.CategoryStartEvent && !ix.IsBoundaryEvent(n.ID) {
			main[n.ID] = true
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ref := range ix.Outgoing(id) {
			t := ref.Edge.Target()
			if !isSequence(ref.Edge) || ix.IsBoundaryEvent(ref.Edge.Source()) || main[t] {
				continue
			}
			if _, ok := ix.Node(t); !ok {
				continue
			}
			main[t] = true
			queue = append(queue, t)
		}
	}
	return main
}

// BranchNodes returns the nodes reachable from boundary events that are not
// on the main flow.
func BranchNodes(ix *model.Index, main map[string]bool) map[string]bool {
	branch := make(map[string]bool)
	var queue []string
	for _, n := range ix.Nodes() {
		if ix.IsBoundaryEvent(n.ID) {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ref := range ix.Outgoing(id) {
			t := ref.Edge.Target()
			if !isSequence(ref.Edge) || main[t] || branch[t] {
				continue
			}
			if _, ok := ix.Node(t); !ok {
				continue
			}
			branch[t] = true
			queue = append(queue, t)
		}
	}
	return branch
}

// crossesPools reports whether n is a collaboration with several pools and
// at least one sequence flow or data association between two of them.
func crossesPools(ix *model.Index, n *model.Node) bool {
	pools := 0
	for _, c := range n.Children {
		if c.Category == model.CategoryParticipant {
			pools++
		}
	}
	if pools < 2 {
		return false
	}
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if !isSequence(e) && !e.Category.IsDataAssociation() {
			continue
		}
		ps, pt := ix.PoolOf(e.Source()), ix.PoolOf(e.Target())
		if ps == nil || pt == nil || ps == pt {
			continue
		}
		if ix.Parent(ps.ID) == n && ix.Parent(pt.ID) == n {
			return true
		}
	}
	return false
}

func collectLanes(ix *model.Index) []LaneRecord {
	var out []LaneRecord
	var walk func(parent, pool *model.Node, depth int)
	walk = func(parent, pool *model.Node, depth int) {
		for _, c := range parent.Children {
			if c.Category != model.CategoryLane {
				continue
			}
			rec := LaneRecord{ID: c.ID, PoolID: pool.ID, ParentID: parent.ID, Order: c.Order, Depth: depth}
			for _, m := range c.Children {
				if m.Category != model.CategoryLane {
					rec.Members = append(rec.Members, m.ID)
				}
			}
			out = append(out, rec)
			walk(c, pool, depth+1)
		}
	}
	for _, n := range ix.Nodes() {
		if n.Category == model.CategoryParticipant {
			walk(n, n, 0)
		}
	}
	return out
}

// =============================================================================
// Engine tree
// =============================================================================

type engineBuilder struct {
	plan *Plan
	cfg  config.Layout
}

func (b *engineBuilder) node(n *model.Node) *engine.Node {
	en := &engine.Node{ID: n.ID, Width: n.Width, Height: n.Height}
	if n.IsBlackBox() {
		en.Width = max(en.Width, b.cfg.Pool.BlackBoxWidth)
		en.Height = max(en.Height, b.cfg.Pool.BlackBoxHeight)
	}
	if n.IsContainer() && len(n.Children) > 0 {
		en.Options = make(map[string]string, len(n.LayoutOptions)+1)
		for k, v := range n.LayoutOptions {
			en.Options[k] = v
		}
		if _, ok := en.Options[engine.OptionPadding]; !ok {
			en.Options[engine.OptionPadding] = enginePadding(containerPadding(n, b.cfg)).String()
		}
		b.addChildren(en, n)
		return en
	}
	en.Options = b.leafOptions(n)
	return en
}

func (b *engineBuilder) addChildren(en *engine.Node, n *model.Node) {
	for _, c := range n.Children {
		if b.plan.Hoisted[c.ID] {
			b.addChildren(en, c)
			continue
		}
		en.Children = append(en.Children, b.node(c))
		for _, be := range c.BoundaryEvents {
			en.Children = append(en.Children, &engine.Node{
				ID:      be.ID,
				Width:   be.Width,
				Height:  be.Height,
				Options: map[string]string{engine.OptionPriority: engine.FormatPriority(engine.PriorityBranch)},
			})
		}
	}
}

func (b *engineBuilder) leafOptions(n *model.Node) map[string]string {
	opts := make(map[string]string, 2)
	switch n.Category {
	case model.CategoryStartEvent:
		opts[engine.OptionLayerConstraint] = string(engine.LayerFirst)
	case model.CategoryEndEvent:
		opts[engine.OptionLayerConstraint] = string(engine.LayerLast)
	}
	switch {
	case b.plan.MainFlow[n.ID]:
		opts[engine.OptionPriority] = engine.FormatPriority(engine.PriorityMainFlow)
	case b.plan.Branch[n.ID]:
		opts[engine.OptionPriority] = engine.FormatPriority(engine.PriorityBranch)
	}
	return opts
}

// containerPadding returns the padding a container keeps around its
// children when it is fitted tightly.
func containerPadding(n *model.Node, cfg config.Layout) model.Padding {
	def := cfg.Container.ProcessPadding
	if n.Category.IsSubProcess() {
		def = cfg.Container.SubProcessPadding
	}
	return n.PaddingOr(model.Padding(def))
}

func enginePadding(p model.Padding) engine.Padding {
	return engine.Padding{Top: p.Top, Right: p.Right, Bottom: p.Bottom, Left: p.Left}
}
