// Package config holds the geometric constants of the placement pipeline.
//
// Every padding, gap and tolerance the layout stages use lives in [Layout].
// [Default] returns the built-in values; [Load] overlays a TOML file on top
// of them, so a file only needs to name the values it changes:
//
//	[lane]
//	extra_height = 60
//
//	[router]
//	cell_size = 5
package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Padding is a container's inner spacing.
type Padding struct {
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
	Left   float64 `toml:"left"`
}

// Layout collects all tunable constants.
type Layout struct {
	Container Container `toml:"container"`
	Lane      Lane      `toml:"lane"`
	Pool      Pool      `toml:"pool"`
	Boundary  Boundary  `toml:"boundary"`
	Artifact  Artifact  `toml:"artifact"`
	Group     Group     `toml:"group"`
	Gateway   Gateway   `toml:"gateway"`
	Router    Router    `toml:"router"`
	Message   Message   `toml:"message"`
}

// Container covers sub-processes and processes, which are fitted tightly
// around their children.
type Container struct {
	SubProcessPadding Padding `toml:"subprocess_padding"`
	ProcessPadding    Padding `toml:"process_padding"`
}

// Lane configures the lane arranger.
type Lane struct {
	HeaderWidth float64 `toml:"header_width"`
	ExtraHeight float64 `toml:"extra_height"`
	MinHeight   float64 `toml:"min_height"`

	// ContentInset is the horizontal space between the innermost lane
	// header and the leftmost node, and after the rightmost node.
	ContentInset float64 `toml:"content_inset"`
}

// Pool configures the pool arranger.
type Pool struct {
	HeaderWidth    float64 `toml:"header_width"`
	ExtraWidth     float64 `toml:"extra_width"`
	ExtraHeight    float64 `toml:"extra_height"`
	BlackBoxHeight float64 `toml:"blackbox_height"`
	BlackBoxWidth  float64 `toml:"blackbox_width"`
	Gap            float64 `toml:"gap"`
}

// Boundary configures boundary-branch relocation.
type Boundary struct {
	// Margin is the vertical distance between a host's bottom and the
	// relocated branch targets.
	Margin float64 `toml:"margin"`

	// Spacing is the horizontal gap between neighbouring branch slots.
	Spacing float64 `toml:"spacing"`

	// BranchGap separates consecutive nodes inside a branch.
	BranchGap float64 `toml:"branch_gap"`

	// GatewayGap is the horizontal gap kept before a converging gateway.
	GatewayGap float64 `toml:"gateway_gap"`
}

// Artifact configures artifact placement and association routing.
type Artifact struct {
	Gap             float64 `toml:"gap"`
	Spacing         float64 `toml:"spacing"`
	CrossingPenalty float64 `toml:"crossing_penalty"`
	Clearance       float64 `toml:"clearance"`
}

// Group configures group bounds.
type Group struct {
	Padding float64 `toml:"padding"`
}

// Gateway configures diamond snapping.
type Gateway struct {
	SnapTolerance float64 `toml:"snap_tolerance"`
}

// Router configures the grid path finder.
type Router struct {
	CellSize    float64 `toml:"cell_size"`
	Margin      float64 `toml:"margin"`
	Padding     float64 `toml:"padding"`
	BendPenalty int     `toml:"bend_penalty"`
	MaxCells    int     `toml:"max_cells"`
}

// Message configures message-flow routing between pools.
type Message struct {
	Clearance float64 `toml:"clearance"`
}

// Default returns the built-in constants.
func Default() Layout {
	return Layout{
		Container: Container{
			SubProcessPadding: Padding{Top: 30, Right: 20, Bottom: 20, Left: 20},
			ProcessPadding:    Padding{Top: 20, Right: 20, Bottom: 20, Left: 20},
		},
		Lane: Lane{
			HeaderWidth:  30,
			ExtraHeight:  40,
			MinHeight:    120,
			ContentInset: 20,
		},
		Pool: Pool{
			HeaderWidth:    30,
			ExtraWidth:     50,
			ExtraHeight:    40,
			BlackBoxHeight: 60,
			BlackBoxWidth:  600,
			Gap:            0,
		},
		Boundary: Boundary{
			Margin:     50,
			Spacing:    20,
			BranchGap:  50,
			GatewayGap: 50,
		},
		Artifact: Artifact{
			Gap:             20,
			Spacing:         15,
			CrossingPenalty: 1000,
			Clearance:       20,
		},
		Group:   Group{Padding: 10},
		Gateway: Gateway{SnapTolerance: 5},
		Router: Router{
			CellSize:    10,
			Margin:      10,
			Padding:     60,
			BendPenalty: 5,
			MaxCells:    250_000,
		},
		Message: Message{Clearance: 20},
	}
}

// Validate rejects values the stages cannot work with.
func (l Layout) Validate() error {
	if l.Router.CellSize <= 0 {
		return fmt.Errorf("router.cell_size must be positive, got %v", l.Router.CellSize)
	}
	if l.Router.MaxCells <= 0 {
		return fmt.Errorf("router.max_cells must be positive, got %d", l.Router.MaxCells)
	}
	if l.Router.BendPenalty < 0 {
		return fmt.Errorf("router.bend_penalty must not be negative, got %d", l.Router.BendPenalty)
	}
	for name, v := range map[string]float64{
		"lane.header_width":      l.Lane.HeaderWidth,
		"lane.extra_height":      l.Lane.ExtraHeight,
		"lane.min_height":        l.Lane.MinHeight,
		"lane.content_inset":     l.Lane.ContentInset,
		"pool.header_width":      l.Pool.HeaderWidth,
		"pool.gap":               l.Pool.Gap,
		"boundary.margin":        l.Boundary.Margin,
		"boundary.spacing":       l.Boundary.Spacing,
		"artifact.gap":           l.Artifact.Gap,
		"artifact.spacing":       l.Artifact.Spacing,
		"group.padding":          l.Group.Padding,
		"gateway.snap_tolerance": l.Gateway.SnapTolerance,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, v)
		}
	}
	return nil
}

// Load reads a TOML file and overlays it on [Default].
func Load(path string) (Layout, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Layout{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Layout{}, fmt.Errorf("load config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Layout{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over [Default].
func Parse(data string) (Layout, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Layout{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	return cfg, nil
}

// Encode writes l as TOML.
func (l Layout) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(l)
}
