// Package pipeline runs diagram conversions for the CLI and the HTTP server.
//
// A conversion reads a diagram tree, lays it out with the selected engine
// and the post-layout placement stages, and writes the positioned tree. The
// [Runner] adds result caching on top of [layout.Layouter], so both entry
// points share one code path.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	tree, err := pipeline.Load("order.json")
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, tree, pipeline.Options{Engine: "layered"})
//	if err != nil {
//	    return err
//	}
//	return pipeline.WriteResult(os.Stdout, res, io.FormatJSON, false)
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/engine"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// =============================================================================
// Defaults
// =============================================================================

// DefaultEngine is used when Options.Engine is empty.
const DefaultEngine = EngineLayered

// =============================================================================
// Options
// =============================================================================

// Options configures one conversion.
type Options struct {
	// Engine names the base layout engine: "layered" or "graphviz".
	Engine string `json:"engine,omitempty"`

	// LayoutOptions override the options declared on the tree root.
	LayoutOptions map[string]string `json:"layout_options,omitempty"`

	// Refresh bypasses cached results. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Layout *config.Layout `json:"-"`
	Debug  bool           `json:"-"`
	Logger *log.Logger    `json:"-"`
}

// SetDefaults fills in unset fields.
func (o *Options) SetDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Layout == nil {
		def := config.Default()
		o.Layout = &def
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and rejects unknown engines and invalid
// constants. Layout option values are checked by the layout itself.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout configuration")
	}
	return nil
}

// ValidateEngine checks that name is a registered engine.
func ValidateEngine(name string) error {
	if _, ok := engines[name]; !ok {
		return errors.New(errors.ErrCodeUnknownEngine, "unknown engine %q (must be one of: %s)",
			name, strings.Join(EngineNames(), ", "))
	}
	return nil
}

// LayoutKeyOpts returns the cache key inputs besides the tree.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	var sb strings.Builder
	if o.Layout != nil {
		_ = o.Layout.Encode(&sb)
	}
	return cache.LayoutKeyOpts{
		Engine:     o.Engine,
		Options:    o.LayoutOptions,
		ConfigHash: cache.Hash([]byte(sb.String())),
	}
}

func (o *Options) layouterConfig(eng engine.Engine) layout.Config {
	return layout.Config{Layout: o.Layout, Engine: eng, Debug: o.Debug}
}

// =============================================================================
// Result
// =============================================================================

// Result is a finished conversion.
type Result struct {
	// Tree is the positioned diagram.
	Tree *model.Node

	// TreeHash is the SHA-256 of the input tree's JSON encoding.
	TreeHash string

	Stats    Stats
	CacheHit bool
}

// Stats describes a conversion.
type Stats struct {
	Nodes      int
	Edges      int
	LayoutTime time.Duration
}

func countTree(root *model.Node) (nodes, edges int) {
	model.Walk(root, func(n, _ *model.Node) bool {
		nodes++
		edges += len(n.Edges)
		return true
	})
	return nodes, edges
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func describeOptions(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%s", k, m[k]))
	}
	return strings.Join(parts, " ")
}
