package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/model"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
)

const keyTypeLayout = "layout"

// Runner executes conversions with caching.
//
// A Runner holds no per-conversion state; one instance may serve
// concurrent conversions with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute lays out tree. The input is not modified. Results are cached by
// the hash of the input tree and the options; cache failures are logged and
// never fail the conversion.
func (r *Runner) Execute(ctx context.Context, tree *model.Node, opts Options) (*Result, error) {
	if tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is nil")
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := io.WriteJSON(&buf, tree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode tree")
	}
	res := &Result{TreeHash: cache.Hash(buf.Bytes())}
	key := r.Keyer.LayoutKey(res.TreeHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if out, ok := r.lookup(ctx, key); ok {
			res.Tree = out
			res.CacheHit = true
			res.Stats.Nodes, res.Stats.Edges = countTree(out)
			r.Logger.Debug("layout cache hit", "key", key)
			return res, nil
		}
	}

	eng, err := NewEngine(opts.Engine)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("laying out", "engine", opts.Engine, "options", describeOptions(opts.LayoutOptions))

	start := time.Now()
	out, err := layout.New(opts.layouterConfig(eng), opts.Logger).Layout(ctx, tree, opts.LayoutOptions)
	if err != nil {
		return nil, err
	}
	res.Tree = out.Tree
	res.Stats.LayoutTime = time.Since(start)
	res.Stats.Nodes, res.Stats.Edges = countTree(out.Tree)
	r.Logger.Info("computed layout",
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"duration", res.Stats.LayoutTime)

	r.store(ctx, key, out.Tree)
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*model.Node, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	var tree model.Node
	if err := json.Unmarshal(data, &tree); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeLayout)
	return &tree, true
}

func (r *Runner) store(ctx context.Context, key string, tree *model.Node) {
	data, err := json.Marshal(tree)
	if err != nil {
		r.Logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
