// Package pkg provides the libraries behind bpmnlayout, a layout service for
// BPMN process diagrams.
//
// # Overview
//
// A generic layered graph engine knows nothing about BPMN. It puts nodes in
// layers and containers around their children, but it does not know that
// boundary branches hang under their host, that lanes tile a pool, or that
// an edge must end on a gateway's diamond. bpmnlayout runs such an engine
// and then corrects its output in a fixed sequence of placement stages.
//
// # Architecture
//
// The data flow through bpmnlayout:
//
//	JSON / YAML diagram tree
//	         ↓
//	    [io] package (decode, normalize, validate)
//	         ↓
//	    [layout] package (prepare engine input)
//	         ↓
//	    [engine] package (layered or graphviz base layout)
//	         ↓
//	    [layout] package (placement stages, edge routing)
//	         ↓
//	    positioned tree (JSON / YAML)
//
// [pipeline] wraps this flow with result caching and is shared by the CLI
// and the HTTP server.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/bpmnlayout/pkg/engine/layered"
//	    "github.com/matzehuels/bpmnlayout/pkg/io"
//	    "github.com/matzehuels/bpmnlayout/pkg/layout"
//	)
//
//	tree, _ := io.Import("order.yaml")
//	res, _ := layout.New(layout.Config{Engine: layered.New()}, nil).
//	    Layout(context.Background(), tree, nil)
//	_ = io.WriteJSON(os.Stdout, res.Tree)
//
// # Main Packages
//
// ## Diagram Model
//
// [model] - The diagram tree: nodes, edges, routes and coordinate spaces,
// plus [model.Index] for absolute positions.
//
// [geom] - Points, rectangles, gateway diamonds and polyline tests.
//
// [io] - JSON and YAML encoding of diagram trees.
//
// ## Layout
//
// [engine] - The base engine boundary and typed layout options.
//
// [engine/layered] - Sugiyama-style layered engine built on [dag].
//
// [engine/graphviz] - Base engine backed by Graphviz dot.
//
// [layout] - The placement stages and the grid edge router.
//
// [config] - Every padding, gap and tolerance the stages use, loadable from
// TOML.
//
// ## Infrastructure
//
// [pipeline] - Load, lay out and write, with caching.
//
// [cache] - Result caches on the filesystem, Redis or MongoDB.
//
// [errors] - Error codes shared by the CLI and the HTTP server.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
// Run tests:
//
//	go test ./...                                  # All tests
//	go test ./pkg/layout/...                       # Specific package
//	go test -run Example ./pkg/...                 # Examples only
//	BPMNLAYOUT_TEST_REDIS=redis://localhost:6379 go test ./pkg/cache
//
// [model]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/model
// [geom]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/geom
// [io]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/io
// [engine]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/engine
// [engine/layered]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/engine/layered
// [engine/graphviz]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/engine/graphviz
// [dag]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/dag
// [layout]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/layout
// [config]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bpmnlayout/pkg/observability
package pkg
