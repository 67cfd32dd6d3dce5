package pipeline

import (
	"maps"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/engine"
	"github.com/matzehuels/bpmnlayout/pkg/engine/graphviz"
	"github.com/matzehuels/bpmnlayout/pkg/engine/layered"
)

// Engine names.
const (
	EngineLayered  = "layered"
	EngineGraphviz = "graphviz"
)

var engines = map[string]func() engine.Engine{
	EngineLayered:  layered.New,
	EngineGraphviz: graphviz.New,
}

// EngineNames returns the registered engine names, sorted.
func EngineNames() []string {
	return slices.Sorted(maps.Keys(engines))
}

// NewEngine returns a fresh instance of the named engine.
func NewEngine(name string) (engine.Engine, error) {
	if err := ValidateEngine(name); err != nil {
		return nil, err
	}
	return engines[name](), nil
}
