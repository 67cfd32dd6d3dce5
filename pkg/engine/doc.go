// Package engine defines the layered layout engine boundary.
//
// An [Engine] receives a tree of sized nodes and edges and annotates it with
// coordinates. Node X and Y are relative to the parent's top-left corner;
// container sizes are computed from their content plus padding. Edge routes
// are not produced: the placement stages route every edge themselves.
//
// Most engines only know how to place one flat level of nodes. They
// implement [LevelLayouter] and are lifted to full trees by
// [NewHierarchical], which lays out containers bottom-up so every level sees
// its children's final sizes.
//
// # Options
//
// Options travel as string maps keyed by the Option* constants, exactly as
// they appear on diagram nodes. [ParseOptions] turns a map into typed
// [Options]; per-node values such as [OptionPriority] and
// [OptionLayerConstraint] are read with [ParsePriority] and
// [ParseLayerConstraint].
//
//	opts, err := engine.ParseOptions(engine.MergeOptions(defaults, graph, call))
package engine
