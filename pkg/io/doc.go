// Package io reads and writes BPMN diagram trees as JSON or YAML.
//
// # Format
//
// A tree is a nested object of nodes. Every node carries an id and,
// optionally, a category, a size, children, edges, boundary events and
// artifacts:
//
//	{
//	  "id": "root",
//	  "category": "process",
//	  "children": [
//	    {"id": "start", "category": "startEvent"},
//	    {"id": "review", "category": "userTask", "name": "Review order"},
//	    {"id": "end", "category": "endEvent"}
//	  ],
//	  "edges": [
//	    {"id": "f1", "sources": ["start"], "targets": ["review"]},
//	    {"id": "f2", "sources": ["review"], "targets": ["end"]}
//	  ]
//	}
//
// The YAML form uses the same field names. [Import] picks the decoder from
// the file extension: ".yaml" and ".yml" select YAML, everything else JSON.
//
// # Normalization
//
// Decoded trees are passed through [model.Normalize] and [model.Validate],
// so artifacts are hoisted, boundary events are attached to their host and
// missing sizes are defaulted before the tree reaches the layout stages.
//
// # Export
//
// [WriteJSON] and [WriteYAML] write the tree back in the same shape, now
// annotated with positions, sizes, edge routes and coordinate-space tags.
// Routes are written in the space their tag names; consumers that need
// absolute waypoints use [model.Index.RouteAbs].
package io
