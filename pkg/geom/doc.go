// Package geom provides the small amount of planar geometry the layout
// pipeline needs: points, axis-aligned rectangles, segment intersection
// tests, diamond (gateway) boundaries and orthogonal polyline helpers.
//
// All coordinates use the screen convention: X grows to the right and Y grows
// downward. A [Rect] is described by its top-left corner plus width and height.
//
// # Tolerances
//
// Comparisons that decide whether two coordinates are "the same" use
// [Epsilon]. Intersection tests against rectangles are strict: a segment that
// only touches a rectangle's border does not intersect it. This matches how
// the edge fixer treats obstacles, where running along a node's border is
// acceptable but passing through its interior is not.
package geom
