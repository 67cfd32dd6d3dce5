package tree_test

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/layout/tree"
)

func ExampleLayout() {
	root := &tree.Node{ID: "be", Width: 36, Height: 36, Children: []*tree.Node{
		{ID: "handle", Width: 100, Height: 80},
	}}
	tree.Layout(root, tree.Options{Direction: tree.LeftToRight, LevelGap: 50})
	for _, n := range []*tree.Node{root, root.Children[0]} {
		fmt.Printf("%s (%g,%g)\n", n.ID, n.X, n.Y)
	}
	// Output:
	// be (0,-18)
	// handle (86,-40)
}

func ExampleBuildTree() {
	sizes := map[string]tree.Size{"a": {Width: 100, Height: 80}, "b": {Width: 100, Height: 80}}
	root := tree.BuildTree("a", sizes, map[string][]string{"a": {"b"}, "b": {"a"}})
	root.Walk(func(n *tree.Node) {
		fmt.Println(n.ID, n.Repeat)
	})
	// Output:
	// a false
	// b false
	// a true
}
