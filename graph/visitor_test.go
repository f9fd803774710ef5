package graph

import (
	"slices"
	"testing"

	"github.com/gogpu/ggraph/geom"
)

// diamond builds src -> {left, right} -> mix.
func diamond(a *Arena) (src, left, right, mix *Node) {
	src, _ = newSource(a, geom.NewRect(0, 0, 16, 16), red)
	left, _ = newFilter(a)
	right, _ = newFilter(a)
	mix = a.NewNodeWithOperation(&mixOp{})
	Link(src, left)
	Link(src, right)
	Connect(mix, "input", left, "output")
	Connect(mix, "aux", right, "output")
	return src, left, right, mix
}

func visitedNodes(visits []Visitable) []*Node {
	var out []*Node
	for _, v := range visits {
		if n, ok := v.(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func TestDFS_TopologicalOrder(t *testing.T) {
	a := NewArena()
	_, _, _, mix := diamond(a)

	v := &BaseVisitor{}
	DFS(v, mix)
	order := visitedNodes(v.Visits())

	if len(order) != 4 {
		t.Fatalf("visited %d nodes, want 4", len(order))
	}
	if order[len(order)-1] != mix {
		t.Errorf("root visited at %d, want last", slices.Index(order, mix))
	}
	for i, n := range order {
		for _, dep := range n.Sources() {
			if j := slices.Index(order, dep); j < 0 || j > i {
				t.Errorf("%v visited before its dependency %v", n, dep)
			}
		}
	}
}

func TestBFS_DependentsFirst(t *testing.T) {
	a := NewArena()
	src, _, _, mix := diamond(a)

	v := &BaseVisitor{}
	BFS(v, mix)
	order := visitedNodes(v.Visits())

	if len(order) != 4 {
		t.Fatalf("visited %d nodes, want 4", len(order))
	}
	if order[0] != mix || order[3] != src {
		t.Errorf("order = %v, want root first and the shared source last", order)
	}
	for i, n := range order {
		for _, dep := range n.Sources() {
			if j := slices.Index(order, dep); j < i {
				t.Errorf("%v visited before its consumer %v", dep, n)
			}
		}
	}
}

func TestDFS_Pads(t *testing.T) {
	a := NewArena()
	src, left, _, mix := diamond(a)

	v := &BaseVisitor{}
	DFS(v, mix.Pad("output"))

	var pads []string
	for _, vis := range v.Visits() {
		pads = append(pads, vis.(*Pad).String())
	}
	// Every pad is visited once, the source output first.
	if len(pads) != 8 {
		t.Fatalf("visited %d pads, want 8: %v", len(pads), pads)
	}
	if pads[0] != src.Pad("output").String() {
		t.Errorf("first pad = %s, want the source output", pads[0])
	}
	if pads[len(pads)-1] != mix.Pad("output").String() {
		t.Errorf("last pad = %s, want the root output", pads[len(pads)-1])
	}
	if slices.Index(pads, left.Pad("output").String()) > slices.Index(pads, mix.Pad("input").String()) {
		t.Error("input pad visited before the output feeding it")
	}
}

func TestDFS_SkipsRemoved(t *testing.T) {
	a := NewArena()
	_, left, _, mix := diamond(a)
	left.removed = true

	v := &BaseVisitor{}
	DFS(v, mix)
	if slices.Contains(visitedNodes(v.Visits()), left) {
		t.Error("node not needing a visit was visited")
	}
}
