package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/property"
)

// multiOutOp has the output pads "old" and "new".
type multiOutOp struct {
	sourceOp
}

func (o *multiOutOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddOutputPad("old")
	n.AddOutputPad("new")
}

func TestConnect_ReplacesOccupant(t *testing.T) {
	a := NewArena()
	sink, _ := newFilter(a)
	source := a.NewNodeWithOperation(&multiOutOp{})
	source2 := a.NewNodeWithOperation(&multiOutOp{})

	if !Connect(sink, "input", source, "old") {
		t.Fatal("first Connect failed")
	}
	if !Connect(sink, "input", source2, "new") {
		t.Fatal("second Connect failed")
	}

	in := sink.Pad("input")
	if n := len(in.Connections()); n != 1 {
		t.Fatalf("input pad has %d connections, want 1", n)
	}
	if got := in.ConnectedTo(); got != source2.Pad("new") {
		t.Errorf("input connected to %v, want %v", got, source2.Pad("new"))
	}
	if n := len(source.SinkConnections()); n != 0 {
		t.Errorf("old source keeps %d sink connections", n)
	}
	if n := len(source.Pad("old").Connections()); n != 0 {
		t.Errorf("old source pad keeps %d connections", n)
	}
}

func TestConnect_Rejects(t *testing.T) {
	// Each case builds its nodes and returns the failing Connect call.
	tests := []struct {
		name  string
		build func(t *testing.T, a *Arena) func() bool
	}{
		{"missing sink pad", func(t *testing.T, a *Arena) func() bool {
			sink, _ := newFilter(a)
			src, _ := newSource(a, geom.NewRect(0, 0, 1, 1), red)
			return func() bool { return Connect(sink, "nope", src, "output") }
		}},
		{"missing source pad", func(t *testing.T, a *Arena) func() bool {
			sink, _ := newFilter(a)
			src, _ := newSource(a, geom.NewRect(0, 0, 1, 1), red)
			return func() bool { return Connect(sink, "input", src, "nope") }
		}},
		{"output used as sink", func(t *testing.T, a *Arena) func() bool {
			sink, _ := newFilter(a)
			src, _ := newSource(a, geom.NewRect(0, 0, 1, 1), red)
			return func() bool { return Connect(sink, "output", src, "output") }
		}},
		{"input used as source", func(t *testing.T, a *Arena) func() bool {
			sink, _ := newFilter(a)
			src, _ := newFilter(a)
			return func() bool { return Connect(sink, "input", src, "input") }
		}},
		{"self loop", func(t *testing.T, a *Arena) func() bool {
			n, _ := newFilter(a)
			return func() bool { return Link(n, n) }
		}},
		{"indirect loop", func(t *testing.T, a *Arena) func() bool {
			x, _ := newFilter(a)
			y, _ := newFilter(a)
			z, _ := newFilter(a)
			if !LinkMany(x, y, z) {
				t.Fatal("LinkMany failed")
			}
			return func() bool { return Link(z, x) }
		}},
		{"different arenas", func(t *testing.T, a *Arena) func() bool {
			sink, _ := newFilter(a)
			src, _ := newSource(NewArena(), geom.NewRect(0, 0, 1, 1), red)
			return func() bool { return Link(src, sink) }
		}},
		{"graph sink with bad source pad", func(t *testing.T, a *Arena) func() bool {
			g := a.NewNode(NopOperation)
			g.NewChild(NopOperation)
			src, _ := newSource(a, geom.NewRect(0, 0, 1, 1), red)
			return func() bool { return Connect(g, "fresh", src, "nope") }
		}},
		{"graph source with bad sink pad", func(t *testing.T, a *Arena) func() bool {
			g := a.NewNode(NopOperation)
			g.NewChild(NopOperation)
			sink, _ := newFilter(a)
			return func() bool { return Connect(sink, "nope", g, "fresh") }
		}},
		{"loop through graph proxies", func(t *testing.T, a *Arena) func() bool {
			g := a.NewNode(NopOperation)
			inner := g.NewChild(NopOperation)
			f, _ := newFilter(a)
			if !Connect(inner, "input", g.InputProxy("input"), "output") ||
				!Connect(g.OutputProxy("output"), "input", inner, "output") ||
				!Link(g, f) {
				t.Fatal("building graph failed")
			}
			return func() bool { return Connect(g, "input", f, "output") }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena()
			connect := tt.build(t, a)
			nodes, gen := a.Len(), a.Generation()
			if connect() {
				t.Fatal("Connect succeeded, want failure")
			}
			if got := a.Len(); got != nodes {
				t.Errorf("arena has %d nodes after failed Connect, want %d", got, nodes)
			}
			if got := a.Generation(); got != gen {
				t.Errorf("generation changed from %d to %d", gen, got)
			}
			for _, n := range a.Nodes() {
				for _, p := range n.Pads() {
					if p.IsInput() && len(p.Connections()) > 1 {
						t.Errorf("%v has %d connections", p, len(p.Connections()))
					}
				}
			}
		})
	}
}

func TestConnect_SamePairIsNoop(t *testing.T) {
	a := NewArena()
	src, _ := newSource(a, geom.NewRect(0, 0, 4, 4), red)
	sink, _ := newFilter(a)

	if !Link(src, sink) || !Link(src, sink) {
		t.Fatal("Link failed")
	}
	if n := len(src.SinkConnections()); n != 1 {
		t.Errorf("source has %d sink connections, want 1", n)
	}
}

func TestDisconnect(t *testing.T) {
	a := NewArena()
	src, _ := newSource(a, geom.NewRect(0, 0, 4, 4), red)
	sink, _ := newFilter(a)

	if Disconnect(sink, "input") {
		t.Error("Disconnect of an empty pad reported true")
	}
	Link(src, sink)
	if !Disconnect(sink, "input") {
		t.Fatal("Disconnect failed")
	}
	if sink.Pad("input").Connection() != nil || len(sink.SourceConnections()) != 0 || len(src.SinkConnections()) != 0 {
		t.Error("connection still recorded after Disconnect")
	}
	if Disconnect(sink, "input") {
		t.Error("second Disconnect reported true")
	}
}

func TestSingleConsumerPerInput(t *testing.T) {
	a := NewArena()
	var nodes []*Node
	for range 5 {
		n, _ := newFilter(a)
		nodes = append(nodes, n)
	}
	src, _ := newSource(a, geom.NewRect(0, 0, 4, 4), red)
	nodes = append(nodes, src)

	// A fixed pseudo-random edit sequence.
	seq := []struct{ sink, source int }{
		{0, 5}, {1, 0}, {1, 5}, {2, 1}, {2, 0}, {3, 2}, {0, 3}, {4, 5}, {4, 4}, {3, 5}, {0, 1},
	}
	for i, s := range seq {
		Link(nodes[s.source], nodes[s.sink])
		if i%4 == 3 {
			Disconnect(nodes[s.sink], "input")
		}
		for _, n := range nodes {
			for _, p := range n.Pads() {
				if p.IsInput() == p.IsOutput() {
					t.Fatalf("%v: direction invariant broken", p)
				}
				if p.IsInput() && len(p.Connections()) > 1 {
					t.Fatalf("step %d: %v has %d connections", i, p, len(p.Connections()))
				}
			}
		}
	}
}

func TestArena_NewNodeUnknownFallsBack(t *testing.T) {
	a := NewArena()
	n := a.NewNode("does-not-exist")
	if got := n.OperationName(); got != NopOperation {
		t.Errorf("OperationName() = %q, want %q", got, NopOperation)
	}
	if n.Pad("input") == nil || n.Pad("output") == nil {
		t.Error("fallback node lacks pass-through pads")
	}
	if !slices.Contains(OperationNames(), NopOperation) {
		t.Errorf("OperationNames() = %v, want it to contain nop", OperationNames())
	}
	if _, err := NewOperation("does-not-exist"); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("NewOperation() error = %v, want ErrUnknownOperation", err)
	}
}

func TestArena_Remove(t *testing.T) {
	a := NewArena()
	src, _ := newSource(a, geom.NewRect(0, 0, 4, 4), red)
	mid, _ := newFilter(a)
	sink, _ := newFilter(a)
	LinkMany(src, mid, sink)

	gen := a.Generation()
	a.Remove(mid)

	if a.Node(mid.ID()) != nil {
		t.Error("removed node still addressable")
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
	if len(src.SinkConnections()) != 0 || sink.Pad("input").Connection() != nil {
		t.Error("removed node left connections behind")
	}
	if a.Generation() == gen {
		t.Error("Generation did not advance")
	}
	if Link(src, mid) {
		t.Error("Link to a removed node succeeded")
	}
}

func TestNode_SetProperty(t *testing.T) {
	a := NewArena()
	n := a.NewNodeWithOperation(newSizedOp())
	n.BoundingBox()

	gen := a.Generation()
	if err := n.Set("width", "20"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	if diff := cmp.Diff(geom.NewRect(0, 0, 20, 10), n.HaveRect()); diff != "" {
		t.Errorf("HaveRect mismatch (-want +got):\n%s", diff)
	}
	if a.Generation() == gen {
		t.Error("Set did not invalidate")
	}
	if v, _ := n.Get("width"); v != 20 {
		t.Errorf("Get(width) = %v, want 20", v)
	}
	if diff := cmp.Diff([]string{"width", "height"}, n.PropertyNames()); diff != "" {
		t.Errorf("PropertyNames mismatch (-want +got):\n%s", diff)
	}

	if err := n.Set("depth", 1); !errors.Is(err, property.ErrUnknownProperty) {
		t.Errorf("Set(depth) = %v, want ErrUnknownProperty", err)
	}
	nop := a.NewNode(NopOperation)
	if err := nop.Set("width", 1); !errors.Is(err, property.ErrUnknownProperty) {
		t.Errorf("Set on nop = %v, want ErrUnknownProperty", err)
	}
}

func TestNode_ProducerAndConsumers(t *testing.T) {
	a := NewArena()
	src, _ := newSource(a, geom.NewRect(0, 0, 4, 4), red)
	x, _ := newFilter(a)
	y, _ := newFilter(a)
	Link(src, x)
	Link(src, y)

	if p, pad := x.Producer("input"); p != src || pad != "output" {
		t.Errorf("Producer() = %v, %q", p, pad)
	}
	consumers := src.Consumers("output")
	if len(consumers) != 2 || consumers[0].Node() != x || consumers[1].Node() != y {
		t.Errorf("Consumers() = %v", consumers)
	}
	if p, _ := src.Producer("output"); p != nil {
		t.Error("Producer of an output pad should be nil")
	}
}

// buildSubgraph returns src -> g(inner) -> out where g is a graph.
func buildSubgraph(t *testing.T, a *Arena) (src, g, inner, out *Node) {
	t.Helper()
	src, _ = newSource(a, geom.NewRect(0, 0, 8, 8), red)
	g = a.NewNode(NopOperation)
	g.SetName("group")
	inner = a.NewNodeWithOperation(&paintOp{color: green})
	if !g.AddChild(inner) {
		t.Fatal("AddChild failed")
	}
	if !Connect(inner, "input", g.InputProxy("input"), "output") {
		t.Fatal("connect inner to input proxy failed")
	}
	if !Connect(g.OutputProxy("output"), "input", inner, "output") {
		t.Fatal("connect output proxy failed")
	}
	out, _ = newFilter(a)
	if !Link(src, g) || !Link(g, out) {
		t.Fatal("linking the graph failed")
	}
	return src, g, inner, out
}

func TestSubgraph_Proxies(t *testing.T) {
	a := NewArena()
	src, g, inner, out := buildSubgraph(t, a)

	if !g.IsGraph() {
		t.Fatal("node with children is not a graph")
	}
	in := g.InputProxy("input")
	if in.Boundary() != InputBoundary || in.Parent() != g {
		t.Errorf("input proxy boundary = %v parent = %v", in.Boundary(), in.Parent())
	}
	if g.OutputProxy("output").Boundary() != OutputBoundary {
		t.Error("output proxy boundary not set")
	}
	if g.InputProxy("input") != in {
		t.Error("InputProxy is not memoised")
	}
	if got := g.Pad("input").Node(); got != in {
		t.Errorf("graph input pad owned by %v, want the proxy", got)
	}
	if p, pad := out.Producer("input"); p != g || pad != "output" {
		t.Errorf("Producer() = %v, %q, want the graph", p, pad)
	}
	if !slices.Contains(in.Sources(), src) {
		t.Error("input proxy does not depend on the external source")
	}
	if !out.HasSource(inner) || !out.HasSource(src) {
		t.Error("dependencies do not cross the subgraph boundary")
	}
	if Link(out, g) {
		t.Error("loop through the subgraph accepted")
	}

	g.RemoveChild(inner)
	if !g.IsGraph() {
		t.Error("graph with proxies left should stay a graph")
	}
}

func TestNode_Detect(t *testing.T) {
	a := NewArena()
	_, g, inner, _ := buildSubgraph(t, a)
	g.BoundingBox()

	if got := g.Detect(2, 2); got != inner {
		t.Errorf("Detect(2, 2) = %v, want %v", got, inner)
	}
	if got := g.Detect(20, 20); got != nil {
		t.Errorf("Detect(20, 20) = %v, want nil", got)
	}
}
