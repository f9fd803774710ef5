package graph

import (
	"fmt"
	"slices"

	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/property"
)

// Boundary marks the proxy nodes that form the edge of a subgraph.
// Boundary is a node property, not a naming convention.
type Boundary uint8

const (
	// NoBoundary is an ordinary node.
	NoBoundary Boundary = iota
	// InputBoundary is a subgraph input proxy.
	InputBoundary
	// OutputBoundary is a subgraph output proxy.
	OutputBoundary
)

// Node is a vertex of the processing graph wrapping one operation.
type Node struct {
	arena   *Arena
	id      NodeID
	name    string
	op      Operation
	opName  string
	removed bool

	pads   []*Pad
	padIdx map[string]int

	// sources are the connections where this node is the sink, sinks the
	// connections where it is the source.
	sources []*Connection
	sinks   []*Connection

	parent       NodeID
	children     []NodeID
	proxies      []NodeID
	boundary     Boundary
	boundaryName string

	enabled   bool
	isRoot    bool
	haveRect  geom.Rect
	dirtyRect geom.Rect
	cache     *buffer.Cache

	dynamics map[ContextID]*Dynamic
}

// ID returns the node handle.
func (n *Node) ID() NodeID { return n.id }

// Arena returns the arena owning n.
func (n *Node) Arena() *Arena { return n.arena }

// Name returns the user supplied name, or "".
func (n *Node) Name() string { return n.name }

// SetName sets a name used in diagnostics and by graph loaders.
func (n *Node) SetName(name string) { n.name = name }

// String returns the name, or the operation name and handle.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("%s#%d", n.OperationName(), n.id)
}

// Operation returns the wrapped operation.
func (n *Node) Operation() Operation { return n.op }

// OperationName returns the registered name of the operation.
func (n *Node) OperationName() string {
	if n.opName != "" {
		return n.opName
	}
	if named, ok := n.op.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n.op)
}

func (n *Node) setOperation(o Operation) {
	n.op = o
	if o != nil {
		o.Attach(n)
	}
}

// Properties returns the operation's property store, or nil when the
// operation has no properties.
func (n *Node) Properties() *property.Store {
	if c, ok := n.op.(Configurable); ok {
		return c.Properties()
	}
	return nil
}

// Set sets a property of the operation and invalidates the area the
// node covered before and after the change.
func (n *Node) Set(name string, v any) error {
	store := n.Properties()
	if store == nil {
		return fmt.Errorf("%w: %q on %s", property.ErrUnknownProperty, name, n)
	}
	if err := store.Set(name, v); err != nil {
		return fmt.Errorf("%s: %w", n, err)
	}
	old := n.haveRect
	if n.op != nil {
		n.op.Prepare()
	}
	n.haveRect = n.definedRegion()
	n.Invalidate(old.Union(n.haveRect))
	return nil
}

// Get returns a property of the operation.
func (n *Node) Get(name string) (any, bool) {
	store := n.Properties()
	if store == nil {
		return nil, false
	}
	return store.Get(name)
}

// PropertyNames lists the operation's properties in declaration order.
func (n *Node) PropertyNames() []string {
	store := n.Properties()
	if store == nil {
		return nil
	}
	return store.Names()
}

// AddInputPad declares an input pad. Operations call it from Attach.
func (n *Node) AddInputPad(name string) *Pad {
	return n.addPad(name, Input)
}

// AddOutputPad declares an output pad. Operations call it from Attach.
func (n *Node) AddOutputPad(name string) *Pad {
	return n.addPad(name, Output)
}

func (n *Node) addPad(name string, dir Direction) *Pad {
	if i, ok := n.padIdx[name]; ok {
		p := n.pads[i]
		if p.dir != dir {
			slogger().Warn("graph: pad redeclared with another direction",
				"node", n, "pad", name, "direction", dir)
		}
		return p
	}
	p := &Pad{arena: n.arena, node: n.id, name: name, dir: dir, index: len(n.pads)}
	n.padIdx[name] = p.index
	n.pads = append(n.pads, p)
	return p
}

// ownPad returns the pad declared by n itself, ignoring proxies.
func (n *Node) ownPad(name string) *Pad {
	if i, ok := n.padIdx[name]; ok {
		return n.pads[i]
	}
	return nil
}

// Pad returns the pad called name. For a graph the pad of a proxy with
// that name takes precedence; it is owned by the proxy node and keeps the
// proxy's own pad name.
func (n *Node) Pad(name string) *Pad {
	if p := n.outputProxy(name); p != nil {
		return p.ownPad("output")
	}
	if p := n.inputProxy(name); p != nil {
		return p.ownPad("input")
	}
	return n.ownPad(name)
}

// Pads returns the pads declared by the operation.
func (n *Node) Pads() []*Pad {
	return slices.Clone(n.pads)
}

// InputPads returns the input pads in declaration order.
func (n *Node) InputPads() []*Pad {
	return n.padsOf(Input)
}

// OutputPads returns the output pads in declaration order.
func (n *Node) OutputPads() []*Pad {
	return n.padsOf(Output)
}

func (n *Node) padsOf(dir Direction) []*Pad {
	var out []*Pad
	for _, p := range n.pads {
		if p.dir == dir {
			out = append(out, p)
		}
	}
	return out
}

// IsSink reports whether n has no output pads.
func (n *Node) IsSink() bool {
	return len(n.padsOf(Output)) == 0 && !n.IsGraph()
}

// SourceConnections returns the connections feeding n.
func (n *Node) SourceConnections() []*Connection { return slices.Clone(n.sources) }

// SinkConnections returns the connections n feeds.
func (n *Node) SinkConnections() []*Connection { return slices.Clone(n.sinks) }

// Sources returns the distinct nodes connected to n's input pads.
func (n *Node) Sources() []*Node {
	var out []*Node
	for _, c := range n.sources {
		if s := c.Source(); s != nil && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// dependencies returns the nodes n depends on for evaluation: its
// sources, the sources of the owning graph for an input proxy, and the
// output proxies of a graph.
func (n *Node) dependencies() []*Node {
	deps := n.Sources()
	if n.boundary == InputBoundary {
		if parent := n.Parent(); parent != nil {
			for _, s := range parent.Sources() {
				if !slices.Contains(deps, s) {
					deps = append(deps, s)
				}
			}
		}
	}
	if n.IsGraph() {
		for _, id := range n.proxies {
			p := n.arena.Node(id)
			if p != nil && p.boundary == OutputBoundary && !slices.Contains(deps, p) {
				deps = append(deps, p)
			}
		}
	}
	return deps
}

// DependsOn implements Visitable.
func (n *Node) DependsOn() []Visitable {
	deps := n.dependencies()
	out := make([]Visitable, len(deps))
	for i, d := range deps {
		out[i] = d
	}
	return out
}

// Accept implements Visitable.
func (n *Node) Accept(v Visitor) { v.VisitNode(n) }

// NeedsVisiting implements Visitable.
func (n *Node) NeedsVisiting() bool { return !n.removed }

// HasSource reports whether x feeds n, directly or indirectly.
func (n *Node) HasSource(x *Node) bool {
	seen := make(map[*Node]bool)
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		for _, d := range cur.dependencies() {
			if d == x {
				return true
			}
			if !seen[d] {
				seen[d] = true
				if walk(d) {
					return true
				}
			}
		}
		return false
	}
	return walk(n)
}

// Producer returns the node and output pad feeding the input pad called
// pad. Output proxies resolve to their graph and the proxy name.
func (n *Node) Producer(pad string) (*Node, string) {
	p := n.Pad(pad)
	if p == nil || !p.IsInput() {
		return nil, ""
	}
	src := p.ConnectedTo()
	if src == nil {
		return nil, ""
	}
	node := src.Node()
	if node.boundary == OutputBoundary {
		if g := node.Parent(); g != nil {
			return g, node.boundaryName
		}
	}
	return node, src.name
}

// Consumers returns the input pads fed by the output pad called pad.
func (n *Node) Consumers(pad string) []*Pad {
	p := n.Pad(pad)
	if p == nil || !p.IsOutput() {
		return nil
	}
	out := make([]*Pad, 0, len(p.conns))
	for _, c := range p.conns {
		out = append(out, c.SinkPad())
	}
	return out
}

// Enabled reports whether the operation runs. A disabled node passes its
// "input" pad through unchanged.
func (n *Node) Enabled() bool { return n.enabled }

// SetEnabled enables or disables the operation.
func (n *Node) SetEnabled(enabled bool) {
	if n.enabled == enabled {
		return
	}
	n.enabled = enabled
	old := n.haveRect
	n.haveRect = n.definedRegion()
	n.Invalidate(old.Union(n.haveRect))
}

// HaveRect returns the defined region computed by the last Have pass.
func (n *Node) HaveRect() geom.Rect { return n.haveRect }

// DirtyRect returns the accumulated invalidated rectangle.
func (n *Node) DirtyRect() geom.Rect { return n.dirtyRect }

// IsRoot reports whether n is the root of a running evaluation.
func (n *Node) IsRoot() bool { return n.isRoot }

// Invalidate marks r as changed: r is added to the dirty rectangle, any
// cached pixels in r are discarded and the arena generation advances.
func (n *Node) Invalidate(r geom.Rect) {
	n.dirtyRect = n.dirtyRect.Union(r)
	if n.cache != nil && !r.IsEmpty() {
		n.cache.Invalidate(r)
	}
	n.arena.bump()
}

// Cache returns the node cache, or nil.
func (n *Node) Cache() *buffer.Cache { return n.cache }

// EnsureCache returns the node cache, creating it over the current
// defined region when missing.
func (n *Node) EnsureCache() *buffer.Cache {
	if n.cache == nil {
		n.cache = buffer.NewCache(n.haveRect)
	}
	return n.cache
}

// DropCache discards the node cache.
func (n *Node) DropCache() { n.cache = nil }

// InputHaveRect returns the defined region of the node feeding the input
// pad called pad, or an empty rectangle.
func (n *Node) InputHaveRect(pad string) geom.Rect {
	p := n.ownPad(pad)
	if p == nil {
		return geom.Rect{}
	}
	if src := p.ConnectedTo(); src != nil {
		return src.Node().haveRect
	}
	return geom.Rect{}
}

// BoundingBox returns the defined region of n's "output" pad, running a
// Have pass over the graph.
func (n *Node) BoundingBox() geom.Rect {
	return NewEvalMgr(n, "output").BoundingBox()
}

// Detect returns the node producing the pixel at (x, y), or nil.
func (n *Node) Detect(x, y int) *Node {
	if n.IsGraph() {
		if p := n.outputProxy("output"); p != nil {
			return p.Detect(x, y)
		}
	}
	if d, ok := n.op.(Detector); ok {
		return d.Detect(x, y)
	}
	if n.haveRect.Contains(geom.NewRect(x, y, 1, 1)) {
		return n
	}
	return nil
}

// definedRegion asks the operation for its defined region, honouring the
// enabled flag and graph forwarding.
func (n *Node) definedRegion() geom.Rect {
	if n.IsGraph() {
		if p := n.outputProxy("output"); p != nil {
			return p.haveRect
		}
	}
	if !n.enabled {
		return n.InputHaveRect("input")
	}
	if n.op == nil {
		return geom.Rect{}
	}
	return n.op.DefinedRegion()
}

func (n *Node) inputRequest(pad string, r geom.Rect) geom.Rect {
	if !n.enabled {
		if pad == "input" {
			return r
		}
		return geom.Rect{}
	}
	return n.op.InputRequest(pad, r)
}

func (n *Node) affectedRegion(pad string, r geom.Rect) geom.Rect {
	if !n.enabled {
		if pad == "input" {
			return r
		}
		return geom.Rect{}
	}
	return n.op.AffectedRegion(pad, r)
}
