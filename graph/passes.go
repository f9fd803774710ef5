package graph

import (
	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
)

// HaveVisitor computes every node's defined region. Run it with DFS so
// inputs are prepared before their consumers.
type HaveVisitor struct {
	BaseVisitor
}

// VisitNode implements Visitor.
func (v *HaveVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	if n.op == nil {
		slogger().Warn("graph: have: node without operation", "node", n)
		return
	}
	n.op.Prepare()
	n.haveRect = n.definedRegion()
}

// NeedVisitor propagates the requested region from the root toward the
// sources. Run it with BFS after seeding the root's need rectangle, so
// every consumer contributes before a node passes its request on.
type NeedVisitor struct {
	BaseVisitor
	ID ContextID
}

// VisitNode implements Visitor.
func (v *NeedVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	if n.op == nil {
		slogger().Warn("graph: need: node without operation", "node", n)
		return
	}
	d := n.Dynamic(v.ID)
	if d.NeedRect.IsEmpty() {
		return
	}
	if n.cache != nil && n.cache.IsValid(d.NeedRect) {
		d.Cached = true
		return
	}

	if n.IsGraph() {
		if p := n.outputProxy("output"); p != nil {
			pd := p.Dynamic(v.ID)
			pd.NeedRect = pd.NeedRect.Union(d.NeedRect)
		}
		return
	}

	for _, pad := range n.InputPads() {
		src := pad.ConnectedTo()
		if src == nil {
			continue
		}
		source := src.Node()
		r := n.inputRequest(pad.name, d.NeedRect).Intersect(source.haveRect)
		sd := source.Dynamic(v.ID)
		sd.NeedRect = sd.NeedRect.Union(r)
	}
}

// CRVisitor computes result rectangles and consumer counts. Run it with
// BFS after the Need pass.
type CRVisitor struct {
	BaseVisitor
	ID ContextID
}

// VisitNode implements Visitor.
func (v *CRVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	if n.op == nil {
		slogger().Warn("graph: cr: node without operation", "node", n)
		return
	}
	d := n.Dynamic(v.ID)
	d.ResultRect = n.haveRect.Intersect(d.NeedRect)
	d.Refs = participatingSinks(n, v.ID)
	if n.boundary == OutputBoundary {
		if g := n.Parent(); g != nil {
			d.Refs += participatingSinks(g, v.ID)
		}
	}
}

// participatingSinks counts the connections from n to consumers that take
// part in context id.
func participatingSinks(n *Node, id ContextID) int {
	count := 0
	for _, c := range n.sinks {
		if _, ok := c.Sink().LookupDynamic(id); ok {
			count++
		}
	}
	return count
}

// DirtyVisitor propagates invalidated rectangles downstream: a node's
// dirty rectangle grows by its sources' dirty rectangles mapped through
// the operation. Caches are invalidated over the result. Run it with DFS.
type DirtyVisitor struct {
	BaseVisitor
}

// VisitNode implements Visitor.
func (v *DirtyVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	if n.op == nil {
		slogger().Warn("graph: dirty: node without operation", "node", n)
		return
	}
	dirty := n.dirtyRect
	for _, pad := range n.InputPads() {
		src := pad.ConnectedTo()
		if src == nil {
			continue
		}
		if sd := src.Node().dirtyRect; !sd.IsEmpty() {
			dirty = dirty.Union(n.affectedRegion(pad.name, sd))
		}
	}
	if n.IsGraph() {
		for _, p := range n.Children() {
			if p.boundary == OutputBoundary {
				dirty = dirty.Union(p.dirtyRect)
			}
		}
	}
	n.dirtyRect = dirty
	if n.cache != nil && !dirty.IsEmpty() {
		n.cache.Invalidate(dirty)
	}
}

// CleanVisitor clears the dirty rectangles consumed by a Dirty pass.
type CleanVisitor struct {
	BaseVisitor
}

// VisitNode implements Visitor.
func (v *CleanVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	n.dirtyRect = geom.Rect{}
}

// Refresh propagates the pending dirty rectangles of everything feeding
// roots, invalidating caches along the way, and then clears them.
func Refresh(roots ...*Node) {
	for _, r := range roots {
		DFS(&DirtyVisitor{}, r)
	}
	for _, r := range roots {
		DFS(&CleanVisitor{}, r)
	}
}

// EvalVisitor runs the operations. Run it with DFS over pads: output pads
// are processed, input pads pull the connected output into the consumer.
// When every consumer in the context has pulled a node's outputs, the
// node drops them.
type EvalVisitor struct {
	BaseVisitor
	ID ContextID
}

// VisitNode implements Visitor. Nodes are processed through their pads.
func (v *EvalVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
}

// VisitPad implements Visitor.
func (v *EvalVisitor) VisitPad(p *Pad) {
	v.BaseVisitor.VisitPad(p)
	n := p.Node()
	if n == nil || n.op == nil {
		slogger().Warn("graph: eval: pad without operation", "pad", p)
		return
	}
	d, ok := n.LookupDynamic(v.ID)
	if !ok {
		slogger().Debug("graph: eval: node outside context", "node", n)
		return
	}
	if p.IsOutput() {
		v.produce(n, d, p)
	} else {
		v.pull(n, d, p)
	}
}

func (v *EvalVisitor) produce(n *Node, d *Dynamic, p *Pad) {
	if d.ResultRect.IsEmpty() {
		return
	}
	if d.Cached {
		d.SetValue(p.name, n.cache.Buffer)
		return
	}
	if !n.enabled {
		d.SetValue(p.name, d.Value("input"))
		return
	}
	if !n.op.Process(NewContext(d, p.name)) {
		slogger().Warn("graph: eval: process failed", "node", n, "pad", p.name, "rect", d.ResultRect)
	}
}

func (v *EvalVisitor) pull(n *Node, d *Dynamic, p *Pad) {
	c := p.Connection()
	if c == nil {
		if n.boundary != InputBoundary {
			slogger().Debug("graph: eval: input pad not connected", "pad", p)
		}
		return
	}
	src := c.SourcePad()
	source := src.Node()
	sd, ok := source.LookupDynamic(v.ID)
	if !ok {
		slogger().Warn("graph: eval: source outside context", "pad", p, "source", source)
		return
	}

	val := sd.Value(src.name)
	if val == nil && !d.ResultRect.IsEmpty() && !sd.ResultRect.IsEmpty() {
		slogger().Warn("graph: eval: source produced nothing", "pad", p, "source", source)
	}
	d.SetValue(p.name, val)

	sd.Refs--
	if sd.Refs <= 0 {
		sd.Refs = 0
		for _, out := range source.OutputPads() {
			sd.RemoveValue(out.name)
		}
	}
}

// FinishVisitor releases each node's state for a context. Run it with DFS.
type FinishVisitor struct {
	BaseVisitor
	ID ContextID
}

// VisitNode implements Visitor.
func (v *FinishVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	n.RemoveDynamic(v.ID)
	for _, id := range n.proxies {
		if p := n.arena.Node(id); p != nil && p.boundary == OutputBoundary {
			if _, ok := p.LookupDynamic(v.ID); ok {
				DFS(v, p)
			}
		}
	}
}

// DebugRow is one node's region state in a context.
type DebugRow struct {
	Node      string
	Operation string
	Have      geom.Rect
	Need      geom.Rect
	Result    geom.Rect
	Refs      int
	Cached    bool
}

// DebugVisitor logs every node's region state at debug level and
// collects it as rows. Run it with DFS after the CR pass.
type DebugVisitor struct {
	BaseVisitor
	ID   ContextID
	Rows []DebugRow
}

// VisitNode implements Visitor.
func (v *DebugVisitor) VisitNode(n *Node) {
	v.BaseVisitor.VisitNode(n)
	row := DebugRow{
		Node:      n.String(),
		Operation: n.OperationName(),
		Have:      n.haveRect,
	}
	if d, ok := n.LookupDynamic(v.ID); ok {
		row.Need = d.NeedRect
		row.Result = d.ResultRect
		row.Refs = d.Refs
		row.Cached = d.Cached
	}
	v.Rows = append(v.Rows, row)
	slogger().Debug("graph: node",
		"node", row.Node,
		"operation", row.Operation,
		"have", row.Have,
		"need", row.Need,
		"result", row.Result,
		"refs", row.Refs,
		"cached", row.Cached)
}

// inputsOf is the traversal root used to evaluate a sink: it depends on
// the sink's input pads and visits nothing itself.
type inputsOf struct {
	n *Node
}

func (s inputsOf) DependsOn() []Visitable {
	var deps []Visitable
	for _, p := range s.n.InputPads() {
		deps = append(deps, p)
	}
	return deps
}

func (s inputsOf) Accept(Visitor) {}

func (s inputsOf) NeedsVisiting() bool { return true }

// outputBuffer returns the buffer stored for pad in d, or nil.
func outputBuffer(d *Dynamic, pad string) *buffer.Buffer {
	b, _ := d.Value(pad).(*buffer.Buffer)
	return b
}
