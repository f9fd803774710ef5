package graph

import (
	"github.com/gogpu/ggraph"
	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
)

// EvalMgr evaluates one output pad of a node over a region of interest.
// Each Apply runs the passes in a fresh context and tears it down again.
type EvalMgr struct {
	node   *Node
	pad    string
	roi    geom.Rect
	hasROI bool
}

// NewEvalMgr creates an evaluation manager for pad of node. An empty pad
// name selects "output". Sinks are evaluated through their inputs and the
// pad name is ignored.
func NewEvalMgr(node *Node, pad string) *EvalMgr {
	if pad == "" {
		pad = "output"
	}
	return &EvalMgr{node: node, pad: pad}
}

// SetROI restricts the evaluation to r. Without a region of interest the
// whole defined region is evaluated.
func (m *EvalMgr) SetROI(r geom.Rect) {
	m.roi = r
	m.hasROI = true
}

// ClearROI removes the region of interest.
func (m *EvalMgr) ClearROI() {
	m.roi = geom.Rect{}
	m.hasROI = false
}

// resolve returns the node actually evaluated and its output pad. When
// the pad belongs to another node, as for the output proxy of a graph,
// that node becomes the root. The pad is nil for sinks.
func (m *EvalMgr) resolve() (*Node, *Pad, bool) {
	if m.node == nil || m.node.removed {
		slogger().Warn("graph: eval manager: no node")
		return nil, nil, false
	}
	if m.node.IsSink() {
		return m.node, nil, true
	}
	p := m.node.Pad(m.pad)
	if p == nil || !p.IsOutput() {
		slogger().Warn("graph: eval manager: no such output pad", "node", m.node, "pad", m.pad)
		return nil, nil, false
	}
	return p.Node(), p, true
}

// BoundingBox runs the Have pass and returns the defined region of the
// evaluated pad.
func (m *EvalMgr) BoundingBox() geom.Rect {
	root, _, ok := m.resolve()
	if !ok {
		return geom.Rect{}
	}
	DFS(&HaveVisitor{}, root)
	if root != m.node {
		m.node.haveRect = root.haveRect
	}
	return root.haveRect
}

// prepare runs Have, Need and CR for a new context and returns it.
func (m *EvalMgr) prepare(root *Node) ContextID {
	id := NewContextID()
	DFS(&HaveVisitor{}, root)

	d := root.Dynamic(id)
	if m.hasROI {
		d.NeedRect = m.roi
	} else {
		d.NeedRect = root.haveRect
	}
	BFS(&NeedVisitor{ID: id}, root)
	BFS(&CRVisitor{ID: id}, root)
	return id
}

// Apply evaluates the pad and returns its pixels. The buffer may share
// storage with a node cache and must not be modified. Apply returns nil
// for sinks, for invalid roots and when nothing was produced.
func (m *EvalMgr) Apply() *buffer.Buffer {
	root, pad, ok := m.resolve()
	if !ok {
		return nil
	}
	root.isRoot = true
	defer func() { root.isRoot = false }()

	id := m.prepare(root)
	if ggraph.CurrentConfig().Debug {
		DFS(&DebugVisitor{ID: id}, root)
	}

	var result *buffer.Buffer
	d := root.Dynamic(id)
	if pad == nil {
		DFS(&EvalVisitor{ID: id}, inputsOf{root})
		if !d.ResultRect.IsEmpty() && !root.op.Process(NewContext(d, "")) {
			slogger().Warn("graph: eval: sink process failed", "node", root, "rect", d.ResultRect)
		}
	} else {
		DFS(&EvalVisitor{ID: id}, pad)
		result = outputBuffer(d, pad.name)
	}

	DFS(&FinishVisitor{ID: id}, root)
	return result
}

// Inspect runs the region passes without processing and returns every
// node's region state, root last.
func (m *EvalMgr) Inspect() []DebugRow {
	root, _, ok := m.resolve()
	if !ok {
		return nil
	}
	id := m.prepare(root)
	dv := &DebugVisitor{ID: id}
	DFS(dv, root)
	DFS(&FinishVisitor{ID: id}, root)
	return dv.Rows
}
