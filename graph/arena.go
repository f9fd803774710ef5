package graph

import (
	"sync/atomic"
)

// NodeID is a stable handle to a node inside its arena.
// The zero value refers to no node.
type NodeID uint32

// Arena owns a set of nodes. Nodes of different arenas cannot be
// connected.
type Arena struct {
	nodes []*Node

	// generation is bumped on every invalidation. It is read by
	// background processors, hence atomic.
	generation atomic.Uint64
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewNode creates a node running the registered operation op. Unknown
// operation names log a warning and fall back to the pass-through "nop"
// operation, so the node is never left without an operation.
func (a *Arena) NewNode(op string) *Node {
	o, err := NewOperation(op)
	if err != nil {
		slogger().Warn("graph: unknown operation, using nop instead", "operation", op)
		o, _ = NewOperation(NopOperation)
		op = NopOperation
	}
	n := a.add(o)
	n.opName = op
	return n
}

// NewNodeWithOperation creates a node running o.
func (a *Arena) NewNodeWithOperation(o Operation) *Node {
	return a.add(o)
}

func (a *Arena) add(o Operation) *Node {
	n := &Node{
		arena:   a,
		id:      NodeID(len(a.nodes) + 1),
		enabled: true,
		padIdx:  make(map[string]int),
	}
	a.nodes = append(a.nodes, n)
	n.setOperation(o)
	return n
}

// Node returns the node with the given handle, or nil when it does not
// exist or was removed.
func (a *Arena) Node(id NodeID) *Node {
	if id == 0 || int(id) > len(a.nodes) {
		return nil
	}
	return a.nodes[id-1]
}

// Nodes returns the live nodes in creation order.
func (a *Arena) Nodes() []*Node {
	out := make([]*Node, 0, len(a.nodes))
	for _, n := range a.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	count := 0
	for _, n := range a.nodes {
		if n != nil {
			count++
		}
	}
	return count
}

// Generation returns a counter that changes whenever a node in the arena
// is invalidated. Processors compare it to detect graph edits.
func (a *Arena) Generation() uint64 {
	return a.generation.Load()
}

func (a *Arena) bump() {
	a.generation.Add(1)
}

// Remove disconnects n from every other node, removes its children and
// detaches it from its parent. The handle becomes invalid.
func (a *Arena) Remove(n *Node) {
	if n == nil || n.arena != a || a.Node(n.id) != n {
		return
	}
	for _, c := range n.Children() {
		a.Remove(c)
	}
	DisconnectAll(n)
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
	a.nodes[n.id-1] = nil
	n.removed = true
	a.bump()
}

// Terminals returns the live nodes without consumers.
func (a *Arena) Terminals() []*Node {
	var out []*Node
	for _, n := range a.nodes {
		if n != nil && len(n.sinks) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Refresh propagates dirty rectangles from every terminal node and then
// clears them. See [Refresh].
func (a *Arena) Refresh() {
	Refresh(a.Terminals()...)
}
