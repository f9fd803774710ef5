package graph

import "slices"

// IsGraph reports whether n has children.
func (n *Node) IsGraph() bool { return len(n.children) > 0 }

// Parent returns the graph containing n, or nil.
func (n *Node) Parent() *Node { return n.arena.Node(n.parent) }

// Children returns the nodes contained in n, proxies included.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.arena.Node(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Boundary reports whether n is a subgraph proxy, and which kind.
func (n *Node) Boundary() Boundary { return n.boundary }

// BoundaryName returns the pad name a proxy stands for.
func (n *Node) BoundaryName() string { return n.boundaryName }

// AddChild makes child a member of the graph n. The first child turns n
// into a graph. It returns false when child already has a parent, belongs
// to another arena, or contains n.
func (n *Node) AddChild(child *Node) bool {
	if child == nil || child.arena != n.arena || child == n {
		return false
	}
	if child.parent != 0 {
		slogger().Warn("graph: add child: node already has a parent", "node", child)
		return false
	}
	for p := n; p != nil; p = p.Parent() {
		if p == child {
			slogger().Warn("graph: add child: node contains the graph", "node", child, "graph", n)
			return false
		}
	}
	n.children = append(n.children, child.id)
	child.parent = n.id
	return true
}

// NewChild creates a node running op inside the graph n.
func (n *Node) NewChild(op string) *Node {
	c := n.arena.NewNode(op)
	n.AddChild(c)
	return c
}

// RemoveChild detaches child from n. Removing the last child turns n back
// into an ordinary node.
func (n *Node) RemoveChild(child *Node) bool {
	if child == nil || child.parent != n.id {
		return false
	}
	if i := slices.Index(n.children, child.id); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	if i := slices.Index(n.proxies, child.id); i >= 0 {
		n.proxies = slices.Delete(n.proxies, i, i+1)
	}
	child.parent = 0
	return true
}

// InputProxy returns the input proxy called name, creating it when
// missing. Connecting to the graph's name pad connects to the proxy's
// "input" pad; children read the proxy's "output" pad.
func (n *Node) InputProxy(name string) *Node {
	if p := n.inputProxy(name); p != nil {
		return p
	}
	return n.newProxy(name, InputBoundary)
}

// OutputProxy returns the output proxy called name, creating it when
// missing. Children feed its "input" pad; consumers of the graph's name
// pad read its "output" pad.
func (n *Node) OutputProxy(name string) *Node {
	if p := n.outputProxy(name); p != nil {
		return p
	}
	return n.newProxy(name, OutputBoundary)
}

func (n *Node) inputProxy(name string) *Node  { return n.findProxy(name, InputBoundary) }
func (n *Node) outputProxy(name string) *Node { return n.findProxy(name, OutputBoundary) }

func (n *Node) findProxy(name string, kind Boundary) *Node {
	for _, id := range n.proxies {
		p := n.arena.Node(id)
		if p != nil && p.boundary == kind && p.boundaryName == name {
			return p
		}
	}
	return nil
}

func (n *Node) newProxy(name string, kind Boundary) *Node {
	p := n.arena.NewNode(NopOperation)
	p.boundary = kind
	p.boundaryName = name
	if kind == InputBoundary {
		p.name = "proxy-input-" + name
	} else {
		p.name = "proxy-output-" + name
	}
	n.AddChild(p)
	n.proxies = append(n.proxies, p.id)
	return p
}
