package graph

// Direction tells whether a pad consumes or produces data.
type Direction uint8

const (
	// Input pads accept at most one connection.
	Input Direction = iota + 1
	// Output pads fan out to any number of connections.
	Output
)

// String returns "input" or "output".
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "invalid"
}

// Pad is a named, directional attachment point of a node.
type Pad struct {
	arena *Arena
	node  NodeID
	name  string
	dir   Direction
	index int
	conns []*Connection
}

// Name returns the pad name.
func (p *Pad) Name() string { return p.name }

// Direction returns the pad direction.
func (p *Pad) Direction() Direction { return p.dir }

// IsInput reports whether p is an input pad.
func (p *Pad) IsInput() bool { return p.dir == Input }

// IsOutput reports whether p is an output pad.
func (p *Pad) IsOutput() bool { return p.dir == Output }

// Index returns the position of p in its node's pad list.
func (p *Pad) Index() int { return p.index }

// Node returns the owning node.
func (p *Pad) Node() *Node { return p.arena.Node(p.node) }

// Connections returns the connections attached to p.
func (p *Pad) Connections() []*Connection {
	out := make([]*Connection, len(p.conns))
	copy(out, p.conns)
	return out
}

// Connection returns the single connection of an input pad, or nil.
func (p *Pad) Connection() *Connection {
	if p.dir != Input || len(p.conns) == 0 {
		return nil
	}
	return p.conns[0]
}

// ConnectedTo returns the output pad feeding an input pad, or nil.
func (p *Pad) ConnectedTo() *Pad {
	if c := p.Connection(); c != nil {
		return c.SourcePad()
	}
	return nil
}

// DependsOn implements Visitable. An input pad depends on the output pad
// feeding it; an output pad depends on its node's input pads.
func (p *Pad) DependsOn() []Visitable {
	switch p.dir {
	case Input:
		if src := p.ConnectedTo(); src != nil {
			return []Visitable{src}
		}
	case Output:
		n := p.Node()
		if n == nil {
			return nil
		}
		var deps []Visitable
		for _, in := range n.InputPads() {
			deps = append(deps, in)
		}
		return deps
	}
	return nil
}

// Accept implements Visitable.
func (p *Pad) Accept(v Visitor) { v.VisitPad(p) }

// NeedsVisiting implements Visitable.
func (p *Pad) NeedsVisiting() bool {
	n := p.Node()
	return n != nil && !n.removed
}

// String returns "node.pad".
func (p *Pad) String() string {
	if n := p.Node(); n != nil {
		return n.String() + "." + p.name
	}
	return "?." + p.name
}

func (p *Pad) addConnection(c *Connection) {
	p.conns = append(p.conns, c)
}

func (p *Pad) removeConnection(c *Connection) {
	for i, x := range p.conns {
		if x == c {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			return
		}
	}
}
