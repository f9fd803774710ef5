package graph

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gogpu/ggraph/geom"
)

// ContextID identifies one evaluation context.
type ContextID = uuid.UUID

// NewContextID returns a fresh context identifier.
func NewContextID() ContextID { return uuid.New() }

// Dynamic is the state of one node within one evaluation context.
type Dynamic struct {
	node *Node
	id   ContextID

	// NeedRect is the area consumers request from the node.
	NeedRect geom.Rect

	// ResultRect is the area that will be computed: the intersection of
	// the defined and the needed region.
	ResultRect geom.Rect

	// Refs counts the consumers in this context that have not yet pulled
	// the node's output.
	Refs int

	// Cached is set when the node cache already covers NeedRect.
	Cached bool

	values map[string]any
}

// Node returns the node the state belongs to.
func (d *Dynamic) Node() *Node { return d.node }

// ID returns the context identifier.
func (d *Dynamic) ID() ContextID { return d.id }

// Value returns the transient value called name, or nil.
func (d *Dynamic) Value(name string) any {
	return d.values[name]
}

// SetValue stores a transient value.
func (d *Dynamic) SetValue(name string, v any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	d.values[name] = v
}

// RemoveValue deletes a transient value.
func (d *Dynamic) RemoveValue(name string) {
	delete(d.values, name)
}

// ValueNames returns the names of the stored values, sorted.
func (d *Dynamic) ValueNames() []string {
	names := make([]string, 0, len(d.values))
	for name := range d.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dynamic returns the state of n in context id, creating it on first use.
func (n *Node) Dynamic(id ContextID) *Dynamic {
	if d, ok := n.dynamics[id]; ok {
		return d
	}
	if n.dynamics == nil {
		n.dynamics = make(map[ContextID]*Dynamic)
	}
	d := &Dynamic{node: n, id: id}
	n.dynamics[id] = d
	return d
}

// LookupDynamic returns the state of n in context id if it exists.
func (n *Node) LookupDynamic(id ContextID) (*Dynamic, bool) {
	d, ok := n.dynamics[id]
	return d, ok
}

// RemoveDynamic releases the state of n in context id.
func (n *Node) RemoveDynamic(id ContextID) {
	delete(n.dynamics, id)
}

// DynamicCount returns the number of contexts holding state for n.
func (n *Node) DynamicCount() int { return len(n.dynamics) }
