package graph

import (
	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
)

// Context is what an operation sees while processing: the node state of
// the running evaluation and the output pad being produced.
type Context struct {
	dyn       *Dynamic
	outputPad string
}

// NewContext wraps the state d for processing outputPad. Sinks pass "".
func NewContext(d *Dynamic, outputPad string) *Context {
	return &Context{dyn: d, outputPad: outputPad}
}

// Node returns the node being processed.
func (c *Context) Node() *Node { return c.dyn.node }

// ID returns the evaluation context identifier.
func (c *Context) ID() ContextID { return c.dyn.id }

// Dynamic returns the node state.
func (c *Context) Dynamic() *Dynamic { return c.dyn }

// OutputPad returns the name of the output pad being produced, or "" for
// sinks.
func (c *Context) OutputPad() string { return c.outputPad }

// ResultRect returns the area to compute.
func (c *Context) ResultRect() geom.Rect { return c.dyn.ResultRect }

// NeedRect returns the area requested by consumers.
func (c *Context) NeedRect() geom.Rect { return c.dyn.NeedRect }

// InputRect returns the area of the input pad needed to compute the
// result rectangle.
func (c *Context) InputRect(pad string) geom.Rect {
	return c.dyn.node.inputRequest(pad, c.dyn.ResultRect)
}

// Input returns the buffer pulled from the input pad, or nil when the pad
// is unconnected or its producer computed nothing.
func (c *Context) Input(pad string) *buffer.Buffer {
	b, _ := c.dyn.Value(pad).(*buffer.Buffer)
	return b
}

// SetOutput stores b as the value of an output pad.
func (c *Context) SetOutput(pad string, b *buffer.Buffer) {
	c.dyn.SetValue(pad, b)
}

// Output returns the buffer of an output pad, allocating one over the
// result rectangle when none is set yet.
func (c *Context) Output(pad string) *buffer.Buffer {
	if b, ok := c.dyn.Value(pad).(*buffer.Buffer); ok && b != nil {
		return b
	}
	b := buffer.New(c.dyn.ResultRect)
	c.dyn.SetValue(pad, b)
	return b
}
