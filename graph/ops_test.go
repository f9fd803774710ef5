package graph

import (
	"image"
	"image/color"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/property"
)

// Operations used by the package tests.

func solid(r geom.Rect, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(r.Image())
	for y := r.Y; y < r.MaxY(); y++ {
		for x := r.X; x < r.MaxX(); x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// sourceOp fills rect with a constant colour.
type sourceOp struct {
	BaseOperation
	rect      geom.Rect
	color     color.RGBA
	processed []geom.Rect
}

func (o *sourceOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddOutputPad("output")
}

func (o *sourceOp) DefinedRegion() geom.Rect { return o.rect }

func (o *sourceOp) Process(ctx *Context) bool {
	r := ctx.ResultRect()
	o.processed = append(o.processed, r)
	ctx.Output("output").Set(solid(r, o.color))
	return true
}

// filterOp copies its input.
type filterOp struct {
	BaseOperation
	processed []geom.Rect
}

func (o *filterOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddOutputPad("output")
}

func (o *filterOp) Process(ctx *Context) bool {
	r := ctx.ResultRect()
	o.processed = append(o.processed, r)
	out := ctx.Output("output")
	if in := ctx.Input("input"); in != nil {
		out.Copy(in, r)
	}
	return true
}

// paintOp ignores its input pixels and paints a colour over the input's
// defined region.
type paintOp struct {
	BaseOperation
	color color.RGBA
}

func (o *paintOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddOutputPad("output")
}

func (o *paintOp) Process(ctx *Context) bool {
	ctx.Output("output").Set(solid(ctx.ResultRect(), o.color))
	return true
}

// shiftOp moves its input dx pixels to the right.
type shiftOp struct {
	BaseOperation
	dx int
}

func (o *shiftOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddOutputPad("output")
}

func (o *shiftOp) DefinedRegion() geom.Rect {
	return o.Node().InputHaveRect("input").Translate(o.dx, 0)
}

func (o *shiftOp) AffectedRegion(_ string, r geom.Rect) geom.Rect { return r.Translate(o.dx, 0) }

func (o *shiftOp) InputRequest(_ string, r geom.Rect) geom.Rect { return r.Translate(-o.dx, 0) }

func (o *shiftOp) Process(ctx *Context) bool {
	r := ctx.ResultRect()
	out := ctx.Output("output")
	in := ctx.Input("input")
	if in == nil {
		return true
	}
	img := in.Get(r.Translate(-o.dx, 0))
	img.Rect = img.Rect.Add(image.Pt(o.dx, 0))
	out.Set(img)
	return true
}

// mixOp has two inputs and forwards "input".
type mixOp struct {
	BaseOperation
}

func (o *mixOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddInputPad("aux")
	n.AddOutputPad("output")
}

func (o *mixOp) Process(ctx *Context) bool {
	out := ctx.Output("output")
	if in := ctx.Input("input"); in != nil {
		out.Copy(in, ctx.ResultRect())
	}
	return true
}

// sinkOp records what it receives.
type sinkOp struct {
	BaseOperation
	full   bool
	got    []geom.Rect
	pixels []color.RGBA
}

func (o *sinkOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
}

func (o *sinkOp) NeedsFull() bool { return o.full }

func (o *sinkOp) Process(ctx *Context) bool {
	r := ctx.ResultRect()
	o.got = append(o.got, r)
	if in := ctx.Input("input"); in != nil {
		o.pixels = append(o.pixels, in.RGBAAt(r.X, r.Y))
	}
	return true
}

// sizedOp is a configurable source whose width is a property.
type sizedOp struct {
	BaseOperation
	props *property.Store
}

func newSizedOp() *sizedOp {
	return &sizedOp{props: property.NewStore(
		property.Spec{Name: "width", Default: 10},
		property.Spec{Name: "height", Default: 10},
	)}
}

func (o *sizedOp) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddOutputPad("output")
}

func (o *sizedOp) Properties() *property.Store { return o.props }

func (o *sizedOp) DefinedRegion() geom.Rect {
	return geom.NewRect(0, 0, o.props.Int("width"), o.props.Int("height"))
}

func (o *sizedOp) Process(ctx *Context) bool {
	ctx.Output("output").Set(solid(ctx.ResultRect(), color.RGBA{A: 255}))
	return true
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func newSource(a *Arena, r geom.Rect, c color.RGBA) (*Node, *sourceOp) {
	op := &sourceOp{rect: r, color: c}
	return a.NewNodeWithOperation(op), op
}

func newFilter(a *Arena) (*Node, *filterOp) {
	op := &filterOp{}
	return a.NewNodeWithOperation(op), op
}
