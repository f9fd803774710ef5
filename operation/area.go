package operation

import (
	"image"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/internal/kernel"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("translate", func() graph.Operation { return newTranslate() })
	register("crop", func() graph.Operation { return newCrop() })
	register("box-blur", func() graph.Operation { return newBoxBlur() })
	register("gaussian-blur", func() graph.Operation { return newGaussianBlur() })
}

// translate moves its input by an integer offset.
type translate struct {
	filter
	dx, dy int
}

func newTranslate() *translate {
	o := &translate{}
	o.props = property.NewStore(
		property.Spec{Name: "x", Default: 0, Blurb: "horizontal offset"},
		property.Spec{Name: "y", Default: 0, Blurb: "vertical offset"},
	)
	return o
}

func (o *translate) Name() string { return "translate" }

func (o *translate) Prepare() {
	o.dx, o.dy = o.props.Int("x"), o.props.Int("y")
}

func (o *translate) DefinedRegion() geom.Rect {
	return o.Node().InputHaveRect("input").Translate(o.dx, o.dy)
}

func (o *translate) AffectedRegion(_ string, r geom.Rect) geom.Rect {
	return r.Translate(o.dx, o.dy)
}

func (o *translate) InputRequest(_ string, r geom.Rect) geom.Rect {
	return r.Translate(-o.dx, -o.dy)
}

func (o *translate) Process(ctx *graph.Context) bool {
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	img := in.Get(ctx.ResultRect().Translate(-o.dx, -o.dy))
	img.Rect = img.Rect.Add(image.Pt(o.dx, o.dy))
	ctx.Output("output").Set(img)
	return true
}

// crop limits its input to a rectangle.
type crop struct {
	filter
}

func newCrop() *crop {
	o := &crop{}
	o.props = property.NewStore(
		property.Spec{Name: "x", Default: 0, Blurb: "left edge"},
		property.Spec{Name: "y", Default: 0, Blurb: "top edge"},
		property.Spec{Name: "width", Default: 0, Blurb: "width in pixels"},
		property.Spec{Name: "height", Default: 0, Blurb: "height in pixels"},
	)
	return o
}

func (o *crop) Name() string { return "crop" }

func (o *crop) rect() geom.Rect {
	return geom.NewRect(o.props.Int("x"), o.props.Int("y"), o.props.Int("width"), o.props.Int("height"))
}

func (o *crop) DefinedRegion() geom.Rect {
	return o.Node().InputHaveRect("input").Intersect(o.rect())
}

func (o *crop) AffectedRegion(_ string, r geom.Rect) geom.Rect {
	return r.Intersect(o.rect())
}

func (o *crop) InputRequest(_ string, r geom.Rect) geom.Rect {
	return r.Intersect(o.rect())
}

func (o *crop) Process(ctx *graph.Context) bool {
	return mapPixels(ctx, func([]uint8) {})
}

// separable is a blur applying a horizontal then a vertical kernel.
type separable struct {
	filter
	rx, ry int
	kx, ky []float32
}

func (o *separable) DefinedRegion() geom.Rect {
	return o.Node().InputHaveRect("input").Grow(o.rx, o.ry)
}

func (o *separable) AffectedRegion(_ string, r geom.Rect) geom.Rect {
	return r.Grow(o.rx, o.ry)
}

func (o *separable) InputRequest(_ string, r geom.Rect) geom.Rect {
	return r.Grow(o.rx, o.ry)
}

func (o *separable) Process(ctx *graph.Context) bool {
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	r := ctx.ResultRect()
	src := in.Get(r.Grow(o.rx, o.ry))
	rows := kernel.Horizontal(src, r.Grow(0, o.ry).Image(), o.kx)
	ctx.Output("output").Set(kernel.Vertical(rows, r.Image(), o.ky))
	return true
}

type boxBlur struct {
	separable
}

func newBoxBlur() *boxBlur {
	o := &boxBlur{}
	o.props = property.NewStore(
		property.Spec{Name: "radius", Default: 4, Blurb: "radius of the square kernel"},
	)
	return o
}

func (o *boxBlur) Name() string { return "box-blur" }

func (o *boxBlur) Prepare() {
	r := max(o.props.Int("radius"), 0)
	o.rx, o.ry = r, r
	o.kx = kernel.Box(r)
	o.ky = o.kx
}

type gaussianBlur struct {
	separable
}

func newGaussianBlur() *gaussianBlur {
	o := &gaussianBlur{}
	o.props = property.NewStore(
		property.Spec{Name: "std-dev-x", Default: 1.5, Blurb: "horizontal standard deviation"},
		property.Spec{Name: "std-dev-y", Default: 1.5, Blurb: "vertical standard deviation"},
	)
	return o
}

func (o *gaussianBlur) Name() string { return "gaussian-blur" }

func (o *gaussianBlur) Prepare() {
	sx, sy := o.props.Float64("std-dev-x"), o.props.Float64("std-dev-y")
	o.kx, o.ky = kernel.CachedGaussian(sx), kernel.CachedGaussian(sy)
	o.rx, o.ry = len(o.kx)/2, len(o.ky)/2
}
