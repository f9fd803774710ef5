package operation

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/internal/blend"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("scale", func() graph.Operation { return newScale() })
	register("over", func() graph.Operation { return newOver() })
	register("composite", func() graph.Operation { return newComposite() })
}

// scaleMargin is the number of source pixels an interpolator may reach
// past the mapped rectangle.
const scaleMargin = 2

var interpolators = map[string]draw.Interpolator{
	"nearest": draw.NearestNeighbor,
	"linear":  draw.BiLinear,
	"cubic":   draw.CatmullRom,
}

// scale resizes its input about the origin.
type scale struct {
	filter
	sx, sy float64
	interp draw.Interpolator
}

func newScale() *scale {
	o := &scale{}
	o.props = property.NewStore(
		property.Spec{Name: "x", Default: 1.0, Blurb: "horizontal factor"},
		property.Spec{Name: "y", Default: 1.0, Blurb: "vertical factor"},
		property.Spec{Name: "interpolation", Default: "linear", Blurb: "nearest, linear or cubic"},
	)
	return o
}

func (o *scale) Name() string { return "scale" }

func (o *scale) Prepare() {
	o.sx, o.sy = o.props.Float64("x"), o.props.Float64("y")
	if o.sx <= 0 || o.sy <= 0 {
		slogger().Warn("operation: non-positive scale factor", "x", o.sx, "y", o.sy)
		o.sx, o.sy = 1, 1
	}
	name := o.props.String("interpolation")
	interp, ok := interpolators[name]
	if !ok {
		slogger().Warn("operation: unknown interpolation", "interpolation", name)
		interp = draw.BiLinear
	}
	o.interp = interp
}

// mapRect scales r outward to whole pixels.
func mapRect(r geom.Rect, sx, sy float64) geom.Rect {
	if r.IsEmpty() {
		return r
	}
	x0 := int(math.Floor(float64(r.X) * sx))
	y0 := int(math.Floor(float64(r.Y) * sy))
	x1 := int(math.Ceil(float64(r.MaxX()) * sx))
	y1 := int(math.Ceil(float64(r.MaxY()) * sy))
	return geom.NewRect(x0, y0, x1-x0, y1-y0)
}

func (o *scale) DefinedRegion() geom.Rect {
	in := o.Node().InputHaveRect("input")
	if in.IsInfinite() {
		return in
	}
	return mapRect(in, o.sx, o.sy)
}

func (o *scale) AffectedRegion(_ string, r geom.Rect) geom.Rect {
	if r.IsInfinite() {
		return r
	}
	return mapRect(r, o.sx, o.sy).Grow(scaleMargin, scaleMargin)
}

func (o *scale) InputRequest(_ string, r geom.Rect) geom.Rect {
	if r.IsInfinite() {
		return r
	}
	return mapRect(r, 1/o.sx, 1/o.sy).Grow(scaleMargin, scaleMargin)
}

func (o *scale) Process(ctx *graph.Context) bool {
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	r := ctx.ResultRect()
	src := in.Get(o.InputRequest("input", r).Intersect(ctx.Node().InputHaveRect("input")))
	dst := image.NewRGBA(r.Image())
	s2d := f64.Aff3{o.sx, 0, 0, 0, o.sy, 0}
	o.interp.Transform(dst, s2d, src, src.Bounds(), draw.Src, nil)
	ctx.Output("output").Set(dst)
	return true
}

// over composites "aux" on top of "input".
type over struct {
	composer
}

func newOver() *over { return &over{} }

func (o *over) Name() string { return "over" }

func (o *over) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect()
	var dst *image.RGBA
	if in := ctx.Input("input"); in != nil {
		dst = in.Get(r)
	} else {
		dst = image.NewRGBA(r.Image())
	}
	if aux := ctx.Input("aux"); aux != nil {
		src := aux.Get(r)
		draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Over)
	}
	ctx.Output("output").Set(dst)
	return true
}

// composite combines "aux" with "input" through a blend mode.
type composite struct {
	composer
	mode blend.Mode
}

func newComposite() *composite {
	o := &composite{}
	o.props = property.NewStore(
		property.Spec{Name: "mode", Default: "src-over", Blurb: "Porter-Duff operator or blend mode of aux onto input"},
	)
	return o
}

func (o *composite) Name() string { return "composite" }

func (o *composite) Prepare() {
	name := o.props.String("mode")
	m, ok := blend.ParseMode(name)
	if !ok {
		slogger().Warn("operation: unknown blend mode", "mode", name)
		m = blend.SourceOver
	}
	o.mode = m
}

func (o *composite) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect()
	var dst *image.RGBA
	if in := ctx.Input("input"); in != nil {
		dst = in.Get(r)
	} else {
		dst = image.NewRGBA(r.Image())
	}
	src := image.NewRGBA(r.Image())
	if aux := ctx.Input("aux"); aux != nil {
		src = aux.Get(r)
	}
	blend.Composite(dst, src, o.mode)
	ctx.Output("output").Set(dst)
	return true
}
