package operation

import (
	"image"
	"image/color"

	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("rectangle", func() graph.Operation { return newRectangle() })
	register("checkerboard", func() graph.Operation { return newCheckerboard() })
	register("buffer-source", func() graph.Operation { return newBufferSource() })
}

func fill(r geom.Rect, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(r.Image())
	px := [4]uint8{c.R, c.G, c.B, c.A}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], px[:])
	}
	return img
}

// rectangle fills a rectangle with a solid colour.
type rectangle struct {
	source
	color color.RGBA
}

func newRectangle() *rectangle {
	o := &rectangle{}
	o.props = property.NewStore(
		property.Spec{Name: "x", Default: 0, Blurb: "left edge"},
		property.Spec{Name: "y", Default: 0, Blurb: "top edge"},
		property.Spec{Name: "width", Default: 0, Blurb: "width in pixels"},
		property.Spec{Name: "height", Default: 0, Blurb: "height in pixels"},
		property.Spec{Name: "color", Default: "black", Blurb: "fill colour"},
	)
	return o
}

func (o *rectangle) Name() string { return "rectangle" }

func (o *rectangle) Prepare() {
	o.color = colorProp(o.props, "color")
}

func (o *rectangle) DefinedRegion() geom.Rect {
	return geom.NewRect(o.props.Int("x"), o.props.Int("y"), o.props.Int("width"), o.props.Int("height"))
}

func (o *rectangle) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect().Intersect(o.DefinedRegion())
	ctx.Output("output").Set(fill(r, o.color))
	return true
}

// checkerboard tiles the plane with two colours.
type checkerboard struct {
	source
	color1, color2 color.RGBA
}

func newCheckerboard() *checkerboard {
	o := &checkerboard{}
	o.props = property.NewStore(
		property.Spec{Name: "x", Default: 16, Blurb: "cell width"},
		property.Spec{Name: "y", Default: 16, Blurb: "cell height"},
		property.Spec{Name: "x-offset", Default: 0, Blurb: "horizontal offset"},
		property.Spec{Name: "y-offset", Default: 0, Blurb: "vertical offset"},
		property.Spec{Name: "color1", Default: "black", Blurb: "first colour"},
		property.Spec{Name: "color2", Default: "white", Blurb: "second colour"},
	)
	return o
}

func (o *checkerboard) Name() string { return "checkerboard" }

func (o *checkerboard) Prepare() {
	o.color1 = colorProp(o.props, "color1")
	o.color2 = colorProp(o.props, "color2")
}

func (o *checkerboard) DefinedRegion() geom.Rect { return geom.Infinite() }

func (o *checkerboard) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect()
	cw, ch := max(o.props.Int("x"), 1), max(o.props.Int("y"), 1)
	ox, oy := o.props.Int("x-offset"), o.props.Int("y-offset")

	img := image.NewRGBA(r.Image())
	for y := r.Y; y < r.MaxY(); y++ {
		ty := floorDiv(y-oy, ch)
		for x := r.X; x < r.MaxX(); x++ {
			c := o.color1
			if (floorDiv(x-ox, cw)+ty)&1 != 0 {
				c = o.color2
			}
			img.SetRGBA(x, y, c)
		}
	}
	ctx.Output("output").Set(img)
	return true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// bufferSource exposes an existing buffer.
type bufferSource struct {
	source
}

func newBufferSource() *bufferSource {
	o := &bufferSource{}
	o.props = property.NewStore(
		property.Spec{Name: "buffer", Default: (*buffer.Buffer)(nil), Blurb: "pixels to expose"},
	)
	return o
}

func (o *bufferSource) Name() string { return "buffer-source" }

func (o *bufferSource) buffer() *buffer.Buffer {
	v, _ := o.props.Get("buffer")
	b, _ := v.(*buffer.Buffer)
	return b
}

func (o *bufferSource) DefinedRegion() geom.Rect {
	if b := o.buffer(); b != nil {
		return b.Extent()
	}
	return geom.Rect{}
}

func (o *bufferSource) Process(ctx *graph.Context) bool {
	ctx.SetOutput("output", o.buffer())
	return true
}
