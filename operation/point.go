package operation

import (
	"image"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	colorfilter "github.com/gogpu/ggraph/internal/filter"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("invert", func() graph.Operation { return newInvert() })
	register("opacity", func() graph.Operation { return newOpacity() })
	register("brightness-contrast", func() graph.Operation { return newBrightnessContrast() })
	register("color-matrix", func() graph.Operation { return newColorMatrix() })
}

// pointFunc maps one premultiplied pixel to another.
type pointFunc func(px []uint8)

// mapPixels applies fn to the input pixels of the result rectangle and
// stores them on "output".
func mapPixels(ctx *graph.Context, fn pointFunc) bool {
	r := ctx.ResultRect()
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	img := in.Get(r)
	for i := 0; i < len(img.Pix); i += 4 {
		fn(img.Pix[i : i+4])
	}
	ctx.Output("output").Set(img)
	return true
}

// unpremultiply returns straight colour channels in [0,1].
func unpremultiply(px []uint8) (r, g, b, a float64) {
	a = float64(px[3]) / 255
	if a == 0 {
		return 0, 0, 0, 0
	}
	return float64(px[0]) / 255 / a, float64(px[1]) / 255 / a, float64(px[2]) / 255 / a, a
}

func premultiply(px []uint8, r, g, b, a float64) {
	px[0] = unit8(r * a)
	px[1] = unit8(g * a)
	px[2] = unit8(b * a)
	px[3] = unit8(a)
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// invert inverts the colour channels and keeps alpha.
type invert struct {
	filter
}

func newInvert() *invert { return &invert{} }

func (o *invert) Name() string { return "invert" }

func (o *invert) Process(ctx *graph.Context) bool {
	return mapPixels(ctx, func(px []uint8) {
		// In premultiplied space the inverse of c is a-c.
		a := px[3]
		px[0], px[1], px[2] = a-min(px[0], a), a-min(px[1], a), a-min(px[2], a)
	})
}

// opacity scales alpha by a constant and by the alpha of an optional mask
// on "aux".
type opacity struct {
	composer
}

func newOpacity() *opacity {
	o := &opacity{}
	o.props = property.NewStore(
		property.Spec{Name: "value", Default: 1.0, Blurb: "global opacity factor"},
	)
	return o
}

func (o *opacity) Name() string { return "opacity" }

// DefinedRegion is that of the input; the mask only attenuates it.
func (o *opacity) DefinedRegion() geom.Rect {
	return o.Node().InputHaveRect("input")
}

func (o *opacity) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect()
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	value := o.props.Float64("value")
	img := in.Get(r)

	var mask *image.RGBA
	if aux := ctx.Input("aux"); aux != nil {
		mask = aux.Get(r)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		f := value
		if mask != nil {
			f *= float64(mask.Pix[i+3]) / 255
		}
		for c := range 4 {
			img.Pix[i+c] = uint8(float64(img.Pix[i+c])*clampUnit(f) + 0.5)
		}
	}
	ctx.Output("output").Set(img)
	return true
}

func clampUnit(v float64) float64 {
	return max(0, min(1, v))
}

// brightnessContrast adjusts straight colour values around mid grey.
type brightnessContrast struct {
	filter
}

func newBrightnessContrast() *brightnessContrast {
	o := &brightnessContrast{}
	o.props = property.NewStore(
		property.Spec{Name: "contrast", Default: 1.0, Blurb: "contrast multiplier"},
		property.Spec{Name: "brightness", Default: 0.0, Blurb: "brightness offset"},
	)
	return o
}

func (o *brightnessContrast) Name() string { return "brightness-contrast" }

func (o *brightnessContrast) Process(ctx *graph.Context) bool {
	contrast := o.props.Float64("contrast")
	brightness := o.props.Float64("brightness")
	adjust := func(v float64) float64 {
		return (v-0.5)*contrast + brightness + 0.5
	}
	return mapPixels(ctx, func(px []uint8) {
		r, g, b, a := unpremultiply(px)
		if a == 0 {
			return
		}
		premultiply(px, clampUnit(adjust(r)), clampUnit(adjust(g)), clampUnit(adjust(b)), a)
	})
}

// colorMatrix adjusts saturation, rotates hue and optionally tones the
// result sepia, in that order.
type colorMatrix struct {
	filter
	m colorfilter.Matrix
}

func newColorMatrix() *colorMatrix {
	o := &colorMatrix{}
	o.props = property.NewStore(
		property.Spec{Name: "saturation", Default: 1.0, Blurb: "0 is grey, 1 unchanged"},
		property.Spec{Name: "hue-rotate", Default: 0.0, Blurb: "hue rotation in degrees"},
		property.Spec{Name: "sepia", Default: false, Blurb: "apply a sepia tone"},
	)
	return o
}

func (o *colorMatrix) Name() string { return "color-matrix" }

func (o *colorMatrix) Prepare() {
	m := colorfilter.Saturation(float32(o.props.Float64("saturation")))
	if deg := o.props.Float64("hue-rotate"); deg != 0 {
		m = m.Then(colorfilter.HueRotate(deg))
	}
	if o.props.Bool("sepia") {
		m = m.Then(colorfilter.Sepia())
	}
	o.m = m
}

func (o *colorMatrix) Process(ctx *graph.Context) bool {
	in := ctx.Input("input")
	if in == nil {
		return false
	}
	img := in.Get(ctx.ResultRect())
	o.m.Apply(img)
	ctx.Output("output").Set(img)
	return true
}
