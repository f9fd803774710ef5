package operation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ggraph"
	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/internal/cache"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("load", func() graph.Operation { return newLoad() })
	register("text", func() graph.Operation { return newText() })
}

var (
	decodedOnce sync.Once
	decoded     *cache.Cache[string, *buffer.Buffer]
)

// decodedFiles returns the process-wide cache of decoded images keyed by
// path and modification time.
func decodedFiles() *cache.Cache[string, *buffer.Buffer] {
	decodedOnce.Do(func() {
		decoded = cache.New[string, *buffer.Buffer](max(ggraph.CurrentConfig().FileCacheLimit, 1))
		decoded.OnEvict(func(key string, _ *buffer.Buffer) {
			slogger().Debug("operation: dropped decoded image", "key", key)
		})
	})
	return decoded
}

// LoadImage decodes the file at path, reusing a previous decode while the
// file is unchanged.
func LoadImage(path string) (*buffer.Buffer, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s@%d", path, st.ModTime().UnixNano())
	files := decodedFiles()
	b, err := files.GetOrLoad(key, func() (*buffer.Buffer, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, format, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("operation: decode %s: %w", path, err)
		}
		slogger().Debug("operation: decoded image", "path", path, "format", format, "bounds", img.Bounds())
		return buffer.FromImage(img), nil
	})
	if err != nil {
		return nil, err
	}
	stats := files.Stats()
	slogger().Debug("operation: decoded image cache", "entries", stats.Len,
		"hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	return b, nil
}

// load reads an image file. The image is placed with its top-left corner
// at the origin.
type load struct {
	source
	buf *buffer.Buffer
}

func newLoad() *load {
	o := &load{}
	o.props = property.NewStore(
		property.Spec{Name: "path", Default: "", Blurb: "image file"},
	)
	return o
}

func (o *load) Name() string { return "load" }

func (o *load) Prepare() {
	o.buf = nil
	path := o.props.String("path")
	if path == "" {
		return
	}
	b, err := LoadImage(path)
	if err != nil {
		slogger().Warn("operation: load failed", "path", path, "err", err)
		return
	}
	o.buf = b
}

func (o *load) DefinedRegion() geom.Rect {
	if o.buf == nil {
		return geom.Rect{}
	}
	e := o.buf.Extent()
	return geom.NewRect(0, 0, e.Width, e.Height)
}

func (o *load) Process(ctx *graph.Context) bool {
	if o.buf == nil {
		return false
	}
	e := o.buf.Extent()
	r := ctx.ResultRect()
	img := o.buf.Get(r.Translate(e.X, e.Y))
	img.Rect = img.Rect.Sub(image.Pt(e.X, e.Y))
	ctx.Output("output").Set(img)
	return true
}

// text renders a line of text in a fixed bitmap face.
type text struct {
	source
	face font.Face
}

func newText() *text {
	o := &text{face: basicfont.Face7x13}
	o.props = property.NewStore(
		property.Spec{Name: "string", Default: "", Blurb: "text to render"},
		property.Spec{Name: "color", Default: "black", Blurb: "text colour"},
	)
	return o
}

func (o *text) Name() string { return "text" }

func (o *text) content() string {
	return norm.NFC.String(o.props.String("string"))
}

func (o *text) DefinedRegion() geom.Rect {
	s := o.content()
	if s == "" {
		return geom.Rect{}
	}
	m := o.face.Metrics()
	w := font.MeasureString(o.face, s).Ceil()
	return geom.NewRect(0, 0, w, (m.Ascent + m.Descent).Ceil())
}

func (o *text) Process(ctx *graph.Context) bool {
	r := ctx.ResultRect()
	dst := image.NewRGBA(r.Image())
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(colorProp(o.props, "color")),
		Face: o.face,
		Dot:  fixed.Point26_6{X: 0, Y: o.face.Metrics().Ascent},
	}
	d.DrawString(o.content())
	ctx.Output("output").Set(dst)
	return true
}
