package operation

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/property"
)

func init() {
	register("write-buffer", func() graph.Operation { return newWriteBuffer() })
	register("save", func() graph.Operation { return newSave() })
}

// writeBuffer copies every chunk it receives into a target buffer.
type writeBuffer struct {
	sink
}

func newWriteBuffer() *writeBuffer {
	o := &writeBuffer{}
	o.props = property.NewStore(
		property.Spec{Name: "buffer", Default: (*buffer.Buffer)(nil), Blurb: "destination"},
	)
	return o
}

func (o *writeBuffer) Name() string { return "write-buffer" }

// NeedsFull implements graph.SinkOperation.
func (o *writeBuffer) NeedsFull() bool { return false }

func (o *writeBuffer) Process(ctx *graph.Context) bool {
	v, _ := o.props.Get("buffer")
	dst, _ := v.(*buffer.Buffer)
	if dst == nil {
		slogger().Warn("operation: write-buffer without destination", "node", ctx.Node())
		return false
	}
	dst.Copy(ctx.Input("input"), ctx.ResultRect())
	return true
}

// save encodes the whole rendered area to a file.
type save struct {
	sink
}

func newSave() *save {
	o := &save{}
	o.props = property.NewStore(
		property.Spec{Name: "path", Default: "", Blurb: "destination file"},
		property.Spec{Name: "format", Default: "", Blurb: "png, jpeg, tiff or bmp; empty picks by extension"},
		property.Spec{Name: "quality", Default: 90, Blurb: "jpeg quality"},
	)
	return o
}

func (o *save) Name() string { return "save" }

// NeedsFull implements graph.SinkOperation.
func (o *save) NeedsFull() bool { return true }

func (o *save) Process(ctx *graph.Context) bool {
	path := o.props.String("path")
	in := ctx.Input("input")
	if path == "" || in == nil {
		slogger().Warn("operation: nothing to save", "node", ctx.Node(), "path", path)
		return false
	}
	img := in.Get(ctx.ResultRect())
	if err := o.write(path, img); err != nil {
		slogger().Error("operation: save failed", "path", path, "err", err)
		return false
	}
	slogger().Info("operation: saved", "path", path, "rect", ctx.ResultRect())
	return true
}

func (o *save) write(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, o.format(path), o.props.Int("quality"))
}

func (o *save) format(path string) string {
	if f := o.props.String("format"); f != "" {
		return strings.ToLower(f)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: max(1, min(100, quality))})
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("operation: unsupported format %q", format)
}
