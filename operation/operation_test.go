package operation

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/process"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 128, A: 255}
)

// node creates an operation node and sets its properties.
func node(t *testing.T, a *graph.Arena, op string, props map[string]any) *graph.Node {
	t.Helper()
	n := a.NewNode(op)
	if got := n.OperationName(); got != op {
		t.Fatalf("NewNode(%q) operation = %q", op, got)
	}
	for k, v := range props {
		if err := n.Set(k, v); err != nil {
			t.Fatalf("Set(%q, %v): %v", k, v, err)
		}
	}
	return n
}

func rect(t *testing.T, a *graph.Arena, x, y, w, h int, c string) *graph.Node {
	t.Helper()
	return node(t, a, "rectangle", map[string]any{"x": x, "y": y, "width": w, "height": h, "color": c})
}

// render evaluates n over roi.
func render(t *testing.T, n *graph.Node, roi geom.Rect) *buffer.Buffer {
	t.Helper()
	m := graph.NewEvalMgr(n, "output")
	m.SetROI(roi)
	out := m.Apply()
	if out == nil {
		t.Fatalf("Apply(%s) = nil", n)
	}
	return out
}

func bbox(n *graph.Node) geom.Rect {
	return graph.NewEvalMgr(n, "output").BoundingBox()
}

func drain(t *testing.T, p *process.Processor) {
	t.Helper()
	for range 10000 {
		if more, _ := p.Work(); !more {
			return
		}
	}
	t.Fatal("processor did not finish")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "red", want: color.RGBA{R: 255, A: 255}},
		{in: " White ", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "transparent", want: color.RGBA{}},
		{in: "#f00", want: color.RGBA{R: 255, A: 255}},
		{in: "#00ff00", want: color.RGBA{G: 255, A: 255}},
		{in: "#ff000000", want: color.RGBA{}},
		{in: "#0000ff80", want: color.RGBA{B: 128, A: 128}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "no-such-colour", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseColor(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	names := graph.OperationNames()
	for _, op := range []string{
		"rectangle", "checkerboard", "buffer-source", "load", "text",
		"invert", "opacity", "brightness-contrast", "color-matrix",
		"translate", "crop", "box-blur", "gaussian-blur", "scale", "over", "composite",
		"write-buffer", "save", graph.NopOperation,
	} {
		if !slices.Contains(names, op) {
			t.Errorf("operation %q not registered", op)
		}
	}
}

func TestRectangle(t *testing.T) {
	a := graph.NewArena()
	n := rect(t, a, 2, 3, 4, 5, "red")

	if diff := cmp.Diff(geom.NewRect(2, 3, 4, 5), bbox(n)); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
	out := render(t, n, geom.NewRect(0, 0, 10, 10))
	if got := out.RGBAAt(2, 3); got != red {
		t.Errorf("inside = %v, want %v", got, red)
	}
	if got := out.RGBAAt(1, 3); got != (color.RGBA{}) {
		t.Errorf("outside = %v, want transparent", got)
	}
}

func TestCheckerboard(t *testing.T) {
	a := graph.NewArena()
	n := node(t, a, "checkerboard", map[string]any{"x": 2, "y": 2, "color1": "red", "color2": "#008000"})

	if !bbox(n).IsInfinite() {
		t.Fatalf("bbox = %v, want infinite", bbox(n))
	}
	out := render(t, n, geom.NewRect(-4, -4, 8, 8))
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, red},
		{1, 1, red},
		{2, 0, green},
		{0, 2, green},
		{2, 2, red},
		{-1, 0, green},
		{-1, -1, red},
	}
	for _, tt := range tests {
		if got := out.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBufferSource(t *testing.T) {
	src := buffer.New(geom.NewRect(5, 5, 2, 2))
	src.SetRGBA(5, 5, red)

	a := graph.NewArena()
	n := node(t, a, "buffer-source", map[string]any{"buffer": src})
	if diff := cmp.Diff(geom.NewRect(5, 5, 2, 2), bbox(n)); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
	if got := render(t, n, geom.NewRect(5, 5, 2, 2)).RGBAAt(5, 5); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestPointFilters(t *testing.T) {
	tests := []struct {
		name  string
		color string
		op    string
		props map[string]any
		want  color.RGBA
	}{
		{
			name: "invert", color: "white", op: "invert",
			want: color.RGBA{A: 255},
		},
		{
			name: "invert keeps alpha", color: "#ff000080", op: "invert",
			want: color.RGBA{G: 128, B: 128, A: 128},
		},
		{
			name: "opacity", color: "red", op: "opacity",
			props: map[string]any{"value": 0.5},
			want:  color.RGBA{R: 128, A: 128},
		},
		{
			name: "brightness", color: "#808080", op: "brightness-contrast",
			props: map[string]any{"brightness": 1.0},
			want:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
		},
		{
			name: "identity", color: "#808080", op: "brightness-contrast",
			want: color.RGBA{R: 128, G: 128, B: 128, A: 255},
		},
		{
			name: "grayscale", color: "red", op: "color-matrix",
			props: map[string]any{"saturation": 0},
			want:  color.RGBA{R: 54, G: 54, B: 54, A: 255},
		},
		{
			name: "color matrix identity", color: "#204080", op: "color-matrix",
			want: color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 255},
		},
		{
			name: "zero contrast", color: "#204080", op: "brightness-contrast",
			props: map[string]any{"contrast": 0.0},
			want:  color.RGBA{R: 128, G: 128, B: 128, A: 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := graph.NewArena()
			src := rect(t, a, 0, 0, 2, 2, tt.color)
			f := node(t, a, tt.op, tt.props)
			graph.Link(src, f)

			if got := render(t, f, geom.NewRect(0, 0, 2, 2)).RGBAAt(1, 1); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpacity_Mask(t *testing.T) {
	a := graph.NewArena()
	src := rect(t, a, 0, 0, 4, 4, "red")
	mask := rect(t, a, 0, 0, 2, 4, "white")
	o := node(t, a, "opacity", nil)
	graph.Link(src, o)
	graph.Connect(o, "aux", mask, "output")

	if diff := cmp.Diff(geom.NewRect(0, 0, 4, 4), bbox(o)); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
	out := render(t, o, geom.NewRect(0, 0, 4, 4))
	if got := out.RGBAAt(0, 0); got != red {
		t.Errorf("masked in = %v, want %v", got, red)
	}
	if got := out.RGBAAt(3, 0); got != (color.RGBA{}) {
		t.Errorf("masked out = %v, want transparent", got)
	}
}

func TestRegionFilters(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		props    map[string]any
		wantBBox geom.Rect
		probe    [2]int
	}{
		{
			name: "translate", op: "translate",
			props:    map[string]any{"x": 10, "y": 5},
			wantBBox: geom.NewRect(10, 5, 20, 20),
			probe:    [2]int{10, 5},
		},
		{
			name: "translate negative", op: "translate",
			props:    map[string]any{"x": -3, "y": 0},
			wantBBox: geom.NewRect(-3, 0, 20, 20),
			probe:    [2]int{-3, 19},
		},
		{
			name: "crop", op: "crop",
			props:    map[string]any{"x": 5, "y": 5, "width": 100, "height": 3},
			wantBBox: geom.NewRect(5, 5, 15, 3),
			probe:    [2]int{19, 7},
		},
		{
			name: "box blur", op: "box-blur",
			props:    map[string]any{"radius": 2},
			wantBBox: geom.NewRect(-2, -2, 24, 24),
			probe:    [2]int{10, 10},
		},
		{
			name: "gaussian blur", op: "gaussian-blur",
			props:    map[string]any{"std-dev-x": 1.5, "std-dev-y": 1.0},
			wantBBox: geom.NewRect(-5, -3, 30, 26),
			probe:    [2]int{10, 10},
		},
		{
			name: "scale", op: "scale",
			props:    map[string]any{"x": 2.0, "y": 0.5, "interpolation": "nearest"},
			wantBBox: geom.NewRect(0, 0, 40, 10),
			probe:    [2]int{39, 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := graph.NewArena()
			src := rect(t, a, 0, 0, 20, 20, "red")
			f := node(t, a, tt.op, tt.props)
			graph.Link(src, f)

			if diff := cmp.Diff(tt.wantBBox, bbox(f)); diff != "" {
				t.Fatalf("bbox mismatch (-want +got):\n%s", diff)
			}
			out := render(t, f, tt.wantBBox)
			got := out.RGBAAt(tt.probe[0], tt.probe[1])
			if got.R < 254 || got.A < 254 || got.G != 0 || got.B != 0 {
				t.Errorf("pixel %v = %v, want red", tt.probe, got)
			}
		})
	}
}

func TestBoxBlur_Edge(t *testing.T) {
	a := graph.NewArena()
	src := rect(t, a, 0, 0, 20, 20, "red")
	f := node(t, a, "box-blur", map[string]any{"radius": 2})
	graph.Link(src, f)

	// One of the five horizontal taps hits the rectangle.
	got := render(t, f, geom.NewRect(-2, 10, 1, 1)).RGBAAt(-2, 10)
	if got.A < 50 || got.A > 52 {
		t.Errorf("edge alpha = %d, want about 51", got.A)
	}
}

func TestScale_PartialRequest(t *testing.T) {
	a := graph.NewArena()
	src := rect(t, a, 0, 0, 4, 4, "red")
	s := node(t, a, "scale", map[string]any{"x": 2, "y": 2, "interpolation": "nearest"})
	graph.Link(src, s)

	out := render(t, s, geom.NewRect(6, 6, 2, 2))
	if got := out.RGBAAt(7, 7); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestOver(t *testing.T) {
	a := graph.NewArena()
	bottom := rect(t, a, 0, 0, 4, 4, "red")
	top := rect(t, a, 2, 2, 4, 4, "#008000")
	o := node(t, a, "over", nil)
	graph.Link(bottom, o)
	graph.Connect(o, "aux", top, "output")

	if diff := cmp.Diff(geom.NewRect(0, 0, 6, 6), bbox(o)); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
	out := render(t, o, geom.NewRect(0, 0, 6, 6))
	for _, tt := range []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, red},
		{3, 3, green},
		{5, 5, green},
		{5, 0, color.RGBA{}},
	} {
		if got := out.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	a := graph.NewArena()
	n := node(t, a, "text", map[string]any{"string": "Hi", "color": "red"})

	box := bbox(n)
	if diff := cmp.Diff(geom.NewRect(0, 0, 14, 13), box); diff != "" {
		t.Fatalf("bbox mismatch (-want +got):\n%s", diff)
	}
	img := render(t, n, box).Get(box)
	inked := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Error("text rendered no pixels")
	}
}

func TestWriteBuffer(t *testing.T) {
	a := graph.NewArena()
	src := rect(t, a, 0, 0, 64, 64, "red")
	dst := buffer.New(geom.Rect{})
	sink := node(t, a, "write-buffer", map[string]any{"buffer": dst})
	graph.Link(src, sink)

	p, err := process.NewProcessor(sink, nil, process.WithChunkSize(256))
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	drain(t, p)

	for _, pt := range [][2]int{{0, 0}, {63, 63}, {31, 40}} {
		if got := dst.RGBAAt(pt[0], pt[1]); got != red {
			t.Errorf("%v = %v, want %v", pt, got, red)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	for _, format := range []string{"png", "tiff", "bmp"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+format)

			a := graph.NewArena()
			src := rect(t, a, 10, 10, 6, 4, "red")
			sink := node(t, a, "save", map[string]any{"path": path})
			graph.Link(src, sink)

			p, err := process.NewProcessor(sink, nil)
			if err != nil {
				t.Fatalf("NewProcessor: %v", err)
			}
			drain(t, p)
			p.Close()

			ld := node(t, a, "load", map[string]any{"path": path})
			if diff := cmp.Diff(geom.NewRect(0, 0, 6, 4), bbox(ld)); diff != "" {
				t.Fatalf("bbox mismatch (-want +got):\n%s", diff)
			}
			if got := render(t, ld, geom.NewRect(0, 0, 6, 4)).RGBAAt(5, 3); got != red {
				t.Errorf("pixel = %v, want %v", got, red)
			}
		})
	}
}

func TestLoadImage_Reuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, image.NewRGBA(image.Rect(0, 0, 3, 2)), "png", 0); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	first, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() = %v", err)
	}
	hits := decodedFiles().Stats().Hits
	second, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() = %v", err)
	}
	if first != second {
		t.Error("second LoadImage decoded the file again")
	}
	if got := decodedFiles().Stats().Hits; got != hits+1 {
		t.Errorf("cache hits = %d, want %d", got, hits+1)
	}
	if diff := cmp.Diff(geom.NewRect(0, 0, 3, 2), first.Extent()); diff != "" {
		t.Errorf("extent mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	a := graph.NewArena()
	n := node(t, a, "load", map[string]any{"path": filepath.Join(t.TempDir(), "missing.png")})
	if got := bbox(n); !got.IsEmpty() {
		t.Errorf("bbox = %v, want empty", got)
	}
}

func TestEncode_Unsupported(t *testing.T) {
	if err := Encode(nil, nil, "xcf", 0); err == nil {
		t.Error("Encode(xcf) succeeded")
	}
}

func TestComposite(t *testing.T) {
	tests := []struct {
		mode string
		// pixels at the input-only, overlap and aux-only probes
		want [3]color.RGBA
	}{
		{mode: "src-over", want: [3]color.RGBA{red, green, green}},
		{mode: "dst-over", want: [3]color.RGBA{red, red, green}},
		{mode: "src-in", want: [3]color.RGBA{{}, green, {}}},
		{mode: "xor", want: [3]color.RGBA{red, {}, green}},
		{mode: "darken", want: [3]color.RGBA{red, {A: 255}, green}},
		{mode: "bogus", want: [3]color.RGBA{red, green, green}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			a := graph.NewArena()
			bottom := rect(t, a, 0, 0, 4, 4, "red")
			top := rect(t, a, 2, 2, 4, 4, "#008000")
			c := node(t, a, "composite", map[string]any{"mode": tt.mode})
			graph.Link(bottom, c)
			graph.Connect(c, "aux", top, "output")

			out := render(t, c, geom.NewRect(0, 0, 6, 6))
			for i, pt := range [][2]int{{0, 0}, {3, 3}, {5, 5}} {
				if got := out.RGBAAt(pt[0], pt[1]); got != tt.want[i] {
					t.Errorf("%v = %v, want %v", pt, got, tt.want[i])
				}
			}
		})
	}
}
