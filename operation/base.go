package operation

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/gogpu/ggraph"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/property"
)

func slogger() *slog.Logger { return ggraph.Logger() }

// register adds an operation to the graph registry.
func register(name string, f func() graph.Operation) {
	graph.RegisterOperation(name, f)
}

// configured is embedded by operations with properties.
type configured struct {
	graph.BaseOperation
	props *property.Store
}

// Properties implements graph.Configurable.
func (c *configured) Properties() *property.Store { return c.props }

// source declares a single "output" pad.
type source struct {
	configured
}

func (s *source) Attach(n *graph.Node) {
	s.BaseOperation.Attach(n)
	n.AddOutputPad("output")
}

// filter declares "input" and "output".
type filter struct {
	configured
}

func (f *filter) Attach(n *graph.Node) {
	f.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddOutputPad("output")
}

// composer declares "input", "aux" and "output".
type composer struct {
	configured
}

func (c *composer) Attach(n *graph.Node) {
	c.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddInputPad("aux")
	n.AddOutputPad("output")
}

// sink declares a single "input" pad.
type sink struct {
	configured
}

func (s *sink) Attach(n *graph.Node) {
	s.BaseOperation.Attach(n)
	n.AddInputPad("input")
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa", "transparent" or an
// SVG colour name, and returns the alpha-premultiplied colour.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" || s == "none" {
		return color.RGBA{}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("operation: unknown colour %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("operation: malformed colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("operation: malformed colour %q: %w", s, err)
	}
	nc := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(nc).(color.RGBA), nil
}

// colorProp reads a colour property, logging and falling back to
// transparent on bad input.
func colorProp(store *property.Store, name string) color.RGBA {
	c, err := ParseColor(store.String(name))
	if err != nil {
		slogger().Warn("operation: bad colour property", "property", name, "err", err)
	}
	return c
}
