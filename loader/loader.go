// Package loader builds graphs from YAML pipeline descriptions.
//
// A description lists nodes, the links between their pads and the node
// whose output is the result:
//
//	nodes:
//	  - id: bg
//	    op: checkerboard
//	    props: {x: 8, y: 8}
//	  - id: title
//	    op: text
//	    props: {string: hello, color: red}
//	  - id: mix
//	    op: over
//	links:
//	  - {from: bg, to: mix}
//	  - {from: title, to: mix.aux}
//	output: mix
//
// An endpoint is "id" or "id.pad". The default pad is "output" on the
// from side and "input" on the to side. Nodes with a parent become
// children of that node, which turns it into a graph; "group@name" names
// the input or output proxy called name of the graph group, so children
// read from "group@input" and feed "group@output".
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggraph"
	"github.com/gogpu/ggraph/graph"
	_ "github.com/gogpu/ggraph/operation" // registers the operations
)

// ErrInvalid wraps every validation problem of a description.
var ErrInvalid = errors.New("loader: invalid pipeline")

func slogger() *slog.Logger { return ggraph.Logger() }

// Description is the YAML document.
type Description struct {
	Nodes  []NodeDesc `yaml:"nodes"`
	Links  []LinkDesc `yaml:"links"`
	Output string     `yaml:"output"`
}

// NodeDesc describes one node.
type NodeDesc struct {
	ID      string         `yaml:"id"`
	Op      string         `yaml:"op"`
	Parent  string         `yaml:"parent,omitempty"`
	Enabled *bool          `yaml:"enabled,omitempty"`
	Props   map[string]any `yaml:"props,omitempty"`
}

// LinkDesc connects two endpoints.
type LinkDesc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Pipeline is a loaded description.
type Pipeline struct {
	Arena *graph.Arena
	Nodes map[string]*graph.Node
	// Output is the node named by the description's output, or the last
	// declared top-level node when none is named.
	Output *graph.Node
}

// Node returns the node with the given id.
func (p *Pipeline) Node(id string) *graph.Node { return p.Nodes[id] }

// LoadFile reads a description from a file.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a description from r and builds its graph. All validation
// problems are reported together.
func Load(r io.Reader) (*Pipeline, error) {
	var d Description
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("loader: decode: %w", err)
	}
	return Build(&d)
}

// Build creates the graph of d.
func Build(d *Description) (*Pipeline, error) {
	b := &builder{
		p: &Pipeline{
			Arena: graph.NewArena(),
			Nodes: make(map[string]*graph.Node, len(d.Nodes)),
		},
	}
	for i := range d.Nodes {
		b.node(&d.Nodes[i])
	}
	for i := range d.Nodes {
		b.parent(&d.Nodes[i])
	}
	for i, l := range d.Links {
		b.link(i, l)
	}
	b.output(d)

	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	slogger().Debug("loader: built pipeline", "nodes", len(b.p.Nodes), "links", len(d.Links), "output", b.p.Output)
	return b.p, nil
}

type builder struct {
	p    *Pipeline
	last *graph.Node
	errs *multierror.Error
}

func (b *builder) fail(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
}

func (b *builder) node(nd *NodeDesc) {
	switch {
	case nd.ID == "":
		b.fail("node with operation %q has no id", nd.Op)
		return
	case strings.ContainsAny(nd.ID, ".@"):
		b.fail("node id %q contains '.' or '@'", nd.ID)
		return
	case b.p.Nodes[nd.ID] != nil:
		b.fail("duplicate node id %q", nd.ID)
		return
	}
	op := nd.Op
	if op == "" {
		op = graph.NopOperation
	}
	if _, ok := graph.LookupOperation(op); !ok {
		b.fail("node %q: unknown operation %q", nd.ID, op)
		return
	}

	n := b.p.Arena.NewNode(op)
	n.SetName(nd.ID)
	b.p.Nodes[nd.ID] = n
	if nd.Parent == "" {
		b.last = n
	}
	for k, v := range nd.Props {
		if err := n.Set(k, v); err != nil {
			b.fail("node %q: %v", nd.ID, err)
		}
	}
	if nd.Enabled != nil {
		n.SetEnabled(*nd.Enabled)
	}
}

func (b *builder) parent(nd *NodeDesc) {
	if nd.Parent == "" {
		return
	}
	n := b.p.Nodes[nd.ID]
	if n == nil {
		return
	}
	parent := b.p.Nodes[nd.Parent]
	if parent == nil {
		b.fail("node %q: unknown parent %q", nd.ID, nd.Parent)
		return
	}
	if !parent.AddChild(n) {
		b.fail("node %q: cannot become a child of %q", nd.ID, nd.Parent)
	}
}

// endpoint resolves "id", "id.pad" or "graph@proxy". dir selects the
// default pad and, for proxies, which proxy and which of its pads.
func (b *builder) endpoint(s string, dir graph.Direction) (*graph.Node, string, bool) {
	if id, name, ok := strings.Cut(s, "@"); ok {
		g := b.p.Nodes[id]
		if g == nil || name == "" {
			return nil, "", false
		}
		// Children read an input proxy's output and feed an output
		// proxy's input.
		if dir == graph.Output {
			return g.InputProxy(name), "output", true
		}
		return g.OutputProxy(name), "input", true
	}

	pad := "input"
	if dir == graph.Output {
		pad = "output"
	}
	id := s
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		id, pad = s[:i], s[i+1:]
	}
	n := b.p.Nodes[id]
	if n == nil || pad == "" {
		return nil, "", false
	}
	return n, pad, true
}

func (b *builder) link(i int, l LinkDesc) {
	src, srcPad, ok := b.endpoint(l.From, graph.Output)
	if !ok {
		b.fail("link %d: unknown source %q", i, l.From)
		return
	}
	sink, sinkPad, ok := b.endpoint(l.To, graph.Input)
	if !ok {
		b.fail("link %d: unknown sink %q", i, l.To)
		return
	}
	if !graph.Connect(sink, sinkPad, src, srcPad) {
		b.fail("link %d: cannot connect %s.%s to %s.%s", i, src, srcPad, sink, sinkPad)
	}
}

func (b *builder) output(d *Description) {
	if d.Output == "" {
		b.p.Output = b.last
		return
	}
	n := b.p.Nodes[d.Output]
	if n == nil {
		b.fail("unknown output node %q", d.Output)
		return
	}
	b.p.Output = n
}
