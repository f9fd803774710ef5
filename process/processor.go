package process

import (
	"errors"
	"log/slog"

	"github.com/gogpu/ggraph/buffer"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
)

var (
	// ErrNilNode is returned when no node is given.
	ErrNilNode = errors.New("process: nil node")

	// ErrNoInput is returned for a sink whose "input" pad is unconnected.
	ErrNoInput = errors.New("process: sink input not connected")

	// ErrNoOutput is returned for a node without an "output" pad.
	ErrNoOutput = errors.New("process: node has no output pad")

	// ErrUnbounded is returned when the node has no natural bounds and
	// no rectangle was given.
	ErrUnbounded = errors.New("process: unbounded node needs a rectangle")
)

// maxPendingProgress is the highest progress reported before rendering
// is complete.
const maxPendingProgress = 0.9999

// Processor renders a node incrementally.
//
// A Processor is not safe for concurrent use; the graph must not be
// edited while Work runs.
type Processor struct {
	node     *graph.Node
	input    *graph.Node
	inputPad string

	// sink is set when node is a sink; stream when it takes chunks.
	sink   graph.SinkOperation
	stream bool
	held   *graph.Dynamic

	cache *buffer.Cache
	valid *geom.Region

	requested *geom.Rect
	rect      geom.Rect
	queue     []geom.Rect

	chunkSize  int
	progress   float64
	done       bool
	generation uint64
	log        *slog.Logger
}

// NewProcessor creates a processor rendering rect of node, or the whole
// bounding box when rect is nil.
//
// For a sink the processor renders the node feeding the sink's "input"
// pad into that node's cache. For any other node it renders the node's
// "output" pad into its own cache.
func NewProcessor(node *graph.Node, rect *geom.Rect, opts ...Option) (*Processor, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slogger()
	}

	p := &Processor{
		node:      node,
		chunkSize: o.chunkSize,
		log:       o.logger,
		valid:     &geom.Region{},
	}

	if node.IsSink() {
		in := node.Pad("input")
		if in == nil || in.ConnectedTo() == nil {
			return nil, ErrNoInput
		}
		src := in.ConnectedTo()
		p.input, p.inputPad = src.Node(), src.Name()
		if s, ok := node.Operation().(graph.SinkOperation); ok {
			p.sink = s
			p.stream = !s.NeedsFull()
		} else {
			p.sink = fullSink{}
		}
	} else {
		out := node.Pad("output")
		if out == nil || !out.IsOutput() {
			return nil, ErrNoOutput
		}
		p.input, p.inputPad = out.Node(), out.Name()
	}

	if !p.stream {
		p.cache = p.input.EnsureCache()
	}
	p.generation = node.Arena().Generation()

	if rect == nil && p.boundingBox().IsInfinite() {
		return nil, ErrUnbounded
	}
	p.SetRectangle(rect)
	return p, nil
}

// fullSink stands in for sinks that do not say how they consume data.
type fullSink struct{}

func (fullSink) NeedsFull() bool { return true }

func (p *Processor) boundingBox() geom.Rect {
	return graph.NewEvalMgr(p.input, p.inputPad).BoundingBox()
}

// SetRectangle changes the target to rect clipped to the bounding box, or
// to the whole bounding box when rect is nil. A changed target discards
// the pending chunks.
func (p *Processor) SetRectangle(rect *geom.Rect) {
	if rect != nil {
		r := *rect
		p.requested = &r
	} else {
		p.requested = nil
	}
	p.retarget()
}

func (p *Processor) retarget() bool {
	bbox := p.boundingBox()
	var target geom.Rect
	switch {
	case p.requested != nil:
		target = p.requested.Intersect(bbox)
	case bbox.IsInfinite():
		p.log.Warn("process: unbounded node without a rectangle, nothing to render", "node", p.node)
	default:
		target = bbox
	}
	if p.cache != nil {
		p.cache.SetExtent(bbox)
	}
	if target.Equal(p.rect) {
		return false
	}
	p.rect = target
	p.queue = nil
	p.done = false
	p.progress = 0
	return true
}

// Rectangle returns the clipped target rectangle.
func (p *Processor) Rectangle() geom.Rect { return p.rect }

// Progress returns the fraction of the target rendered so far. It is 1
// only once Work has reported completion.
func (p *Processor) Progress() float64 { return p.progress }

// Cache returns the cache rendered into, or nil for streaming sinks.
func (p *Processor) Cache() *buffer.Cache { return p.cache }

// Work performs one bounded step and reports whether more work remains,
// together with the progress. A step either splits a pending rectangle
// larger than the chunk size in two, or renders one chunk.
func (p *Processor) Work() (more bool, progress float64) {
	p.checkGeneration()
	if p.done {
		return false, 1
	}

	if len(p.queue) == 0 {
		missing := p.missing()
		if missing.IsEmpty() {
			return p.finish()
		}
		p.queue = missing.Rects()
	}

	r := p.queue[0]
	p.queue = p.queue[1:]

	if r.Area() > p.chunkSize {
		a, b := r.SplitHalf()
		p.queue = append([]geom.Rect{a, b}, p.queue...)
		p.log.Debug("process: split chunk", "rect", r, "first", a, "second", b)
		return true, p.updateProgress()
	}

	p.render(r)
	if len(p.queue) == 0 && p.missing().IsEmpty() {
		return p.finish()
	}
	return true, p.updateProgress()
}

func (p *Processor) render(r geom.Rect) {
	p.log.Debug("process: render chunk", "node", p.node, "rect", r)
	if p.stream {
		m := graph.NewEvalMgr(p.node, "")
		m.SetROI(r)
		m.Apply()
		p.valid.UnionRect(r)
		return
	}

	m := graph.NewEvalMgr(p.input, p.inputPad)
	m.SetROI(r)
	if out := m.Apply(); out != nil {
		p.cache.Set(out.Get(r))
	} else {
		p.cache.Clear(r)
	}
	p.cache.Computed(r)
}

// missing returns the part of the target not rendered yet.
func (p *Processor) missing() *geom.Region {
	if p.rect.IsEmpty() {
		return &geom.Region{}
	}
	if p.stream {
		m := geom.NewRegion(p.rect)
		m.Subtract(p.valid)
		return m
	}
	return p.cache.Missing(p.rect)
}

func (p *Processor) updateProgress() float64 {
	wanted := p.rect.Area()
	if wanted == 0 {
		return p.progress
	}
	got := float64(wanted-p.missing().Area()) / float64(wanted)
	got = min(got, maxPendingProgress)
	p.progress = max(p.progress, got)
	return p.progress
}

func (p *Processor) finish() (bool, float64) {
	if p.sink != nil && !p.stream && !p.rect.IsEmpty() {
		p.flush()
	}
	p.queue = nil
	p.done = true
	p.progress = 1
	p.log.Info("process: finished", "node", p.node, "rect", p.rect)
	return false, 1
}

// flush hands the accumulated cache to a sink that needs the whole image
// and releases the sink context.
func (p *Processor) flush() {
	if p.held == nil {
		p.held = p.node.Dynamic(graph.NewContextID())
	}
	d := p.held
	d.NeedRect = p.rect
	d.ResultRect = p.rect
	d.SetValue("input", p.cache.Buffer)
	if !p.node.Operation().Process(graph.NewContext(d, "")) {
		p.log.Warn("process: sink process failed", "node", p.node, "rect", p.rect)
	}
	d.RemoveValue("input")
	p.node.RemoveDynamic(d.ID())
	p.held = nil
}

// checkGeneration picks up graph edits made since the last step: dirty
// rectangles are propagated, the target is clipped to the new bounding
// box and invalidated areas are queued again.
func (p *Processor) checkGeneration() {
	gen := p.node.Arena().Generation()
	if gen == p.generation {
		return
	}
	p.generation = gen

	graph.DFS(&graph.DirtyVisitor{}, p.node)
	dirty := p.input.DirtyRect()
	graph.DFS(&graph.CleanVisitor{}, p.node)

	if p.stream && !dirty.IsEmpty() {
		p.valid.SubtractRect(dirty)
	}
	if p.retarget() || !dirty.Intersect(p.rect).IsEmpty() {
		p.log.Debug("process: graph changed", "node", p.node, "dirty", dirty, "rect", p.rect)
		p.queue = nil
		p.done = false
		p.progress = 0
		p.updateProgress()
	}
}

// Close releases the state held for the sink.
func (p *Processor) Close() {
	if p.held != nil {
		p.node.RemoveDynamic(p.held.ID())
		p.held = nil
	}
	p.queue = nil
}
