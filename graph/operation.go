package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/property"
)

// ErrUnknownOperation is returned when no operation is registered under a
// name.
var ErrUnknownOperation = errors.New("graph: unknown operation")

// NopOperation is the name of the built-in pass-through operation.
const NopOperation = "nop"

// Operation is the processing kernel wrapped by a node.
//
// Attach is called once when the operation is bound to a node; it declares
// the node's pads. Prepare is called before the defined region is queried
// in every Have pass. The region methods must not touch pixels.
type Operation interface {
	// Attach binds the operation to its node and declares pads.
	Attach(n *Node)

	// Prepare readies the operation for region queries and processing.
	Prepare()

	// DefinedRegion returns the area the operation can produce.
	DefinedRegion() geom.Rect

	// AffectedRegion maps a change on an input pad forward to the area
	// of the output it affects.
	AffectedRegion(inputPad string, r geom.Rect) geom.Rect

	// InputRequest maps an output request backward to the area needed
	// from an input pad.
	InputRequest(inputPad string, r geom.Rect) geom.Rect

	// Process computes ctx.ResultRect() and stores the outputs in ctx.
	// Input buffers are shared and must not be modified. It returns
	// false on failure.
	Process(ctx *Context) bool
}

// Detector is implemented by operations that can tell which node produced
// a pixel.
type Detector interface {
	Detect(x, y int) *Node
}

// SinkOperation is implemented by operations that consume pixels without
// producing any. NeedsFull reports whether the sink must see the whole
// rendered area at once; otherwise a processor streams it chunk by chunk.
type SinkOperation interface {
	NeedsFull() bool
}

// Configurable is implemented by operations with properties.
type Configurable interface {
	Properties() *property.Store
}

// Named is implemented by operations that report their own name.
type Named interface {
	Name() string
}

// BaseOperation supplies default behaviour for operations: the defined
// region is the union of the inputs' defined regions and both region
// mappings are the identity. Embed it and implement Process.
type BaseOperation struct {
	node *Node
}

// Attach remembers n. Operations embedding BaseOperation call it from
// their own Attach before declaring pads.
func (b *BaseOperation) Attach(n *Node) { b.node = n }

// Node returns the node the operation is attached to.
func (b *BaseOperation) Node() *Node { return b.node }

// Prepare does nothing.
func (b *BaseOperation) Prepare() {}

// DefinedRegion returns the union of the inputs' defined regions.
func (b *BaseOperation) DefinedRegion() geom.Rect {
	var r geom.Rect
	if b.node == nil {
		return r
	}
	for _, p := range b.node.InputPads() {
		r = r.Union(b.node.InputHaveRect(p.name))
	}
	return r
}

// AffectedRegion returns r.
func (b *BaseOperation) AffectedRegion(_ string, r geom.Rect) geom.Rect { return r }

// InputRequest returns r.
func (b *BaseOperation) InputRequest(_ string, r geom.Rect) geom.Rect { return r }

// Factory creates a fresh operation instance.
type Factory func() Operation

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// RegisterOperation makes an operation available to Arena.NewNode under
// name. Registering a name twice replaces the earlier factory.
func RegisterOperation(name string, f Factory) {
	registry.Lock()
	defer registry.Unlock()
	registry.factories[name] = f
}

// LookupOperation returns the factory registered under name.
func LookupOperation(name string) (Factory, bool) {
	registry.RLock()
	defer registry.RUnlock()
	f, ok := registry.factories[name]
	return f, ok
}

// NewOperation instantiates the operation registered under name.
func NewOperation(name string) (Operation, error) {
	f, ok := LookupOperation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return f(), nil
}

// OperationNames returns the registered names, sorted.
func OperationNames() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterOperation(NopOperation, func() Operation { return &nop{} })
}

// nop passes "input" through to "output". Subgraph proxies and nodes
// with unknown operations run it.
type nop struct {
	BaseOperation
}

func (o *nop) Attach(n *Node) {
	o.BaseOperation.Attach(n)
	n.AddInputPad("input")
	n.AddOutputPad("output")
}

func (o *nop) Name() string { return NopOperation }

func (o *nop) Process(ctx *Context) bool {
	ctx.SetOutput("output", ctx.Input("input"))
	return true
}

func (o *nop) Detect(x, y int) *Node {
	if src, _ := o.node.Producer("input"); src != nil {
		return src.Detect(x, y)
	}
	return nil
}
