// Package ggraph is a demand-driven image processing graph engine for Go.
//
// # Overview
//
// Pixel operations are nodes of a directed graph wired through named pads.
// Evaluation is lazy: only the requested rectangle of a node's output is
// computed, each upstream node computes only the part its consumers need,
// and results can be rendered incrementally into a cache so that editing a
// parameter re-renders only the invalidated region.
//
// # Quick Start
//
//	import _ "github.com/gogpu/ggraph/operation" // registers the operations
//
//	arena := graph.NewArena()
//	src := arena.NewNode("checkerboard")
//	blur := arena.NewNode("gaussian-blur")
//	_ = blur.Set("std-dev-x", 2.0)
//	graph.Link(src, blur)
//
//	// One-shot evaluation of a region of interest
//	mgr := graph.NewEvalMgr(blur, "output")
//	mgr.SetROI(geom.Rect{X: 0, Y: 0, Width: 256, Height: 256})
//	buf := mgr.Apply()
//
//	// Progressive, interruptible rendering into the node's cache. The
//	// checkerboard is infinite, so the processor needs a rectangle.
//	r := geom.NewRect(0, 0, 1024, 1024)
//	p, _ := process.NewProcessor(blur, &r)
//	for more := true; more; more, _ = p.Work() {
//	}
//
// # Architecture
//
// The module is organized into:
//   - geom: rectangles and rectangle regions
//   - buffer: sparse tiled pixel buffers and caches with a valid region
//   - property: named node properties
//   - graph: nodes, pads, connections, visitors, region passes, EvalMgr
//   - process: the chunked incremental Processor
//   - operation: the built-in operations
//   - loader: YAML graph descriptions
//   - cmd/ggraph: the command line renderer
//
// # Logging
//
// ggraph is silent by default. Call [SetLogger] to receive structured logs
// from every sub-package.
package ggraph

// Version is the current version of the module.
const Version = "0.1.0"
