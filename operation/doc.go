// Package operation provides the built-in operations of the processing
// graph. Importing it registers every operation by name with the graph
// package:
//
//	import _ "github.com/gogpu/ggraph/operation"
//
//	n := arena.NewNode("gaussian-blur")
//	n.Set("std-dev-x", 3)
//
// Sources: rectangle, checkerboard, load, buffer-source, text.
// Point filters: invert, opacity, brightness-contrast.
// Region filters: translate, crop.
// Area filters: box-blur, gaussian-blur.
// Resamplers: scale.
// Composers: over.
// Sinks: write-buffer, save.
//
// All pixel data is alpha-premultiplied RGBA8.
package operation
