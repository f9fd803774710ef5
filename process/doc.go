// Package process renders graph nodes incrementally.
//
// A [Processor] renders the bounding-box clipped target rectangle of a
// node in chunks of bounded area, one chunk per [Processor.Work] call,
// keeping the rendered pixels in the cache of the node it reads from.
// Callers drive it from their own loop, or hand it to [Run] or
// [Background].
//
// Sinks that need the whole image (such as file writers) are processed
// once after the last chunk; streaming sinks receive every chunk as it
// is rendered.
package process

import (
	"log/slog"

	"github.com/gogpu/ggraph"
)

func slogger() *slog.Logger { return ggraph.Logger() }
