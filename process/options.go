package process

import (
	"log/slog"

	"github.com/gogpu/ggraph"
)

// Option configures a Processor.
type Option func(*options)

type options struct {
	chunkSize int
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		chunkSize: ggraph.CurrentConfig().ChunkSize,
	}
}

// WithChunkSize bounds the area, in pixels, rendered by one Work call.
// Values below 1 are raised to 1.
func WithChunkSize(pixels int) Option {
	return func(o *options) {
		o.chunkSize = max(pixels, 1)
	}
}

// WithLogger sets the logger used by the processor instead of the shared
// ggraph logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
