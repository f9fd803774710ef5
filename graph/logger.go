package graph

import (
	"log/slog"

	"github.com/gogpu/ggraph"
)

// slogger returns the shared ggraph logger.
func slogger() *slog.Logger { return ggraph.Logger() }
