// Command ggraph loads YAML image pipelines and renders or inspects them.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/ggraph"
	"github.com/gogpu/ggraph/geom"
	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/loader"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	v := ggraph.NewViper()
	root := &cobra.Command{
		Use:           "ggraph",
		Short:         "Render and inspect image processing graphs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ggraph.LoadConfig(v)
			ggraph.SetConfig(cfg)
			if v.GetBool("verbose") || cfg.Debug {
				level := slog.LevelInfo
				if cfg.Debug {
					level = slog.LevelDebug
				}
				ggraph.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			}
			return nil
		},
	}

	f := root.PersistentFlags()
	f.Int("chunk-size", ggraph.DefaultChunkSize, "maximum pixels rendered per step")
	f.Bool("debug", false, "log the regions of every evaluation")
	f.Int("file-cache-limit", ggraph.DefaultFileCacheLimit, "decoded images kept in memory")
	f.BoolP("verbose", "v", false, "log progress to stderr")
	for _, name := range []string{"chunk-size", "debug", "file-cache-limit", "verbose"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}

	root.AddCommand(newRenderCmd(), newInspectCmd(), newOpsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ggraph:", err)
		os.Exit(1)
	}
}

// target returns the node named by id, or the pipeline output.
func target(p *loader.Pipeline, id string) (*graph.Node, error) {
	if id == "" {
		if p.Output == nil {
			return nil, fmt.Errorf("pipeline has no output node")
		}
		return p.Output, nil
	}
	n := p.Node(id)
	if n == nil {
		return nil, fmt.Errorf("no node %q", id)
	}
	return n, nil
}

// parseRect parses "x,y,width,height". The empty string yields nil.
func parseRect(s string) (*geom.Rect, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("rectangle %q: want x,y,width,height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("rectangle %q: %w", s, err)
		}
		v[i] = n
	}
	r := geom.NewRect(v[0], v[1], v[2], v[3])
	return &r, nil
}
