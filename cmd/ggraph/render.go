package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/loader"
	"github.com/gogpu/ggraph/process"
)

// barSteps is the resolution of the progress bar.
const barSteps = 1000

type renderOptions struct {
	output  string
	format  string
	quality int
	node    string
	rect    string
	quiet   bool
}

func newRenderCmd() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a pipeline to an image file",
		Example: `  ggraph render pipeline.yaml -o out.png
  ggraph render pipeline.yaml --node blur --rect 0,0,256,256 -o crop.tiff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], &o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "out.png", "image file to write")
	f.StringVar(&o.format, "format", "", "png, jpeg, tiff or bmp; empty picks by extension")
	f.IntVar(&o.quality, "quality", 90, "jpeg quality")
	f.StringVar(&o.node, "node", "", "node to render instead of the pipeline output")
	f.StringVar(&o.rect, "rect", "", "area to render as x,y,width,height")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func runRender(cmd *cobra.Command, file string, o *renderOptions) error {
	p, err := loader.LoadFile(file)
	if err != nil {
		return err
	}
	src, err := target(p, o.node)
	if err != nil {
		return err
	}
	rect, err := parseRect(o.rect)
	if err != nil {
		return err
	}

	save := p.Arena.NewNode("save")
	for k, v := range map[string]any{"path": o.output, "format": o.format, "quality": o.quality} {
		if err := save.Set(k, v); err != nil {
			return err
		}
	}
	if !graph.Connect(save, "input", src, "output") {
		return fmt.Errorf("node %s has no output pad", src)
	}

	proc, err := process.NewProcessor(save, rect)
	if err != nil {
		return fmt.Errorf("render %s: %w", src, err)
	}
	defer proc.Close()
	if proc.Rectangle().IsEmpty() {
		return fmt.Errorf("render %s: nothing to render", src)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := renderWithBar(ctx, cmd, proc, o.quiet); err != nil {
		return err
	}

	if _, err := os.Stat(o.output); err != nil {
		return fmt.Errorf("render %s: %s was not written", src, o.output)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", o.output, proc.Rectangle())
	return nil
}

func renderWithBar(ctx context.Context, cmd *cobra.Command, proc *process.Processor, quiet bool) error {
	job := process.Background(ctx, proc)
	if quiet {
		return job.Wait()
	}

	bar := progressbar.NewOptions(barSteps,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	for v := range job.Updates() {
		_ = bar.Set(int(v * barSteps))
	}
	if err := job.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())
	return nil
}
