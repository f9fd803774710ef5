package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gogpu/ggraph/graph"
	"github.com/gogpu/ggraph/loader"
)

func newInspectCmd() *cobra.Command {
	var node, rect string
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the have, need and result rectangles of every node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			n, err := target(p, node)
			if err != nil {
				return err
			}
			roi, err := parseRect(rect)
			if err != nil {
				return err
			}

			m := graph.NewEvalMgr(n, "output")
			if roi != nil {
				m.SetROI(*roi)
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"node", "operation", "have", "need", "result", "refs", "cached"})
			table.SetAutoFormatHeaders(false)
			for _, r := range m.Inspect() {
				table.Append([]string{
					r.Node, r.Operation,
					r.Have.String(), r.Need.String(), r.Result.String(),
					strconv.Itoa(r.Refs), strconv.FormatBool(r.Cached),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&node, "node", "", "node to inspect instead of the pipeline output")
	cmd.Flags().StringVar(&rect, "rect", "", "region of interest as x,y,width,height")
	return cmd
}
