package main

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gogpu/ggraph/graph"
	_ "github.com/gogpu/ggraph/operation"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the available operations and their properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := graph.NewArena()
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"operation", "pads", "properties"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			for _, name := range graph.OperationNames() {
				n := a.NewNode(name)
				pads := make([]string, 0, len(n.Pads()))
				for _, p := range n.Pads() {
					pads = append(pads, p.Name())
				}
				table.Append([]string{name, strings.Join(pads, " "), strings.Join(n.PropertyNames(), " ")})
			}
			table.Render()
			return nil
		},
	}
}
