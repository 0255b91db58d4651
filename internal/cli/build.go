package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/network"
	"github.com/matzehuels/prodnet/pkg/pipeline"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand(env Env) *cobra.Command {
	var (
		flags  tableFlags
		output string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "build <table.xlsx|table.csv>",
		Short: "Build a production network from an input-output use table",
		Long: `Build sanitizes an input-output use table against the schema, computes each
industry's upstreamness and keeps its strongest suppliers and customers.

Tables are read from .xlsx workbooks or .csv files. Legacy .xls workbooks,
such as BEA's use_of_commodities_by_industries_2015.xls, must first be
re-saved as .xlsx (or exported as .csv) in a spreadsheet program.

The network is written as JSON. Use -o - to write it to stdout.`,
		Example: `  prodnet build IOUse_Before_Redefinitions_PRO_2015_Summary.xlsx
  prodnet build use_of_commodities_by_industries_2015.xlsx   # re-saved from .xls
  prodnet build use.csv --schema bea2017.toml --threshold 0.05 -o network-2017.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raw, s, err := c.loadInputs(args[0], flags)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Execute(ctx, raw, s, flags.options(c.Logger))
			if err != nil {
				return err
			}

			if output == "-" {
				return graph.WriteNetwork(result.Network, result.Meta(), cmd.OutOrStdout())
			}
			if err := graph.WriteNetworkFile(result.Network, result.Meta(), output); err != nil {
				return err
			}

			printSuccess("Built network for %s", StyleTitle.Render(result.Scope))
			printStats(result.Stats.Industries, result.Stats.SupplierEdges, result.Stats.CustomerEdges, result.CacheInfo.NetworkHit)
			if n := len(result.UnrecognizedRows) + len(result.UnrecognizedCols); n > 0 {
				printWarning("Ignored %d unrecognized labels", n)
				printDetail("rows: %s", strings.Join(result.UnrecognizedRows, ", "))
				printDetail("cols: %s", strings.Join(result.UnrecognizedCols, ", "))
			}
			printFile(output)

			if top > 0 {
				printNewline()
				printTable([]string{"Industry", "Name", "Upstreamness"}, upstreamRows(result, top), 2)
			}

			if result.Network.Len() > 0 {
				printNewline()
				printNextStep("Inspect an industry", fmt.Sprintf("%s focus %s %s", appName, output, result.Network.Nodes[0].Code))
			}
			return nil
		},
	}

	flags.register(cmd, env)
	cmd.Flags().StringVarP(&output, "output", "o", defaultOutput, "output file (- for stdout)")
	cmd.Flags().IntVar(&top, "top", 10, "print the N most upstream industries (0 to disable)")

	return cmd
}

// upstreamRows returns the n industries with the highest upstreamness.
func upstreamRows(result *pipeline.Result, n int) [][]string {
	nodes := slices.Clone(result.Network.Nodes)
	slices.SortStableFunc(nodes, func(a, b network.Industry) int {
		return cmp.Compare(b.Upstreamness, a.Upstreamness)
	})
	if len(nodes) > n {
		nodes = nodes[:n]
	}

	rows := make([][]string, len(nodes))
	for i, node := range nodes {
		rows[i] = []string{node.Code, node.Name, fmtUpstreamness(node.Upstreamness)}
	}
	return rows
}
