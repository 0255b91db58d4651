package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/network"
)

// focusCommand creates the focus command.
func (c *CLI) focusCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "focus <network.json> <industry>",
		Short: "Show an industry's suppliers and customers",
		Long: `Focus prints the first-degree neighbourhood of one industry: its suppliers,
its customers, and the industries that are both. With -o the neighbourhood
is also drawn as SVG.`,
		Example: `  prodnet focus network.json 331
  prodnet focus network.json 331 -o steel.svg`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeFocus,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, _, err := graph.ReadNetworkFile(args[0])
			if err != nil {
				return err
			}
			nb, err := net.Neighborhood(args[1])
			if err != nil {
				return err
			}

			printNeighborhood(nb)

			if output == "" {
				return nil
			}
			svg, err := graph.RenderSVG(cmd.Context(), graph.NeighborhoodDOT(nb))
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, svg, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the neighbourhood as SVG")

	return cmd
}

func printNeighborhood(nb *network.Neighborhood) {
	printInfo("%s %s", StyleTitle.Render(nb.Focus.Code), nb.Focus.Name)
	printKeyValue("Upstreamness", StyleNumber.Render(fmtUpstreamness(nb.Focus.Upstreamness)))
	printNewline()

	headers := []string{"Role", "Industry", "Name", "Input share", "Output share"}
	var rows [][]string
	add := func(role string, ns []network.Neighbor) {
		for _, n := range ns {
			in, out := "", ""
			if n.InputShare > 0 {
				in = fmtPercent(n.InputShare)
			}
			if n.OutputShare > 0 {
				out = fmtPercent(n.OutputShare)
			}
			rows = append(rows, []string{role, n.Code, n.Name, in, out})
		}
	}
	add("supplier", nb.Suppliers)
	add("both", nb.Both)
	add("customer", nb.Customers)

	if len(rows) == 0 {
		printDetail("No material suppliers or customers")
		return
	}
	printTable(headers, rows, 3, 4)
}

// completeFocus completes the network file, then the industry codes in it.
func completeFocus(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	case 1:
		net, _, err := graph.ReadNetworkFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return industryCompletions(net, toComplete), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// industryCompletions returns "code\tname" for every code starting with prefix.
func industryCompletions(net *network.Network, prefix string) []string {
	var out []string
	for _, n := range net.Nodes {
		if strings.HasPrefix(n.Code, prefix) {
			out = append(out, n.Code+"\t"+n.Name)
		}
	}
	return out
}
