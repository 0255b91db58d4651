package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output    string // output path; "-" for stdout, empty derives from the input
	format    string // dot, svg or json
	direction string // suppliers, customers or both
	focus     string // draw only this industry's neighbourhood
	detailed  bool   // include names and upstreamness in node labels
	noCache   bool
	redis     string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <network.json>",
		Short: "Draw a production network as DOT or SVG",
		Long: `Render draws a network written by build. Edges run from seller to buyer.
With --focus only the neighbourhood of one industry is drawn.`,
		Example: `  prodnet render network.json
  prodnet render network.json -f dot --direction suppliers -o -
  prodnet render network.json --focus 331 -o steel.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			net, _, err := graph.ReadNetworkFile(args[0])
			if err != nil {
				return err
			}

			ch, err := c.newCache(ctx, f.noCache, f.redis)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(ch, nil, c.Logger)
			defer runner.Close()

			opts := pipeline.RenderOptions{
				Format:    f.format,
				Direction: f.direction,
				Focus:     f.focus,
				Detailed:  f.detailed,
			}
			data, cached, err := runner.Render(ctx, net, opts)
			if err != nil {
				return err
			}

			if f.output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			out := f.output
			if out == "" {
				out = renderPath(args[0], f.format, f.focus)
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			c.Logger.Debug("rendered", "format", f.format, "bytes", len(data), "cached", cached)
			printSuccess("Rendered %s", filepath.Base(args[0]))
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: input name with format extension, - for stdout)")
	cmd.Flags().StringVarP(&f.format, "format", "f", pipeline.FormatSVG, "output format: dot, svg, json")
	cmd.Flags().StringVar(&f.direction, "direction", graph.DirectionBoth, "edges to draw: suppliers, customers, both")
	cmd.Flags().StringVar(&f.focus, "focus", "", "draw only the neighbourhood of this industry")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show names and upstreamness in node labels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redis, "redis", "", "Redis address for a shared cache")

	return cmd
}

// renderPath derives the output path from the network file: network.json
// becomes network.svg, or network-331.svg with a focus.
func renderPath(input, format, focus string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if focus != "" {
		base += "-" + focus
	}
	return base + "." + format
}
