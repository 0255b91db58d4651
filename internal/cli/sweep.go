package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/errors"
)

// defaultSweep lists the thresholds reported when --thresholds is not set.
var defaultSweep = []float64{0, 0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5}

// sweepCommand creates the sweep command.
func (c *CLI) sweepCommand(env Env) *cobra.Command {
	var (
		flags      tableFlags
		thresholds []float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "sweep <table.xlsx|table.csv>",
		Short: "Report network size across relevance thresholds",
		Long: `Sweep builds the network once per threshold and reports how many supplier
and customer edges survive. Edge counts never grow as the threshold rises.`,
		Example: `  prodnet sweep use.xlsx
  prodnet sweep use.xlsx --thresholds 0,0.05,0.1 --json`,
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

			points, err := runner.Sweep(ctx, raw, s, thresholds, flags.options(c.Logger))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(points); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "encode sweep")
				}
				return nil
			}

			rows := make([][]string, len(points))
			for i, p := range points {
				rows[i] = []string{
					strconv.FormatFloat(p.Threshold, 'f', -1, 64),
					strconv.Itoa(p.SupplierEdges),
					strconv.Itoa(p.CustomerEdges),
				}
			}
			printInfo("Threshold sweep for %s", StyleTitle.Render(s.Scope()))
			printTable([]string{"Threshold", "Supplier edges", "Customer edges"}, rows, 0, 1, 2)
			return nil
		},
	}

	flags.register(cmd, env)
	cmd.Flags().Float64SliceVar(&thresholds, "thresholds", defaultSweep, "comma-separated thresholds")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON to stdout")

	return cmd
}

