package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/schema"
)

// schemaCommand creates the schema command.
func (c *CLI) schemaCommand(env Env) *cobra.Command {
	var (
		path string
		dump bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show or check the industry schema",
		Long: `Schema prints the industries, auxiliary labels and spreadsheet layout of a
schema. With --schema it checks a custom schema file; with --dump it prints
the embedded default so it can be copied and edited for another vintage.`,
		Example: `  prodnet schema
  prodnet schema --dump > bea2017.toml
  prodnet schema --schema bea2017.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump {
				_, err := cmd.OutOrStdout().Write(schema.DefaultTOML())
				return err
			}

			s, err := loadSchema(path)
			if err != nil {
				return err
			}
			printSchema(s)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "schema", env.Schema, "schema TOML file (default: embedded BEA 2015 summary)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the embedded default schema as TOML")

	return cmd
}

func printSchema(s *schema.Schema) {
	printSuccess("Schema %s", StyleTitle.Render(s.Scope()))
	printKeyValue("Industries", StyleNumber.Render(fmt.Sprint(s.Len())))
	printKeyValue("Inputs row", s.Aux.TotalIntermediateRow)
	printKeyValue("Sales column", s.Aux.TotalIntermediateCol)
	printKeyValue("Final column", s.Aux.FinalConsumptionCol)
	if s.Layout.Sheet != "" {
		printKeyValue("Sheet", s.Layout.Sheet)
	}
	printKeyValue("Header row", fmt.Sprint(s.Layout.HeaderRow))
	printNewline()

	rows := make([][]string, len(s.Industries))
	for i, ind := range s.Industries {
		rows[i] = []string{fmt.Sprint(i + 1), ind.Code, ind.Name}
	}
	printTable([]string{"#", "Code", "Name"}, rows, 0)
}
