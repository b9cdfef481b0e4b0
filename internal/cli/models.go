package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the catalog of known models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(resolved)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), cat.Entries())
			}
			printCatalog(cmd.OutOrStdout(), cat.Entries())
			return nil
		},
	}
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <model>",
		Short: "Show the fields a model fills in",
		Long: `Select looks the model up in the catalog and prints the brand, built year
and price the form would be filled with. An unknown model leaves them empty.

Example:
  bikeledger select R15
  bikeledger select "Classic 350" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(resolved)
			if err != nil {
				return err
			}
			defer a.Close()

			fields := a.controller(cliNotifier(cmd)).SelectModel(args[0])
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), fields)
			}
			printFields(cmd.OutOrStdout(), fields)
			return nil
		},
	}
}

// printCatalog prints catalog entries as an aligned table.
func printCatalog(out io.Writer, entries []types.CatalogEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tBRAND\tBUILT\tPRICE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Model, e.Brand, e.BuiltYear, form.FormatPrice(e.Price))
	}
	w.Flush()
}

// printFields prints the form one field per line.
func printFields(out io.Writer, f form.Fields) {
	fmt.Fprintf(out, "Model:      %s\n", f.Model)
	fmt.Fprintf(out, "Brand:      %s\n", f.Brand)
	fmt.Fprintf(out, "Built Year: %s\n", f.BuiltYear)
	fmt.Fprintf(out, "Your Year:  %s\n", f.Year)
	fmt.Fprintf(out, "Price:      %s\n", f.Price)
}
