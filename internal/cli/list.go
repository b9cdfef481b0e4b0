package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded bikes",
		Long: `List prints every recorded bike in the order it was added.

Example:
  bikeledger list
  bikeledger list --json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(resolved)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.controller(cliNotifier(cmd)).Refresh()
	if err != nil {
		return reported(err)
	}

	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	printEntries(cmd.OutOrStdout(), rows)
	return nil
}

// printEntries prints entries in a human-readable table.
func printEntries(out io.Writer, rows []types.BikeEntry) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No bikes recorded.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tBRAND\tBUILT\tYEAR\tPRICE")
	fmt.Fprintln(w, "--\t-----\t-----\t-----\t----\t-----")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			r.ID,
			r.Model,
			r.Brand,
			r.BuiltYear,
			r.Year,
			form.FormatPrice(r.Price),
		)
	}
	w.Flush()

	for _, line := range strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n") {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(out, "Total: %d bike(s)\n", len(rows))
}
