package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export recorded bikes as JSON lines",
		Long: `Export writes every recorded bike to file, one JSON object per line, in the
order they were added. An existing file is replaced atomically.

Example:
  bikeledger export bikes.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(resolved)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.store.ExportJSONL(args[0])
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": args[0], "count": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bike(s) to %s\n", n, args[0])
			return nil
		},
	}
}
