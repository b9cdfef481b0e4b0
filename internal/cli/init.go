package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize bikeledger storage",
		Long:  "Create the configuration and data directories, write a default config.yaml and create the database schema.",
		RunE:  runInit,
	}
}

// runInit relies on PersistentPreRunE for the config directory; opening the
// app creates the data directory and the schema.
func runInit(cmd *cobra.Command, args []string) error {
	a, err := openApp(resolved)
	if err != nil {
		return err
	}
	path := a.store.Path()
	if err := a.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "bikeledger initialized: %s\n", path)
	return nil
}
