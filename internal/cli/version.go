package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridable with -ldflags "-X".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/bikeledger"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bikeledger version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bikeledger v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
