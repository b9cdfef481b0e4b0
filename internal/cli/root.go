// Package cli implements the bikeledger command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	reset     bool
	jsonMode  bool
}

var flags rootFlags

// resolved is the configuration loaded by the root PersistentPreRunE.
var resolved types.Config

// NewRootCmd creates the top-level "bikeledger" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bikeledger",
		Short: "Record motorcycle purchases in a local ledger",
		Long: `bikeledger records motorcycle purchase entries in a local SQLite database.
Selecting a known model fills in its brand, built year and list price from the
built-in catalog; entries are validated before they are stored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			resolved = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.bikeledger-db)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	root.PersistentFlags().BoolVar(&flags.reset, "reset", false, "delete the database before opening it")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newSelectCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newFormCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	var shown *reportedError
	if !errors.As(err, &shown) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error to the process exit status. Store and
// configuration failures are system errors; everything else, including
// rejected input and bad arguments, is a user error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrPersistence), errors.Is(err, errConfig):
		return exitSysError
	default:
		return exitUserError
	}
}

// reportedError marks an error the user has already seen as a notification,
// so Execute does not print it a second time.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}
