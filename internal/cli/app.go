package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/bikeledger/internal/catalog"
	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/internal/logging"
	"github.com/mesh-intelligence/bikeledger/internal/store"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// app bundles what a command needs to drive the form. The caller must
// defer Close.
type app struct {
	cfg     types.Config
	log     *zap.Logger
	catalog *catalog.Catalog
	store   *store.Store
}

// openApp builds the logger, loads the catalog and opens the store.
func openApp(cfg types.Config) (*app, error) {
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{cfg: cfg, log: log, catalog: cat, store: st}, nil
}

// loadCatalog returns the configured catalog file, or the built-in one.
func loadCatalog(cfg types.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %w", errConfig, err)
	}
	return cat, nil
}

// controller returns a form controller that reports to notify.
func (a *app) controller(notify form.Notifier) *form.Controller {
	return form.New(a.catalog, a.store, notify, form.WithLogger(a.log))
}

// Close releases the store and flushes the logger.
func (a *app) Close() error {
	err := a.store.Close()
	_ = a.log.Sync()
	return err
}

// cliNotifier prints notifications: successes to stdout, warnings and
// errors to stderr. In JSON mode successes are left to the JSON output.
func cliNotifier(cmd *cobra.Command) form.Notifier {
	return form.NotifierFunc(func(n form.Notification) {
		if n.Level == form.LevelInfo {
			if flags.jsonMode {
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), n)
	})
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
