package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/internal/httpapi"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the purchase form as a JSON HTTP API",
		Long: `Serve exposes the purchase form over HTTP until interrupted.

Routes:
  GET  /api/models          catalog entries
  GET  /api/models/{model}  fields filled for a model
  GET  /api/entries         recorded bikes
  POST /api/entries         submit the form

Example:
  bikeledger serve
  bikeledger serve --listen :9090`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("listen", "", "listen address (default: "+types.DefaultListen+")")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(resolved)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := &httpapi.Handler{
		Form:    a.controller(logNotifier(a.log)),
		Catalog: a.catalog,
	}
	return serveHTTP(ctx, a.cfg.Listen, httpapi.NewRouter(h, a.log), a.log, cmd.OutOrStdout())
}

// serveHTTP serves handler on addr until ctx is done, then shuts down.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, log *zap.Logger, out io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	log.Info("server started", zap.String("addr", ln.Addr().String()))
	fmt.Fprintf(out, "Serving on http://%s\n", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// logNotifier records notifications in the log; HTTP clients receive them
// in the response body.
func logNotifier(log *zap.Logger) form.Notifier {
	return form.NotifierFunc(func(n form.Notification) {
		fields := []zap.Field{
			zap.Stringer("level", n.Level),
			zap.String("title", n.Title),
			zap.String("message", n.Message),
		}
		if n.Level == form.LevelError {
			log.Warn("notification", fields...)
			return
		}
		log.Debug("notification", fields...)
	})
}
