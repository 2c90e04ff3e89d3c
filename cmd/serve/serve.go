// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/statement-scanner/cmd/root"
	"fjacquet/statement-scanner/internal/api"
	"fjacquet/statement-scanner/internal/container"
	"fjacquet/statement-scanner/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown.
const ShutdownTimeout = 30 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statement workflow over HTTP",
	Long: `Start the HTTP JSON API: upload a statement, search and correct its
transactions, manage keyword rules and categories, and export CSV.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.address)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Run(ctx, c, addr)
}

// NewServer builds the API server from the container. An empty address
// selects server.address.
func NewServer(c *container.Container, address string) *http.Server {
	cfg := c.GetConfig()
	if address == "" {
		address = cfg.Server.Address
	}
	log := logging.ForComponent(c.GetLogger(), "api")
	handler := api.NewHandler(c.GetSession(), c.GetGenerator(), int64(cfg.Server.MaxUploadMB)<<20, log)
	return api.NewServer(address, handler, log)
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, c *container.Container, address string) error {
	log := c.GetLogger()
	server := NewServer(c, address)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting API server", logging.Field{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}
