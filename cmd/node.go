/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/engine"
	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/transport/wsrpc"
)

// nodeCmd serves the simulated chain over the websocket protocol so remote
// runners can use the wsrpc transport against it.
var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Serve the simulated chain over WebSocket JSON-RPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ts := reporter.Defaults()
		if cfg.TaxonomyFile != "" {
			extra, err := reporter.LoadTaxonomies(cfg.TaxonomyFile)
			if err != nil {
				return err
			}
			ts = ts.Merge(extra)
		}
		chain, err := engine.NewSimChain(cfg, ts)
		if err != nil {
			return err
		}

		logger := newLogger()
		srv := &http.Server{
			Addr:              addr,
			Handler:           wsrpc.Handler(chain, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("node listening on %s", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("node: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("node shutdown: %w", err)
		}
		logger.Printf("node stopped after %d calls", len(chain.History()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.Flags().String("listen", "127.0.0.1:8546", "address to listen on")
}
