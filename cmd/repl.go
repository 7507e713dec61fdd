/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl [scenario_name]",
	Short: "Start the interactive REPL shell",
	Long: `Starts the read-eval-print loop for issuing scenario events one at a time.
Usage:
	> VAIController Deploy
	> From Geoff (VAIController Mint 1e18)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Logging stays off while the TUI owns the screen.
		cfg.Verbose = false

		scenario := "repl"
		if len(args) == 1 {
			scenario = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		e, err := engine.New(ctx, cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to bootstrap scenario engine: %w", err)
		}
		defer e.Close()

		runID := audit.NewRunID()
		store, err := e.OpenStore(scenario, runID)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		if err := RunTUI(ctx, e.NewSession(store, nil)); err != nil {
			return fmt.Errorf("fatal TUI error: %w", err)
		}
		if store != nil {
			fmt.Printf("Run %s of %s recorded.\n", runID, scenario)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
