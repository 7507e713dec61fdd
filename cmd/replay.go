/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/config"
	"github.com/suderio/scenario-engine/internal/world"
)

// replayCmd rebuilds the World of a recorded run.
var replayCmd = &cobra.Command{
	Use:   "replay <scenario> <run>",
	Short: "Rebuild a recorded run and print its World",
	Long: `Reads the audit log of a run and folds its deltas into the final World.
Runs are looked up in the configured audit sink: a JSONL run directory
(audit.dir/<scenario>/<run>/log.jsonl) or the SQLite database (audit.path).
A path to a log.jsonl file may be given instead of <scenario> <run>.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var store audit.Store
		switch {
		case len(args) == 1:
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("audit log %s not found", args[0])
			}
			store, err = audit.OpenJSONL(args[0])
		case cfg.Audit.Kind == config.AuditSQLite:
			store, err = audit.OpenSQLite(cfg.Audit.Path, args[0]+"/"+args[1])
		default:
			var path string
			path, err = audit.NewRunManager(cfg.Audit.Dir).Load(args[0], args[1])
			if err == nil {
				store, err = audit.OpenJSONL(path)
			}
		}
		if err != nil {
			return fmt.Errorf("error finding run: %w", err)
		}
		defer store.Close()

		w, err := audit.Replay(store, cfg.World)
		if err != nil {
			return fmt.Errorf("error building world: %w", err)
		}
		printWorld(w)
		return nil
	},
}

func printWorld(w world.World) {
	fmt.Printf("Contracts: %d\n", len(w.Entities()))
	for _, e := range w.Entities() {
		fmt.Printf("- %s (%s %s) at %s\n", e.Name, e.Kind, e.Description, e.Address)
	}
	fmt.Printf("Actions: %d\n", w.ActionCount())
	for i, a := range w.Actions() {
		fmt.Printf("%3d. %s\n", i+1, describeAction(a))
	}
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
