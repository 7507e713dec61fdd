/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/config"
)

// runsCmd lists recorded runs.
var runsCmd = &cobra.Command{
	Use:   "runs [scenario]",
	Short: "List the recorded runs of a scenario",
	Long: `Lists the run ids kept by the configured audit sink. With the SQLite
sink every run is listed and the scenario argument filters them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scenario := ""
		if len(args) == 1 {
			scenario = args[0]
		}

		var runs []string
		switch cfg.Audit.Kind {
		case config.AuditSQLite:
			all, err := audit.ListRuns(cfg.Audit.Path)
			if err != nil {
				return err
			}
			for _, id := range all {
				if scenario == "" || strings.HasPrefix(id, scenario+"/") {
					runs = append(runs, id)
				}
			}
		default:
			if scenario == "" {
				return fmt.Errorf("a scenario name is required for JSONL runs")
			}
			if runs, err = audit.NewRunManager(cfg.Audit.Dir).Runs(scenario); err != nil {
				return err
			}
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
