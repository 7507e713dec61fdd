package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/engine"
	"github.com/suderio/scenario-engine/internal/invoke"
)

var docsCmd = &cobra.Command{
	Use:   "docs [subject]",
	Short: "Print the commands of every subject",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Docs never send calls.
		idle := invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
			return invoke.Outcome{}, fmt.Errorf("no transport")
		})
		e, err := engine.NewWithTransport(cfg, idle, nil)
		if err != nil {
			return err
		}

		subject := ""
		if len(args) == 1 {
			subject = args[0]
		}
		doc, err := e.Registry().Docs(subject)
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
