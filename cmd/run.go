/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/scenario-engine/internal/audit"
	"github.com/suderio/scenario-engine/internal/engine"
	"github.com/suderio/scenario-engine/internal/parser"
	"github.com/suderio/scenario-engine/internal/world"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D94"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// scriptResult is the outcome of running one script.
type scriptResult struct {
	Script   string
	RunID    string
	Events   int
	Total    int
	Actions  int
	Rejected int
	Err      error
}

var runCmd = &cobra.Command{
	Use:   "run <script>...",
	Short: "Run scenario scripts",
	Long: `Runs each script in order. A script stops at its first fatal error:
a malformed or unmatched event, a transport failure or a failed strict
assertion. Rejected calls are recorded and do not stop the script.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		failFast, _ := cmd.Flags().GetBool("fail-fast")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		e, err := engine.New(ctx, cfg, newLogger())
		if err != nil {
			return err
		}
		defer e.Close()

		var results []scriptResult
		for _, path := range args {
			res := runScript(ctx, e, path, quiet)
			results = append(results, res)
			if res.Err != nil && failFast {
				break
			}
		}

		fmt.Println(renderSummary(results))
		for _, r := range results {
			if r.Err != nil {
				return fmt.Errorf("%d of %d scripts failed", countFailed(results), len(results))
			}
		}
		return nil
	},
}

func runScript(ctx context.Context, e *engine.Engine, path string, quiet bool) scriptResult {
	res := scriptResult{Script: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	lines, err := parser.ParseScript(f)
	f.Close()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.Total = len(lines)

	res.RunID = audit.NewRunID()
	store, err := e.OpenStore(audit.ScenarioName(path), res.RunID)
	if err != nil {
		res.Err = err
		return res
	}
	if store != nil {
		defer store.Close()
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.Default(int64(len(lines)), audit.ScenarioName(path))
	}
	s := e.NewSession(store, func(line parser.ScriptLine, err error) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})

	res.Events, res.Err = s.RunLines(ctx, lines)
	if bar != nil {
		_ = bar.Finish()
	}
	res.Actions, res.Rejected = tally(s.World())
	return res
}

func tally(w world.World) (actions, rejected int) {
	for _, a := range w.Actions() {
		actions++
		if !a.Invocation.Success {
			rejected++
		}
	}
	return actions, rejected
}

func countFailed(results []scriptResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func renderSummary(results []scriptResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		status := passStyle.Render("PASS")
		if r.Err != nil {
			status = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&sb, "%s %s %s", status, r.Script,
			dimStyle.Render(fmt.Sprintf("(%d/%d events, %d actions, %d rejected)", r.Events, r.Total, r.Actions, r.Rejected)))
		if r.RunID != "" {
			fmt.Fprintf(&sb, "\n     %s", dimStyle.Render("run "+r.RunID))
		}
		if r.Err != nil {
			fmt.Fprintf(&sb, "\n     %v", r.Err)
		}
	}
	return summaryStyle.Render(sb.String())
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "do not show progress bars")
	runCmd.Flags().Bool("fail-fast", false, "stop after the first failing script")
}
