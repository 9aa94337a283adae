package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded publish runs",
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one publish run",
	Long:  "Show one publish run. ID may be the short form printed by the runs list.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to show (0 for all)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	runs, err := runHistory.Runs(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No publish runs recorded.")
		return nil
	}

	cmd.Println(runsTable(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	run, err := runHistory.Run(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Println(titleStyle.Render("Run " + run.ID))
	cmd.Printf("  Started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	if !run.EndedAt.IsZero() {
		cmd.Printf("  Ended: %s\n", run.EndedAt.Local().Format(time.DateTime))
	}
	cmd.Printf("  Duration: %s\n", runDuration(*run))
	cmd.Printf("  Documents: %d\n", run.Documents)
	cmd.Printf("  File ID: %s\n", orDash(run.FileID))
	cmd.Printf("  Ordering ID: %s\n", orderingID(run.OrderingID))
	cmd.Printf("  Stale threshold: %s\n", orderingID(run.StaleThreshold))
	cmd.Printf("  Last step: %s\n", run.LastStep)
	if run.Success {
		cmd.Printf("  Result: %s\n", successStyle.Render("ok"))
	} else {
		cmd.Printf("  Result: %s\n", errorStyle.Render("failed"))
		cmd.Printf("  Error: %s\n", orDash(run.Error))
	}
	return nil
}

func runsTable(runs []domain.PublishRun) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "STARTED", "DURATION", "DOCS", "ORDERING ID", "STEP", "RESULT")

	for _, run := range runs {
		t.Row(
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			strconv.Itoa(run.Documents),
			orderingID(run.OrderingID),
			run.LastStep.String(),
			runResult(run),
		)
	}
	return t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run domain.PublishRun) string {
	if run.EndedAt.IsZero() {
		return "-"
	}
	return run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

func orderingID(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runResult(run domain.PublishRun) string {
	if run.Success {
		return "ok"
	}
	return "failed"
}
