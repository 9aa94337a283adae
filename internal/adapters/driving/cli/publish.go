package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push the crawled users to the source",
	Long: `Reads the users written by the last crawl, builds the document batch
and runs the upload protocol: REBUILD status, file container, upload,
batch commit, IDLE status, then removal of documents older than the
stale window.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	if publisher == nil {
		return errors.New("publish service not configured")
	}
	if err := checkSettings(domain.Settings.ValidatePublish); err != nil {
		return err
	}

	cmd.Println("Publishing users...")
	result, err := publisher.Publish(context.Background())
	printPublishResult(cmd, result)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

func printPublishResult(cmd *cobra.Command, result *driving.PublishResult) {
	if result == nil {
		return
	}

	run := result.Run
	if run.Success {
		cmd.Println(successStyle.Render(fmt.Sprintf("Published %d documents.", run.Documents)))
		cmd.Printf("  Ordering ID:     %d\n", run.OrderingID)
		cmd.Printf("  Stale threshold: %d\n", run.StaleThreshold)
	} else {
		cmd.Println(errorStyle.Render(fmt.Sprintf("Publish stopped at %s.", run.LastStep)))
		if run.LastStep >= domain.StepContainerAcquire && run.LastStep <= domain.StepIdleAnnounce {
			cmd.Println(warningStyle.Render("  The source was left in REBUILD status."))
		}
	}
	if result.Excluded > 0 {
		cmd.Printf("  Excluded users:  %d\n", result.Excluded)
	}
	cmd.Println(mutedStyle.Render("  Run " + run.ID))
	printReport(cmd, result.Report)
}
