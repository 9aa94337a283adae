package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Crawl the directory and publish the users",
	Long: `Runs a crawl followed by a publish of the crawled users, without
reading them back from the work directory.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&crawlGroupsFile, "groups-file", "", "use an existing group list export")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if crawler == nil || publisher == nil {
		return errors.New("sync service not configured")
	}
	if err := checkSettings(func(s domain.Settings) error {
		if err := s.ValidateCrawl(); err != nil {
			return err
		}
		return s.ValidatePublish()
	}); err != nil {
		return err
	}

	ctx := context.Background()

	cmd.Println("Crawling directory...")
	crawled, err := crawlDirectory(ctx)
	if err != nil {
		return err
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("Crawled %d users from %d groups.", len(crawled.Users), crawled.Groups)))
	printReport(cmd, crawled.Report)

	cmd.Println("Publishing users...")
	result, err := publisher.PublishUsers(ctx, crawled.Users)
	printPublishResult(cmd, result)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
