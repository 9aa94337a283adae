package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
)

var crawlGroupsFile string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Export the directory and build the user set",
	Long: `Exports the group list and the users of every group with ldapsearch,
resolves managers and direct reports, and writes one JSON file per user
plus user_map.json to the work directory.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlGroupsFile, "groups-file", "", "use an existing group list export")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	if crawler == nil {
		return errors.New("crawl service not configured")
	}
	if err := checkSettings(domain.Settings.ValidateCrawl); err != nil {
		return err
	}

	cmd.Println("Crawling directory...")
	result, err := crawlDirectory(context.Background())
	if err != nil {
		return err
	}

	cmd.Println(successStyle.Render(fmt.Sprintf("Crawled %d users from %d groups.", len(result.Users), result.Groups)))
	printReport(cmd, result.Report)
	return nil
}

func crawlDirectory(ctx context.Context) (*driving.CrawlResult, error) {
	result, err := crawler.Crawl(ctx, driving.CrawlOptions{GroupsFile: crawlGroupsFile})
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}
	return result, nil
}

// checkSettings validates the current settings with check.
func checkSettings(check func(domain.Settings) error) error {
	if settingsService == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := check(*settings); err != nil {
		return fmt.Errorf("%w (see 'adpush config set')", err)
	}
	return nil
}
