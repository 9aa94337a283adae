package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/logger"
)

var issueKinds = []domain.IssueKind{
	domain.IssueExportFailure,
	domain.IssueMalformedRecord,
	domain.IssueUnresolvedReference,
	domain.IssueDuplicateIdentity,
	domain.IssueArtifactWrite,
	domain.IssueExcluded,
}

// printReport prints issue counts by kind. Every issue is listed in
// verbose mode.
func printReport(cmd *cobra.Command, report *domain.Report) {
	if report == nil || report.Len() == 0 {
		return
	}

	cmd.Println(warningStyle.Render("Issues"))
	for _, kind := range issueKinds {
		if n := report.Count(kind); n > 0 {
			cmd.Printf("  %-22s %d\n", kind.String()+":", n)
		}
	}

	if !logger.IsVerbose() {
		return
	}
	for _, issue := range report.Issues() {
		cmd.Println(mutedStyle.Render("  - " + issue.String()))
	}
}
