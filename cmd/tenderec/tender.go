// cmd/tenderec/tender.go
package main

import (
	"strings"

	"tenderec/internal/models"

	"github.com/spf13/cobra"
)

func tenderCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tender <name>",
		Short: "Show tender details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			details, err := a.service.Tender(cmd.Context(), args[0])
			if err != nil {
				return a.report("tender", err)
			}
			if a.jsonOut {
				return a.printJSON(details)
			}
			printTender(a, details)
			return nil
		},
	}
}

func printTender(a *app, t *models.TenderDetails) {
	a.printf("%s\n", t.Name)
	a.printf("  Organization:  %s\n", t.Organization)
	a.printf("  Deadline:      %s\n", t.SubmissionDeadline)
	a.printf("  Published:     %s\n", t.InitiationDate)
	if t.ProcedureType != nil {
		a.printf("  Procedure:     %s\n", *t.ProcedureType)
	}
	a.printf("  Source:        %s\n", t.SourceType)
	a.printf("  URL:           %s\n", t.TenderURL)
	a.printf("  Files (%d):\n", t.FilesCount)
	for _, f := range t.FileURLs {
		a.printf("    %s\n", f)
	}
}

func askCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <tender> <question...>",
		Short: "Ask a question about a tender's documents",
		Long: `Ask a question about a tender's documents.

Examples:
  tenderec ask "Roads 2025" "What is the deadline for questions?"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			question := strings.Join(args[1:], " ")
			resp, err := a.service.Ask(cmd.Context(), args[0], question)
			if err != nil {
				return a.report("chat", err)
			}
			if resp == nil {
				return nil
			}
			if a.jsonOut {
				return a.printJSON(resp)
			}
			a.printf("%s\n", resp.Answer)
			return nil
		},
	}
}

func likedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "List tenders you swiped right, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			liked := a.swipes.Liked()
			if a.jsonOut {
				return a.printJSON(liked)
			}
			printLiked(a, liked)
			return nil
		},
	}
}

func printLiked(a *app, liked []models.SwipedTender) {
	if len(liked) == 0 {
		a.printf("No liked tenders yet. Swipe right in \"tenderec deck play\".\n")
		return
	}
	for _, s := range liked {
		a.printf("- %s (%s, %s)\n", s.TenderName, s.Tender.Organization, s.Tender.NameMatch.Label())
	}
}
