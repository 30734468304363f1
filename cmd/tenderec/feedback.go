// cmd/tenderec/feedback.go
package main

import (
	"strings"

	"tenderec/internal/models"

	"github.com/spf13/cobra"
)

func feedbackCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Rate tenders locally and send comments to the recommender",
	}
	cmd.AddCommand(feedbackMarkCmd(c))
	cmd.AddCommand(feedbackListCmd(c))
	cmd.AddCommand(feedbackAddCmd(c))
	return cmd
}

func feedbackMarkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <tender> <relevant|not_relevant|none>",
		Short: "Record your opinion on a tender; it re-ranks the recommendation list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			opinion, err := models.ParseOpinion(args[1])
			if err != nil {
				return err
			}
			if err := a.feedback.SetFeedback(cmd.Context(), args[0], opinion); err != nil {
				return err
			}
			if opinion == models.NoOpinion {
				a.printf("Cleared feedback for %q.\n", args[0])
			} else {
				a.printf("Marked %q as %s.\n", args[0], opinion)
			}
			return nil
		},
	}
}

func feedbackListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "comments",
		Aliases: []string{"list"},
		Short:   "List comments sent for the company",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			resp, err := a.service.Feedbacks(cmd.Context(), c.companyName())
			if err != nil {
				return a.report("feedback", err)
			}
			if a.jsonOut {
				return a.printJSON(resp)
			}
			if len(resp.Feedbacks) == 0 {
				a.printf("No comments yet.\n")
				return nil
			}
			for _, f := range resp.Feedbacks {
				a.printf("- %s\n", f.FeedbackComment)
			}
			return nil
		},
	}
}

func feedbackAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <comment...>",
		Short: "Send a comment to improve future recommendations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			comment := strings.Join(args, " ")
			f, err := a.service.CreateFeedback(cmd.Context(), c.companyName(), comment)
			if err != nil {
				return a.report("feedback", err)
			}
			if f == nil {
				return nil
			}
			if a.jsonOut {
				return a.printJSON(f)
			}
			a.printf("Comment sent.\n")
			return nil
		},
	}
}
