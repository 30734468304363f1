// cmd/tenderec/recommend.go
package main

import (
	"fmt"
	"text/tabwriter"

	"tenderec/internal/models"
	"tenderec/internal/ranking"

	"github.com/spf13/cobra"
)

func recommendCmd(c *cli) *cobra.Command {
	var nameMatch, industryMatch string

	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"recommendations"},
		Short:   "List recommended tenders, re-ranked by your local feedback",
		Long: `List recommended tenders for the company.

Tenders marked relevant move up and tenders marked not relevant move down.
Mark them with "tenderec feedback mark".

Examples:
  tenderec recommend
  tenderec recommend --name-match PERFECT_MATCH
  tenderec recommend --company greenworks --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			params := models.RecommendationsParams{Company: c.companyName()}
			if nameMatch != "" {
				level, err := models.ParseMatchLevel(nameMatch)
				if err != nil {
					return err
				}
				params.NameMatch = level
			}
			if industryMatch != "" {
				level, err := models.ParseMatchLevel(industryMatch)
				if err != nil {
					return err
				}
				params.IndustryMatch = level
			}

			resp, err := a.service.Recommendations(cmd.Context(), params)
			if err != nil {
				return a.report("recommendations", err)
			}

			opinions := a.feedback.Opinions()
			ranked := ranking.Recommendations(resp.Recommendations, opinions, a.ranking)
			if a.jsonOut {
				return a.printJSON(ranked)
			}
			printRanked(a, ranked, opinions)
			return nil
		},
	}
	cmd.Flags().StringVar(&nameMatch, "name-match", "", "filter by name match level")
	cmd.Flags().StringVar(&industryMatch, "industry-match", "", "filter by industry match level")
	return cmd
}

func printRanked(a *app, ranked []ranking.Scored[models.TenderRecommendation], opinions map[string]models.Opinion) {
	if len(ranked) == 0 {
		a.printf("No recommendations.\n")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tTENDER\tORGANIZATION\tNAME\tINDUSTRY\tFEEDBACK")
	for i, s := range ranked {
		t := s.Item
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\t%s\t%s\t%s\n",
			i+1, s.Adjusted, t.TenderName, t.Organization,
			t.NameMatch.Label(), t.IndustryMatch.Label(), opinionMark(opinions[t.Key()]))
	}
	w.Flush()
}

func opinionMark(o models.Opinion) string {
	switch o {
	case models.Relevant:
		return "+"
	case models.NotRelevant:
		return "-"
	default:
		return ""
	}
}
