package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"graphkit/pkg/graph"
	"graphkit/pkg/graph/types"
	"graphkit/pkg/ui"
)

type ratingsPage struct {
	Data []types.OpenGraphRating `json:"data"`
}

func newRatingsCmd(a *app) *cobra.Command {
	var (
		name  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "ratings <page-id>",
		Short: "List the ratings and recommendations left on a page",
		Long: `List the ratings and recommendations left on a page.

Requires a page access token with the pages_read_user_content permission.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.clientFor(name)
			if err != nil {
				return err
			}

			var page ratingsPage
			err = client.FetchObject(commandContext(cmd), args[0]+"/ratings", &page,
				graph.WithFields(types.OpenGraphRatingFields...),
				graph.With("limit", limit),
			)
			if err != nil {
				return err
			}
			if len(page.Data) == 0 {
				ui.PrintWarning("No ratings")
				return nil
			}

			rows := make([][]string, 0, len(page.Data))
			for i := range page.Data {
				rows = append(rows, ratingRow(&page.Data[i]))
			}
			fmt.Fprintln(ui.Output, ui.Table([]string{"CREATED", "REVIEWER", "KIND", "VALUE", "REVIEW"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", defaultTokenName, "stored token to use")
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of ratings to fetch")
	return cmd
}

func ratingRow(r *types.OpenGraphRating) []string {
	created := ""
	if t := r.CreatedTime(); !t.IsZero() {
		created = t.Format(time.DateOnly)
	}

	reviewer := ""
	if r.Reviewer != nil {
		reviewer = r.Reviewer.Name
	}

	kind, value := "rating", ""
	if r.IsRecommendation() {
		kind = "recommendation"
		if r.RecommendationType != nil {
			value = string(*r.RecommendationType)
		}
	} else {
		value = strconv.Itoa(*r.Rating) + "/5"
	}

	review := ""
	if r.ReviewText != nil {
		review = truncate(*r.ReviewText, 60)
	}
	return []string{created, reviewer, kind, value, review}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
