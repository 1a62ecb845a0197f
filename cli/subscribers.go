package cli

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/model"
)

const subscribersPageSize = 50

func subscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscribers",
		Aliases: []string{"subscriber", "subs"},
		Short:   "List subscribers",
	}
	cmd.AddCommand(subscribersListCmd())
	return cmd
}

func subscribersListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers and per-plan counts",
		Long: `List subscribers and per-plan counts. --search matches name, email or
plan name, case-insensitively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			list := collection.NewListModel(sources.Subscribers, model.SubscriberSearchFields, collection.ListOptions{
				Name:     "subscribers",
				PageSize: subscribersPageSize,
				Locale:   resolvedLocale,
				Logger:   logger,
			})
			list.SetQuery(search)
			list.Load(context.Background(), 1)
			if err := list.Err(); err != nil {
				return handleErr(err)
			}
			return printSubscribers(cmd, list.Items(), list.Filtered())
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, email or plan")
	return cmd
}

// printSubscribers prints tier counts over all rows and the rows matching
// the search.
func printSubscribers(cmd *cobra.Command, all, shown []model.Subscriber) error {
	counts := model.CountByTier(all)
	if flagOutput == "json" {
		type out struct {
			Counts      map[model.PlanTier]int `json:"counts"`
			Subscribers []model.Subscriber     `json:"subscribers"`
		}
		return jsonOut(cmd, out{Counts: counts, Subscribers: shown})
	}

	for _, tier := range model.Tiers {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d  ", tier, counts[tier])
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout())

	if len(shown) == 0 {
		printEmpty(cmd, "subscribers")
		return nil
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPLAN\tSTART\tEND\tSTATUS")
	for _, s := range shown {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Email, s.Plan, formatDate(s.StartDate), formatDate(s.EndDate), s.Status)
	}
	w.Flush()
	printRows(cmd, buf.String(), func(i int) bool { return shown[i].Status == model.SubscriberExpiring })
	return nil
}
