package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/pbadm/internal/dashboard"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show overview numbers and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			s := startSpinner("Collecting stats...")
			st, err := dashboard.Collect(context.Background(), sources, resolvedLocale)
			s.Stop()

			if flagOutput == "json" {
				if jerr := jsonOut(cmd, st); jerr != nil {
					return jerr
				}
			} else {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Total users:\t%d\n", st.TotalUsers)
				fmt.Fprintf(w, "Subscribers:\t%d (%d expiring)\n", st.Subscribers, st.ExpiringSubscribers)
				fmt.Fprintf(w, "Packages:\t%d active of %d\n", st.ActivePlans, st.TotalPlans)
				w.Flush()

				fmt.Fprintln(cmd.OutOrStdout(), "\nRecent activity:")
				w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, a := range st.Activity {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", a.User, a.Action, a.When)
				}
				w.Flush()
			}
			// Cards that could not be filled are reported after the rest.
			if err != nil {
				return handleErr(err)
			}
			return nil
		},
	}
}
