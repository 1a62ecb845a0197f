package cli

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/model"
	"github.com/chupakbra/pbadm/internal/source"
)

const packagesPageSize = 10

func packagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packages",
		Aliases: []string{"package", "plans"},
		Short:   "Manage subscription packages",
	}
	cmd.AddCommand(packagesListCmd())
	cmd.AddCommand(packagesShowCmd())
	cmd.AddCommand(packagesEditCmd())
	cmd.AddCommand(packagesSetActiveCmd(true))
	cmd.AddCommand(packagesSetActiveCmd(false))
	cmd.AddCommand(packagesAddCmd())
	cmd.AddCommand(packagesDeleteCmd())
	return cmd
}

func newPlanList() *collection.ListModel[model.SubscriptionPlan] {
	return collection.NewListModel(sources.Plans, model.PlanSearchFields, collection.ListOptions{
		Name:     "packages",
		PageSize: packagesPageSize,
		Locale:   resolvedLocale,
		Logger:   logger,
	})
}

// findPlan pages through list until id is found. The list is left on the
// page holding the plan so a commit reloads that page.
func findPlan(ctx context.Context, list *collection.ListModel[model.SubscriptionPlan], id string) (model.SubscriptionPlan, error) {
	for page := 1; ; page++ {
		list.Load(ctx, page)
		if err := list.Err(); err != nil {
			return model.SubscriptionPlan{}, err
		}
		if p, ok := list.Get(id); ok {
			return p, nil
		}
		if !list.HasNext() {
			return model.SubscriptionPlan{}, fmt.Errorf("package %q: %w", id, collection.ErrNotFound)
		}
	}
}

func packagesListCmd() *cobra.Command {
	var (
		page   int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscription packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			list := newPlanList()
			list.SetQuery(search)
			s := startSpinner("Loading packages...")
			list.Load(context.Background(), page)
			s.Stop()
			if err := list.Err(); err != nil {
				return handleErr(err)
			}
			return printPlans(cmd, list)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "filter by package name")
	return cmd
}

func printPlans(cmd *cobra.Command, list *collection.ListModel[model.SubscriptionPlan]) error {
	plans := list.Filtered()
	if flagOutput == "json" {
		type out struct {
			Page       int                      `json:"page"`
			TotalPages int                      `json:"totalPages"`
			Locale     string                   `json:"locale"`
			Packages   []model.SubscriptionPlan `json:"packages"`
		}
		return jsonOut(cmd, out{Page: list.Page(), TotalPages: list.TotalPages(), Locale: list.Locale().String(), Packages: plans})
	}

	if len(plans) == 0 {
		printEmpty(cmd, "packages")
		return nil
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCYCLE\tACTIVE\tFEATURES\tPOPULAR")
	for _, p := range plans {
		popular := ""
		if p.PlanName == source.PopularPlan {
			popular = "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.PlanName, p.Price.StringFixed(2), p.BillingCycle, yesNoBool(p.IsActive), len(p.Features), popular)
	}
	w.Flush()
	printRows(cmd, buf.String(), func(i int) bool { return !plans[i].IsActive })
	if list.TotalPages() > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d\n", list.Page(), list.TotalPages())
	}
	return nil
}

func packagesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a package and its features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			s := startSpinner("Loading package...")
			p, err := findPlan(context.Background(), newPlanList(), args[0])
			s.Stop()
			if err != nil {
				return handleErr(err)
			}
			if flagOutput == "json" {
				return jsonOut(cmd, p)
			}
			printPlan(cmd, p)
			return nil
		},
	}
}

func printPlan(cmd *cobra.Command, p model.SubscriptionPlan) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	name := p.PlanName
	if p.PlanName == source.PopularPlan {
		name += "  ★ Popular"
	}
	fmt.Fprintf(w, "ID:\t%s\n", p.ID)
	fmt.Fprintf(w, "Name:\t%s\n", name)
	if p.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", p.Description)
	}
	fmt.Fprintf(w, "Price:\t%s / %s\n", p.Price.StringFixed(2), p.BillingCycle)
	fmt.Fprintf(w, "Active:\t%s\n", yesNoBool(p.IsActive))
	w.Flush()
	fmt.Fprintln(cmd.OutOrStdout(), "Features:")
	if len(p.Features) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  (none)")
	}
	for i, f := range p.Features {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s\n", i+1, f)
	}
}

// planEdits are the edit flags shared by edit and add.
type planEdits struct {
	name, description, price, cycle, active string
	features                                []string
	addFeatures                             []string
	removeFeatures                          []int
}

func (e *planEdits) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.name, "name", "", "package name")
	cmd.Flags().StringVar(&e.description, "description", "", "description")
	cmd.Flags().StringVar(&e.price, "price", "", "price, e.g. 19.99")
	cmd.Flags().StringVar(&e.cycle, "cycle", "", "billing cycle: monthly or yearly")
	cmd.Flags().StringVar(&e.active, "active", "", "true or false")
	cmd.Flags().StringArrayVar(&e.features, "feature", nil, "replace the feature list (repeatable)")
	cmd.Flags().StringArrayVar(&e.addFeatures, "add-feature", nil, "append a feature (repeatable)")
	cmd.Flags().IntSliceVar(&e.removeFeatures, "remove-feature", nil, "remove the feature at this 1-based position (repeatable)")
}

// apply writes the flags that were set into d.
func (e *planEdits) apply(cmd *cobra.Command, d *model.PlanDraft) error {
	scalar := []struct {
		flag, field string
		value       *string
	}{
		{"name", model.FieldPlanName, &e.name},
		{"description", model.FieldDescription, &e.description},
		{"price", model.FieldPrice, &e.price},
		{"cycle", model.FieldBillingCycle, &e.cycle},
		{"active", model.FieldIsActive, &e.active},
	}
	for _, s := range scalar {
		if !cmd.Flags().Changed(s.flag) {
			continue
		}
		if err := d.Set(s.field, *s.value); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("feature") {
		d.Features = append([]string(nil), e.features...)
	}

	// Remove from the highest position down so earlier indexes stay valid.
	removals := append([]int(nil), e.removeFeatures...)
	slices.Sort(removals)
	slices.Reverse(removals)
	for i, pos := range removals {
		if i > 0 && pos == removals[i-1] {
			continue
		}
		if err := d.RemoveFeature(pos - 1); err != nil {
			return fmt.Errorf("--remove-feature %d: %w", pos, err)
		}
	}

	for _, f := range e.addFeatures {
		d.AddFeature()
		if err := d.UpdateFeature(len(d.Features)-1, f); err != nil {
			return err
		}
	}
	return nil
}

func packagesEditCmd() *cobra.Command {
	var edits planEdits
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a package",
		Long: `Edit a package. Only the fields given as flags change; the rest keep
their current values. Feature flags apply in order: --feature replaces the
list, then --remove-feature, then --add-feature. Blank features are dropped.`,
		Example: `  pbadm packages edit 2 --price 24.99
  pbadm packages edit 2 --add-feature "Priority Support" --remove-feature 1
  pbadm packages edit 3 --locale sp --name "Premium" --feature "Todo ilimitado"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			ctx := context.Background()
			list := newPlanList()
			s := startSpinner("Loading package...")
			p, err := findPlan(ctx, list, args[0])
			s.Stop()
			if err != nil {
				return handleErr(err)
			}

			edit := collection.NewEditSession(list, model.NewPlanDraft)
			edit.Begin(p)
			if err := edits.apply(cmd, edit.Draft()); err != nil {
				return err
			}
			if len(edit.Draft().Patch()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
				return nil
			}
			return commitPlan(cmd, list, edit, fmt.Sprintf("Package %s updated.", p.ID))
		},
	}
	edits.register(cmd)
	return cmd
}

// commitPlan sends the open draft and prints the reloaded plan on success.
func commitPlan(cmd *cobra.Command, list *collection.ListModel[model.SubscriptionPlan], edit *collection.EditSession[model.SubscriptionPlan, *model.PlanDraft], done string) error {
	target, _ := edit.Target()
	s := startSpinner("Saving package...")
	err := edit.Commit(context.Background())
	s.Stop()
	if err != nil {
		return handleErr(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	noteStatic(cmd)
	if p, ok := list.Get(target.ID); ok && flagOutput != "json" {
		printPlan(cmd, p)
	}
	return nil
}

func packagesSetActiveCmd(active bool) *cobra.Command {
	verb := "activate"
	if !active {
		verb = "deactivate"
	}
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: capitalize(verb) + " a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			ctx := context.Background()
			list := newPlanList()
			p, err := findPlan(ctx, list, args[0])
			if err != nil {
				return handleErr(err)
			}
			if p.IsActive == active {
				fmt.Fprintf(cmd.OutOrStdout(), "Package %s is already %sd.\n", p.ID, verb)
				return nil
			}
			s := startSpinner(strings.TrimSuffix(capitalize(verb), "e") + "ing package...")
			err = list.Mutate(ctx, collection.Mutation[model.SubscriptionPlan]{
				ID:    p.ID,
				Patch: map[string]any{model.FieldIsActive: active},
				Local: func(p model.SubscriptionPlan) (model.SubscriptionPlan, bool) {
					p.IsActive = active
					return p, true
				},
			})
			s.Stop()
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Package %s %sd.\n", p.ID, verb)
			noteStatic(cmd)
			return nil
		},
	}
}

func packagesAddCmd() *cobra.Command {
	var edits planEdits
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a package (static source only)",
		Long: `Add a package. The backend has no create endpoint, so this works only
with the static source.`,
		Example: `  pbadm --source static packages add --name Starter --price 4.99 \
    --feature "1 Photobook" --feature "Email Support"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			if _, ok := sources.Plans.(collection.Creator[model.SubscriptionPlan]); !ok {
				return handleErr(fmt.Errorf("adding packages: %w", collection.ErrUnsupported))
			}
			list := newPlanList()
			edit := collection.NewEditSession(list, model.NewPlanDraft)
			plan := source.NewPlan()
			edit.BeginNew(plan)
			if err := edits.apply(cmd, edit.Draft()); err != nil {
				return err
			}
			return commitPlan(cmd, list, edit, fmt.Sprintf("Package %s added.", plan.ID))
		},
	}
	edits.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func packagesDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a package (static source only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := initClient(cmd); err != nil {
				return err
			}
			prompt := fmt.Sprintf("Delete package %s? This cannot be undone.", id)
			return confirmAction(cmd, collection.ActionDelete, id, prompt, force, func(a collection.PendingAction) error {
				list := newPlanList()
				s := startSpinner("Deleting package...")
				err := list.Mutate(context.Background(), collection.Mutation[model.SubscriptionPlan]{ID: a.TargetID, Delete: true})
				s.Stop()
				if err != nil {
					return handleErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Package %s deleted.\n", a.TargetID)
				noteStatic(cmd)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "skip confirmation prompt")
	return cmd
}
