package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/model"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "List, block, unblock and delete users",
	}
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersBlockCmd(true))
	cmd.AddCommand(usersBlockCmd(false))
	cmd.AddCommand(usersDeleteCmd())
	return cmd
}

// newUserList builds a list model over the resolved users source.
func newUserList() *collection.ListModel[model.User] {
	return collection.NewListModel(sources.Users, model.UserSearchFields, collection.ListOptions{
		Name:     "users",
		PageSize: resolvedServer.PageSize,
		Locale:   resolvedLocale,
		Logger:   logger,
	})
}

func usersListCmd() *cobra.Command {
	var (
		page   int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of users",
		Long: `List one page of users. --search filters the fetched page by name or
email, case-insensitively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initClient(cmd); err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			list := newUserList()
			list.SetQuery(search)

			s := startSpinner("Loading users...")
			list.Load(context.Background(), page)
			s.Stop()
			if err := list.Err(); err != nil {
				return handleErr(err)
			}
			return printUsers(cmd, list)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or email")
	return cmd
}

func printUsers(cmd *cobra.Command, list *collection.ListModel[model.User]) error {
	users := list.Filtered()
	if flagOutput == "json" {
		type out struct {
			Page       int          `json:"page"`
			TotalPages int          `json:"totalPages"`
			Users      []model.User `json:"users"`
		}
		return jsonOut(cmd, out{Page: list.Page(), TotalPages: list.TotalPages(), Users: users})
	}

	if len(users) == 0 {
		printEmpty(cmd, "users")
	} else {
		var buf bytes.Buffer
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tJOINED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Status, formatDate(u.CreatedAt))
		}
		w.Flush()
		printRows(cmd, buf.String(), func(i int) bool { return users[i].Blocked() })
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d\n", list.Page(), list.TotalPages())
	return nil
}

func usersBlockCmd(blocked bool) *cobra.Command {
	var force bool
	verb, kind := "block", collection.ActionBlock
	if !blocked {
		verb, kind = "unblock", collection.ActionUnblock
	}
	cmd := &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("%s a user", capitalize(verb)),
		Long: fmt.Sprintf(`%s a user.

Against a remote server this needs user-update-path on the server profile.`, capitalize(verb)),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := initClient(cmd); err != nil {
				return err
			}
			if err := checkUserEndpoint(false); err != nil {
				return err
			}
			prompt := fmt.Sprintf("%s user %s?", capitalize(verb), id)
			return confirmAction(cmd, kind, id, prompt, force, func(a collection.PendingAction) error {
				list := newUserList()
				s := startSpinner(fmt.Sprintf("%sing user...", capitalize(verb)))
				err := list.Mutate(context.Background(), collection.Mutation[model.User]{
					ID:    a.TargetID,
					Patch: model.BlockPatch(a.Kind == collection.ActionBlock),
				})
				s.Stop()
				if err != nil {
					return handleErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s %sed.\n", a.TargetID, verb)
				noteStatic(cmd)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func usersDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Long: `Delete a user. This cannot be undone.

Against a remote server this needs user-delete-path on the server profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := initClient(cmd); err != nil {
				return err
			}
			if err := checkUserEndpoint(true); err != nil {
				return err
			}
			prompt := fmt.Sprintf("Delete user %s? This cannot be undone.", id)
			return confirmAction(cmd, collection.ActionDelete, id, prompt, force, func(a collection.PendingAction) error {
				list := newUserList()
				s := startSpinner("Deleting user...")
				err := list.Mutate(context.Background(), collection.Mutation[model.User]{ID: a.TargetID, Delete: true})
				s.Stop()
				if err != nil {
					return handleErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted.\n", a.TargetID)
				noteStatic(cmd)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

// checkUserEndpoint fails before the confirmation prompt when the remote
// profile has no endpoint for the mutation.
func checkUserEndpoint(del bool) error {
	if sources.Client == nil {
		return nil
	}
	update, canDelete := sources.Client.CanMutateUsers()
	if (del && canDelete) || (!del && update) {
		return nil
	}
	return handleErr(client.ErrEndpointNotConfigured)
}

// noteStatic reminds that fixture changes do not outlive the process.
func noteStatic(cmd *cobra.Command) {
	if sources.Kind == config.SourceStatic {
		fmt.Fprintln(cmd.ErrOrStderr(), "Note: static source; the change is not kept after this command exits.")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
