package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chupakbra/pbadm/internal/profile"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit the administrator profile",
		Long: `Show and edit the administrator profile. The backend has no account
endpoints; changes are checked and reported but not stored.`,
	}
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileEditCmd())
	cmd.AddCommand(profilePasswordCmd())
	return cmd
}

func printProfile(cmd *cobra.Command, info profile.Info) error {
	if flagOutput == "json" {
		return jsonOut(cmd, info)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", info.Name)
	fmt.Fprintf(w, "Email:\t%s\n", info.Email)
	fmt.Fprintf(w, "Role:\t%s\n", info.Role)
	return w.Flush()
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show account information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printProfile(cmd, profile.DefaultInfo())
		},
	}
}

func profileEditCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Check new account information",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct := profile.NewAccount(profile.DefaultInfo())
			next := acct.Info()
			if cmd.Flags().Changed("name") {
				next.Name = name
			}
			if cmd.Flags().Changed("email") {
				next.Email = email
			}
			if err := acct.UpdateInfo(next); err != nil {
				return handleErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			return printProfile(cmd, acct.Info())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func profilePasswordCmd() *cobra.Command {
	var form profile.PasswordForm
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Long: fmt.Sprintf(`Change the account password. Values not given as flags are read from
stdin, one per line. The new password needs at least %d characters.`, profile.MinPasswordLength),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			prompts := []struct {
				flag, label string
				value       *string
			}{
				{"current", "Current password", &form.Current},
				{"new", "New password", &form.New},
				{"confirm", "Confirm new password", &form.Confirm},
			}
			for _, p := range prompts {
				if cmd.Flags().Changed(p.flag) {
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", p.label)
				v, err := readSecret(cmd, in)
				if err != nil {
					return fmt.Errorf("reading %s: %w", strings.ToLower(p.label), err)
				}
				*p.value = v
			}

			acct := profile.NewAccount(profile.DefaultInfo())
			acct.SetPassword(form)
			if err := acct.ChangePassword(); err != nil {
				return handleErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Current, "current", "", "current password")
	cmd.Flags().StringVar(&form.New, "new", "", "new password")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "new password again")
	return cmd
}

// readSecret reads one line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
