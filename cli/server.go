package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
)

const verifyTimeout = 15 * time.Second

func serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage configured backend servers",
		Long:  "Add, remove, list, and switch between configured backend servers.",
	}

	cmd.AddCommand(serverListCmd())
	cmd.AddCommand(serverAddCmd())
	cmd.AddCommand(serverRemoveCmd())
	cmd.AddCommand(serverUseCmd())
	cmd.AddCommand(serverShowCmd())
	return cmd
}

// serverListCmd lists all configured servers.
func serverListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			names := slices.Sorted(maps.Keys(cfg.Servers))

			if flagOutput == "json" {
				type row struct {
					Name    string `json:"name"`
					URL     string `json:"url"`
					Source  string `json:"source"`
					Locale  string `json:"locale"`
					Current bool   `json:"current"`
				}
				rows := make([]row, 0, len(names))
				for _, name := range names {
					srv := cfg.Servers[name].WithDefaults()
					rows = append(rows, row{
						Name:    name,
						URL:     srv.URL,
						Source:  srv.Source,
						Locale:  srv.Locale,
						Current: name == cfg.CurrentServer,
					})
				}
				return jsonOut(cmd, rows)
			}

			if len(names) == 0 {
				printEmpty(cmd, "servers")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tURL\tSOURCE\tLOCALE\tCURRENT")
			for _, name := range names {
				srv := cfg.Servers[name].WithDefaults()
				current := ""
				if name == cfg.CurrentServer {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, srv.URL, srv.Source, srv.Locale, current)
			}
			return w.Flush()
		},
	}
}

// serverAddCmd adds a new named server to the config.
func serverAddCmd() *cobra.Command {
	var (
		url        string
		loc        string
		src        string
		pageSize   int
		updatePath string
		deletePath string
		noVerify   bool
	)

	cmd := &cobra.Command{
		Use:          "add <name>",
		Short:        "Add a backend server",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: false,
		Example: `  pbadm server add production --url http://72.62.92.138:5419

  pbadm server add spanish --url http://72.62.92.138:5419 --locale sp

  pbadm server add demo --source static`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, exists := cfg.Servers[name]; exists {
				return fmt.Errorf("server %q already exists; remove it first", name)
			}

			srv := config.ServerConfig{
				URL:            strings.TrimRight(url, "/"),
				Locale:         loc,
				Source:         src,
				PageSize:       pageSize,
				UserUpdatePath: updatePath,
				UserDeletePath: deletePath,
			}
			resolved := srv.WithDefaults()
			if err := resolved.Validate(); err != nil {
				return err
			}
			if _, err := locale.Parse(resolved.Locale); err != nil {
				return err
			}

			// Verify the backend answers before saving.
			if resolved.Source == config.SourceRemote && !noVerify {
				s := startSpinner(fmt.Sprintf("Verifying connection to %s...", resolved.URL))
				connErr := verifyServer(&resolved)
				s.Stop()
				if connErr != nil {
					return fmt.Errorf("connection check failed: %w\n\nHint: %s", connErr, connectionHint(&resolved, connErr))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connection verified.\n")
			}

			cfg.Servers[name] = srv
			if cfg.CurrentServer == "" {
				cfg.CurrentServer = name
			}
			if err := config.Save(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Server %q added.\n", name)
			if cfg.CurrentServer == name {
				fmt.Fprintf(cmd.OutOrStdout(), "Set %q as the default server.\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "backend base URL, e.g. http://72.62.92.138:5419")
	cmd.Flags().StringVar(&loc, "locale", "", "content language: en or sp (default en)")
	cmd.Flags().StringVar(&src, "source", "", "data source: remote or static (default remote)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "users per page (default 10)")
	cmd.Flags().StringVar(&updatePath, "user-update-path", "", "endpoint that updates a user (?id=), enables block/unblock")
	cmd.Flags().StringVar(&deletePath, "user-delete-path", "", "endpoint that deletes a user (?id=), enables delete")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "save without checking the server is reachable")
	return cmd
}

// serverRemoveCmd removes a named server from the config.
func serverRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a configured server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if _, ok := cfg.Servers[name]; !ok {
				return fmt.Errorf("server %q not found", name)
			}
			delete(cfg.Servers, name)
			if cfg.CurrentServer == name {
				cfg.CurrentServer = ""
			}

			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server %q removed.\n", name)
			return nil
		},
	}
}

// serverUseCmd sets the default server.
func serverUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the default server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if _, ok := cfg.Servers[name]; !ok {
				return fmt.Errorf("server %q not found; add it first with 'server add'", name)
			}

			cfg.CurrentServer = name
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default server set to %q.\n", name)
			return nil
		},
	}
}

// serverShowCmd shows config for the current or named server.
func serverShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show config for the current or named server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			name := cfg.CurrentServer
			if len(args) > 0 {
				name = args[0]
			}
			if name == "" {
				return fmt.Errorf("no server selected and no name provided")
			}

			raw, ok := cfg.Servers[name]
			if !ok {
				return fmt.Errorf("server %q not found", name)
			}
			srv := raw.WithDefaults()

			if flagOutput == "json" {
				type out struct {
					Name           string `json:"name"`
					URL            string `json:"url"`
					Source         string `json:"source"`
					Locale         string `json:"locale"`
					PageSize       int    `json:"page-size"`
					UserUpdatePath string `json:"user-update-path,omitempty"`
					UserDeletePath string `json:"user-delete-path,omitempty"`
					Current        bool   `json:"current"`
				}
				return jsonOut(cmd, out{
					Name:           name,
					URL:            srv.URL,
					Source:         srv.Source,
					Locale:         srv.Locale,
					PageSize:       srv.PageSize,
					UserUpdatePath: srv.UserUpdatePath,
					UserDeletePath: srv.UserDeletePath,
					Current:        name == cfg.CurrentServer,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", name)
			fmt.Fprintf(w, "URL:\t%s\n", srv.URL)
			fmt.Fprintf(w, "Source:\t%s\n", srv.Source)
			fmt.Fprintf(w, "Locale:\t%s\n", srv.Locale)
			fmt.Fprintf(w, "Page size:\t%d\n", srv.PageSize)
			if srv.UserUpdatePath != "" {
				fmt.Fprintf(w, "User update path:\t%s\n", srv.UserUpdatePath)
			}
			if srv.UserDeletePath != "" {
				fmt.Fprintf(w, "User delete path:\t%s\n", srv.UserDeletePath)
			}
			fmt.Fprintf(w, "Current:\t%v\n", name == cfg.CurrentServer)
			return w.Flush()
		},
	}
}

// verifyServer builds a client for srv and confirms the backend answers.
func verifyServer(srv *config.ServerConfig) error {
	c, err := client.New(srv, client.WithLogger(logger))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()
	return c.Ping(ctx)
}

// connectionHint returns a human-readable hint based on the error type.
func connectionHint(srv *config.ServerConfig, err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout") || strings.Contains(msg, "dial"):
		return fmt.Sprintf("check that %s is reachable and the port is correct", srv.URL)
	case client.IsNotFound(err):
		return "the server answered but has no subscription endpoint; check the base URL path"
	case client.IsNotAuthorized(err):
		return "the server rejected the request; this console sends no credentials"
	default:
		return "check the URL and network connectivity, or add it with --no-verify"
	}
}
