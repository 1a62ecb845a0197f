package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/config"
	clierrors "github.com/chupakbra/pbadm/internal/errors"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/logging"
	"github.com/chupakbra/pbadm/internal/source"
	"github.com/chupakbra/pbadm/tui"
)

// version is set at build time via -X github.com/chupakbra/pbadm/cli.version=<ver>.
var version = "0.3.0"

var (
	// global state resolved in initClient
	sources        source.Set
	resolvedServer config.ServerConfig
	resolvedLocale locale.Locale
	resolvedURL    string
	logger         = zap.NewNop()

	// global flags
	flagServer   string
	flagURL      string
	flagLocale   string
	flagSource   string
	flagOutput   string
	flagLogFile  string
	flagLogLevel string
	flagTUI      bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:     "pbadm",
	Version: version,
	Short:   "Administer users, subscribers and subscription packages",
	Long: `pbadm manages the users, subscribers and subscription packages of a
subscription backend, from the command line or an interactive terminal UI.

Configure a server with:
  pbadm server add production --url http://72.62.92.138:5419
  pbadm server use production

Try it offline with the built-in sample data:
  pbadm --source static users list`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTUI {
			return launchTUI()
		}
		return cmd.Help()
	},
}

// Execute wires the command tree and runs it.
func Execute() {
	rootCmd.SetVersionTemplate("pbadm {{.Version}}\n")

	// Local flags (root command only)
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "launch interactive terminal UI")

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "named server from config (overrides current-server)")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "server URL, one-shot, no config needed")
	rootCmd.PersistentFlags().StringVarP(&flagLocale, "locale", "l", "", "content language: en or sp")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "data source: remote or static")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write JSON logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")

	// Sub-command groups
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(subscribersCmd())
	rootCmd.AddCommand(packagesCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(dashboardCmd())

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// overrides collects env and flag values that win over the server profile.
// Flags take precedence over env.
func overrides(env config.Env) config.ServerConfig {
	o := config.ServerConfig{}.ApplyEnv(env)
	return o.Merge(config.ServerConfig{URL: flagURL, Locale: flagLocale, Source: flagSource})
}

// initLogger builds the process logger. Without a log file the CLI logs
// warnings and errors to stderr.
func initLogger(env config.Env, path, defaultLevel string) error {
	level := flagLogLevel
	if level == "" {
		level = env.LogLevel
	}
	if level == "" {
		level = defaultLevel
	}
	l, err := logging.New(path, level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// initClient is called by command RunE functions that need a data source.
// It resolves the server profile, applies env and flag overrides and builds
// the sources for it.
func initClient(cmd *cobra.Command) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	logPath := flagLogFile
	if logPath == "" {
		logPath = env.LogFile
	}
	if err := initLogger(env, logPath, "warn"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var srv config.ServerConfig
	if flagURL != "" || flagSource == config.SourceStatic {
		// Inline flags need no config entry.
		srv = config.Default()
	} else {
		resolved, _, err := cfg.Resolve(flagServer)
		if err != nil {
			return err
		}
		srv = *resolved
	}
	srv = srv.WithDefaults().Merge(overrides(env))
	if err := srv.Validate(); err != nil {
		return err
	}

	loc, err := locale.Parse(srv.Locale)
	if err != nil {
		return err
	}

	var c *client.Client
	if srv.Source == config.SourceRemote {
		c, err = client.New(&srv, client.WithLogger(logger))
		if err != nil {
			return err
		}
	}
	set, err := source.For(&srv, c)
	if err != nil {
		return err
	}

	sources = set
	resolvedServer = srv
	resolvedLocale = loc
	resolvedURL = srv.URL
	return nil
}

func launchTUI() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	logPath := flagLogFile
	if logPath == "" {
		logPath = env.LogFile
	}
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if err := initLogger(env, logPath, "info"); err != nil {
		return err
	}
	if flagLocale != "" {
		if _, err := locale.Parse(flagLocale); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagServer != "" {
		cfg.CurrentServer = flagServer
	}
	logger.Info("starting tui", zap.String("version", version))
	return tui.LaunchTUI(tui.Options{Config: cfg, Overrides: overrides(env), Logger: logger})
}

// handleErr maps an error through the error handler with the resolved URL for
// connection error messages. Commands call this in their RunE return.
func handleErr(err error) error {
	return clierrors.Handle(resolvedURL, err)
}
