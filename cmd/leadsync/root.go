package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	_ "github.com/JonMunkholm/leadsync/internal/core/formats" // register input formats
	"github.com/JonMunkholm/leadsync/internal/logging"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// stdin is where the API key prompt reads from.
	stdin *os.File
	cfg   *config.Config
}

func newRootCmd(stdin *os.File) *cobra.Command {
	opts := &rootOptions{stdin: stdin}

	cmd := &cobra.Command{
		Use:           "leadsync",
		Short:         "Sync prospect exports into Linear projects and issues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.ConfigPath
			if path == "" {
				path = os.Getenv(config.FileEnv)
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.Logging.Level = opts.LogLevel
			}
			if opts.LogFormat != "" {
				cfg.Logging.Format = opts.LogFormat
			}
			opts.cfg = cfg

			// Logs go to stderr so command output stays machine readable
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $"+config.FileEnv+")")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(newDetectCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	return cmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes the coded user message for known errors and the
// technical error underneath.
func printError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, "Error:", core.FormatUserError(err))
		fmt.Fprintln(w, "  cause:", err)
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
