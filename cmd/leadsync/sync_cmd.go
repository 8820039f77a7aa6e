package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/history"
	"github.com/JonMunkholm/leadsync/internal/tracker"
)

type syncOptions struct {
	APIKey string
	Mode   string
	Label  string
	DryRun bool
	JSON   bool
	Quiet  bool
}

type syncOutput struct {
	Format core.Format     `json:"format"`
	Result *core.RunResult `json:"result"`
	Stats  []core.StatsRow `json:"stats"`
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync <file>",
		Short: "Create missing companies and contacts in Linear",
		Long: "Detects the layout of <file>, then creates each company as a project\n" +
			"(or top-level issue with --mode issues) and each contact as an issue\n" +
			"under it. Existing entries are left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg

			modeValue := opts.Mode
			if modeValue == "" {
				modeValue = cfg.Sync.Hierarchy
			}
			mode, ok := core.ParseMode(modeValue)
			if !ok {
				return fmt.Errorf("invalid hierarchy mode %q: use projects or issues", modeValue)
			}

			ds, err := core.LoadFile(args[0], core.LoadOptions{MaxSize: cfg.Input.MaxFileSize})
			if err != nil {
				return err
			}
			// Reject unknown layouts before asking for a secret
			if err := core.DetectReport(ds.Columns).Err(); err != nil {
				return err
			}

			apiKey, err := resolveAPIKey(opts.APIKey, cfg.Tracker.APIKey, root.stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			label := opts.Label
			if label == "" {
				label = cfg.Sync.LabelName
			}
			syncOpts := core.SyncOptions{
				Mode:             mode,
				LabelName:        label,
				DescriptionLimit: cfg.Sync.DescriptionLimit,
				DryRun:           opts.DryRun,
			}
			if !opts.Quiet {
				syncOpts.Progress = progressPrinter(cmd.ErrOrStderr())
			}

			client := tracker.NewClient(tracker.Config{
				Endpoint: cfg.Tracker.Endpoint,
				APIKey:   apiKey,
				Timeout:  cfg.Tracker.Timeout,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			format, result, runErr := core.NewSyncer(client, syncOpts).RunDataset(ctx, ds)
			if result == nil {
				return runErr
			}

			recordHistory(cmd.Context(), cfg, result, ds.FileName, format)

			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(syncOutput{
					Format: format,
					Result: result,
					Stats:  core.StatsRows(result.Stats, result.Mode),
				}); err != nil {
					return err
				}
			} else if err := renderResult(out, format, result); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "Linear API key (default $LINEAR_API_KEY, else prompt)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "hierarchy mode: projects or issues (default from config)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for contact issues in projects mode (default from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "look up only; report what would be created")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the run result as JSON")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "hide progress output")
	return cmd
}

// progressPrinter reports each company as processing reaches it.
func progressPrinter(w io.Writer) core.ProgressCallback {
	return func(p core.Progress) {
		if p.Company == "" || p.Individual != "" {
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s (%d contacts)\n", p.CompanyIndex, p.CompanyTotal, p.Company, p.IndividualTotal)
	}
}

func renderResult(w io.Writer, format core.Format, res *core.RunResult) error {
	header := fmt.Sprintf("Run %s: %s, %s mode", res.RunID, format, res.Mode)
	if res.TeamName != "" {
		header += ", team " + res.TeamName
	}
	if res.DryRun {
		header += " (dry run, nothing was created)"
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "State: %s after %s\n\n", res.State, res.Duration.Round(time.Millisecond))

	if err := core.RenderStats(w, res.Stats, res.Mode); err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "\n%d record(s) failed:\n", len(res.Errors))
		for _, e := range res.Errors {
			name := e.Company
			if e.Title != "" {
				name += " / " + e.Title
			}
			fmt.Fprintf(w, "  - %s [%s]: %s\n", name, e.Op, e.Message)
		}
	}
	return nil
}

// recordHistory stores the run when a database is configured. Failures are
// logged only.
func recordHistory(ctx context.Context, cfg *config.Config, res *core.RunResult, fileName string, format core.Format) {
	if !cfg.Database.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := history.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}
	defer pool.Close()

	store := history.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}
	if err := store.Record(ctx, res, fileName, format); err != nil {
		slog.Warn("failed to record run", "run_id", res.RunID, "error", err)
	}
}
