package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/history"
)

var errHistoryDisabled = errors.New("run history is not configured")

type historyOptions struct {
	Limit int
	JSON  bool
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if !cfg.Database.Enabled() {
				return errHistoryDisabled
			}

			ctx := cmd.Context()
			pool, err := history.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := history.New(pool)
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			runs, err := store.Recent(ctx, opts.Limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			return history.RenderRuns(out, runs)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", history.DefaultLimit, "number of runs to show")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print runs as JSON")
	return cmd
}
