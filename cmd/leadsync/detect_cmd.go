package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadsync/internal/core"
)

type detectOptions struct {
	Rows int
	JSON bool
}

func newDetectCmd(root *rootOptions) *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Show the detected layout and first rows of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := core.LoadFile(args[0], core.LoadOptions{MaxSize: root.cfg.Input.MaxFileSize})
			if err != nil {
				return err
			}

			rows := opts.Rows
			if rows <= 0 {
				rows = root.cfg.Input.PreviewRows
			}
			p := core.Preview(ds, rows)

			out := cmd.OutOrStdout()
			if opts.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(p); err != nil {
					return err
				}
			} else {
				renderPreview(out, p)
			}

			if err := p.Detection.Err(); err != nil {
				return err
			}
			if p.Error != "" {
				return errors.New(p.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "number of rows to show (default from config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the preview as JSON")
	return cmd
}

func renderPreview(w io.Writer, p *core.DatasetPreview) {
	format := string(p.Format)
	if p.FormatLabel != "" {
		format += " (" + p.FormatLabel + ")"
	}
	fmt.Fprintf(w, "File:      %s\n", p.FileName)
	fmt.Fprintf(w, "Format:    %s\n", format)
	fmt.Fprintf(w, "Rows:      %d\n", p.RowCount)
	if p.Format != core.FormatUnknown && p.Error == "" {
		fmt.Fprintf(w, "Companies: %d\n", p.CompanyCount)
	}
	fmt.Fprintf(w, "Columns:   %s\n", strings.Join(p.Columns, ", "))
	if len(p.Ignored) > 0 {
		fmt.Fprintf(w, "Ignored:   %s\n", strings.Join(p.Ignored, ", "))
	}

	for _, c := range p.Detection.Candidates {
		fmt.Fprintf(w, "\nNot %s, missing:\n", c.Format)
		for _, m := range c.Missing {
			if len(m.Suggestions) > 0 {
				fmt.Fprintf(w, "  - %s (similar: %s)\n", m.Column, strings.Join(m.Suggestions, ", "))
			} else {
				fmt.Fprintf(w, "  - %s\n", m.Column)
			}
		}
	}

	for _, row := range p.Rows {
		fmt.Fprintf(w, "\nLine %d\n", row.LineNumber)
		for _, col := range p.Columns {
			if v := row.Values[col]; v != "" {
				fmt.Fprintf(w, "  %s: %s\n", col, v)
			}
		}
	}
}
