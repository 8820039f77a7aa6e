package core

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Statistics table labels.
const (
	ActionProcessed = "Processed"
	ActionCreated   = "Created"
	ActionExisting  = "Already Existing"
)

// StatsRow is one line of the final statistics table.
type StatsRow struct {
	Level  string `json:"level"`
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// LevelNames returns the display names of the two hierarchy levels.
func LevelNames(mode Mode) (parent, child string) {
	if mode == ModeIssues {
		return "Companies", "Individuals"
	}
	return "Projects", "Issues"
}

// StatsRows flattens stats into (level, action, count) rows, parents first.
func StatsRows(stats RunStats, mode Mode) []StatsRow {
	parent, child := LevelNames(mode)
	rows := make([]StatsRow, 0, 6)
	for _, lvl := range []struct {
		name  string
		stats LevelStats
	}{
		{parent, stats.Companies},
		{child, stats.Individuals},
	} {
		rows = append(rows,
			StatsRow{Level: lvl.name, Action: ActionProcessed, Count: lvl.stats.Processed},
			StatsRow{Level: lvl.name, Action: ActionCreated, Count: lvl.stats.Created},
			StatsRow{Level: lvl.name, Action: ActionExisting, Count: lvl.stats.Existing},
		)
	}
	return rows
}

// RenderStats writes the statistics table as aligned text.
func RenderStats(w io.Writer, stats RunStats, mode Mode) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tACTION\tCOUNT")
	for _, row := range StatsRows(stats, mode) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", row.Level, row.Action, row.Count)
	}
	return tw.Flush()
}
