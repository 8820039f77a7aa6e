package history

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// RenderRuns writes runs as an aligned table, newest first as given.
func RenderRuns(w io.Writer, runs []Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN\tFILE\tMODE\tSTATE\tCOMPANIES\tINDIVIDUALS\tERRORS")
	for _, run := range runs {
		mode := string(run.Mode)
		if run.DryRun {
			mode += " (dry run)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%d/%d\t%d\n",
			run.StartedAt.Local().Format(time.DateTime),
			shortID(run.ID),
			run.FileName,
			mode,
			run.State,
			run.Stats.Companies.Created, run.Stats.Companies.Processed,
			run.Stats.Individuals.Created, run.Stats.Individuals.Processed,
			len(run.Errors),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
