package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/philipparndt/goratio/internal/session"
	"github.com/spf13/cobra"
)

var summarySeries string

var summaryCmd = &cobra.Command{
	Use:   "summary [session]",
	Short: "List the measured frames of a session",
	Long: `Show every measured frame with its joint label, h, H and OR, grouped
into runs of consecutive frames, followed by statistics over all frames.`,
	Args: cobra.ExactArgs(1),
	Run:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summarySeries, "series", "", "series location if it moved")
}

func runSummary(cmd *cobra.Command, args []string) {
	l, err := loadSession(args[0], summarySeries, false)
	if err != nil {
		fatal("loading session", err)
	}
	printSummary(l)
}

func printSummary(l *loaded) {
	store, spacing := l.workspace.Store, l.workspace.Spacing
	rows := session.MeasuredSummary(store, spacing)

	fmt.Printf("Session: %s\n", l.path)
	fmt.Printf("Series: %s (%d frames)\n\n", l.seriesName(), store.FrameCount())
	if len(rows) == 0 {
		fmt.Println("No measured frames")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOINT\tFRAME\th (mm)\tH (mm)\tOR (%)\t")
	batch := rows[0].Batch
	for _, r := range rows {
		if r.Batch != batch {
			fmt.Fprintln(tw, "\t\t\t\t\t")
			batch = r.Batch
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", r.Label, r.Frame, r.Primary.Format(2), r.Secondary.Format(2), r.Ratio.Format(1))
	}
	tw.Flush()

	stats := session.Summarize(session.ExportRows(l.seriesName(), store, spacing))
	fmt.Println()
	fmt.Printf("h:  %s\n", stats.Primary)
	fmt.Printf("H:  %s\n", stats.Secondary)
	fmt.Printf("OR: %s\n", stats.Ratio)
}
