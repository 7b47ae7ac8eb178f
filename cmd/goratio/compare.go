package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/philipparndt/goratio/internal/report"
	"github.com/philipparndt/goratio/internal/session"
	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/spf13/cobra"
)

var compareOutput string

var compareCmd = &cobra.Command{
	Use:   "compare [session-a] [session-b]",
	Short: "Compare the raw clicks of two sessions",
	Long: `Pair frames of two sessions by joint label and report how far apart the
raw clicks of each pair are, in millimetres. The n-th frame labelled PP3 in
the first session is paired with the n-th frame labelled PP3 in the second.`,
	Args: cobra.ExactArgs(2),
	Run:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "output CSV file (default <a>_vs_<b>.csv, - for stdout)")
}

func runCompare(cmd *cobra.Command, args []string) {
	pathA, pathB := args[0], args[1]

	a, err := session.Load(pathA)
	if err != nil {
		fatal("loading first session", err)
	}
	b, err := session.Load(pathB)
	if err != nil {
		fatal("loading second session", err)
	}

	rows := session.Compare(a, b)
	logger.Info("sessions compared", "pairs", len(rows))

	output := compareOutput
	if output == "" {
		output = session.ComparisonName(pathA, pathB, ".csv")
	}
	if err := writeReport(output, func(w io.Writer) error {
		return report.NewWriter(w, delimiter()).Comparison(filepath.Base(pathA), filepath.Base(pathB), rows)
	}); err != nil {
		fatal("writing comparison", err)
	}
	if output == "-" {
		return
	}

	fmt.Printf("Compared %d labelled frame pairs, written to %s\n", len(rows), output)
	for k := 0; k < analysis.MaxClicks; k++ {
		var dists []analysis.Value
		for _, r := range rows {
			dists = append(dists, r.Clicks[k].Distance)
		}
		fmt.Printf("  Click %d distance (mm): %s\n", k+1, analysis.Summarize(dists))
	}
}
