package main

import (
	"fmt"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/spf13/cobra"
)

var (
	measureFrame   int
	measureBone    string
	measureH       string
	measureBigH    string
	measureLabel   string
	measureSession string
)

var measureCmd = &cobra.Command{
	Use:   "measure [series]",
	Short: "Measure h and H on one frame",
	Long: `Run the measurement workflow on one frame from pixel coordinates.
The bone line is given by two points, h by the epiphysis edge and base clicks
and H by the click on the next joint. Both lengths are projected onto the
bone line. The result is added to the session file.`,
	Args: cobra.ExactArgs(1),
	Run:  runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().IntVar(&measureFrame, "frame", 1, "frame number (1-based)")
	measureCmd.Flags().StringVar(&measureBone, "bone", "", "bone line as x1,y1,x2,y2")
	measureCmd.Flags().StringVar(&measureH, "h", "", "epiphysis edge and base as x1,y1,x2,y2")
	measureCmd.Flags().StringVar(&measureBigH, "H", "", "next joint as x,y")
	measureCmd.Flags().StringVar(&measureLabel, "label", "", "joint label for the frame, e.g. PP3")
	measureCmd.Flags().StringVarP(&measureSession, "session", "s", "", "session file to update (default <series>_<date>.dcmstate)")

	measureCmd.MarkFlagRequired("bone")
	measureCmd.MarkFlagRequired("h")
	measureCmd.RegisterFlagCompletionFunc("label", completeLabels)
}

func runMeasure(cmd *cobra.Command, args []string) {
	s, err := series.Open(args[0])
	if err != nil {
		fatal("opening series", err)
	}

	bone, err := parsePoints(measureBone, 2)
	if err != nil {
		fatal("parsing --bone", err)
	}
	h, err := parsePoints(measureH, 2)
	if err != nil {
		fatal("parsing --h", err)
	}
	clicks := append(bone, h...)
	if measureBigH != "" {
		bigH, err := parsePoints(measureBigH, 1)
		if err != nil {
			fatal("parsing --H", err)
		}
		clicks = append(clicks, bigH...)
	}

	w, err := openOrCreate(measureSession, s)
	if err != nil {
		fatal("loading session", err)
	}

	engine := measurement.NewEngine(w.Store, w.Spacing, cfg.Editing.Hit, logger)
	if err := engine.JumpTo(measurement.FrameNumber(measureFrame)); err != nil {
		fatal("selecting frame", err)
	}

	engine.StartMeasurement()
	for i, p := range clicks {
		if err := engine.Press(p); err != nil {
			fatal(fmt.Sprintf("at click %d", i+1), err)
		}
		if i == 1 {
			if err := engine.Confirm(); err != nil {
				fatal("confirming bone line", err)
			}
		}
	}

	if measureLabel != "" {
		if !isConfiguredLabel(measureLabel) {
			logger.Warn("label is not in the configured vocabulary", "label", measureLabel)
		}
		w.Store.SetLabel(engine.Frame(), measureLabel)
	}
	w.Frame = engine.Frame()

	rec, _ := w.Store.Record(engine.Frame())
	fmt.Printf("Frame %s\n", engine.Frame().Number())
	for _, slot := range measurement.Slots {
		if seg, ok := rec.Segment(slot); ok {
			fmt.Printf("  %s: %s -> %s\n", slot, analysis.FormatPoint(seg.P1), analysis.FormatPoint(seg.P2))
		}
	}
	if status := engine.Status(); status != "" {
		fmt.Printf("  %s\n", status)
	}

	if err := saveSession(measureSession, w); err != nil {
		fatal("saving session", err)
	}
}

func isConfiguredLabel(label string) bool {
	for _, l := range cfg.Labels {
		if l == label {
			return true
		}
	}
	return false
}
