package main

import (
	"fmt"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/spf13/cobra"
)

var (
	labelFrame  int
	labelJoint  string
	labelSeries string
)

var labelCmd = &cobra.Command{
	Use:   "label [session]",
	Short: "Assign a joint label to a frame",
	Long: `Assign a joint label such as PP3 to a frame. Labels pair frames when
two sessions are compared. An empty --joint removes the label.`,
	Args: cobra.ExactArgs(1),
	Run:  runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().IntVar(&labelFrame, "frame", 1, "frame number (1-based)")
	labelCmd.Flags().StringVar(&labelJoint, "joint", "", "joint label")
	labelCmd.Flags().StringVar(&labelSeries, "series", "", "series location if it moved")

	labelCmd.RegisterFlagCompletionFunc("joint", completeLabels)
}

func runLabel(cmd *cobra.Command, args []string) {
	l, err := loadSession(args[0], labelSeries, false)
	if err != nil {
		fatal("loading session", err)
	}

	frame := measurement.FrameNumber(labelFrame)
	if !frame.Index().InRange(l.workspace.Store.FrameCount()) {
		fatal("labelling frame", fmt.Errorf("%w: %d", measurement.ErrInvalidFrame, labelFrame))
	}
	if labelJoint != "" && !isConfiguredLabel(labelJoint) {
		logger.Warn("label is not in the configured vocabulary", "label", labelJoint)
	}

	l.workspace.Store.SetLabel(frame.Index(), labelJoint)
	if labelJoint == "" {
		fmt.Printf("Removed label of frame %s\n", frame)
	} else {
		fmt.Printf("Frame %s labelled %s\n", frame, labelJoint)
	}

	if err := saveSession(l.path, l.workspace); err != nil {
		fatal("saving session", err)
	}
}
