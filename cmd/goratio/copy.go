package main

import (
	"fmt"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/spf13/cobra"
)

var (
	copyFrom   int
	copyRange  string
	copySeries string
)

var copyCmd = &cobra.Command{
	Use:   "copy [session]",
	Short: "Copy one frame's measurement to a range of frames",
	Long: `Copy h, H and the bone line of one frame to every frame of an
inclusive 1-based range such as 2-4. Raw clicks are not copied.`,
	Args: cobra.ExactArgs(1),
	Run:  runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().IntVar(&copyFrom, "from", 1, "source frame number (1-based)")
	copyCmd.Flags().StringVar(&copyRange, "range", "", "destination range, e.g. 2-4")
	copyCmd.Flags().StringVar(&copySeries, "series", "", "series location if it moved")

	copyCmd.MarkFlagRequired("range")
}

func runCopy(cmd *cobra.Command, args []string) {
	r, err := measurement.ParseRange(copyRange)
	if err != nil {
		fatal("parsing range", err)
	}

	l, err := loadSession(args[0], copySeries, false)
	if err != nil {
		fatal("loading session", err)
	}

	src := measurement.FrameNumber(copyFrom).Index()
	if err := l.workspace.Store.CopyRange(src, r); err != nil {
		fatal("copying measurement", err)
	}
	logger.Info("measurement copied", "from", copyFrom, "range", r.String())
	fmt.Printf("Copied frame %d to frames %s\n", copyFrom, r)

	if err := saveSession(l.path, l.workspace); err != nil {
		fatal("saving session", err)
	}
}
