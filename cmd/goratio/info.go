package main

import (
	"fmt"

	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewport"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [series]",
	Short: "Display information about an image series",
	Long:  "Show frame count, frame size, pixel spacing and the initial window of a series directory or image file.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	s, err := series.Open(args[0])
	if err != nil {
		fatal("opening series", err)
	}

	first, err := s.Frame(0)
	if err != nil {
		fatal("reading first frame", err)
	}
	wl := viewport.FromSamples(first.Pix)
	spacing := s.PixelSpacing()

	fmt.Println("Series Information")
	fmt.Println("==================")
	fmt.Printf("Name: %s\n", s.Name())
	fmt.Printf("Path: %s\n", s.Path())
	if m := s.Metadata().Modality; m != "" {
		fmt.Printf("Modality: %s\n", m)
	}
	fmt.Printf("Frames: %d\n\n", s.FrameCount())

	fmt.Println("Frame 1:")
	fmt.Printf("  Size: %d x %d px\n", first.Width, first.Height)
	fmt.Printf("  Physical: %s x %s\n",
		analysis.FormatMeasurement(float64(first.Width)*spacing.Col, ""),
		analysis.FormatMeasurement(float64(first.Height)*spacing.Row, ""))
	fmt.Printf("  Pixel spacing: %.4f mm (row) x %.4f mm (col)\n", spacing.Row, spacing.Col)
	fmt.Printf("  Window: center %.0f, width %.0f\n", wl.Center, wl.Width)
}
