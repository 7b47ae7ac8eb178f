package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goratio/internal/report"
	"github.com/philipparndt/goratio/internal/session"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportImages  bool
	exportMaxSize int
	exportSeries  string
)

var exportCmd = &cobra.Command{
	Use:   "export [session]",
	Short: "Export measurements as CSV",
	Long: `Write one CSV row per measured frame with h, H, OR and the raw clicks
in millimetres. With --images every measured frame is also rendered with its
bone line and measurements into <output>_images/frame_NNN.png.`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output CSV file (default <session>.csv, - for stdout)")
	exportCmd.Flags().BoolVar(&exportImages, "images", false, "also save annotated frame images")
	exportCmd.Flags().IntVar(&exportMaxSize, "max-size", 0, "scale exported images to fit this many pixels (0 keeps the size)")
	exportCmd.Flags().StringVar(&exportSeries, "series", "", "series location if it moved")
}

func runExport(cmd *cobra.Command, args []string) {
	l, err := loadSession(args[0], exportSeries, exportImages)
	if err != nil {
		fatal("loading session", err)
	}

	output := exportOutput
	if output == "" {
		output = strings.TrimSuffix(l.path, filepath.Ext(l.path)) + ".csv"
	}

	rows := session.ExportRows(l.seriesName(), l.workspace.Store, l.workspace.Spacing)
	if err := writeReport(output, func(w io.Writer) error {
		return report.NewWriter(w, delimiter()).Measurements(rows)
	}); err != nil {
		fatal("writing export", err)
	}
	if output != "-" {
		fmt.Printf("Exported %d frames to %s\n", len(rows), output)
	}

	if exportImages {
		base := output
		if base == "-" {
			base = l.path
		}
		dir := strings.TrimSuffix(base, filepath.Ext(base)) + cfg.Export.ImagesSuffix
		n, err := report.Images(dir, l.series, l.workspace.Store, report.ImageOptions{
			Window:  l.workspace.Window,
			Offset:  cfg.Editing.DrawOffset,
			MaxSize: exportMaxSize,
			Logger:  logger,
		})
		if err != nil {
			fatal("exporting images", err)
		}
		fmt.Printf("Saved %d images to %s\n", n, dir)
	}
}

// writeReport writes to path, or to stdout when path is "-"
func writeReport(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func delimiter() rune {
	for _, r := range cfg.Export.Delimiter {
		return r
	}
	return ','
}
