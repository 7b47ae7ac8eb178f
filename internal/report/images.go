package report

import (
	"fmt"
	"log/slog"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewer/raster"
	"github.com/philipparndt/goratio/pkg/viewport"
)

// ImageOptions controls annotated frame export
type ImageOptions struct {
	// Window is applied to every frame, a zero width estimates it per frame
	Window  viewport.WindowLevel
	Offset  float64
	MaxSize int
	Logger  *slog.Logger
}

// Images renders every measured frame with its overlay into dir as
// frame_NNN.png and returns the number of files written
func Images(dir string, s series.Series, store *measurement.Store, opts ImageOptions) (int, error) {
	count := 0
	for _, i := range store.MeasuredFrames() {
		grid, err := s.Frame(int(i))
		if err != nil {
			return count, fmt.Errorf("failed to read frame %s: %w", i.Number(), err)
		}

		window := opts.Window
		if window.Width == 0 {
			window = viewport.FromSamples(grid.Pix)
		}

		overlay := measurement.FrameOverlay(store, i, opts.Offset)
		path, err := raster.ExportFrame(dir, int(i.Number()), grid, window, overlay, opts.MaxSize)
		if err != nil {
			return count, err
		}
		if opts.Logger != nil {
			opts.Logger.Debug("frame image saved", "path", path)
		}
		count++
	}
	return count, nil
}
