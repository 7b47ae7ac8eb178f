package viewport

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// WindowLevel maps raw sample values to display intensities.
// Center is the brightness, Width the contrast.
type WindowLevel struct {
	Center         float64
	Width          float64
	OriginalCenter float64
	OriginalWidth  float64
}

// FromSamples estimates an initial window from the sample range:
// center = floor((min+max)/2), width = max-min.
func FromSamples(samples []float64) WindowLevel {
	if len(samples) == 0 {
		return WindowLevel{Center: 128, Width: 256, OriginalCenter: 128, OriginalWidth: 256}
	}
	lo := floats.Min(samples)
	hi := floats.Max(samples)

	center := math.Floor((hi + lo) / 2)
	width := hi - lo
	return WindowLevel{
		Center:         center,
		Width:          width,
		OriginalCenter: center,
		OriginalWidth:  width,
	}
}

// Bounds returns the lower and upper sample values of the window.
// Widths below 1 are treated as 1.
func (w WindowLevel) Bounds() (lower, upper float64) {
	width := w.Width
	if width < 1 {
		width = 1
	}
	return w.Center - width/2, w.Center + width/2
}

// Apply clips v to the window and scales it linearly to 0..255
func (w WindowLevel) Apply(v float64) uint8 {
	lower, upper := w.Bounds()
	if v <= lower {
		return 0
	}
	if v >= upper {
		return 255
	}
	return uint8((v - lower) / (upper - lower) * 255.0)
}

// Reset restores the window estimated when the series was loaded
func (w *WindowLevel) Reset() {
	w.Center = w.OriginalCenter
	w.Width = w.OriginalWidth
}
