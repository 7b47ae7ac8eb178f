// Package viewport maps between image-pixel coordinates and the visible
// window of a series defined by zoom level and pan offset.
package viewport

import (
	"math"

	"github.com/philipparndt/goratio/pkg/geometry"
)

const (
	MinZoom = 0
	MaxZoom = 100
)

// Size is a width/height pair in pixels
type Size struct {
	Width, Height float64
}

// NewSize creates a new size
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsEmpty reports whether either extent is zero or negative
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Viewport holds zoom and pan applied identically to every frame of a series.
// ZoomLevel is the percentage by which the visible extent shrinks.
type Viewport struct {
	ZoomLevel int
	Pan       geometry.Point
}

// New creates a viewport showing the whole image
func New() *Viewport {
	return &Viewport{}
}

// SetZoom sets the zoom level clamped to [MinZoom, MaxZoom]. The pan offset
// is kept, so the view recenters on the same offset.
func (v *Viewport) SetZoom(level int) {
	if level < MinZoom {
		level = MinZoom
	}
	if level > MaxZoom {
		level = MaxZoom
	}
	v.ZoomLevel = level
}

// Reset shows the whole image again
func (v *Viewport) Reset() {
	v.ZoomLevel = 0
	v.Pan = geometry.Point{}
}

// VisibleExtent returns the unclamped visible width and height for an image
func (v *Viewport) VisibleExtent(image Size) Size {
	fraction := 1 - float64(v.ZoomLevel)/100.0
	return Size{Width: image.Width * fraction, Height: image.Height * fraction}
}

// Visible returns the visible image rectangle, centered at the image center
// plus pan offset and clamped to the image bounds. The center itself never
// leaves the image, so the rectangle cannot invert.
func (v *Viewport) Visible(image Size) geometry.Rect {
	extent := v.VisibleExtent(image)
	cx := clamp(image.Width/2+v.Pan.X, 0, image.Width)
	cy := clamp(image.Height/2+v.Pan.Y, 0, image.Height)

	return geometry.Rect{
		X0: math.Max(0, cx-extent.Width/2),
		X1: math.Min(image.Width, cx+extent.Width/2),
		Y0: math.Max(0, cy-extent.Height/2),
		Y1: math.Min(image.Height, cy+extent.Height/2),
	}
}

// VisiblePixels returns the visible rectangle widened to whole pixels, which
// is what a display crops from the frame
func (v *Viewport) VisiblePixels(image Size) geometry.Rect {
	r := v.Visible(image)
	return geometry.Rect{
		X0: math.Floor(r.X0),
		Y0: math.Floor(r.Y0),
		X1: math.Min(math.Ceil(r.X1), image.Width),
		Y1: math.Min(math.Ceil(r.Y1), image.Height),
	}
}

// PanBy moves the view by a widget-pixel delta. The delta is converted to
// image pixels using the current visible extent, so it must be called on
// every pan tick. Widget coordinates are y-down and the content follows the
// pointer. The pan stops once the view center reaches the image border.
// It returns false and drops the delta when the widget has no extent yet.
func (v *Viewport) PanBy(screenDelta geometry.Point, image Size, widget Size) bool {
	if widget.IsEmpty() {
		return false
	}
	extent := v.VisibleExtent(image)
	dataDX := screenDelta.X * extent.Width / widget.Width
	dataDY := screenDelta.Y * extent.Height / widget.Height

	v.Pan.X = clamp(v.Pan.X-dataDX, -image.Width/2, image.Width/2)
	v.Pan.Y = clamp(v.Pan.Y-dataDY, -image.Height/2, image.Height/2)
	return true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// ScreenToImage converts a widget position into image-pixel coordinates. The
// visible rectangle is drawn stretched over the full widget.
func (v *Viewport) ScreenToImage(screen geometry.Point, image Size, widget Size) (geometry.Point, bool) {
	return FromScreen(screen, v.Visible(image), widget)
}

// ImageToScreen converts image-pixel coordinates into a widget position
func (v *Viewport) ImageToScreen(p geometry.Point, image Size, widget Size) (geometry.Point, bool) {
	return ToScreen(p, v.Visible(image), widget)
}

// FromScreen maps a widget position into the image rectangle r shown
// stretched over the widget
func FromScreen(screen geometry.Point, r geometry.Rect, widget Size) (geometry.Point, bool) {
	if widget.IsEmpty() {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: r.X0 + screen.X*r.Width()/widget.Width,
		Y: r.Y0 + screen.Y*r.Height()/widget.Height,
	}, true
}

// ToScreen maps an image point inside the rectangle r onto the widget
func ToScreen(p geometry.Point, r geometry.Rect, widget Size) (geometry.Point, bool) {
	if r.Width() <= 0 || r.Height() <= 0 {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: (p.X - r.X0) * widget.Width / r.Width(),
		Y: (p.Y - r.Y0) * widget.Height / r.Height(),
	}, true
}
