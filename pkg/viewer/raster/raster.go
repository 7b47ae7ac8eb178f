// Package raster renders window-levelled frames and their measurement
// overlay into images.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewport"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	BoneColor      = color.RGBA{0, 255, 255, 255}
	PrimaryColor   = color.RGBA{255, 0, 0, 255}
	SecondaryColor = color.RGBA{255, 255, 0, 255}
	PendingColor   = color.RGBA{0, 255, 255, 255}
	CaptionColor   = color.RGBA{255, 255, 255, 255}
)

// Overlay is everything drawn on top of a frame, in image coordinates.
// h and H are shifted Offset pixels off the bone line, h to the negative
// side and H to the positive one.
type Overlay struct {
	Bone      *geometry.Segment
	Primary   *geometry.Segment
	Secondary *geometry.Segment
	Pending   []geometry.Point
	Offset    float64
	Caption   string
}

// Shifted returns seg moved off the bone line to the given side
func (o Overlay) Shifted(seg geometry.Segment, side geometry.Side) geometry.Segment {
	if o.Bone == nil {
		return seg
	}
	return seg.Translate(geometry.PerpendicularOffset(o.Bone.P1, o.Bone.P2, o.Offset, side))
}

// Render window-levels a grid into a grayscale RGBA image
func Render(grid *series.Grid, wl viewport.WindowLevel) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			v := wl.Apply(grid.At(x, y))
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// Annotate draws the overlay onto img
func Annotate(img *image.RGBA, o Overlay) {
	if o.Bone != nil {
		drawDashed(img, *o.Bone, BoneColor, 6)
		drawMarker(img, o.Bone.P1, BoneColor)
		drawMarker(img, o.Bone.P2, BoneColor)
	}

	if o.Primary != nil {
		drawSegment(img, o.Shifted(*o.Primary, geometry.SideNegative), PrimaryColor)
	}
	if o.Secondary != nil {
		drawSegment(img, o.Shifted(*o.Secondary, geometry.SidePositive), SecondaryColor)
	}

	for _, p := range o.Pending {
		drawMarker(img, p, PendingColor)
	}

	if o.Caption != "" {
		drawText(img, 4, 14, o.Caption, CaptionColor)
	}
}

// FrameFileName returns the file name of an exported frame, e.g. "frame_007.png"
func FrameFileName(number int) string {
	return fmt.Sprintf("frame_%03d.png", number)
}

// ExportFrame renders and annotates one frame and writes it to dir. Frames
// larger than maxSize on either side are scaled down; maxSize 0 keeps the
// original size.
func ExportFrame(dir string, number int, grid *series.Grid, wl viewport.WindowLevel, o Overlay, maxSize int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	img := Render(grid, wl)
	Annotate(img, o)

	var out image.Image = img
	if maxSize > 0 && (grid.Width > maxSize || grid.Height > maxSize) {
		out = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	path := filepath.Join(dir, FrameFileName(number))
	if err := imaging.Save(out, path); err != nil {
		return "", fmt.Errorf("failed to save frame %d: %w", number, err)
	}
	return path, nil
}

func drawSegment(img *image.RGBA, s geometry.Segment, col color.RGBA) {
	drawLine(img, round(s.P1.X), round(s.P1.Y), round(s.P2.X), round(s.P2.Y), col, 0)
	drawMarker(img, s.P1, col)
	drawMarker(img, s.P2, col)
}

func drawDashed(img *image.RGBA, s geometry.Segment, col color.RGBA, dash int) {
	drawLine(img, round(s.P1.X), round(s.P1.Y), round(s.P2.X), round(s.P2.Y), col, dash)
}

func drawMarker(img *image.RGBA, p geometry.Point, col color.RGBA) {
	cx, cy := round(p.X), round(p.Y)
	bounds := img.Bounds()
	for y := cy - 1; y <= cy+1; y++ {
		for x := cx - 1; x <= cx+1; x++ {
			if (image.Point{X: x, Y: y}).In(bounds) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func drawText(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawLine draws a line using Bresenham's algorithm. A positive dash leaves
// every other run of dash pixels blank.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, dash int) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	for step := 0; ; step++ {
		visible := dash <= 0 || (step/dash)%2 == 0
		if visible && x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
