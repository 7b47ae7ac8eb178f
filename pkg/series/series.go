// Package series provides the multi-frame image series consumed by the
// measurement engine: frame count, per-frame sample grids and pixel spacing.
package series

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PixelSpacing is the physical size of one pixel step, in millimetres.
// Row is the spacing between rows, Col the spacing between columns.
type PixelSpacing struct {
	Row float64 `yaml:"row" json:"row"`
	Col float64 `yaml:"col" json:"col"`
}

// DefaultSpacing is used when a series carries no spacing metadata
var DefaultSpacing = PixelSpacing{Row: 1.0, Col: 1.0}

// OrDefault returns the spacing, substituting 1.0 for missing or invalid axes
func (s PixelSpacing) OrDefault() PixelSpacing {
	if s.Row <= 0 {
		s.Row = DefaultSpacing.Row
	}
	if s.Col <= 0 {
		s.Col = DefaultSpacing.Col
	}
	return s
}

// Average returns the component-wise mean of two spacings
func Average(a, b PixelSpacing) PixelSpacing {
	return PixelSpacing{Row: (a.Row + b.Row) / 2, Col: (a.Col + b.Col) / 2}
}

// Grid is a row-major 2D grid of raw sample values
type Grid struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGrid creates a zero-filled grid
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the sample at column x, row y
func (g *Grid) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set stores the sample at column x, row y
func (g *Grid) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Range returns the minimum and maximum sample values
func (g *Grid) Range() (lo, hi float64) {
	if len(g.Pix) == 0 {
		return 0, 0
	}
	return floats.Min(g.Pix), floats.Max(g.Pix)
}

// Series is a loaded multi-frame image series
type Series interface {
	// Name is the display name, usually the file or directory base name
	Name() string
	// Path is the location the series was loaded from
	Path() string
	FrameCount() int
	Frame(i int) (*Grid, error)
	PixelSpacing() PixelSpacing
}

// Memory is an in-memory series
type Memory struct {
	name    string
	path    string
	frames  []*Grid
	spacing PixelSpacing
}

// NewMemory creates a series over already decoded frames
func NewMemory(name string, frames []*Grid, spacing PixelSpacing) *Memory {
	return &Memory{name: name, path: name, frames: frames, spacing: spacing.OrDefault()}
}

func (m *Memory) Name() string               { return m.name }
func (m *Memory) Path() string               { return m.path }
func (m *Memory) FrameCount() int            { return len(m.frames) }
func (m *Memory) PixelSpacing() PixelSpacing { return m.spacing }

// Frame returns frame i
func (m *Memory) Frame(i int) (*Grid, error) {
	if i < 0 || i >= len(m.frames) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(m.frames))
	}
	return m.frames[i], nil
}
