package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Value is a measurement that may be absent. Absent values are reported
// blank, never as zero.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a present value
func Some(v float64) Value {
	return Value{V: v, Valid: true}
}

// None is an absent value
func None() Value {
	return Value{}
}

// Rounded returns the value rounded to the given number of decimals
func (v Value) Rounded(places int) Value {
	if !v.Valid {
		return v
	}
	return Some(Round(v.V, places))
}

// Format renders the value with the given decimals, or "" when absent
func (v Value) Format(places int) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.*f", places, v.V)
}

// Round rounds to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Ratio returns h/H*100, absent when either side is absent or H is zero
func Ratio(h, bigH Value) Value {
	if !h.Valid || !bigH.Valid || bigH.V == 0 {
		return None()
	}
	return Some(h.V / bigH.V * 100)
}

// SegmentLength returns the physical length of a segment. Rows are scaled by
// the row spacing along x and the column spacing along y.
func SegmentLength(s geometry.Segment, spacing series.PixelSpacing) float64 {
	return geometry.PhysicalDistance(s.P1, s.P2, spacing.Row, spacing.Col)
}

// ClickToPhysical converts a raw click to millimetres
func ClickToPhysical(p geometry.Point, spacing series.PixelSpacing) geometry.Point {
	return geometry.NewPoint(p.X*spacing.Col, p.Y*spacing.Row)
}

// ClickDelta is the physical difference between two corresponding clicks
type ClickDelta struct {
	DX       Value
	DY       Value
	Distance Value
}

// MaxClicks is the number of raw clicks a complete measurement records
const MaxClicks = 3

// CompareClicks compares raw clicks index for index. Spacing is the average
// of both sessions' spacings. Indices missing on either side stay absent.
func CompareClicks(a, b []geometry.Point, spacing series.PixelSpacing) [MaxClicks]ClickDelta {
	var out [MaxClicks]ClickDelta
	for i := 0; i < MaxClicks; i++ {
		if i >= len(a) || i >= len(b) {
			continue
		}
		dx := math.Abs(a[i].X-b[i].X) * spacing.Col
		dy := math.Abs(a[i].Y-b[i].Y) * spacing.Row
		out[i] = ClickDelta{
			DX:       Some(dx),
			DY:       Some(dy),
			Distance: Some(math.Hypot(dx, dy)),
		}
	}
	return out
}

// Summary describes a set of present values
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes statistics over the present values, skipping absent ones
func Summarize(values []Value) Summary {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			data = append(data, v.V)
		}
	}

	s := Summary{Count: len(data)}
	if len(data) == 0 {
		return s
	}

	s.Mean = stat.Mean(data, nil)
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	return s
}

// String formats a summary for terminal output
func (s Summary) String() string {
	if s.Count == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d mean=%.2f sd=%.2f min=%.2f max=%.2f", s.Count, s.Mean, s.StdDev, s.Min, s.Max)
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "mm"
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatPoint formats a 2D point
func FormatPoint(p geometry.Point) string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}
