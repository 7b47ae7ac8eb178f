// Package report writes measurement, comparison and summary tables as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/philipparndt/goratio/internal/session"
	"github.com/philipparndt/goratio/pkg/analysis"
)

// MeasurementHeader is the first row of a measurement export
var MeasurementHeader = []string{
	"Filename", "Frame", "h (mm)", "H (mm)", "OR (%)",
	"Click 1 x", "Click 1 y",
	"Click 2 x", "Click 2 y",
	"Click 3 x", "Click 3 y",
	"Joint",
}

// SummaryHeader is the first row of the measured frames overview
var SummaryHeader = []string{"Joint", "Frame", "h (mm)", "H (mm)", "OR (%)", "Batch"}

// ComparisonHeader returns the first row of a comparison between the named sessions
func ComparisonHeader(nameA, nameB string) []string {
	header := []string{"Joint", nameA + " Frame", nameB + " Frame"}
	for i := 1; i <= analysis.MaxClicks; i++ {
		header = append(header, fmt.Sprintf("Click %d dx (mm)", i), fmt.Sprintf("Click %d dy (mm)", i))
	}
	for i := 1; i <= analysis.MaxClicks; i++ {
		header = append(header, fmt.Sprintf("Click%d Dif (mm)", i))
	}
	return header
}

// Writer writes report tables
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a writer using the given field delimiter
func NewWriter(w io.Writer, delimiter rune) *Writer {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	return &Writer{csv: cw}
}

func (w *Writer) writeAll(header []string, records [][]string) error {
	if err := w.csv.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := w.csv.Write(r); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Measurements writes one line per measured frame
func (w *Writer) Measurements(rows []session.ExportRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := []string{
			r.Series,
			r.Frame.String(),
			r.Primary.Format(2),
			r.Secondary.Format(2),
			r.Ratio.Format(1),
		}
		for _, c := range r.Clicks {
			rec = append(rec, c.X.Format(2), c.Y.Format(2))
		}
		rec = append(rec, r.Label)
		records = append(records, rec)
	}
	return w.writeAll(MeasurementHeader, records)
}

// Comparison writes the raw click differences of matched frames
func (w *Writer) Comparison(nameA, nameB string, rows []session.ComparisonRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := []string{r.Label, r.FrameA.String(), r.FrameB.String()}
		for _, c := range r.Clicks {
			rec = append(rec, c.DX.Format(2), c.DY.Format(2))
		}
		for _, c := range r.Clicks {
			rec = append(rec, c.Distance.Format(2))
		}
		records = append(records, rec)
	}
	return w.writeAll(ComparisonHeader(nameA, nameB), records)
}

// Summary writes the measured frames overview
func (w *Writer) Summary(rows []session.SummaryRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Label,
			r.Frame.String(),
			r.Primary.Format(2),
			r.Secondary.Format(2),
			r.Ratio.Format(1),
			fmt.Sprint(r.Batch),
		})
	}
	return w.writeAll(SummaryHeader, records)
}
