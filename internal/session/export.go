package session

import (
	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/series"
)

// ClickMM is a raw click converted to millimetres
type ClickMM struct {
	X analysis.Value
	Y analysis.Value
}

// ExportRow is one measured frame as handed to the export writers. Lengths
// are rounded to 2 decimals, the ratio to 1.
type ExportRow struct {
	Series    string
	Frame     measurement.FrameNumber
	Label     string
	Primary   analysis.Value
	Secondary analysis.Value
	Ratio     analysis.Value
	Clicks    [analysis.MaxClicks]ClickMM
}

// ExportRows builds one row per frame holding at least one segment, in frame order
func ExportRows(seriesName string, store *measurement.Store, spacing series.PixelSpacing) []ExportRow {
	spacing = spacing.OrDefault()
	var rows []ExportRow
	for _, i := range store.MeasuredFrames() {
		rec, _ := store.Record(i)
		label, _ := store.Label(i)
		res := measurement.Measure(rec, spacing)

		row := ExportRow{
			Series:    seriesName,
			Frame:     i.Number(),
			Label:     label,
			Primary:   res.Primary.Rounded(2),
			Secondary: res.Secondary.Rounded(2),
		}
		// OR is taken from the rounded lengths so the sheet is self-consistent
		row.Ratio = analysis.Ratio(row.Primary, row.Secondary).Rounded(1)

		for k, p := range rec.RawClicks {
			if k >= analysis.MaxClicks {
				break
			}
			mm := analysis.ClickToPhysical(p, spacing)
			row.Clicks[k] = ClickMM{
				X: analysis.Some(mm.X).Rounded(2),
				Y: analysis.Some(mm.Y).Rounded(2),
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SummaryRow is one line of the measured frames overview. Batch flips
// between 0 and 1 whenever the frame does not follow the previous one.
type SummaryRow struct {
	Label     string
	Frame     measurement.FrameNumber
	Primary   analysis.Value
	Secondary analysis.Value
	Ratio     analysis.Value
	Batch     int
}

// MeasuredSummary lists the measured frames grouped into consecutive batches
func MeasuredSummary(store *measurement.Store, spacing series.PixelSpacing) []SummaryRow {
	var rows []SummaryRow
	batch := 0
	last := measurement.FrameIndex(-1)
	for n, row := range ExportRows("", store, spacing) {
		i := row.Frame.Index()
		if n > 0 && i != last+1 {
			batch = 1 - batch
		}
		last = i
		rows = append(rows, SummaryRow{
			Label:     row.Label,
			Frame:     row.Frame,
			Primary:   row.Primary,
			Secondary: row.Secondary,
			Ratio:     row.Ratio,
			Batch:     batch,
		})
	}
	return rows
}

// Stats summarizes h, H and OR over all measured frames
type Stats struct {
	Primary   analysis.Summary
	Secondary analysis.Summary
	Ratio     analysis.Summary
}

// Summarize computes statistics over export rows
func Summarize(rows []ExportRow) Stats {
	var h, bigH, ratio []analysis.Value
	for _, r := range rows {
		h = append(h, r.Primary)
		bigH = append(bigH, r.Secondary)
		ratio = append(ratio, r.Ratio)
	}
	return Stats{
		Primary:   analysis.Summarize(h),
		Secondary: analysis.Summarize(bigH),
		Ratio:     analysis.Summarize(ratio),
	}
}
