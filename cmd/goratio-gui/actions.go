package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/goratio/internal/report"
	"github.com/philipparndt/goratio/internal/session"
)

// saveFile asks for a target file and hands over its path once the dialog's
// writer is closed
func (a *App) saveFile(name string, done func(path string)) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		done(path)
	}, a.window)
	d.SetFileName(name)
	d.Show()
}

func (a *App) saveSession() {
	name := filepath.Base(a.sessionPath)
	if a.sessionPath == "" {
		name = session.SuggestedName(a.workspace.SeriesPath, time.Now())
	}
	a.saveFile(name, func(path string) {
		snap := session.Capture(a.workspace)
		if err := session.Save(path, snap); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.logger.Info("session saved", "path", path)
		a.setSessionPath(path, snap.ID)
		a.updateTitle()
		a.panel.status.SetText("Session saved to " + filepath.Base(path))
	})
}

func (a *App) delimiter() rune {
	for _, r := range a.cfg.Export.Delimiter {
		return r
	}
	return ','
}

func (a *App) exportCSV(withImages bool) {
	rows := session.ExportRows(a.series.Name(), a.workspace.Store, a.workspace.Spacing)
	if len(rows) == 0 {
		dialog.ShowInformation("Export", "There are no measurements to export.", a.window)
		return
	}

	base := a.sessionPath
	if base == "" {
		base = a.workspace.SeriesPath
	}
	name := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base)) + ".csv"

	a.saveFile(name, func(path string) {
		if err := a.writeCSV(path, func(w io.Writer) error {
			return report.NewWriter(w, a.delimiter()).Measurements(rows)
		}); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		msg := fmt.Sprintf("Exported %d frames to %s", len(rows), filepath.Base(path))

		if withImages {
			dir := strings.TrimSuffix(path, filepath.Ext(path)) + a.cfg.Export.ImagesSuffix
			n, err := report.Images(dir, a.series, a.workspace.Store, report.ImageOptions{
				Window: a.workspace.Window,
				Offset: a.cfg.Editing.DrawOffset,
				Logger: a.logger,
			})
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to export images: %w", err), a.window)
				return
			}
			msg += fmt.Sprintf("\nSaved %d images to %s", n, filepath.Base(dir))
		}
		a.logger.Info("measurements exported", "path", path, "frames", len(rows))
		dialog.ShowInformation("Export", msg, a.window)
	})
}

func (a *App) writeCSV(path string, write func(io.Writer) error) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// compareSessions asks for two session files and writes their click
// differences for frames paired by joint label
func (a *App) compareSessions() {
	a.chooseFile(func(pathA string) {
		a.chooseFile(func(pathB string) {
			snapA, err := session.Load(pathA)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			snapB, err := session.Load(pathB)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}

			rows := session.Compare(snapA, snapB)
			if len(rows) == 0 {
				dialog.ShowInformation("Compare", "The sessions share no labeled joints.", a.window)
				return
			}

			nameA := strings.TrimSuffix(filepath.Base(pathA), filepath.Ext(pathA))
			nameB := strings.TrimSuffix(filepath.Base(pathB), filepath.Ext(pathB))
			a.saveFile(session.ComparisonName(pathA, pathB, ".csv"), func(path string) {
				if err := a.writeCSV(path, func(w io.Writer) error {
					return report.NewWriter(w, a.delimiter()).Comparison(nameA, nameB, rows)
				}); err != nil {
					dialog.ShowError(err, a.window)
					return
				}
				a.logger.Info("sessions compared", "a", pathA, "b", pathB, "pairs", len(rows))
				dialog.ShowInformation("Compare", fmt.Sprintf("Compared %d joints, saved to %s", len(rows), filepath.Base(path)), a.window)
			})
		})
	})
}

// showSummary lists the measured frames with alternating batch shading
func (a *App) showSummary() {
	store, spacing := a.workspace.Store, a.workspace.Spacing
	rows := session.MeasuredSummary(store, spacing)
	if len(rows) == 0 {
		dialog.ShowInformation("Summary", "No measured frames.", a.window)
		return
	}

	header := report.SummaryHeader[:5]
	cell := func(r session.SummaryRow, col int) string {
		switch col {
		case 0:
			return r.Label
		case 1:
			return r.Frame.String()
		case 2:
			return r.Primary.Format(2)
		case 3:
			return r.Secondary.Format(2)
		default:
			return r.Ratio.Format(1)
		}
	}

	table := widget.NewTable(
		func() (int, int) { return len(rows) + 1, len(header) },
		func() fyne.CanvasObject { return widget.NewLabel("XXXXXXXX") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(header[id.Col])
				return
			}
			r := rows[id.Row-1]
			label.TextStyle = fyne.TextStyle{Italic: r.Batch == 1}
			label.SetText(cell(r, id.Col))
		},
	)
	table.OnSelected = func(id widget.TableCellID) {
		if id.Row > 0 {
			a.jumpTo(rows[id.Row-1].Frame)
		}
		table.UnselectAll()
	}

	stats := session.Summarize(session.ExportRows(a.series.Name(), store, spacing))
	statsLabel := widget.NewLabel(fmt.Sprintf("h:  %s\nH:  %s\nOR: %s", stats.Primary, stats.Secondary, stats.Ratio))

	d := dialog.NewCustom("Measured Frames", "Close", container.NewBorder(nil, statsLabel, nil, nil, table), a.window)
	d.Resize(fyne.NewSize(520, 480))
	d.Show()
}
