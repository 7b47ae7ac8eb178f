package main

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/analysis"
)

// Panel is the control column next to the frame view
type Panel struct {
	app     *App
	content *fyne.Container

	// updating suppresses widget callbacks while the panel is refreshed
	updating bool

	seriesInfo *widget.Label
	frameLabel *widget.Label
	frameSlide *widget.Slider
	jumpEntry  *widget.Entry

	status     *widget.Label
	primary    *widget.Label
	secondary  *widget.Label
	ratio      *widget.Label
	confirmBox *fyne.Container

	labelSelect *widget.Select
	rangeEntry  *widget.Entry

	centerSlide *widget.Slider
	widthSlide  *widget.Slider
	zoomSlide   *widget.Slider

	saveImages *widget.Check
}

func newPanel(a *App) *Panel {
	p := &Panel{app: a}
	count := a.series.FrameCount()

	p.seriesInfo = widget.NewLabel(a.seriesInfo())
	p.seriesInfo.Wrapping = fyne.TextWrapWord

	// Frame navigation
	p.frameLabel = widget.NewLabel("")
	p.frameLabel.TextStyle = fyne.TextStyle{Bold: true}
	p.frameSlide = widget.NewSlider(1, math.Max(float64(count), 2))
	p.frameSlide.Step = 1
	p.frameSlide.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		a.jumpTo(measurement.FrameNumber(v))
	}
	if count < 2 {
		p.frameSlide.Disable()
	}
	p.jumpEntry = widget.NewEntry()
	p.jumpEntry.SetPlaceHolder("Frame number")
	p.jumpEntry.OnSubmitted = func(s string) {
		n, err := measurement.ParseFrameNumber(s)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.jumpTo(n)
		p.jumpEntry.SetText("")
	}
	navigation := container.NewVBox(
		p.frameLabel,
		p.frameSlide,
		container.NewGridWithColumns(3,
			widget.NewButton("◀", func() { a.Scroll(true) }),
			p.jumpEntry,
			widget.NewButton("▶", func() { a.Scroll(false) }),
		),
	)

	// Measurement workflow
	p.status = widget.NewLabel("")
	p.status.Wrapping = fyne.TextWrapWord
	p.primary = widget.NewLabel("")
	p.secondary = widget.NewLabel("")
	p.ratio = widget.NewLabel("")
	p.ratio.TextStyle = fyne.TextStyle{Bold: true}
	p.confirmBox = container.NewGridWithColumns(2,
		widget.NewButton("Yes", a.confirm),
		widget.NewButton("No", a.reject),
	)
	clearButton := widget.NewButton("Clear Frame", func() {
		frame := a.engine.Frame().Number()
		dialog.ShowConfirm("Clear frame", fmt.Sprintf("Remove all measurements of frame %d?", frame), func(ok bool) {
			if ok {
				a.engine.ClearFrame()
				a.redraw()
			}
		}, a.window)
	})
	workflow := container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewButton("Measure", a.startMeasurement),
			clearButton,
		),
		p.status,
		p.confirmBox,
		p.primary,
		p.secondary,
		p.ratio,
	)

	// Joint label and range copy
	options := append([]string{""}, a.cfg.Labels...)
	p.labelSelect = widget.NewSelect(options, func(label string) {
		if p.updating {
			return
		}
		a.workspace.Store.SetLabel(a.engine.Frame(), label)
		a.logger.Debug("frame labeled", "frame", a.engine.Frame().Number(), "label", label)
	})
	p.labelSelect.PlaceHolder = "(no joint)"
	p.rangeEntry = widget.NewEntry()
	p.rangeEntry.SetPlaceHolder("start-end")
	copyButton := widget.NewButton("Copy To Range", func() {
		p.copyToRange(p.rangeEntry.Text)
	})
	p.rangeEntry.OnSubmitted = p.copyToRange
	labeling := container.NewVBox(
		widget.NewLabelWithStyle("Joint", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.labelSelect,
		container.NewBorder(nil, nil, nil, copyButton, p.rangeEntry),
	)

	display := p.newDisplayControls()

	// File actions
	p.saveImages = widget.NewCheck("Save annotated images", nil)
	files := container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewButton("Save Session", a.saveSession),
			widget.NewButton("Open...", a.showSessionDialog),
		),
		container.NewGridWithColumns(2,
			widget.NewButton("Export CSV", func() { a.exportCSV(p.saveImages.Checked) }),
			widget.NewButton("Summary", a.showSummary),
		),
		p.saveImages,
		widget.NewButton("Compare Sessions", a.compareSessions),
	)

	p.content = container.NewVBox(
		p.seriesInfo,
		widget.NewSeparator(),
		navigation,
		widget.NewSeparator(),
		workflow,
		widget.NewSeparator(),
		labeling,
		widget.NewSeparator(),
		display,
		widget.NewSeparator(),
		files,
	)
	return p
}

func (p *Panel) newDisplayControls() fyne.CanvasObject {
	a := p.app

	lo, hi := 0.0, 255.0
	if grid, err := a.series.Frame(int(a.engine.Frame())); err == nil {
		lo, hi = grid.Range()
	}
	if hi <= lo {
		hi = lo + 1
	}
	p.centerSlide = widget.NewSlider(lo, hi)
	p.centerSlide.Step = math.Max((hi-lo)/500, 0.01)
	p.centerSlide.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		a.workspace.Window.Center = v
		a.showFrame()
	}
	p.widthSlide = widget.NewSlider(1, math.Max(2*(hi-lo), 2))
	p.widthSlide.Step = p.centerSlide.Step
	p.widthSlide.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		a.workspace.Window.Width = v
		a.showFrame()
	}
	resetWindow := widget.NewButton("Reset Window", func() {
		a.workspace.Window.Reset()
		a.showFrame()
	})

	p.zoomSlide = widget.NewSlider(0, 100)
	p.zoomSlide.Step = float64(a.cfg.Viewport.ZoomStep)
	p.zoomSlide.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		a.workspace.View.SetZoom(int(v))
		a.view.Refresh()
	}
	resetZoom := widget.NewButton("Reset Zoom", func() {
		a.workspace.View.Reset()
		a.redraw()
	})

	return container.NewVBox(
		widget.NewLabelWithStyle("Display", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Window center"),
		p.centerSlide,
		widget.NewLabel("Window width"),
		p.widthSlide,
		widget.NewLabel("Zoom"),
		p.zoomSlide,
		container.NewGridWithColumns(2, resetWindow, resetZoom),
	)
}

func (p *Panel) copyToRange(text string) {
	a := p.app
	r, err := measurement.ParseRange(text)
	if err == nil {
		err = a.engine.CopyToRange(r)
	}
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	p.rangeEntry.SetText("")
	p.status.SetText(fmt.Sprintf("Copied frame %d to frames %d-%d", a.engine.Frame().Number(), r.Start, r.End))
}

// update syncs all widgets with the engine and workspace
func (p *Panel) update() {
	a := p.app
	p.updating = true
	defer func() { p.updating = false }()

	frame := a.engine.Frame()
	p.frameLabel.SetText(fmt.Sprintf("Frame %d / %d", frame.Number(), a.series.FrameCount()))
	p.frameSlide.SetValue(float64(frame.Number()))

	if label, ok := a.workspace.Store.Label(frame); ok {
		p.labelSelect.SetSelected(label)
	} else {
		p.labelSelect.ClearSelected()
	}

	_, awaiting := a.engine.State().(measurement.AwaitingConfirm)
	if awaiting && a.engine.State().Frame() == frame {
		p.confirmBox.Show()
	} else {
		p.confirmBox.Hide()
	}

	p.centerSlide.SetValue(a.workspace.Window.Center)
	p.widthSlide.SetValue(a.workspace.Window.Width)
	p.zoomSlide.SetValue(float64(a.workspace.View.ZoomLevel))

	p.updateResult()
}

// updateResult refreshes the status line and the h, H and OR labels
func (p *Panel) updateResult() {
	a := p.app
	p.status.SetText(a.engine.Status())

	res := a.engine.Result()
	p.primary.SetText("h: " + formatLength(res.Primary))
	p.secondary.SetText("H: " + formatLength(res.Secondary))
	p.ratio.SetText("OR: " + formatRatio(res.Ratio))
}

func formatLength(v analysis.Value) string {
	if !v.Valid {
		return "-"
	}
	return analysis.FormatMeasurement(v.V, "mm")
}

func formatRatio(v analysis.Value) string {
	if !v.Valid {
		return "-"
	}
	return v.Format(1) + " %"
}

func (a *App) jumpTo(n measurement.FrameNumber) {
	if n == a.engine.Frame().Number() {
		return
	}
	if err := a.engine.JumpTo(n); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.showFrame()
}

func (a *App) seriesInfo() string {
	meta := a.series.Metadata()
	spacing := a.workspace.Spacing.OrDefault()
	info := fmt.Sprintf("Series: %s\nFrames: %d\nPixel spacing: %.3f x %.3f mm",
		a.series.Name(), a.series.FrameCount(), spacing.Row, spacing.Col)
	if meta.Modality != "" {
		info += "\nModality: " + meta.Modality
	}
	return info
}
