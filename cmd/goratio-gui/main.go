package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/goratio/internal/config"
	"github.com/philipparndt/goratio/internal/logging"
	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/internal/session"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewer"
	"github.com/philipparndt/goratio/pkg/viewer/raster"
	"github.com/philipparndt/goratio/pkg/viewport"
	"github.com/philipparndt/goratio/pkg/watcher"
	"github.com/philipparndt/goratio/version"
)

type App struct {
	window fyne.Window
	cfg    *config.Config
	logger *slog.Logger

	series      *series.Files
	workspace   *session.Workspace
	engine      *measurement.Engine
	sessionPath string
	sessionID   string
	watcher     *watcher.FileWatcher

	view  *viewer.FrameView
	panel *Panel
}

func main() {
	cfg, err := config.Load(os.Getenv("GORATIO_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	logger := logging.New(level, os.Stderr)
	logger.Info("starting", "build", version.Current())

	a := app.NewWithID("com.github.philipparndt.goratio")
	w := a.NewWindow("GoRatio - Epiphyseal Ratio Measurement")

	appInstance := &App{
		window: w,
		cfg:    cfg,
		logger: logger,
	}
	w.SetOnClosed(appInstance.stopWatching)

	// Check if a series or session was provided as argument
	if len(os.Args) > 1 {
		appInstance.open(os.Args[1])
	} else {
		appInstance.showWelcomeScreen()
	}

	w.Resize(fyne.NewSize(cfg.Display.Width, cfg.Display.Height))
	w.ShowAndRun()
}

func (a *App) showWelcomeScreen() {
	welcomeLabel := widget.NewLabel("Welcome to GoRatio")
	welcomeLabel.TextStyle = fyne.TextStyle{Bold: true}

	instructionLabel := widget.NewLabel("Open an image series or a saved session to start measuring")

	content := container.NewVBox(
		layout.NewSpacer(),
		container.NewCenter(welcomeLabel),
		container.NewCenter(instructionLabel),
		layout.NewSpacer(),
		container.NewCenter(container.NewHBox(
			widget.NewButton("Open Series Folder", a.showFolderDialog),
			widget.NewButton("Open Image File", a.showFileDialog),
			widget.NewButton("Open Session", a.showSessionDialog),
		)),
		layout.NewSpacer(),
	)

	a.window.SetContent(content)
}

func (a *App) showFolderDialog() {
	a.chooseFolder(a.loadSeries)
}

func (a *App) showFileDialog() {
	a.chooseFile(a.loadSeries)
}

func (a *App) showSessionDialog() {
	a.chooseFile(a.loadSession)
}

func (a *App) chooseFolder(done func(string)) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if uri == nil {
			return
		}
		done(uri.Path())
	}, a.window)
}

func (a *App) chooseFile(done func(string)) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		done(reader.URI().Path())
	}, a.window)
}

// open loads a session file or a series depending on the path
func (a *App) open(path string) {
	if strings.EqualFold(filepath.Ext(path), session.Extension) {
		a.loadSession(path)
		return
	}
	a.loadSeries(path)
}

func (a *App) loadSeries(path string) {
	s, err := series.Open(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load series: %w", err), a.window)
		return
	}
	a.logger.Info("series loaded", "path", s.Path(), "frames", s.FrameCount())
	a.attach(s, session.NewWorkspace(s), "", "")
}

func (a *App) loadSession(path string) {
	snap, err := session.Load(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	seriesPath, err := session.ResolveSeries(snap, path, nil)
	if errors.Is(err, session.ErrSeriesNotFound) {
		msg := fmt.Sprintf("The series %s could not be found.\nPlease locate it.", snap.SeriesFilename)
		locate := func(p string) { a.restore(snap, path, p) }
		d := dialog.NewCustomConfirm("Series not found", "Folder", "File", widget.NewLabel(msg), func(folder bool) {
			if folder {
				a.chooseFolder(locate)
			} else {
				a.chooseFile(locate)
			}
		}, a.window)
		d.Show()
		return
	}
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.restore(snap, path, seriesPath)
}

func (a *App) restore(snap *session.Snapshot, sessionPath, seriesPath string) {
	s, err := series.Open(seriesPath)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load series: %w", err), a.window)
		return
	}

	w, err := snap.Restore(seriesPath, s.FrameCount())
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.logger.Info("session loaded", "path", sessionPath, "measured", len(w.Store.MeasuredFrames()))
	a.attach(s, w, sessionPath, snap.ID)
}

// attach makes w the active workspace and rebuilds the main window
func (a *App) attach(s *series.Files, w *session.Workspace, sessionPath, sessionID string) {
	if w.Window.Width == 0 {
		if grid, err := s.Frame(int(w.Frame)); err == nil {
			w.Window = viewport.FromSamples(grid.Pix)
		}
	}

	a.series = s
	a.workspace = w
	a.engine = measurement.NewEngine(w.Store, w.Spacing, a.cfg.Editing.Hit, a.logger)
	if err := a.engine.SetFrame(w.Frame); err != nil {
		a.logger.Warn("saved frame out of range", "frame", w.Frame.Number(), "error", err)
	}

	a.setSessionPath(sessionPath, sessionID)
	a.setupMainUI()
	a.showFrame()
}

func (a *App) setupMainUI() {
	a.view = viewer.NewFrameView(a, &a.workspace.View, a.cfg.Display.Debounce())
	a.view.SetLineWidth(a.cfg.Display.LineWidth)
	a.panel = newPanel(a)

	split := container.NewHSplit(a.view, container.NewVScroll(a.panel.content))
	split.Offset = 0.72
	a.window.SetContent(split)
	a.window.Canvas().SetOnTypedKey(a.typedKey)
	a.updateTitle()
}

func (a *App) updateTitle() {
	title := fmt.Sprintf("GoRatio - %s", a.series.Name())
	if a.sessionPath != "" {
		title += fmt.Sprintf(" (%s)", filepath.Base(a.sessionPath))
	}
	a.window.SetTitle(title)
}

// showFrame renders the engine's current frame
func (a *App) showFrame() {
	i := a.engine.Frame()
	grid, err := a.series.Frame(int(i))
	if err != nil {
		a.logger.Error("failed to read frame", "frame", i.Number(), "error", err)
		a.panel.status.SetText(err.Error())
		return
	}
	a.workspace.Frame = i
	a.view.SetFrame(grid, a.workspace.Window)
	a.panel.update()
}

// redraw refreshes the overlay and the panel without reloading the frame
func (a *App) redraw() {
	a.view.Refresh()
	a.panel.update()
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft, fyne.KeyUp, fyne.KeyPageUp:
		a.Scroll(true)
	case fyne.KeyRight, fyne.KeyDown, fyne.KeyPageDown:
		a.Scroll(false)
	case fyne.KeyReturn, fyne.KeyEnter:
		a.confirm()
	case fyne.KeyEscape:
		a.reject()
	case fyne.KeyM:
		a.startMeasurement()
	}
}

// Press implements viewer.Handler
func (a *App) Press(p geometry.Point) {
	if err := a.engine.Press(p); err != nil {
		a.logger.Debug("click rejected", "error", err)
		a.panel.status.SetText(err.Error())
		return
	}
	a.panel.update()
}

// Move implements viewer.Handler
func (a *App) Move(p geometry.Point) bool {
	if !a.engine.Move(p) {
		return false
	}
	a.panel.updateResult()
	return true
}

// Release implements viewer.Handler
func (a *App) Release() {
	a.engine.Release()
}

// Scroll implements viewer.Handler, scrolling up shows the previous frame
func (a *App) Scroll(up bool) {
	var moved bool
	if up {
		moved = a.engine.PrevFrame()
	} else {
		moved = a.engine.NextFrame()
	}
	if moved {
		a.showFrame()
	}
}

// Overlay implements viewer.Handler
func (a *App) Overlay() raster.Overlay {
	if a.engine == nil {
		return raster.Overlay{}
	}
	return a.engine.Overlay(a.cfg.Editing.DrawOffset)
}

func (a *App) startMeasurement() {
	a.engine.StartMeasurement()
	a.redraw()
}

func (a *App) confirm() {
	if err := a.engine.Confirm(); err != nil {
		return
	}
	a.redraw()
}

func (a *App) reject() {
	if err := a.engine.Reject(); err != nil {
		return
	}
	a.redraw()
}

// setSessionPath remembers the session file and reloads the workspace when
// another program replaces it
func (a *App) setSessionPath(path, id string) {
	a.sessionPath = path
	a.sessionID = id
	a.stopWatching()
	if path == "" {
		return
	}

	fw, err := watcher.NewFileWatcher(a.cfg.Display.Debounce(), a.logger)
	if err != nil {
		a.logger.Warn("session watching disabled", "error", err)
		return
	}
	if err := fw.Watch([]string{path}, func(string) {
		fyne.Do(func() { a.reloadIfChanged(path) })
	}); err != nil {
		a.logger.Warn("session watching disabled", "error", err)
		fw.Close()
		return
	}
	fw.Start()
	a.watcher = fw
}

func (a *App) stopWatching() {
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
}

func (a *App) reloadIfChanged(path string) {
	if path != a.sessionPath {
		return
	}
	snap, err := session.Load(path)
	if err != nil {
		a.logger.Warn("failed to reload session", "path", path, "error", err)
		return
	}
	if snap.ID == a.sessionID {
		return
	}

	w, err := snap.Restore(a.workspace.SeriesPath, a.series.FrameCount())
	if err != nil {
		a.logger.Warn("failed to reload session", "path", path, "error", err)
		return
	}
	w.Frame = a.engine.Frame()
	w.View = a.workspace.View
	a.logger.Info("session changed on disk, reloaded", "path", path)
	a.attach(a.series, w, path, snap.ID)
}
