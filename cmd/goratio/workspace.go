package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/philipparndt/goratio/internal/session"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
)

// loaded is a session file together with its series, when the series could be found
type loaded struct {
	path      string
	snapshot  *session.Snapshot
	series    *series.Files
	workspace *session.Workspace
}

// seriesName is the file name written into exports
func (l *loaded) seriesName() string {
	if l.snapshot.SeriesFilename != "" {
		return l.snapshot.SeriesFilename
	}
	return filepath.Base(l.workspace.SeriesPath)
}

// loadSession reads a session file and resolves its series. Without a series
// the workspace is sized to the frames the session refers to, unless
// requireSeries is set.
func loadSession(path, seriesOverride string, requireSeries bool) (*loaded, error) {
	snap, err := session.Load(path)
	if err != nil {
		return nil, err
	}

	locate := func(*session.Snapshot) (string, error) { return seriesOverride, nil }
	seriesPath := seriesOverride
	if seriesPath == "" {
		seriesPath, err = session.ResolveSeries(snap, path, locate)
	}

	l := &loaded{path: path, snapshot: snap}
	frameCount := snap.MinFrameCount()
	if err == nil {
		s, openErr := series.Open(seriesPath)
		if openErr != nil {
			err = openErr
		} else {
			l.series = s
			frameCount = s.FrameCount()
		}
	}
	if err != nil {
		if requireSeries {
			return nil, err
		}
		logger.Warn("series unavailable, using saved data only", "series", snap.SeriesPath, "error", err)
		seriesPath = snap.SeriesPath
	}

	w, err := snap.Restore(seriesPath, frameCount)
	if err != nil {
		return nil, err
	}
	l.workspace = w
	logger.Info("session loaded", "path", path, "frames", frameCount, "measured", len(w.Store.MeasuredFrames()))
	return l, nil
}

// openOrCreate loads the session at path or starts a new one for s when the
// file does not exist
func openOrCreate(path string, s *series.Files) (*session.Workspace, error) {
	snap, err := session.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return session.NewWorkspace(s), nil
	}
	if err != nil {
		return nil, err
	}
	w, err := snap.Restore(s.Path(), s.FrameCount())
	if err != nil {
		return nil, err
	}
	w.Spacing = s.PixelSpacing()
	return w, nil
}

func saveSession(path string, w *session.Workspace) error {
	if path == "" {
		path = session.SuggestedName(w.SeriesPath, time.Now())
	}
	if err := session.Save(path, session.Capture(w)); err != nil {
		return err
	}
	logger.Info("session saved", "path", path)
	fmt.Printf("Session saved to %s\n", path)
	return nil
}

// parsePoints parses "x1,y1,x2,y2,..." into exactly n points
func parsePoints(s string, n int) ([]geometry.Point, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2*n {
		return nil, fmt.Errorf("expected %d comma separated coordinates, got %d", 2*n, len(fields))
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		values[i] = v
	}

	points := make([]geometry.Point, n)
	for i := range points {
		points[i] = geometry.NewPoint(values[2*i], values[2*i+1])
	}
	return points, nil
}
