package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrSeriesNotFound is returned when the series of a session cannot be located
var ErrSeriesNotFound = errors.New("series not found")

// Locator asks for the location of a series that moved. It returns an empty
// path when the user gives up.
type Locator func(snap *Snapshot) (string, error)

// ResolveSeries finds the series referenced by a snapshot loaded from
// sessionPath: the saved path first, then the saved file name next to the
// session file, then the locator.
func ResolveSeries(snap *Snapshot, sessionPath string, locate Locator) (string, error) {
	if snap.SeriesPath != "" && exists(snap.SeriesPath) {
		return snap.SeriesPath, nil
	}

	if snap.SeriesFilename != "" {
		candidate := filepath.Join(filepath.Dir(sessionPath), snap.SeriesFilename)
		if exists(candidate) {
			return candidate, nil
		}
	}

	if locate == nil {
		return "", fmt.Errorf("%w: %s", ErrSeriesNotFound, snap.SeriesPath)
	}
	path, err := locate(snap)
	if err != nil {
		return "", fmt.Errorf("failed to locate series: %w", err)
	}
	if path == "" || !exists(path) {
		return "", fmt.Errorf("%w: %s", ErrSeriesNotFound, snap.SeriesPath)
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
