// Package session persists and compares measurement sessions.
//
// A session snapshot is a JSON document holding the measurements, bone lines,
// joint labels and view state of one series. Snapshots are written to
// .dcmstate files or to a Postgres table.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewport"
)

// Extension is the file extension of saved sessions
const Extension = ".dcmstate"

// CurrentVersion is the snapshot schema version written by this package
const CurrentVersion = 1

// ErrMalformed is returned when a snapshot cannot be decoded or applied
var ErrMalformed = errors.New("malformed session")

// Point is an (x, y) pair
type Point [2]float64

// Segment is a (p1, p2) pair
type Segment [2]Point

func fromPoint(p geometry.Point) Point { return Point{p.X, p.Y} }

func (p Point) geometry() geometry.Point { return geometry.NewPoint(p[0], p[1]) }

func fromSegment(s geometry.Segment) Segment {
	return Segment{fromPoint(s.P1), fromPoint(s.P2)}
}

func (s Segment) geometry() geometry.Segment {
	return geometry.NewSegment(s[0].geometry(), s[1].geometry())
}

// Measurement is the persisted record of one frame
type Measurement struct {
	Primary   *Segment `json:"h,omitempty"`
	Secondary *Segment `json:"H,omitempty"`
	RawClicks []Point  `json:"raw_clicks,omitempty"`
}

// Slope is a bone line slope. Vertical lines are written as the string "inf".
type Slope float64

func (s Slope) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(f):
		return nil, fmt.Errorf("slope is NaN")
	}
	return json.Marshal(f)
}

func (s *Slope) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		switch strings.ToLower(text) {
		case "inf", "+inf", "infinity":
			*s = Slope(math.Inf(1))
		case "-inf", "-infinity":
			*s = Slope(math.Inf(-1))
		default:
			return fmt.Errorf("invalid slope %q", text)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Slope(f)
	return nil
}

// Snapshot is the persisted state of a session
type Snapshot struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	SeriesPath     string               `json:"series_path,omitempty"`
	SeriesFilename string               `json:"series_filename,omitempty"`
	PixelSpacing   *series.PixelSpacing `json:"pixel_spacing,omitempty"`

	Measurements     map[int]Measurement `json:"measurements"`
	BoneLines        map[int]Segment     `json:"bone_lines"`
	BoneSlope        map[int]Slope       `json:"bone_slope"`
	FrameJointLabels map[int]string      `json:"frame_joint_labels"`

	FrameIndex int        `json:"frame_index"`
	ZoomLevel  int        `json:"zoom_level"`
	PanOffset  [2]float64 `json:"pan_offset"`

	WindowCenter         float64 `json:"window_center"`
	WindowWidth          float64 `json:"window_width"`
	OriginalWindowCenter float64 `json:"original_window_center"`
	OriginalWindowWidth  float64 `json:"original_window_width"`
}

// HasWindow reports whether the snapshot carries window-level parameters
func (s *Snapshot) HasWindow() bool {
	return s.WindowWidth != 0 || s.OriginalWindowWidth != 0
}

// Workspace is the live state of one loaded series
type Workspace struct {
	SeriesPath string
	Spacing    series.PixelSpacing
	Store      *measurement.Store
	Frame      measurement.FrameIndex
	View       viewport.Viewport
	Window     viewport.WindowLevel
}

// NewWorkspace creates an empty workspace for a series
func NewWorkspace(s series.Series) *Workspace {
	return &Workspace{
		SeriesPath: s.Path(),
		Spacing:    s.PixelSpacing(),
		Store:      measurement.NewStore(s.FrameCount()),
		View:       *viewport.New(),
	}
}

// Capture builds a snapshot of the workspace with a fresh ID
func Capture(w *Workspace) *Snapshot {
	spacing := w.Spacing.OrDefault()
	snap := &Snapshot{
		ID:                   uuid.NewString(),
		Version:              CurrentVersion,
		SavedAt:              time.Now().UTC(),
		SeriesPath:           w.SeriesPath,
		SeriesFilename:       filepath.Base(w.SeriesPath),
		PixelSpacing:         &spacing,
		Measurements:         make(map[int]Measurement),
		BoneLines:            make(map[int]Segment),
		BoneSlope:            make(map[int]Slope),
		FrameJointLabels:     make(map[int]string),
		FrameIndex:           int(w.Frame),
		ZoomLevel:            w.View.ZoomLevel,
		PanOffset:            [2]float64{w.View.Pan.X, w.View.Pan.Y},
		WindowCenter:         w.Window.Center,
		WindowWidth:          w.Window.Width,
		OriginalWindowCenter: w.Window.OriginalCenter,
		OriginalWindowWidth:  w.Window.OriginalWidth,
	}
	if w.SeriesPath == "" {
		snap.SeriesFilename = ""
	}

	for i, rec := range w.Store.Records() {
		var m Measurement
		if seg, ok := rec.Segment(measurement.Primary); ok {
			s := fromSegment(seg)
			m.Primary = &s
		}
		if seg, ok := rec.Segment(measurement.Secondary); ok {
			s := fromSegment(seg)
			m.Secondary = &s
		}
		for _, p := range rec.RawClicks {
			m.RawClicks = append(m.RawClicks, fromPoint(p))
		}
		snap.Measurements[int(i)] = m
	}
	for i, bone := range w.Store.BoneLines() {
		snap.BoneLines[int(i)] = fromSegment(bone.Segment)
		snap.BoneSlope[int(i)] = Slope(bone.Slope)
	}
	for i, label := range w.Store.Labels() {
		snap.FrameJointLabels[int(i)] = label
	}
	return snap
}

// Restore rebuilds a workspace for a series of frameCount frames. Nothing is
// returned unless the whole snapshot applies.
func (s *Snapshot) Restore(seriesPath string, frameCount int) (*Workspace, error) {
	check := func(kind string, i int) error {
		if !measurement.FrameIndex(i).InRange(frameCount) {
			return fmt.Errorf("%w: %s for frame %d outside 1..%d", ErrMalformed, kind, i+1, frameCount)
		}
		return nil
	}

	store := measurement.NewStore(frameCount)
	for i, m := range s.Measurements {
		if err := check("measurement", i); err != nil {
			return nil, err
		}
		if n := len(m.RawClicks); n == 1 || n > analysis.MaxClicks {
			return nil, fmt.Errorf("%w: frame %d has %d raw clicks", ErrMalformed, i+1, n)
		}
		if _, ok := s.BoneLines[i]; !ok && (m.Primary != nil || m.Secondary != nil) {
			return nil, fmt.Errorf("%w: segments for frame %d without bone line", ErrMalformed, i+1)
		}
		var rec measurement.FrameRecord
		if m.Primary != nil {
			rec.SetSegment(measurement.Primary, m.Primary.geometry())
		}
		if m.Secondary != nil {
			rec.SetSegment(measurement.Secondary, m.Secondary.geometry())
		}
		for _, p := range m.RawClicks {
			rec.RawClicks = append(rec.RawClicks, p.geometry())
		}
		store.PutRecord(measurement.FrameIndex(i), rec)
	}

	for i, seg := range s.BoneLines {
		if err := check("bone line", i); err != nil {
			return nil, err
		}
		bone := measurement.NewBoneLine(seg.geometry())
		if slope, ok := s.BoneSlope[i]; ok {
			bone.Slope = float64(slope)
		}
		store.SetBoneLine(measurement.FrameIndex(i), bone)
	}
	for i := range s.BoneSlope {
		if _, ok := s.BoneLines[i]; !ok {
			return nil, fmt.Errorf("%w: slope for frame %d without bone line", ErrMalformed, i+1)
		}
	}

	for i, label := range s.FrameJointLabels {
		if err := check("joint label", i); err != nil {
			return nil, err
		}
		store.SetLabel(measurement.FrameIndex(i), label)
	}

	frame := measurement.FrameIndex(s.FrameIndex)
	if !frame.InRange(frameCount) {
		frame = 0
	}

	w := &Workspace{
		SeriesPath: seriesPath,
		Spacing:    s.Spacing(),
		Store:      store,
		Frame:      frame,
		View:       *viewport.New(),
		Window: viewport.WindowLevel{
			Center:         s.WindowCenter,
			Width:          s.WindowWidth,
			OriginalCenter: s.OriginalWindowCenter,
			OriginalWidth:  s.OriginalWindowWidth,
		},
	}
	w.View.SetZoom(s.ZoomLevel)
	w.View.Pan = geometry.NewPoint(s.PanOffset[0], s.PanOffset[1])
	return w, nil
}

// MinFrameCount returns the smallest frame count that holds every frame the
// snapshot refers to, for use when the series itself is not available
func (s *Snapshot) MinFrameCount() int {
	n := s.FrameIndex + 1
	grow := func(i int) {
		if i+1 > n {
			n = i + 1
		}
	}
	for i := range s.Measurements {
		grow(i)
	}
	for i := range s.BoneLines {
		grow(i)
	}
	for i := range s.BoneSlope {
		grow(i)
	}
	for i := range s.FrameJointLabels {
		grow(i)
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Spacing returns the saved pixel spacing, (1,1) when absent
func (s *Snapshot) Spacing() series.PixelSpacing {
	if s.PixelSpacing == nil {
		return series.DefaultSpacing
	}
	return s.PixelSpacing.OrDefault()
}

// Labels returns the joint labels keyed by frame index
func (s *Snapshot) Labels() map[measurement.FrameIndex]string {
	out := make(map[measurement.FrameIndex]string, len(s.FrameJointLabels))
	for i, l := range s.FrameJointLabels {
		out[measurement.FrameIndex(i)] = l
	}
	return out
}

// RawClicks returns the raw clicks of frame i
func (s *Snapshot) RawClicks(i measurement.FrameIndex) []geometry.Point {
	m, ok := s.Measurements[int(i)]
	if !ok {
		return nil
	}
	out := make([]geometry.Point, 0, len(m.RawClicks))
	for _, p := range m.RawClicks {
		out = append(out, p.geometry())
	}
	return out
}

// Encode serializes a snapshot
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, s.Version)
	}
	return &s, nil
}

// Save writes a snapshot to path, replacing the file atomically
func Save(path string, s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".goratio-*")
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads a snapshot from path
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// SuggestedName returns the default file name for a session of the given
// series, e.g. "hand_03-14-25.dcmstate"
func SuggestedName(seriesPath string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(seriesPath), filepath.Ext(seriesPath))
	if seriesPath == "" {
		base = "series"
	}
	return fmt.Sprintf("%s_%s%s", base, at.Format("01-02-06"), Extension)
}
