package session

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/philipparndt/goratio/internal/measurement"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(x1, y1, x2, y2 float64) geometry.Segment {
	return geometry.NewSegment(geometry.NewPoint(x1, y1), geometry.NewPoint(x2, y2))
}

func pt(x, y float64) geometry.Point { return geometry.NewPoint(x, y) }

func record(h, bigH *geometry.Segment, clicks ...geometry.Point) measurement.FrameRecord {
	var rec measurement.FrameRecord
	if h != nil {
		rec.SetSegment(measurement.Primary, *h)
	}
	if bigH != nil {
		rec.SetSegment(measurement.Secondary, *bigH)
	}
	rec.RawClicks = clicks
	return rec
}

func ptr(s geometry.Segment) *geometry.Segment { return &s }

func sampleWorkspace() *Workspace {
	store := measurement.NewStore(10)
	store.PutRecord(0, record(ptr(seg(30, 10, 70, 10)), ptr(seg(120, 10, 70, 10)), pt(30, 20), pt(70, 5), pt(120, 40)))
	store.SetBoneLine(0, measurement.NewBoneLine(seg(10, 10, 110, 10)))
	store.PutRecord(4, record(ptr(seg(50, 20, 50, 70)), nil, pt(40, 20), pt(60, 70)))
	store.SetBoneLine(4, measurement.NewBoneLine(seg(50, 0, 50, 100)))
	store.SetLabel(0, "PP3")
	store.SetLabel(4, "MC3")
	store.SetLabel(7, "PD1")

	w := &Workspace{
		SeriesPath: "/data/hand.tif",
		Spacing:    series.PixelSpacing{Row: 0.5, Col: 0.25},
		Store:      store,
		Frame:      4,
	}
	w.View.SetZoom(30)
	w.View.Pan = pt(12.5, -3)
	w.Window.Center, w.Window.Width = 1200, 800
	w.Window.OriginalCenter, w.Window.OriginalWidth = 1000, 2000
	return w
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := sampleWorkspace()
	snap := Capture(w)

	data, err := Encode(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inf"`)
	assert.Contains(t, string(data), `"H"`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snap.Measurements, decoded.Measurements)
	assert.Equal(t, snap.BoneLines, decoded.BoneLines)
	assert.Equal(t, snap.BoneSlope, decoded.BoneSlope)
	assert.Equal(t, snap.FrameJointLabels, decoded.FrameJointLabels)
	assert.True(t, math.IsInf(float64(decoded.BoneSlope[4]), 1))

	restored, err := decoded.Restore(w.SeriesPath, 10)
	require.NoError(t, err)
	again := Capture(restored)
	assert.Equal(t, snap.Measurements, again.Measurements)
	assert.Equal(t, snap.BoneLines, again.BoneLines)
	assert.Equal(t, snap.BoneSlope, again.BoneSlope)
	assert.Equal(t, snap.FrameJointLabels, again.FrameJointLabels)

	assert.Equal(t, measurement.FrameIndex(4), restored.Frame)
	assert.Equal(t, 30, restored.View.ZoomLevel)
	assert.Equal(t, pt(12.5, -3), restored.View.Pan)
	assert.Equal(t, w.Window, restored.Window)
	assert.Equal(t, w.Spacing, restored.Spacing)
	assert.Equal(t, "hand.tif", decoded.SeriesFilename)
	assert.NotEmpty(t, decoded.ID)
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{
		`{`,
		`{"measurements": {"x": {}}}`,
		`{"bone_slope": {"0": "steep"}}`,
		`{"version": 99}`,
	} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, in)
	}

	snap, err := Decode([]byte(`{"bone_slope": {"2": "inf"}, "bone_lines": {"2": [[1,1],[1,9]]}}`))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(snap.BoneSlope[2]), 1))
}

func TestRestoreRejectsWithoutPartialState(t *testing.T) {
	snap := Capture(sampleWorkspace())

	w, err := snap.Restore("x", 3)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Nil(t, w)

	orphan := &Snapshot{BoneSlope: map[int]Slope{1: 0.5}}
	_, err = orphan.Restore("x", 3)
	assert.ErrorIs(t, err, ErrMalformed)

	tooMany := &Snapshot{Measurements: map[int]Measurement{0: {RawClicks: make([]Point, 4)}}}
	_, err = tooMany.Restore("x", 3)
	assert.ErrorIs(t, err, ErrMalformed)

	single := &Snapshot{Measurements: map[int]Measurement{0: {RawClicks: make([]Point, 1)}}}
	_, err = single.Restore("x", 3)
	assert.ErrorIs(t, err, ErrMalformed)

	noBone, err := Decode([]byte(`{"measurements": {"0": {"h": [[30,10],[70,10]]}}}`))
	require.NoError(t, err)
	w, err = noBone.Restore("x", 3)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Nil(t, w)

	withBone, err := Decode([]byte(`{"measurements": {"0": {"h": [[30,10],[70,10]], "raw_clicks": [[30,20],[70,5]]}}, "bone_lines": {"0": [[10,10],[110,10]]}}`))
	require.NoError(t, err)
	_, err = withBone.Restore("x", 3)
	assert.NoError(t, err)
}

func TestRestoreDefaults(t *testing.T) {
	snap, err := Decode([]byte(`{"frame_index": 40, "zoom_level": 250}`))
	require.NoError(t, err)
	assert.False(t, snap.HasWindow())

	w, err := snap.Restore("x", 5)
	require.NoError(t, err)
	assert.Equal(t, measurement.FrameIndex(0), w.Frame)
	assert.Equal(t, 100, w.View.ZoomLevel)
	assert.Equal(t, series.DefaultSpacing, w.Spacing)
}

func TestMinFrameCount(t *testing.T) {
	snap := Capture(sampleWorkspace())
	assert.Equal(t, 8, snap.MinFrameCount())

	_, err := snap.Restore("x", snap.MinFrameCount())
	assert.NoError(t, err)

	assert.Equal(t, 1, (&Snapshot{}).MinFrameCount())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand_01-02-25.dcmstate")
	snap := Capture(sampleWorkspace())

	require.NoError(t, Save(path, snap))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	assert.Equal(t, snap.Measurements, loaded.Measurements)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestResolveSeries(t *testing.T) {
	dir := t.TempDir()
	seriesPath := filepath.Join(dir, "hand.tif")
	require.NoError(t, os.WriteFile(seriesPath, []byte("x"), 0644))
	sessionPath := filepath.Join(dir, "hand.dcmstate")

	got, err := ResolveSeries(&Snapshot{SeriesPath: seriesPath}, sessionPath, nil)
	require.NoError(t, err)
	assert.Equal(t, seriesPath, got)

	moved := &Snapshot{SeriesPath: "/gone/hand.tif", SeriesFilename: "hand.tif"}
	got, err = ResolveSeries(moved, sessionPath, nil)
	require.NoError(t, err)
	assert.Equal(t, seriesPath, got)

	lost := &Snapshot{SeriesPath: "/gone/other.tif", SeriesFilename: "other.tif"}
	_, err = ResolveSeries(lost, sessionPath, nil)
	assert.ErrorIs(t, err, ErrSeriesNotFound)

	asked := 0
	got, err = ResolveSeries(lost, sessionPath, func(*Snapshot) (string, error) {
		asked++
		return seriesPath, nil
	})
	require.NoError(t, err)
	assert.Equal(t, seriesPath, got)
	assert.Equal(t, 1, asked)

	_, err = ResolveSeries(lost, sessionPath, func(*Snapshot) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestSuggestedNames(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "hand_03-14-25.dcmstate", SuggestedName("/data/hand.tif", at))
	assert.Equal(t, "a_vs_b.csv", ComparisonName("/x/a.dcmstate", "b.dcmstate", ".csv"))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	older := Capture(sampleWorkspace())
	older.SavedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := Capture(sampleWorkspace())
	newer.SavedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "first", older))
	require.NoError(t, store.Put(ctx, "second.dcmstate", newer))

	got, err := store.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Name)
	assert.Equal(t, "first", entries[1].Name)
	assert.Equal(t, "hand.tif", entries[1].SeriesFilename)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("GORATIO_TEST_DSN")
	if dsn == "" {
		t.Skip("GORATIO_TEST_DSN not set")
	}
	ctx := context.Background()

	store, err := NewPostgresStore(ctx, dsn, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InitSchema(ctx))

	name := "test-" + strings.ReplaceAll(t.Name(), "/", "-")
	snap := Capture(sampleWorkspace())
	require.NoError(t, store.Put(ctx, name, snap))

	got, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, snap.Measurements, got.Measurements)
	assert.Equal(t, snap.BoneSlope, got.BoneSlope)

	_, err = store.Get(ctx, name+"-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
