package measurement

import (
	"testing"

	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(frames int) *Engine {
	return NewEngine(NewStore(frames), series.DefaultSpacing, DefaultHitConfig(), nil)
}

func press(t *testing.T, e *Engine, x, y float64) {
	t.Helper()
	require.NoError(t, e.Press(geometry.NewPoint(x, y)))
}

func measureFlat(t *testing.T, e *Engine) {
	t.Helper()
	e.StartMeasurement()
	press(t, e, 10, 10)
	press(t, e, 110, 10)
	require.NoError(t, e.Confirm())
	press(t, e, 30, 20)
	press(t, e, 70, 5)
	press(t, e, 120, 40)
}

func TestEngineMeasuresFrame(t *testing.T) {
	e := newEngine(5)
	require.NoError(t, e.SetFrame(1))
	measureFlat(t, e)

	assert.True(t, IsIdle(e.State()))
	rec, ok := e.Store().Record(1)
	require.True(t, ok)
	h, _ := rec.Segment(Primary)
	assert.Equal(t, seg(30, 10, 70, 10), h)
	assert.Len(t, rec.RawClicks, 3)

	res := e.Result()
	assert.InDelta(t, 40.0, res.Primary.V, 1e-9)
	assert.InDelta(t, 50.0, res.Secondary.V, 1e-9)
	assert.InDelta(t, 80.0, res.Ratio.V, 1e-9)
	assert.Equal(t, "h: 40.00 mm  H: 50.00 mm  OR: 80.0 %", e.Status())
}

func TestEngineStatusWhileMeasuring(t *testing.T) {
	e := newEngine(5)
	e.StartMeasurement()
	assert.Equal(t, "Step 1: Click left side of bone line", e.Status())

	press(t, e, 1, 1)
	press(t, e, 9, 1)
	_, ok := e.Candidate()
	assert.True(t, ok)
	assert.Len(t, e.PendingPoints(), 2)

	err := e.Press(geometry.NewPoint(5, 5))
	assert.ErrorIs(t, err, ErrConfirmationPending)

	require.NoError(t, e.Reject())
	assert.Empty(t, e.PendingPoints())
	_, ok = e.Store().BoneLine(0)
	assert.False(t, ok)
}

func TestEngineNavigationKeepsWorkflow(t *testing.T) {
	e := newEngine(3)
	e.StartMeasurement()
	press(t, e, 10, 10)

	assert.True(t, e.NextFrame())
	assert.IsType(t, AwaitingBoneEnd{}, e.State())
	assert.Contains(t, e.Status(), "Measuring frame 1")
	assert.Empty(t, e.PendingPoints())

	err := e.Press(geometry.NewPoint(110, 10))
	assert.ErrorIs(t, err, ErrWorkflowOnOtherFrame)

	assert.True(t, e.PrevFrame())
	press(t, e, 110, 10)
	assert.IsType(t, AwaitingConfirm{}, e.State())

	assert.False(t, e.PrevFrame())
	assert.Equal(t, FrameIndex(0), e.Frame())
	assert.ErrorIs(t, e.JumpTo(4), ErrInvalidFrame)
	require.NoError(t, e.JumpTo(3))
	assert.Equal(t, FrameIndex(2), e.Frame())
	assert.False(t, e.NextFrame())
}

func TestEngineDragKeepsSlope(t *testing.T) {
	e := newEngine(2)
	measureFlat(t, e)

	// grab h's p2 (drawn at (70,5)) and move it
	press(t, e, 70, 6)
	hit, ok := e.Dragging()
	require.True(t, ok)
	assert.Equal(t, Hit{Slot: Primary, Part: PartP2, Distance: 1}, Hit{Slot: hit.Slot, Part: hit.Part, Distance: hit.Distance})

	assert.True(t, e.Move(geometry.NewPoint(80, 20)))
	rec, _ := e.Store().Record(0)
	h, _ := rec.Segment(Primary)
	bigH, _ := rec.Segment(Secondary)
	assert.Equal(t, seg(30, 10, 80, 10), h)
	assert.Equal(t, seg(120, 10, 80, 10), bigH)
	assert.Len(t, rec.RawClicks, 3)

	e.Release()
	_, ok = e.Dragging()
	assert.False(t, ok)
	assert.False(t, e.Move(geometry.NewPoint(0, 0)))
}

func TestEngineBodyDragIsIncremental(t *testing.T) {
	e := newEngine(1)
	measureFlat(t, e)

	press(t, e, 50, 6)
	e.Move(geometry.NewPoint(52, 9))
	e.Move(geometry.NewPoint(40, 11))
	e.Release()

	rec, _ := e.Store().Record(0)
	h, _ := rec.Segment(Primary)
	assert.Equal(t, seg(30, 15, 70, 15), h)
}

func TestEnginePressMissDoesNothing(t *testing.T) {
	e := newEngine(1)
	press(t, e, 10, 10)
	_, ok := e.Dragging()
	assert.False(t, ok)

	measureFlat(t, e)
	press(t, e, 300, 300)
	_, ok = e.Dragging()
	assert.False(t, ok)
}

func TestEngineClearFrame(t *testing.T) {
	e := newEngine(2)
	measureFlat(t, e)
	e.Store().SetLabel(0, "PP3")
	e.StartMeasurement()

	e.ClearFrame()

	assert.True(t, IsIdle(e.State()))
	assert.Empty(t, e.Store().MeasuredFrames())
	_, ok := e.Store().BoneLine(0)
	assert.False(t, ok)
	assert.Equal(t, "", e.Status())
	label, _ := e.Store().Label(0)
	assert.Equal(t, "PP3", label)
}

func TestEngineRemeasureResetsFrame(t *testing.T) {
	e := newEngine(1)
	measureFlat(t, e)

	e.StartMeasurement()
	press(t, e, 0, 0)
	press(t, e, 100, 50)
	require.NoError(t, e.Confirm())

	rec, ok := e.Store().Record(0)
	require.True(t, ok)
	assert.False(t, rec.HasMeasurement())
	assert.Empty(t, rec.RawClicks)
	bone, _ := e.Store().BoneLine(0)
	assert.InDelta(t, 0.5, bone.Slope, 1e-12)
}

func TestEngineCopyToRange(t *testing.T) {
	e := newEngine(10)
	require.NoError(t, e.JumpTo(2))
	measureFlat(t, e)

	r, err := ParseRange("2-4")
	require.NoError(t, err)
	require.NoError(t, e.CopyToRange(r))
	assert.Equal(t, []FrameIndex{1, 2, 3}, e.Store().MeasuredFrames())

	bad, err := ParseRange("4-2")
	require.NoError(t, err)
	assert.ErrorIs(t, e.CopyToRange(bad), ErrRangeOutOfBounds)
}

func TestEngineAbandonedRemeasureRestoresFrame(t *testing.T) {
	e := newEngine(2)
	measureFlat(t, e)

	e.StartMeasurement()
	press(t, e, 0, 0)
	press(t, e, 100, 50)
	require.NoError(t, e.Confirm())
	press(t, e, 20, 20)

	e.StartMeasurement()

	rec, ok := e.Store().Record(0)
	require.True(t, ok)
	h, _ := rec.Segment(Primary)
	assert.Equal(t, seg(30, 10, 70, 10), h)
	assert.Len(t, rec.RawClicks, 3)
	bone, _ := e.Store().BoneLine(0)
	assert.Equal(t, 0.0, bone.Slope)
}

func TestEngineRemeasureKeepsNewLineOnceHCommitted(t *testing.T) {
	e := newEngine(1)
	measureFlat(t, e)

	e.StartMeasurement()
	press(t, e, 0, 0)
	press(t, e, 100, 50)
	require.NoError(t, e.Confirm())
	press(t, e, 20, 0)
	press(t, e, 60, 40)

	e.StartMeasurement()

	rec, _ := e.Store().Record(0)
	h, ok := rec.Segment(Primary)
	require.True(t, ok)
	assert.InDelta(t, 0.5, h.Slope(), 1e-9)
	_, ok = rec.Segment(Secondary)
	assert.False(t, ok)
	bone, _ := e.Store().BoneLine(0)
	assert.InDelta(t, 0.5, bone.Slope, 1e-12)
}

func TestEngineCopyOverWorkflowFrameAbandonsIt(t *testing.T) {
	e := newEngine(3)
	measureFlat(t, e)
	require.NoError(t, e.CopyToRange(FrameRange{Start: 2, End: 2}))

	// re-measure frame 2 on a diagonal bone line
	require.NoError(t, e.SetFrame(1))
	e.StartMeasurement()
	press(t, e, 0, 0)
	press(t, e, 100, 100)
	require.NoError(t, e.Confirm())

	// move h of frame 1 down by 5 and copy it over the frame being measured
	require.NoError(t, e.SetFrame(0))
	src, _ := e.Store().Record(0)
	e.Store().PutRecord(0, DragBody(src, Primary, geometry.NewPoint(0, 5), 0))
	require.NoError(t, e.CopyToRange(FrameRange{Start: 1, End: 2}))
	assert.True(t, IsIdle(e.State()))

	require.NoError(t, e.SetFrame(1))
	press(t, e, 40, 40)
	press(t, e, 60, 60)
	e.Release()

	bone, _ := e.Store().BoneLine(1)
	assert.Equal(t, 0.0, bone.Slope)
	rec, _ := e.Store().Record(1)
	h, _ := rec.Segment(Primary)
	assert.Equal(t, seg(30, 15, 70, 15), h)
	bigH, _ := rec.Segment(Secondary)
	assert.Equal(t, seg(120, 10, 70, 10), bigH)

	// a later restart must not bring back what the copy overwrote
	e.StartMeasurement()
	rec, _ = e.Store().Record(1)
	h, _ = rec.Segment(Primary)
	assert.Equal(t, seg(30, 15, 70, 15), h)
}

func TestEngineCopyElsewhereKeepsWorkflow(t *testing.T) {
	e := newEngine(5)
	measureFlat(t, e)

	require.NoError(t, e.SetFrame(4))
	e.StartMeasurement()
	press(t, e, 0, 0)

	require.NoError(t, e.SetFrame(0))
	require.NoError(t, e.CopyToRange(FrameRange{Start: 2, End: 3}))
	assert.IsType(t, AwaitingBoneEnd{}, e.State())
}

func TestEngineRejectsSegmentOnChangedBoneLine(t *testing.T) {
	e := newEngine(1)
	e.StartMeasurement()
	press(t, e, 10, 10)
	press(t, e, 110, 10)
	require.NoError(t, e.Confirm())
	press(t, e, 30, 20)

	e.Store().SetBoneLine(0, NewBoneLine(seg(0, 0, 100, 100)))

	err := e.Press(geometry.NewPoint(70, 5))
	assert.ErrorIs(t, err, ErrBoneLineChanged)
	assert.IsType(t, AwaitingHEnd{}, e.State())
	rec, _ := e.Store().Record(0)
	assert.False(t, rec.HasMeasurement())
}
