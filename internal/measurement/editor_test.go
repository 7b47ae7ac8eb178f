package measurement

import (
	"math"
	"testing"

	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flatBone = seg(10, 10, 110, 10)

func TestHitTestEndpoints(t *testing.T) {
	rec := measuredRecord()
	cfg := DefaultHitConfig()

	// h is drawn 5px above the bone line, H 5px below
	hit, ok := HitTest(rec, flatBone, geometry.NewPoint(30, 6), cfg)
	require.True(t, ok)
	assert.Equal(t, Primary, hit.Slot)
	assert.Equal(t, PartP1, hit.Part)

	hit, ok = HitTest(rec, flatBone, geometry.NewPoint(70, 8), cfg)
	require.True(t, ok)
	assert.Equal(t, Hit{Slot: Primary, Part: PartP2, Distance: 3}, hit)

	hit, ok = HitTest(rec, flatBone, geometry.NewPoint(70, 12), cfg)
	require.True(t, ok)
	assert.Equal(t, Hit{Slot: Secondary, Part: PartP2, Distance: 3}, hit)
}

func TestHitTestEndpointBeatsBody(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(0, 10, 100, 10))
	rec.SetSegment(Secondary, seg(50, 10, 200, 10))

	// on h's body but within reach of H's p1
	hit, ok := HitTest(rec, flatBone, geometry.NewPoint(52, 14), DefaultHitConfig())
	require.True(t, ok)
	assert.Equal(t, Secondary, hit.Slot)
	assert.Equal(t, PartP1, hit.Part)
}

func TestHitTestBodyAndMiss(t *testing.T) {
	rec := measuredRecord()
	cfg := DefaultHitConfig()

	hit, ok := HitTest(rec, flatBone, geometry.NewPoint(50, 8), cfg)
	require.True(t, ok)
	assert.Equal(t, Primary, hit.Slot)
	assert.Equal(t, PartBody, hit.Part)

	hit, ok = HitTest(rec, flatBone, geometry.NewPoint(100, 25), cfg)
	require.True(t, ok)
	assert.Equal(t, Secondary, hit.Slot)
	assert.Equal(t, PartBody, hit.Part)

	_, ok = HitTest(rec, flatBone, geometry.NewPoint(300, 300), cfg)
	assert.False(t, ok)

	_, ok = HitTest(FrameRecord{}, flatBone, geometry.NewPoint(30, 10), cfg)
	assert.False(t, ok)
}

func TestVisualSegmentSides(t *testing.T) {
	s := seg(30, 10, 70, 10)
	assert.Equal(t, seg(30, 5, 70, 5), VisualSegment(s, flatBone, Primary, 5))
	assert.Equal(t, seg(30, 18, 70, 18), VisualSegment(s, flatBone, Secondary, 8))
	assert.Equal(t, s, VisualSegment(s, seg(1, 1, 1, 1), Primary, 5))
}

func TestDragP1PreservesSlope(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(0, 0, 10, 5))

	for _, pointer := range []geometry.Point{{X: 4, Y: 100}, {X: -20, Y: -3}, {X: 9.5, Y: 0}} {
		out := DragP1(rec, Primary, pointer, 0.5)
		h, _ := out.Segment(Primary)
		assert.Equal(t, pointer.X, h.P1.X)
		assert.Equal(t, geometry.NewPoint(10, 5), h.P2)
		assert.InDelta(t, 0.5, h.Slope(), 1e-9)
	}

	// the input record is untouched
	h, _ := rec.Segment(Primary)
	assert.Equal(t, seg(0, 0, 10, 5), h)
}

func TestDragP1VerticalSlope(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(5, 0, 5, 10))

	out := DragP1(rec, Primary, geometry.NewPoint(9, 3), math.Inf(1))
	h, _ := out.Segment(Primary)
	assert.Equal(t, seg(5, 3, 5, 10), h)
	assert.True(t, geometry.IsVertical(h.Slope()))
}

func TestDragP2MovesPairedEndpoint(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(0, 0, 10, 5))
	rec.SetSegment(Secondary, seg(30, 15, 10, 5))

	out := DragP2(rec, Primary, geometry.NewPoint(14, 9), 0.5)

	h, _ := out.Segment(Primary)
	assert.Equal(t, geometry.NewPoint(14, 7), h.P2)
	assert.InDelta(t, 0.5, h.Slope(), 1e-9)

	// H's p2 is translated by (4,4) to (14,9), then corrected through its own p1
	bigH, _ := out.Segment(Secondary)
	assert.Equal(t, geometry.NewPoint(30, 15), bigH.P1)
	assert.Equal(t, 10.0+4, bigH.P2.X)
	assert.InDelta(t, geometry.YOnSlope(bigH.P1, 14, 0.5), bigH.P2.Y, 1e-9)
	assert.InDelta(t, 0.5, bigH.Slope(), 1e-9)
}

func TestDragP2VerticalSlope(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(50, 20, 50, 70))
	rec.SetSegment(Secondary, seg(50, 90, 50, 70))

	out := DragP2(rec, Primary, geometry.NewPoint(53, 60), math.Inf(1))

	h, _ := out.Segment(Primary)
	assert.Equal(t, seg(50, 20, 50, 60), h)
	bigH, _ := out.Segment(Secondary)
	assert.Equal(t, seg(50, 90, 50, 60), bigH)
}

func TestDragP2WithoutPair(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Secondary, seg(0, 0, 10, 0))

	out := DragP2(rec, Secondary, geometry.NewPoint(20, 3), 0)
	bigH, _ := out.Segment(Secondary)
	assert.Equal(t, seg(0, 0, 20, 0), bigH)
	_, ok := out.Segment(Primary)
	assert.False(t, ok)
}

func TestDragBody(t *testing.T) {
	var rec FrameRecord
	rec.SetSegment(Primary, seg(0, 0, 10, 10))

	out := DragBody(rec, Primary, geometry.NewPoint(2, 0), 1)
	h, _ := out.Segment(Primary)
	assert.True(t, h.P1.ApproxEqual(geometry.NewPoint(1, -1), 1e-9), "got %v", h.P1)
	assert.True(t, h.P2.ApproxEqual(geometry.NewPoint(11, 9), 1e-9), "got %v", h.P2)
	assert.InDelta(t, 1.0, h.Slope(), 1e-9)

	assert.Equal(t, geometry.NewPoint(0, 1), BodyDirection(0))
	assert.Equal(t, geometry.NewPoint(1, 0), BodyDirection(math.Inf(1)))

	flat := DragBody(measuredRecord(), Primary, geometry.NewPoint(3, 4), 0)
	h, _ = flat.Segment(Primary)
	assert.Equal(t, seg(30, 14, 70, 14), h)
}
