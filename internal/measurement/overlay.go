package measurement

import (
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/viewer/raster"
)

// FrameOverlay returns the stored bone line, h, H and joint label of frame i
// for drawing. h and H are shifted offset pixels off the bone line.
func FrameOverlay(store *Store, i FrameIndex, offset float64) raster.Overlay {
	o := raster.Overlay{Offset: offset}
	if bone, ok := store.BoneLine(i); ok {
		seg := bone.Segment
		o.Bone = &seg
	}
	rec, _ := store.Record(i)
	if seg, ok := rec.Segment(Primary); ok {
		o.Primary = &seg
	}
	if seg, ok := rec.Segment(Secondary); ok {
		o.Secondary = &seg
	}
	o.Caption, _ = store.Label(i)
	return o
}

// Overlay returns the displayed frame's overlay including the clicks and the
// candidate bone line of a workflow in progress on it
func (e *Engine) Overlay(offset float64) raster.Overlay {
	o := FrameOverlay(e.store, e.current, offset)
	if candidate, ok := e.Candidate(); ok && e.state.Frame() == e.current {
		o.Bone = &candidate
	}
	o.Pending = append([]geometry.Point(nil), e.PendingPoints()...)
	return o
}
