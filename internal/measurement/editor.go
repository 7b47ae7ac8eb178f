package measurement

import (
	"github.com/philipparndt/goratio/pkg/geometry"
)

// HitConfig holds the pointer tolerances used to pick a segment, in image pixels
type HitConfig struct {
	EndpointThreshold float64 `yaml:"endpoint_threshold" toml:"endpoint_threshold"`
	LineThreshold     float64 `yaml:"line_threshold" toml:"line_threshold"`
	VisualOffset      float64 `yaml:"visual_offset" toml:"visual_offset"`
}

// DefaultHitConfig returns the stock tolerances
func DefaultHitConfig() HitConfig {
	return HitConfig{
		EndpointThreshold: 5,
		LineThreshold:     15,
		VisualOffset:      5,
	}
}

// Part is the grabbed part of a segment
type Part int

const (
	PartP1 Part = iota
	PartP2
	PartBody
)

func (p Part) String() string {
	switch p {
	case PartP1:
		return "p1"
	case PartP2:
		return "p2"
	}
	return "line"
}

// Hit is the result of a successful hit test
type Hit struct {
	Slot     Slot
	Part     Part
	Distance float64
}

// VisualSegment returns seg shifted off the bone line by magnitude pixels on
// the slot's side, so h and H do not overlap on screen. The stored segment is
// not affected.
func VisualSegment(seg, bone geometry.Segment, slot Slot, magnitude float64) geometry.Segment {
	offset := geometry.PerpendicularOffset(bone.P1, bone.P2, magnitude, slot.OffsetSide())
	return seg.Translate(offset)
}

// HitTest finds the segment part under p. Endpoints within the endpoint
// threshold win over any line body, and the nearest endpoint wins among them.
func HitTest(rec FrameRecord, bone geometry.Segment, p geometry.Point, cfg HitConfig) (Hit, bool) {
	var best Hit
	found := false

	for _, slot := range Slots {
		seg, ok := rec.Segment(slot)
		if !ok {
			continue
		}
		vis := VisualSegment(seg, bone, slot, cfg.VisualOffset)
		for part, end := range map[Part]geometry.Point{PartP1: vis.P1, PartP2: vis.P2} {
			d := p.Distance(end)
			if d >= cfg.EndpointThreshold {
				continue
			}
			if !found || d < best.Distance || (d == best.Distance && lessHit(slot, part, best)) {
				best = Hit{Slot: slot, Part: part, Distance: d}
				found = true
			}
		}
	}
	if found {
		return best, true
	}

	for _, slot := range Slots {
		seg, ok := rec.Segment(slot)
		if !ok {
			continue
		}
		vis := VisualSegment(seg, bone, slot, cfg.VisualOffset)
		if !geometry.PointNearSegment(p, vis.P1, vis.P2, cfg.LineThreshold) {
			continue
		}
		d := geometry.DistanceToSegment(p, vis.P1, vis.P2)
		if !found || d < best.Distance {
			best = Hit{Slot: slot, Part: PartBody, Distance: d}
			found = true
		}
	}
	return best, found
}

// lessHit orders equidistant endpoint hits so the result does not depend on
// map iteration order
func lessHit(slot Slot, part Part, than Hit) bool {
	if slot != than.Slot {
		return slot < than.Slot
	}
	return part < than.Part
}

// DragP1 moves p1 of the slot to the pointer's x, pivoting about p2 so the
// segment keeps the bone slope. On a vertical bone line p1 keeps p2's x and
// takes the pointer's y.
func DragP1(rec FrameRecord, slot Slot, pointer geometry.Point, slope float64) FrameRecord {
	out := rec.Clone()
	seg, ok := out.Segment(slot)
	if !ok {
		return out
	}
	seg.P1 = constrain(seg.P2, pointer, slope)
	out.SetSegment(slot, seg)
	return out
}

// DragP2 moves p2 of the slot to the pointer, then corrects it onto the bone
// slope through p1. The paired segment's p2 is translated by the same delta
// and corrected through its own p1.
func DragP2(rec FrameRecord, slot Slot, pointer geometry.Point, slope float64) FrameRecord {
	out := rec.Clone()
	seg, ok := out.Segment(slot)
	if !ok {
		return out
	}
	delta := pointer.Sub(seg.P2)
	seg.P2 = constrain(seg.P1, pointer, slope)
	out.SetSegment(slot, seg)

	if other, ok := out.Segment(slot.Other()); ok {
		other.P2 = constrain(other.P1, other.P2.Add(delta), slope)
		out.SetSegment(slot.Other(), other)
	}
	return out
}

// constrain puts target on the line through pivot with the given slope
func constrain(pivot, target geometry.Point, slope float64) geometry.Point {
	if geometry.IsVertical(slope) {
		return geometry.NewPoint(pivot.X, target.Y)
	}
	return geometry.NewPoint(target.X, geometry.YOnSlope(pivot, target.X, slope))
}

// BodyDirection is the unit direction a segment body may move in: across the
// bone line, horizontal for a vertical bone and vertical for a flat one.
func BodyDirection(slope float64) geometry.Point {
	switch {
	case geometry.IsVertical(slope):
		return geometry.NewPoint(1, 0)
	case slope == 0:
		return geometry.NewPoint(0, 1)
	}
	return geometry.NewPoint(1, -1/slope).Normalize()
}

// DragBody translates the slot's segment by the component of delta across
// the bone line
func DragBody(rec FrameRecord, slot Slot, delta geometry.Point, slope float64) FrameRecord {
	out := rec.Clone()
	seg, ok := out.Segment(slot)
	if !ok {
		return out
	}
	dir := BodyDirection(slope)
	move := dir.Mul(delta.Dot(dir))
	out.SetSegment(slot, seg.Translate(move))
	return out
}
