package measurement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/goratio/pkg/geometry"
)

// FrameIndex is a 0-based frame position used for all internal storage
type FrameIndex int

// FrameNumber is a 1-based frame position shown to users
type FrameNumber int

// Number converts to the user-facing 1-based frame number
func (i FrameIndex) Number() FrameNumber {
	return FrameNumber(i + 1)
}

// InRange reports whether the index addresses one of count frames
func (i FrameIndex) InRange(count int) bool {
	return i >= 0 && int(i) < count
}

// Index converts to the internal 0-based frame index
func (n FrameNumber) Index() FrameIndex {
	return FrameIndex(n - 1)
}

func (n FrameNumber) String() string {
	return strconv.Itoa(int(n))
}

// ErrInvalidFrame is returned for frame numbers that are not positive integers
var ErrInvalidFrame = errors.New("invalid frame number")

// ParseFrameNumber parses a 1-based frame number typed by a user
func ParseFrameNumber(s string) (FrameNumber, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrame, s)
	}
	return FrameNumber(n), nil
}

// Slot identifies one of the two measurement segments of a frame
type Slot int

const (
	// Primary is the h segment
	Primary Slot = iota
	// Secondary is the H segment
	Secondary
)

// Slots lists both slots in hit-test order
var Slots = [2]Slot{Primary, Secondary}

// Other returns the paired slot
func (s Slot) Other() Slot {
	if s == Primary {
		return Secondary
	}
	return Primary
}

func (s Slot) String() string {
	if s == Primary {
		return "h"
	}
	return "H"
}

// OffsetSide is the side of the bone line the segment is drawn on
func (s Slot) OffsetSide() geometry.Side {
	if s == Primary {
		return geometry.SideNegative
	}
	return geometry.SidePositive
}

// ParseSlot maps "h" and "H" to their slots
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "h":
		return Primary, nil
	case "H":
		return Secondary, nil
	}
	return 0, fmt.Errorf("unknown segment %q", s)
}

// FrameRecord holds the committed measurement of one frame.
// RawClicks holds 0, 2 or 3 unprojected clicks in the order they were made.
type FrameRecord struct {
	Segments  [2]*geometry.Segment
	RawClicks []geometry.Point
}

// Segment returns the segment in the given slot
func (r FrameRecord) Segment(s Slot) (geometry.Segment, bool) {
	if r.Segments[s] == nil {
		return geometry.Segment{}, false
	}
	return *r.Segments[s], true
}

// SetSegment stores a copy of seg in the given slot
func (r *FrameRecord) SetSegment(s Slot, seg geometry.Segment) {
	r.Segments[s] = &seg
}

// HasMeasurement reports whether at least one segment is committed
func (r FrameRecord) HasMeasurement() bool {
	return r.Segments[Primary] != nil || r.Segments[Secondary] != nil
}

// Complete reports whether both segments are committed
func (r FrameRecord) Complete() bool {
	return r.Segments[Primary] != nil && r.Segments[Secondary] != nil
}

// Clone returns a deep copy sharing no memory with r
func (r FrameRecord) Clone() FrameRecord {
	var out FrameRecord
	for _, s := range Slots {
		if seg, ok := r.Segment(s); ok {
			out.SetSegment(s, seg)
		}
	}
	if r.RawClicks != nil {
		out.RawClicks = append([]geometry.Point(nil), r.RawClicks...)
	}
	return out
}

// JointLabels is the vocabulary offered when labelling a frame
var JointLabels = []string{
	"PD4", "PD3", "PD2", "PD5",
	"PM5", "PM4", "PM3", "PM2",
	"PP5", "MC5", "PP4", "MC4",
	"PP3", "MC3", "PP2", "MC2",
	"PD1",
}

// IsKnownLabel reports whether label is in the joint vocabulary
func IsKnownLabel(label string) bool {
	for _, l := range JointLabels {
		if l == label {
			return true
		}
	}
	return false
}
