package measurement

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/philipparndt/goratio/pkg/geometry"
)

var (
	// ErrInvalidRange is returned for range input that is not "start-end"
	ErrInvalidRange = errors.New("invalid frame range")
	// ErrRangeOutOfBounds is returned for a descending range or one outside the series
	ErrRangeOutOfBounds = errors.New("frame range out of bounds")
	// ErrNoBoneLine is returned when a step needs a confirmed bone line
	ErrNoBoneLine = errors.New("no bone line on frame")
	// ErrNoMeasurement is returned when a frame has no committed segment
	ErrNoMeasurement = errors.New("no measurement on frame")
)

// BoneLine is the confirmed reference axis of a frame
type BoneLine struct {
	Segment geometry.Segment
	Slope   float64
}

// NewBoneLine confirms a bone line, deriving its slope
func NewBoneLine(seg geometry.Segment) BoneLine {
	return BoneLine{Segment: seg, Slope: seg.Slope()}
}

// Store owns the per-frame records, bone lines and joint labels of a series.
// Values go in and come out as copies, so callers never alias stored data.
type Store struct {
	frameCount int
	records    map[FrameIndex]FrameRecord
	bones      map[FrameIndex]BoneLine
	labels     map[FrameIndex]string
}

// NewStore creates an empty store for a series of frameCount frames
func NewStore(frameCount int) *Store {
	return &Store{
		frameCount: frameCount,
		records:    make(map[FrameIndex]FrameRecord),
		bones:      make(map[FrameIndex]BoneLine),
		labels:     make(map[FrameIndex]string),
	}
}

// FrameCount returns the number of frames in the series
func (s *Store) FrameCount() int {
	return s.frameCount
}

// Record returns a copy of the record of frame i
func (s *Store) Record(i FrameIndex) (FrameRecord, bool) {
	r, ok := s.records[i]
	if !ok {
		return FrameRecord{}, false
	}
	return r.Clone(), true
}

// PutRecord stores a copy of r for frame i
func (s *Store) PutRecord(i FrameIndex, r FrameRecord) {
	s.records[i] = r.Clone()
}

// BoneLine returns the confirmed bone line of frame i
func (s *Store) BoneLine(i FrameIndex) (BoneLine, bool) {
	b, ok := s.bones[i]
	return b, ok
}

// SetBoneLine stores the bone line of frame i
func (s *Store) SetBoneLine(i FrameIndex, b BoneLine) {
	s.bones[i] = b
}

// Label returns the joint label of frame i
func (s *Store) Label(i FrameIndex) (string, bool) {
	l, ok := s.labels[i]
	return l, ok
}

// SetLabel assigns a joint label. An empty label removes it.
func (s *Store) SetLabel(i FrameIndex, label string) {
	if label == "" {
		delete(s.labels, i)
		return
	}
	s.labels[i] = label
}

// Clear removes the record and bone line of frame i. Its label is kept.
func (s *Store) Clear(i FrameIndex) {
	delete(s.records, i)
	delete(s.bones, i)
}

// MeasuredFrames returns the frames holding at least one segment, ascending
func (s *Store) MeasuredFrames() []FrameIndex {
	var frames []FrameIndex
	for i, r := range s.records {
		if r.HasMeasurement() {
			frames = append(frames, i)
		}
	}
	sortFrames(frames)
	return frames
}

// Records returns copies of all records
func (s *Store) Records() map[FrameIndex]FrameRecord {
	out := make(map[FrameIndex]FrameRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// BoneLines returns a copy of the bone line map
func (s *Store) BoneLines() map[FrameIndex]BoneLine {
	out := make(map[FrameIndex]BoneLine, len(s.bones))
	for i, b := range s.bones {
		out[i] = b
	}
	return out
}

// Labels returns a copy of the label map
func (s *Store) Labels() map[FrameIndex]string {
	out := make(map[FrameIndex]string, len(s.labels))
	for i, l := range s.labels {
		out[i] = l
	}
	return out
}

// LabeledFrames returns the frames carrying label, ascending
func (s *Store) LabeledFrames(label string) []FrameIndex {
	var frames []FrameIndex
	for i, l := range s.labels {
		if l == label {
			frames = append(frames, i)
		}
	}
	sortFrames(frames)
	return frames
}

func sortFrames(frames []FrameIndex) {
	sort.Slice(frames, func(a, b int) bool { return frames[a] < frames[b] })
}

// FrameRange is an inclusive range of 1-based frame numbers
type FrameRange struct {
	Start FrameNumber
	End   FrameNumber
}

// ParseRange parses "start-end" with 1-based frame numbers
func ParseRange(s string) (FrameRange, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return FrameRange{}, fmt.Errorf("%w: enter range as start-end, got %q", ErrInvalidRange, s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return FrameRange{Start: FrameNumber(start), End: FrameNumber(end)}, nil
}

// Validate checks the range is ascending and inside a series of frameCount frames
func (r FrameRange) Validate(frameCount int) error {
	if r.Start > r.End || !r.Start.Index().InRange(frameCount) || !r.End.Index().InRange(frameCount) {
		return fmt.Errorf("%w: enter a range between 1 and %d, got %d-%d", ErrRangeOutOfBounds, frameCount, r.Start, r.End)
	}
	return nil
}

// Indices returns the 0-based indices covered by the range
func (r FrameRange) Indices() []FrameIndex {
	var out []FrameIndex
	for n := r.Start; n <= r.End; n++ {
		out = append(out, n.Index())
	}
	return out
}

func (r FrameRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// CopyRange copies the segments and bone line of src into every frame of r,
// overwriting existing records. Destination raw clicks are cleared and labels
// are left alone. Nothing is written when validation fails.
func (s *Store) CopyRange(src FrameIndex, r FrameRange) error {
	source, ok := s.records[src]
	if !ok || !source.HasMeasurement() {
		return fmt.Errorf("%w %d", ErrNoMeasurement, src.Number())
	}
	if err := r.Validate(s.frameCount); err != nil {
		return err
	}

	bone, hasBone := s.bones[src]
	for _, i := range r.Indices() {
		var dst FrameRecord
		for _, slot := range Slots {
			if seg, ok := source.Segment(slot); ok {
				dst.SetSegment(slot, seg)
			}
		}
		s.records[i] = dst
		if hasBone {
			s.bones[i] = bone
		}
	}
	return nil
}
