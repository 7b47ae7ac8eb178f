package measurement

import (
	"errors"
	"fmt"

	"github.com/philipparndt/goratio/pkg/geometry"
)

var (
	// ErrConfirmationPending is returned for clicks while a bone line awaits accept or reject
	ErrConfirmationPending = errors.New("bone line confirmation pending")
	// ErrWorkflowOnOtherFrame is returned for clicks on a frame other than the one being measured
	ErrWorkflowOnOtherFrame = errors.New("measurement in progress on another frame")
	// ErrNotMeasuring is returned for workflow clicks while idle
	ErrNotMeasuring = errors.New("no measurement in progress")
	// ErrNothingToConfirm is returned for confirm or reject outside of confirmation
	ErrNothingToConfirm = errors.New("no bone line to confirm")
	// ErrBoneLineChanged is returned when the stored bone line no longer matches the one being measured against
	ErrBoneLineChanged = errors.New("bone line changed during measurement")
)

// State is a step of the measurement workflow. The concrete types below are
// the only implementations.
type State interface {
	// Frame is the frame the workflow is bound to; -1 when idle
	Frame() FrameIndex
	Instruction() string
	isState()
}

// Idle means no measurement is in progress
type Idle struct{}

// AwaitingBoneStart waits for the first bone line click
type AwaitingBoneStart struct {
	OnFrame FrameIndex
}

// AwaitingBoneEnd waits for the second bone line click
type AwaitingBoneEnd struct {
	OnFrame FrameIndex
	Start   geometry.Point
}

// AwaitingConfirm holds a candidate bone line until it is accepted or rejected
type AwaitingConfirm struct {
	OnFrame   FrameIndex
	Candidate geometry.Segment
}

// AwaitingHStart waits for the first h click
type AwaitingHStart struct {
	OnFrame FrameIndex
	Bone    BoneLine
}

// AwaitingHEnd waits for the second h click
type AwaitingHEnd struct {
	OnFrame FrameIndex
	Bone    BoneLine
	Start   geometry.Point
}

// AwaitingHStep waits for the single H click. Anchor is the projected end of
// h, reused as the second point of H.
type AwaitingHStep struct {
	OnFrame   FrameIndex
	Bone      BoneLine
	RawClicks [2]geometry.Point
	Anchor    geometry.Point
}

func (Idle) Frame() FrameIndex              { return -1 }
func (s AwaitingBoneStart) Frame() FrameIndex { return s.OnFrame }
func (s AwaitingBoneEnd) Frame() FrameIndex   { return s.OnFrame }
func (s AwaitingConfirm) Frame() FrameIndex   { return s.OnFrame }
func (s AwaitingHStart) Frame() FrameIndex    { return s.OnFrame }
func (s AwaitingHEnd) Frame() FrameIndex      { return s.OnFrame }
func (s AwaitingHStep) Frame() FrameIndex     { return s.OnFrame }

func (Idle) Instruction() string              { return "" }
func (AwaitingBoneStart) Instruction() string { return "Step 1: Click left side of bone line" }
func (AwaitingBoneEnd) Instruction() string   { return "Step 2: Click right side of bone line" }
func (AwaitingConfirm) Instruction() string   { return "Confirm bone line?" }
func (AwaitingHStart) Instruction() string    { return "Step 3: Click the edge of the epiphysis" }
func (AwaitingHEnd) Instruction() string      { return "Step 4: Click the base of the epiphysis" }
func (AwaitingHStep) Instruction() string     { return "Step 5: Click the next joint" }

func (Idle) isState()              {}
func (AwaitingBoneStart) isState() {}
func (AwaitingBoneEnd) isState()   {}
func (AwaitingConfirm) isState()   {}
func (AwaitingHStart) isState()    {}
func (AwaitingHEnd) isState()      {}
func (AwaitingHStep) isState()     {}

// IsIdle reports whether no workflow is in progress
func IsIdle(s State) bool {
	_, ok := s.(Idle)
	return ok
}

// Event drives the workflow
type Event interface {
	isEvent()
}

// Start (re)starts the workflow on a frame, discarding uncommitted points
type Start struct {
	OnFrame FrameIndex
}

// Click is an image-space click on the displayed frame
type Click struct {
	OnFrame FrameIndex
	Point   geometry.Point
}

// Confirm accepts the candidate bone line
type Confirm struct{}

// Reject discards the candidate bone line
type Reject struct{}

func (Start) isEvent()   {}
func (Click) isEvent()   {}
func (Confirm) isEvent() {}
func (Reject) isEvent()  {}

// Effect is a store mutation requested by a transition
type Effect interface {
	isEffect()
}

// CommitBoneLine replaces the bone line of a frame and drops its old segments
type CommitBoneLine struct {
	OnFrame FrameIndex
	Bone    BoneLine
}

// CommitSegment stores a derived segment and the raw clicks recorded so far.
// Bone is the bone line the segment was projected onto.
type CommitSegment struct {
	OnFrame   FrameIndex
	Bone      BoneLine
	Slot      Slot
	Segment   geometry.Segment
	RawClicks []geometry.Point
}

func (CommitBoneLine) isEffect() {}
func (CommitSegment) isEffect()  {}

// Transition applies an event to a state. It never mutates its inputs; the
// returned effects describe what must be written to the store. On error the
// state is returned unchanged.
func Transition(state State, event Event) (State, []Effect, error) {
	switch ev := event.(type) {
	case Start:
		return AwaitingBoneStart{OnFrame: ev.OnFrame}, nil, nil
	case Confirm:
		c, ok := state.(AwaitingConfirm)
		if !ok {
			return state, nil, ErrNothingToConfirm
		}
		bone := NewBoneLine(c.Candidate)
		return AwaitingHStart{OnFrame: c.OnFrame, Bone: bone},
			[]Effect{CommitBoneLine{OnFrame: c.OnFrame, Bone: bone}}, nil
	case Reject:
		c, ok := state.(AwaitingConfirm)
		if !ok {
			return state, nil, ErrNothingToConfirm
		}
		return AwaitingBoneStart{OnFrame: c.OnFrame}, nil, nil
	case Click:
		return click(state, ev)
	}
	return state, nil, fmt.Errorf("unknown event %T", event)
}

func click(state State, ev Click) (State, []Effect, error) {
	if IsIdle(state) {
		return state, nil, ErrNotMeasuring
	}
	if _, ok := state.(AwaitingConfirm); ok {
		return state, nil, ErrConfirmationPending
	}
	if ev.OnFrame != state.Frame() {
		return state, nil, fmt.Errorf("%w: frame %d", ErrWorkflowOnOtherFrame, state.Frame().Number())
	}

	switch s := state.(type) {
	case AwaitingBoneStart:
		return AwaitingBoneEnd{OnFrame: s.OnFrame, Start: ev.Point}, nil, nil

	case AwaitingBoneEnd:
		return AwaitingConfirm{OnFrame: s.OnFrame, Candidate: geometry.NewSegment(s.Start, ev.Point)}, nil, nil

	case AwaitingHStart:
		return AwaitingHEnd{OnFrame: s.OnFrame, Bone: s.Bone, Start: ev.Point}, nil, nil

	case AwaitingHEnd:
		axis := s.Bone.Segment
		h := geometry.NewSegment(axis.ProjectOnto(s.Start), axis.ProjectOnto(ev.Point))
		raw := [2]geometry.Point{s.Start, ev.Point}
		next := AwaitingHStep{OnFrame: s.OnFrame, Bone: s.Bone, RawClicks: raw, Anchor: h.P2}
		return next, []Effect{CommitSegment{
			OnFrame:   s.OnFrame,
			Bone:      s.Bone,
			Slot:      Primary,
			Segment:   h,
			RawClicks: raw[:],
		}}, nil

	case AwaitingHStep:
		// H is projected against the bone line with its endpoints swapped
		axis := s.Bone.Segment.Reversed()
		bigH := geometry.NewSegment(axis.ProjectOnto(ev.Point), axis.ProjectOnto(s.Anchor))
		raw := []geometry.Point{s.RawClicks[0], s.RawClicks[1], ev.Point}
		return Idle{}, []Effect{CommitSegment{
			OnFrame:   s.OnFrame,
			Bone:      s.Bone,
			Slot:      Secondary,
			Segment:   bigH,
			RawClicks: raw,
		}}, nil
	}
	return state, nil, fmt.Errorf("unknown state %T", state)
}
