package measurement

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/philipparndt/goratio/pkg/analysis"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
)

// Result holds the physical lengths of a frame's segments and their ratio
type Result struct {
	Primary   analysis.Value
	Secondary analysis.Value
	Ratio     analysis.Value
}

// Measure computes the physical lengths and OR of a record
func Measure(rec FrameRecord, spacing series.PixelSpacing) Result {
	var res Result
	if seg, ok := rec.Segment(Primary); ok {
		res.Primary = analysis.Some(analysis.SegmentLength(seg, spacing))
	}
	if seg, ok := rec.Segment(Secondary); ok {
		res.Secondary = analysis.Some(analysis.SegmentLength(seg, spacing))
	}
	res.Ratio = analysis.Ratio(res.Primary, res.Secondary)
	return res
}

// StatusText formats a result as shown under the frame
func (r Result) StatusText() string {
	if !r.Primary.Valid || !r.Secondary.Valid {
		return ""
	}
	return fmt.Sprintf("h: %.2f mm  H: %.2f mm  OR: %s %%", r.Primary.V, r.Secondary.V, r.Ratio.Format(1))
}

type activeDrag struct {
	hit  Hit
	last geometry.Point
}

// supersededFrame is what a frame held before a re-measurement confirmed a new bone line
type supersededFrame struct {
	frame   FrameIndex
	bone    BoneLine
	hasBone bool
	record  FrameRecord
	hasRec  bool
}

// Engine routes pointer input for one series to the measurement workflow
// and the segment editor. It is not safe for concurrent use.
type Engine struct {
	store   *Store
	spacing series.PixelSpacing
	config  HitConfig
	logger  *slog.Logger

	current  FrameIndex
	state    State
	drag     *activeDrag
	replaced *supersededFrame
}

// NewEngine creates an engine over store. A nil logger discards output.
func NewEngine(store *Store, spacing series.PixelSpacing, config HitConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:   store,
		spacing: spacing.OrDefault(),
		config:  config,
		logger:  logger,
		state:   Idle{},
	}
}

// Store returns the record store
func (e *Engine) Store() *Store { return e.store }

// Spacing returns the pixel spacing used for physical lengths
func (e *Engine) Spacing() series.PixelSpacing { return e.spacing }

// Frame returns the displayed frame
func (e *Engine) Frame() FrameIndex { return e.current }

// State returns the workflow state
func (e *Engine) State() State { return e.state }

// SetFrame displays frame i. An in-progress workflow stays bound to its own frame.
func (e *Engine) SetFrame(i FrameIndex) error {
	if !i.InRange(e.store.FrameCount()) {
		return fmt.Errorf("%w: %d not in 1..%d", ErrInvalidFrame, i.Number(), e.store.FrameCount())
	}
	e.current = i
	e.drag = nil
	return nil
}

// JumpTo displays a frame by its 1-based number
func (e *Engine) JumpTo(n FrameNumber) error {
	return e.SetFrame(n.Index())
}

// NextFrame advances one frame, reporting whether it moved
func (e *Engine) NextFrame() bool {
	return e.SetFrame(e.current+1) == nil
}

// PrevFrame goes back one frame, reporting whether it moved
func (e *Engine) PrevFrame() bool {
	return e.SetFrame(e.current-1) == nil
}

// StartMeasurement begins the workflow on the displayed frame, discarding
// any uncommitted points. A re-measurement abandoned before its new h was
// committed gets its previous bone line and segments back.
func (e *Engine) StartMeasurement() {
	e.restoreReplaced()
	e.fire(Start{OnFrame: e.current})
}

func (e *Engine) restoreReplaced() {
	r := e.replaced
	if r == nil {
		return
	}
	e.replaced = nil
	e.store.Clear(r.frame)
	if r.hasBone {
		e.store.SetBoneLine(r.frame, r.bone)
	}
	if r.hasRec {
		e.store.PutRecord(r.frame, r.record)
	}
	e.logger.Debug("restored abandoned re-measurement", "frame", r.frame.Number())
}

// Confirm accepts the candidate bone line
func (e *Engine) Confirm() error {
	return e.fire(Confirm{})
}

// Reject discards the candidate bone line
func (e *Engine) Reject() error {
	return e.fire(Reject{})
}

func (e *Engine) fire(ev Event) error {
	next, effects, err := Transition(e.state, ev)
	if err != nil {
		return err
	}
	if err := e.apply(effects); err != nil {
		return err
	}
	e.logger.Debug("workflow", "from", fmt.Sprintf("%T", e.state), "to", fmt.Sprintf("%T", next), "frame", next.Frame().Number())
	e.state = next
	return nil
}

func (e *Engine) apply(effects []Effect) error {
	for _, eff := range effects {
		if c, ok := eff.(CommitSegment); ok {
			bone, ok := e.store.BoneLine(c.OnFrame)
			if !ok {
				return fmt.Errorf("%w %d", ErrNoBoneLine, c.OnFrame.Number())
			}
			if bone.Segment != c.Bone.Segment {
				return fmt.Errorf("%w on frame %d", ErrBoneLineChanged, c.OnFrame.Number())
			}
		}
	}

	for _, eff := range effects {
		switch c := eff.(type) {
		case CommitBoneLine:
			r := &supersededFrame{frame: c.OnFrame}
			r.bone, r.hasBone = e.store.BoneLine(c.OnFrame)
			r.record, r.hasRec = e.store.Record(c.OnFrame)
			if r.hasBone || r.hasRec {
				e.replaced = r
			}
			e.store.SetBoneLine(c.OnFrame, c.Bone)
			e.store.PutRecord(c.OnFrame, FrameRecord{})
		case CommitSegment:
			if c.Slot == Primary && e.replaced != nil && e.replaced.frame == c.OnFrame {
				e.replaced = nil
			}
			rec, _ := e.store.Record(c.OnFrame)
			rec.SetSegment(c.Slot, c.Segment)
			rec.RawClicks = c.RawClicks
			e.store.PutRecord(c.OnFrame, rec)
		}
	}
	return nil
}

// Press handles a pointer press at image point p. While measuring it feeds the
// workflow; when idle it starts a drag if p hits a segment.
func (e *Engine) Press(p geometry.Point) error {
	if !IsIdle(e.state) {
		return e.fire(Click{OnFrame: e.current, Point: p})
	}

	rec, ok := e.store.Record(e.current)
	if !ok {
		return nil
	}
	bone, _ := e.store.BoneLine(e.current)
	hit, ok := HitTest(rec, bone.Segment, p, e.config)
	if !ok {
		return nil
	}
	e.drag = &activeDrag{hit: hit, last: p}
	e.logger.Debug("drag start", "segment", hit.Slot, "part", hit.Part, "frame", e.current.Number())
	return nil
}

// Move updates an active drag to image point p. It reports whether anything changed.
func (e *Engine) Move(p geometry.Point) bool {
	if e.drag == nil {
		return false
	}
	rec, ok := e.store.Record(e.current)
	if !ok {
		e.drag = nil
		return false
	}
	slope := 0.0
	if bone, ok := e.store.BoneLine(e.current); ok {
		slope = bone.Slope
	}

	switch e.drag.hit.Part {
	case PartP1:
		rec = DragP1(rec, e.drag.hit.Slot, p, slope)
	case PartP2:
		rec = DragP2(rec, e.drag.hit.Slot, p, slope)
	case PartBody:
		rec = DragBody(rec, e.drag.hit.Slot, p.Sub(e.drag.last), slope)
	}
	e.drag.last = p
	e.store.PutRecord(e.current, rec)
	return true
}

// Release ends an active drag
func (e *Engine) Release() {
	if e.drag != nil {
		e.logger.Debug("drag end", "segment", e.drag.hit.Slot, "part", e.drag.hit.Part)
	}
	e.drag = nil
}

// Dragging returns the grabbed segment part, if any
func (e *Engine) Dragging() (Hit, bool) {
	if e.drag == nil {
		return Hit{}, false
	}
	return e.drag.hit, true
}

// ClearFrame removes the displayed frame's measurement and bone line and
// abandons any workflow
func (e *Engine) ClearFrame() {
	e.dropReplaced(e.current)
	e.restoreReplaced()
	e.store.Clear(e.current)
	e.state = Idle{}
	e.drag = nil
	e.logger.Debug("cleared frame", "frame", e.current.Number())
}

// CopyToRange copies the displayed frame's measurement into a range of
// frames. A workflow in progress on one of the overwritten frames is abandoned.
func (e *Engine) CopyToRange(r FrameRange) error {
	if err := e.store.CopyRange(e.current, r); err != nil {
		return err
	}
	for _, i := range r.Indices() {
		e.dropReplaced(i)
		if !IsIdle(e.state) && e.state.Frame() == i {
			e.logger.Info("measurement abandoned, frame overwritten by copy", "frame", i.Number())
			e.state = Idle{}
		}
	}
	e.logger.Info("copied measurement", "from", e.current.Number(), "range", r.String())
	return nil
}

func (e *Engine) dropReplaced(i FrameIndex) {
	if e.replaced != nil && e.replaced.frame == i {
		e.replaced = nil
	}
}

// PendingPoints returns the uncommitted clicks of the workflow on the displayed frame
func (e *Engine) PendingPoints() []geometry.Point {
	if e.state.Frame() != e.current {
		return nil
	}
	switch s := e.state.(type) {
	case AwaitingBoneEnd:
		return []geometry.Point{s.Start}
	case AwaitingConfirm:
		return []geometry.Point{s.Candidate.P1, s.Candidate.P2}
	case AwaitingHEnd:
		return []geometry.Point{s.Start}
	}
	return nil
}

// Candidate returns the bone line awaiting confirmation
func (e *Engine) Candidate() (geometry.Segment, bool) {
	if s, ok := e.state.(AwaitingConfirm); ok {
		return s.Candidate, true
	}
	return geometry.Segment{}, false
}

// Result measures the displayed frame
func (e *Engine) Result() Result {
	rec, _ := e.store.Record(e.current)
	return Measure(rec, e.spacing)
}

// Status returns the workflow prompt while measuring, otherwise the
// measurement summary of the displayed frame
func (e *Engine) Status() string {
	if !IsIdle(e.state) {
		if e.state.Frame() != e.current {
			return fmt.Sprintf("Measuring frame %d: %s", e.state.Frame().Number(), e.state.Instruction())
		}
		return e.state.Instruction()
	}
	return e.Result().StatusText()
}
