package gesture

import (
	"math"
	"time"

	"github.com/jmylchreest/winstack/internal/geometry"
)

// Default recognizer tuning.
const (
	DefaultSlop           = 4.0
	DefaultVelocityWindow = 100 * time.Millisecond
)

// Action is the kind of raw pointer sample.
type Action int

const (
	ActionDown Action = iota
	ActionMove
	ActionUp
	ActionCancel
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionMove:
		return "move"
	case ActionUp:
		return "up"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Sample is one raw pointer report in screen coordinates.
type Sample struct {
	Action   Action
	Position geometry.Point
	At       time.Time
}

// Handler receives recognized gestures for the surface a pointer sequence
// started on.
type Handler interface {
	Frame() geometry.Frame
	ShouldBegin(k Kind) bool
	HandlePan(ev PanEvent)
	HandleTap()
}

// HitTest returns the handler under p, or nil when nothing should receive
// the pointer sequence.
type HitTest func(p geometry.Point) Handler

type recognizerState int

const (
	stateIdle recognizerState = iota
	stateTracking
	statePanning
	stateFailed
)

// Recognizer turns single-pointer samples into pan and tap gestures.
// It is not safe for concurrent use.
type Recognizer struct {
	// Slop is how far the pointer must travel before a pan is considered.
	Slop float64
	// VelocityWindow is the trailing span of samples used for velocity.
	VelocityWindow time.Duration

	hitTest HitTest
	handler Handler
	state   recognizerState
	down    geometry.Point
	recent  []Sample
}

// NewRecognizer creates a recognizer that routes sequences with hitTest.
func NewRecognizer(hitTest HitTest) *Recognizer {
	return &Recognizer{
		Slop:           DefaultSlop,
		VelocityWindow: DefaultVelocityWindow,
		hitTest:        hitTest,
	}
}

// Tracking reports whether a pointer sequence is in progress.
func (r *Recognizer) Tracking() bool {
	return r.state != stateIdle
}

// Panning reports whether a pan has been recognized and not yet finished.
func (r *Recognizer) Panning() bool {
	return r.state == statePanning
}

// Feed processes one sample.
func (r *Recognizer) Feed(s Sample) {
	switch s.Action {
	case ActionDown:
		if r.state != stateIdle {
			r.cancel()
		}
		r.start(s)
	case ActionMove:
		r.move(s)
	case ActionUp:
		r.up(s)
	case ActionCancel:
		r.cancel()
	}
}

func (r *Recognizer) start(s Sample) {
	if r.hitTest == nil {
		return
	}
	h := r.hitTest(s.Position)
	if h == nil {
		return
	}
	r.handler = h
	r.state = stateTracking
	r.down = s.Position
	r.recent = append(r.recent[:0], s)
}

func (r *Recognizer) move(s Sample) {
	switch r.state {
	case stateTracking:
		r.record(s)
		if distance(r.down, s.Position) <= r.Slop {
			return
		}
		v := r.velocity()
		pan := Pan{
			Start:     r.handler.Frame().Local(r.down),
			VelocityY: v.Y,
		}
		if !r.handler.ShouldBegin(pan) {
			r.state = stateFailed
			return
		}
		r.state = statePanning
		r.handler.HandlePan(PanEvent{
			Phase:       PhaseBegan,
			Translation: r.translation(s.Position),
			Velocity:    v,
		})
	case statePanning:
		r.record(s)
		r.handler.HandlePan(PanEvent{
			Phase:       PhaseChanged,
			Translation: r.translation(s.Position),
			Velocity:    r.velocity(),
		})
	case stateFailed:
		// Swallow the rest of the sequence.
	}
}

func (r *Recognizer) up(s Sample) {
	switch r.state {
	case stateTracking:
		tap := Tap{Position: r.handler.Frame().Local(s.Position)}
		if r.handler.ShouldBegin(tap) {
			r.handler.HandleTap()
		}
	case statePanning:
		r.record(s)
		r.handler.HandlePan(PanEvent{
			Phase:       PhaseEnded,
			Translation: r.translation(s.Position),
			Velocity:    r.velocity(),
		})
	}
	r.reset()
}

func (r *Recognizer) cancel() {
	if r.state == statePanning {
		last := r.recent[len(r.recent)-1]
		r.handler.HandlePan(PanEvent{
			Phase:       PhaseCancelled,
			Translation: r.translation(last.Position),
		})
	}
	r.reset()
}

func (r *Recognizer) reset() {
	r.state = stateIdle
	r.handler = nil
	r.recent = r.recent[:0]
}

func (r *Recognizer) record(s Sample) {
	r.recent = append(r.recent, s)
	cutoff := s.At.Add(-r.VelocityWindow)
	drop := 0
	for drop < len(r.recent)-1 && r.recent[drop].At.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		r.recent = append(r.recent[:0], r.recent[drop:]...)
	}
}

// velocity estimates points/sec over the retained samples. Fewer than two
// samples, or samples with no elapsed time between them, yield zero.
func (r *Recognizer) velocity() geometry.Point {
	if len(r.recent) < 2 {
		return geometry.Point{}
	}
	first, last := r.recent[0], r.recent[len(r.recent)-1]
	dt := last.At.Sub(first.At).Seconds()
	if dt <= 0 {
		return geometry.Point{}
	}
	return geometry.Point{
		X: (last.Position.X - first.Position.X) / dt,
		Y: (last.Position.Y - first.Position.Y) / dt,
	}
}

func (r *Recognizer) translation(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X - r.down.X, Y: p.Y - r.down.Y}
}

func distance(a, b geometry.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
