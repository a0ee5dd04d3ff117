package journal

import (
	"crypto/rand"
	"io"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// Recorder is a stack delegate that keeps every callback as an Event.
// Like the stack it observes, it is not safe for concurrent use.
type Recorder struct {
	clock   func() time.Time
	entropy io.Reader
	limit   int
	pans    bool
	sink    func(Event)

	seq    int
	events []Event
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the time source used to stamp events.
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLimit keeps only the most recent n events. Zero keeps everything.
func WithLimit(n int) RecorderOption {
	return func(r *Recorder) {
		if n >= 0 {
			r.limit = n
		}
	}
}

// WithoutPans drops pan events, which arrive once per pointer move.
func WithoutPans() RecorderOption {
	return func(r *Recorder) {
		r.pans = false
	}
}

// WithSink calls fn with every event as it is recorded, including events
// later evicted by WithLimit.
func WithSink(fn func(Event)) RecorderOption {
	return func(r *Recorder) {
		r.sink = fn
	}
}

// NewRecorder creates a Recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		clock: time.Now,
		// Monotonic entropy keeps IDs sortable when many events share a millisecond.
		entropy: ulid.Monotonic(rand.Reader, 0),
		pans:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events returns a copy of the recorded events, oldest first.
func (r *Recorder) Events() []Event {
	return slices.Clone(r.events)
}

// Len returns the number of retained events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Reset discards every retained event. Sequence numbers keep counting.
func (r *Recorder) Reset() {
	r.events = nil
}

func (r *Recorder) OnPan(content any, t gesture.WindowType, frame geometry.Frame) {
	if !r.pans {
		return
	}
	r.record(KindPan, content, t, "", &frame)
}

func (r *Recorder) OnWillAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	r.record(KindWillAnimate, content, t, style.String(), &frame)
}

func (r *Recorder) OnDidAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	r.record(KindDidAnimate, content, t, style.String(), &frame)
}

func (r *Recorder) OnDidRemove(content any, t gesture.WindowType) {
	r.record(KindDidRemove, content, t, "", nil)
}

func (r *Recorder) record(kind Kind, content any, t gesture.WindowType, style string, frame *geometry.Frame) {
	at := r.clock()
	r.seq++
	id, title := describe(content)
	e := Event{
		ID:       ulid.MustNew(ulid.Timestamp(at), r.entropy).String(),
		Seq:      r.seq,
		Kind:     kind,
		WindowID: id,
		Title:    title,
		Type:     t,
		Style:    style,
		Frame:    frame,
		At:       at,
	}
	r.events = append(r.events, e)
	if r.sink != nil {
		r.sink(e)
	}
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = slices.Delete(r.events, 0, len(r.events)-r.limit)
	}
}
