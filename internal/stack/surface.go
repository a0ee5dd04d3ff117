package stack

import (
	"crypto/rand"
	"time"
	"weak"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// Predicate decides whether a pan may start on a surface. It is consulted on
// every attempt and must not have side effects.
type Predicate func(content any, t gesture.WindowType) bool

// AlwaysAllow is the default Predicate.
func AlwaysAllow(any, gesture.WindowType) bool { return true }

// Surface is one window in a stack: the caller's content plus the state the
// Manager keeps for it. Surfaces are created by Manager.PushWindow.
type Surface struct {
	id        string
	content   any
	kind      gesture.WindowType
	predicate Predicate
	createdAt time.Time

	// The Manager owns its surfaces; a surface only observes its manager.
	owner weak.Pointer[Manager]

	frame   geometry.Frame
	session gesture.Session
	// generation tags the latest transition so older completions are ignored.
	generation uint64
	removed    bool
	target     *surfaceTarget
}

// surfaceTarget exposes the frame to an animation engine without giving the
// engine the rest of the Surface API.
type surfaceTarget struct {
	s *Surface
}

func (t *surfaceTarget) Frame() geometry.Frame      { return t.s.frame }
func (t *surfaceTarget) SetFrame(f geometry.Frame) { t.s.frame = f }

func newSurface(m *Manager, content any, t gesture.WindowType, predicate Predicate) *Surface {
	now := time.Now()
	s := &Surface{
		id:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		content:   content,
		kind:      t,
		predicate: predicate,
		createdAt: now,
		owner:     m.self,
	}
	s.target = &surfaceTarget{s: s}
	return s
}

// ID returns the surface's ULID.
func (s *Surface) ID() string { return s.id }

// Content returns the value passed to PushWindow.
func (s *Surface) Content() any { return s.content }

// Type returns the surface's window type.
func (s *Surface) Type() gesture.WindowType { return s.kind }

// CreatedAt returns when the surface was pushed.
func (s *Surface) CreatedAt() time.Time { return s.createdAt }

// Frame returns the surface's live frame in screen coordinates.
func (s *Surface) Frame() geometry.Frame { return s.frame }

// OffsetY returns the live vertical offset from the rest position.
func (s *Surface) OffsetY() float64 { return s.frame.Origin.Y }

// Removed reports whether the surface has left its stack.
func (s *Surface) Removed() bool { return s.removed }

// Panning reports whether a pan is currently driving the surface.
func (s *Surface) Panning() bool { return s.session.Active() }

// Manager returns the owning manager, or nil once it has been collected.
func (s *Surface) Manager() *Manager { return s.owner.Value() }

// ShouldBegin implements gesture.Handler.
func (s *Surface) ShouldBegin(k gesture.Kind) bool {
	m := s.owner.Value()
	if m == nil {
		return false
	}
	return m.ShouldBegin(s, k)
}

// HandlePan implements gesture.Handler.
func (s *Surface) HandlePan(ev gesture.PanEvent) {
	if m := s.owner.Value(); m != nil {
		m.HandlePan(s, ev)
	}
}

// HandleTap implements gesture.Handler.
func (s *Surface) HandleTap() {
	if m := s.owner.Value(); m != nil {
		m.HandleTap(s)
	}
}

func (s *Surface) allow() bool {
	return s.predicate(s.content, s.kind)
}
