package stack

import (
	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

func (m *Manager) classifier() gesture.Classifier {
	g := m.cfg.Gesture
	return gesture.Classifier{
		VelocityThreshold: g.VelocityThreshold,
		MaxBeginY:         g.MaxBeginYFraction * m.screen.Height,
	}
}

// ShouldBegin reports whether gesture k may start on s. Only the top surface
// accepts gestures. It has no side effects beyond calling the surface's
// predicate for pans.
func (m *Manager) ShouldBegin(s *Surface, k gesture.Kind) bool {
	if s == nil || !m.contains(s) {
		return false
	}
	return m.classifier().ShouldBegin(gesture.Candidate{
		Top:     s == m.TopWindow(),
		Type:    s.kind,
		OffsetY: s.frame.Origin.Y,
		Allow:   s.allow,
	}, k)
}

// HandlePan applies a pan event to s. Began and Changed move the surface with
// the finger; Ended and Cancelled settle it according to the classifier.
func (m *Manager) HandlePan(s *Surface, ev gesture.PanEvent) {
	if s == nil || !m.contains(s) {
		return
	}

	switch ev.Phase {
	case gesture.PhaseBegan:
		if s != m.TopWindow() {
			return
		}
		// The finger owns the frame from here on.
		m.engine.Stop(s.target)
		s.generation++
		s.session.Begin(s.frame.Origin.Y)
		m.logger.Debug("pan began", "id", s.id, "origin_y", s.session.OriginY())
		m.drag(s, ev.Translation.Y)
	case gesture.PhaseChanged:
		if !s.session.Active() || s != m.TopWindow() {
			return
		}
		m.drag(s, ev.Translation.Y)
	case gesture.PhaseEnded, gesture.PhaseCancelled:
		if !s.session.Active() {
			return
		}
		s.session.End()
		out := m.classifier().ClassifyPanEnd(s.kind, s.frame.Origin.Y, ev.Velocity.Y, m.screen.Height)
		m.logger.Debug("pan ended", "id", s.id, "phase", ev.Phase, "offset_y", s.frame.Origin.Y,
			"velocity_y", ev.Velocity.Y, "resolution", out.Resolution)
		m.resolve(s, out)
	}
}

func (m *Manager) drag(s *Surface, translationY float64) {
	s.frame = geometry.ComputeFrame(s.frame, s.session.Offset(translationY), m.cfg.Gesture.NegativeResistance)
	m.delegate.OnPan(s.content, s.kind, s.frame)
}

func (m *Manager) resolve(s *Surface, out gesture.Outcome) {
	switch out.Resolution {
	case gesture.ResolveDismiss:
		m.animate(s, geometry.Offscreen(m.screen), animation.Linear, out.VelocityY, true)
	case gesture.ResolveToOffset:
		y := m.cfg.Gesture.OffsetTargetFraction * m.screen.Height
		m.animate(s, s.frame.WithY(y), animation.Spring, out.VelocityY, false)
	default:
		m.animate(s, s.frame.WithY(0), animation.Spring, out.VelocityY, false)
	}
}

// HandleTap returns an offset surface to the rest position.
func (m *Manager) HandleTap(s *Surface) {
	if s == nil || !m.contains(s) || s.kind != gesture.Offsetable {
		return
	}
	m.logger.Debug("tap", "id", s.id, "offset_y", s.frame.Origin.Y)
	m.animate(s, s.frame.WithY(0), animation.Linear, 0, false)
}
