package stack

import (
	"math"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
)

// Spring initial velocity bounds, as a fraction of the travel distance per second.
const (
	minSpringVelocity = 0.1
	maxSpringVelocity = 1.0
)

// animate moves s to target. velocity is the gesture velocity in points/sec
// and only seeds Spring transitions. When remove is set the surface leaves the
// stack once the transition finishes, unless something superseded it first.
func (m *Manager) animate(s *Surface, target geometry.Frame, style animation.Style, velocity float64, remove bool) {
	s.generation++
	gen := s.generation

	m.delegate.OnWillAnimate(s.content, s.kind, style, target)

	done := func(finished bool) {
		m.complete(s, gen, target, style, remove, finished)
	}

	if style == animation.None {
		// The engine may still hold a transition for s; it must not keep moving it.
		m.engine.Stop(s.target)
		s.frame = target
		done(true)
		return
	}

	m.engine.Animate(s.target, target, m.params(style, s.frame, target, velocity), done)
}

func (m *Manager) complete(s *Surface, gen uint64, target geometry.Frame, style animation.Style, remove, finished bool) {
	current := gen == s.generation
	// The screen may have been resized since the transition started.
	target.Size = s.frame.Size
	if remove && finished && current && m.contains(s) {
		m.remove(s)
		m.delegate.OnDidRemove(s.content, s.kind)
	}
	if !current {
		m.logger.Debug("superseded animation completed", "id", s.id, "style", style)
	}
	m.delegate.OnDidAnimate(s.content, s.kind, style, target)
}

func (m *Manager) params(style animation.Style, from, to geometry.Frame, velocity float64) animation.Params {
	a := m.cfg.Animation
	switch style {
	case animation.Linear:
		return animation.Params{Style: style, Duration: a.LinearDuration.Duration()}
	case animation.Spring:
		return animation.Params{
			Style:           style,
			Duration:        a.SpringDuration.Duration(),
			Damping:         a.SpringDamping,
			InitialVelocity: springVelocity(velocity, to.Origin.Y-from.Origin.Y),
		}
	default:
		return animation.Params{Style: style}
	}
}

// springVelocity converts a gesture velocity into the engine's relative
// velocity for a transition covering distance points.
func springVelocity(velocity, distance float64) float64 {
	d := math.Abs(distance)
	if d < 1 {
		d = 1
	}
	v := math.Abs(velocity) / d
	return math.Min(math.Max(v, minSpringVelocity), maxSpringVelocity)
}
