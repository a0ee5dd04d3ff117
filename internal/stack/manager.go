// Package stack manages an ordered stack of full-screen surfaces that users
// can drag, fling and tap, coordinating gesture input with animated layout.
package stack

import (
	"log/slog"
	"slices"
	"weak"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/config"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// DefaultScreen is the screen size used when none is given.
var DefaultScreen = geometry.Size{Width: 390, Height: 844}

// Manager owns a stack of surfaces. The last surface is the top of the stack
// and the only one that accepts new gestures.
//
// A Manager takes no locks: it, its engine and its delegate must all be driven
// from one goroutine.
type Manager struct {
	engine   animation.Engine
	delegate Delegate
	logger   *slog.Logger
	cfg      config.Config
	screen   geometry.Size

	windows []*Surface
	self    weak.Pointer[Manager]
}

// Option configures a Manager.
type Option func(*Manager)

// WithDelegate sets the lifecycle delegate. Nil restores NopDelegate.
func WithDelegate(d Delegate) Option {
	return func(m *Manager) {
		if d == nil {
			d = NopDelegate{}
		}
		m.delegate = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithConfig sets gesture and animation tuning. The config is copied.
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) {
		if cfg != nil {
			m.cfg = *cfg
		}
	}
}

// WithScreen sets the screen size surfaces are laid out in.
func WithScreen(size geometry.Size) Option {
	return func(m *Manager) {
		if !size.Empty() {
			m.screen = size
		}
	}
}

// New creates a Manager driving surfaces through engine.
func New(engine animation.Engine, opts ...Option) *Manager {
	if engine == nil {
		precondition("new", "nil animation engine")
	}
	m := &Manager{
		engine:   engine,
		delegate: NopDelegate{},
		logger:   slog.Default(),
		cfg:      *config.Default(),
		screen:   DefaultScreen,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.self = weak.Make(m)
	return m
}

// PushOption configures a single PushWindow call.
type PushOption func(*pushOptions)

type pushOptions struct {
	style     animation.Style
	predicate Predicate
}

// WithStyle sets the style of the entry transition. The default is Spring.
func WithStyle(style animation.Style) PushOption {
	return func(o *pushOptions) { o.style = style }
}

// WithPredicate sets the pan predicate for the surface. Nil allows every pan.
func WithPredicate(p Predicate) PushOption {
	return func(o *pushOptions) {
		if p != nil {
			o.predicate = p
		}
	}
}

// PushWindow places content on a new surface just below the screen, makes it
// the top of the stack and animates it up to offset 0. It panics if content
// is nil.
func (m *Manager) PushWindow(content any, t gesture.WindowType, opts ...PushOption) *Surface {
	if content == nil {
		precondition("push window", "nil content")
	}
	o := pushOptions{style: animation.Spring, predicate: AlwaysAllow}
	for _, opt := range opts {
		opt(&o)
	}

	s := newSurface(m, content, t, o.predicate)
	s.frame = geometry.Offscreen(m.screen)
	m.windows = append(m.windows, s)

	m.logger.Debug("pushed window", "id", s.id, "type", t, "style", o.style, "count", len(m.windows))
	m.animate(s, m.screen.Rect(), o.style, 0, false)
	return s
}

// SetTopOffset animates the top surface to vertical offset y. Negative offsets
// are damped by the configured resistance. It panics if the stack is empty.
func (m *Manager) SetTopOffset(y float64, style animation.Style) {
	top := m.TopWindow()
	if top == nil {
		precondition("set top offset", "stack is empty")
	}
	m.logger.Debug("set top offset", "id", top.id, "y", y, "style", style)
	m.animate(top, geometry.ComputeFrame(top.frame, y, m.cfg.Gesture.NegativeResistance), style, 0, false)
}

// PopWindow slides the top surface below the screen and removes it once the
// transition finishes. The transition is always Linear. It panics if the
// stack is empty.
func (m *Manager) PopWindow(animated bool) {
	top := m.TopWindow()
	if top == nil {
		precondition("pop window", "stack is empty")
	}
	m.logger.Debug("pop window", "id", top.id, "animated", animated)
	m.animate(top, geometry.Offscreen(m.screen), animation.Linear, 0, true)
}

// Count returns the number of surfaces in the stack.
func (m *Manager) Count() int {
	return len(m.windows)
}

// TopWindow returns the top surface, or nil if the stack is empty.
func (m *Manager) TopWindow() *Surface {
	if len(m.windows) == 0 {
		return nil
	}
	return m.windows[len(m.windows)-1]
}

// Windows returns the surfaces from bottom to top.
func (m *Manager) Windows() []*Surface {
	return slices.Clone(m.windows)
}

// SurfaceAt returns the frontmost surface whose frame contains p.
func (m *Manager) SurfaceAt(p geometry.Point) *Surface {
	for i := len(m.windows) - 1; i >= 0; i-- {
		if m.windows[i].frame.Contains(p) {
			return m.windows[i]
		}
	}
	return nil
}

// Screen returns the screen size.
func (m *Manager) Screen() geometry.Size {
	return m.screen
}

// Config returns a copy of the active configuration.
func (m *Manager) Config() config.Config {
	return m.cfg
}

// UpdateConfig replaces the configuration. It applies to gestures and
// transitions started afterwards.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = *cfg
	m.logger.Debug("config updated")
}

// Resize changes the screen size. Surfaces keep their offsets and take the
// new size, including those mid-transition.
func (m *Manager) Resize(size geometry.Size) {
	if size.Empty() || size == m.screen {
		return
	}
	m.screen = size
	for _, s := range m.windows {
		s.frame.Size = size
	}
	m.logger.Debug("screen resized", "width", size.Width, "height", size.Height)
}

func (m *Manager) contains(s *Surface) bool {
	return !s.removed && slices.Contains(m.windows, s)
}

func (m *Manager) remove(s *Surface) {
	i := slices.Index(m.windows, s)
	if i < 0 {
		return
	}
	m.windows = slices.Delete(m.windows, i, i+1)
	s.removed = true
	s.session.End()
	m.logger.Debug("removed window", "id", s.id, "count", len(m.windows))
}
