package stack

import (
	"log/slog"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

// Delegate observes surface lifecycle. Callbacks run on the goroutine driving
// the Manager; panics raised by a delegate are not recovered.
type Delegate interface {
	// OnPan is called for every began/changed pan with the surface's new frame.
	OnPan(content any, t gesture.WindowType, frame geometry.Frame)
	// OnWillAnimate is called before a transition starts, with its target frame.
	OnWillAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame)
	// OnDidAnimate is called once per transition, with the target frame it was
	// started with, whether or not it ran to completion.
	OnDidAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame)
	// OnDidRemove is called after a surface leaves the stack and before the
	// OnDidAnimate of the transition that removed it.
	OnDidRemove(content any, t gesture.WindowType)
}

// NopDelegate ignores every callback.
type NopDelegate struct{}

func (NopDelegate) OnPan(any, gesture.WindowType, geometry.Frame)                          {}
func (NopDelegate) OnWillAnimate(any, gesture.WindowType, animation.Style, geometry.Frame) {}
func (NopDelegate) OnDidAnimate(any, gesture.WindowType, animation.Style, geometry.Frame)  {}
func (NopDelegate) OnDidRemove(any, gesture.WindowType)                                    {}

// Fanout forwards each callback to every delegate in order.
type Fanout []Delegate

func (f Fanout) OnPan(content any, t gesture.WindowType, frame geometry.Frame) {
	for _, d := range f {
		d.OnPan(content, t, frame)
	}
}

func (f Fanout) OnWillAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	for _, d := range f {
		d.OnWillAnimate(content, t, style, frame)
	}
}

func (f Fanout) OnDidAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	for _, d := range f {
		d.OnDidAnimate(content, t, style, frame)
	}
}

func (f Fanout) OnDidRemove(content any, t gesture.WindowType) {
	for _, d := range f {
		d.OnDidRemove(content, t)
	}
}

// LogDelegate writes every callback to a structured logger at debug level.
// Pan updates are frequent, so they are only logged when Pans is set.
type LogDelegate struct {
	Logger *slog.Logger
	Pans   bool
}

// NewLogDelegate creates a LogDelegate. A nil logger uses slog.Default().
func NewLogDelegate(logger *slog.Logger) *LogDelegate {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDelegate{Logger: logger}
}

func (d *LogDelegate) OnPan(content any, t gesture.WindowType, frame geometry.Frame) {
	if !d.Pans {
		return
	}
	d.Logger.Debug("pan", "content", content, "type", t, "frame", frame.String())
}

func (d *LogDelegate) OnWillAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	d.Logger.Debug("will animate", "content", content, "type", t, "style", style, "frame", frame.String())
}

func (d *LogDelegate) OnDidAnimate(content any, t gesture.WindowType, style animation.Style, frame geometry.Frame) {
	d.Logger.Debug("did animate", "content", content, "type", t, "style", style, "frame", frame.String())
}

func (d *LogDelegate) OnDidRemove(content any, t gesture.WindowType) {
	d.Logger.Debug("did remove", "content", content, "type", t)
}
