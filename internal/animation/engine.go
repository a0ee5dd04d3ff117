package animation

import "github.com/jmylchreest/winstack/internal/geometry"

// Target is something whose frame an engine can drive.
type Target interface {
	Frame() geometry.Frame
	SetFrame(f geometry.Frame)
}

// Completion is invoked exactly once per Animate call. finished is false when
// the animation was superseded or stopped before reaching its target.
type Completion func(finished bool)

// Engine animates targets toward a frame. Only the origin is animated: the
// target's size is whatever its live frame holds.
//
// Calling Animate on a target that is already animating supersedes the running
// animation: the new one starts from the target's live frame and the old
// completion is delivered with finished=false. Completions are never invoked
// synchronously from Animate or Stop.
type Engine interface {
	Animate(t Target, to geometry.Frame, p Params, done Completion)
	Stop(t Target)
}
