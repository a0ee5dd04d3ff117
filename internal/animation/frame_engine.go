package animation

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/jmylchreest/winstack/internal/geometry"
)

// DefaultFrameRate is the step rate used when none is configured.
const DefaultFrameRate = 60

// settleFactor is ζωT for a spring that has decayed to ~1% at its duration.
const settleFactor = 4.6

type track struct {
	target  Target
	from    geometry.Frame
	to      geometry.Frame
	params  Params
	elapsed time.Duration
	done    Completion

	// Spring state, normalized so 0 is from and 1 is to.
	spring   harmonica.Spring
	progress float64
	velocity float64
}

// FrameEngine advances animations in fixed steps when told time has passed.
// It owns no goroutines or timers: the host calls Advance from its event loop,
// which is also where every completion runs. It is not safe for concurrent use.
type FrameEngine struct {
	step    time.Duration
	carry   time.Duration
	tracks  []*track
	pending []delivery
}

type delivery struct {
	done     Completion
	finished bool
}

// NewFrameEngine creates an engine stepping at fps frames per second.
func NewFrameEngine(fps int) *FrameEngine {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &FrameEngine{step: time.Second / time.Duration(fps)}
}

// Step returns the fixed step duration.
func (e *FrameEngine) Step() time.Duration {
	return e.step
}

// Active returns the number of running animations.
func (e *FrameEngine) Active() int {
	return len(e.tracks)
}

// Animating reports whether t has a running animation.
func (e *FrameEngine) Animating(t Target) bool {
	return e.find(t) >= 0
}

// Idle reports whether there is nothing left to step or deliver.
func (e *FrameEngine) Idle() bool {
	return len(e.tracks) == 0 && len(e.pending) == 0
}

// Animate implements Engine.
func (e *FrameEngine) Animate(t Target, to geometry.Frame, p Params, done Completion) {
	e.interrupt(t)

	tr := &track{
		target: t,
		from:   t.Frame(),
		to:     to,
		params: p,
		done:   done,
	}
	if p.Style == None || p.Duration <= 0 {
		// Nothing to interpolate; land now and report on the next frame.
		moveTo(t, to.Origin)
		e.enqueue(done, true)
		return
	}
	if p.Style == Spring {
		tr.spring = newSpring(e.step, p)
		tr.velocity = p.InitialVelocity
	}
	e.tracks = append(e.tracks, tr)
}

// Stop implements Engine. The target keeps its current live frame.
func (e *FrameEngine) Stop(t Target) {
	e.interrupt(t)
}

// Advance moves every running animation forward by dt and delivers
// completions. Completions queued since the last call (interrupted or
// immediate animations) are delivered first.
func (e *FrameEngine) Advance(dt time.Duration) {
	pending := e.pending
	e.pending = nil
	for _, d := range pending {
		d.done(d.finished)
	}

	e.carry += dt
	for e.carry >= e.step {
		e.carry -= e.step
		e.stepOnce()
	}
}

// Settle advances until no animation is running, up to limit of simulated time.
// It returns the simulated time consumed.
func (e *FrameEngine) Settle(limit time.Duration) time.Duration {
	var spent time.Duration
	for !e.Idle() && spent < limit {
		e.Advance(e.step)
		spent += e.step
	}
	return spent
}

func (e *FrameEngine) stepOnce() {
	var finished []*track
	running := e.tracks[:0]
	for _, tr := range e.tracks {
		tr.elapsed += e.step
		if tr.elapsed >= tr.params.Duration {
			moveTo(tr.target, tr.to.Origin)
			finished = append(finished, tr)
			continue
		}
		moveTo(tr.target, lerpPoint(tr.from.Origin, tr.to.Origin, tr.advance()))
		running = append(running, tr)
	}
	for i := len(running); i < len(e.tracks); i++ {
		e.tracks[i] = nil
	}
	e.tracks = running

	// Completions may start new animations, so run them after the slice is settled.
	for _, tr := range finished {
		tr.done(true)
	}
}

func (tr *track) advance() float64 {
	if tr.params.Style == Spring {
		tr.progress, tr.velocity = tr.spring.Update(tr.progress, tr.velocity, 1)
		return tr.progress
	}
	return float64(tr.elapsed) / float64(tr.params.Duration)
}

func (e *FrameEngine) interrupt(t Target) {
	i := e.find(t)
	if i < 0 {
		return
	}
	tr := e.tracks[i]
	e.tracks = append(e.tracks[:i], e.tracks[i+1:]...)
	e.enqueue(tr.done, false)
}

func (e *FrameEngine) enqueue(done Completion, finished bool) {
	if done == nil {
		return
	}
	e.pending = append(e.pending, delivery{done: done, finished: finished})
}

func (e *FrameEngine) find(t Target) int {
	for i, tr := range e.tracks {
		if tr.target == t {
			return i
		}
	}
	return -1
}

// newSpring sizes a harmonica spring so it has settled by the end of the
// configured duration.
func newSpring(step time.Duration, p Params) harmonica.Spring {
	damping := math.Max(p.Damping, 0.05)
	seconds := p.Duration.Seconds()
	omega := settleFactor / (math.Min(damping, 1) * seconds)
	return harmonica.NewSpring(step.Seconds(), omega, damping)
}

// moveTo sets the origin of t. The size is left as the live frame has it, so
// a resize during an animation is not undone when it lands.
func moveTo(t Target, origin geometry.Point) {
	f := t.Frame()
	f.Origin = origin
	t.SetFrame(f)
}

func lerpPoint(from, to geometry.Point, p float64) geometry.Point {
	return geometry.Point{
		X: lerp(from.X, to.X, p),
		Y: lerp(from.Y, to.Y, p),
	}
}

func lerp(a, b, p float64) float64 {
	return a + (b-a)*p
}
