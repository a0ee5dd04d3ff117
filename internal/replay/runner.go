// Package replay runs scripted stack operations and pointer gestures against a
// Manager on a virtual clock, so whole interactions can be reproduced without
// a terminal or a real pointer.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/winstack/internal/adapter/input"
	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/config"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/stack"
)

// DefaultSettleLimit bounds how much virtual time the runner spends letting
// animations finish after the last step.
const DefaultSettleLimit = 10 * time.Second

// Epoch is the virtual clock's default start.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrEmptyStack is returned when a step needs a top window and there is none.
var ErrEmptyStack = errors.New("stack is empty")

// Options configures a Runner.
type Options struct {
	Config      *config.Config
	Logger      *slog.Logger
	Start       time.Time
	SettleLimit time.Duration
	// Delegate also receives every stack callback, after the journal.
	Delegate stack.Delegate
}

// Result is the outcome of a run.
type Result struct {
	Events  []journal.Event
	Windows int
	Elapsed time.Duration
}

// Runner executes one script.
type Runner struct {
	script *input.Script
	logger *slog.Logger
	limit  time.Duration

	engine     *animation.FrameEngine
	manager    *stack.Manager
	recognizer *gesture.Recognizer
	recorder   *journal.Recorder

	start   time.Time
	now     time.Time
	pointer geometry.Point
	pressed bool
}

// New creates a Runner for script.
func New(script *input.Script, opts Options) *Runner {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := opts.Start
	if start.IsZero() {
		start = Epoch
	}
	limit := opts.SettleLimit
	if limit <= 0 {
		limit = DefaultSettleLimit
	}

	r := &Runner{
		script: script,
		logger: logger,
		limit:  limit,
		engine: animation.NewFrameEngine(cfg.Animation.FrameRate),
		start:  start,
		now:    start,
	}
	r.recorder = journal.NewRecorder(journal.WithClock(r.clock))

	var delegate stack.Delegate = r.recorder
	if opts.Delegate != nil {
		delegate = stack.Fanout{r.recorder, opts.Delegate}
	}
	r.manager = stack.New(r.engine,
		stack.WithConfig(cfg),
		stack.WithLogger(logger),
		stack.WithDelegate(delegate),
		stack.WithScreen(script.Screen),
	)

	r.recognizer = gesture.NewRecognizer(r.hitTest)
	r.recognizer.Slop = cfg.Gesture.PanSlop
	r.recognizer.VelocityWindow = cfg.Gesture.VelocityWindow.Duration()
	return r
}

// Manager returns the stack under test.
func (r *Runner) Manager() *stack.Manager {
	return r.manager
}

// Now returns the virtual clock.
func (r *Runner) Now() time.Time {
	return r.now
}

// Run executes every step, then lets running animations finish.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for i := range r.script.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := &r.script.Steps[i]
		r.logger.Debug("replay step", "index", i+1, "kind", step.Kind(), "at", r.now.Sub(r.start))
		if err := r.runStep(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Kind(), err)
		}
	}

	if r.pressed {
		r.feed(gesture.ActionCancel, r.pointer)
		r.pressed = false
	}
	r.settle()

	return &Result{
		Events:  r.recorder.Events(),
		Windows: r.manager.Count(),
		Elapsed: r.now.Sub(r.start),
	}, nil
}

func (r *Runner) runStep(step *input.Step) error {
	switch {
	case step.Push != nil:
		return r.push(step.Push)
	case step.Pop != nil:
		if r.manager.Count() == 0 {
			return ErrEmptyStack
		}
		r.manager.PopWindow(step.Pop.IsAnimated())
	case step.SetOffset != nil:
		if r.manager.Count() == 0 {
			return ErrEmptyStack
		}
		style, err := step.SetOffset.AnimationStyle()
		if err != nil {
			return err
		}
		r.manager.SetTopOffset(step.SetOffset.Y, style)
	case step.Wait != "":
		d, err := step.WaitDuration()
		if err != nil {
			return err
		}
		r.advance(d)
	case step.Tap != nil:
		r.pointer = *step.Tap
		r.feed(gesture.ActionDown, r.pointer)
		r.feed(gesture.ActionUp, r.pointer)
	case len(step.Gesture) > 0:
		for _, a := range step.Gesture {
			r.perform(a)
		}
	default:
		return errors.New("empty step")
	}
	return nil
}

func (r *Runner) push(p *input.PushStep) error {
	t, err := p.WindowType()
	if err != nil {
		return err
	}
	style, err := p.AnimationStyle()
	if err != nil {
		return err
	}
	card := journal.NewCard(p.Title, p.Body)
	card.Locked = p.Locked
	r.manager.PushWindow(card, t, stack.WithStyle(style), stack.WithPredicate(journal.Unlocked))
	return nil
}

// perform runs one pointer action. Moves while pressed are interpolated and
// sampled once per frame, the way a real pointer would report them.
func (r *Runner) perform(a input.PointerAction) {
	switch a.Type {
	case input.ActionPointerMove:
		to := geometry.Point{X: a.X, Y: a.Y}
		span := a.Span()
		if !r.pressed {
			r.advance(span)
			r.pointer = to
			return
		}
		from := r.pointer
		if span <= 0 {
			r.pointer = to
			r.feed(gesture.ActionMove, to)
			return
		}
		for elapsed := time.Duration(0); elapsed < span; {
			chunk := min(r.engine.Step(), span-elapsed)
			elapsed += chunk
			r.advance(chunk)
			p := float64(elapsed) / float64(span)
			r.pointer = geometry.Point{
				X: from.X + (to.X-from.X)*p,
				Y: from.Y + (to.Y-from.Y)*p,
			}
			r.feed(gesture.ActionMove, r.pointer)
		}
	case input.ActionPointerDown:
		r.pressed = true
		r.feed(gesture.ActionDown, r.pointer)
	case input.ActionPointerUp:
		r.pressed = false
		r.feed(gesture.ActionUp, r.pointer)
	case input.ActionPointerCancel:
		r.pressed = false
		r.feed(gesture.ActionCancel, r.pointer)
	case input.ActionPause:
		r.advance(a.Span())
	}
}

func (r *Runner) feed(action gesture.Action, p geometry.Point) {
	r.recognizer.Feed(gesture.Sample{Action: action, Position: p, At: r.now})
}

// hitTest returns the frontmost surface under p.
func (r *Runner) hitTest(p geometry.Point) gesture.Handler {
	if s := r.manager.SurfaceAt(p); s != nil {
		return s
	}
	return nil
}

// advance moves the virtual clock forward, stepping the engine frame by frame.
func (r *Runner) advance(d time.Duration) {
	for d > 0 {
		chunk := min(r.engine.Step(), d)
		r.now = r.now.Add(chunk)
		r.engine.Advance(chunk)
		d -= chunk
	}
}

func (r *Runner) settle() {
	var spent time.Duration
	for !r.engine.Idle() && spent < r.limit {
		r.advance(r.engine.Step())
		spent += r.engine.Step()
	}
	if !r.engine.Idle() {
		r.logger.Warn("animations still running after settle limit", "limit", r.limit, "active", r.engine.Active())
	}
}

func (r *Runner) clock() time.Time {
	return r.now
}
