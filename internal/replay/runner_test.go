package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/winstack/internal/adapter/input"
	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/stack"
)

func loadScript(t *testing.T, src string) *input.Script {
	t.Helper()
	sc, err := input.ParseScript([]byte(src), t.Name())
	require.NoError(t, err)
	return sc
}

func run(t *testing.T, src string, opts Options) (*Runner, *Result) {
	t.Helper()
	r := New(loadScript(t, src), opts)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	return r, res
}

func kinds(events []journal.Event) []journal.Kind {
	out := make([]journal.Kind, 0, len(events))
	for _, e := range events {
		if e.Kind != journal.KindPan {
			out = append(out, e.Kind)
		}
	}
	return out
}

func count(events []journal.Event, k journal.Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

const flingScript = `
screen: {width: 400, height: 800}
steps:
  - push: {title: Alpha, type: dismissable}
  - wait: 600ms
  - gesture:
      - {type: pointerMove, x: 200, y: 40}
      - {type: pointerDown}
      - {type: pointerMove, x: 200, y: 600, duration: 200}
      - {type: pause, duration: 16}
      - {type: pointerUp}
`

func TestRunner_FlingDismisses(t *testing.T) {
	_, res := run(t, flingScript, Options{})

	assert.Equal(t, 0, res.Windows)
	assert.Equal(t, []journal.Kind{
		journal.KindWillAnimate, journal.KindDidAnimate,
		journal.KindWillAnimate, journal.KindDidRemove, journal.KindDidAnimate,
	}, kinds(res.Events))
	assert.Greater(t, count(res.Events, journal.KindPan), 5)

	for _, e := range res.Events {
		assert.Equal(t, "Alpha", e.Title)
		assert.False(t, e.At.Before(Epoch))
		assert.False(t, e.At.After(Epoch.Add(res.Elapsed)))
	}
	assert.Greater(t, res.Elapsed, 800*time.Millisecond)

	// The last pan follows the finger to the release point.
	var lastPan journal.Event
	for _, e := range res.Events {
		if e.Kind == journal.KindPan {
			lastPan = e
		}
	}
	require.NotNil(t, lastPan.Frame)
	assert.InDelta(t, 560, lastPan.Frame.Origin.Y, 0.001)
}

const offsetScript = `
screen: {width: 400, height: 800}
steps:
  - push: {title: Sheet, type: offsetable}
  - wait: 600ms
  - gesture:
      - {type: pointerMove, x: 200, y: 40}
      - {type: pointerDown}
      - {type: pointerMove, x: 200, y: 500, duration: 300}
      - {type: pause, duration: 300}
      - {type: pointerUp}
  - wait: 1s
  - tap: {x: 200, y: 700}
`

func TestRunner_SlowDragOffsetsThenTapRestores(t *testing.T) {
	r, res := run(t, offsetScript, Options{})

	assert.Equal(t, 1, res.Windows)
	top := r.Manager().TopWindow()
	require.NotNil(t, top)
	assert.Equal(t, 0.0, top.OffsetY())
	assert.Zero(t, count(res.Events, journal.KindDidRemove))

	var wills []journal.Event
	for _, e := range res.Events {
		if e.Kind == journal.KindWillAnimate {
			wills = append(wills, e)
		}
	}
	require.Len(t, wills, 3)
	assert.Equal(t, "spring", wills[1].Style)
	assert.InDelta(t, 680, wills[1].Frame.Origin.Y, 0.001)
	assert.Equal(t, "linear", wills[2].Style)
	assert.Equal(t, 0.0, wills[2].Frame.Origin.Y)
}

func TestRunner_LockedWindowRefusesPan(t *testing.T) {
	src := `
screen: {width: 400, height: 800}
steps:
  - push: {title: Locked, locked: true}
  - wait: 600ms
  - gesture:
      - {type: pointerMove, x: 200, y: 40}
      - {type: pointerDown}
      - {type: pointerMove, x: 200, y: 700, duration: 100}
      - {type: pointerUp}
`
	r, res := run(t, src, Options{})
	assert.Equal(t, 1, res.Windows)
	assert.Zero(t, count(res.Events, journal.KindPan))
	assert.Equal(t, 0.0, r.Manager().TopWindow().OffsetY())
}

func TestRunner_ScriptedOperations(t *testing.T) {
	src := `
screen: {width: 400, height: 800}
steps:
  - push: {title: A}
  - push: {title: B, style: none}
  - set_offset: {y: 200, style: linear}
  - wait: 1s
  - pop: {}
  - wait: 400ms
  - pop: {animated: false}
`
	r, res := run(t, src, Options{})
	assert.Equal(t, 0, res.Windows)
	assert.Equal(t, 2, count(res.Events, journal.KindDidRemove))
	assert.Equal(t, 0, r.Manager().Count())
}

func TestRunner_PopOnEmptyStack(t *testing.T) {
	src := `
screen: {width: 400, height: 800}
steps:
  - pop: {}
`
	_, err := New(loadScript(t, src), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyStack)
	assert.Contains(t, err.Error(), "step 1 (pop)")
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(loadScript(t, flingScript), Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type removals struct {
	stack.NopDelegate
	n int
}

func (r *removals) OnDidRemove(any, gesture.WindowType) { r.n++ }

func TestRunner_ExtraDelegate(t *testing.T) {
	extra := &removals{}
	start := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	r, res := run(t, flingScript, Options{Delegate: extra, Start: start})

	assert.Equal(t, 1, extra.n)
	assert.Equal(t, start.Add(res.Elapsed), r.Now())
	assert.Equal(t, start, res.Events[0].At)
}

func TestRunner_HitTestPicksFrontmost(t *testing.T) {
	src := `
screen: {width: 400, height: 800}
steps:
  - push: {title: A, style: none}
  - push: {title: B, style: none}
`
	r, _ := run(t, src, Options{})
	h := r.hitTest(geometry.Point{X: 10, Y: 10})
	require.NotNil(t, h)
	assert.Same(t, r.Manager().TopWindow(), h.(*stack.Surface))

	assert.Nil(t, r.hitTest(geometry.Point{X: 10, Y: 900}))
}
