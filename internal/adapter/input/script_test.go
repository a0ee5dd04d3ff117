package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/winstack/internal/animation"
	"github.com/jmylchreest/winstack/internal/gesture"
)

const dismissScript = `
name: dismiss
screen: {width: 400, height: 800}
steps:
  - push: {title: Alpha, body: first, type: dismissable}
  - wait: 600ms
  - gesture:
      - {type: pointerMove, x: 200, y: 40}
      - {type: pointerDown}
      - {type: pointerMove, x: 200, y: 600, duration: 200}
      - {type: pause, duration: 16}
      - {type: pointerUp}
  - pop: {animated: false}
  - set_offset: {y: 300, style: linear}
  - tap: {x: 10, y: 400}
  - wait: 250
`

func TestParseScript_YAML(t *testing.T) {
	sc, err := ParseScript([]byte(dismissScript), "test")
	require.NoError(t, err)

	assert.Equal(t, "dismiss", sc.Name)
	assert.Equal(t, 400.0, sc.Screen.Width)
	require.Len(t, sc.Steps, 7)

	kinds := make([]string, len(sc.Steps))
	for i := range sc.Steps {
		kinds[i] = sc.Steps[i].Kind()
	}
	assert.Equal(t, []string{"push", "wait", "gesture", "pop", "set_offset", "tap", "wait"}, kinds)

	typ, err := sc.Steps[0].Push.WindowType()
	require.NoError(t, err)
	assert.Equal(t, gesture.Dismissable, typ)
	style, err := sc.Steps[0].Push.AnimationStyle()
	require.NoError(t, err)
	assert.Equal(t, animation.Spring, style)

	d, err := sc.Steps[1].WaitDuration()
	require.NoError(t, err)
	assert.Equal(t, 600*time.Millisecond, d)

	g := sc.Steps[2].Gesture
	require.Len(t, g, 5)
	assert.Equal(t, ActionPointerMove, g[2].Type)
	assert.Equal(t, 200*time.Millisecond, g[2].Span())

	assert.False(t, sc.Steps[3].Pop.IsAnimated())
	assert.Equal(t, 300.0, sc.Steps[4].SetOffset.Y)
	assert.Equal(t, 400.0, sc.Steps[5].Tap.Y)

	d, err = sc.Steps[6].WaitDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestParseScript_JSON(t *testing.T) {
	data := `{"screen": {"width": 390, "height": 844}, "steps": [{"push": {"title": "A", "type": "offset"}}, {"pop": {}}]}`
	sc, err := ParseScript([]byte(data), "test")
	require.NoError(t, err)
	require.Len(t, sc.Steps, 2)

	typ, err := sc.Steps[0].Push.WindowType()
	require.NoError(t, err)
	assert.Equal(t, gesture.Offsetable, typ)
	assert.True(t, sc.Steps[1].Pop.IsAnimated())
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "  \n", "script is empty"},
		{"no screen", "steps: []", "screen width and height must be positive"},
		{"unknown field", "screen: {width: 1, height: 1}\nbogus: 1", "failed to parse script"},
		{"two ops", "screen: {width: 1, height: 1}\nsteps:\n  - {pop: {}, wait: 1s}", "step 1: exactly one of"},
		{"no ops", "screen: {width: 1, height: 1}\nsteps:\n  - {}", "got 0"},
		{"bad type", "screen: {width: 1, height: 1}\nsteps:\n  - push: {title: a, type: sideways}", "invalid window type"},
		{"bad style", "screen: {width: 1, height: 1}\nsteps:\n  - set_offset: {y: 1, style: bounce}", "invalid animation style"},
		{"bad wait", "screen: {width: 1, height: 1}\nsteps:\n  - wait: soon", "invalid duration"},
		{"negative wait", "screen: {width: 1, height: 1}\nsteps:\n  - wait: -1s", "must not be negative"},
		{"bad action", "screen: {width: 1, height: 1}\nsteps:\n  - gesture: [{type: wiggle}]", `unknown type "wiggle"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.script), "test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var aerr *AdapterError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, "test", aerr.Source)
		})
	}
}

func TestLoadScript_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dismissScript), 0644))

	sc, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 7)
}

func TestLoadScript_Missing(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadScript(t *testing.T) {
	sc, err := ReadScript(strings.NewReader(dismissScript), "stdin")
	require.NoError(t, err)
	assert.Equal(t, "dismiss", sc.Name)
}
