package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
)

func testEvents() []journal.Event {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rest := geometry.Rect(0, 0, 400, 800)
	drag := geometry.Rect(0, 120, 400, 800)
	off := geometry.Rect(0, 800, 400, 800)
	return []journal.Event{
		{ID: "01A", Seq: 1, Kind: journal.KindWillAnimate, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, Style: "spring", Frame: &rest, At: start},
		{ID: "01B", Seq: 2, Kind: journal.KindDidAnimate, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, Style: "spring", Frame: &rest, At: start.Add(500 * time.Millisecond)},
		{ID: "01C", Seq: 3, Kind: journal.KindPan, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, Frame: &drag, At: start.Add(700 * time.Millisecond)},
		{ID: "01D", Seq: 4, Kind: journal.KindWillAnimate, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, Style: "linear", Frame: &off, At: start.Add(800 * time.Millisecond)},
		{ID: "01E", Seq: 5, Kind: journal.KindDidRemove, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, At: start.Add(1100 * time.Millisecond)},
		{ID: "01F", Seq: 6, Kind: journal.KindDidAnimate, WindowID: "w1", Title: "Alpha", Type: gesture.Dismissable, Style: "linear", Frame: &off, At: start.Add(1100 * time.Millisecond)},
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewJSONFormatter(DefaultFormatterOptions())
	err := formatter.Format(&buf, testEvents())
	require.NoError(t, err)

	// Should be valid JSON
	var result []map[string]any
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)
	require.Len(t, result, 5, "pans are filtered by default")
	assert.Equal(t, "will_animate", result[0]["kind"])
	assert.Equal(t, "dismissable", result[0]["type"])
	assert.Equal(t, "spring", result[0]["style"])
	assert.NotContains(t, result[3], "frame")
	assert.NotContains(t, result[3], "style")
}

func TestJSONFormatter_ShowPans(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultFormatterOptions()
	opts.ShowPans = true

	require.NoError(t, NewJSONFormatter(opts).Format(&buf, testEvents()))

	var result []journal.Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 6)
	assert.Equal(t, journal.KindPan, result[2].Kind)
	require.NotNil(t, result[2].Frame)
	assert.Equal(t, 120.0, result[2].Frame.Origin.Y)
	assert.Equal(t, gesture.Dismissable, result[2].Type)
}

func TestJSONFormatter_FormatSingle(t *testing.T) {
	e := testEvents()[4]
	var buf bytes.Buffer

	formatter := NewJSONFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.FormatSingle(&buf, &e))

	var result journal.Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, journal.KindDidRemove, result.Kind)
	assert.Equal(t, "w1", result.WindowID)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewYAMLFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.Format(&buf, testEvents()))

	var result []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 5)
	assert.Equal(t, "did_remove", result[3]["kind"])
	assert.Equal(t, "Alpha", result[3]["title"])
	assert.Equal(t, "dismissable", result[3]["type"])
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, formatter.Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	assert.True(t, strings.HasPrefix(lines[0], "[1] +0ms will_animate"))
	assert.Contains(t, lines[0], `"Alpha" (dismissable) spring (0.0,0.0 400.0x800.0)`)
	assert.True(t, strings.HasPrefix(lines[2], "[4] +800ms"))
	assert.Contains(t, lines[3], "did_remove")
	assert.Equal(t, "5 events, 1 windows, 1 removed over 1.1s", lines[5])
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{.Event.Kind}} {{ms .Elapsed}}"
	formatter := NewPlainFormatter(opts)
	require.NoError(t, formatter.Format(&buf, testEvents()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5, "no summary with a template")
	assert.Equal(t, "1: will_animate 0", lines[0])
	assert.Equal(t, "4: did_remove 1100", lines[3])
}

func TestIDsFormatter_Format(t *testing.T) {
	events := append(testEvents(), journal.Event{Seq: 7, Kind: journal.KindWillAnimate, WindowID: "w2"})
	var buf bytes.Buffer

	require.NoError(t, NewIDsFormatter().Format(&buf, events))
	assert.Equal(t, "w1\nw2\n", buf.String())
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	t.Run("json", func(t *testing.T) {
		_, ok := NewFormatter(FormatJSON, opts).(*JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("yaml", func(t *testing.T) {
		_, ok := NewFormatter(FormatYAML, opts).(*YAMLFormatter)
		assert.True(t, ok)
	})

	t.Run("ids", func(t *testing.T) {
		_, ok := NewFormatter(FormatIDs, opts).(*IDsFormatter)
		assert.True(t, ok)
	})

	t.Run("default", func(t *testing.T) {
		_, ok := NewFormatter("unknown", opts).(*PlainFormatter)
		assert.True(t, ok) // defaults to plain
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, f)

	_, err = ParseFormat("dmenu")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello world", 0, "hello world"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hi", 5, "hi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
	}
}
