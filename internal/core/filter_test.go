package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/winstack/internal/journal"
)

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testEvents() []journal.Event {
	return []journal.Event{
		{ID: "e1", Seq: 1, Kind: journal.KindWillAnimate, WindowID: "w1", Title: "Inbox", At: base},
		{ID: "e2", Seq: 2, Kind: journal.KindDidAnimate, WindowID: "w1", Title: "Inbox", At: base.Add(time.Minute)},
		{ID: "e3", Seq: 3, Kind: journal.KindWillAnimate, WindowID: "w2", Title: "Settings", At: base.Add(2 * time.Minute)},
		{ID: "e4", Seq: 4, Kind: journal.KindPan, WindowID: "w2", Title: "Settings", At: base.Add(3 * time.Minute)},
		{ID: "e5", Seq: 5, Kind: journal.KindDidRemove, WindowID: "w1", Title: "Inbox", At: base.Add(4 * time.Minute)},
	}
}

func seqs(events []journal.Event) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Seq
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []int
	}{
		{"no filter", FilterOptions{}, []int{1, 2, 3, 4, 5}},
		{"kind", FilterOptions{Kind: journal.KindWillAnimate}, []int{1, 3}},
		{"window", FilterOptions{WindowID: "w2"}, []int{3, 4}},
		{"search is case insensitive", FilterOptions{Search: "inB"}, []int{1, 2, 5}},
		{"limit keeps the newest", FilterOptions{Limit: 2}, []int{4, 5}},
		{"since", FilterOptions{Since: 150 * time.Second, Now: base.Add(4 * time.Minute)}, []int{3, 4, 5}},
		{"combined", FilterOptions{WindowID: "w1", Kind: journal.KindDidRemove}, []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seqs(Filter(testEvents(), tt.opts)))
		})
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, FilterOptions{Kind: journal.KindPan}))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Did_Remove ")
	require.NoError(t, err)
	assert.Equal(t, journal.KindDidRemove, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Empty(t, k)

	_, err = ParseKind("removed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: pan")

	_, err = ParseKind("did_remve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "did_remove"?`)
}

func TestSuggest(t *testing.T) {
	got, ok := Suggest("catpuccin", []string{"default", "minimal", "catppuccin"})
	assert.True(t, ok)
	assert.Equal(t, "catppuccin", got)

	got, ok = Suggest("DEFAULT", []string{"default", "minimal"})
	assert.True(t, ok)
	assert.Equal(t, "default", got)

	_, ok = Suggest("solarized", []string{"default", "minimal"})
	assert.False(t, ok)

	_, ok = Suggest("x", nil)
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"90s", 90 * time.Second, false},
		{"48h", 48 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
