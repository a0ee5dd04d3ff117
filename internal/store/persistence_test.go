package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
	"github.com/jmylchreest/winstack/internal/journal"
)

func persistTestEvent(seq int, kind journal.Kind) journal.Event {
	frame := geometry.Rect(0, float64(seq*10), 390, 844)
	return journal.Event{
		ID:       "01JTEST" + string(rune('A'+seq)),
		Seq:      seq,
		Kind:     kind,
		WindowID: "01JWINDOW",
		Title:    "Inbox",
		Type:     gesture.Offsetable,
		Style:    "spring",
		Frame:    &frame,
		At:       time.Date(2026, 1, 1, 0, 0, seq, 0, time.UTC),
	}
}

func TestNewJSONLPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "events.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, path, p.Path())

	// File should have header
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "winstack_schema_version")
}

func TestJSONLPersistence_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)

	require.NoError(t, p.Append(persistTestEvent(1, journal.KindWillAnimate)))
	require.NoError(t, p.AppendBatch([]journal.Event{
		persistTestEvent(2, journal.KindDidAnimate),
		persistTestEvent(3, journal.KindDidRemove),
	}))

	events, err := p.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, persistTestEvent(1, journal.KindWillAnimate), events[0])
	assert.Equal(t, journal.KindDidRemove, events[2].Kind)
	assert.Equal(t, gesture.Offsetable, events[2].Type)

	// Appending after a load still goes to the end.
	require.NoError(t, p.Append(persistTestEvent(4, journal.KindPan)))
	require.NoError(t, p.Close())

	events, err = LoadFile(path)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, 4, events[3].Seq)
}

func TestJSONLPersistence_ReopenKeepsSingleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 1; i <= 2; i++ {
		p, err := NewJSONLPersistence(path)
		require.NoError(t, err)
		require.NoError(t, p.Append(persistTestEvent(i, journal.KindDidAnimate)))
		require.NoError(t, p.Close())
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "winstack_schema_version"))
	assert.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 3)
}

func TestJSONLPersistence_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(persistTestEvent(1, journal.KindDidAnimate)))
	require.NoError(t, p.Clear())

	events, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, p.Append(persistTestEvent(2, journal.KindDidAnimate)))
	events, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJSONLPersistence_ClearRestoresBackupOnWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Append(persistTestEvent(1, journal.KindDidAnimate)))

	// A read-only handle makes the header write fail after the backup is taken.
	p.openFile = func(name string, flag int, perm os.FileMode) (*os.File, error) {
		f, err := os.OpenFile(name, flag, perm)
		if err != nil {
			return nil, err
		}
		f.Close()
		return os.Open(name)
	}
	err = p.Clear()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write header")

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "backup is moved back")

	events, err := p.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Seq)

	require.NoError(t, p.Append(persistTestEvent(2, journal.KindDidAnimate)))
	events, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestJSONLPersistence_ClearRestoresBackupOnOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Append(persistTestEvent(1, journal.KindDidAnimate)))

	p.openFile = func(string, int, os.FileMode) (*os.File, error) {
		return nil, os.ErrPermission
	}
	assert.ErrorIs(t, p.Clear(), os.ErrPermission)

	events, err := p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJSONLPersistence_Closed(t *testing.T) {
	p, err := NewJSONLPersistence(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Append(persistTestEvent(1, journal.KindPan)), ErrPersistenceClosed)
	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Clear(), ErrPersistenceClosed)
}

func TestReadEvents_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"winstack_schema_version":1,"created_at":0}`,
		`{"id":"a","seq":1,"kind":"will_animate","type":"dismissable","at":"2026-01-01T00:00:00Z"}`,
		`not json`,
		`{"id":"b"}`,
		``,
		`{"id":"c","seq":2,"kind":"did_remove","type":"dismissable","at":"2026-01-01T00:00:01Z"}`,
	}, "\n")

	events, err := ReadEvents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, journal.KindDidRemove, events[1].Kind)
}

func TestReadEvents_RejectsNewerSchema(t *testing.T) {
	_, err := ReadEvents(strings.NewReader(`{"winstack_schema_version":99,"created_at":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version 99")
}
