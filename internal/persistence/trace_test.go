package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/market-sim/internal/engine"
)

func TestTraceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "session.jsonl.zst")
	tr, err := CreateTrace(path)
	require.NoError(t, err)
	assert.Equal(t, path, tr.Path())

	g := engine.NewGame(engine.DefaultOptions())
	g.Recorder = tr
	g.Dispatch(engine.KeyPlay, 0)
	g.Dispatch(engine.KeyAddLand, 1200)
	g.Dispatch(engine.KeyQuit, 0)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	lines, err := ReadTrace(path)
	require.NoError(t, err)

	var kinds []string
	var descriptions []string
	var ticks []engine.Snapshot
	for _, l := range lines {
		kinds = append(kinds, l.Kind)
		switch l.Kind {
		case "event":
			require.NotNil(t, l.Event)
			descriptions = append(descriptions, l.Event.Description)
		case "tick":
			require.NotNil(t, l.Tick)
			ticks = append(ticks, *l.Tick)
		}
	}

	assert.Equal(t, []string{"event", "event", "event", "tick", "event"}, kinds)
	assert.Equal(t, []string{
		"session started",
		"menu -> playing",
		"grassland land of size 10 added",
		"quit requested",
	}, descriptions)
	require.Len(t, ticks, 1)
	assert.Equal(t, engine.ModePlaying, ticks[0].Mode)
	assert.Equal(t, 1, ticks[0].Time)
	assert.Equal(t, []string{"10"}, ticks[0].LandSizes)
}

func TestTraceWriteAfterClose(t *testing.T) {
	tr, err := CreateTrace(filepath.Join(t.TempDir(), "t.jsonl.zst"))
	require.NoError(t, err)
	require.NoError(t, tr.Close())
	assert.Error(t, tr.RecordEvent(engine.Event{Category: "session"}))
}

func TestRecordersFanOut(t *testing.T) {
	db := openMemory(t)
	tr, err := CreateTrace(filepath.Join(t.TempDir(), "t.jsonl.zst"))
	require.NoError(t, err)

	g := engine.NewGame(engine.DefaultOptions())
	g.Recorder = engine.Recorders{db, tr}
	g.Dispatch(engine.KeyPlay, 0)
	require.NoError(t, tr.Close())

	// The closed trace fails, the journal still records.
	g.Dispatch(engine.KeyAddPerson, 0)

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Len(t, events, 4)
	assert.Equal(t, engine.ModePlaying, g.Mode())
}
