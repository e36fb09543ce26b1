package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/market-sim/internal/config"
	"github.com/talgya/market-sim/internal/engine"
	"github.com/talgya/market-sim/internal/persistence"
)

func TestReadKeysSkipsWhitespace(t *testing.T) {
	out := make(chan rune, 8)
	readKeys(strings.NewReader("p\nl l\n\tq"), out)
	close(out)

	var got []rune
	for r := range out {
		got = append(got, r)
	}
	assert.Equal(t, []rune{'p', 'l', 'l', 'q'}, got)
}

func TestChanged(t *testing.T) {
	base := engine.Snapshot{Mode: engine.ModePlaying, Time: 1, LandSizes: []string{"10"}}

	assert.False(t, changed(base, base))
	assert.False(t, changed(base, engine.Snapshot{Mode: engine.ModePlaying, Time: 1, LandSizes: []string{"10"}, Frame: 9}))
	assert.True(t, changed(base, engine.Snapshot{Mode: engine.ModeMenu, Time: 1, LandSizes: []string{"10"}}))
	assert.True(t, changed(base, engine.Snapshot{Mode: engine.ModePlaying, Time: 2, LandSizes: []string{"10"}}))
	assert.True(t, changed(base, engine.Snapshot{Mode: engine.ModePlaying, Time: 1}))
}

func TestOpenRecordersBoth(t *testing.T) {
	cfg := config.Default()
	cfg.TracePath = filepath.Join(t.TempDir(), "trace", "session.jsonl.zst")

	recorders, closeAll, err := openRecorders(cfg)
	require.NoError(t, err)
	require.Len(t, recorders, 2)

	require.NoError(t, recorders.RecordEvent(engine.Event{
		SessionID: "s1", Category: engine.CategorySession, Description: "session started", At: time.Now(),
	}))
	closeAll()

	lines, err := persistence.ReadTrace(cfg.TracePath)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestOpenRecordersClosesJournalWhenTraceFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var journal *persistence.DB
	orig := openJournal
	openJournal = func(dsn string) (*persistence.DB, error) {
		db, err := orig(dsn)
		journal = db
		return db, err
	}
	t.Cleanup(func() { openJournal = orig })

	cfg := config.Default()
	cfg.TracePath = filepath.Join(blocker, "session.jsonl.zst")

	recorders, closeAll, err := openRecorders(cfg)
	require.Error(t, err)
	assert.Nil(t, recorders)
	assert.Nil(t, closeAll)

	require.NotNil(t, journal)
	assert.Error(t, journal.RecordEvent(engine.Event{SessionID: "s1", At: time.Now()}))
}
