package persistence

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/market-sim/internal/economy"
	"github.com/talgya/market-sim/internal/engine"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordEventRegistersSession(t *testing.T) {
	db := openMemory(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordEvent(engine.Event{
		SessionID: "s1", Category: engine.CategorySession, Description: "session started", At: at,
	}))
	require.NoError(t, db.RecordEvent(engine.Event{
		SessionID: "s1", Frame: 3, Tick: 1, Category: engine.CategoryRegistry, Description: "land added", At: at.Add(time.Second),
	}))
	require.NoError(t, db.RecordEvent(engine.Event{
		Category: engine.CategorySession, Description: "quit requested", At: at.Add(2 * time.Second),
	}))

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, at.UnixNano(), sessions[0].StartedAt)
	assert.Equal(t, 2, sessions[0].Events)

	events, err := db.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "quit requested", events[0].Description)
	assert.Equal(t, engine.Event{
		SessionID:   "s1",
		Frame:       3,
		Tick:        1,
		Category:    engine.CategoryRegistry,
		Description: "land added",
		At:          at.Add(time.Second),
	}, events[1])
}

func TestRecordTickStoresLedger(t *testing.T) {
	db := openMemory(t)

	for tick, wheat := range []uint64{0, 5, math.MaxUint64} {
		require.NoError(t, db.RecordTick(engine.Snapshot{
			SessionID: "s1",
			Time:      tick,
			Frame:     uint64(tick * 60),
			Goods: []economy.Entry{
				{Good: economy.GoodApple, Quantity: 1},
				{Good: economy.GoodWheat, Quantity: wheat},
			},
		}))
	}

	history, err := db.LedgerHistory("s1", economy.GoodWheat)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, Sample{SessionID: "s1", Tick: 1, Frame: 60, Good: economy.GoodWheat, Quantity: 5}, history[1])
	assert.Equal(t, uint64(math.MaxInt64), history[2].Quantity)

	other, err := db.LedgerHistory("s2", economy.GoodWheat)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestJournalOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordEvent(engine.Event{SessionID: "s1", Category: "mode", Description: "menu -> playing", At: time.Now()}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGameWritesJournal(t *testing.T) {
	db := openMemory(t)
	g := engine.NewGame(engine.DefaultOptions())
	g.Recorder = db

	g.Dispatch(engine.KeyPlay, 0)
	g.Dispatch(engine.KeyAddLand, 0)
	g.Dispatch(engine.KeyNone, 1000)
	g.Dispatch(engine.KeyNone, 1000)

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, g.SessionID(), sessions[0].ID)

	history, err := db.LedgerHistory(g.SessionID(), economy.GoodWheat)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, uint64(10), history[0].Quantity)
	assert.Equal(t, uint64(15), history[1].Quantity)
	assert.Equal(t, 2, history[1].Tick)
}
