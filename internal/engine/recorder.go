package engine

import (
	"errors"
	"time"

	"github.com/talgya/market-sim/internal/economy"
)

// Event categories.
const (
	CategorySession  = "session"
	CategoryMode     = "mode"
	CategoryRegistry = "registry"
	CategoryEconomy  = "economy"
)

// Event is a notable occurrence during a session.
type Event struct {
	SessionID   string    `json:"session_id"`
	Frame       uint64    `json:"frame"`
	Tick        int       `json:"tick"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Snapshot is a read-only copy of game state handed to renderers and
// recorders. Mutating it never affects the game.
type Snapshot struct {
	Mode      Mode            `json:"mode"`
	Time      int             `json:"time"`
	Frame     uint64          `json:"frame"`
	SessionID string          `json:"session_id"`
	Goods     []economy.Entry `json:"goods"`
	LandSizes []string        `json:"land_sizes"`
	People    int             `json:"people"`
}

// Recorder observes a running game. Errors are logged by the game and never
// interrupt play.
type Recorder interface {
	RecordEvent(e Event) error
	RecordTick(s Snapshot) error
}

// Recorders fans out to several recorders.
type Recorders []Recorder

// RecordEvent passes e to every recorder and joins their errors.
func (rs Recorders) RecordEvent(e Event) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordEvent(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordTick passes s to every recorder and joins their errors.
func (rs Recorders) RecordTick(s Snapshot) error {
	var errs []error
	for _, r := range rs {
		if err := r.RecordTick(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
