package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition marks a mode change that the transition table does
// not define. Reaching it is a programming error.
var ErrInvalidTransition = errors.New("invalid mode transition")

// Mode is the exclusive phase of the game.
type Mode uint8

const (
	ModeMenu Mode = iota
	ModePlaying
	ModeEnd
)

var modeNames = [...]string{
	ModeMenu:    "menu",
	ModePlaying: "playing",
	ModeEnd:     "end",
}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// MarshalText renders the mode by name in JSON output.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// edges lists every mode change the game may make. Playing -> End exists only
// for Game.EndCondition.
var edges = map[Mode][]Mode{
	ModeMenu:    {ModePlaying},
	ModePlaying: {ModeMenu, ModeEnd},
	ModeEnd:     {ModePlaying},
}

func allowed(from, to Mode) bool {
	for _, m := range edges[from] {
		if m == to {
			return true
		}
	}
	return false
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	for i, name := range modeNames {
		if name == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", b)
}
