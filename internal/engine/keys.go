package engine

import "unicode"

// Key is a contextual input event, already mapped for the current mode.
type Key uint8

const (
	KeyNone Key = iota
	KeyPlay
	KeyQuit
	KeyBackToMenu
	KeyAddLand
	KeyAddPerson
)

var keyNames = map[Key]string{
	KeyNone:       "none",
	KeyPlay:       "play",
	KeyQuit:       "quit",
	KeyBackToMenu: "back_to_menu",
	KeyAddLand:    "add_land",
	KeyAddPerson:  "add_person",
}

// String returns the key's configuration name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKey returns the key with the given configuration name.
func ParseKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return KeyNone, false
}

// Keymap binds raw key presses to keys, per mode. The same letter can mean
// different things in different modes: P plays from the menu but adds a
// person while playing.
type Keymap map[Mode]map[rune]Key

// DefaultKeymap returns the stock bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		ModeMenu: {'p': KeyPlay, 'q': KeyQuit},
		ModePlaying: {
			'm': KeyBackToMenu,
			'q': KeyQuit,
			'l': KeyAddLand,
			'p': KeyAddPerson,
		},
		ModeEnd: {'p': KeyPlay, 'q': KeyQuit},
	}
}

// Bind maps r to k in the given mode, replacing any earlier binding.
func (km Keymap) Bind(mode Mode, r rune, k Key) {
	if km[mode] == nil {
		km[mode] = make(map[rune]Key)
	}
	km[mode][unicode.ToLower(r)] = k
}

// Lookup returns the key bound to r in mode, or KeyNone. Letters match
// regardless of case; a zero rune means no key was pressed.
func (km Keymap) Lookup(mode Mode, r rune) Key {
	if r == 0 {
		return KeyNone
	}
	if k, ok := km[mode][unicode.ToLower(r)]; ok {
		return k
	}
	return KeyNone
}
