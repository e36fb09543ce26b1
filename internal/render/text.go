// Package render draws game snapshots as plain text for a terminal host.
// It only reads snapshots; it never touches game state.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/market-sim/internal/engine"
)

// Text returns the screen for a snapshot.
func Text(s engine.Snapshot) string {
	var b strings.Builder
	switch s.Mode {
	case engine.ModeMenu:
		b.WriteString("Welcome to Market Stimulator\n")
		b.WriteString("(P) Play\n(Q) Quit\n")
	case engine.ModeEnd:
		b.WriteString("GAME OVER\n")
		b.WriteString("(P) Play\n(Q) Quit\n")
	default:
		fmt.Fprintf(&b, "Time: %d\n", s.Time)
		b.WriteString("(M) Back to Menu  (Q) Quit  (L) Add land  (P) Add person\n")
		b.WriteString("Worldmarket:\n")
		for _, e := range s.Goods {
			fmt.Fprintf(&b, "  %s: %s\n", e.Good, quantity(e.Quantity))
		}
		b.WriteString("Worldlands:\n")
		for _, size := range s.LandSizes {
			fmt.Fprintf(&b, "  %s\n", size)
		}
		fmt.Fprintf(&b, "People: %s\n", humanize.Comma(int64(s.People)))
	}
	return b.String()
}

// Write renders a snapshot to w.
func Write(w io.Writer, s engine.Snapshot) error {
	_, err := io.WriteString(w, Text(s))
	return err
}

func quantity(q uint64) string {
	if q > math.MaxInt64 {
		return humanize.Comma(math.MaxInt64) + "+"
	}
	return humanize.Comma(int64(q))
}
