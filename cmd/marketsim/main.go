// Command marketsim runs the market simulation in a terminal.
// Type a key and press Enter; the loop picks up at most one key per frame.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"unicode"

	"github.com/talgya/market-sim/internal/config"
	"github.com/talgya/market-sim/internal/engine"
	"github.com/talgya/market-sim/internal/persistence"
	"github.com/talgya/market-sim/internal/render"
)

func main() {
	if err := run(); err != nil {
		slog.Error("marketsim failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred closes happen on all exit paths.
func run() error {
	// ── Configuration ─────────────────────────────────────────────────
	cfg := config.Default()
	if path := os.Getenv("MARKETSIM_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg)

	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// Logs go to stderr so they do not interleave with the screen.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	opts, err := cfg.Options()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	keymap, err := cfg.Keys()
	if err != nil {
		return fmt.Errorf("invalid keymap: %w", err)
	}

	slog.Info("Market Stimulator",
		"period_ms", opts.PeriodMs,
		"frame_interval", cfg.FrameInterval(),
		"policy", opts.Policy.String(),
		"starter_goods", opts.StarterGoods,
	)

	// ── Recorders ─────────────────────────────────────────────────────
	recorders, closeRecorders, err := openRecorders(cfg)
	if err != nil {
		return err
	}
	defer closeRecorders()

	// ── Game ──────────────────────────────────────────────────────────
	game := engine.NewGame(opts)
	if len(recorders) > 0 {
		game.Recorder = recorders
	}

	keys := make(chan rune, 16)
	go readKeys(os.Stdin, keys)

	screen := bufio.NewWriter(os.Stdout)
	var shown engine.Snapshot
	first := true

	loop := engine.NewLoop(cfg.FrameInterval(), func(elapsedMs float64) bool {
		var r rune
		select {
		case r = <-keys:
		default:
		}

		game.Dispatch(keymap.Lookup(game.Mode(), r), elapsedMs)

		snap := game.Snapshot()
		if first || r != 0 || changed(shown, snap) {
			first = false
			shown = snap
			if err := render.Write(screen, snap); err == nil {
				fmt.Fprintln(screen)
				screen.Flush()
			}
		}
		return game.Quitting()
	})

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop.Run(ctx)

	if ctx.Err() != nil {
		slog.Info("received signal, shutting down")
	}
	fmt.Println("Market closed.")
	return nil
}

// openJournal is swapped in tests to observe the journal's lifetime.
var openJournal = persistence.Open

// openRecorders opens the journal and trace named by cfg. The returned close
// func releases whatever was opened; on error, anything already opened is
// closed before returning.
func openRecorders(cfg config.Config) (engine.Recorders, func(), error) {
	var (
		recorders engine.Recorders
		closers   []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.JournalDSN != "" {
		db, err := openJournal(cfg.JournalDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal %s: %w", cfg.JournalDSN, err)
		}
		closers = append(closers, func() {
			db.LogSummary()
			if err := db.Close(); err != nil {
				slog.Error("journal close failed", "error", err)
			}
		})
		recorders = append(recorders, db)
		slog.Info("journal opened", "dsn", cfg.JournalDSN)
	}

	if cfg.TracePath != "" {
		trace, err := persistence.CreateTrace(cfg.TracePath)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("create trace %s: %w", cfg.TracePath, err)
		}
		closers = append(closers, func() {
			if err := trace.Close(); err != nil {
				slog.Error("trace close failed", "error", err)
			}
		})
		recorders = append(recorders, trace)
		slog.Info("trace enabled", "path", cfg.TracePath)
	}

	return recorders, closeAll, nil
}

// readKeys forwards non-space runes from r. It stops at EOF, after which
// only signals end the program.
func readKeys(r io.Reader, out chan<- rune) {
	br := bufio.NewReader(r)
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			if err != io.EOF {
				slog.Error("read input", "error", err)
			}
			return
		}
		if unicode.IsSpace(c) {
			continue
		}
		out <- c
	}
}

// changed reports whether anything a viewer would notice differs.
func changed(a, b engine.Snapshot) bool {
	return a.Mode != b.Mode || a.Time != b.Time ||
		len(a.LandSizes) != len(b.LandSizes) || a.People != b.People
}
