// Game ties the ledger, registry and clock together under the mode state machine.

package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/market-sim/internal/agents"
	"github.com/talgya/market-sim/internal/economy"
	"github.com/talgya/market-sim/internal/world"
)

// Options configures a Game.
type Options struct {
	PeriodMs      float64        // Real milliseconds per displayed tick
	StarterGoods  []string       // Goods listed at zero on every restart
	Policy        economy.Policy // How over-consumption is resolved
	DefaultLand   world.Land     // Parcel appended by KeyAddLand
	DefaultPerson agents.Person  // Person appended by KeyAddPerson
}

// DefaultOptions returns the stock game settings.
func DefaultOptions() Options {
	return Options{
		PeriodMs:      DefaultPeriodMs,
		StarterGoods:  append([]string(nil), economy.StarterGoods...),
		Policy:        economy.PolicyClamp,
		DefaultLand:   world.NewLand(10, world.LandGrassland, 5),
		DefaultPerson: agents.NewPerson(5, agents.PersonFarmer),
	}
}

// Game is the top-level state machine. It owns the market ledger, the
// entity registry and the clock for the whole process and resets them, never
// replacing them, whenever a new session starts.
type Game struct {
	mode Mode
	quit bool
	opts Options

	ledger   *economy.Ledger
	registry *Registry
	clock    *Clock

	sessionID string
	frame     uint64          // Playing frames in this session
	last      StepReport      // Most recent economy step
	exhausted map[string]bool // Goods currently short

	// Recorder, if set, is told about session events and each displayed tick.
	Recorder Recorder

	// EndCondition, if set, is checked after every Playing frame and moves the
	// game to End when it returns true. Nothing sets it by default; a famine
	// or bankruptcy rule would plug in here.
	EndCondition func(Snapshot) bool

	newID func() string
	now   func() time.Time
}

// NewGame creates a game sitting in the menu.
func NewGame(opts Options) *Game {
	return &Game{
		mode:      ModeMenu,
		opts:      opts,
		ledger:    economy.NewLedger(opts.StarterGoods...),
		registry:  NewRegistry(opts.Policy),
		clock:     NewClock(opts.PeriodMs),
		exhausted: make(map[string]bool),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// binding is one row of the transition table.
type binding struct {
	mode Mode
	key  Key
}

// actions is the transition table. A (mode, key) pair missing here is ignored.
var actions = map[binding]func(*Game){
	{ModeMenu, KeyPlay}:          (*Game).restart,
	{ModeMenu, KeyQuit}:          (*Game).requestQuit,
	{ModePlaying, KeyBackToMenu}: (*Game).backToMenu,
	{ModePlaying, KeyQuit}:       (*Game).requestQuit,
	{ModePlaying, KeyAddLand}:    (*Game).addLand,
	{ModePlaying, KeyAddPerson}:  (*Game).addPerson,
	{ModeEnd, KeyPlay}:           (*Game).restart,
	{ModeEnd, KeyQuit}:           (*Game).requestQuit,
}

// handlers holds the one per-frame handler of each mode.
var handlers = map[Mode]func(*Game, Key, float64){
	ModeMenu:    (*Game).menuFrame,
	ModePlaying: (*Game).playFrame,
	ModeEnd:     (*Game).endFrame,
}

// Dispatch runs one frame. Exactly one handler runs, chosen by the mode the
// game is in when the frame starts. elapsedMs is the real time since the
// previous frame. Once quit has been requested, Dispatch does nothing.
func (g *Game) Dispatch(key Key, elapsedMs float64) {
	if g.quit {
		return
	}
	handler, ok := handlers[g.mode]
	if !ok {
		panic(fmt.Errorf("%w: no handler for %s", ErrInvalidTransition, g.mode))
	}
	handler(g, key, elapsedMs)
}

// Mode returns the current mode.
func (g *Game) Mode() Mode { return g.mode }

// Quitting reports whether quit was requested. The host stops after the
// current frame.
func (g *Game) Quitting() bool { return g.quit }

// SessionID returns the current session's ID, empty before the first Play.
func (g *Game) SessionID() string { return g.sessionID }

// LastStep returns the report of the most recent economy step.
func (g *Game) LastStep() StepReport { return g.last }

// Snapshot returns a detached copy of the state a renderer shows.
func (g *Game) Snapshot() Snapshot {
	sizes := make([]string, 0, g.registry.LandCount())
	for _, l := range g.registry.lands {
		sizes = append(sizes, l.SizeLabel())
	}
	return Snapshot{
		Mode:      g.mode,
		Time:      g.clock.Tick,
		Frame:     g.frame,
		SessionID: g.sessionID,
		Goods:     g.ledger.Entries(),
		LandSizes: sizes,
		People:    g.registry.PeopleCount(),
	}
}

func (g *Game) menuFrame(key Key, _ float64) {
	g.handleKey(key)
}

func (g *Game) endFrame(key Key, _ float64) {
	g.handleKey(key)
}

// playFrame applies the key, then runs the economy: production, consumption,
// clock. A key that leaves Playing or quits ends the frame before the economy runs.
func (g *Game) playFrame(key Key, elapsedMs float64) {
	g.handleKey(key)
	if g.mode != ModePlaying || g.quit {
		return
	}

	g.frame++
	g.last = g.registry.Step(g.ledger)
	g.noteShortages(g.last)

	if g.clock.Advance(elapsedMs) > 0 {
		g.recordTick()
	}

	if g.EndCondition != nil && g.EndCondition(g.Snapshot()) {
		g.transition(ModeEnd)
	}
}

func (g *Game) handleKey(key Key) {
	if act, ok := actions[binding{g.mode, key}]; ok {
		act(g)
	}
}

// transition changes mode along a defined edge. Any other change is a bug.
func (g *Game) transition(to Mode) {
	from := g.mode
	if !allowed(from, to) {
		panic(fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to))
	}
	g.mode = to
	slog.Info("mode changed", "from", from.String(), "to", to.String(), "session", g.sessionID)
	g.record(CategoryMode, fmt.Sprintf("%s -> %s", from, to))
}

// restart begins a fresh session: clock, registry and ledger are all reset.
func (g *Game) restart() {
	g.sessionID = g.newID()
	g.frame = 0
	g.last = StepReport{}
	g.exhausted = make(map[string]bool)
	g.clock.Reset()
	g.registry.Clear()
	g.ledger.Restart()

	slog.Info("session started", "session", g.sessionID, "policy", g.opts.Policy.String())
	g.record(CategorySession, "session started")
	g.transition(ModePlaying)
}

func (g *Game) backToMenu() {
	g.transition(ModeMenu)
	g.clock.Reset()
}

func (g *Game) requestQuit() {
	g.quit = true
	slog.Info("quit requested", "mode", g.mode.String(), "session", g.sessionID)
	g.record(CategorySession, "quit requested")
}

func (g *Game) addLand() {
	l := g.opts.DefaultLand
	g.registry.AddLand(l)
	slog.Debug("land added", "size", l.Size, "kind", l.Kind.String(), "lands", g.registry.LandCount())
	g.record(CategoryRegistry, fmt.Sprintf("%s land of size %d added", l.Kind, l.Size))
}

func (g *Game) addPerson() {
	p := g.opts.DefaultPerson
	g.registry.AddPerson(p)
	slog.Debug("person added", "role", p.Role.String(), "people", g.registry.PeopleCount())
	g.record(CategoryRegistry, fmt.Sprintf("%s of capacity %d added", p.Role, p.Capacity))
}

// noteShortages reports a good when it first runs short and again when a
// frame passes without shortage, rather than on every frame in between.
func (g *Game) noteShortages(report StepReport) {
	short := make(map[string]uint64)
	for _, s := range report.Shortages {
		short[s.Good] += s.Shortfall
	}

	for _, good := range sortedGoods(short) {
		if g.exhausted[good] {
			continue
		}
		g.exhausted[good] = true
		slog.Warn("supply exhausted", "good", good, "shortfall", short[good], "frame", g.frame)
		g.record(CategoryEconomy, fmt.Sprintf("%s supply exhausted, short %d", good, short[good]))
	}

	for _, good := range sortedGoods(g.exhausted) {
		if _, ok := short[good]; ok {
			continue
		}
		delete(g.exhausted, good)
		slog.Info("supply restored", "good", good, "frame", g.frame)
		g.record(CategoryEconomy, fmt.Sprintf("%s supply restored", good))
	}
}

func (g *Game) record(category, description string) {
	if g.Recorder == nil {
		return
	}
	e := Event{
		SessionID:   g.sessionID,
		Frame:       g.frame,
		Tick:        g.clock.Tick,
		Category:    category,
		Description: description,
		At:          g.now(),
	}
	if err := g.Recorder.RecordEvent(e); err != nil {
		slog.Error("record event failed", "category", category, "error", err)
	}
}

func (g *Game) recordTick() {
	if g.Recorder == nil {
		return
	}
	if err := g.Recorder.RecordTick(g.Snapshot()); err != nil {
		slog.Error("record tick failed", "tick", g.clock.Tick, "error", err)
	}
}

func sortedGoods[V any](m map[string]V) []string {
	goods := make([]string, 0, len(m))
	for good := range m {
		goods = append(goods, good)
	}
	sort.Strings(goods)
	return goods
}
