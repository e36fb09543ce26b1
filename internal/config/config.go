// Package config loads game settings from YAML with environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/talgya/market-sim/internal/agents"
	"github.com/talgya/market-sim/internal/economy"
	"github.com/talgya/market-sim/internal/engine"
	"github.com/talgya/market-sim/internal/world"
)

// Config is the on-disk game configuration.
type Config struct {
	PeriodMs        float64      `yaml:"period_ms"`
	FrameIntervalMs int          `yaml:"frame_interval_ms"`
	StarterGoods    []string     `yaml:"starter_goods"`
	Ledger          LedgerConfig `yaml:"ledger"`
	DefaultLand     LandConfig   `yaml:"default_land"`
	DefaultPerson   PersonConfig `yaml:"default_person"`
	Keymap          KeymapConfig `yaml:"keymap"`
	JournalDSN      string       `yaml:"journal_dsn"` // Empty disables the journal
	TracePath       string       `yaml:"trace_path"`  // Empty disables the trace
	LogLevel        string       `yaml:"log_level"`
}

// LedgerConfig selects how the market handles demand it cannot meet.
type LedgerConfig struct {
	Policy string `yaml:"policy"` // clamp | strict
}

// LandConfig describes the land added by the add-land key.
type LandConfig struct {
	Size      uint32 `yaml:"size"`
	Kind      string `yaml:"kind"`
	YieldRate uint32 `yaml:"yield_rate"`
}

// PersonConfig describes the person added by the add-person key.
type PersonConfig struct {
	Capacity uint32 `yaml:"capacity"`
	Role     string `yaml:"role"`
}

// KeymapConfig overrides key bindings: mode name -> letter -> key name.
type KeymapConfig map[string]map[string]string

// Default returns the stock configuration.
func Default() Config {
	return Config{
		PeriodMs:        engine.DefaultPeriodMs,
		FrameIntervalMs: int(engine.DefaultFrameInterval / time.Millisecond),
		StarterGoods:    append([]string(nil), economy.StarterGoods...),
		Ledger:          LedgerConfig{Policy: economy.PolicyClamp.String()},
		DefaultLand:     LandConfig{Size: 10, Kind: world.LandGrassland.String(), YieldRate: 5},
		DefaultPerson:   PersonConfig{Capacity: 5, Role: agents.PersonFarmer.String()},
		JournalDSN:      ":memory:",
		LogLevel:        "info",
	}
}

// Load reads a YAML file over the defaults. Fields the file omits keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the configuration into game options.
func (c Config) Options() (engine.Options, error) {
	opts := engine.DefaultOptions()
	opts.PeriodMs = c.PeriodMs
	if !(c.PeriodMs >= engine.MinPeriodMs) || math.IsInf(c.PeriodMs, 0) {
		return opts, fmt.Errorf("period_ms must be at least %v, got %v", engine.MinPeriodMs, c.PeriodMs)
	}
	if len(c.StarterGoods) == 0 {
		return opts, fmt.Errorf("starter_goods must list at least one good")
	}
	opts.StarterGoods = append([]string(nil), c.StarterGoods...)

	policy, ok := economy.ParsePolicy(c.Ledger.Policy)
	if !ok {
		return opts, fmt.Errorf("ledger.policy: unknown policy %q", c.Ledger.Policy)
	}
	opts.Policy = policy

	kind, ok := world.ParseLandType(c.DefaultLand.Kind)
	if !ok {
		return opts, fmt.Errorf("default_land.kind: unknown land kind %q", c.DefaultLand.Kind)
	}
	opts.DefaultLand = world.NewLand(c.DefaultLand.Size, kind, c.DefaultLand.YieldRate)

	role, ok := agents.ParsePersonType(c.DefaultPerson.Role)
	if !ok {
		return opts, fmt.Errorf("default_person.role: unknown role %q", c.DefaultPerson.Role)
	}
	opts.DefaultPerson = agents.NewPerson(c.DefaultPerson.Capacity, role)

	return opts, nil
}

// Keys returns the default keymap with this configuration's overrides bound.
func (c Config) Keys() (engine.Keymap, error) {
	km := engine.DefaultKeymap()
	for modeName, binds := range c.Keymap {
		var mode engine.Mode
		if err := mode.UnmarshalText([]byte(modeName)); err != nil {
			return nil, fmt.Errorf("keymap: %w", err)
		}
		for letter, keyName := range binds {
			if utf8.RuneCountInString(letter) != 1 {
				return nil, fmt.Errorf("keymap.%s: %q is not a single key", modeName, letter)
			}
			key, ok := engine.ParseKey(keyName)
			if !ok {
				return nil, fmt.Errorf("keymap.%s.%s: unknown key %q", modeName, letter, keyName)
			}
			r, _ := utf8.DecodeRuneInString(letter)
			km.Bind(mode, r, key)
		}
	}
	return km, nil
}

// FrameInterval returns the host loop pacing.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// Level returns the configured slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
