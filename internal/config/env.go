package config

import (
	"os"
	"strconv"
)

// ApplyEnv overrides configuration from MARKETSIM_* environment variables.
// Unset or malformed numeric variables leave the value alone.
func ApplyEnv(cfg Config) Config {
	if val := getEnvFloat("MARKETSIM_PERIOD_MS"); val > 0 {
		cfg.PeriodMs = val
	}
	if val := getEnvInt("MARKETSIM_FRAME_INTERVAL_MS"); val > 0 {
		cfg.FrameIntervalMs = val
	}
	if val := os.Getenv("MARKETSIM_LEDGER_POLICY"); val != "" {
		cfg.Ledger.Policy = val
	}
	if val, ok := os.LookupEnv("MARKETSIM_JOURNAL_DSN"); ok {
		cfg.JournalDSN = val
	}
	if val, ok := os.LookupEnv("MARKETSIM_TRACE_PATH"); ok {
		cfg.TracePath = val
	}
	if val := os.Getenv("MARKETSIM_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvFloat(key string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return num
}
