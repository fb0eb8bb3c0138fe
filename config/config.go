package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Defaults for the protocol knobs. PayloadSize is capped by the radio frame
// size; CommandWait doubles as the tick length on the receive path.
const (
	DefaultPayloadSize = 32
	DefaultCommandWait = 500 // ms
	DefaultSettle      = 500 // ms
	DefaultFailLimit   = 100
	DefaultLogLines    = 1000
)

type Config struct {
	PayloadSize   int    `json:"payload_size"`
	CommandWaitMs int    `json:"command_wait_ms"`
	SettleMs      int    `json:"settle_ms"`
	FailLimit     int    `json:"fail_limit"`
	LogLines      int    `json:"log_lines"`
	LogsDir       string `json:"logs_dir"`
	RecentDir     string `json:"recent_dir"`
}

var (
	defaultConfig *Config
	once          sync.Once
)

func Default() *Config {
	return &Config{
		PayloadSize:   DefaultPayloadSize,
		CommandWaitMs: DefaultCommandWait,
		SettleMs:      DefaultSettle,
		FailLimit:     DefaultFailLimit,
		LogLines:      DefaultLogLines,
		LogsDir:       "logs",
		RecentDir:     "recent",
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"enlil.json",
			".enlil.json",
			filepath.Join(os.Getenv("HOME"), ".config", "enlil", "config.json"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}

		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	return cfg, nil
}

// normalize re-applies defaults for zero or out-of-range values. The payload
// size is clamped rather than rejected so a bad config still boots a usable
// bench.
func (c *Config) normalize() {
	if c.PayloadSize < 1 || c.PayloadSize > 32 {
		c.PayloadSize = DefaultPayloadSize
	}
	if c.CommandWaitMs <= 0 {
		c.CommandWaitMs = DefaultCommandWait
	}
	if c.SettleMs < 0 {
		c.SettleMs = DefaultSettle
	}
	if c.FailLimit <= 0 {
		c.FailLimit = DefaultFailLimit
	}
	if c.LogLines <= 0 {
		c.LogLines = DefaultLogLines
	}
	if c.LogsDir == "" {
		c.LogsDir = "logs"
	}
	if c.RecentDir == "" {
		c.RecentDir = "recent"
	}
}

// LoadDefault loads the config once and caches it
func LoadDefault() (*Config, error) {
	var err error
	once.Do(func() {
		defaultConfig, err = Load("")
	})
	if err != nil {
		return Default(), err
	}
	return defaultConfig, nil
}
