package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from BITSWITCH_* variables
type Config struct {
	MaxBits      int      `env:"MAX_BITS" envDefault:"8"`
	MaxHealth    int      `env:"MAX_HEALTH" envDefault:"3"`
	InitialLevel int      `env:"INITIAL_LEVEL" envDefault:"1"`
	LevelFile    string   `env:"LEVEL_FILE"`
	LogFile      string   `env:"LOG_FILE" envDefault:"bitswitch.log"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	Audio        bool     `env:"AUDIO" envDefault:"true"`
	Keys         string   `env:"KEYS" envDefault:"1234567890abcdef"`
	TraceEvents  []string `env:"TRACE_EVENTS" envSeparator:","`
}

// Prefix applied to every variable name
const Prefix = "BITSWITCH_"

// Parse loads configuration from environment variables
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
