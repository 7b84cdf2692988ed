package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Settings are process-level knobs read from the environment rather than
// from lychee.yaml. They tune how this invocation behaves, not what the
// workspace contains.
type Settings struct {
	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `env:"LYCHEE_LOG_LEVEL" envDefault:"info"`

	// StopTimeout bounds the graceful-termination wait before a process
	// tree is force-killed.
	StopTimeout time.Duration `env:"LYCHEE_STOP_TIMEOUT" envDefault:"10s"`
}

// LoadSettings parses Settings from the current process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	return s, nil
}
