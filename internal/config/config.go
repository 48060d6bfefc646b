// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/okian/etude/internal/domain/difficulty"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /hardest?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// SnapshotIntervalMS sets how often the ranking snapshot is rebuilt.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// InstrumentWeights replaces the weight table of a category,
	// e.g. keyboard: {speed: 3, chord_span: 2}.
	InstrumentWeights map[string]map[string]float64 `koanf:"instrument_weights"`

	// DensityFloors overrides the minimum note density used as a speed fallback.
	DensityFloors map[string]float64 `koanf:"density_floors"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         100_000,
		MaxListLimit:       100,
		SnapshotIntervalMS: 500,
	}
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks value ranges and that the policy overrides are well formed.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !logLevels[strings.ToLower(c.LogLevel)]:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxListLimit <= 0:
		return fmt.Errorf("%w: max_list_limit must be positive", ErrInvalidConfig)
	case c.SnapshotIntervalMS <= 0:
		return fmt.Errorf("%w: snapshot_interval_ms must be positive", ErrInvalidConfig)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the difficulty policy from the configured overrides.
func (c *Config) Policy() (*difficulty.Policy, error) {
	var opts []difficulty.PolicyOption

	categories := make([]string, 0, len(c.InstrumentWeights))
	for name := range c.InstrumentWeights {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		inst, err := difficulty.ParseInstrument(name)
		if err != nil {
			return nil, fmt.Errorf("%w: instrument_weights: %w", ErrInvalidConfig, err)
		}
		table := make(map[difficulty.Metric]float64, len(c.InstrumentWeights[name]))
		for metric, w := range c.InstrumentWeights[name] {
			m, err := difficulty.ParseMetric(metric)
			if err != nil {
				return nil, fmt.Errorf("%w: instrument_weights.%s: %w", ErrInvalidConfig, name, err)
			}
			table[m] = w
		}
		opts = append(opts, difficulty.WithWeights(inst, table))
	}

	for name, floor := range c.DensityFloors {
		inst, err := difficulty.ParseInstrument(name)
		if err != nil {
			return nil, fmt.Errorf("%w: density_floors: %w", ErrInvalidConfig, err)
		}
		opts = append(opts, difficulty.WithDensityFloor(inst, floor))
	}

	p, err := difficulty.NewPolicy(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}
