// Package config loads the pipeline configuration. Every knob has a default
// matching production behavior; a YAML file can override any subset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// Windowing controls the window generator and the parallel executor.
type Windowing struct {
	DefaultDurationSec float64                   `yaml:"defaultDurationSec"`
	OverlapSec         float64                   `yaml:"overlapSec"`
	FpsBySegment       map[model.SegmentType]int `yaml:"fpsBySegment"`
	Parallelism        int                       `yaml:"parallelism"`
	SkipStoppages      bool                      `yaml:"skipStoppages"`
	MaxWindowsPerSeg   int                       `yaml:"maxWindowsPerSegment"`
}

// Dedup controls temporal clustering of raw events.
type Dedup struct {
	TimeThreshold               float64 `yaml:"timeThreshold"`
	ConfidenceBoostPerDetection float64 `yaml:"confidenceBoostPerDetection"`
}

// Matcher controls clip-event matching.
type Matcher struct {
	Tolerance float64 `yaml:"tolerance"`
}

// Retry controls analyzer call retries.
type Retry struct {
	MaxRetries     int `yaml:"maxRetries"`
	InitialDelayMs int `yaml:"initialDelayMs"`
	MaxDelayMs     int `yaml:"maxDelayMs"`
	TimeoutMs      int `yaml:"timeoutMs"`
}

// Config is the full recognized knob set.
type Config struct {
	Windowing Windowing `yaml:"windowing"`
	Dedup     Dedup     `yaml:"dedup"`
	Matcher   Matcher   `yaml:"matcher"`
	Retry     Retry     `yaml:"retry"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		Windowing: Windowing{
			DefaultDurationSec: 60,
			OverlapSec:         15,
			FpsBySegment: map[model.SegmentType]int{
				model.SegmentActivePlay: 3,
				model.SegmentSetPiece:   2,
				model.SegmentGoalMoment: 5,
				model.SegmentStoppage:   1,
			},
			Parallelism:      5,
			SkipStoppages:    true,
			MaxWindowsPerSeg: 100,
		},
		Dedup: Dedup{
			TimeThreshold:               2.0,
			ConfidenceBoostPerDetection: 0.1,
		},
		Matcher: Matcher{Tolerance: 2.0},
		Retry: Retry{
			MaxRetries:     3,
			InitialDelayMs: 2000,
			MaxDelayMs:     30000,
			TimeoutMs:      180000,
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Windowing.Parallelism <= 0 {
		cfg.Windowing.Parallelism = 1
	}
	if cfg.Windowing.MaxWindowsPerSeg <= 0 {
		cfg.Windowing.MaxWindowsPerSeg = 100
	}
	return cfg, nil
}
