// Package config loads the simulator's configuration: the place-sampling
// probabilities, city footprint sizes, and run-level knobs (seed, minute
// limit, output compression, I/O paths). Config is YAML-backed, loaded once
// at process start, and threaded through construction as an immutable value,
// never read from a package-level global.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Probabilities holds the place-sampling branch probabilities. Branches are
// evaluated in a deliberate order (same_city, capital, major, minor,
// instance, uniform) even though Instance > Major > Minor; that ordering is
// part of the simulated behavior, not a bug.
type Probabilities struct {
	SameCity float64 `yaml:"same_city"` // P_SAME_CITY, default 0.5
	Capital  float64 `yaml:"capital"`   // P_CAPITAL, default 0.2
	Major    float64 `yaml:"major"`     // P_MAJOR_CITY, default 0.15
	Minor    float64 `yaml:"minor"`     // P_MINOR_CITY, default 0.03
	Instance float64 `yaml:"instance"`  // P_INSTANCE, default 0.3
}

// Footprints holds the fixed rectangle sizes (in grid cells, one side) for
// each city type.
type Footprints struct {
	Capital  int `yaml:"capital"`  // default 3 (3x3)
	Major    int `yaml:"major"`    // default 2 (2x2)
	Minor    int `yaml:"minor"`    // default 1 (1x1)
	Instance int `yaml:"instance"` // default 2 (2x2)
}

// ContinentSource points at the input files for a single continent.
type ContinentSource struct {
	Name      string `yaml:"name"`
	Width     int32  `yaml:"width"`
	Height    int32  `yaml:"height"`
	ZonesCSV  string `yaml:"zones_csv"`
	CitiesCSV string `yaml:"cities_csv"`
}

// Config is the full, immutable configuration for a batch run.
type Config struct {
	Probabilities Probabilities `yaml:"probabilities"`
	Footprints    Footprints    `yaml:"footprints"`

	Continents    []ContinentSource `yaml:"continents"`
	AdjacencyPath string            `yaml:"adjacency_path"`
	ScenesDir     string            `yaml:"scenes_dir"`
	OutputDir     string            `yaml:"output_dir"`

	Seed          int64 `yaml:"seed"`
	MinuteLimit   int   `yaml:"minute_limit"`   // 0 = unlimited
	IncludeWrites bool  `yaml:"include_writes"`
	GzipLevel     int   `yaml:"gzip_level"`     // 0 = plain text, else gzip.BestSpeed..BestCompression
	KeepOutput    bool  `yaml:"keep_output"`    // don't empty a scene's output dir before running it
	Workers       int   `yaml:"workers"`        // max scenes running concurrently, default 1

	// RunLogDSN, if set, enables persisting a per-scene run record (start,
	// finish, status) to Postgres via internal/runlog. Optional observability
	// only; never consulted by the deterministic simulation itself.
	RunLogDSN string `yaml:"run_log_dsn"`
}

// Default returns the standard probabilities and footprint sizes, and a
// single worker.
func Default() Config {
	return Config{
		Probabilities: Probabilities{
			SameCity: 0.5,
			Capital:  0.2,
			Major:    0.15,
			Minor:    0.03,
			Instance: 0.3,
		},
		Footprints: Footprints{
			Capital:  3,
			Major:    2,
			Minor:    1,
			Instance: 2,
		},
		ScenesDir: "Scenes",
		OutputDir: "out",
		Workers:   1,
	}
}

// Load reads config from a YAML file, overlaying it onto Default(). If the
// file doesn't exist, the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
