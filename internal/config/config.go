package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds service settings loaded from YAML with env overrides.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Graph    GraphConfig    `yaml:"graph"`
	Listen   string         `yaml:"listen"`
}

// SnapshotConfig describes where the universe snapshot lives and how to
// read it.
type SnapshotConfig struct {
	// Driver selects the row source: "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file (sqlite driver).
	Path string `yaml:"path"`
	// DSN is the connection string (postgres driver).
	DSN string `yaml:"dsn"`
	// RowPolicy is "fail-fast" (default) or "skip-and-report".
	RowPolicy string `yaml:"row_policy"`
}

// GraphConfig tunes how the universe graph is built.
type GraphConfig struct {
	// Directed inserts connections exactly as stored. When false (the
	// default) every connection without a one-way flag is mirrored.
	Directed bool `yaml:"directed"`
	// Factor divides raw snapshot coordinates, which are stored in
	// meters and far too large to render directly.
	Factor float64 `yaml:"factor"`
	// InvertCoordinates flips the sign of all coordinates, matching the
	// snapshot's inverted axis convention.
	InvertCoordinates bool `yaml:"invert_coordinates"`
	// GridCellSize is the spatial index cell edge length, in scaled
	// coordinate units.
	GridCellSize float64 `yaml:"grid_cell_size"`
	// PathCacheSize bounds the shortest-path result cache.
	PathCacheSize int `yaml:"path_cache_size"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Driver:    "sqlite",
			Path:      "data/universe.db",
			RowPolicy: "fail-fast",
		},
		Graph: GraphConfig{
			Directed:          false,
			Factor:            1e14,
			InvertCoordinates: true,
			GridCellSize:      5.0,
			PathCacheSize:     4096,
		},
		Listen: "127.0.0.1:13780",
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No file is fine; defaults plus env cover the common case.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STARMAP_SNAPSHOT_DRIVER"); v != "" {
		c.Snapshot.Driver = v
	}
	if v := os.Getenv("STARMAP_SNAPSHOT_PATH"); v != "" {
		c.Snapshot.Path = v
	}
	if v := os.Getenv("STARMAP_SNAPSHOT_DSN"); v != "" {
		c.Snapshot.DSN = v
	}
	if v := os.Getenv("STARMAP_LISTEN"); v != "" {
		c.Listen = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Snapshot.Driver) {
	case "sqlite":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Snapshot.DSN == "" {
			return fmt.Errorf("snapshot.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported snapshot driver: %q", c.Snapshot.Driver)
	}

	switch c.Snapshot.RowPolicy {
	case "", "fail-fast", "skip-and-report":
	default:
		return fmt.Errorf("unsupported row_policy: %q", c.Snapshot.RowPolicy)
	}

	if c.Graph.Factor <= 0 {
		return fmt.Errorf("graph.factor must be positive, got %g", c.Graph.Factor)
	}
	if c.Graph.GridCellSize <= 0 {
		return fmt.Errorf("graph.grid_cell_size must be positive, got %g", c.Graph.GridCellSize)
	}
	if c.Graph.PathCacheSize <= 0 {
		return fmt.Errorf("graph.path_cache_size must be positive, got %d", c.Graph.PathCacheSize)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

// SkipAndReport reports whether the skip-and-report row policy is active.
func (c *SnapshotConfig) SkipAndReport() bool {
	return c.RowPolicy == "skip-and-report"
}
