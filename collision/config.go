package collision

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BackendMode selects which broad-phase backend the dispatcher runs.
type BackendMode int

const (
	BackendAuto BackendMode = iota // batch when parallel lanes exist, else sequential
	BackendSequential
	BackendBatch
)

func (m BackendMode) String() string {
	switch m {
	case BackendAuto:
		return "auto"
	case BackendSequential:
		return "sequential"
	case BackendBatch:
		return "batch"
	}
	return fmt.Sprintf("BackendMode(%d)", int(m))
}

// ParseBackendMode parses "auto", "sequential" or "batch".
func ParseBackendMode(s string) (BackendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "sequential", "cpu":
		return BackendSequential, nil
	case "batch", "parallel":
		return BackendBatch, nil
	}
	return BackendAuto, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler
func (m BackendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *BackendMode) UnmarshalText(b []byte) error {
	v, err := ParseBackendMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

const (
	DefaultMaxProjectiles         = 4096
	DefaultMaxReceivers           = 64
	DefaultMaxGlobalCollisions    = 1024
	DefaultMaxShapesPerProjectile = 4
)

// Config holds the dispatcher's capacities and backend selection.
// It is read when the dispatcher is created or reconfigured, never per tick.
type Config struct {
	MaxProjectiles             int         `yaml:"max_projectiles"`
	MaxReceivers               int         `yaml:"max_receivers"`
	MaxGlobalCollisionsPerTick int         `yaml:"max_global_collisions_per_tick"`
	MaxShapesPerProjectile     int         `yaml:"max_shapes_per_projectile"`
	Backend                    BackendMode `yaml:"backend"`
	// Workers is the number of parallel lanes for the batch backend.
	// 0 uses runtime.GOMAXPROCS.
	Workers int      `yaml:"workers"`
	Tags    []string `yaml:"tags"`
}

// DefaultConfig returns a Config suitable for a single-screen shooter
func DefaultConfig() Config {
	return Config{
		MaxProjectiles:             DefaultMaxProjectiles,
		MaxReceivers:               DefaultMaxReceivers,
		MaxGlobalCollisionsPerTick: DefaultMaxGlobalCollisions,
		MaxShapesPerProjectile:     DefaultMaxShapesPerProjectile,
		Backend:                    BackendAuto,
		Tags:                       []string{"player", "enemy"},
	}
}

// Validate checks capacities and the tag table.
func (c Config) Validate() error {
	if c.MaxProjectiles <= 0 {
		return fmt.Errorf("%w: max_projectiles must be positive, got %d", ErrInvalidConfig, c.MaxProjectiles)
	}
	if c.MaxReceivers <= 0 {
		return fmt.Errorf("%w: max_receivers must be positive, got %d", ErrInvalidConfig, c.MaxReceivers)
	}
	if c.MaxGlobalCollisionsPerTick <= 0 {
		return fmt.Errorf("%w: max_global_collisions_per_tick must be positive, got %d", ErrInvalidConfig, c.MaxGlobalCollisionsPerTick)
	}
	if c.MaxShapesPerProjectile <= 0 {
		return fmt.Errorf("%w: max_shapes_per_projectile must be positive, got %d", ErrInvalidConfig, c.MaxShapesPerProjectile)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Backend < BackendAuto || c.Backend > BackendBatch {
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidConfig, int(c.Backend))
	}
	if len(c.Tags) > MaxTags {
		return fmt.Errorf("%w: at most %d tag names, got %d", ErrInvalidConfig, MaxTags, len(c.Tags))
	}
	seen := make(map[string]int, len(c.Tags))
	for i, name := range c.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if j, dup := seen[name]; dup {
			return fmt.Errorf("%w: tag %q used for both %d and %d", ErrInvalidConfig, name, j, i)
		}
		seen[name] = i
	}
	return nil
}

// TagNames returns the configured tag name table.
func (c Config) TagNames() TagNames {
	return NewTagNames(c.Tags)
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read collision config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse collision config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
