package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"danmaku-server/collision"
	"gopkg.in/yaml.v3"
)

const (
	TagPlayer = "player" // pilot receivers; bullets carry it to target pilots
	TagEnemy  = "enemy"
)

var errInvalidConfig = errors.New("invalid server config")

// PatternKind selects how an emitter fires
type PatternKind string

const (
	PatternRing     PatternKind = "ring"      // evenly spaced, rotating
	PatternAimedFan PatternKind = "aimed_fan" // spread centred on the nearest pilot
	PatternLaser    PatternKind = "laser"     // one long sweeping segment
)

// EmitterConfig describes one bullet emitter placed at session start
type EmitterConfig struct {
	Pattern  PatternKind `yaml:"pattern"`
	X        float64     `yaml:"x"`
	Y        float64     `yaml:"y"`
	Interval float64     `yaml:"interval"` // seconds between volleys
	Count    int         `yaml:"count"`    // bullets per volley
	Spread   float64     `yaml:"spread"`   // radians, aimed fans only
	Speed    float64     `yaml:"speed"`    // pixels/s
	Spin     float64     `yaml:"spin"`     // radians/s added to the base angle
	Radius   float64     `yaml:"radius"`   // orb radius
	Length   float64     `yaml:"length"`   // laser length
	Lifetime float64     `yaml:"lifetime"` // seconds
}

// ArenaConfig holds gameplay tuning for a session
type ArenaConfig struct {
	Width         float64         `yaml:"width"`
	Height        float64         `yaml:"height"`
	Lives         int             `yaml:"lives"`
	InvulnSeconds float64         `yaml:"invuln_seconds"`
	HitboxRadius  float64         `yaml:"hitbox_radius"`
	GrazeRadius   float64         `yaml:"graze_radius"`
	GrazeScore    int             `yaml:"graze_score"`
	Speed         float64         `yaml:"speed"`       // pixels/s
	FocusSpeed    float64         `yaml:"focus_speed"` // pixels/s while focused
	Emitters      []EmitterConfig `yaml:"emitters"`
}

// Config is the server configuration file
type Config struct {
	Addr        string           `yaml:"addr"`
	DBPath      string           `yaml:"db"`
	LogLevel    string           `yaml:"log_level"`
	MaxSessions int              `yaml:"max_sessions"`
	MaxPilots   int              `yaml:"max_pilots_per_session"`
	MaxBullets  int              `yaml:"max_bullets_per_session"`
	Arena       ArenaConfig      `yaml:"arena"`
	Collision   collision.Config `yaml:"collision"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	cc := collision.DefaultConfig()
	cc.Tags = []string{TagPlayer, TagEnemy}
	cc.MaxProjectiles = 2048
	cc.MaxReceivers = 64
	cc.MaxGlobalCollisionsPerTick = 512
	return Config{
		Addr:        ":8080",
		DBPath:      "danmaku.db",
		LogLevel:    "info",
		MaxSessions: 100,
		MaxPilots:   8,
		MaxBullets:  2048,
		Arena: ArenaConfig{
			Width:         800,
			Height:        1000,
			Lives:         3,
			InvulnSeconds: 2,
			HitboxRadius:  3,
			GrazeRadius:   24,
			GrazeScore:    10,
			Speed:         320,
			FocusSpeed:    140,
			Emitters: []EmitterConfig{
				{Pattern: PatternRing, X: 400, Y: 200, Interval: 0.25, Count: 16, Speed: 160, Spin: 0.6, Radius: 6, Lifetime: 8},
				{Pattern: PatternAimedFan, X: 150, Y: 120, Interval: 1.2, Count: 5, Spread: 0.6, Speed: 260, Radius: 5, Lifetime: 6},
				{Pattern: PatternLaser, X: 650, Y: 120, Interval: 4, Count: 1, Spin: 0.4, Radius: 4, Length: 600, Lifetime: 3},
			},
		},
		Collision: cc,
	}
}

// Validate checks limits and the collision config
func (c Config) Validate() error {
	if c.MaxSessions <= 0 || c.MaxPilots <= 0 || c.MaxBullets <= 0 {
		return fmt.Errorf("%w: session, pilot and bullet limits must be positive", errInvalidConfig)
	}
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("%w: arena must have a positive size", errInvalidConfig)
	}
	if c.Arena.Lives <= 0 {
		return fmt.Errorf("%w: lives must be positive, got %d", errInvalidConfig, c.Arena.Lives)
	}
	if c.Arena.HitboxRadius <= 0 || c.Arena.GrazeRadius < c.Arena.HitboxRadius {
		return fmt.Errorf("%w: graze radius must enclose the hitbox", errInvalidConfig)
	}
	for i, e := range c.Arena.Emitters {
		switch e.Pattern {
		case PatternRing, PatternAimedFan, PatternLaser:
		default:
			return fmt.Errorf("%w: emitter %d has unknown pattern %q", errInvalidConfig, i, e.Pattern)
		}
		if e.Interval <= 0 || e.Count <= 0 || e.Lifetime <= 0 {
			return fmt.Errorf("%w: emitter %d needs positive interval, count and lifetime", errInvalidConfig, i)
		}
	}
	if err := c.Collision.Validate(); err != nil {
		return err
	}
	names := c.Collision.TagNames()
	if _, ok := names.Index(TagPlayer); !ok {
		return fmt.Errorf("%w: collision tags must name %q", errInvalidConfig, TagPlayer)
	}
	if c.Collision.MaxReceivers < 2*c.MaxPilots {
		return fmt.Errorf("%w: max_receivers %d cannot hold %d pilots", errInvalidConfig, c.Collision.MaxReceivers, c.MaxPilots)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LoadConfig reads a YAML config on top of the defaults
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults and validates it
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
