package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid simulation configuration")

// Compatibility holds the legacy behavior toggles. It is passed by value into
// constructors and never mutated afterwards.
type Compatibility struct {
	// VanillaSectorPhysics makes solid but non-shootable things transparent to
	// moving planes, as vanilla Doom did.
	VanillaSectorPhysics bool `json:"vanilla_sector_physics" yaml:"vanilla_sector_physics"`
	// VanillaShortestTexture counts missing lower textures as texture 0 when
	// computing the shortest lower texture.
	VanillaShortestTexture bool `json:"vanilla_shortest_texture" yaml:"vanilla_shortest_texture"`
	// InstantMoveClamp clamps a floor raise that would pass the ceiling to the
	// ceiling height. When false the naive destination is kept.
	InstantMoveClamp bool `json:"instant_move_clamp" yaml:"instant_move_clamp"`
	// QuickSwitch lets a repeatable switch flip back off when it is used again
	// while its reset timer is still running.
	QuickSwitch bool `json:"quick_switch" yaml:"quick_switch"`
}

// Simulation holds timing and physics constants.
type Simulation struct {
	TickRate    int     `json:"tick_rate" yaml:"tick_rate"`
	StickSpeed  float64 `json:"stick_speed" yaml:"stick_speed"`
	CrushSpeed  float64 `json:"crush_speed" yaml:"crush_speed"`
	CrushDamage int     `json:"crush_damage" yaml:"crush_damage"`
	Seed        uint64  `json:"seed" yaml:"seed"`
	LogLevel    string  `json:"log_level" yaml:"log_level"`
}

type Config struct {
	Compatibility Compatibility `json:"compatibility" yaml:"compatibility"`
	Simulation    Simulation    `json:"simulation" yaml:"simulation"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Compatibility: Compatibility{
			InstantMoveClamp: true,
		},
		Simulation: Simulation{
			TickRate:    35,
			StickSpeed:  8,
			CrushSpeed:  0.1,
			CrushDamage: 10,
			Seed:        1,
			LogLevel:    "info",
		},
	}
}

// Validate checks that the numeric settings are usable.
func (c Config) Validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if c.Simulation.CrushSpeed <= 0 {
		return fmt.Errorf("%w: crush_speed must be positive", ErrInvalidConfig)
	}
	if c.Simulation.StickSpeed < 0 {
		return fmt.Errorf("%w: stick_speed must not be negative", ErrInvalidConfig)
	}
	if c.Simulation.CrushDamage < 0 {
		return fmt.Errorf("%w: crush_damage must not be negative", ErrInvalidConfig)
	}
	switch c.Simulation.LogLevel {
	case "", "debug", "info", "warn", "error", "none":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.Simulation.LogLevel)
	}
	return nil
}

// Load decodes YAML on top of Default, so a file only needs the keys it changes.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile loads a YAML config file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f)
}
