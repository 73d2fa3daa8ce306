package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WorldConfig holds generation rules and animation tuning for a session
type WorldConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	GridSize    int    `json:"grid_size" yaml:"grid_size"`

	// Seed 0 draws a fresh world every time
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	PondRadius   float64 `json:"pond_radius" yaml:"pond_radius"`
	PathChance   float64 `json:"path_chance" yaml:"path_chance"`
	TreeChance   float64 `json:"tree_chance" yaml:"tree_chance"`
	RockChance   float64 `json:"rock_chance" yaml:"rock_chance"`
	FlowerChance float64 `json:"flower_chance" yaml:"flower_chance"`

	TreeVariants   int `json:"tree_variants" yaml:"tree_variants"`
	RockVariants   int `json:"rock_variants" yaml:"rock_variants"`
	FlowerVariants int `json:"flower_variants" yaml:"flower_variants"`
	CloudCount     int `json:"cloud_count" yaml:"cloud_count"`

	ChopDamage     int `json:"chop_damage" yaml:"chop_damage"`
	ChopCooldownMS int `json:"chop_cooldown_ms" yaml:"chop_cooldown_ms"`
	ShakeWindowMS  int `json:"shake_window_ms" yaml:"shake_window_ms"`

	FallRate       float64 `json:"fall_rate" yaml:"fall_rate"`
	FadeRate       float64 `json:"fade_rate" yaml:"fade_rate"`
	TurnRate       float64 `json:"turn_rate" yaml:"turn_rate"`
	WalkSpeed      float64 `json:"walk_speed" yaml:"walk_speed"`
	AlignThreshold float64 `json:"align_threshold" yaml:"align_threshold"`

	TickMS    float64 `json:"tick_ms" yaml:"tick_ms"`
	MaxStepMS float64 `json:"max_step_ms" yaml:"max_step_ms"`
}

// DefaultConfig returns the reference tuning: a 20x20 meadow with a central pond
func DefaultConfig() *WorldConfig {
	return &WorldConfig{
		Name:           "classic",
		Description:    "20x20 meadow with a central pond",
		GridSize:       20,
		PondRadius:     3,
		PathChance:     0.05,
		TreeChance:     0.30,
		RockChance:     0.05,
		FlowerChance:   0.10,
		TreeVariants:   3,
		RockVariants:   2,
		FlowerVariants: 4,
		CloudCount:     6,
		ChopDamage:     34,
		ChopCooldownMS: 300,
		ShakeWindowMS:  150,
		FallRate:       2.5,
		FadeRate:       2.0,
		TurnRate:       25,
		WalkSpeed:      5,
		AlignThreshold: 0.1,
		TickMS:         1000.0 / 60.0,
		MaxStepMS:      50,
	}
}

// ChopCooldown returns the shared chop gate duration
func (c *WorldConfig) ChopCooldown() time.Duration {
	return time.Duration(c.ChopCooldownMS) * time.Millisecond
}

// ShakeWindow returns how long a chopped tree shakes
func (c *WorldConfig) ShakeWindow() time.Duration {
	return time.Duration(c.ShakeWindowMS) * time.Millisecond
}

// TickInterval returns the loop cadence
func (c *WorldConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMS * float64(time.Millisecond))
}

// MaxStep returns the largest dt a single frame may consume
func (c *WorldConfig) MaxStep() time.Duration {
	return time.Duration(c.MaxStepMS * float64(time.Millisecond))
}

// ValidateConfig validates a world configuration for correctness
func ValidateConfig(config *WorldConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.PondRadius < 0 || config.PondRadius >= float64(config.GridSize)/2-1 {
		return fmt.Errorf("config validation: pond_radius must leave a walkable ring, got %.2f", config.PondRadius)
	}

	for _, c := range []struct {
		name string
		p    float64
	}{
		{"path_chance", config.PathChance},
		{"tree_chance", config.TreeChance},
		{"rock_chance", config.RockChance},
		{"flower_chance", config.FlowerChance},
	} {
		if c.p < 0 || c.p > 1 {
			return fmt.Errorf("config validation: %s must be within [0,1], got %.3f", c.name, c.p)
		}
	}
	if sum := config.TreeChance + config.RockChance + config.FlowerChance; sum > 1 {
		return fmt.Errorf("config validation: decoration chances sum to %.3f, must not exceed 1", sum)
	}

	for _, c := range []struct {
		name string
		n    int
	}{
		{"tree_variants", config.TreeVariants},
		{"rock_variants", config.RockVariants},
		{"flower_variants", config.FlowerVariants},
	} {
		if c.n < 1 || c.n > MaxVariants {
			return fmt.Errorf("config validation: %s must be between 1 and %d, got %d", c.name, MaxVariants, c.n)
		}
	}
	if config.CloudCount < 0 || config.CloudCount > MaxClouds {
		return fmt.Errorf("config validation: cloud_count must be between 0 and %d, got %d", MaxClouds, config.CloudCount)
	}

	if config.ChopDamage < 1 || config.ChopDamage > TreeMaxHealth {
		return fmt.Errorf("config validation: chop_damage must be between 1 and %d, got %d", TreeMaxHealth, config.ChopDamage)
	}
	if config.ChopCooldownMS < 0 {
		return fmt.Errorf("config validation: chop_cooldown_ms must not be negative")
	}
	if config.ShakeWindowMS < 0 {
		return fmt.Errorf("config validation: shake_window_ms must not be negative")
	}

	for _, c := range []struct {
		name string
		rate float64
	}{
		{"fall_rate", config.FallRate},
		{"fade_rate", config.FadeRate},
		{"turn_rate", config.TurnRate},
		{"walk_speed", config.WalkSpeed},
		{"tick_ms", config.TickMS},
	} {
		if c.rate <= 0 {
			return fmt.Errorf("config validation: %s must be positive, got %.3f", c.name, c.rate)
		}
	}
	if config.AlignThreshold <= 0 || config.AlignThreshold >= 1 {
		return fmt.Errorf("config validation: align_threshold must be within (0,1), got %.3f", config.AlignThreshold)
	}
	if config.MaxStepMS < config.TickMS {
		return fmt.Errorf("config validation: max_step_ms (%.2f) must be at least tick_ms (%.2f)", config.MaxStepMS, config.TickMS)
	}

	return nil
}

// DecodeConfig parses JSON or YAML config bytes on top of the defaults, so
// files only need to name the fields they change
func DecodeConfig(data []byte, format string) (*WorldConfig, error) {
	config := DefaultConfig()
	config.Name = ""
	config.Description = ""

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigFile loads a world configuration from a JSON or YAML file
func LoadConfigFile(filename string) (*WorldConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeConfig(data, filepath.Ext(filename))
}
