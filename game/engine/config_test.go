package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if err := ValidateConfig(config); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if config.ChopCooldown() != 300*time.Millisecond {
		t.Errorf("Expected 300ms cooldown, got %v", config.ChopCooldown())
	}
	if config.MaxStep() != 50*time.Millisecond {
		t.Errorf("Expected 50ms max step, got %v", config.MaxStep())
	}
	if got := config.TickInterval(); got < 16*time.Millisecond || got > 17*time.Millisecond {
		t.Errorf("Expected ~16.7ms tick, got %v", got)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *WorldConfig)
		wantErr string
	}{
		{"valid", func(c *WorldConfig) {}, ""},
		{"missing name", func(c *WorldConfig) { c.Name = "" }, "name is required"},
		{"grid too small", func(c *WorldConfig) { c.GridSize = 4 }, "grid_size"},
		{"grid too large", func(c *WorldConfig) { c.GridSize = 65 }, "grid_size"},
		{"pond swallows ring", func(c *WorldConfig) { c.PondRadius = 9 }, "pond_radius"},
		{"negative chance", func(c *WorldConfig) { c.RockChance = -0.1 }, "rock_chance"},
		{"chances overflow", func(c *WorldConfig) { c.TreeChance = 0.6; c.RockChance = 0.3; c.FlowerChance = 0.2 }, "sum"},
		{"no variants", func(c *WorldConfig) { c.FlowerVariants = 0 }, "flower_variants"},
		{"zero damage", func(c *WorldConfig) { c.ChopDamage = 0 }, "chop_damage"},
		{"negative cooldown", func(c *WorldConfig) { c.ChopCooldownMS = -1 }, "chop_cooldown_ms"},
		{"zero fall rate", func(c *WorldConfig) { c.FallRate = 0 }, "fall_rate"},
		{"align too wide", func(c *WorldConfig) { c.AlignThreshold = 1 }, "align_threshold"},
		{"max step below tick", func(c *WorldConfig) { c.MaxStepMS = 5 }, "max_step_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := ValidateConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateConfig_ReportsFirstFieldInOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *WorldConfig)
		wantErr string
	}{
		{"chances", func(c *WorldConfig) { c.PathChance = 2; c.TreeChance = -1; c.FlowerChance = 3 }, "path_chance"},
		{"later chances", func(c *WorldConfig) { c.RockChance = -1; c.FlowerChance = 3 }, "rock_chance"},
		{"variants", func(c *WorldConfig) { c.TreeVariants = 0; c.RockVariants = 0; c.FlowerVariants = 0 }, "tree_variants"},
		{"rates", func(c *WorldConfig) { c.FallRate = 0; c.FadeRate = 0; c.TurnRate = 0; c.WalkSpeed = 0 }, "fall_rate"},
		{"later rates", func(c *WorldConfig) { c.TurnRate = -1; c.WalkSpeed = 0 }, "turn_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			first := ValidateConfig(config)
			if first == nil || !strings.Contains(first.Error(), tt.wantErr) {
				t.Fatalf("Expected error naming %q, got %v", tt.wantErr, first)
			}
			for i := 0; i < 20; i++ {
				if err := ValidateConfig(config); err == nil || err.Error() != first.Error() {
					t.Fatalf("Expected the same error on every call, got %v then %v", first, err)
				}
			}
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	t.Run("yaml overlays defaults", func(t *testing.T) {
		data := []byte("name: calm\ngrid_size: 12\ntree_chance: 0.1\nseed: 5\n")
		config, err := DecodeConfig(data, "yaml")
		if err != nil {
			t.Fatalf("DecodeConfig: %v", err)
		}
		if config.Name != "calm" || config.GridSize != 12 || config.TreeChance != 0.1 || config.Seed != 5 {
			t.Errorf("Overrides not applied: %+v", config)
		}
		if config.TurnRate != 25 || config.ChopDamage != 34 {
			t.Errorf("Defaults not kept: %+v", config)
		}
	})

	t.Run("json", func(t *testing.T) {
		config, err := DecodeConfig([]byte(`{"name":"tiny","grid_size":8,"pond_radius":1}`), ".json")
		if err != nil {
			t.Fatalf("DecodeConfig: %v", err)
		}
		if config.GridSize != 8 || config.PondRadius != 1 {
			t.Errorf("Unexpected config: %+v", config)
		}
	})

	t.Run("name required", func(t *testing.T) {
		if _, err := DecodeConfig([]byte(`{"grid_size":8,"pond_radius":1}`), "json"); err == nil {
			t.Error("Expected error for unnamed config")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := DecodeConfig([]byte(`name = "x"`), "toml"); err == nil {
			t.Error("Expected error for toml")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := DecodeConfig([]byte("name: [unterminated"), "yml"); err == nil {
			t.Error("Expected parse error")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meadow.yaml")
	if err := os.WriteFile(path, []byte("name: meadow\nrock_chance: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if config.Name != "meadow" || config.RockChance != 0 {
		t.Errorf("Unexpected config: %+v", config)
	}

	if _, err := LoadConfigFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
