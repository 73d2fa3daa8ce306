package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/grovewalk/game/config"
	"github.com/wricardo/grovewalk/game/engine"
)

const validYAML = `name: test
description: Test configuration
grid_size: 10
pond_radius: 1
tree_chance: 0.2
rock_chance: 0.02
flower_chance: 0.1
`

const invalidGridJSON = `{"name": "broken", "grid_size": 2}`

const malformedJSON = `{"name": "test", invalid json}`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"test.yaml": validYAML})
	manager, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	result := validateConfig(manager, "test.yaml", 3)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "test.yaml" {
		t.Errorf("Expected file name test.yaml, got %s", result.File)
	}

	joined := strings.Join(result.Errors, "\n")
	for _, want := range []string{"✓ Name: test", "✓ Grid: 10x10", "over 3 worlds"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected info %q, got %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"malformed JSON", "bad.json", malformedJSON, "Failed to load"},
		{"grid too small", "tiny.json", invalidGridJSON, "grid_size"},
		{"missing name", "anon.yaml", "grid_size: 10\n", "name is required"},
		{
			name:    "chances over one",
			file:    "dense.yaml",
			content: "name: dense\ntree_chance: 0.8\nrock_chance: 0.3\n",
			wantErr: "must not exceed 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigs(t, map[string]string{tt.file: tt.content})
			manager, err := config.NewManager(dir)
			if err != nil {
				t.Fatalf("NewManager: %v", err)
			}

			result := validateConfig(manager, tt.file, 1)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !strings.Contains(strings.Join(result.Errors, "\n"), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestReachableShare(t *testing.T) {
	grid := engine.NewGrid(5)

	// Wall of rocks down column 2 splits the grid in half
	for y := 0; y < 5; y++ {
		tile, _ := grid.TileAt(2, y)
		tile.Decoration = engine.NewRock(engine.Position{X: 2, Y: y}, 0, engine.Vec2{})
	}

	share := reachableShare(grid, engine.Position{X: 0, Y: 0})
	if share != 0.5 {
		t.Errorf("Expected half the land reachable, got %.2f", share)
	}

	// A tree in the wall can be chopped through
	tile, _ := grid.TileAt(2, 2)
	tile.Decoration = engine.NewTree(engine.Position{X: 2, Y: 2}, 0, engine.Vec2{})
	if share := reachableShare(grid, engine.Position{X: 0, Y: 0}); share != 1 {
		t.Errorf("Expected all land reachable through the tree, got %.2f", share)
	}

	water, _ := grid.TileAt(4, 4)
	water.Terrain = engine.Water
	if share := reachableShare(grid, engine.Position{X: 4, Y: 4}); share != 0 {
		t.Errorf("Expected nothing reachable from water, got %.2f", share)
	}
}

func TestValidateDir(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"good.yaml":  validYAML,
		"bad.json":   malformedJSON,
		"notes.txt":  "not a config",
		"small.json": invalidGridJSON,
	})

	results, err := validateDir(dir, 1)
	if err != nil {
		t.Fatalf("validateDir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	valid := map[string]bool{}
	for _, r := range results {
		valid[r.File] = r.Valid
	}
	if !valid["good.yaml"] || valid["bad.json"] || valid["small.json"] {
		t.Errorf("Unexpected validity: %v", valid)
	}

	var out bytes.Buffer
	if report(&out, results) {
		t.Error("Expected report to flag invalid configs")
	}
	if !strings.Contains(out.String(), "❌ INVALID") || !strings.Contains(out.String(), "✅ VALID") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}

func TestValidateDir_Missing(t *testing.T) {
	if _, err := validateDir("/non/existent/path", 1); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestShippedConfigs(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	results, err := validateDir("../configs", 3)
	if err != nil {
		t.Fatalf("validateDir: %v", err)
	}
	for _, r := range results {
		if !r.Valid {
			t.Errorf("%s is invalid: %v", r.File, r.Errors)
		}
	}
}
