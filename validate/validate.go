// Command validate provides a small CLI that validates world configuration
// files (JSON or YAML) in a config directory. It checks:
//   - The file decodes and passes engine.ValidateConfig
//   - Sample worlds drawn from the config have at least one spawn tile
//   - From the spawn, the share of land reachable when trees may be chopped
//     (rocks and water stay blocked)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/grovewalk/game/config"
	"github.com/wricardo/grovewalk/game/engine"
)

// minReachable is the share of land a spawn must reach before a config is
// reported as fragmented
const minReachable = 0.5

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads a configuration through the manager and checks that
// worlds drawn from it are playable.
func validateConfig(manager *config.Manager, filename string, samples int) ValidationResult {
	result := ValidationResult{
		File:   filename,
		Valid:  true,
		Errors: []string{},
	}

	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	cfg, err := manager.LoadConfig(name)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load: %v", err))
		return result
	}

	if err := engine.ValidateConfig(cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	worst := 1.0
	for i := 0; i < samples; i++ {
		seed := cfg.Seed + uint64(i)
		if cfg.Seed == 0 {
			seed = uint64(i + 1)
		}
		rng := engine.NewRand(seed)
		grid := engine.Generate(cfg, rng)

		if len(engine.SpawnCandidates(grid)) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Seed %d: no spawn tile", seed))
			continue
		}

		share := reachableShare(grid, engine.SpawnPoint(grid, rng))
		if share < minReachable {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Seed %d: only %.0f%% of land reachable from spawn", seed, share*100))
		}
		worst = min(worst, share)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", cfg.GridSize, cfg.GridSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Chances: trees %.0f%%, rocks %.0f%%, flowers %.0f%%", cfg.TreeChance*100, cfg.RockChance*100, cfg.FlowerChance*100))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Chop: %d damage, %dms cooldown", cfg.ChopDamage, cfg.ChopCooldownMS))
		if samples > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachable land: at least %.0f%% over %d worlds", worst*100, samples))
		}
	}

	return result
}

// passable reports whether a tile can eventually be walked on: trees may be
// chopped, rocks and water never clear
func passable(grid *engine.Grid, x, y int) bool {
	tile, err := grid.TileAt(x, y)
	if err != nil || tile.Terrain == engine.Water {
		return false
	}
	_, rock := tile.Decoration.(*engine.Rock)
	return !rock
}

// reachableShare flood fills from start over passable tiles and returns the
// fraction of all passable tiles reached
func reachableShare(grid *engine.Grid, start engine.Position) float64 {
	total := 0
	grid.Each(func(tile *engine.Tile) {
		if passable(grid, tile.X, tile.Y) {
			total++
		}
	})
	if total == 0 || !passable(grid, start.X, start.Y) {
		return 0
	}

	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			dx, dy := dir.Delta()
			next := engine.Position{X: current.X + dx, Y: current.Y + dy}
			if !visited[next] && passable(grid, next.X, next.Y) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return float64(len(visited)) / float64(total)
}

// validateDir validates every config file in dir, in directory order
func validateDir(dir string, samples int) ([]ValidationResult, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		if entry.IsDir() {
			continue
		}
		results = append(results, validateConfig(manager, entry.Name(), samples))
	}
	return results, nil
}

// report prints one block per file and returns whether all were valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

// main validates a config directory, printing a concise report and exiting
// with non-zero status if any file is invalid.
func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate world configurations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "Directory containing world configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "samples",
				Value: 5,
				Usage: "Worlds to draw per config for playability checks",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			results, err := validateDir(cmd.String("dir"), cmd.Int("samples"))
			if err != nil {
				return err
			}
			if !report(os.Stdout, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
