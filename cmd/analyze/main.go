// Command analyze prints quick, human-readable statistics about the world
// configurations in a configs directory. For each config it draws a number
// of worlds and summarizes decoration counts, water and path coverage, the
// walkable ratio, spawn availability and how far the nearest tree is from
// the spawn.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/grovewalk/game/config"
	"github.com/wricardo/grovewalk/game/engine"
	"golang.org/x/sync/errgroup"
)

// WorldStats aggregates the worlds drawn from one config
type WorldStats struct {
	ConfigID string
	Name     string
	GridSize int
	Worlds   int

	Trees   float64
	Rocks   float64
	Flowers float64
	Water   float64
	Path    float64

	WalkableRatio float64
	MinSpawns     int
	NoSpawn       int

	// NearestTree is the mean Manhattan distance from spawn to the closest
	// standing tree; worlds without trees are skipped
	NearestTree float64
	Treeless    int
}

// analyzeConfig draws worlds seeds 1..worlds (or from the config's own seed)
func analyzeConfig(id string, cfg *engine.WorldConfig, worlds int) WorldStats {
	stats := WorldStats{
		ConfigID:  id,
		Name:      cfg.Name,
		GridSize:  cfg.GridSize,
		Worlds:    worlds,
		MinSpawns: -1,
	}
	if worlds <= 0 {
		return stats
	}

	tiles := float64(cfg.GridSize * cfg.GridSize)
	treeDistSum, treeWorlds := 0, 0

	for i := 0; i < worlds; i++ {
		seed := uint64(i + 1)
		if cfg.Seed != 0 {
			seed = cfg.Seed + uint64(i)
		}
		rng := engine.NewRand(seed)
		grid := engine.Generate(cfg, rng)

		counts := engine.CountDecorations(grid)
		stats.Trees += float64(counts[engine.KindTree])
		stats.Rocks += float64(counts[engine.KindRock])
		stats.Flowers += float64(counts[engine.KindFlower])
		stats.Water += float64(engine.CountTerrain(grid, engine.Water))
		stats.Path += float64(engine.CountTerrain(grid, engine.Path))
		stats.WalkableRatio += float64(engine.CountWalkable(grid)) / tiles

		spawns := len(engine.SpawnCandidates(grid))
		if spawns == 0 {
			stats.NoSpawn++
		}
		if stats.MinSpawns < 0 || spawns < stats.MinSpawns {
			stats.MinSpawns = spawns
		}

		spawn := engine.SpawnPoint(grid, rng)
		if _, dist, ok := engine.FindNearestTree(grid, spawn); ok {
			treeDistSum += dist
			treeWorlds++
		} else {
			stats.Treeless++
		}
	}

	n := float64(worlds)
	stats.Trees /= n
	stats.Rocks /= n
	stats.Flowers /= n
	stats.Water /= n
	stats.Path /= n
	stats.WalkableRatio /= n
	if treeWorlds > 0 {
		stats.NearestTree = float64(treeDistSum) / float64(treeWorlds)
	}
	return stats
}

// analyzeDir analyzes every valid config in dir concurrently; results keep
// the manager's listing order
func analyzeDir(ctx context.Context, dir string, worlds int) ([]WorldStats, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return nil, err
	}

	results := make([]WorldStats, len(infos))
	g, _ := errgroup.WithContext(ctx)
	for i, info := range infos {
		g.Go(func() error {
			cfg, err := manager.LoadConfig(info.ConfigID)
			if err != nil {
				return fmt.Errorf("%s: %w", info.ConfigID, err)
			}
			results[i] = analyzeConfig(info.ConfigID, cfg, worlds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printStats(w io.Writer, stats WorldStats) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", stats.ConfigID)
	fmt.Fprintf(w, "Name: %s\n", stats.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d worlds)\n", stats.GridSize, stats.GridSize, stats.Worlds)
	fmt.Fprintf(w, "Decorations: %.1f trees, %.1f rocks, %.1f flowers\n", stats.Trees, stats.Rocks, stats.Flowers)
	fmt.Fprintf(w, "Terrain: %.1f water, %.1f path\n", stats.Water, stats.Path)
	fmt.Fprintf(w, "Walkable: %.0f%%\n", stats.WalkableRatio*100)

	if stats.NoSpawn > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d worlds have no spawn tile\n", stats.NoSpawn)
	} else {
		fmt.Fprintf(w, "✅ Every world has a spawn tile (fewest candidates: %d)\n", stats.MinSpawns)
	}

	if stats.Treeless > 0 {
		fmt.Fprintf(w, "⚠️  %d worlds have no trees to chop\n", stats.Treeless)
	}
	if stats.Treeless < stats.Worlds {
		fmt.Fprintf(w, "Nearest tree from spawn: %.1f tiles on average\n", stats.NearestTree)
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize worlds drawn from each config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "Directory containing world configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "worlds",
				Value: 20,
				Usage: "Worlds to draw per config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			results, err := analyzeDir(ctx, cmd.String("dir"), cmd.Int("worlds"))
			if err != nil {
				return err
			}
			for _, stats := range results {
				printStats(os.Stdout, stats)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
