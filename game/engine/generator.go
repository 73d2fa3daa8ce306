package engine

import (
	"math"
	"math/rand/v2"

	"github.com/wricardo/grovewalk/game/scene"
)

// NewRand returns the generator every random draw of a session goes through.
// Seed 0 picks a fresh seed, so worlds differ run to run.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate lays out terrain and decorations. Every tile is an independent draw:
//  1. inside the pond radius: water, nothing on it
//  2. otherwise, path with PathChance when at least two tiles from the edge
//  3. otherwise grass, and away from the border one roll picks tree, rock,
//     flower or nothing
//
// Border tiles never carry decorations, which keeps a walkable ring.
func Generate(config *WorldConfig, rng *rand.Rand) *Grid {
	grid := NewGrid(config.GridSize)
	center := float64(config.GridSize) / 2

	grid.Each(func(tile *Tile) {
		distCenter := math.Hypot(float64(tile.X)-center, float64(tile.Y)-center)
		distEdge := grid.DistEdge(tile.X, tile.Y)

		if distCenter < config.PondRadius {
			tile.Terrain = Water
			return
		}
		if rng.Float64() < config.PathChance && distEdge > 1 {
			tile.Terrain = Path
			return
		}

		tile.Terrain = Grass
		if distEdge > 0 {
			tile.Decoration = rollDecoration(config, rng, Position{X: tile.X, Y: tile.Y})
		}
	})

	return grid
}

func rollDecoration(config *WorldConfig, rng *rand.Rand, at Position) Decoration {
	r := rng.Float64()
	treeUpper := config.TreeChance
	rockUpper := treeUpper + config.RockChance
	flowerUpper := rockUpper + config.FlowerChance

	switch {
	case r < treeUpper:
		return NewTree(at, rng.IntN(config.TreeVariants), jitter(rng))
	case r < rockUpper:
		return NewRock(at, rng.IntN(config.RockVariants), jitter(rng))
	case r < flowerUpper:
		return NewFlower(at, rng.IntN(config.FlowerVariants), jitter(rng), rng.Float64()*2*math.Pi)
	}
	return nil
}

func jitter(rng *rand.Rand) Vec2 {
	return Vec2{
		X: (rng.Float64()*2 - 1) * MaxJitter,
		Y: (rng.Float64()*2 - 1) * MaxJitter,
	}
}

// GenerateClouds scatters ambient clouds above the grid
func GenerateClouds(config *WorldConfig, rng *rand.Rand) []*Cloud {
	size := float64(config.GridSize)
	clouds := make([]*Cloud, config.CloudCount)
	for i := range clouds {
		clouds[i] = &Cloud{
			Base: scene.Vec3{
				X: rng.Float64() * size,
				Y: cloudAltitude + rng.Float64()*2,
				Z: rng.Float64() * size,
			},
			Phase:     rng.Float64() * 2 * math.Pi,
			Speed:     0.5 + rng.Float64(),
			Amplitude: 1 + rng.Float64()*3,
			Scale:     0.8 + rng.Float64()*0.6,
		}
	}
	return clouds
}

// SpawnCandidates lists tiles a player may start on: walkable, and not a
// rock or a standing tree
func SpawnCandidates(grid *Grid) []Position {
	var candidates []Position
	grid.Each(func(tile *Tile) {
		if !grid.IsWalkable(tile.X, tile.Y) {
			return
		}
		switch d := tile.Decoration.(type) {
		case *Rock:
			return
		case *Tree:
			if d.Standing() {
				return
			}
		}
		candidates = append(candidates, Position{X: tile.X, Y: tile.Y})
	})
	return candidates
}

// SpawnPoint picks a spawn tile uniformly, falling back to the grid centre
// when nothing qualifies
func SpawnPoint(grid *Grid, rng *rand.Rand) Position {
	candidates := SpawnCandidates(grid)
	if len(candidates) == 0 {
		return grid.Center()
	}
	return candidates[rng.IntN(len(candidates))]
}
