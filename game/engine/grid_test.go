package engine

import (
	"errors"
	"testing"
)

func TestIsWalkable(t *testing.T) {
	felled := NewTree(Position{X: 1, Y: 1}, 0, Vec2{})
	felled.Health = -2
	felled.State = TreeFalling

	zero := NewTree(Position{X: 1, Y: 1}, 0, Vec2{})
	zero.Health = 0

	tests := []struct {
		name    string
		terrain Terrain
		deco    Decoration
		want    bool
	}{
		{"empty grass", Grass, nil, true},
		{"empty path", Path, nil, true},
		{"water", Water, nil, false},
		{"rock", Grass, NewRock(Position{X: 1, Y: 1}, 0, Vec2{}), false},
		{"standing tree", Grass, NewTree(Position{X: 1, Y: 1}, 0, Vec2{}), false},
		{"tree at zero health", Grass, zero, true},
		{"felled tree", Grass, felled, true},
		{"flower", Grass, NewFlower(Position{X: 1, Y: 1}, 0, Vec2{}, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(5)
			setTerrain(t, g, 1, 1, tt.terrain)
			put(t, g, 1, 1, tt.deco)
			if got := g.IsWalkable(1, 1); got != tt.want {
				t.Errorf("IsWalkable = %v, want %v", got, tt.want)
			}
		})
	}

	g := NewGrid(5)
	for _, p := range []Position{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if g.IsWalkable(p.X, p.Y) {
			t.Errorf("Expected %v out of bounds", p)
		}
	}
}

func TestTileAt_OutOfBounds(t *testing.T) {
	g := NewGrid(5)
	if _, err := g.TileAt(5, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestDistEdge(t *testing.T) {
	g := NewGrid(7)
	tests := []struct {
		x, y int
		want int
	}{
		{0, 3, 0},
		{6, 6, 0},
		{1, 3, 1},
		{3, 3, 3},
		{2, 5, 1},
	}
	for _, tt := range tests {
		if got := g.DistEdge(tt.x, tt.y); got != tt.want {
			t.Errorf("DistEdge(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		config := DefaultConfig()
		config.Seed = seed
		g := Generate(config, NewRand(seed))

		g.Each(func(tile *Tile) {
			if g.DistEdge(tile.X, tile.Y) == 0 {
				if tile.Decoration != nil {
					t.Errorf("seed %d: border tile (%d,%d) decorated", seed, tile.X, tile.Y)
				}
				if !g.IsWalkable(tile.X, tile.Y) {
					t.Errorf("seed %d: border tile (%d,%d) not walkable", seed, tile.X, tile.Y)
				}
			}
			if tile.Terrain == Water && tile.Decoration != nil {
				t.Errorf("seed %d: decorated water at (%d,%d)", seed, tile.X, tile.Y)
			}
			if tile.Terrain == Path && tile.Decoration != nil {
				t.Errorf("seed %d: decorated path at (%d,%d)", seed, tile.X, tile.Y)
			}
			if tile.Terrain == Path && g.DistEdge(tile.X, tile.Y) < 2 {
				t.Errorf("seed %d: path too close to the edge at (%d,%d)", seed, tile.X, tile.Y)
			}
			if d := tile.Decoration; d != nil {
				off := d.Offset()
				if off.X < -MaxJitter || off.X > MaxJitter || off.Y < -MaxJitter || off.Y > MaxJitter {
					t.Errorf("seed %d: jitter %v out of range", seed, off)
				}
			}
		})

		center, _ := g.TileAt(10, 10)
		if center.Terrain != Water {
			t.Errorf("seed %d: expected pond at the centre", seed)
		}

		spawn := SpawnPoint(g, NewRand(seed))
		if !g.IsWalkable(spawn.X, spawn.Y) {
			t.Errorf("seed %d: spawn %v not walkable", seed, spawn)
		}
		tile, _ := g.TileAt(spawn.X, spawn.Y)
		switch d := tile.Decoration.(type) {
		case *Rock:
			t.Errorf("seed %d: spawned on a rock", seed)
		case *Tree:
			if d.Standing() {
				t.Errorf("seed %d: spawned on a tree", seed)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	config := DefaultConfig()
	a := Generate(config, NewRand(99))
	b := Generate(config, NewRand(99))

	ta, oa := a.Rows()
	tb, ob := b.Rows()
	for y := range ta {
		if ta[y] != tb[y] || oa[y] != ob[y] {
			t.Fatalf("row %d differs between identical seeds", y)
		}
	}
}

func TestSpawnPoint_FallsBackToCentre(t *testing.T) {
	g := NewGrid(5)
	g.Each(func(tile *Tile) { tile.Terrain = Water })

	if got := SpawnPoint(g, NewRand(1)); got != (Position{X: 2, Y: 2}) {
		t.Errorf("Expected centre fallback, got %v", got)
	}
}

func TestFindNearestTree(t *testing.T) {
	g := NewGrid(10)
	put(t, g, 8, 8, NewTree(Position{X: 8, Y: 8}, 0, Vec2{}))
	put(t, g, 2, 3, NewTree(Position{X: 2, Y: 3}, 0, Vec2{}))
	felled := NewTree(Position{X: 1, Y: 1}, 0, Vec2{})
	felled.Health = -2
	felled.State = TreeFalling
	put(t, g, 1, 1, felled)

	pos, dist, ok := FindNearestTree(g, Position{X: 1, Y: 1})
	if !ok || pos != (Position{X: 2, Y: 3}) || dist != 3 {
		t.Errorf("Expected (2,3) at 3, got %v at %d (found=%v)", pos, dist, ok)
	}

	counts := CountDecorations(g)
	if counts[KindTree] != 3 {
		t.Errorf("Expected 3 trees counted, got %d", counts[KindTree])
	}
	if CountWalkable(g) != 98 {
		t.Errorf("Expected 98 walkable tiles, got %d", CountWalkable(g))
	}
}
