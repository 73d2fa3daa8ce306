package engine

import "fmt"

// Tile is one grid cell. Terrain is fixed after generation; the decoration
// is cleared once a felled tree has faded out.
type Tile struct {
	X          int
	Y          int
	Terrain    Terrain
	Decoration Decoration
}

// Grid is a fixed-shape square array of tiles, indexed [y][x]
type Grid struct {
	size  int
	tiles [][]Tile
}

// NewGrid creates a size x size grid of grass
func NewGrid(size int) *Grid {
	tiles := make([][]Tile, size)
	for y := range tiles {
		tiles[y] = make([]Tile, size)
		for x := range tiles[y] {
			tiles[y][x] = Tile{X: x, Y: y, Terrain: Grass}
		}
	}
	return &Grid{size: size, tiles: tiles}
}

// Size returns the grid edge length
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether (x, y) lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// TileAt returns the tile at (x, y) or ErrOutOfBounds
func (g *Grid) TileAt(x, y int) (*Tile, error) {
	if !g.InBounds(x, y) {
		return nil, fmt.Errorf("tile (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return &g.tiles[y][x], nil
}

// IsWalkable is the only authority on whether the player may occupy a tile.
// Rules in order: out of bounds, water, empty, rock, tree health, anything else.
func (g *Grid) IsWalkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	tile := &g.tiles[y][x]
	if tile.Terrain == Water {
		return false
	}
	switch d := tile.Decoration.(type) {
	case nil:
		return true
	case *Rock:
		return false
	case *Tree:
		return d.Health <= 0
	default:
		return true
	}
}

// Each calls fn for every tile in row-major order
func (g *Grid) Each(fn func(t *Tile)) {
	for y := range g.tiles {
		for x := range g.tiles[y] {
			fn(&g.tiles[y][x])
		}
	}
}

// DistEdge is the distance from (x, y) to the nearest border
func (g *Grid) DistEdge(x, y int) int {
	return min(x, y, g.size-1-x, g.size-1-y)
}

// Center returns the centre tile
func (g *Grid) Center() Position {
	return Position{X: g.size / 2, Y: g.size / 2}
}

// View summarizes a tile for transports
func (g *Grid) View(x, y int) (TileView, error) {
	tile, err := g.TileAt(x, y)
	if err != nil {
		return TileView{}, err
	}
	view := TileView{
		X:        x,
		Y:        y,
		Terrain:  tile.Terrain,
		Walkable: g.IsWalkable(x, y),
	}
	if tile.Decoration != nil {
		view.Decoration = tile.Decoration.Kind()
		view.Variant = tile.Decoration.Variant()
		if tree, ok := tile.Decoration.(*Tree); ok {
			health := tree.Health
			view.Health = &health
			view.TreeState = tree.State
		}
	}
	return view, nil
}

// Rows renders terrain and decoration layers as one string per row.
// Terrain: '.' grass, '~' water, '=' path. Objects: 'T' tree, 't' felled
// tree, 'R' rock, 'f' flower, '.' empty.
func (g *Grid) Rows() (terrain []string, objects []string) {
	terrain = make([]string, g.size)
	objects = make([]string, g.size)
	for y := range g.tiles {
		tr := make([]byte, g.size)
		ob := make([]byte, g.size)
		for x := range g.tiles[y] {
			tile := &g.tiles[y][x]
			switch tile.Terrain {
			case Water:
				tr[x] = '~'
			case Path:
				tr[x] = '='
			default:
				tr[x] = '.'
			}
			ob[x] = decorationChar(tile.Decoration)
		}
		terrain[y] = string(tr)
		objects[y] = string(ob)
	}
	return terrain, objects
}

func decorationChar(d Decoration) byte {
	switch v := d.(type) {
	case *Tree:
		if v.Health > 0 {
			return 'T'
		}
		return 't'
	case *Rock:
		return 'R'
	case *Flower:
		return 'f'
	}
	return '.'
}
