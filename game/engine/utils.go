package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// FindNearestTree finds the closest standing tree and returns its position and distance
func FindNearestTree(grid *Grid, from Position) (Position, int, bool) {
	minDistance := -1
	var nearestPos Position
	found := false

	grid.Each(func(tile *Tile) {
		tree, ok := tile.Decoration.(*Tree)
		if !ok || !tree.Standing() {
			return
		}
		pos := Position{X: tile.X, Y: tile.Y}
		distance := ManhattanDistance(from, pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearestPos = pos
			found = true
		}
	})

	return nearestPos, minDistance, found
}

// CountDecorations counts decorations on the grid by kind
func CountDecorations(grid *Grid) map[DecorationKind]int {
	counts := map[DecorationKind]int{}
	grid.Each(func(tile *Tile) {
		if tile.Decoration != nil {
			counts[tile.Decoration.Kind()]++
		}
	})
	return counts
}

// CountTerrain counts tiles of a specific terrain
func CountTerrain(grid *Grid, terrain Terrain) int {
	count := 0
	grid.Each(func(tile *Tile) {
		if tile.Terrain == terrain {
			count++
		}
	})
	return count
}

// CountWalkable counts the tiles the player may occupy
func CountWalkable(grid *Grid) int {
	count := 0
	grid.Each(func(tile *Tile) {
		if grid.IsWalkable(tile.X, tile.Y) {
			count++
		}
	})
	return count
}
