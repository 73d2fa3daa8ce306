package main

import (
	"github.com/wricardo/grovewalk/game/engine"
)

// Target is a standing tree and the route that ends next to it
type Target struct {
	Tree  engine.Position
	Route []engine.Direction
	// Face is the direction from the end of the route into the tree
	Face engine.Direction
}

// ClearingStrategy picks the closest reachable standing tree by walking
// distance and plans a route beside it
type ClearingStrategy struct {
	size    int
	terrain []string
	objects []string

	// skipped trees are not targeted again, e.g. after repeated failed chops
	skipped map[engine.Position]bool
}

func NewClearingStrategy(snap *engine.Snapshot) *ClearingStrategy {
	s := &ClearingStrategy{skipped: make(map[engine.Position]bool)}
	s.Update(snap)
	return s
}

// Update replaces the strategy's view of the map
func (s *ClearingStrategy) Update(snap *engine.Snapshot) {
	s.size = snap.GridSize
	s.terrain = snap.Terrain
	s.objects = snap.Objects
}

// Skip stops targeting the tree at pos
func (s *ClearingStrategy) Skip(pos engine.Position) {
	s.skipped[pos] = true
}

// Standing counts the trees still standing, skipped ones included
func (s *ClearingStrategy) Standing() int {
	count := 0
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			if s.object(x, y) == 'T' {
				count++
			}
		}
	}
	return count
}

// IsTree reports whether a standing tree is at pos
func (s *ClearingStrategy) IsTree(pos engine.Position) bool {
	return s.object(pos.X, pos.Y) == 'T'
}

func (s *ClearingStrategy) object(x, y int) byte {
	if x < 0 || y < 0 || y >= len(s.objects) || x >= len(s.objects[y]) {
		return '#'
	}
	return s.objects[y][x]
}

// walkable mirrors the engine rule: no water, no rock, no standing tree
func (s *ClearingStrategy) walkable(x, y int) bool {
	if x < 0 || y < 0 || x >= s.size || y >= s.size {
		return false
	}
	if y >= len(s.terrain) || x >= len(s.terrain[y]) || s.terrain[y][x] == '~' {
		return false
	}
	switch s.object(x, y) {
	case 'R', 'T', '#':
		return false
	}
	return true
}

// NextTarget runs a breadth-first search from the player and returns the
// first tile found beside a standing, unskipped tree
func (s *ClearingStrategy) NextTarget(from engine.Position) (Target, bool) {
	parent := map[engine.Position]hop{from: {from: from}}
	queue := []engine.Position{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := cur.Add(dir)
			if s.IsTree(next) && !s.skipped[next] {
				return Target{Tree: next, Route: route(parent, from, cur), Face: dir}, true
			}
		}

		for _, dir := range engine.Directions {
			next := cur.Add(dir)
			if _, seen := parent[next]; seen || !s.walkable(next.X, next.Y) {
				continue
			}
			parent[next] = hop{from: cur, via: dir}
			queue = append(queue, next)
		}
	}
	return Target{}, false
}

// hop records how the search reached a tile
type hop struct {
	from engine.Position
	via  engine.Direction
}

func route(parent map[engine.Position]hop, from, to engine.Position) []engine.Direction {
	var dirs []engine.Direction
	for at := to; at != from; at = parent[at].from {
		dirs = append(dirs, parent[at].via)
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
