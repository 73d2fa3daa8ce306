package engine

// Resolve turns one directional intent into a step, a chop or a turn.
// Intents arriving while the player is rotating or walking are dropped, so a
// held key cannot queue up steps.
func (e *GameEngine) Resolve(dir Direction) Resolution {
	if !dir.Valid() {
		return Resolution{Outcome: OutcomeIgnored, Reason: "unknown direction"}
	}

	p := e.player
	from := p.Tile()
	target := from.Add(dir)
	facing := dir.Facing()
	threshold := e.config.AlignThreshold

	res := Resolution{Direction: dir, From: from, Target: target}

	if p.Busy() {
		res.Outcome = OutcomeIgnored
		res.Reason = "player is " + string(p.Mode)
		return res
	}

	tile, err := e.grid.TileAt(target.X, target.Y)
	if err != nil {
		p.Face(facing, threshold)
		res.Outcome = OutcomeTurn
		res.Reason = "edge of the world"
		e.emit(Event{Type: EventTurn, Tile: from})
		return res
	}

	if e.grid.IsWalkable(target.X, target.Y) {
		p.PrevTile = from
		p.MoveTo(target, facing, threshold)
		res.Outcome = OutcomeStep
		e.emit(Event{Type: EventStep, Tile: target})
		return res
	}

	tree, isTree := tile.Decoration.(*Tree)
	switch {
	case isTree && tree.Standing() && p.Aligned(facing, threshold) && e.chopCooldown <= 0:
		e.chop(tree, target)
		res.Outcome = OutcomeChop
		return res
	case isTree && tree.Standing() && !p.Aligned(facing, threshold):
		res.Reason = "turning to face the tree"
	case isTree && tree.Standing():
		res.Reason = "chop cooling down"
	case tile.Terrain == Water:
		res.Reason = "water"
	default:
		res.Reason = "blocked by " + string(tile.Decoration.Kind())
	}

	p.Face(facing, threshold)
	res.Outcome = OutcomeTurn
	e.emit(Event{Type: EventTurn, Tile: from})
	return res
}

// ResolveClick converts a clicked tile into a single-axis intent. The axis
// with the larger offset wins; ties go to X.
func (e *GameEngine) ResolveClick(target Position) Resolution {
	from := e.player.Tile()
	dx, dy := target.X-from.X, target.Y-from.Y

	var dir Direction
	switch {
	case dx == 0 && dy == 0:
		return Resolution{Outcome: OutcomeIgnored, From: from, Target: target, Reason: "clicked own tile"}
	case abs(dx) >= abs(dy):
		dir = Right
		if dx < 0 {
			dir = Left
		}
	default:
		dir = Down
		if dy < 0 {
			dir = Up
		}
	}
	return e.Resolve(dir)
}

// chop strikes the tree from the player's side and arms the shared cooldown
func (e *GameEngine) chop(tree *Tree, at Position) {
	away := Vec2{
		X: float64(at.X) - e.player.Position.X,
		Y: float64(at.Y) - e.player.Position.Y,
	}
	if !tree.Chop(away, e.config.ChopDamage, e.now, e.config.ShakeWindow()) {
		return
	}
	e.chopCooldown = e.config.ChopCooldown()

	e.emit(Event{Type: EventChop, Tile: at, Health: tree.Health})
	if tree.State == TreeFalling {
		e.emit(Event{Type: EventTreeFalling, Tile: at})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
