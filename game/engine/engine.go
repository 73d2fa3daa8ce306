package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/wricardo/grovewalk/game/scene"
)

// Engine provides the main interface for a game session
type Engine interface {
	// Frame advance
	Update(dt time.Duration)
	Tick() uint64
	Elapsed() time.Duration

	// Input
	SetIntent(intent Intent)
	Step(dir Direction) Resolution
	Hover(x, y int) Position
	Commit() Resolution
	Click(x, y int) Resolution

	// State
	Snapshot() *Snapshot
	DescribeTile(x, y int) (TileView, error)
	DrainEvents() []Event
	Reset() error

	// Configuration
	GetConfig() *WorldConfig
}

// GameEngine is one game session: the world, the player, the shared chop
// cooldown, the hovered tile and the clock. Nothing here is global, so
// sessions are fully independent. It is not safe for concurrent use; the
// owner serializes Update and input calls.
type GameEngine struct {
	config  *WorldConfig
	scene   scene.Scene
	library *scene.Library
	rng     *rand.Rand

	grid     *Grid
	player   *Player
	entities []entity
	clouds   []*Cloud
	ground   []scene.Handle

	chopCooldown time.Duration
	hovered      Position
	intent       Intent

	now    time.Duration
	tick   uint64
	events []Event
}

// NewEngine generates a fresh world for config and instantiates its visuals
// in sc. A nil scene runs headless.
func NewEngine(config *WorldConfig, sc scene.Scene, lib *scene.Library) (*GameEngine, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	e := newEngine(config, sc, lib)
	grid := Generate(config, e.rng)
	spawn := SpawnPoint(grid, e.rng)
	if err := e.populate(grid, spawn, 0, GenerateClouds(config, e.rng)); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithGrid builds a session around a prepared grid. Used for
// scripted worlds and tests.
func NewEngineWithGrid(config *WorldConfig, grid *Grid, spawn Position, facing float64, sc scene.Scene, lib *scene.Library) (*GameEngine, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if grid == nil || grid.Size() != config.GridSize {
		return nil, fmt.Errorf("grid must be %dx%d", config.GridSize, config.GridSize)
	}
	if !grid.InBounds(spawn.X, spawn.Y) {
		return nil, fmt.Errorf("spawn %v: %w", spawn, ErrOutOfBounds)
	}

	e := newEngine(config, sc, lib)
	if err := e.populate(grid, spawn, facing, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a headless session with the reference tuning
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig(), nil, nil)
	if err != nil {
		panic(err) // the defaults always validate
	}
	return e
}

func newEngine(config *WorldConfig, sc scene.Scene, lib *scene.Library) *GameEngine {
	if sc == nil {
		sc = &scene.NopScene{}
	}
	return &GameEngine{
		config:  config,
		scene:   sc,
		library: lib,
		rng:     NewRand(config.Seed),
		hovered: NoTile,
	}
}

// populate instantiates every visual and installs the world
func (e *GameEngine) populate(grid *Grid, spawn Position, facing float64, clouds []*Cloud) error {
	e.grid = grid
	e.player = NewPlayer(spawn, facing)
	e.entities = e.entities[:0]
	e.clouds = clouds
	e.ground = e.ground[:0]

	var err error
	grid.Each(func(tile *Tile) {
		if err != nil {
			return
		}
		var h scene.Handle
		if h, err = e.spawn("tile-"+string(tile.Terrain), scene.Transform{
			Position: scene.Vec3{X: float64(tile.X), Z: float64(tile.Y)},
			Scale:    scene.One,
		}); err != nil {
			return
		}
		e.ground = append(e.ground, h)

		switch d := tile.Decoration.(type) {
		case *Tree:
			d.handle, err = e.spawn(scene.TemplateID("tree", d.variant), scene.Transform{Position: d.anchor(), Scale: scene.One})
			e.entities = append(e.entities, d)
		case *Rock:
			d.handle, err = e.spawn(scene.TemplateID("rock", d.variant), scene.Transform{Position: d.anchor(), Scale: scene.One})
		case *Flower:
			d.handle, err = e.spawn(scene.TemplateID("flower", d.variant), scene.Transform{Position: d.anchor(), Scale: scene.One})
			e.entities = append(e.entities, d)
		}
	})
	if err != nil {
		return fmt.Errorf("instantiate world: %w", err)
	}

	for _, c := range clouds {
		if c.handle, err = e.spawn("cloud", scene.Transform{Position: c.Base, Scale: scene.One.Scale(c.Scale)}); err != nil {
			return fmt.Errorf("instantiate cloud: %w", err)
		}
		e.entities = append(e.entities, c)
	}

	if e.player.handle, err = e.spawn("player", e.player.transform()); err != nil {
		return fmt.Errorf("instantiate player: %w", err)
	}
	return nil
}

func (e *GameEngine) spawn(templateID string, t scene.Transform) (scene.Handle, error) {
	h, err := e.scene.Instantiate(e.library, templateID)
	if err != nil {
		return 0, err
	}
	e.scene.SetTransform(h, t)
	e.scene.Attach(h)
	return h, nil
}

// Update advances the session by one frame: held input, cooldown, player,
// flower disturbance, then every animated entity.
func (e *GameEngine) Update(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	e.now += dt
	e.tick++

	if dir, ok := e.intent.Direction(); ok && !e.player.Busy() {
		e.Resolve(dir)
	}

	e.chopCooldown -= dt
	if e.chopCooldown < 0 {
		e.chopCooldown = 0
	}

	e.player.Update(dt.Seconds(), e.config.TurnRate, e.config.WalkSpeed)
	e.scene.SetTransform(e.player.handle, e.player.transform())

	e.disturbOnArrival()

	f := &frame{now: e.now, dt: dt, scene: e.scene, config: e.config, emit: e.emit}
	alive := e.entities[:0]
	for _, ent := range e.entities {
		ent.update(f)
		if ent.removed() {
			e.release(ent)
			continue
		}
		alive = append(alive, ent)
	}
	for i := len(alive); i < len(e.entities); i++ {
		e.entities[i] = nil
	}
	e.entities = alive
}

// disturbOnArrival fires once per newly occupied tile, never mid-walk and
// never again while standing still
func (e *GameEngine) disturbOnArrival() {
	p := e.player
	if p.Mode == ModeTranslating {
		return
	}
	cur := p.Tile()
	if cur == p.PrevTile {
		return
	}
	p.PrevTile = cur

	tile, err := e.grid.TileAt(cur.X, cur.Y)
	if err != nil {
		return
	}
	if fl, ok := tile.Decoration.(*Flower); ok {
		fl.Disturb(e.now)
		e.emit(Event{Type: EventFlowerDisturbed, Tile: cur})
	}
}

// release clears the owning tile once a tree has faded out
func (e *GameEngine) release(ent entity) {
	tree, ok := ent.(*Tree)
	if !ok {
		return
	}
	tile, err := e.grid.TileAt(tree.tile.X, tree.tile.Y)
	if err == nil && tile.Decoration == Decoration(tree) {
		tile.Decoration = nil
	}
}

func (e *GameEngine) emit(ev Event) {
	ev.At = e.now
	e.events = append(e.events, ev)
}

// Tick returns the number of frames run
func (e *GameEngine) Tick() uint64 {
	return e.tick
}

// Elapsed returns the session clock
func (e *GameEngine) Elapsed() time.Duration {
	return e.now
}

// SetIntent replaces the held-key snapshot read at the start of every frame
func (e *GameEngine) SetIntent(intent Intent) {
	e.intent = intent
}

// Intent returns the held-key snapshot
func (e *GameEngine) Intent() Intent {
	return e.intent
}

// Step resolves a single discrete intent immediately
func (e *GameEngine) Step(dir Direction) Resolution {
	return e.Resolve(dir)
}

// Hover records the tile under the pointer; off-grid coordinates clear it
func (e *GameEngine) Hover(x, y int) Position {
	if e.grid.InBounds(x, y) {
		e.hovered = Position{X: x, Y: y}
	} else {
		e.hovered = NoTile
	}
	return e.hovered
}

// Hovered returns the tile under the pointer, or NoTile
func (e *GameEngine) Hovered() Position {
	return e.hovered
}

// Commit resolves a click on the hovered tile
func (e *GameEngine) Commit() Resolution {
	if e.hovered == NoTile {
		return Resolution{Outcome: OutcomeIgnored, From: e.player.Tile(), Target: NoTile, Reason: "no tile hovered"}
	}
	return e.ResolveClick(e.hovered)
}

// Click hovers and commits in one call
func (e *GameEngine) Click(x, y int) Resolution {
	e.Hover(x, y)
	return e.Commit()
}

// Grid exposes the world for read-only inspection
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// Player exposes the player model
func (e *GameEngine) Player() *Player {
	return e.player
}

// ChopCooldown returns the time left before another chop may land
func (e *GameEngine) ChopCooldown() time.Duration {
	return e.chopCooldown
}

// ExpireCooldown clears the chop gate
func (e *GameEngine) ExpireCooldown() {
	e.chopCooldown = 0
}

// ActiveEntities returns the number of animated entities still alive
func (e *GameEngine) ActiveEntities() int {
	return len(e.entities)
}

// DescribeTile summarizes one tile
func (e *GameEngine) DescribeTile(x, y int) (TileView, error) {
	return e.grid.View(x, y)
}

// DrainEvents returns and clears the pending events
func (e *GameEngine) DrainEvents() []Event {
	events := e.events
	e.events = nil
	return events
}

// GetConfig returns the session configuration
func (e *GameEngine) GetConfig() *WorldConfig {
	return e.config
}

// Reset detaches every visual and draws the world again. A seeded config
// redraws the same world; seed 0 draws a fresh one.
func (e *GameEngine) Reset() error {
	for _, h := range e.ground {
		e.scene.Detach(h)
	}
	e.grid.Each(func(tile *Tile) {
		switch d := tile.Decoration.(type) {
		case *Tree:
			if d.State != TreeRemoved {
				e.scene.Detach(d.handle)
			}
		case *Rock:
			e.scene.Detach(d.handle)
		case *Flower:
			e.scene.Detach(d.handle)
		}
	})
	for _, c := range e.clouds {
		e.scene.Detach(c.handle)
	}
	e.scene.Detach(e.player.handle)

	e.chopCooldown = 0
	e.hovered = NoTile
	e.intent = Intent{}
	e.now = 0
	e.tick = 0
	e.events = nil

	e.rng = NewRand(e.config.Seed)
	grid := Generate(e.config, e.rng)
	spawn := SpawnPoint(grid, e.rng)
	return e.populate(grid, spawn, 0, GenerateClouds(e.config, e.rng))
}

// Snapshot captures the observable session state
func (e *GameEngine) Snapshot() *Snapshot {
	terrain, objects := e.grid.Rows()
	p := e.player

	snap := &Snapshot{
		ConfigName: e.config.Name,
		GridSize:   e.grid.Size(),
		Tick:       e.tick,
		ElapsedMS:  e.now.Milliseconds(),
		Terrain:    terrain,
		Objects:    objects,
		Player: PlayerView{
			Position:     p.Position,
			Tile:         p.Tile(),
			Facing:       p.Facing,
			TargetTile:   p.TargetTile,
			TargetFacing: p.TargetFacing,
			Mode:         p.Mode,
			Phase:        p.Phase,
			Pose:         p.Pose(),
		},
		CooldownMS: e.chopCooldown.Milliseconds(),
		Hovered:    e.hovered,
		Entities:   len(e.entities),
	}

	for _, ent := range e.entities {
		tree, ok := ent.(*Tree)
		if !ok || (tree.State == TreeHealthy && tree.Health == TreeMaxHealth) {
			continue
		}
		snap.Trees = append(snap.Trees, TreeView{
			Tile:      tree.tile,
			Health:    tree.Health,
			State:     tree.State,
			FallAngle: tree.FallAngle,
			Opacity:   tree.Opacity,
		})
	}
	return snap
}
