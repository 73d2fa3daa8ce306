package terminal

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/scene"
)

// frameInterval paces polling and redraws (~60 FPS)
const frameInterval = 16 * time.Millisecond

// Options tune a terminal game
type Options struct {
	Clock      engine.Clock
	HoldWindow time.Duration
	Sound      Sounder
}

// Game runs one world in a terminal
type Game struct {
	screen tcell.Screen
	config *engine.WorldConfig
	engine *engine.GameEngine
	canvas *Canvas
	loop   *engine.Loop
	clock  engine.Clock
	input  *Input
	sound  Sounder

	status     string
	lastResult engine.Resolution
}

// NewGame resolves the asset manifest and builds a world drawn onto screen.
// Asset failures abort before any world exists.
func NewGame(ctx context.Context, screen tcell.Screen, config *engine.WorldConfig, opts Options) (*Game, error) {
	lib, err := scene.Preload(ctx, GlyphLoader{}, scene.DefaultManifest(config.TreeVariants, config.RockVariants, config.FlowerVariants))
	if err != nil {
		return nil, err
	}

	canvas := NewCanvas(config.GridSize)
	eng, err := engine.NewEngine(config, canvas, lib)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}

	g := &Game{
		screen: screen,
		config: config,
		engine: eng,
		canvas: canvas,
		loop:   engine.NewLoop(eng, config, clock, nil),
		clock:  clock,
		input:  NewInput(opts.HoldWindow),
		sound:  opts.Sound,
		status: "WASD/arrows move, click to act, r resets, q quits",
	}

	w, h := screen.Size()
	canvas.Layout(w, h)
	return g, nil
}

// Engine exposes the running world
func (g *Game) Engine() *engine.GameEngine {
	return g.engine
}

// Run polls input and advances the world until ctx ends or the player quits
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	g.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !g.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			g.Tick()
		}
	}
}

// HandleEvent applies one terminal event. Returns false to quit.
func (g *Game) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch g.input.HandleKey(ev, g.clock.Now()) {
		case ActionQuit:
			return false
		case ActionReset:
			g.reset()
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := g.canvas.ScreenToTile(col, row)
		g.engine.Hover(x, y)
		if g.input.HandleMouse(ev) == ActionClick {
			g.lastResult = g.engine.Commit()
			g.status = describe(g.lastResult)
			log.Printf("[CLICK] (%d,%d) outcome=%s reason=%q", x, y, g.lastResult.Outcome, g.lastResult.Reason)
		}

	case *tcell.EventResize:
		w, h := g.screen.Size()
		g.canvas.Layout(w, h)
		g.screen.Sync()
	}
	return true
}

// Tick hands the held keys to the world, runs a frame when one is due and
// redraws
func (g *Game) Tick() {
	now := g.clock.Now()
	g.engine.SetIntent(g.input.Intent(now))
	if _, ran := g.loop.Frame(now); ran {
		g.dispatch(g.engine.DrainEvents())
	}
	g.Draw()
}

func (g *Game) dispatch(events []engine.Event) {
	for _, ev := range events {
		if g.sound != nil {
			g.sound.Play(ev)
		}
		switch ev.Type {
		case engine.EventChop:
			g.status = fmt.Sprintf("Chop at (%d,%d), health %d", ev.Tile.X, ev.Tile.Y, ev.Health)
		case engine.EventTreeFalling:
			g.status = fmt.Sprintf("Timber! Tree at (%d,%d) is falling", ev.Tile.X, ev.Tile.Y)
		case engine.EventTreeRemoved:
			g.status = fmt.Sprintf("Tree at (%d,%d) is gone", ev.Tile.X, ev.Tile.Y)
		}
	}
}

func (g *Game) reset() {
	if err := g.engine.Reset(); err != nil {
		g.status = fmt.Sprintf("Reset failed: %v", err)
		log.Printf("[RESET] failed: %v", err)
		return
	}
	g.input.Release()
	g.status = "New world"
}

// Draw renders the world, a header and a status line
func (g *Game) Draw() {
	p := g.engine.Player()
	g.screen.Clear()
	g.canvas.SetPose(p.Pose())
	g.canvas.Draw(g.screen)

	tile := p.Tile()
	header := fmt.Sprintf("%s  tick %d  (%d,%d) %s", g.config.Name, g.engine.Tick(), tile.X, tile.Y, p.Mode)
	if cd := g.engine.ChopCooldown(); cd > 0 {
		header += fmt.Sprintf("  cooldown %dms", cd.Milliseconds())
	}
	if h := g.engine.Hovered(); h != engine.NoTile {
		header += fmt.Sprintf("  hover (%d,%d)", h.X, h.Y)
	}

	_, row := g.canvas.TileToScreen(0, g.config.GridSize)
	col, _ := g.canvas.TileToScreen(0, 0)
	if g.canvas.originY > 0 {
		drawText(g.screen, col, 0, header, tcell.StyleDefault.Bold(true))
	}
	drawText(g.screen, col, row, g.status, tcell.StyleDefault)
	g.screen.Show()
}

func drawText(screen tcell.Screen, col, row int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(col, row, r, nil, style)
		col++
	}
}

func describe(res engine.Resolution) string {
	switch res.Outcome {
	case engine.OutcomeStep:
		return fmt.Sprintf("Walking %s to (%d,%d)", res.Direction, res.Target.X, res.Target.Y)
	case engine.OutcomeTurn:
		return fmt.Sprintf("Turning %s", res.Direction)
	case engine.OutcomeChop:
		return fmt.Sprintf("Chopping tree at (%d,%d)", res.Target.X, res.Target.Y)
	}
	if res.Reason != "" {
		return "Nothing happens: " + res.Reason
	}
	return "Nothing happens"
}
