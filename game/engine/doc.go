// Package engine provides the core simulation for a grove walking game.
//
// The engine package implements:
//   - World generation (pond, paths, trees, rocks, flowers, clouds)
//   - Walkability, the single authority on where the player may stand
//   - Player movement as an idle / rotating / translating state machine
//   - Interaction resolution: step, turn or chop for each directional intent
//   - Per-entity animation (tree shake, fall and fade; flower sway)
//   - A fixed-step loop with a clamped frame delta
//
// Core Types:
//
// GameEngine is one session: it owns the grid, the player, the shared chop
// cooldown and the hovered tile. WorldConfig holds generation chances and
// tuning, loaded from JSON or YAML. Visuals go through scene.Scene, so the
// engine runs headless with a nil scene.
//
// Usage:
//
//	config := engine.DefaultConfig()
//	eng, err := engine.NewEngine(config, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Step(engine.Right)
//	eng.Update(16 * time.Millisecond)
//	snap := eng.Snapshot()
//
// Game Rules:
//
// The player walks one tile per intent. Walking into a standing tree while
// facing it chops it; three chops fell it, after which it topples, fades and
// frees its tile. Water and rocks always block. A misaligned player turns
// before walking or chopping.
package engine
