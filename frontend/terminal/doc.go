// Package terminal plays a Grovewalk world in a terminal.
//
// Canvas implements scene.Scene with a top-down projection: each tile is two
// columns wide, decorations and the player are glyphs over a tinted ground,
// falling trees lean, fading trees dim and clouds tint whatever they pass
// over. GlyphLoader implements scene.Loader by mapping manifest asset paths
// (assets/<template>.glb) to glyphs.
//
// Terminals report key presses but not releases, so Input treats a key as
// held for a short window after each press or repeat. Mouse motion hovers a
// tile and a left click commits the hovered tile.
//
// Audio plays a short tone on every chop and a falling glide when a tree
// topples.
package terminal
