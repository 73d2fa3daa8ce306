// Package mcp provides the Model Context Protocol interface for Grovewalk.
//
// The mcp package is a thin client: every tool call is translated into a
// request against the REST API and the JSON response is rendered as text
// an agent can read.
//
// MCP Tools:
//
//   - create_session: Create a world session, optionally from a named config
//   - list_sessions: List all active sessions
//   - get_session: Get one session with its snapshot
//   - game_state: Current snapshot with an ASCII map
//   - step: Press one direction (turn, walk or chop)
//   - walk: Press several directions, settling after each
//   - click: Act one step toward a tile
//   - advance: Let time pass in a paused session
//   - describe_tile: Terrain, decoration and tree health of one tile
//   - reset_game: Draw a fresh world
//   - list_configs: List available world configurations
//   - game_instructions: Rules and map legend
//
// Map legend used in rendered snapshots:
//
//	@ player   . grass   = path   ~ water
//	T tree     t felled  R rock   f flower   # off grid
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
