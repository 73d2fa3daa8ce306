package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grovewalk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grovewalk - MCP Interface

This is a thin client that proxies all requests to the REST API server.

You walk a small character around a tile meadow. Trees can be chopped down,
flowers sway when you step on them, rocks and water block the way.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage worlds
- game_state: current snapshot with an ASCII map
- step: one directional intent (turns first if not facing that way)
- walk: several settled steps in one call
- click: click a tile; the player moves or chops along the dominant axis
- advance: let time pass in a paused session (falling trees need time)
- describe_tile: exact contents of one tile
- reset_game: draw a fresh world
- list_configs: available world configurations
- game_instructions: full rules

Sessions start paused: nothing moves until you call advance, walk or step.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right"},
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new world session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current snapshot with an ASCII map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Press a direction once. Turns toward it if needed, otherwise walks or chops the tree ahead.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction":  directionProperty("Direction to press"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are stepping this way",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "walk",
		Description: fmt.Sprintf("Press several directions in sequence, waiting for the player to settle after each (max %d)", service.MaxBulkSteps),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"directions": map[string]interface{}{
					"type":        "array",
					"items":       directionProperty("Direction"),
					"description": "Directions to press in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the route",
				},
			},
			Required: []string{"session_id", "directions"},
		},
	}, c.handleWalk)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click",
		Description: "Click a tile. The player acts one step along the dominant axis toward it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleClick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: fmt.Sprintf("Let time pass in a paused session (1-%d ms)", service.MaxAdvanceMS),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"ms": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds to simulate",
				},
			},
			Required: []string{"session_id", "ms"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the exact terrain, decoration and tree health of one tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Draw a fresh world with the same config",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available world configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full rules and map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatSnapshot(session.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		mode := "paused"
		if s.Running {
			mode = "running"
		}
		fmt.Fprintf(&result, "- %s (Config: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, mode, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snapshot engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snapshot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snapshot)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/step"), map[string]string{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleWalk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["directions"].([]interface{})

	directions := make([]string, 0, len(raw))
	for _, d := range raw {
		if dir, ok := d.(string); ok {
			directions = append(directions, dir)
		}
	}
	if len(directions) == 0 {
		return mcp.NewToolResultError("directions must not be empty"), nil
	}

	var result service.WalkResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/walk"), map[string][]string{"directions": directions}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatWalkResult(sessionID, &result)), nil
}

func (c *Client) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, err := intArg(args, "x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := intArg(args, "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/click"), map[string]int{"x": x, "y": y}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	ms, err := intArg(args, "ms")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.AdvanceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/advance"), map[string]int{"ms": ms}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Advanced %d frames (session time %dms)\n", result.Frames, result.ElapsedMS)
	writeEvents(&out, result.Events)
	out.WriteString("\n")
	out.WriteString(formatSnapshot(result.Snapshot))
	return mcp.NewToolResultText(out.String()), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, err := intArg(args, "x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := intArg(args, "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tile engine.TileView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/tiles/%d/%d", x, y)), nil, &tile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTile(&tile)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message  string           `json:"message"`
		Snapshot *engine.Snapshot `json:"snapshot"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Trees: %.0f%%\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize, config.TreeChance*100)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grovewalk - Instructions

THE WORLD:
A square meadow of tiles with a pond in the middle. Tiles may hold a tree,
a rock or a flower. Coordinates are (x,y), x to the right, y downward,
both 0-based.

MAP LEGEND:
• @ - You
• . - Grass (walkable)
• = - Path (walkable)
• ~ - Water (blocked)
• T - Standing tree (blocked, choppable)
• t - Felled tree still fading out (blocked until it disappears)
• R - Rock (blocked)
• f - Flower (walkable, sways when you step on it)
• # - Outside the world (only in the local 3x3 view)

MOVING:
• step presses one direction. If you are not facing it you only turn.
  If you are facing it you walk one tile, or chop the tree in front of you.
• You cannot act while turning or walking; extra presses are ignored.
• walk presses several directions and waits for you to settle after each.
• click targets a tile: you act one step along the larger axis toward it
  (ties go horizontal). Clicking your own tile does nothing.

CHOPPING:
• Each chop takes 34 health off a tree (it starts at 100), so the fourth
  chop fells it.
• Chops share a 300ms cooldown. Presses during the cooldown are ignored.
• A felled tree topples, then fades out. Its tile stays blocked until it
  is gone, about a second later. Use advance to let that time pass.

TIME:
• Sessions are paused by default: time only passes during advance, walk
  and the settling part of a step sequence.
• On a realtime server the world runs on its own and advance is refused.

TIPS:
• Use describe_tile when you are unsure what is ahead.
• The local 3x3 view in every result shows your immediate neighbourhood.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	mode := "paused"
	if session.Running {
		mode = "running"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nMode: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No snapshot available"
	}

	var result strings.Builder
	p := snap.Player

	fmt.Fprintf(&result, "Position: (%d,%d) | Facing: %s | Mode: %s | Time: %dms | Tick: %d\n",
		p.Tile.X, p.Tile.Y, facingName(p.Facing), p.Mode, snap.ElapsedMS, snap.Tick)
	if snap.CooldownMS > 0 {
		fmt.Fprintf(&result, "Chop cooldown: %dms\n", snap.CooldownMS)
	}
	if snap.Hovered != engine.NoTile {
		fmt.Fprintf(&result, "Hovered: (%d,%d)\n", snap.Hovered.X, snap.Hovered.Y)
	}
	result.WriteString("\n")

	if local := formatLocal3x3(snap); local != "" {
		result.WriteString("Local 3x3:\n")
		result.WriteString(local)
		result.WriteString("\n")
	}

	for y := range snap.Objects {
		for x := 0; x < len(snap.Objects[y]); x++ {
			result.WriteByte(mapChar(snap, x, y))
		}
		result.WriteString("\n")
	}

	for _, tree := range snap.Trees {
		fmt.Fprintf(&result, "Tree (%d,%d): health %d, %s\n", tree.Tile.X, tree.Tile.Y, tree.Health, tree.State)
	}

	return strings.TrimRight(result.String(), "\n")
}

// mapChar overlays player, decorations and terrain for one tile
func mapChar(snap *engine.Snapshot, x, y int) byte {
	switch {
	case x == snap.Player.Tile.X && y == snap.Player.Tile.Y:
		return '@'
	case y < 0 || y >= len(snap.Objects) || x < 0 || x >= len(snap.Objects[y]):
		return '#'
	case snap.Objects[y][x] != '.':
		return snap.Objects[y][x]
	case y < len(snap.Terrain) && x < len(snap.Terrain[y]):
		return snap.Terrain[y][x]
	default:
		return '.'
	}
}

func formatLocal3x3(snap *engine.Snapshot) string {
	if len(snap.Objects) == 0 {
		return ""
	}
	var b strings.Builder
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			b.WriteByte(mapChar(snap, snap.Player.Tile.X+dx, snap.Player.Tile.Y+dy))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func facingName(facing float64) string {
	for _, dir := range engine.Directions {
		if math.Abs(engine.AngleDiff(facing, dir.Facing())) < 0.1 {
			return string(dir)
		}
	}
	return fmt.Sprintf("%.2frad", facing)
}

func formatActionResult(result *service.ActionResult) string {
	var out strings.Builder

	res := result.Resolution
	switch res.Outcome {
	case engine.OutcomeStep, engine.OutcomeTurn, engine.OutcomeChop:
		fmt.Fprintf(&out, "✓ %s\n", result.Message)
	default:
		fmt.Fprintf(&out, "✗ Ignored: %s\n", result.Message)
	}
	writeEvents(&out, result.Events)

	if len(result.LocalView3x3) == 3 {
		out.WriteString("\nLocal 3x3:\n")
		out.WriteString(strings.Join(result.LocalView3x3, "\n"))
		out.WriteString("\n")
	}
	if result.Snapshot != nil {
		p := result.Snapshot.Player
		fmt.Fprintf(&out, "\nPosition: (%d,%d) | Facing: %s | Mode: %s\n", p.Tile.X, p.Tile.Y, facingName(p.Facing), p.Mode)
	}
	return strings.TrimRight(out.String(), "\n")
}

func formatWalkResult(sessionID string, result *service.WalkResult) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Session %s: walked %d of %d steps, (%d,%d) -> (%d,%d)\n",
		sessionID, result.StepsTaken, result.RequestedSteps,
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y)
	if result.Truncated {
		fmt.Fprintf(&out, "Only the first %d directions were used\n", result.Limit)
	}

	for i, res := range result.Resolutions {
		line := string(res.Outcome)
		if res.Reason != "" {
			line += " (" + res.Reason + ")"
		}
		fmt.Fprintf(&out, "%2d. %-5s %s\n", i+1, res.Direction, line)
	}
	writeEvents(&out, result.Events)

	if len(result.LocalView3x3) == 3 {
		out.WriteString("\nLocal 3x3:\n")
		out.WriteString(strings.Join(result.LocalView3x3, "\n"))
	}
	return strings.TrimRight(out.String(), "\n")
}

func writeEvents(out *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	out.WriteString("Events:\n")
	for _, ev := range events {
		fmt.Fprintf(out, "  [%dms] %s\n", ev.SessionMS, ev.Message)
	}
}

func formatTile(tile *engine.TileView) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Tile (%d,%d)\nTerrain: %s\n", tile.X, tile.Y, tile.Terrain)
	if tile.Decoration != "" {
		fmt.Fprintf(&out, "Decoration: %s (variant %d)\n", tile.Decoration, tile.Variant)
	} else {
		out.WriteString("Decoration: none\n")
	}
	if tile.Health != nil {
		fmt.Fprintf(&out, "Health: %d\n", *tile.Health)
	}
	if tile.TreeState != "" {
		fmt.Fprintf(&out, "Tree state: %s\n", tile.TreeState)
	}
	if tile.Walkable {
		out.WriteString("Walkable: yes")
	} else {
		out.WriteString("Walkable: no")
	}
	return out.String()
}
