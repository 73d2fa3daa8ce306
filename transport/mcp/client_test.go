package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
)

// testSnapshot is a 5x5 meadow with the player at (1,1) facing down
func testSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		ConfigName: "classic",
		GridSize:   5,
		Tick:       12,
		ElapsedMS:  200,
		Terrain: []string{
			".....",
			".....",
			"..~..",
			"==...",
			".....",
		},
		Objects: []string{
			"T....",
			"..T..",
			".....",
			"...R.",
			"f....",
		},
		Player: engine.PlayerView{
			Tile:   engine.Position{X: 1, Y: 1},
			Facing: engine.Down.Facing(),
			Mode:   engine.ModeIdle,
		},
		Trees: []engine.TreeView{
			{Tile: engine.Position{X: 2, Y: 1}, Health: 66, State: engine.TreeHealthy},
		},
		CooldownMS: 150,
		Hovered:    engine.NoTile,
	}
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result to be returned")
	}
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "abcd", "running": true})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var result service.SessionInfo
	err := client.apiCall(context.Background(), "POST", "/api/sessions", map[string]string{"config_id": "calm"}, &result)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if gotMethod != "POST" || gotPath != "/api/sessions" {
		t.Errorf("Expected POST /api/sessions, got %s %s", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotBody["config_id"] != "calm" {
		t.Errorf("Expected config_id calm in body, got %v", gotBody)
	}
	if result.ID != "abcd" || !result.Running {
		t.Errorf("Unexpected decoded result: %+v", result)
	}
}

func TestClient_apiCallError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "error message from body",
			status:  http.StatusNotFound,
			body:    `{"error":"session not found"}`,
			wantErr: "session not found",
		},
		{
			name:    "status code fallback",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: "API error: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			err := client.apiCall(context.Background(), "GET", "/api/sessions/x/state", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestClient_handleCreateSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" || r.Method != "POST" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "b3e1",
			ConfigName: "calm",
			CreatedAt:  time.Now(),
			Snapshot:   testSnapshot(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"config_id": "calm",
	}))
	if err != nil {
		t.Fatalf("handleCreateSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "b3e1") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "Config: calm") {
		t.Errorf("Expected config name in result, got: %s", text)
	}
	if gotBody["config_id"] != "calm" {
		t.Errorf("Expected config_id to be forwarded, got %v", gotBody)
	}
}

func TestClient_handleStep(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		response  interface{}
		wantError bool
		wantText  []string
	}{
		{
			name:   "step succeeds",
			status: http.StatusOK,
			response: service.ActionResult{
				Resolution: engine.Resolution{Outcome: engine.OutcomeStep, Direction: engine.Down},
				Message:    "Walking down to (1,2)",
				Snapshot:   testSnapshot(),
				Events: []service.GameEvent{
					{Type: "step", Message: "Stepped onto (1,2)", SessionMS: 200},
				},
				LocalView3x3: []string{"T..", ".@T", "..~"},
			},
			wantText: []string{"✓ Walking down", "Stepped onto (1,2)", ".@T", "Facing: down"},
		},
		{
			name:   "ignored step",
			status: http.StatusOK,
			response: service.ActionResult{
				Resolution: engine.Resolution{Outcome: engine.OutcomeIgnored, Reason: "blocked"},
				Message:    "blocked by water",
			},
			wantText: []string{"✗ Ignored: blocked by water"},
		},
		{
			name:      "bad direction",
			status:    http.StatusBadRequest,
			response:  map[string]string{"error": "unknown direction: north"},
			wantError: true,
			wantText:  []string{"unknown direction: north"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotBody map[string]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				json.NewDecoder(r.Body).Decode(&gotBody)
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			result, err := client.handleStep(context.Background(), toolRequest("step", map[string]interface{}{
				"session_id": "s1",
				"direction":  "down",
				"intent":     "reach the path",
			}))
			if err != nil {
				t.Fatalf("handleStep returned error: %v", err)
			}

			if result.IsError != tt.wantError {
				t.Errorf("Expected IsError=%v, got %v", tt.wantError, result.IsError)
			}
			if gotPath != "/api/sessions/s1/step" {
				t.Errorf("Unexpected path %s", gotPath)
			}
			if gotBody["direction"] != "down" {
				t.Errorf("Expected direction down, got %v", gotBody)
			}

			text := resultText(t, result)
			for _, want := range tt.wantText {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in result, got: %s", want, text)
				}
			}
		})
	}
}

func TestClient_handleWalk(t *testing.T) {
	var gotBody struct {
		Directions []string `json:"directions"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(service.WalkResult{
			RequestedSteps: 2,
			StepsTaken:     1,
			StartPos:       engine.Position{X: 1, Y: 1},
			EndPos:         engine.Position{X: 1, Y: 2},
			Resolutions: []engine.Resolution{
				{Outcome: engine.OutcomeStep, Direction: engine.Down},
				{Outcome: engine.OutcomeIgnored, Direction: engine.Right, Reason: "water"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	t.Run("forwards directions", func(t *testing.T) {
		result, err := client.handleWalk(context.Background(), toolRequest("walk", map[string]interface{}{
			"session_id": "s1",
			"directions": []interface{}{"down", "right"},
		}))
		if err != nil {
			t.Fatalf("handleWalk failed: %v", err)
		}

		if len(gotBody.Directions) != 2 || gotBody.Directions[1] != "right" {
			t.Errorf("Unexpected directions forwarded: %v", gotBody.Directions)
		}

		text := resultText(t, result)
		for _, want := range []string{"walked 1 of 2 steps", "(1,1) -> (1,2)", "ignored (water)"} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in result, got: %s", want, text)
			}
		}
	})

	t.Run("rejects empty directions", func(t *testing.T) {
		result, err := client.handleWalk(context.Background(), toolRequest("walk", map[string]interface{}{
			"session_id": "s1",
		}))
		if err != nil {
			t.Fatalf("handleWalk failed: %v", err)
		}
		if !result.IsError {
			t.Error("Expected tool error for empty directions")
		}
	})
}

func TestClient_handleClickAndDescribeTile(t *testing.T) {
	health := 34
	var paths []string
	var clickBody map[string]int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/click"):
			json.NewDecoder(r.Body).Decode(&clickBody)
			json.NewEncoder(w).Encode(service.ActionResult{
				Resolution: engine.Resolution{Outcome: engine.OutcomeChop},
				Message:    "Chopped tree at (2,1)",
			})
		case strings.Contains(r.URL.Path, "/tiles/"):
			json.NewEncoder(w).Encode(engine.TileView{
				X: 2, Y: 1,
				Terrain:    engine.Grass,
				Decoration: engine.KindTree,
				Health:     &health,
				TreeState:  engine.TreeHealthy,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleClick(ctx, toolRequest("click", map[string]interface{}{
		"session_id": "s1",
		"x":          float64(2),
		"y":          float64(1),
	}))
	if err != nil {
		t.Fatalf("handleClick failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Chopped tree") {
		t.Errorf("Unexpected click result: %s", text)
	}
	if clickBody["x"] != 2 || clickBody["y"] != 1 {
		t.Errorf("Unexpected click body: %v", clickBody)
	}

	result, err = client.handleDescribeTile(ctx, toolRequest("describe_tile", map[string]interface{}{
		"session_id": "s1",
		"x":          float64(2),
		"y":          float64(1),
	}))
	if err != nil {
		t.Fatalf("handleDescribeTile failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Tile (2,1)", "Decoration: tree", "Health: 34", "Walkable: no"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}

	if len(paths) != 2 || paths[1] != "GET /api/sessions/s1/tiles/2/1" {
		t.Errorf("Unexpected requests: %v", paths)
	}

	t.Run("fractional coordinate", func(t *testing.T) {
		result, err := client.handleClick(ctx, toolRequest("click", map[string]interface{}{
			"session_id": "s1",
			"x":          1.5,
			"y":          float64(1),
		}))
		if err != nil {
			t.Fatalf("handleClick failed: %v", err)
		}
		if !result.IsError {
			t.Error("Expected tool error for fractional x")
		}
	})
}

func TestClient_handleAdvance(t *testing.T) {
	var gotBody map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(service.AdvanceResult{
			Frames:    60,
			ElapsedMS: 1200,
			Snapshot:  testSnapshot(),
			Events: []service.GameEvent{
				{Type: "tree_removed", Message: "Tree at (2,1) is gone", SessionMS: 1150},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleAdvance(context.Background(), toolRequest("advance", map[string]interface{}{
		"session_id": "s1",
		"ms":         float64(1000),
	}))
	if err != nil {
		t.Fatalf("handleAdvance failed: %v", err)
	}

	if gotBody["ms"] != 1000 {
		t.Errorf("Expected ms 1000, got %v", gotBody)
	}
	text := resultText(t, result)
	for _, want := range []string{"Advanced 60 frames", "[1150ms] Tree at (2,1) is gone"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleListConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]service.ConfigInfo{
			{ConfigID: "classic", Name: "Classic Meadow", Description: "The default grove", GridSize: 20, TreeChance: 0.15},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListConfigs(context.Background(), toolRequest("list_configs", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleListConfigs failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Classic Meadow (config_id: classic)", "Grid: 20x20", "Trees: 15%"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatSnapshot(t *testing.T) {
	text := formatSnapshot(testSnapshot())

	expected := []string{
		"Position: (1,1)",
		"Facing: down",
		"Mode: idle",
		"Chop cooldown: 150ms",
		// grid rows: objects override terrain, player drawn as @
		"T....",
		".@T..",
		"..~..",
		"==.R.",
		"f....",
		"Tree (2,1): health 66, healthy",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in snapshot, got:\n%s", want, text)
		}
	}

	if strings.Contains(text, "Hovered") {
		t.Errorf("Did not expect hovered line with no hovered tile:\n%s", text)
	}

	if got := formatSnapshot(nil); got != "No snapshot available" {
		t.Errorf("Unexpected nil snapshot text: %q", got)
	}
}

func TestFormatLocal3x3(t *testing.T) {
	snap := testSnapshot()
	snap.Player.Tile = engine.Position{X: 0, Y: 0}

	got := formatLocal3x3(snap)
	want := "###\n#@.\n#..\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFacingName(t *testing.T) {
	for _, dir := range engine.Directions {
		if got := facingName(dir.Facing()); got != string(dir) {
			t.Errorf("facingName(%s) = %s", dir, got)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), toolRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Grovewalk - Instructions",
		"MAP LEGEND",
		"CHOPPING",
		"300ms cooldown",
		"advance",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected instructions to contain '%s'", content)
		}
	}
}
