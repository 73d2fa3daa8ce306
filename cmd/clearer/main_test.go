package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/grovewalk/api"
	"github.com/wricardo/grovewalk/game/config"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
	"github.com/wricardo/grovewalk/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	yaml := "name: grove\ngrid_size: 8\nseed: 7\npond_radius: 1\ntree_chance: 0.4\n"
	if err := os.WriteFile(filepath.Join(dir, "grove.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)

	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func TestClearer_Run(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	client := NewClient(server.URL + "/")
	info, err := client.CreateSession(ctx, "grove")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if info.ID == "" || client.SessionID() != info.ID {
		t.Fatalf("Expected client bound to session, got %q", client.SessionID())
	}

	before := NewClearingStrategy(info.Snapshot).Standing()
	if before == 0 {
		t.Fatal("Expected trees in the test world")
	}

	clearer := &Clearer{client: client, maxActions: 2000}
	report, err := clearer.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Felled == 0 {
		t.Fatal("Expected at least one tree felled")
	}
	if report.Chops < report.Felled {
		t.Errorf("Expected at least one chop per tree, got %d chops for %d trees", report.Chops, report.Felled)
	}
	if report.Felled+report.Remaining != before {
		t.Errorf("Felled %d + remaining %d != %d standing at start", report.Felled, report.Remaining, before)
	}

	// Whatever still stands must be out of reach
	snap, err := client.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if target, ok := NewClearingStrategy(snap).NextTarget(snap.Player.Tile); ok {
		t.Errorf("Reachable tree left standing at %v", target.Tree)
	}
}

func TestClearer_MaxActions(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	client := NewClient(server.URL)
	if _, err := client.CreateSession(ctx, "grove"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	clearer := &Clearer{client: client, maxActions: 3}
	report, err := clearer.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Requests > 3 {
		t.Errorf("Expected at most 3 requests, got %d", report.Requests)
	}
}

func TestClient_Errors(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	client := NewClient(server.URL)

	if _, err := client.CreateSession(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown config")
	}

	client.Use("no-such-session")
	_, err := client.State(ctx)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 error, got %v", err)
	}

	if _, err := client.Walk(ctx, []engine.Direction{engine.Up}); err == nil {
		t.Error("Expected walk on missing session to fail")
	}
}

func TestClient_ResetAndAdvance(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	client := NewClient(server.URL)
	if _, err := client.CreateSession(ctx, "grove"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	advanced, err := client.Advance(ctx, 100)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if advanced.ElapsedMS < 100 || advanced.Snapshot == nil {
		t.Errorf("Unexpected advance result: %+v", advanced)
	}

	snap, err := client.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if snap == nil || snap.GridSize != 8 {
		t.Errorf("Expected 8x8 snapshot after reset, got %+v", snap)
	}
}

func TestBindSession(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	sessionFile := filepath.Join(t.TempDir(), ".session")

	first := NewClient(server.URL)
	if err := bindSession(ctx, first, "", "grove", sessionFile); err != nil {
		t.Fatalf("bindSession: %v", err)
	}
	saved, err := os.ReadFile(sessionFile)
	if err != nil || string(saved) != first.SessionID() {
		t.Fatalf("Expected session file to hold %q, got %q (%v)", first.SessionID(), saved, err)
	}

	second := NewClient(server.URL)
	if err := bindSession(ctx, second, "", "grove", sessionFile); err != nil {
		t.Fatalf("bindSession resume: %v", err)
	}
	if second.SessionID() != first.SessionID() {
		t.Errorf("Expected resumed session %q, got %q", first.SessionID(), second.SessionID())
	}

	third := NewClient(server.URL)
	if err := bindSession(ctx, third, "expired", "grove", ""); err != nil {
		t.Fatalf("bindSession fallback: %v", err)
	}
	if third.SessionID() == "expired" || third.SessionID() == "" {
		t.Errorf("Expected a new session, got %q", third.SessionID())
	}
}
