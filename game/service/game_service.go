package service

import (
	"context"

	"github.com/wricardo/grovewalk/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Input
	SetIntent(ctx context.Context, sessionID string, intent engine.Intent) (*ActionResult, error)
	Step(ctx context.Context, sessionID, direction string) (*ActionResult, error)
	Hover(ctx context.Context, sessionID string, x, y int) (*ActionResult, error)
	Click(ctx context.Context, sessionID string, x, y int) (*ActionResult, error)
	Commit(ctx context.Context, sessionID string) (*ActionResult, error)
	Walk(ctx context.Context, sessionID string, directions []string) (*WalkResult, error)

	// Simulation
	Advance(ctx context.Context, sessionID string, ms int) (*AdvanceResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	StartLoops(ctx context.Context, broadcaster Broadcaster, snapshotEvery int)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileView, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.WorldConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.WorldConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.WorldConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.WorldConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles world configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.WorldConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.WorldConfig
	SaveConfig(name string, config *engine.WorldConfig) error
}
