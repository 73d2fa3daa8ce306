package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/grovewalk/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Running        bool                `json:"running"`
	Snapshot       *engine.Snapshot    `json:"snapshot"`
	WorldConfig    *engine.WorldConfig `json:"world_config"`
}

// ActionResult contains the result of a step, click or hover
type ActionResult struct {
	Resolution engine.Resolution `json:"resolution"`
	Snapshot   *engine.Snapshot  `json:"snapshot"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`

	// LocalView3x3 is the player's neighbourhood, '@' at the centre
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// WalkResult contains the result of a sequence of settled steps
type WalkResult struct {
	RequestedSteps int                 `json:"requested_steps"`
	StepsTaken     int                 `json:"steps_taken"`
	Truncated      bool                `json:"truncated,omitempty"`
	Limit          int                 `json:"limit,omitempty"`
	StartPos       engine.Position     `json:"start_pos"`
	EndPos         engine.Position     `json:"end_pos"`
	Resolutions    []engine.Resolution `json:"resolutions"`
	Events         []GameEvent         `json:"events,omitempty"`
	Snapshot       *engine.Snapshot    `json:"snapshot"`
	LocalView3x3   []string            `json:"local_view_3x3,omitempty"`
}

// AdvanceResult contains the result of manually ticking a paused session
type AdvanceResult struct {
	Frames    int              `json:"frames"`
	ElapsedMS int64            `json:"elapsed_ms"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Events    []GameEvent      `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "step", "turn", "chop", "tree_falling", "tree_fading", "tree_removed", "flower_disturbed", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	SessionMS int64           `json:"session_ms"`
	Position  engine.Position `json:"position"`
	Health    int             `json:"health,omitempty"`
}

// ConfigInfo provides information about a world configuration
type ConfigInfo struct {
	Filename    string  `json:"filename"`
	ConfigID    string  `json:"config_id"` // The identifier to use for session creation
	Name        string  `json:"name"`      // Display name
	Description string  `json:"description"`
	GridSize    int     `json:"grid_size"`
	TreeChance  float64 `json:"tree_chance"`
	Seed        uint64  `json:"seed,omitempty"`
}

// Broadcaster receives live updates from running sessions
type Broadcaster interface {
	BroadcastSnapshot(sessionID string, snapshot *engine.Snapshot)
	BroadcastEvents(sessionID string, events []GameEvent)
}

// Session represents an active game session. The embedded mutex serializes
// every engine mutation, including the session loop.
type Session struct {
	sync.Mutex

	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.WorldConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	loopMu sync.Mutex
	stop   context.CancelFunc
	done   chan struct{}
}

// Touch records an access. The caller must not hold the session lock.
func (s *Session) Touch(at time.Time) {
	s.Lock()
	s.LastAccessedAt = at
	s.Unlock()
}

// LastAccess returns the last recorded access time
func (s *Session) LastAccess() time.Time {
	s.Lock()
	defer s.Unlock()
	return s.LastAccessedAt
}

// Running reports whether the session loop is active
func (s *Session) Running() bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	return s.stop != nil
}

// Start runs loop in its own goroutine until ctx is cancelled or Stop is called
func (s *Session) Start(ctx context.Context, loop *engine.Loop) {
	s.loopMu.Lock()
	if s.stop != nil {
		s.loopMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.stop = cancel
	s.done = done
	s.loopMu.Unlock()

	go func() {
		defer close(done)
		loop.Run(ctx)

		s.loopMu.Lock()
		if s.done == done {
			s.stop = nil
			s.done = nil
		}
		s.loopMu.Unlock()
		cancel()
	}()
}

// Stop cancels the session loop and waits for it to exit
func (s *Session) Stop() {
	s.loopMu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.done = nil
	s.loopMu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}
