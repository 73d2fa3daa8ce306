package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/grovewalk/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrSessionRunning  = errors.New("session loop is running")
	ErrInvalidAdvance  = errors.New("invalid advance duration")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

const (
	// MaxAdvanceMS bounds a single manual advance
	MaxAdvanceMS = 60_000
	// MaxBulkSteps bounds a single Walk call
	MaxBulkSteps = 50
	// settleLimit bounds how long Walk waits for the player to come to rest
	settleLimit = 2 * time.Second
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager

	// realtime settings, set once by StartLoops
	mu            sync.RWMutex
	loopCtx       context.Context
	broadcaster   Broadcaster
	snapshotEvery int
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance. Sessions stay paused
// and advance only through Advance until StartLoops is called.
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.WorldConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the identifier the caller used, otherwise look it up by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	sess.Lock()
	sess.ConfigID = configID
	sess.Unlock()

	s.mu.RLock()
	realtime := s.loopCtx != nil
	s.mu.RUnlock()
	if realtime {
		s.startLoop(sess)
	}

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession stops the session loop and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Stop()
	return s.sessions.Delete(sessionID)
}

// SetIntent replaces the held-key snapshot
func (s *gameServiceImpl) SetIntent(ctx context.Context, sessionID string, intent engine.Intent) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Engine.SetIntent(intent)
	res := engine.Resolution{Outcome: engine.OutcomeIgnored, From: sess.Engine.Player().Tile(), Target: engine.NoTile, Reason: "held keys updated"}
	if dir, ok := intent.Direction(); ok {
		res.Direction = dir
	}
	return s.result(sess, res, describeIntent(intent)), nil
}

// Step resolves one directional intent
func (s *gameServiceImpl) Step(ctx context.Context, sessionID, direction string) (*ActionResult, error) {
	dir, err := engine.ParseDirection(strings.ToLower(strings.TrimSpace(direction)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, direction)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	res := sess.Engine.Step(dir)
	return s.result(sess, res, describeResolution(res)), nil
}

// Hover records the tile under the pointer
func (s *gameServiceImpl) Hover(ctx context.Context, sessionID string, x, y int) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	hovered := sess.Engine.Hover(x, y)
	res := engine.Resolution{Outcome: engine.OutcomeIgnored, From: sess.Engine.Player().Tile(), Target: hovered, Reason: "hover"}
	message := fmt.Sprintf("Hovering (%d,%d)", hovered.X, hovered.Y)
	if hovered == engine.NoTile {
		message = "Hover cleared"
	}
	return s.result(sess, res, message), nil
}

// Click hovers and commits in one call
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, x, y int) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	res := sess.Engine.Click(x, y)
	return s.result(sess, res, describeResolution(res)), nil
}

// Commit resolves a click on the hovered tile
func (s *gameServiceImpl) Commit(ctx context.Context, sessionID string) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	res := sess.Engine.Commit()
	return s.result(sess, res, describeResolution(res)), nil
}

// Walk steps in each direction and advances until the player rests before
// the next one. Only paused sessions can be walked.
func (s *gameServiceImpl) Walk(ctx context.Context, sessionID string, directions []string) (*WalkResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Running() {
		return nil, ErrSessionRunning
	}

	dirs := make([]engine.Direction, 0, len(directions))
	for _, d := range directions {
		dir, err := engine.ParseDirection(strings.ToLower(strings.TrimSpace(d)))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, d)
		}
		dirs = append(dirs, dir)
	}

	result := &WalkResult{RequestedSteps: len(dirs)}
	if len(dirs) > MaxBulkSteps {
		result.Truncated = true
		result.Limit = MaxBulkSteps
		dirs = dirs[:MaxBulkSteps]
	}

	sess.Lock()
	defer sess.Unlock()

	eng := sess.Engine
	tick := sess.Config.TickInterval()
	result.StartPos = eng.Player().Tile()

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := eng.Step(dir)
		result.Resolutions = append(result.Resolutions, res)

		for waited := time.Duration(0); eng.Player().Busy() && waited < settleLimit; waited += tick {
			eng.Update(tick)
		}
		if res.Outcome == engine.OutcomeStep {
			result.StepsTaken++
		}
	}

	result.EndPos = eng.Player().Tile()
	result.Events = s.drain(sess)
	result.Snapshot = eng.Snapshot()
	result.LocalView3x3 = buildLocal3x3(result.Snapshot)
	return result, nil
}

// Advance ticks a paused session forward by ms at the configured cadence
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, ms int) (*AdvanceResult, error) {
	if ms <= 0 || ms > MaxAdvanceMS {
		return nil, fmt.Errorf("%w: %dms (1-%d)", ErrInvalidAdvance, ms, MaxAdvanceMS)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Running() {
		return nil, ErrSessionRunning
	}

	sess.Lock()
	defer sess.Unlock()

	tick := sess.Config.TickInterval()
	remaining := time.Duration(ms) * time.Millisecond
	frames := 0
	for remaining > 0 {
		dt := min(tick, remaining)
		sess.Engine.Update(dt)
		remaining -= dt
		frames++
	}

	return &AdvanceResult{
		Frames:    frames,
		ElapsedMS: sess.Engine.Elapsed().Milliseconds(),
		Events:    s.drain(sess),
		Snapshot:  sess.Engine.Snapshot(),
	}, nil
}

// Reset draws a fresh world with the session's config
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}
	sess.Engine.DrainEvents()
	return sess.Engine.Snapshot(), nil
}

// StartLoops switches the service to realtime: every current and future
// session runs its own loop until ctx is done. broadcaster may be nil.
func (s *gameServiceImpl) StartLoops(ctx context.Context, broadcaster Broadcaster, snapshotEvery int) {
	s.mu.Lock()
	s.loopCtx = ctx
	s.broadcaster = broadcaster
	s.snapshotEvery = snapshotEvery
	s.mu.Unlock()

	for _, sess := range s.sessions.List() {
		s.startLoop(sess)
	}
}

func (s *gameServiceImpl) startLoop(sess *Session) {
	s.mu.RLock()
	ctx, b, every := s.loopCtx, s.broadcaster, s.snapshotEvery
	s.mu.RUnlock()

	loop := engine.NewLoop(sess.Engine, sess.Config, nil, sess)
	loop.OnFrame = func(time.Duration) {
		sess.Lock()
		events := s.drain(sess)
		var snap *engine.Snapshot
		if every > 0 && sess.Engine.Tick()%uint64(every) == 0 {
			snap = sess.Engine.Snapshot()
		}
		sess.Unlock()

		if b == nil {
			return
		}
		if len(events) > 0 {
			b.BroadcastEvents(sess.ID, events)
		}
		if snap != nil {
			b.BroadcastSnapshot(sess.ID, snap)
		}
	}
	sess.Start(ctx, loop)
}

// GetSnapshot returns the observable state of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.Snapshot(), nil
}

// DescribeTile summarizes one tile of a session's world
func (s *gameServiceImpl) DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	view, err := sess.Engine.DescribeTile(x, y)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.WorldConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.WorldConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// session looks a session up and touches its access time
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// info builds the public view of a session
func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	sess.Lock()
	snap := sess.Engine.Snapshot()
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       snap,
		WorldConfig:    sess.Config,
	}
	sess.Unlock()

	if info.ConfigName == "" {
		info.ConfigName = s.getConfigID(sess.Config.Name)
	}
	info.Running = sess.Running()
	return info
}

// result packages an action outcome. Caller holds the session lock.
func (s *gameServiceImpl) result(sess *Session, res engine.Resolution, message string) *ActionResult {
	snap := sess.Engine.Snapshot()
	return &ActionResult{
		Resolution:   res,
		Snapshot:     snap,
		Message:      message,
		Events:       s.drain(sess),
		LocalView3x3: buildLocal3x3(snap),
	}
}

// drain converts pending engine events. Caller holds the session lock.
func (s *gameServiceImpl) drain(sess *Session) []GameEvent {
	events := sess.Engine.DrainEvents()
	if len(events) == 0 {
		return nil
	}

	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, GameEvent{
			Type:      string(ev.Type),
			Message:   describeEvent(ev),
			Timestamp: now,
			SessionMS: ev.At.Milliseconds(),
			Position:  ev.Tile,
			Health:    ev.Health,
		})
	}
	return out
}

func describeEvent(ev engine.Event) string {
	x, y := ev.Tile.X, ev.Tile.Y
	switch ev.Type {
	case engine.EventStep:
		return fmt.Sprintf("Walking to (%d,%d)", x, y)
	case engine.EventTurn:
		return fmt.Sprintf("Turned in place at (%d,%d)", x, y)
	case engine.EventChop:
		if ev.Health > 0 {
			return fmt.Sprintf("Chopped the tree at (%d,%d), health %d", x, y, ev.Health)
		}
		return fmt.Sprintf("Chopped the tree at (%d,%d) down", x, y)
	case engine.EventTreeFalling:
		return fmt.Sprintf("Tree at (%d,%d) is falling", x, y)
	case engine.EventTreeFading:
		return fmt.Sprintf("Tree at (%d,%d) is fading", x, y)
	case engine.EventTreeRemoved:
		return fmt.Sprintf("Tree at (%d,%d) is gone", x, y)
	case engine.EventFlowerDisturbed:
		return fmt.Sprintf("Brushed past a flower at (%d,%d)", x, y)
	}
	return string(ev.Type)
}

func describeResolution(res engine.Resolution) string {
	switch res.Outcome {
	case engine.OutcomeStep:
		return fmt.Sprintf("Stepping %s to (%d,%d)", res.Direction, res.Target.X, res.Target.Y)
	case engine.OutcomeChop:
		return fmt.Sprintf("Chopped the tree at (%d,%d)", res.Target.X, res.Target.Y)
	case engine.OutcomeTurn:
		return fmt.Sprintf("Turned %s: %s", res.Direction, res.Reason)
	}
	return "Ignored: " + res.Reason
}

func describeIntent(intent engine.Intent) string {
	var held []string
	for _, d := range []struct {
		on   bool
		name string
	}{{intent.Up, "up"}, {intent.Down, "down"}, {intent.Left, "left"}, {intent.Right, "right"}} {
		if d.on {
			held = append(held, d.name)
		}
	}
	if len(held) == 0 {
		return "No keys held"
	}
	return "Holding " + strings.Join(held, "+")
}

// buildLocal3x3 renders the player's neighbourhood: '@' player, '#' off grid,
// then the decoration or terrain glyph of each tile
func buildLocal3x3(snap *engine.Snapshot) []string {
	if snap == nil {
		return nil
	}
	px, py := snap.Player.Tile.X, snap.Player.Tile.Y
	lines := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		var row strings.Builder
		for dx := -1; dx <= 1; dx++ {
			x, y := px+dx, py+dy
			switch {
			case dx == 0 && dy == 0:
				row.WriteByte('@')
			case y < 0 || y >= len(snap.Objects) || x < 0 || x >= len(snap.Objects[y]):
				row.WriteByte('#')
			case snap.Objects[y][x] != '.':
				row.WriteByte(snap.Objects[y][x])
			default:
				row.WriteByte(snap.Terrain[y][x])
			}
		}
		lines = append(lines, row.String())
	}
	return lines
}
