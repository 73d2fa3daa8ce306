// Package service provides the business logic layer for Grovewalk.
//
// The service package implements:
//   - Multi-session game management
//   - World configuration lookup
//   - Input routing (held keys, single steps, clicks and hovers)
//   - Manual ticking of paused sessions and per-session realtime loops
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages world configuration loading and validation.
// Broadcaster receives snapshots and events from running session loops.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// engine. Each Session owns one engine.GameEngine; the session's embedded
// mutex is held for every engine call, including the frames of its loop, so a
// session only ever has one mutator.
//
// Sessions start paused. Advance runs frames at the world's tick cadence on
// demand. After StartLoops every session gets its own engine.Loop goroutine
// and Advance is refused with ErrSessionRunning.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.Step(ctx, info.ID, "up")
//	adv, err := gameService.Advance(ctx, info.ID, 500)
package service
