// Package session provides the in-memory session registry for Grovewalk.
//
// Manager stores service.Session values keyed by a case-insensitive ID.
// Generated IDs are 4 hex characters drawn from crypto/rand, short enough to
// type into an MCP tool call or a browser URL.
//
// Each session owns its own engine.GameEngine. The manager never touches the
// engine itself; the service layer serializes access through the session's
// embedded mutex.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions idle for longer than maxAge and stops
// any loop goroutine they were running. Sessions are not persisted; a restart
// starts with an empty registry.
package session
