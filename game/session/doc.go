// Package session provides in-memory session storage for the Drone Safari game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Expiry of idle sessions
//
// Manager satisfies service.SessionManager. Each session owns exactly one
// engine built from a private copy of its layout.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex digits of a random UUID. Lookups are
// case-insensitive, so "AB12CD34" and "ab12cd34" name the same session.
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
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for more than an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
//
// Sessions live only as long as the process. Nothing is written to disk.
package session
