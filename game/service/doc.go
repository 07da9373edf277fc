// Package service provides the business logic layer for the Drone Safari game.
//
// The service package implements:
//   - Multi-session game management
//   - Layout loading and saving through a ConfigManager
//   - Command dispatch, including bounded command sequences
//   - In-memory command history
//   - Solver access for hints and autopilots
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages layout loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Each session owns one engine; the service holds a single
// lock around every engine access so that concurrent transports never drive
// the same engine at once.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs", logger)
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.Move(ctx, info.ID, "forward", false)
//
// Gameplay failures such as crashes are not errors: they come back as a
// CommandResult with a terminal game state. Errors are reserved for unknown
// sessions, missing layouts and invalid layouts.
package service
