// Package mcp exposes Drone Safari to AI agents over the Model Context Protocol.
//
// Client registers one MCP tool per game operation and forwards every call to
// the REST API in package api, so MCP players and browser watchers share the
// same sessions:
//   - create_session, list_sessions, get_session: session management
//   - game_status, scan, describe_cell: observation
//   - move, turn, take_picture, reset_game: single commands
//   - run_commands: up to engine.MaxBulkCommands commands in one call
//   - command_history: paginated history
//   - solve: shortest winning plan from the current state
//   - list_configs, game_instructions: layouts and rules
//
// Tool failures (unknown session, bad arguments, API errors) come back as MCP
// error results rather than protocol errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode: pass request bodies to the server
//	resp := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
