// Package engine provides the core rules for the Drone Safari game.
//
// The engine package implements the game mechanics including:
//   - Relative movement on a square grid with crash detection
//   - Rotation through a fixed four-heading cycle
//   - Photography with a limited shot budget
//   - Win and loss detection through an explicit Outcome value
//
// Core Types:
//
// GameEngine owns the grid, the drone pose, the shot inventory and the
// photographed record. Status returns a deep-copied snapshot for renderers
// and remote clients. GameConfig describes a layout; DefaultConfig returns
// the canonical 12x12 board.
//
// Usage:
//
//	eng := engine.NewEngineWithDefaults()
//
//	res := eng.Move(engine.Forward)
//	if res.Status == engine.Rejected {
//		log.Println(res.Message)
//	}
//
//	eng.Turn(engine.TurnRight)
//	eng.TakePicture()
//	status := eng.Status()
//
// Game Rules:
//
// The drone must photograph a zebra, an elephant and an oryx. A picture frames
// the cell two steps ahead, and a tree one step ahead blocks the view. Flying
// off the grid, into a tree or into an animal ends the game, and so does
// stopping next to an animal, which scares it away for good. Every picture
// costs one shot whether or not it hits. The game is won when all three
// animals are photographed and lost when the shots run out first.
//
// Coordinates are (row, col) with rows increasing toward the north. Turning
// left is counter-clockwise. An engine has a single writer; callers sharing
// one across goroutines must serialize access themselves.
package engine
