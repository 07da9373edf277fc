// Package solver plans winning command sequences for a Drone Safari engine.
//
// Solve runs a breadth-first search from the engine's current state. The
// search never crashes, never scares an animal and only spends shots that
// photograph a new target, so the board stays fixed along every explored
// path and a state is fully described by pose plus photo record. The
// resulting plan is replayed on a clone of the engine before it is
// returned.
package solver
