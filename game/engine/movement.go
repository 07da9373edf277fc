package engine

import "fmt"

// Move flies the drone one cell in a direction relative to its heading.
// Checks run in a fixed order and the first match decides the outcome:
// boundary, tree, animal collision, then scaring adjacent animals.
func (e *GameEngine) Move(direction RelativeDirection) Result {
	if e.outcome.IsOver() {
		return gameOverResult()
	}
	raw := direction
	direction, err := ParseRelativeDirection(string(direction))
	if err != nil {
		return rejectedWith(fmt.Sprintf("Invalid move_type: %s. Use: %s", raw, moveTypeList()))
	}

	from := e.pos
	to := from.Step(direction.Resolve(e.facing), 1)

	if !e.inBounds(to) {
		// The out-of-range cell is kept so the crash site can be drawn.
		e.pos = to
		e.outcome = Lost(BoundaryCrash)
		return e.finish(EventBoundaryCrash, "Drone crashed! Flew outside the grid boundaries.")
	}

	switch cell := e.grid[to.Row][to.Col]; {
	case cell == Tree:
		e.pos = to
		e.outcome = Lost(TreeCrash)
		return e.finish(EventTreeCrash, "Drone crashed into a tree!")
	case isTarget(cell):
		e.pos = to
		e.outcome = Lost(AnimalCrash)
		return e.finish(EventAnimalCrash, "Drone crashed into an animal!")
	}

	if nearby := e.adjacentTargets(to); len(nearby) > 0 {
		for _, p := range nearby {
			e.grid[p.Row][p.Col] = Empty
			e.scared = append(e.scared, p)
		}
		e.pos = to
		e.outcome = Lost(ScaredAnimal)
		return e.finish(EventScaredAnimal, "Drone got too close to an animal and scared it away!")
	}

	e.pos = to
	e.totalMoves++
	e.moveTrail = append(e.moveTrail, MoveTrail{From: from, To: to})
	return e.finish(EventMoved, fmt.Sprintf("Moved %s to position %s, facing %s", direction, to, e.facing))
}

// Turn rotates the drone in place. Left is counter-clockwise.
func (e *GameEngine) Turn(direction TurnDirection) Result {
	if e.outcome.IsOver() {
		return gameOverResult()
	}
	direction, err := ParseTurnDirection(string(direction))
	if err != nil {
		return rejectedWith("Invalid turn direction. Use 'left' or 'right'.")
	}

	from := e.facing
	e.facing = direction.Apply(from)
	e.totalTurns++
	e.rotationTrail = append(e.rotationTrail, RotationTrail{Position: e.pos, From: from, To: e.facing})
	return e.finish(EventTurned, fmt.Sprintf("Turned %s, now facing %s", direction, e.facing))
}

// SafeStop reports whether a move can end on p without ending the game:
// an in-bounds empty cell with no target in its 8-neighbourhood.
func (e *GameEngine) SafeStop(p Position) bool {
	cell, ok := e.CellAt(p)
	return ok && cell == Empty && len(e.adjacentTargets(p)) == 0
}

// adjacentTargets returns the in-bounds cells in the 8-neighbourhood of p
// that still hold a target.
func (e *GameEngine) adjacentTargets(p Position) []Position {
	var found []Position
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Position{Row: p.Row + dr, Col: p.Col + dc}
			if e.inBounds(n) && isTarget(e.grid[n.Row][n.Col]) {
				found = append(found, n)
			}
		}
	}
	return found
}

func isTarget(c CellType) bool {
	_, ok := c.Target()
	return ok
}
