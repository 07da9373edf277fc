package engine

import "fmt"

// TakePicture spends one shot photographing the cell two steps ahead.
// The shot is consumed whatever it frames.
func (e *GameEngine) TakePicture() Result {
	if e.outcome.IsOver() {
		return gameOverResult()
	}
	if e.shotsRemaining <= 0 {
		e.outcome = Lost(OutOfPictures)
		return e.finish(EventOutOfPictures,
			fmt.Sprintf("No pictures remaining! You've used all %d pictures.", e.config.ShotBudget))
	}

	e.shotsRemaining--
	e.shotsTaken++
	shot := e.shotsTaken

	subject := e.pos.Step(e.facing, CameraRange)
	blocker := e.pos.Step(e.facing, 1)

	var (
		event   Event
		message string
	)
	wasted := func(why string) string {
		return fmt.Sprintf("Picture #%d wasted! %s %d pictures remaining.", shot, why, e.shotsRemaining)
	}

	switch {
	case !e.inBounds(subject):
		event, message = EventNothingInRange, wasted("No animal in range to photograph.")

	case e.grid[blocker.Row][blocker.Col] == Tree:
		e.photoLocations[blocker] = shot
		event, message = EventViewBlocked, wasted("A tree is blocking your view.")

	default:
		e.photoLocations[subject] = shot
		cell := e.grid[subject.Row][subject.Col]
		target, isAnimal := cell.Target()
		switch {
		case isAnimal && e.photographed[target]:
			event, message = EventAlreadyPhotographed, wasted(target.Title()+" already photographed.")
		case isAnimal:
			e.photographed[target] = true
			event = EventPhotographed
			message = fmt.Sprintf("Picture #%d: Successfully photographed the %s! %d pictures remaining.",
				shot, target, e.shotsRemaining)
		case cell == Tree:
			event, message = EventPhotographedTree, wasted("You photographed a tree.")
		default:
			event, message = EventNothingInRange, wasted("No animal in range to photograph.")
		}
	}

	if e.photographed.All() {
		e.outcome = Won()
		message += " Congratulations! You've photographed all animals and won the game!"
	} else if e.shotsRemaining == 0 {
		e.outcome = Lost(OutOfPictures)
		message += " Game Over - No pictures left and mission incomplete!"
	}

	return e.finish(event, message)
}
