package engine

import (
	"sort"
)

const gameOverMessage = "Game is over! Reset to play again."

// Engine provides the main interface for game operations
type Engine interface {
	// Commands
	Move(direction RelativeDirection) Result
	Turn(direction TurnDirection) Result
	TakePicture() Result
	Reset() Result
	Execute(cmd Command) Result

	// Read-only views
	Status() *Status
	Outcome() Outcome
	IsGameOver() bool
	IsVictory() bool
	Position() Position
	Facing() Heading
	ShotsRemaining() int
	CellAt(p Position) (CellType, bool)
	Scan() []Detection
	Config() *GameConfig
}

// GameEngine implements the Engine interface. It assumes a single writer;
// callers that share an engine across goroutines must serialize access.
type GameEngine struct {
	config *GameConfig

	grid           [][]CellType
	pos            Position
	facing         Heading
	photographed   Photographed
	shotsRemaining int
	shotsTaken     int
	totalMoves     int
	totalTurns     int
	photoLocations map[Position]int
	scared         []Position
	moveTrail      []MoveTrail
	rotationTrail  []RotationTrail
	outcome        Outcome
	message        string
	lastEvent      Event
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config.Clone()}
	engine.init()
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine on the canonical layout
func NewEngineWithDefaults() *GameEngine {
	engine := &GameEngine{config: DefaultConfig()}
	engine.init()
	return engine
}

func (e *GameEngine) init() {
	facing, _ := ParseHeading(e.config.StartFacing)

	e.grid = buildGrid(e.config)
	e.pos = e.config.Start
	e.facing = facing
	e.photographed = Photographed{}
	e.shotsRemaining = e.config.ShotBudget
	e.shotsTaken = 0
	e.totalMoves = 0
	e.totalTurns = 0
	e.photoLocations = make(map[Position]int)
	e.scared = nil
	e.moveTrail = nil
	e.rotationTrail = nil
	e.outcome = Active()
	e.message = e.config.WelcomeMessage()
	e.lastEvent = EventStarted
}

// Reset reinitializes every field to the configured layout
func (e *GameEngine) Reset() Result {
	e.init()
	return Result{Status: Applied, Event: EventReset, Message: "Game reset! Ready to start again."}
}

// Status returns a deep copy of the current game state
func (e *GameEngine) Status() *Status {
	grid := make([][]CellType, len(e.grid))
	for r := range e.grid {
		grid[r] = append([]CellType(nil), e.grid[r]...)
	}

	photos := make([]PhotoRecord, 0, len(e.photoLocations))
	for pos, shot := range e.photoLocations {
		photos = append(photos, PhotoRecord{Position: pos, Shot: shot})
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].Shot < photos[j].Shot })

	return &Status{
		ConfigName:            e.config.Name,
		GridSize:              e.config.GridSize,
		Grid:                  grid,
		Position:              e.pos,
		Facing:                e.facing,
		Photographed:          e.photographed,
		ShotBudget:            e.config.ShotBudget,
		ShotsRemaining:        e.shotsRemaining,
		ShotsTaken:            e.shotsTaken,
		TotalMoves:            e.totalMoves,
		TotalTurns:            e.totalTurns,
		PhotographedLocations: photos,
		ScaredLocations:       append([]Position{}, e.scared...),
		MovementTrail:         append([]MoveTrail{}, e.moveTrail...),
		RotationTrail:         append([]RotationTrail{}, e.rotationTrail...),
		Outcome:               e.outcome,
		GameOver:              e.outcome.IsOver(),
		GameWon:               e.outcome.IsWon(),
		FailureReason:         e.outcome.Reason(),
		Message:               e.message,
		LastEvent:             e.lastEvent,
		GridView:              e.renderGrid(),
	}
}

// Outcome returns the current game outcome
func (e *GameEngine) Outcome() Outcome {
	return e.outcome
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.outcome.IsOver()
}

// IsVictory returns whether all targets were photographed
func (e *GameEngine) IsVictory() bool {
	return e.outcome.IsWon()
}

// Position returns the drone position
func (e *GameEngine) Position() Position {
	return e.pos
}

// Facing returns the drone heading
func (e *GameEngine) Facing() Heading {
	return e.facing
}

// ShotsRemaining returns the number of pictures left
func (e *GameEngine) ShotsRemaining() int {
	return e.shotsRemaining
}

// Config returns a copy of the engine's configuration
func (e *GameEngine) Config() *GameConfig {
	return e.config.Clone()
}

// CellAt returns the content of an in-bounds cell.
func (e *GameEngine) CellAt(p Position) (CellType, bool) {
	if !e.inBounds(p) {
		return Empty, false
	}
	return e.grid[p.Row][p.Col], true
}

// Clone returns an independent engine in the same state.
func (e *GameEngine) Clone() *GameEngine {
	c := *e
	c.grid = make([][]CellType, len(e.grid))
	for r := range e.grid {
		c.grid[r] = append([]CellType(nil), e.grid[r]...)
	}
	c.photoLocations = make(map[Position]int, len(e.photoLocations))
	for pos, shot := range e.photoLocations {
		c.photoLocations[pos] = shot
	}
	c.scared = append([]Position(nil), e.scared...)
	c.moveTrail = append([]MoveTrail(nil), e.moveTrail...)
	c.rotationTrail = append([]RotationTrail(nil), e.rotationTrail...)
	return &c
}

func (e *GameEngine) inBounds(p Position) bool {
	n := len(e.grid)
	return p.Row >= 0 && p.Row < n && p.Col >= 0 && p.Col < n
}

// finish records the message and event of an applied command.
func (e *GameEngine) finish(event Event, message string) Result {
	e.message = message
	e.lastEvent = event
	return Result{Status: Applied, Event: event, Message: message}
}

func gameOverResult() Result {
	return Result{Status: Ignored, Event: EventGameOver, Message: gameOverMessage}
}

func rejected(err error) Result {
	return rejectedWith(err.Error())
}

// rejectedWith carries player-facing wording for an invalid command.
func rejectedWith(message string) Result {
	return Result{Status: Rejected, Event: EventInvalidCommand, Message: message}
}
