package engine

import (
	"encoding/json"
	"fmt"
)

// CellType represents different types of grid cells
type CellType string

const (
	Empty    CellType = "empty"
	Tree     CellType = "tree"
	Zebra    CellType = "zebra"
	Elephant CellType = "elephant"
	Oryx     CellType = "oryx"

	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 50
	MinShotBudget   = 1
	MaxShotBudget   = 50
	MaxBulkCommands = 50

	// SensorRange is the Chebyshev radius covered by Scan.
	SensorRange = 2
	// CameraRange is how many cells ahead the camera frames its subject.
	CameraRange = 2
)

// Target returns the target occupying a cell of this type, if any.
func (c CellType) Target() (Target, bool) {
	switch c {
	case Zebra:
		return TargetZebra, true
	case Elephant:
		return TargetElephant, true
	case Oryx:
		return TargetOryx, true
	}
	return 0, false
}

// Target identifies one of the three animals that must be photographed.
type Target int

const (
	TargetZebra Target = iota
	TargetElephant
	TargetOryx

	NumTargets = 3
)

// AllTargets lists the targets in their canonical order.
var AllTargets = [NumTargets]Target{TargetZebra, TargetElephant, TargetOryx}

func (t Target) String() string {
	return string(t.Cell())
}

// Cell returns the grid cell type used to place this target.
func (t Target) Cell() CellType {
	switch t {
	case TargetZebra:
		return Zebra
	case TargetElephant:
		return Elephant
	case TargetOryx:
		return Oryx
	}
	return Empty
}

// Title returns the capitalised name used in player-facing messages.
func (t Target) Title() string {
	switch t {
	case TargetZebra:
		return "Zebra"
	case TargetElephant:
		return "Elephant"
	case TargetOryx:
		return "Oryx"
	}
	return "Unknown"
}

func (t Target) MarshalText() ([]byte, error) {
	if t < 0 || t >= NumTargets {
		return nil, fmt.Errorf("invalid target %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Target) UnmarshalText(b []byte) error {
	target, ok := CellType(b).Target()
	if !ok {
		return fmt.Errorf("unknown target %q", string(b))
	}
	*t = target
	return nil
}

// Photographed is the per-target photo record. The target set is closed, so
// it is a fixed array indexed by Target rather than a map.
type Photographed [NumTargets]bool

// All reports whether every target has been photographed.
func (p Photographed) All() bool {
	for _, ok := range p {
		if !ok {
			return false
		}
	}
	return true
}

// Count returns how many targets have been photographed.
func (p Photographed) Count() int {
	n := 0
	for _, ok := range p {
		if ok {
			n++
		}
	}
	return n
}

func (p Photographed) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]bool{
		Zebra.String():    p[TargetZebra],
		Elephant.String(): p[TargetElephant],
		Oryx.String():     p[TargetOryx],
	})
}

func (p *Photographed) UnmarshalJSON(b []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out Photographed
	for name, ok := range m {
		target, found := CellType(name).Target()
		if !found {
			return fmt.Errorf("unknown target %q", name)
		}
		out[target] = ok
	}
	*p = out
	return nil
}

func (c CellType) String() string {
	return string(c)
}

// Position represents row,col coordinates. Rows grow toward the north.
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Step returns the position n cells away along heading h.
func (p Position) Step(h Heading, n int) Position {
	dr, dc := h.Vector()
	return Position{Row: p.Row + dr*n, Col: p.Col + dc*n}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// MoveTrail records a successful move for renderers.
type MoveTrail struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// RotationTrail records a turn for renderers.
type RotationTrail struct {
	Position Position `json:"position"`
	From     Heading  `json:"from"`
	To       Heading  `json:"to"`
}

// PhotoRecord maps a photographed cell to the shot index that framed it.
type PhotoRecord struct {
	Position Position `json:"position"`
	Shot     int      `json:"shot"`
}

// FailureReason explains why a game was lost.
type FailureReason string

const (
	NoFailure     FailureReason = ""
	BoundaryCrash FailureReason = "boundary_crash"
	TreeCrash     FailureReason = "tree_crash"
	AnimalCrash   FailureReason = "animal_crash"
	ScaredAnimal  FailureReason = "scared_animal"
	OutOfPictures FailureReason = "out_of_pictures"
)

type phase uint8

const (
	phaseActive phase = iota
	phaseWon
	phaseLost
)

// Outcome is the game result: Active, Won, or Lost with exactly one reason.
// The zero value is Active.
type Outcome struct {
	phase  phase
	reason FailureReason
}

// Active returns the outcome of a game still in play.
func Active() Outcome { return Outcome{phase: phaseActive} }

// Won returns the outcome of a game where every target was photographed.
func Won() Outcome { return Outcome{phase: phaseWon} }

// Lost returns a losing outcome carrying its reason.
func Lost(reason FailureReason) Outcome {
	return Outcome{phase: phaseLost, reason: reason}
}

// IsOver reports whether the outcome is terminal.
func (o Outcome) IsOver() bool { return o.phase != phaseActive }

// IsWon reports whether the game was won.
func (o Outcome) IsWon() bool { return o.phase == phaseWon }

// Reason returns the failure reason, or NoFailure unless the game was lost.
func (o Outcome) Reason() FailureReason {
	if o.phase != phaseLost {
		return NoFailure
	}
	return o.reason
}

func (o Outcome) String() string {
	switch o.phase {
	case phaseWon:
		return "won"
	case phaseLost:
		return "lost"
	}
	return "active"
}

type outcomeJSON struct {
	State  string        `json:"state"`
	Reason FailureReason `json:"reason,omitempty"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{State: o.String(), Reason: o.Reason()})
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var raw outcomeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.State {
	case "active", "":
		*o = Active()
	case "won":
		*o = Won()
	case "lost":
		if raw.Reason == NoFailure {
			return fmt.Errorf("lost outcome requires a reason")
		}
		*o = Lost(raw.Reason)
	default:
		return fmt.Errorf("unknown outcome state %q", raw.State)
	}
	return nil
}

// Event is a machine-readable code describing what a command did.
type Event string

const (
	EventStarted             Event = "started"
	EventReset               Event = "reset"
	EventMoved               Event = "moved"
	EventTurned              Event = "turned"
	EventBoundaryCrash       Event = "boundary_crash"
	EventTreeCrash           Event = "tree_crash"
	EventAnimalCrash         Event = "animal_crash"
	EventScaredAnimal        Event = "scared_animal"
	EventPhotographed        Event = "photographed"
	EventAlreadyPhotographed Event = "already_photographed"
	EventViewBlocked         Event = "view_blocked"
	EventPhotographedTree    Event = "photographed_tree"
	EventNothingInRange      Event = "nothing_in_range"
	EventOutOfPictures       Event = "out_of_pictures"
	EventGameOver            Event = "game_over"
	EventInvalidCommand      Event = "invalid_command"
)

// ResultStatus classifies how a command was handled.
type ResultStatus string

const (
	// Applied commands changed engine state.
	Applied ResultStatus = "applied"
	// Rejected commands carried an unrecognised argument; nothing changed.
	Rejected ResultStatus = "rejected"
	// Ignored commands arrived after game over; nothing changed.
	Ignored ResultStatus = "ignored"
)

// Result is returned by every command. Message is the human-readable text.
type Result struct {
	Status  ResultStatus `json:"status"`
	Event   Event        `json:"event"`
	Message string       `json:"message"`
}

// OK reports whether the command was applied.
func (r Result) OK() bool { return r.Status == Applied }

// Status is a read-only snapshot of the engine. It shares no memory with the
// engine that produced it.
type Status struct {
	ConfigName            string          `json:"config_name"`
	GridSize              int             `json:"grid_size"`
	Grid                  [][]CellType    `json:"grid"`
	Position              Position        `json:"position"`
	Facing                Heading         `json:"facing"`
	Photographed          Photographed    `json:"animals_photographed"`
	ShotBudget            int             `json:"shot_budget"`
	ShotsRemaining        int             `json:"pictures_remaining"`
	ShotsTaken            int             `json:"pictures_taken"`
	TotalMoves            int             `json:"total_moves"`
	TotalTurns            int             `json:"total_turns"`
	PhotographedLocations []PhotoRecord   `json:"photographed_locations"`
	ScaredLocations       []Position      `json:"scared_locations"`
	MovementTrail         []MoveTrail     `json:"movement_trail"`
	RotationTrail         []RotationTrail `json:"rotation_trail"`
	Outcome               Outcome         `json:"outcome"`
	GameOver              bool            `json:"game_over"`
	GameWon               bool            `json:"game_won"`
	FailureReason         FailureReason   `json:"failure_reason,omitempty"`
	Message               string          `json:"message"`
	LastEvent             Event           `json:"last_event"`
	GridView              []string        `json:"grid_view,omitempty"`
}
