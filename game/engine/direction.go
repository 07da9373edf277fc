package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is wrapped by the direction parsers.
var ErrInvalidDirection = errors.New("invalid direction")

// Heading is one of the four absolute directions the drone can face.
// Rotation order is North, East, South, West, back to North.
type Heading int

const (
	North Heading = iota
	East
	South
	West

	numHeadings = 4
)

// TurnRight rotates one step clockwise.
func (h Heading) TurnRight() Heading { return (h + 1) % numHeadings }

// TurnLeft rotates one step counter-clockwise.
func (h Heading) TurnLeft() Heading { return (h + numHeadings - 1) % numHeadings }

// Reverse returns the opposite heading.
func (h Heading) Reverse() Heading { return (h + 2) % numHeadings }

// Vector returns the unit (row, col) step for the heading.
func (h Heading) Vector() (int, int) {
	switch h {
	case North:
		return 1, 0
	case East:
		return 0, 1
	case South:
		return -1, 0
	case West:
		return 0, -1
	}
	return 0, 0
}

// Symbol returns the arrow used to draw the drone in text views.
func (h Heading) Symbol() string {
	switch h {
	case North:
		return "^"
	case East:
		return ">"
	case South:
		return "v"
	case West:
		return "<"
	}
	return "?"
}

func (h Heading) String() string {
	switch h {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	}
	return fmt.Sprintf("Heading(%d)", int(h))
}

func (h Heading) valid() bool { return h >= North && h <= West }

// ParseHeading accepts heading names case-insensitively ("north", "N").
func ParseHeading(s string) (Heading, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	}
	return 0, fmt.Errorf("invalid heading %q: use north, east, south or west", s)
}

func (h Heading) MarshalText() ([]byte, error) {
	if !h.valid() {
		return nil, fmt.Errorf("invalid heading %d", int(h))
	}
	return []byte(h.String()), nil
}

func (h *Heading) UnmarshalText(b []byte) error {
	parsed, err := ParseHeading(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// RelativeDirection is a move direction relative to the current heading.
type RelativeDirection string

const (
	Forward  RelativeDirection = "forward"
	Backward RelativeDirection = "backward"
	Left     RelativeDirection = "left"
	Right    RelativeDirection = "right"
)

// MoveTypes lists the accepted move directions in display order.
var MoveTypes = []RelativeDirection{Forward, Backward, Left, Right}

// Resolve maps the relative direction onto an absolute heading.
func (d RelativeDirection) Resolve(facing Heading) Heading {
	switch d {
	case Backward:
		return facing.Reverse()
	case Right:
		return facing.TurnRight()
	case Left:
		return facing.TurnLeft()
	}
	return facing
}

// ParseRelativeDirection validates a move direction token.
func ParseRelativeDirection(s string) (RelativeDirection, error) {
	d := RelativeDirection(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Forward, Backward, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("%w %q for move: use %s", ErrInvalidDirection, s, moveTypeList())
}

func moveTypeList() string {
	names := make([]string, len(MoveTypes))
	for i, m := range MoveTypes {
		names[i] = "'" + string(m) + "'"
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// TurnDirection is the rotation sense for Turn.
type TurnDirection string

const (
	TurnLeft  TurnDirection = "left"
	TurnRight TurnDirection = "right"
)

// ParseTurnDirection validates a turn direction token.
func ParseTurnDirection(s string) (TurnDirection, error) {
	d := TurnDirection(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case TurnLeft, TurnRight:
		return d, nil
	}
	return "", fmt.Errorf("%w %q for turn: use 'left' or 'right'", ErrInvalidDirection, s)
}

// Apply rotates h in this direction.
func (d TurnDirection) Apply(h Heading) Heading {
	if d == TurnLeft {
		return h.TurnLeft()
	}
	return h.TurnRight()
}
