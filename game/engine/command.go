package engine

import (
	"fmt"
	"strings"
)

// Action names accepted by Execute.
const (
	ActionMove    = "move"
	ActionTurn    = "turn"
	ActionPicture = "picture"
	ActionReset   = "reset"
)

// Command is one discrete input from a command source.
type Command struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`

	// Sensors appends a scan summary to the result message.
	Sensors bool `json:"sensors,omitempty"`
}

func (c Command) String() string {
	if c.Direction == "" {
		return c.Action
	}
	return c.Action + " " + c.Direction
}

// ParseCommand reads commands such as "move forward", "turn left",
// "picture" or "reset". Shorthands "forward"/"f", "tl"/"tr" and "p" are
// accepted as well.
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "move", "m", "fly":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("move needs a direction: forward, backward, left or right")
		}
		return Command{Action: ActionMove, Direction: fields[1]}, nil
	case "turn", "t", "rotate":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("turn needs a direction: left or right")
		}
		return Command{Action: ActionTurn, Direction: fields[1]}, nil
	case "picture", "take_picture", "photo", "p", "shoot":
		return Command{Action: ActionPicture}, nil
	case "reset":
		return Command{Action: ActionReset}, nil
	case "forward", "f", "backward", "b":
		return Command{Action: ActionMove, Direction: expandShorthand(fields[0])}, nil
	case "tl", "tr":
		return Command{Action: ActionTurn, Direction: expandShorthand(fields[0])}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q: use move, turn, picture or reset", fields[0])
}

func expandShorthand(s string) string {
	switch s {
	case "f":
		return string(Forward)
	case "b":
		return string(Backward)
	case "tl":
		return string(TurnLeft)
	case "tr":
		return string(TurnRight)
	}
	return s
}

// Execute dispatches one command synchronously. Unknown actions and
// direction tokens are rejected without touching state.
func (e *GameEngine) Execute(cmd Command) Result {
	var res Result
	switch strings.ToLower(cmd.Action) {
	case ActionMove:
		res = e.Move(RelativeDirection(strings.ToLower(cmd.Direction)))
	case ActionTurn:
		res = e.Turn(TurnDirection(strings.ToLower(cmd.Direction)))
	case ActionPicture, "take_picture", "photo":
		res = e.TakePicture()
	case ActionReset:
		res = e.Reset()
	default:
		return rejected(fmt.Errorf("unknown action %q: use move, turn, picture or reset", cmd.Action))
	}

	if cmd.Sensors && res.Status == Applied {
		res.Message += "\n\n" + FormatScan(e.Scan())
	}
	return res
}
