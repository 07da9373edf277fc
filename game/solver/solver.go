package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

// ErrUnsolvable is returned when no sequence of commands wins from the
// current state.
var ErrUnsolvable = errors.New("no winning sequence exists from this state")

// checkEvery controls how often the search polls its context.
const checkEvery = 1024

// Plan is a shortest winning command sequence.
type Plan struct {
	Commands []engine.Command `json:"commands"`
	Explored int              `json:"explored"`
	Pictures int              `json:"pictures"`
}

// Strings renders the plan in ParseCommand syntax.
func (p *Plan) Strings() []string {
	out := make([]string, len(p.Commands))
	for i, cmd := range p.Commands {
		out[i] = cmd.String()
	}
	return out
}

type node struct {
	pos    engine.Position
	facing engine.Heading
	photos engine.Photographed
}

type edge struct {
	prev node
	cmd  engine.Command
}

// Solve searches for the shortest winning plan from eng's current state.
// eng is not modified. A game that is already won yields an empty plan;
// a game that is lost, or that cannot be won, yields ErrUnsolvable.
func Solve(ctx context.Context, eng *engine.GameEngine) (*Plan, error) {
	if eng.IsVictory() {
		return &Plan{Commands: []engine.Command{}}, nil
	}
	if eng.IsGameOver() {
		return nil, ErrUnsolvable
	}

	status := eng.Status()
	start := node{pos: status.Position, facing: status.Facing, photos: status.Photographed}
	shots := status.ShotsRemaining
	have := status.Photographed.Count()

	parents := map[node]edge{start: {}}
	queue := []node{start}
	explored := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		explored++

		if explored%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if cur.photos.All() {
			plan := &Plan{Commands: unwind(parents, start, cur), Explored: explored}
			if err := verify(eng, plan); err != nil {
				return nil, err
			}
			return plan, nil
		}

		for _, next := range successors(eng, cur, shots-(cur.photos.Count()-have)) {
			if _, seen := parents[next.to]; seen {
				continue
			}
			parents[next.to] = edge{prev: cur, cmd: next.cmd}
			queue = append(queue, next.to)
		}
	}

	return nil, ErrUnsolvable
}

type transition struct {
	to  node
	cmd engine.Command
}

// successors lists the safe transitions out of n.
func successors(eng *engine.GameEngine, n node, shotsLeft int) []transition {
	var out []transition

	for _, d := range engine.MoveTypes {
		to := n.pos.Step(d.Resolve(n.facing), 1)
		if !eng.SafeStop(to) {
			continue
		}
		out = append(out, transition{
			to:  node{pos: to, facing: n.facing, photos: n.photos},
			cmd: engine.Command{Action: engine.ActionMove, Direction: string(d)},
		})
	}

	for _, d := range []engine.TurnDirection{engine.TurnLeft, engine.TurnRight} {
		out = append(out, transition{
			to:  node{pos: n.pos, facing: d.Apply(n.facing), photos: n.photos},
			cmd: engine.Command{Action: engine.ActionTurn, Direction: string(d)},
		})
	}

	if shotsLeft > 0 {
		if target, ok := framed(eng, n); ok && !n.photos[target] {
			photos := n.photos
			photos[target] = true
			// A last shot that does not finish the set ends the game.
			if shotsLeft == 1 && !photos.All() {
				return out
			}
			out = append(out, transition{
				to:  node{pos: n.pos, facing: n.facing, photos: photos},
				cmd: engine.Command{Action: engine.ActionPicture},
			})
		}
	}
	return out
}

// framed returns the target a picture from n would capture.
func framed(eng *engine.GameEngine, n node) (engine.Target, bool) {
	if blocker, ok := eng.CellAt(n.pos.Step(n.facing, 1)); ok && blocker == engine.Tree {
		return 0, false
	}
	subject, ok := eng.CellAt(n.pos.Step(n.facing, engine.CameraRange))
	if !ok {
		return 0, false
	}
	return subject.Target()
}

func unwind(parents map[node]edge, start, end node) []engine.Command {
	var rev []engine.Command
	for cur := end; cur != start; {
		e := parents[cur]
		rev = append(rev, e.cmd)
		cur = e.prev
	}
	cmds := make([]engine.Command, len(rev))
	for i := range rev {
		cmds[i] = rev[len(rev)-1-i]
	}
	return cmds
}

// verify replays the plan on a clone and fills in the picture count.
func verify(eng *engine.GameEngine, plan *Plan) error {
	probe := eng.Clone()
	for i, cmd := range plan.Commands {
		res := probe.Execute(cmd)
		if res.Status != engine.Applied {
			return fmt.Errorf("plan step %d (%s) was %s: %s", i+1, cmd, res.Status, res.Message)
		}
		if cmd.Action == engine.ActionPicture {
			plan.Pictures++
		}
	}
	if !probe.IsVictory() {
		return fmt.Errorf("plan of %d steps did not win: %s", len(plan.Commands), probe.Status().Message)
	}
	return nil
}
