// Command autopilot plays a Drone Safari session over the REST API. It
// creates (or resumes) a session, resets it, asks the server for the
// shortest winning plan and flies it one command at a time, or in batches
// through the commands endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

// Options controls a single autopilot run.
type Options struct {
	ConfigID  string
	SessionID string // resume this session instead of creating one
	Batch     bool
	Delay     time.Duration
	Verbose   bool
}

var errNotWon = errors.New("game not won")

func main() {
	app := &cli.Command{
		Name:  "autopilot",
		Usage: "Fly the shortest winning plan against a running Drone Safari server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("DRONE_URL")},
			&cli.StringFlag{Name: "config", Usage: "Layout ID (empty uses the server default)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.BoolFlag{Name: "batch", Usage: "Send the plan through the commands endpoint"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between commands, e.g. 250ms"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			log := logger.Sugar()
			log.Infof("Connecting to game server at %s", cmd.String("url"))

			client := NewClient(cmd.String("url"))
			status, err := run(ctx, client, Options{
				ConfigID:  cmd.String("config"),
				SessionID: cmd.String("continue"),
				Batch:     cmd.Bool("batch"),
				Delay:     cmd.Duration("delay"),
				Verbose:   cmd.Bool("verbose"),
			}, log)
			log.Infof("Session: %s", client.SessionID())
			if err != nil {
				return err
			}
			log.Infof("🎉 VICTORY! %d moves, %d turns, %d pictures", status.TotalMoves, status.TotalTurns, status.ShotsTaken)
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// run plays one game to the end and returns the final status. It fails
// unless the game is won.
func run(ctx context.Context, client *Client, opts Options, log *zap.SugaredLogger) (*engine.Status, error) {
	resumed := false
	if opts.SessionID != "" {
		if _, err := client.Resume(ctx, opts.SessionID); err != nil {
			log.Warnf("⚠️  Failed to resume session (may be expired): %v", err)
		} else {
			resumed = true
			log.Infof("🔄 Resuming session: %s", client.SessionID())
		}
	}
	if !resumed {
		session, err := client.CreateSession(ctx, opts.ConfigID)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		log.Infof("✨ Session created: %s (layout %s)", session.ID, session.ConfigName)
	}

	reset, err := client.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	status := reset.GameState
	log.Infof("Game reset - Position: %s facing %s, Pictures: %d", status.Position, status.Facing, status.ShotsRemaining)

	solution, err := client.Solution(ctx)
	if err != nil {
		return nil, fmt.Errorf("solution: %w", err)
	}
	if !solution.Found {
		return status, fmt.Errorf("no winning plan: %s", solution.Message)
	}
	log.Infof("Plan: %d commands, %d pictures", len(solution.Commands), solution.Pictures)

	if opts.Batch {
		status, err = flyBatches(ctx, client, solution.Commands, log)
	} else {
		status, err = flySteps(ctx, client, solution.Commands, opts, log)
	}
	if err != nil {
		return status, err
	}
	if !status.GameWon {
		return status, fmt.Errorf("%w: %s", errNotWon, status.Message)
	}
	return status, nil
}

func flySteps(ctx context.Context, client *Client, plan []string, opts Options, log *zap.SugaredLogger) (*engine.Status, error) {
	var status *engine.Status
	for i, raw := range plan {
		cmd, err := engine.ParseCommand(raw)
		if err != nil {
			return status, fmt.Errorf("plan step %d: %w", i+1, err)
		}

		result, err := client.Command(ctx, cmd)
		if err != nil {
			return status, fmt.Errorf("step %d (%s): %w", i+1, raw, err)
		}
		status = result.GameState
		if opts.Verbose {
			log.Infof("%d. %s -> %s [%s] %s", i+1, raw, result.Status, result.Event, result.Message)
		}
		if result.Status != engine.Applied {
			return status, fmt.Errorf("step %d (%s) %s: %s", i+1, raw, result.Status, result.Message)
		}
		if status.GameOver {
			break
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return status, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return status, nil
}

// flyBatches sends the plan in chunks the commands endpoint accepts.
func flyBatches(ctx context.Context, client *Client, plan []string, log *zap.SugaredLogger) (*engine.Status, error) {
	var status *engine.Status
	for start := 0; start < len(plan); start += engine.MaxBulkCommands {
		end := start + engine.MaxBulkCommands
		if end > len(plan) {
			end = len(plan)
		}

		result, err := client.Commands(ctx, plan[start:end], false)
		if err != nil {
			return status, fmt.Errorf("commands %d-%d: %w", start+1, end, err)
		}
		status = result.GameState
		log.Infof("Executed %d/%d commands, stop reason %q", result.CommandsExecuted, result.RequestedCommands, result.StopReasonCode)

		if result.StopReasonCode == "rejected" {
			return status, fmt.Errorf("command %d rejected: %s", start+result.StoppedOnCommand, result.StoppedReason)
		}
		if result.GameOver {
			break
		}
	}
	return status, nil
}
