package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/dronesafari/game/config"
	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/solver"
)

// loadLayout resolves name as a layout file when it has a path separator or
// a layout extension, and as an ID in configDir otherwise.
func loadLayout(configDir, name string) (*engine.GameConfig, error) {
	if strings.ContainsRune(name, filepath.Separator) || filepath.Ext(name) != "" {
		if _, err := os.Stat(name); err == nil {
			return config.LoadFile(name)
		}
	}
	manager, err := config.NewManager(configDir, nil)
	if err != nil {
		return nil, err
	}
	return manager.LoadConfig(name)
}

// readScript returns the non-blank lines of r. Lines starting with # are comments.
func readScript(r io.Reader) ([]string, error) {
	var script []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		script = append(script, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	return script, nil
}

// play runs script against a fresh game on layout and reports every result.
// Unparseable lines are reported and skipped; the game itself decides what
// a parsed command does.
func play(out io.Writer, layout *engine.GameConfig, script []string, sensors bool) error {
	eng, err := engine.NewEngine(layout)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n\n", layout.WelcomeMessage())
	for i, line := range script {
		cmd, err := engine.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(out, "%d. %s\n   rejected: %v\n", i+1, line, err)
			continue
		}
		cmd.Sensors = sensors

		res := eng.Execute(cmd)
		fmt.Fprintf(out, "%d. %s\n   %s [%s] %s\n", i+1, cmd, res.Status, res.Event, res.Message)
	}

	status := eng.Status()
	fmt.Fprintln(out)
	for _, row := range status.GridView {
		fmt.Fprintln(out, row)
	}
	fmt.Fprintf(out, "\nOutcome: %s", status.Outcome)
	if status.FailureReason != engine.NoFailure {
		fmt.Fprintf(out, " (%s)", status.FailureReason)
	}
	fmt.Fprintf(out, " | Photographed: %d/%d | Pictures left: %d\n",
		status.Photographed.Count(), engine.NumTargets, status.ShotsRemaining)
	return nil
}

// solve prints the shortest winning plan for layout.
func solve(ctx context.Context, out io.Writer, layout *engine.GameConfig) error {
	eng, err := engine.NewEngine(layout)
	if err != nil {
		return err
	}

	plan, err := solver.Solve(ctx, eng)
	if errors.Is(err, solver.ErrUnsolvable) {
		fmt.Fprintf(out, "Layout %s cannot be won.\n", layout.Name)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Layout %s: %d commands, %d pictures (%d states explored)\n\n",
		layout.Name, len(plan.Commands), plan.Pictures, plan.Explored)
	for i, cmd := range plan.Strings() {
		fmt.Fprintf(out, "%d. %s\n", i+1, cmd)
	}
	return nil
}
