// Command analyze prints quick, human-readable heuristics about the layout
// files in a directory (the project's configs directory by default). For
// each layout it summarizes dimensions, picture budget and tree count, lists
// every animal with the poses it can be photographed from, and reports the
// length of the shortest winning plan.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wricardo/mcp-training/dronesafari/game/config"
	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/solver"
)

const solveTimeout = 30 * time.Second

// TargetReport describes one animal of a layout.
type TargetReport struct {
	Target   engine.Target
	Position engine.Position
	Distance int // Manhattan distance from the start
	Vantage  []engine.Vantage
}

// Report is the analysis of a single layout.
type Report struct {
	Name       string
	GridSize   int
	ShotBudget int
	Trees      int
	Start      engine.Position
	Facing     engine.Heading
	Targets    []TargetReport
	Solvable   bool
	PlanLength int
	Explored   int
}

// Warnings lists problems worth a layout author's attention.
func (r *Report) Warnings() []string {
	var out []string
	for _, t := range r.Targets {
		if len(t.Vantage) == 0 {
			out = append(out, fmt.Sprintf("%s at %s cannot be photographed from any cell", t.Target.Title(), t.Position))
		}
		if engine.ChebyshevDistance(r.Start, t.Position) == 1 {
			out = append(out, fmt.Sprintf("%s at %s is next to the start; any move that stays adjacent scares it", t.Target.Title(), t.Position))
		}
	}
	if r.ShotBudget < engine.NumTargets {
		out = append(out, fmt.Sprintf("only %d pictures for %d animals", r.ShotBudget, engine.NumTargets))
	}
	if !r.Solvable {
		out = append(out, "no winning sequence exists")
	}
	return out
}

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		var err error
		if paths, err = layoutFiles("configs"); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing layouts: %v\n", err)
			os.Exit(1)
		}
	}

	failed := false
	for _, path := range paths {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		report, err := analyzeFile(context.Background(), path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
			continue
		}
		printReport(os.Stdout, report)
	}
	if failed {
		os.Exit(1)
	}
}

// layoutFiles returns the JSON and YAML layouts in dir, sorted by name.
func layoutFiles(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func analyzeFile(ctx context.Context, path string) (*Report, error) {
	layout, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return analyze(ctx, layout)
}

// analyze builds the report for layout. An unsolvable layout is a finding,
// not an error.
func analyze(ctx context.Context, layout *engine.GameConfig) (*Report, error) {
	eng, err := engine.NewEngine(layout)
	if err != nil {
		return nil, err
	}
	status := eng.Status()

	report := &Report{
		Name:       layout.Name,
		GridSize:   layout.GridSize,
		ShotBudget: layout.ShotBudget,
		Start:      status.Position,
		Facing:     status.Facing,
	}
	for _, row := range status.Grid {
		for _, cell := range row {
			if cell == engine.Tree {
				report.Trees++
			}
		}
	}
	for _, t := range engine.AllTargets {
		pos := layout.Targets.At(t)
		report.Targets = append(report.Targets, TargetReport{
			Target:   t,
			Position: pos,
			Distance: engine.ManhattanDistance(status.Position, pos),
			Vantage:  eng.VantagePoints(t),
		})
	}

	ctx, cancel := context.WithTimeout(ctx, solveTimeout)
	defer cancel()
	plan, err := solver.Solve(ctx, eng)
	switch {
	case errors.Is(err, solver.ErrUnsolvable):
	case err != nil:
		return nil, fmt.Errorf("solving %s: %w", layout.Name, err)
	default:
		report.Solvable = true
		report.PlanLength = len(plan.Commands)
		report.Explored = plan.Explored
	}
	return report, nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.GridSize, r.GridSize)
	fmt.Fprintf(w, "Pictures: %d\n", r.ShotBudget)
	fmt.Fprintf(w, "Trees: %d\n", r.Trees)
	fmt.Fprintf(w, "Start: %s facing %s\n", r.Start, r.Facing)

	for _, t := range r.Targets {
		fmt.Fprintf(w, "%s at %s, %d cells from the start, %d vantage points\n",
			t.Target.Title(), t.Position, t.Distance, len(t.Vantage))
		for _, v := range t.Vantage {
			fmt.Fprintf(w, "   from %s facing %s\n", v.Position, v.Facing)
		}
	}

	if r.Solvable {
		fmt.Fprintf(w, "✅ Shortest win: %d commands (%d states explored)\n", r.PlanLength, r.Explored)
	}
	for _, warning := range r.Warnings() {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
