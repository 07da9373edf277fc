// Command validate provides a small CLI that validates layout files in the
// ../configs directory (or the directories and files given as arguments).
// It checks:
//   - JSON or YAML structure against the layout schema
//   - Engine rules: grid size, picture budget, start and animal placement
//   - Duplicate trees, and trees that an animal replaces
//   - Vantage points: every animal can be photographed from some cell
//   - Connectivity: every animal has a vantage point the drone can reach
//     without flying next to an animal
//   - Winnability: a winning command sequence exists within the budget
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/dronesafari/game/config"
	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/solver"
)

const solveTimeout = 30 * time.Second

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single layout file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	layout, err := config.LoadFile(filePath)
	if err != nil {
		result.fail("Failed to load layout: %v", err)
		return result
	}

	eng, err := engine.NewEngine(layout)
	if err != nil {
		result.fail("Engine rejected layout: %v", err)
		return result
	}

	// Trees
	seen := make(map[engine.Position]bool, len(layout.Trees))
	for _, tree := range layout.Trees {
		if seen[tree] {
			result.fail("Duplicate tree at %s", tree)
		}
		seen[tree] = true
	}
	for _, t := range engine.AllTargets {
		if pos := layout.Targets.At(t); seen[pos] {
			result.info("ℹ Tree at %s is replaced by the %s", pos, t)
		}
	}

	// Vantage points
	for _, t := range engine.AllTargets {
		if len(eng.VantagePoints(t)) == 0 {
			result.fail("%s at %s cannot be photographed from any cell", t.Title(), layout.Targets.At(t))
		}
	}

	if !result.Valid {
		return result
	}

	connectivity := validateConnectivity(eng)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)
	if !result.Valid {
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
	defer cancel()
	plan, err := solver.Solve(ctx, eng)
	switch {
	case errors.Is(err, solver.ErrUnsolvable):
		result.fail("Winnability failure: no winning sequence within %d pictures", layout.ShotBudget)
		return result
	case err != nil:
		result.fail("Winnability check failed: %v", err)
		return result
	}

	// Add informational data
	status := eng.Status()
	result.info("✓ Name: %s", layout.Name)
	result.info("✓ Grid: %dx%d", layout.GridSize, layout.GridSize)
	result.info("✓ Start: %s facing %s", status.Position, status.Facing)
	result.info("✓ Trees: %d", len(seen))
	result.info("✓ Pictures: %d", layout.ShotBudget)
	result.info("✓ Shortest win: %d commands", len(plan.Commands))
	return result
}

// validateConnectivity ensures every animal has a vantage point reachable
// from the start using 4-directional moves over safe cells.
func validateConnectivity(eng *engine.GameEngine) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	start := eng.Position()
	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}

	// Flood fill
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, h := range []engine.Heading{engine.North, engine.East, engine.South, engine.West} {
			next := current.Step(h, 1)
			if !visited[next] && eng.SafeStop(next) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var unreachable []string
	for _, t := range engine.AllTargets {
		reachable := false
		for _, v := range eng.VantagePoints(t) {
			if visited[v.Position] {
				reachable = true
				break
			}
		}
		if !reachable {
			unreachable = append(unreachable, fmt.Sprintf("%s at %s", t.Title(), eng.Config().Targets.At(t)))
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d animals have no reachable vantage point", len(unreachable), engine.NumTargets)
		for _, animal := range unreachable {
			result.fail("Unreachable: %s", animal)
		}
	} else {
		result.info("✓ Connectivity: all %d animals photographable from %d reachable cells", engine.NumTargets, len(visited))
	}

	return result
}

// layoutFiles expands directories into the layout files they contain.
func layoutFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files, nil
}

// main validates every layout it is pointed at, printing a concise report
// and exiting with non-zero status if any are invalid.
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"../configs"}
	}
	files, err := layoutFiles(args)
	if err != nil {
		fmt.Printf("Error finding layout files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") && !strings.HasPrefix(err, "ℹ") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All layouts are valid!")
	} else {
		fmt.Println("❌ Some layouts have errors")
		os.Exit(1)
	}
}
