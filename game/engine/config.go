package engine

import (
	"fmt"
)

// TargetLayout places the three targets.
type TargetLayout struct {
	Zebra    Position `json:"zebra" yaml:"zebra"`
	Elephant Position `json:"elephant" yaml:"elephant"`
	Oryx     Position `json:"oryx" yaml:"oryx"`
}

// At returns the configured cell for target t.
func (l TargetLayout) At(t Target) Position {
	switch t {
	case TargetElephant:
		return l.Elephant
	case TargetOryx:
		return l.Oryx
	}
	return l.Zebra
}

// GameConfig represents the game layout and rules loaded from JSON or YAML
type GameConfig struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	GridSize    int          `json:"grid_size" yaml:"grid_size"`
	ShotBudget  int          `json:"shot_budget" yaml:"shot_budget"`
	Start       Position     `json:"start" yaml:"start"`
	StartFacing string       `json:"start_facing" yaml:"start_facing"`
	Trees       []Position   `json:"trees" yaml:"trees"`
	Targets     TargetLayout `json:"targets" yaml:"targets"`
	Welcome     string       `json:"welcome,omitempty" yaml:"welcome,omitempty"`
}

// DefaultConfig returns the canonical 12x12 safari.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "The classic 12x12 safari: three animals, fifteen trees, five pictures.",
		GridSize:    12,
		ShotBudget:  5,
		Start:       Position{Row: 6, Col: 6},
		StartFacing: "North",
		Trees: []Position{
			{2, 3}, {4, 8}, {9, 5}, {1, 10}, {11, 2},
			{5, 1}, {8, 9}, {3, 6}, {7, 11}, {2, 9},
			{10, 4}, {5, 3}, {9, 8}, {3, 4}, {11, 6},
		},
		Targets: TargetLayout{
			Zebra:    Position{Row: 3, Col: 3},
			Elephant: Position{Row: 9, Col: 9},
			Oryx:     Position{Row: 2, Col: 9},
		},
	}
}

// Clone returns a deep copy of the configuration.
func (c *GameConfig) Clone() *GameConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Trees = append([]Position(nil), c.Trees...)
	return &out
}

// WelcomeMessage returns the message shown on a fresh board.
func (c *GameConfig) WelcomeMessage() string {
	if c.Welcome != "" {
		return c.Welcome
	}
	return fmt.Sprintf("Game started! Navigate carefully. You can take up to %d pictures.", c.ShotBudget)
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.ShotBudget < MinShotBudget || config.ShotBudget > MaxShotBudget {
		return fmt.Errorf("config validation: shot_budget must be between %d and %d, got %d", MinShotBudget, MaxShotBudget, config.ShotBudget)
	}
	if _, err := ParseHeading(config.StartFacing); err != nil {
		return fmt.Errorf("config validation: start_facing: %v", err)
	}

	inBounds := func(p Position) bool {
		return p.Row >= 0 && p.Row < config.GridSize && p.Col >= 0 && p.Col < config.GridSize
	}

	if !inBounds(config.Start) {
		return fmt.Errorf("config validation: start %s is outside the %dx%d grid", config.Start, config.GridSize, config.GridSize)
	}
	for i, tree := range config.Trees {
		if !inBounds(tree) {
			return fmt.Errorf("config validation: tree %d at %s is outside the grid", i+1, tree)
		}
	}

	occupied := make(map[Position]Target, NumTargets)
	for _, t := range AllTargets {
		pos := config.Targets.At(t)
		if !inBounds(pos) {
			return fmt.Errorf("config validation: %s at %s is outside the grid", t, pos)
		}
		if other, dup := occupied[pos]; dup {
			return fmt.Errorf("config validation: %s and %s share cell %s", other, t, pos)
		}
		occupied[pos] = t
		if pos == config.Start {
			return fmt.Errorf("config validation: %s cannot start under the drone at %s", t, pos)
		}
	}

	// Targets overwrite trees, so only a tree that survives placement blocks the start.
	for _, tree := range config.Trees {
		if tree == config.Start {
			return fmt.Errorf("config validation: start %s is on a tree", config.Start)
		}
	}

	return nil
}

// buildGrid lays out trees, then targets on top of them.
func buildGrid(config *GameConfig) [][]CellType {
	grid := make([][]CellType, config.GridSize)
	for r := range grid {
		grid[r] = make([]CellType, config.GridSize)
		for c := range grid[r] {
			grid[r][c] = Empty
		}
	}
	for _, tree := range config.Trees {
		grid[tree.Row][tree.Col] = Tree
	}
	for _, t := range AllTargets {
		pos := config.Targets.At(t)
		grid[pos.Row][pos.Col] = t.Cell()
	}
	return grid
}
