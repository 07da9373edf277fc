// Package config loads, validates and saves Drone Safari layouts.
//
// The config package handles:
//   - Loading layouts from JSON or YAML files in the configs directory
//   - Schema validation against an embedded JSON Schema
//   - Engine rule validation (bounds, overlaps, budgets)
//   - Default layout selection and layout discovery
//
// Layout Format:
//
// A layout names a square grid, a shot budget, the drone's start cell and
// heading, the tree cells and one cell per animal:
//
//	name: open_plains
//	grid_size: 8
//	shot_budget: 5
//	start: {row: 1, col: 1}
//	start_facing: North
//	trees:
//	  - {row: 4, col: 4}
//	targets:
//	  zebra: {row: 6, col: 1}
//	  elephant: {row: 3, col: 6}
//	  oryx: {row: 6, col: 6}
//
// Rows grow toward the north. A target listed on a tree cell replaces the tree.
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	layout, err := manager.LoadConfig("thicket")
//
//	// Validate a file outside the managed directory
//	layout, err = config.LoadFile("/tmp/custom.yaml")
//
// When the directory holds no classic layout the first valid layout becomes
// the default; an empty directory falls back to engine.DefaultConfig.
package config
