package engine

import (
	"fmt"
	"strings"
)

// Detection is one object picked up by the drone's sensors.
type Detection struct {
	Kind     string   `json:"kind"`
	Position Position `json:"position"`
	DRow     int      `json:"d_row"`
	DCol     int      `json:"d_col"`
}

// Detection kinds besides cell types.
const (
	DetectScared   = "scared animal location"
	DetectBoundary = "boundary"
)

// Describe renders a detection as "tree at 1 North 2 East".
func (d Detection) Describe() string {
	return d.Kind + " at " + FormatOffset(d.DRow, d.DCol)
}

// FormatOffset describes a relative offset with compass words.
func FormatOffset(dRow, dCol int) string {
	var parts []string
	if dRow > 0 {
		parts = append(parts, fmt.Sprintf("%d North", dRow))
	} else if dRow < 0 {
		parts = append(parts, fmt.Sprintf("%d South", -dRow))
	}
	if dCol > 0 {
		parts = append(parts, fmt.Sprintf("%d East", dCol))
	} else if dCol < 0 {
		parts = append(parts, fmt.Sprintf("%d West", -dCol))
	}
	if len(parts) == 0 {
		return "current position"
	}
	return strings.Join(parts, " ")
}

// Scan reports trees, animals and scared-animal cells within SensorRange
// of the drone, nearest ring first. Each grid edge within range is reported
// once, at its nearest distance straight ahead in that compass direction.
// An edge counts only when the coordinate along that direction leaves the
// grid, so a drone that crashed off the north edge sees no east or west edge
// beside it.
func (e *GameEngine) Scan() []Detection {
	var found []Detection
	origin := e.pos
	n := len(e.grid)

	for _, h := range []Heading{North, East, South, West} {
		for d := 1; d <= SensorRange; d++ {
			p := origin.Step(h, d)
			coord := p.Col
			if h == North || h == South {
				coord = p.Row
			}
			if coord < 0 || coord >= n {
				found = append(found, Detection{
					Kind:     strings.ToLower(h.String()) + " " + DetectBoundary,
					Position: p,
					DRow:     p.Row - origin.Row,
					DCol:     p.Col - origin.Col,
				})
				break
			}
		}
	}

	scared := make(map[Position]bool, len(e.scared))
	for _, p := range e.scared {
		scared[p] = true
	}

	for dist := 1; dist <= SensorRange; dist++ {
		for dr := dist; dr >= -dist; dr-- {
			for dc := -dist; dc <= dist; dc++ {
				if abs(dr) != dist && abs(dc) != dist {
					continue
				}
				p := Position{Row: origin.Row + dr, Col: origin.Col + dc}
				if !e.inBounds(p) {
					continue
				}
				if cell := e.grid[p.Row][p.Col]; cell != Empty {
					found = append(found, Detection{Kind: string(cell), Position: p, DRow: dr, DCol: dc})
				}
				if scared[p] {
					found = append(found, Detection{Kind: DetectScared, Position: p, DRow: dr, DCol: dc})
				}
			}
		}
	}
	return found
}

// FormatScan renders detections as a single sensor summary sentence.
func FormatScan(found []Detection) string {
	if len(found) == 0 {
		return fmt.Sprintf("Sensors summary: Nothing of interest detected within %d cells.", SensorRange)
	}
	parts := make([]string, len(found))
	for i, d := range found {
		parts[i] = d.Describe()
	}
	return "Sensors summary: " + strings.Join(parts, "; ") + "."
}

var cellSymbols = map[CellType]string{
	Empty:    ".",
	Tree:     "T",
	Zebra:    "Z",
	Elephant: "E",
	Oryx:     "O",
}

// GridLegend explains the symbols used by the text grid.
const GridLegend = "Grid Legend: ^>v<=Drone, T=Tree, Z=Zebra, E=Elephant, O=Oryx, !=Scared, *=Photo, .=Empty"

// renderGrid draws the board with the northernmost row first.
func (e *GameEngine) renderGrid() []string {
	n := len(e.grid)
	scared := make(map[Position]bool, len(e.scared))
	for _, p := range e.scared {
		scared[p] = true
	}

	lines := make([]string, 0, n+2)
	lines = append(lines, GridLegend)
	for r := n - 1; r >= 0; r-- {
		var b strings.Builder
		fmt.Fprintf(&b, "%2d ", r)
		for c := 0; c < n; c++ {
			p := Position{Row: r, Col: c}
			switch {
			case p == e.pos:
				b.WriteString(e.facing.Symbol())
			case scared[p]:
				b.WriteString("!")
			case e.photoLocations[p] > 0:
				b.WriteString("*")
			default:
				b.WriteString(cellSymbols[e.grid[r][c]])
			}
			b.WriteByte(' ')
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	var footer strings.Builder
	footer.WriteString("   ")
	for c := 0; c < n; c++ {
		fmt.Fprintf(&footer, "%-2d", c%100)
	}
	lines = append(lines, strings.TrimRight(footer.String(), " "))
	return lines
}

// Vantage is a pose from which a picture would frame a target.
type Vantage struct {
	Position Position `json:"position"`
	Facing   Heading  `json:"facing"`
}

// VantagePoints lists the poses that would photograph target t on the
// current board: an empty cell exactly CameraRange away in a straight line,
// with no tree in between and no animal close enough to be scared on
// arrival. Reachability is not checked. A scared target has none.
func (e *GameEngine) VantagePoints(t Target) []Vantage {
	at := e.config.Targets.At(t)
	if cell, ok := e.CellAt(at); !ok || cell != t.Cell() {
		return nil
	}

	var out []Vantage
	for _, facing := range []Heading{North, East, South, West} {
		from := at.Step(facing.Reverse(), CameraRange)
		between := at.Step(facing.Reverse(), 1)
		cell, ok := e.CellAt(from)
		if !ok || cell != Empty {
			continue
		}
		if e.grid[between.Row][between.Col] == Tree {
			continue
		}
		if len(e.adjacentTargets(from)) > 0 {
			continue
		}
		out = append(out, Vantage{Position: from, Facing: facing})
	}
	return out
}

// ChebyshevDistance is the king-move distance between two positions.
func ChebyshevDistance(from, to Position) int {
	dr, dc := abs(from.Row-to.Row), abs(from.Col-to.Col)
	if dr > dc {
		return dr
	}
	return dc
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
