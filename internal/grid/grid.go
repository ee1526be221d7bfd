// Package grid maps the physical sensor layout onto the flat
// performance-settings arrays. Each canvas topology has its own valid-cell
// rules and its own linearization; the formulas reproduce the traversal
// order used when the arrays were first populated, so stored data and
// rendered positions stay aligned.
package grid

import "fmt"

const (
	// Rows and Cols bound the full-body canvas. The reinforcement canvases
	// use the interior sub-rectangle rows 2..5, cols 2..17.
	Rows = 8
	Cols = 20
)

// Topology names one of the four canvas layouts.
type Topology string

const (
	MainTop             Topology = "main-top"
	MainBottom          Topology = "main-bottom"
	ReinforcementTop    Topology = "reinforcement-top"
	ReinforcementBottom Topology = "reinforcement-bottom"
)

var topologies = map[Topology]struct{}{
	MainTop:             {},
	MainBottom:          {},
	ReinforcementTop:    {},
	ReinforcementBottom: {},
}

// ParseTopology validates a topology name.
func ParseTopology(s string) (Topology, error) {
	t := Topology(s)
	if _, ok := topologies[t]; !ok {
		return "", fmt.Errorf("unknown topology %q", s)
	}
	return t, nil
}

func (t Topology) String() string {
	return string(t)
}

func (t Topology) reinforcement() bool {
	return t == ReinforcementTop || t == ReinforcementBottom
}

// Cell is one box of a canvas. Row and Col are the anchor position (the
// top-left corner); a box spans either two rows or two columns, never both.
type Cell struct {
	Row, Col         int
	RowSpan, ColSpan int
}

// LinearIndex converts a grid position into the cell's slot in the
// performance-settings array. ok is false for positions outside the
// topology's valid region, including the covered half of a two-row box;
// such positions display as empty, they are not errors.
//
// The formulas are irregular on purpose: the +1/+2 offsets compensate for
// the vertical two-row boxes on the edge columns consuming index slots out
// of natural column order. They must not be "cleaned up": stored arrays
// were written in exactly this order.
func (t Topology) LinearIndex(row, col int) (int, bool) {
	if t.reinforcement() {
		return reinforcementIndex(row, col)
	}
	return mainIndex(row, col)
}

func mainIndex(row, col int) (int, bool) {
	if !mainValid(row, col) {
		return 0, false
	}

	switch {
	case row == 0 || row == Rows-1 || col == 0:
		return (row*Cols + col) / 2, true
	case col == Cols-1:
		return (row*Cols+col)/2 + 2, true
	default:
		return (row*Cols+col)/2 + 1, true
	}
}

// mainValid reports anchor cells of the full-body canvas: the top and
// bottom rows carry two-column boxes across the full width, the interior
// rows carry two-column boxes on even columns 2..16, and the four edge
// columns carry two-row boxes anchored on the odd rows.
func mainValid(row, col int) bool {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return false
	}

	switch {
	case row == 0 || row == Rows-1:
		return col%2 == 0
	case row%2 == 1: // rows 1, 3, 5: vertical box anchors plus interior
		if col <= 1 || col >= Cols-2 {
			return true
		}
		return col%2 == 0
	default: // rows 2, 4, 6: interior only
		return col%2 == 0 && col >= 2 && col <= Cols-4
	}
}

func reinforcementIndex(row, col int) (int, bool) {
	if !reinforcementValid(row, col) {
		return 0, false
	}

	switch {
	case row == 2 || row == 5:
		return (row-2)*8 + (col-2)/2, true
	case col == 2 || col == 3: // vertical boxes, inserted before the middle rows
		return col + 6, true
	case col == 16 || col == 17:
		return col, true
	default:
		return (row-2)*8 + col/2, true
	}
}

// reinforcementValid reports anchor cells of the reinforcement canvas,
// restricted to rows 2..5 and cols 2..17. The corner column pairs 2-3 and
// 16-17 carry two-row boxes anchored on row 3.
func reinforcementValid(row, col int) bool {
	if row < 2 || row > 5 || col < 2 || col > 17 {
		return false
	}

	switch row {
	case 2, 5:
		return col%2 == 0 && col <= 16
	case 3:
		if col <= 3 || col >= 16 {
			return true
		}
		return col%2 == 0
	default: // row 4: interior only
		return col%2 == 0 && col >= 4 && col <= 14
	}
}

// Cells enumerates the canvas anchors row-major, left to right. The order
// is exactly the serialization order of the performance-settings array:
// linear indices of the returned cells run 0..CellCount()-1 with no gaps.
func (t Topology) Cells() []Cell {
	var cells []Cell
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if _, ok := t.LinearIndex(row, col); !ok {
				continue
			}
			cells = append(cells, Cell{Row: row, Col: col, RowSpan: t.rowSpan(row, col), ColSpan: t.colSpan(row, col)})
		}
	}
	return cells
}

// CellCount returns the length of the topology's settings array.
func (t Topology) CellCount() int {
	if t.reinforcement() {
		return 32
	}
	return 80
}

func (t Topology) rowSpan(row, col int) int {
	if t.reinforcement() {
		if row == 3 && (col <= 3 || col >= 16) {
			return 2
		}
		return 1
	}
	if row%2 == 1 && row != Rows-1 && (col <= 1 || col >= Cols-2) {
		return 2
	}
	return 1
}

func (t Topology) colSpan(row, col int) int {
	if t.rowSpan(row, col) == 2 {
		return 1
	}
	return 2
}
