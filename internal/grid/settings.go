package grid

import "fmt"

// Settings is the flat performance-settings array for one topology: one
// percentage value (0..100) per cell, ordered by the topology's
// linearization. The array carries no coordinates; position is positional.
type Settings []int

// Display renders the setting for a grid position as "{value}%". Positions
// outside the topology's valid region, or beyond the array, render empty.
func (s Settings) Display(t Topology, row, col int) string {
	idx, ok := t.LinearIndex(row, col)
	if !ok || idx >= len(s) {
		return ""
	}
	return fmt.Sprintf("%d%%", s[idx])
}

// Validate checks that every value is a percentage and that the array
// length matches the topology.
func (s Settings) Validate(t Topology) error {
	if len(s) != t.CellCount() {
		return fmt.Errorf("settings array for %s must hold %d values, got %d", t, t.CellCount(), len(s))
	}
	for i, v := range s {
		if v < 0 || v > 100 {
			return fmt.Errorf("settings value at slot %d out of range: %d", i, v)
		}
	}
	return nil
}

// Assignment places one physical channel on a canvas cell. Inactive
// channels stay on the canvas but are excluded from aggregates and display
// as unavailable.
type Assignment struct {
	Channel  int
	Topology Topology
	Row, Col int
	Active   bool
}
