package mines

import (
	"strconv"
	"strings"
)

// Cell is everything known about one materialized point.
type Cell struct {
	Mine     bool // fixed when the cell is first materialized
	Adjacent int  // mined neighbours; valid once the cell is revealed
	Revealed bool
	Flagged  bool
}

// CellState is what a player is allowed to see of a cell.
type CellState int8

const (
	Unknown      CellState = -2
	Flagged      CellState = -1
	ExplodedMine CellState = 65
	/*
	 * 0 to 8 mean the square is open and has that many mined
	 * neighbours.
	 */
)

func (c Cell) State() CellState {
	switch {
	case c.Revealed && c.Mine:
		return ExplodedMine
	case c.Revealed:
		return CellState(c.Adjacent)
	case c.Flagged:
		return Flagged
	default:
		return Unknown
	}
}

// [CellState] implements [fmt.Stringer]
func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "."
	case s == Flagged:
		return "F"
	case s == ExplodedMine:
		return "*"
	case s == 0:
		return " "
	case 0 < s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Render draws the player's view of the rectangle spanned by lo and hi
// (inclusive), one row per line.
func (s *GameState) Render(lo, hi Point) string {
	var b strings.Builder
	for p := range rect(lo, hi) {
		c, ok := s.cells[p]
		if !ok {
			b.WriteString(Unknown.String())
		} else {
			b.WriteString(c.State().String())
		}
		if p.X == hi.X {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
