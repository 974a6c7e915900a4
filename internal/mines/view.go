package mines

import (
	"iter"
	"maps"
	"slices"
)

type PlacedCell struct {
	Point Point
	Cell  Cell
}

// All yields every materialized cell in no particular order.
func (s *GameState) All() iter.Seq2[Point, Cell] {
	return maps.All(s.cells)
}

// Sorted returns every materialized cell ordered by [Point.Compare].
func (s *GameState) Sorted() []PlacedCell {
	placed := make([]PlacedCell, 0, len(s.cells))
	for p, c := range s.cells {
		placed = append(placed, PlacedCell{p, c})
	}
	slices.SortFunc(placed, func(a, b PlacedCell) int {
		return a.Point.Compare(b.Point)
	})
	return placed
}

// Window returns the materialized cells inside the rectangle spanned by lo and
// hi (inclusive), ordered by [Point.Compare].
func (s *GameState) Window(lo, hi Point) []PlacedCell {
	if lo.X > hi.X || lo.Y > hi.Y {
		return nil
	}

	// Walk whichever is smaller: the rectangle or the store.
	dx, dy := uint64(hi.X)-uint64(lo.X), uint64(hi.Y)-uint64(lo.Y)
	n := uint64(len(s.cells))
	if dx < n && dy < n && (dx+1)*(dy+1) <= n {
		placed := make([]PlacedCell, 0, (dx+1)*(dy+1))
		for p := range rect(lo, hi) {
			if c, ok := s.cells[p]; ok {
				placed = append(placed, PlacedCell{p, c})
			}
		}
		return placed
	}

	var placed []PlacedCell
	for p, c := range s.cells {
		if lo.X <= p.X && p.X <= hi.X && lo.Y <= p.Y && p.Y <= hi.Y {
			placed = append(placed, PlacedCell{p, c})
		}
	}
	slices.SortFunc(placed, func(a, b PlacedCell) int {
		return a.Point.Compare(b.Point)
	})
	return placed
}

// rect yields the points of the rectangle spanned by lo and hi (inclusive)
// row by row. It counts offsets rather than coordinates so that a side
// ending at math.MaxInt still terminates.
func rect(lo, hi Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		if lo.X > hi.X || lo.Y > hi.Y {
			return
		}
		dx, dy := uint64(hi.X)-uint64(lo.X), uint64(hi.Y)-uint64(lo.Y)
		for j := uint64(0); ; j++ {
			for i := uint64(0); ; i++ {
				if !yield(Point{lo.X + int(i), lo.Y + int(j)}) {
					return
				}
				if i == dx {
					break
				}
			}
			if j == dy {
				return
			}
		}
	}
}

type Stats struct {
	Materialized  int `json:"materialized"`
	Revealed      int `json:"revealed"`
	Flagged       int `json:"flagged"`
	ExplodedMines int `json:"exploded_mines"`
}

func (s *GameState) Stats() Stats {
	st := Stats{Materialized: len(s.cells)}
	for _, c := range s.cells {
		switch {
		case c.Revealed && c.Mine:
			st.ExplodedMines++
			st.Revealed++
		case c.Revealed:
			st.Revealed++
		case c.Flagged:
			st.Flagged++
		}
	}
	return st
}
