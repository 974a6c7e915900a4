package mines

import (
	"maps"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// GameState is an immutable snapshot of one game. Every transition returns a
// new snapshot and leaves the receiver untouched, so old snapshots may be kept
// and read from any goroutine. Transitions on the same lineage must still be
// applied one at a time to keep score and lives in order.
type GameState struct {
	cells      map[Point]Cell
	score      int
	lives      int
	highScore  int
	nextLifeAt int
	over       bool
	params     Params
}

func NewGame(params Params) *GameState {
	return &GameState{
		cells:      make(map[Point]Cell),
		lives:      params.StartingLives,
		nextLifeAt: params.LifeBonus,
		params:     params,
	}
}

func (s *GameState) Score() int { return s.score }
func (s *GameState) Lives() int { return s.lives }
func (s *GameState) HighScore() int { return s.highScore }
func (s *GameState) NextLifeAt() int { return s.nextLifeAt }
func (s *GameState) GameOver() bool { return s.over }
func (s *GameState) Params() Params { return s.params }
func (s *GameState) Materialized() int { return len(s.cells) }

// Cell returns the cell at p if it has been materialized.
func (s *GameState) Cell(p Point) (Cell, bool) {
	c, ok := s.cells[p]
	return c, ok
}

// Reset starts a fresh game with the same params, keeping the high score.
func (s *GameState) Reset() *GameState {
	next := NewGame(s.params)
	next.highScore = s.highScore
	return next
}

// Forfeit ends the game without touching the field.
func (s *GameState) Forfeit() *GameState {
	if s.over {
		return s
	}
	next := *s
	next.over = true
	return &next
}

// Reveal opens the cell at p. A flagged cell stays closed; an already open
// cell is chorded instead. When nothing would change, including once the game
// is over, the receiver is returned as is.
func (s *GameState) Reveal(p Point, oracle Oracle) *GameState {
	if s.over {
		return s
	}
	if c, ok := s.cells[p]; ok {
		if c.Flagged {
			return s
		}
		if c.Revealed {
			if _, act := s.chordPlan(p); act == chordNone {
				return s
			}
		}
	}
	next := s.clone()
	next.reveal(p, oracle, true)
	return next
}

// ToggleFlag flips the flag on a closed cell. An open cell is left alone and
// the receiver is returned.
func (s *GameState) ToggleFlag(p Point, oracle Oracle) *GameState {
	if s.over {
		return s
	}
	if c, ok := s.cells[p]; ok && c.Revealed {
		return s
	}
	next := s.clone()
	next.toggleFlag(p, oracle)
	return next
}

// clone returns a private working copy; only the cell map needs copying since
// every other field is a value.
func (s *GameState) clone() *GameState {
	next := *s
	next.cells = maps.Clone(s.cells)
	if next.cells == nil {
		next.cells = make(map[Point]Cell)
	}
	return &next
}

func (s *GameState) getOrCreate(p Point, oracle Oracle) Cell {
	c, ok := s.cells[p]
	if !ok {
		c = Cell{Mine: oracle(p)}
		s.cells[p] = c
	}
	return c
}

func (s *GameState) materializeNeighbours(p Point, oracle Oracle) {
	for _, n := range p.Neighbours() {
		s.getOrCreate(n, oracle)
	}
}

// adjacentMines counts mines among the neighbours of p that already exist.
// Missing neighbours count as safe and are not created.
func (s *GameState) adjacentMines(p Point) int {
	count := 0
	for _, n := range p.Neighbours() {
		if s.cells[n].Mine {
			count++
		}
	}
	return count
}

// reveal works on s in place. chord is false when called from chord itself,
// which keeps chording from recursing.
func (s *GameState) reveal(p Point, oracle Oracle, chord bool) {
	c := s.getOrCreate(p, oracle)
	if c.Flagged {
		return
	}
	if c.Revealed {
		if chord {
			s.chord(p, oracle)
		}
		return
	}

	s.materializeNeighbours(p, oracle)
	c.Adjacent = s.adjacentMines(p)

	opened := 0
	switch {
	case c.Mine:
		c.Revealed = true
		s.cells[p] = c
		s.lives--
		s.over = s.lives <= 0
	case c.Adjacent > 0:
		c.Revealed = true
		s.cells[p] = c
		opened = 1
	default:
		s.cells[p] = c
		opened = s.floodReveal(p, oracle)
	}

	s.award(opened)
}

func (s *GameState) award(opened int) {
	if opened > 0 {
		s.score += opened
	}
	if s.params.LifeBonus > 0 {
		for s.score >= s.nextLifeAt {
			s.lives++
			s.nextLifeAt += s.params.LifeBonus
		}
	}
	s.highScore = max(s.highScore, s.score)
}

// floodReveal opens the connected region of blank cells around start together
// with its numbered border and returns how many cells it opened. It stops
// early once FloodCap cells have been opened.
func (s *GameState) floodReveal(start Point, oracle Oracle) int {
	var (
		queue   = []Point{start}
		visited = map[Point]struct{}{start: {}}
		opened  = 0
	)
	for len(queue) > 0 {
		if opened >= s.params.FloodCap {
			Log.WithFields(logrus.Fields{
				"start":   start,
				"opened":  opened,
				"pending": len(queue),
			}).Debug("flood reveal capped")
			break
		}

		p := queue[0]
		queue = queue[1:]

		c := s.getOrCreate(p, oracle)
		if c.Revealed || c.Flagged {
			continue
		}

		s.materializeNeighbours(p, oracle)
		c.Adjacent = s.adjacentMines(p)
		c.Revealed = true
		s.cells[p] = c
		opened++

		if !c.Mine && c.Adjacent == 0 {
			for _, n := range p.Neighbours() {
				if _, seen := visited[n]; !seen {
					visited[n] = struct{}{}
					queue = append(queue, n)
				}
			}
		}
	}
	return opened
}

type chordAction int

const (
	chordNone chordAction = iota
	chordOpen
	chordFlag
)

// chordPlan decides what chording p does without touching the store. It
// returns the closed unflagged neighbours the action applies to. A neighbour
// that was never materialized counts as closed.
func (s *GameState) chordPlan(p Point) ([]Point, chordAction) {
	c, ok := s.cells[p]
	if !ok || !c.Revealed || c.Adjacent <= 0 {
		return nil, chordNone
	}

	var (
		flagged       int
		revealedMines int
		hidden        = make([]Point, 0, 8)
	)
	for _, n := range p.Neighbours() {
		nc := s.cells[n]
		switch {
		case nc.Flagged:
			flagged++
		case nc.Revealed && nc.Mine:
			revealedMines++
		case !nc.Revealed:
			hidden = append(hidden, n)
		}
	}

	known := flagged + revealedMines
	switch missing := c.Adjacent - known; {
	case len(hidden) == 0:
		return nil, chordNone
	case missing == 0:
		return hidden, chordOpen
	case missing > 0 && len(hidden) == missing:
		return hidden, chordFlag
	}
	return nil, chordNone
}

// chord acts on the neighbours of an open numbered cell: when the number is
// accounted for by flags and exploded mines, every other closed neighbour is
// opened; when the closed neighbours are exactly the missing mines, they are
// all flagged.
func (s *GameState) chord(p Point, oracle Oracle) {
	hidden, action := s.chordPlan(p)
	for _, n := range hidden {
		switch action {
		case chordOpen:
			s.reveal(n, oracle, false)
			if s.over {
				return
			}
		case chordFlag:
			s.toggleFlag(n, oracle)
		}
	}
}

func (s *GameState) toggleFlag(p Point, oracle Oracle) {
	c := s.getOrCreate(p, oracle)
	if c.Revealed {
		return
	}
	c.Flagged = !c.Flagged
	s.cells[p] = c
}
