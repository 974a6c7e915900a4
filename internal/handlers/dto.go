package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/repository"
)

const (
	defaultWindowRadius = 16
	maxWindowSide       = 256
)

var ErrBadWindow = errors.New("invalid window")

// Window is the inclusive rectangle of the board a client is looking at.
type Window struct {
	X0 int `schema:"x0" json:"x0"`
	Y0 int `schema:"y0" json:"y0"`
	X1 int `schema:"x1" json:"x1"`
	Y1 int `schema:"y1" json:"y1"`
}

func DefaultWindow() Window {
	return Window{
		X0: -defaultWindowRadius, Y0: -defaultWindowRadius,
		X1: defaultWindowRadius, Y1: defaultWindowRadius,
	}
}

func NewWindow(lo, hi mines.Point) Window {
	return Window{X0: lo.X, Y0: lo.Y, X1: hi.X, Y1: hi.Y}
}

func (w Window) Lo() mines.Point { return mines.Point{X: w.X0, Y: w.Y0} }
func (w Window) Hi() mines.Point { return mines.Point{X: w.X1, Y: w.Y1} }

func (w Window) Validate() error {
	if w.X0 > w.X1 || w.Y0 > w.Y1 {
		return fmt.Errorf("%w: corners out of order", ErrBadWindow)
	}
	if uint64(w.X1)-uint64(w.X0) >= maxWindowSide || uint64(w.Y1)-uint64(w.Y0) >= maxWindowSide {
		return fmt.Errorf("%w: sides are limited to %d squares", ErrBadWindow, maxWindowSide)
	}
	return nil
}

// ParseWindow reads x0, y0, x1, y1 from query; missing values keep their
// defaults.
func ParseWindow(query url.Values) (Window, error) {
	window := DefaultWindow()
	if err := decoder.Decode(&window, query); err != nil {
		return window, fmt.Errorf("%w: %w", ErrBadWindow, err)
	}
	return window, window.Validate()
}

type CellDTO struct {
	X     int             `json:"x"`
	Y     int             `json:"y"`
	State mines.CellState `json:"state"`
}

type GameSessionDTO struct {
	GameSessionId string      `json:"game_session_id"`
	Score         int         `json:"score"`
	Lives         int         `json:"lives"`
	HighScore     int         `json:"high_score"`
	NextLifeAt    int         `json:"next_life_at"`
	GameOver      bool        `json:"game_over"`
	Window        Window      `json:"window"`
	Cells         []CellDTO   `json:"cells"`
	Stats         mines.Stats `json:"stats"`
	StartedAt     int64       `json:"started_at"`
	EndedAt       *int64      `json:"ended_at,omitempty"`
}

// NewGameSessionDTO renders what a player may see of the session. Closed
// squares are left out, and so is the seed.
func NewGameSessionDTO(
	session *repository.GameSession, game *mines.GameState, window Window,
) *GameSessionDTO {
	var endedAt *int64
	if session.EndedAt != nil {
		e := session.EndedAt.UnixMilli()
		endedAt = &e
	}

	cells := make([]CellDTO, 0)
	for _, pc := range game.Window(window.Lo(), window.Hi()) {
		if state := pc.Cell.State(); state != mines.Unknown {
			cells = append(cells, CellDTO{pc.Point.X, pc.Point.Y, state})
		}
	}

	return &GameSessionDTO{
		GameSessionId: strconv.FormatInt(session.GameSessionID, 10),
		Score:         game.Score(),
		Lives:         game.Lives(),
		HighScore:     game.HighScore(),
		NextLifeAt:    game.NextLifeAt(),
		GameOver:      game.GameOver(),
		Window:        window,
		Cells:         cells,
		Stats:         game.Stats(),
		StartedAt:     session.StartedAt.UnixMilli(),
		EndedAt:       endedAt,
	}
}
