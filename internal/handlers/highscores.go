package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/leaderboard"
)

const (
	defaultHighscoresLimit = 10
	maxHighscoresLimit     = 100
)

type Highscores struct {
	log   *logrus.Logger
	board leaderboard.Board
}

func NewHighscores(log *logrus.Logger, board leaderboard.Board) *Highscores {
	return &Highscores{log: log, board: board}
}

type highscoresQuery struct {
	Limit int `schema:"limit"`
}

func (h *Highscores) Top(w http.ResponseWriter, r *http.Request) {
	log := requestLog(h.log, r)

	query := highscoresQuery{Limit: defaultHighscoresLimit}
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}
	limit := min(max(query.Limit, 1), maxHighscoresLimit)

	entries, err := h.board.Top(r.Context(), limit)
	if err != nil {
		internalError(w, log, "unable to fetch highscores", err)
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}

	sendJSONOrLog(w, log, http.StatusOK, entries)
}
