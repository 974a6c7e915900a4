package app

import (
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/endless-mines/internal/handlers"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.log, a.repo, a.locker, a.board, a.metrics, a.ws, a.params, rand.Uint64,
	)
	auth := handlers.NewAuth(a.log, a.repo, a.cookies)
	highscores := handlers.NewHighscores(a.log, a.board)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("GET /game/{id}/connect", game.Connect)

	a.router.HandleFunc("GET /highscores", highscores.Top)

	a.router.HandleFunc("GET /status", auth.Status)
	a.router.HandleFunc("POST /register", auth.Register)
	a.router.HandleFunc("POST /login", auth.Login)
	a.router.HandleFunc("POST /logout", auth.Logout)

	a.router.Handle("GET /metrics", a.metrics.Handler())
	a.router.HandleFunc("GET /healthz", a.healthz)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		a.log.WithError(err).Warn("health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
