package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/command"
	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/leaderboard"
	"github.com/vancomm/endless-mines/internal/metrics"
	"github.com/vancomm/endless-mines/internal/middleware"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/repository"
	"github.com/vancomm/endless-mines/internal/sessionlock"
)

type GameStore interface {
	CreateGameSession(ctx context.Context, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionID int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionID int64, seed uint64, state *mines.GameState) (*repository.GameSession, error)
}

var (
	ErrForbidden = errors.New("game session belongs to another player")
	ErrBadMove   = errors.New(`move must be "open" or "flag"`)
	ErrBadID     = errors.New("malformed game session id")
)

type GameHandler struct {
	log     *logrus.Logger
	store   GameStore
	locker  sessionlock.Locker
	board   leaderboard.Board
	metrics *metrics.Metrics
	ws      *config.WebSocket
	params  mines.Params
	seeds   func() uint64
}

func NewGameHandler(
	log *logrus.Logger,
	store GameStore,
	locker sessionlock.Locker,
	board leaderboard.Board,
	metrics *metrics.Metrics,
	ws *config.WebSocket,
	params mines.Params,
	seeds func() uint64,
) *GameHandler {
	return &GameHandler{
		log:     log,
		store:   store,
		locker:  locker,
		board:   board,
		metrics: metrics,
		ws:      ws,
		params:  params,
		seeds:   seeds,
	}
}

type newGameQuery struct {
	Seed *uint64 `schema:"seed"`
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	log := requestLog(g.log, r)

	var query newGameQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}
	window, err := ParseWindow(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}

	seed := g.seeds()
	if query.Seed != nil {
		seed = *query.Seed
	}

	params := repository.CreateGameSessionParams{
		Seed:  seed,
		State: mines.NewGame(g.params),
	}
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		params.PlayerID = &claims.PlayerId
		log = log.WithField("player", claims.Username)
	}

	session, err := g.store.CreateGameSession(r.Context(), params)
	if err != nil {
		internalError(w, log, "unable to create game session", err)
		return
	}
	g.metrics.GamesStarted.Inc()
	log.WithField("game_session_id", session.GameSessionID).Debug("created game session")

	sendJSONOrLog(w, log, http.StatusCreated, NewGameSessionDTO(session, params.State, window))
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	log := requestLog(g.log, r)

	id, err := sessionID(r)
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}
	window, err := ParseWindow(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}

	session, err := g.store.FetchGameSession(r.Context(), id)
	if err != nil {
		g.fail(w, log, err)
		return
	}
	game, err := session.Game()
	if err != nil {
		internalError(w, log, "db returned invalid game_session.state", err)
		return
	}

	sendJSONOrLog(w, log, http.StatusOK, NewGameSessionDTO(session, game, window))
}

type moveQuery struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func (q moveQuery) command() (command.Command, error) {
	p := mines.Point{X: q.X, Y: q.Y}
	switch q.Move {
	case "open":
		return command.Command{Kind: command.Open, Point: p}, nil
	case "flag":
		return command.Command{Kind: command.Flag, Point: p}, nil
	}
	return command.Command{}, ErrBadMove
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	var query moveQuery
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		sendErrorOrLog(w, requestLog(g.log, r), http.StatusBadRequest, err)
		return
	}
	c, err := query.command()
	if err != nil {
		sendErrorOrLog(w, requestLog(g.log, r), http.StatusBadRequest, err)
		return
	}
	g.run(w, r, c)
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g.run(w, r, command.Command{Kind: command.Reset})
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g.run(w, r, command.Command{Kind: command.Forfeit})
}

// run applies a single command to the session named in the path and answers
// with the resulting session.
func (g *GameHandler) run(w http.ResponseWriter, r *http.Request, c command.Command) {
	log := requestLog(g.log, r)

	id, err := sessionID(r)
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}
	window, err := ParseWindow(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}

	claims, _ := middleware.PlayerClaims(r.Context())
	session, game, err := g.apply(r.Context(), log, id, claims, c)
	if err != nil {
		g.fail(w, log, err)
		return
	}

	sendJSONOrLog(w, log, http.StatusOK, NewGameSessionDTO(session, game, window))
}

// apply runs commands against one session under its lock and stores the
// result. Commands after the first one that fails to change anything still
// run; the engine itself ignores moves once the game is over.
func (g *GameHandler) apply(
	ctx context.Context,
	log *logrus.Entry,
	id int64,
	claims *config.PlayerClaims,
	cs ...command.Command,
) (*repository.GameSession, *mines.GameState, error) {
	unlock, err := g.locker.Lock(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	session, err := g.store.FetchGameSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !canWrite(session, claims) {
		return nil, nil, ErrForbidden
	}
	game, err := session.Game()
	if err != nil {
		return nil, nil, fmt.Errorf("db returned invalid game_session.state: %w", err)
	}

	before := game
	seed := uint64(session.Seed)
	oracle := session.Oracle(game)
	for _, c := range cs {
		next := c.Apply(game, oracle)
		if c.Kind == command.Reset {
			// a fresh game gets a fresh field
			seed = g.seeds()
			oracle = next.Params().Oracle(seed)
			g.metrics.GamesStarted.Inc()
		}
		if c.Mutates() {
			g.metrics.ObserveMove(c.Move(), game, next)
		}
		game = next
	}
	if game == before {
		return session, game, nil
	}

	updated, err := g.store.UpdateGameSession(ctx, id, seed, game)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to update game session: %w", err)
	}

	log = log.WithFields(logrus.Fields{
		"game_session_id": id,
		"score":           game.Score(),
		"lives":           game.Lives(),
		"game_over":       game.GameOver(),
	})
	log.Debug("applied moves")

	if game.HighScore() > before.HighScore() {
		entry := leaderboard.Entry{GameSessionID: id, HighScore: game.HighScore()}
		if claims != nil {
			entry.Username = &claims.Username
		}
		if err := g.board.Submit(ctx, entry); err != nil {
			log.WithError(err).Warn("unable to submit high score")
		}
	}
	return updated, game, nil
}

// canWrite lets anyone play an anonymous session and only the owner play
// theirs.
func canWrite(session *repository.GameSession, claims *config.PlayerClaims) bool {
	if session.PlayerID == nil {
		return true
	}
	return claims != nil && claims.PlayerId == *session.PlayerID
}

func sessionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, ErrBadID
	}
	return id, nil
}

func (g *GameHandler) fail(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		sendErrorOrLog(w, log, http.StatusForbidden, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn("request abandoned")
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		internalError(w, log, "unable to serve game session", err)
	}
}
