package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/middleware"
	"github.com/vancomm/endless-mines/internal/repository"
)

type PlayerStore interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type Auth struct {
	log     *logrus.Logger
	store   PlayerStore
	cookies *config.Cookies
}

func NewAuth(log *logrus.Logger, store PlayerStore, cookies *config.Cookies) *Auth {
	return &Auth{log: log, store: store, cookies: cookies}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password must not exceed 72 bytes")
	ErrUsernameTaken      = errors.New("username taken")
	ErrUsernameUnknown    = errors.New("username unknown")
)

type credentials struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
}

func parseCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if err := r.ParseForm(); err != nil {
		return creds, ErrBadAuthBody
	}
	if err := decoder.Decode(&creds, r.PostForm); err != nil {
		return creds, ErrBadAuthBody
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, ErrBadAuthBody
	}
	return creds, nil
}

// Status may be called just for the side effect of refreshing or clearing
// the auth cookies.
func (a *Auth) Status(w http.ResponseWriter, r *http.Request) {
	log := requestLog(a.log, r)

	status := &Status{}
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		status.LoggedIn = true
		status.Player = &PlayerInfo{claims.PlayerId, claims.Username}
		log.Debug("refresh cookies")
		if err := a.cookies.Refresh(w, claims); err != nil {
			internalError(w, log, "unable to sign checked claims", err)
			return
		}
	} else {
		log.Debug("no valid cookies - clear cookies")
		a.cookies.Clear(w)
	}

	sendJSONOrLog(w, log, http.StatusOK, status)
}

func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	log := requestLog(a.log, r)

	creds, err := parseCredentials(r)
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}
	password := []byte(creds.Password)
	if len(password) > 72 {
		sendErrorOrLog(w, log, http.StatusBadRequest, ErrBadPasswordTooLong)
		return
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		internalError(w, log, "unable to hash password", err)
		return
	}

	player, err := a.store.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     creds.Username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendErrorOrLog(w, log, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, log, "unable to insert player", err)
		return
	}
	log.WithField("player", player.Username).Info("registered player")

	a.login(w, log, player)
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	log := requestLog(a.log, r)

	creds, err := parseCredentials(r)
	if err != nil {
		sendErrorOrLog(w, log, http.StatusBadRequest, err)
		return
	}

	player, err := a.store.FetchPlayer(r.Context(), creds.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendErrorOrLog(w, log, http.StatusNotFound, ErrUsernameUnknown)
		return
	}
	if err != nil {
		internalError(w, log, "unable to fetch player", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(creds.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	a.login(w, log, player)
}

func (a *Auth) login(w http.ResponseWriter, log *logrus.Entry, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerID, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		internalError(w, log, "unable to sign jwt token", err)
		return
	}
	sendJSONOrLog(w, log, http.StatusOK, &Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerID, player.Username},
	})
}

func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
