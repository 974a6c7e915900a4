package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/command"
	"github.com/vancomm/endless-mines/internal/middleware"
)

type wsError struct {
	Error string `json:"error"`
	Line  *int   `json:"line,omitempty"`
}

// Connect upgrades to a websocket that accepts the line protocol of package
// command. Every text message may hold several commands; they are applied
// under one lock and answered with a single session snapshot.
func (g *GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
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
	claims, _ := middleware.PlayerClaims(r.Context())

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	log = log.WithField("game_session_id", id)
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go g.keepAlive(ctx, conn, log)

	conn.SetReadLimit(g.ws.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(g.ws.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.ws.PongTimeout))
	})

	if err := g.write(conn, NewGameSessionDTO(session, game, window)); err != nil {
		log.WithError(err).Warn("write failed")
		return
	}

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			_ = g.write(conn, wsError{Error: "only text messages are supported"})
			continue
		}

		commands, reply := parseMessage(string(message))
		if reply != nil {
			if err := g.write(conn, reply); err != nil {
				log.WithError(err).Warn("write failed")
				return
			}
			continue
		}

		quit := false
		mutates := false
		for _, c := range commands {
			switch c.Kind {
			case command.View:
				window = NewWindow(c.Lo, c.Hi)
			case command.Quit:
				quit = true
			}
			mutates = mutates || c.Mutates()
		}

		if mutates {
			session, game, err = g.apply(ctx, log, id, claims, commands...)
		} else {
			session, err = g.store.FetchGameSession(ctx, id)
			if err == nil {
				game, err = session.Game()
			}
		}
		if err != nil {
			if !g.replyError(conn, log, err) {
				return
			}
			continue
		}

		if err := g.write(conn, NewGameSessionDTO(session, game, window)); err != nil {
			log.WithError(err).Warn("write failed")
			return
		}
		if quit {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(g.ws.WriteTimeout),
			)
			return
		}
	}
}

// parseMessage returns the commands of a message, or the error to answer
// with when any line is malformed or asks for a window that cannot be served.
// Nothing is applied in that case.
func parseMessage(text string) ([]command.Command, *wsError) {
	var commands []command.Command
	for i, line := range command.Lines(text) {
		c, err := command.Parse(line)
		if err == nil && c.Kind == command.View {
			err = NewWindow(c.Lo, c.Hi).Validate()
		}
		if err != nil {
			return nil, &wsError{Error: err.Error(), Line: &i}
		}
		commands = append(commands, c)
	}
	if len(commands) == 0 {
		return nil, &wsError{Error: command.ErrEmpty.Error()}
	}
	return commands, nil
}

// replyError reports err to the client and returns whether the connection
// is still usable.
func (g *GameHandler) replyError(conn *websocket.Conn, log *logrus.Entry, err error) bool {
	var reply wsError
	switch {
	case errors.Is(err, ErrForbidden):
		reply.Error = err.Error()
	case errors.Is(err, pgx.ErrNoRows):
		reply.Error = "game session not found"
	default:
		log.WithError(err).Error("unable to apply commands")
		reply.Error = http.StatusText(http.StatusInternalServerError)
	}
	if err := g.write(conn, reply); err != nil {
		log.WithError(err).Warn("write failed")
		return false
	}
	return true
}

func (g *GameHandler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(g.ws.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (g *GameHandler) keepAlive(ctx context.Context, conn *websocket.Conn, log *logrus.Entry) {
	ticker := time.NewTicker(g.ws.PongTimeout * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(g.ws.WriteTimeout))
			if err != nil {
				log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
