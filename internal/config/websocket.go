package config

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	ReadLimit    int64
	WriteTimeout time.Duration
	PongTimeout  time.Duration
}

func NewWebSocket() (*WebSocket, error) {
	origins := envList("WS_ALLOWED_ORIGINS")
	readLimit, err := envInt("WS_READ_LIMIT", 4096)
	if err != nil {
		return nil, err
	}

	ws := &WebSocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				return slices.Contains(origins, r.Header.Get("Origin"))
			},
		},
		ReadLimit:    int64(readLimit),
		WriteTimeout: 10 * time.Second,
		PongTimeout:  60 * time.Second,
	}
	return ws, nil
}
