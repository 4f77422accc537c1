package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"live-leaderboard-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades viewer connections and runs one broadcast session per
// connection.
type WSHandler struct {
	service  *app.LeaderboardService
	cadence  app.BroadcastCadence
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.LeaderboardService, cadence app.BroadcastCadence) *WSHandler {
	return &WSHandler{
		service: service,
		cadence: cadence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeLeaderboard streams leaderboard updates to one viewer until the
// connection closes. The broadcast loop is the only writer on the
// connection; a reader goroutine exists solely to detect disconnects and
// cancel the loop.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	session := app.NewBroadcastSession(h.service, h.cadence)
	err = session.Run(ctx, func(msg any) error {
		return conn.WriteJSON(msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("leaderboard stream closed: %v", err)
	}
}
