package api

import (
	"github.com/gorilla/websocket"
	"github.com/gotoplanb/kzrk/internal/core"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"net/http"
	"time"
)

const writeWait = 10 * time.Second

// CORS is handled by the router; the feed accepts any origin.
var ws = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedMessage struct {
	Event *core.RoomEvent        `json:"event"`
	State core.GameStateResponse `json:"state"`
}

// FeedHandler pushes the player's state view once on connect and again after
// every change in the room, until either side closes. Only the connect counts
// as player activity.
func (a *API) FeedHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// membership is checked before upgrading so errors stay plain HTTP
	state, err := a.service.RoomState(roomID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}

	socket, err := ws.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	events, cancel := a.service.Feed().Subscribe(roomID)
	defer cancel()

	var wg conc.WaitGroup
	defer wg.Wait()
	defer socket.Close()

	done := make(chan struct{})
	wg.Go(func() {
		defer close(done)
		for {
			if _, _, err := socket.ReadMessage(); err != nil {
				return
			}
		}
	})

	if err := write(socket, FeedMessage{State: state}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				_ = socket.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"),
					time.Now().Add(writeWait))
				return
			}
			state, err := a.service.WatchState(roomID, playerID)
			if err != nil {
				log.Warn().Err(err).Str("room", roomID.String()).Msg("Feed state unavailable")
				return
			}
			if err := write(socket, FeedMessage{Event: &ev, State: state}); err != nil {
				return
			}
		}
	}
}

func write(socket *websocket.Conn, msg FeedMessage) error {
	_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
	return socket.WriteJSON(msg)
}
