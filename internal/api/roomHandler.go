package api

import (
	"github.com/gorilla/mux"
	"github.com/gotoplanb/kzrk/internal/core"
	"net/http"
)

func (a *API) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req core.CreateRoomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.CreateRoom(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.service.ListRooms()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (a *API) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "room")
	if err != nil {
		writeError(w, err)
		return
	}

	var req core.JoinRoomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.JoinRoom(roomID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.LeaveRoom(roomID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.StartGame(roomID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.service.FindPlayerSessions(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
