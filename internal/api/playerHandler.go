package api

import (
	"github.com/gotoplanb/kzrk/internal/core"
	"net/http"
)

func (a *API) StateHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	state, err := a.service.RoomState(roomID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) TravelHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req core.TravelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.Travel(roomID, playerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) TradeHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req core.TradeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.Trade(roomID, playerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) FuelHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req core.FuelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.BuyFuel(roomID, playerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
