package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gotoplanb/kzrk/internal/core"
	"github.com/rs/zerolog/log"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errInvalidID = errors.New("invalid id")

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("Could not write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, tag := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: tag, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found"
	case errors.Is(err, core.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, core.ErrInvalidDestination):
		return http.StatusNotFound, "invalid_destination"
	case errors.Is(err, core.ErrInvalidCargo):
		return http.StatusBadRequest, "invalid_cargo"
	case errors.Is(err, core.ErrUnknownAirport):
		return http.StatusBadRequest, "unknown_airport"
	case errors.Is(err, core.ErrMarketUnavailable):
		return http.StatusBadRequest, "market_unavailable"
	case errors.Is(err, core.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, core.ErrInvalidMaxPlayers):
		return http.StatusBadRequest, "invalid_max_players"
	case errors.Is(err, core.ErrInvalidMessage):
		return http.StatusBadRequest, "invalid_message"
	case errors.Is(err, core.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, errInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, core.ErrNotHost):
		return http.StatusForbidden, "not_host"
	case errors.Is(err, core.ErrLockPoisoned):
		return http.StatusInternalServerError, "lock_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", errInvalidID, name, raw)
	}
	return id, nil
}

// roomAndPlayer reads the {room} and {player} path variables.
func roomAndPlayer(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	roomID, err := pathID(r, "room")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	playerID, err := pathID(r, "player")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return roomID, playerID, nil
}
