package api

import (
	"fmt"
	"github.com/gotoplanb/kzrk/internal/core"
	"net/http"
	"strconv"
)

func (a *API) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req core.PostMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := a.service.PostMessage(roomID, playerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MessagesHandler accepts an optional ?limit=N.
func (a *API) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	roomID, playerID, err := roomAndPlayer(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", core.ErrInvalidRequest))
			return
		}
	}

	resp, err := a.service.Messages(roomID, playerID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
