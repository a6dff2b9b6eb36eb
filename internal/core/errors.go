package core

import (
	"errors"
	"fmt"
)

// Lookup and structural errors. Callers cannot proceed past these.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrPlayerNotFound     = errors.New("player not found in room")
	ErrInvalidCargo       = errors.New("invalid cargo type")
	ErrInvalidDestination = errors.New("destination airport not found")
	ErrUnknownAirport     = errors.New("unknown airport")
	ErrMarketUnavailable  = errors.New("no market available at current location")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidMaxPlayers  = errors.New("max players must be between 1 and 8")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrNotHost            = errors.New("only the host can do that")
	ErrLockPoisoned       = errors.New("failed to acquire rooms lock")
)

// Rejection is a business rule refusing an otherwise well-formed request. The
// service reports it as success=false instead of failing the call.
type Rejection struct {
	msg string
}

func (r *Rejection) Error() string {
	return r.msg
}

var (
	ErrRoomFull       = &Rejection{"Room is full"}
	ErrNameTaken      = &Rejection{"Player name already taken in this room"}
	ErrAlreadyInRoom  = &Rejection{"Player already in room"}
	ErrGameInProgress = &Rejection{"Game already in progress"}
	ErrCannotStart    = &Rejection{"Game can only be started while waiting for players"}
)

func reject(format string, args ...any) *Rejection {
	return &Rejection{fmt.Sprintf(format, args...)}
}

// AsRejection unwraps a business rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
