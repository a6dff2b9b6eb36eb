package core

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
)

// PostMessage pins a message to the board at the author's current airport.
// Empty or oversized content is an invalid request, not a rejection.
func (s *Service) PostMessage(roomID uuid.UUID, playerID uuid.UUID, req PostMessageRequest) (PostMessageResponse, error) {
	if err := game.ValidateMessage(req.Content); err != nil {
		return PostMessageResponse{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	var posted game.Message
	_, err := s.apply(roomID, playerID, Posted, func(room *Room) error {
		ps, ok := room.Player(playerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		msg, err := room.Board.Post(playerID, ps.Name, req.Content, ps.Player.CurrentAirport, room.opts.now())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
		}
		room.UpdatePlayerActivity(playerID)
		posted = msg
		return nil
	})
	if err != nil {
		return PostMessageResponse{}, err
	}

	return PostMessageResponse{Success: true, Message: "Message posted", MessageID: &posted.ID}, nil
}

// Messages returns the board at the player's current airport, newest first.
// A limit <= 0 returns everything kept.
func (s *Service) Messages(roomID uuid.UUID, playerID uuid.UUID, limit int) (MessagesResponse, error) {
	var resp MessagesResponse
	err := s.rooms.View(roomID, func(room *Room) error {
		ps, ok := room.Player(playerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		room.UpdatePlayerActivity(playerID)

		airport := ps.Player.CurrentAirport
		resp = MessagesResponse{
			Messages:   room.Board.At(airport, limit),
			AirportID:  airport,
			TotalCount: room.Board.Count(airport),
		}
		return nil
	})
	return resp, err
}
