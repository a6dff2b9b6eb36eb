package core

import (
	"github.com/google/uuid"
)

// RoomSnapshot is a serialized room ready to be written to a Store.
type RoomSnapshot struct {
	ID       uuid.UUID
	Name     string
	Revision int64
	Data     []byte
}

// Store mirrors rooms and sessions to durable storage. Writes are best
// effort: the service logs and drops Store errors.
type Store interface {
	// UpsertRoom ignores a snapshot whose revision is not newer than the
	// stored one, so writes finishing out of order cannot roll a room back.
	UpsertRoom(snap RoomSnapshot) error
	UpsertSession(session PlayerSession) error
	DeleteRoom(id uuid.UUID) error
	// Loads skip records that cannot be decoded.
	LoadAllRooms() (map[uuid.UUID]*Room, error)
	LoadAllSessions() (map[uuid.UUID]PlayerSession, error)
	FindSessionsByPlayerName(name string) ([]PlayerSession, error)
}
