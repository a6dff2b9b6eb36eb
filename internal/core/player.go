package core

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"sort"
	"time"
)

const sessionTable = "session"

// PlayerSession links a player to the room they are currently in, if any.
type PlayerSession struct {
	PlayerID    uuid.UUID  `json:"player_id"`
	PlayerName  string     `json:"player_name"`
	RoomID      *uuid.UUID `json:"game_room_id"`
	ConnectedAt time.Time  `json:"connected_at"`
}

type sessionRow struct {
	ID      string
	Name    string
	Session PlayerSession
}

var sessionSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		sessionTable: {
			Name: sessionTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"name": {
					Name:    "name",
					Indexer: &memdb.StringFieldIndex{Field: "Name"},
				},
			},
		},
	},
}

// SessionRegistry is the in-memory session table, indexed by player id and
// by player name.
type SessionRegistry struct {
	db *memdb.MemDB
}

func NewSessionRegistry() (*SessionRegistry, error) {
	db, err := memdb.NewMemDB(sessionSchema)
	if err != nil {
		return nil, fmt.Errorf("creating session table: %w", err)
	}
	return &SessionRegistry{db: db}, nil
}

func (s *SessionRegistry) Upsert(session PlayerSession) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	row := &sessionRow{
		ID:      session.PlayerID.String(),
		Name:    session.PlayerName,
		Session: session,
	}
	if err := txn.Insert(sessionTable, row); err != nil {
		return fmt.Errorf("storing session %s: %w", session.PlayerID, err)
	}
	txn.Commit()
	return nil
}

func (s *SessionRegistry) Get(playerID uuid.UUID) (PlayerSession, bool) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(sessionTable, "id", playerID.String())
	if err != nil || raw == nil {
		return PlayerSession{}, false
	}
	return raw.(*sessionRow).Session, true
}

// ClearRoom detaches the player from their room and returns the updated
// session.
func (s *SessionRegistry) ClearRoom(playerID uuid.UUID) (PlayerSession, bool, error) {
	session, ok := s.Get(playerID)
	if !ok {
		return PlayerSession{}, false, nil
	}
	session.RoomID = nil
	if err := s.Upsert(session); err != nil {
		return PlayerSession{}, false, err
	}
	return session, true, nil
}

func (s *SessionRegistry) FindByName(name string) ([]PlayerSession, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(sessionTable, "name", name)
	if err != nil {
		return nil, fmt.Errorf("looking up sessions for %q: %w", name, err)
	}

	var out []PlayerSession
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*sessionRow).Session)
	}
	sortSessions(out)
	return out, nil
}

func (s *SessionRegistry) Load(sessions map[uuid.UUID]PlayerSession) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	for id, session := range sessions {
		session.PlayerID = id
		row := &sessionRow{ID: id.String(), Name: session.PlayerName, Session: session}
		if err := txn.Insert(sessionTable, row); err != nil {
			return fmt.Errorf("loading session %s: %w", id, err)
		}
	}
	txn.Commit()
	return nil
}

// newest connection first
func sortSessions(sessions []PlayerSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].ConnectedAt.Equal(sessions[j].ConnectedAt) {
			return sessions[i].PlayerID.String() < sessions[j].PlayerID.String()
		}
		return sessions[i].ConnectedAt.After(sessions[j].ConnectedAt)
	})
}
