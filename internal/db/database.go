package database

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/core"
	"github.com/gotoplanb/kzrk/internal/entities"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store keeps room and session snapshots in SQLite. It implements core.Store.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite takes one writer at a time
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entities.Room{}, &entities.PlayerSession{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("DB Init finished")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) UpsertRoom(snap core.RoomSnapshot) error {
	row := entities.Room{ID: snap.ID.String(), Name: snap.Name, Revision: snap.Revision, Data: snap.Data}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "revision", "data", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "rooms.revision < excluded.revision"},
		}},
	}).Create(&row)
	return tx.Error
}

func (s *Store) UpsertSession(session core.PlayerSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	row := entities.PlayerSession{
		PlayerID:   session.PlayerID.String(),
		PlayerName: session.PlayerName,
		Data:       data,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_name", "data", "updated_at"}),
	}).Create(&row)
	return tx.Error
}

func (s *Store) DeleteRoom(id uuid.UUID) error {
	return s.db.Delete(&entities.Room{}, "id = ?", id.String()).Error
}

func (s *Store) LoadAllRooms() (map[uuid.UUID]*core.Room, error) {
	var rows []entities.Room
	if tx := s.db.Find(&rows); tx.Error != nil {
		return nil, tx.Error
	}

	decoded := iter.Map(rows, func(row *entities.Room) *core.Room {
		room, err := decodeRoom(row)
		if err != nil {
			log.Warn().Err(err).Str("room", row.ID).Msg("Skipping malformed room")
			return nil
		}
		return room
	})

	rooms := make(map[uuid.UUID]*core.Room, len(decoded))
	for _, room := range decoded {
		if room != nil {
			rooms[room.ID] = room
		}
	}
	return rooms, nil
}

func decodeRoom(row *entities.Room) (*core.Room, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	room, err := core.DecodeRoom(row.Data)
	if err != nil {
		return nil, err
	}
	if room.ID != id {
		return nil, fmt.Errorf("row id %s does not match room %s", id, room.ID)
	}
	return room, nil
}

func (s *Store) LoadAllSessions() (map[uuid.UUID]core.PlayerSession, error) {
	var rows []entities.PlayerSession
	if tx := s.db.Find(&rows); tx.Error != nil {
		return nil, tx.Error
	}

	sessions := make(map[uuid.UUID]core.PlayerSession, len(rows))
	for _, session := range decodeSessions(rows) {
		sessions[session.PlayerID] = session
	}
	return sessions, nil
}

func (s *Store) FindSessionsByPlayerName(name string) ([]core.PlayerSession, error) {
	var rows []entities.PlayerSession
	if tx := s.db.Where("player_name = ?", name).Order("updated_at desc").Find(&rows); tx.Error != nil {
		return nil, tx.Error
	}
	return decodeSessions(rows), nil
}

func decodeSessions(rows []entities.PlayerSession) []core.PlayerSession {
	out := make([]core.PlayerSession, 0, len(rows))
	for _, row := range rows {
		var session core.PlayerSession
		if err := json.Unmarshal(row.Data, &session); err != nil {
			log.Warn().Err(err).Str("player", row.PlayerID).Msg("Skipping malformed session")
			continue
		}
		if session.PlayerID.String() != row.PlayerID {
			log.Warn().Str("player", row.PlayerID).Msg("Skipping session with mismatched id")
			continue
		}
		out = append(out, session)
	}
	return out
}
