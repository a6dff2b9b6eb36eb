package core

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"github.com/rs/zerolog/log"
	"strings"
	"time"
)

const DefaultMaxPlayers = 4

type ServiceConfig struct {
	// Store mirrors rooms and sessions to disk. Nil keeps everything in memory.
	Store             Store
	Catalog           *game.Catalog
	RoomOptions       Options
	Feed              *Feed
	DefaultMaxPlayers int
}

// Service sequences registry, room, session and persistence work for every
// player action. The in-memory state is authoritative; the store is a best
// effort mirror used for restart recovery.
type Service struct {
	rooms             *Registry
	sessions          *SessionRegistry
	store             Store
	catalog           *game.Catalog
	opts              Options
	feed              *Feed
	defaultMaxPlayers int
}

func NewService(cfg ServiceConfig) (*Service, error) {
	sessions, err := NewSessionRegistry()
	if err != nil {
		return nil, err
	}

	s := &Service{
		rooms:             NewRegistry(),
		sessions:          sessions,
		store:             cfg.Store,
		catalog:           cfg.Catalog,
		opts:              cfg.RoomOptions,
		feed:              cfg.Feed,
		defaultMaxPlayers: cfg.DefaultMaxPlayers,
	}
	if s.catalog == nil {
		s.catalog = game.DefaultCatalog()
	}
	if s.feed == nil {
		s.feed = NewFeed()
	}
	if s.defaultMaxPlayers == 0 {
		s.defaultMaxPlayers = DefaultMaxPlayers
	}

	if s.store != nil {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) restore() error {
	rooms, err := s.store.LoadAllRooms()
	if err != nil {
		return fmt.Errorf("loading rooms: %w", err)
	}
	if err := s.rooms.Restore(rooms, s.opts); err != nil {
		return err
	}

	sessions, err := s.store.LoadAllSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	if err := s.sessions.Load(sessions); err != nil {
		return err
	}

	log.Info().Int("rooms", len(rooms)).Int("sessions", len(sessions)).Msg("State restored")
	return nil
}

func (s *Service) Feed() *Feed {
	return s.feed
}

func (s *Service) Catalog() *game.Catalog {
	return s.catalog
}

func (s *Service) now() time.Time {
	return s.opts.now()
}

func (s *Service) persistRoom(snap RoomSnapshot) {
	if s.store == nil || snap.ID == uuid.Nil {
		return
	}
	if err := s.store.UpsertRoom(snap); err != nil {
		log.Warn().Err(err).Str("room", snap.ID.String()).Msg("Could not persist room")
		return
	}
	// the janitor may have removed the room while this write was in flight
	if !s.rooms.Has(snap.ID) {
		if err := s.store.DeleteRoom(snap.ID); err != nil {
			log.Warn().Err(err).Str("room", snap.ID.String()).Msg("Could not delete stored room")
		}
	}
}

func (s *Service) saveSession(session PlayerSession) {
	if err := s.sessions.Upsert(session); err != nil {
		log.Error().Err(err).Str("player", session.PlayerID.String()).Msg("Could not index session")
	}
	if s.store == nil {
		return
	}
	if err := s.store.UpsertSession(session); err != nil {
		log.Warn().Err(err).Str("player", session.PlayerID.String()).Msg("Could not persist session")
	}
}

// apply runs fn against the room under the registry lock. A *Rejection
// returned by fn is handed back to the caller untouched and nothing is
// persisted. Otherwise the room snapshot is persisted and subscribers are
// told, both after the lock is released.
func (s *Service) apply(roomID uuid.UUID, playerID uuid.UUID, kind RoomEventType, fn func(*Room) error) (*Rejection, error) {
	var turn int
	snap, err := s.rooms.Apply(roomID, func(room *Room) error {
		if err := fn(room); err != nil {
			return err
		}
		turn = room.Shared.TurnNumber
		return nil
	})
	if rejection, ok := AsRejection(err); ok {
		return rejection, nil
	}
	if err != nil {
		return nil, err
	}

	s.persistRoom(snap)
	s.feed.Publish(RoomEvent{Type: kind, RoomID: roomID, PlayerID: playerID, Turn: turn})
	return nil, nil
}

func (s *Service) CreateRoom(req CreateRoomRequest) (CreateRoomResponse, error) {
	name := strings.TrimSpace(req.Name)
	hostName := strings.TrimSpace(req.HostPlayerName)
	if name == "" {
		return CreateRoomResponse{}, fmt.Errorf("%w: room name is required", ErrInvalidRequest)
	}
	if hostName == "" {
		return CreateRoomResponse{}, fmt.Errorf("%w: host player name is required", ErrInvalidRequest)
	}

	maxPlayers := s.defaultMaxPlayers
	if req.MaxPlayers != nil {
		maxPlayers = *req.MaxPlayers
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return CreateRoomResponse{}, ErrInvalidMaxPlayers
	}

	hostID := uuid.New()
	room := NewRoom(name, hostID, hostName, maxPlayers, s.catalog, s.opts)
	summary := room.Summary()

	snap, err := s.rooms.Create(room)
	if err != nil {
		return CreateRoomResponse{}, err
	}
	s.persistRoom(snap)

	roomID := room.ID
	s.saveSession(PlayerSession{
		PlayerID:    hostID,
		PlayerName:  hostName,
		RoomID:      &roomID,
		ConnectedAt: summary.CreatedAt,
	})

	log.Info().
		Str("room", roomID.String()).
		Str("name", name).
		Str("host", hostName).
		Int("max_players", maxPlayers).
		Msg("Room created")

	return CreateRoomResponse{Room: summary, HostPlayerID: hostID}, nil
}

func (s *Service) ListRooms() ([]RoomSummary, error) {
	return s.rooms.List()
}

func (s *Service) JoinRoom(roomID uuid.UUID, req JoinRoomRequest) (JoinRoomResponse, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return JoinRoomResponse{}, fmt.Errorf("%w: player name is required", ErrInvalidRequest)
	}
	airport := strings.ToUpper(strings.TrimSpace(req.StartingAirport))

	requested := uuid.New()
	var assigned uuid.UUID
	var turn int
	snap, err := s.rooms.Apply(roomID, func(room *Room) error {
		id, err := room.AddPlayer(requested, name, airport)
		if err != nil {
			return err
		}
		assigned = id
		turn = room.Shared.TurnNumber
		return nil
	})

	resp := JoinRoomResponse{RoomID: roomID, PlayerName: name}
	if rejection, ok := AsRejection(err); ok {
		resp.Message = rejection.Error()
		return resp, nil
	}
	if err != nil {
		return JoinRoomResponse{}, err
	}

	// the assigned id differs from the requested one on a rejoin
	s.persistRoom(snap)
	s.feed.Publish(RoomEvent{Type: Joined, RoomID: roomID, PlayerID: assigned, Turn: turn})

	s.saveSession(PlayerSession{
		PlayerID:    assigned,
		PlayerName:  name,
		RoomID:      &roomID,
		ConnectedAt: s.now(),
	})

	resp.PlayerID = assigned
	resp.Success = true
	resp.Message = "Successfully joined room"
	if assigned != requested {
		resp.Message = "Successfully rejoined room"
	}

	log.Info().Str("room", roomID.String()).Str("player", assigned.String()).Str("name", name).Msg(resp.Message)
	return resp, nil
}

// LeaveRoom marks the player offline. The room and the player's state are
// kept so the same name can rejoin later.
func (s *Service) LeaveRoom(roomID uuid.UUID, playerID uuid.UUID) (LeaveRoomResponse, error) {
	_, err := s.apply(roomID, playerID, Left, func(room *Room) error {
		if err := room.MarkPlayerOffline(playerID); err != nil {
			return fmt.Errorf("%w: %s", err, playerID)
		}
		if room.OnlineCount() == 0 && room.Status == InProgress {
			room.Status = WaitingForPlayers
		}
		return nil
	})
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	session, ok, err := s.sessions.ClearRoom(playerID)
	if err != nil {
		log.Error().Err(err).Str("player", playerID.String()).Msg("Could not clear session room")
	} else if ok && s.store != nil {
		if err := s.store.UpsertSession(session); err != nil {
			log.Warn().Err(err).Str("player", playerID.String()).Msg("Could not persist session")
		}
	}

	log.Info().Str("room", roomID.String()).Str("player", playerID.String()).Msg("Player left room")
	return LeaveRoomResponse{Success: true, Message: "Successfully left room"}, nil
}

// StartGame moves a waiting room into play. Only the host may do it.
func (s *Service) StartGame(roomID uuid.UUID, playerID uuid.UUID) (StartGameResponse, error) {
	var status GameStatus
	rejection, err := s.apply(roomID, playerID, Started, func(room *Room) error {
		if _, ok := room.Player(playerID); !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		if room.HostPlayerID != playerID {
			return ErrNotHost
		}
		if err := room.StartGame(); err != nil {
			return err
		}
		room.UpdatePlayerActivity(playerID)
		status = room.Status
		return nil
	})
	if err != nil {
		return StartGameResponse{}, err
	}
	if rejection != nil {
		return StartGameResponse{Message: rejection.Error()}, nil
	}

	log.Info().Str("room", roomID.String()).Msg("Game started")
	return StartGameResponse{Success: true, Message: "Game started", GameStatus: status}, nil
}

// RoomState builds the requesting player's view of the room. Reading counts
// as activity but is not persisted.
func (s *Service) RoomState(roomID uuid.UUID, playerID uuid.UUID) (GameStateResponse, error) {
	var state GameStateResponse
	err := s.rooms.View(roomID, func(room *Room) error {
		if !room.UpdatePlayerActivity(playerID) {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		var err error
		state, err = buildState(room, playerID)
		return err
	})
	return state, err
}

// WatchState builds the same view as RoomState without counting as activity,
// so pushing a frame to a player who just left keeps them offline.
func (s *Service) WatchState(roomID uuid.UUID, playerID uuid.UUID) (GameStateResponse, error) {
	var state GameStateResponse
	err := s.rooms.View(roomID, func(room *Room) error {
		var err error
		state, err = buildState(room, playerID)
		return err
	})
	return state, err
}

// FindPlayerSessions merges the in-memory sessions with the stored ones,
// newest connection first.
func (s *Service) FindPlayerSessions(name string) ([]PlayerSessionInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidRequest)
	}

	sessions, err := s.sessions.FindByName(name)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		stored, err := s.store.FindSessionsByPlayerName(name)
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("Could not search stored sessions")
		}
		seen := make(map[uuid.UUID]bool, len(sessions))
		for _, session := range sessions {
			seen[session.PlayerID] = true
		}
		for _, session := range stored {
			if !seen[session.PlayerID] {
				sessions = append(sessions, session)
				seen[session.PlayerID] = true
			}
		}
		sortSessions(sessions)
	}

	out := make([]PlayerSessionInfo, 0, len(sessions))
	for _, session := range sessions {
		info := PlayerSessionInfo{
			PlayerID:    session.PlayerID,
			PlayerName:  session.PlayerName,
			RoomID:      session.RoomID,
			ConnectedAt: session.ConnectedAt,
		}
		if session.RoomID != nil {
			if summary, err := s.rooms.Get(*session.RoomID); err == nil {
				roomName := summary.Name
				info.RoomName = &roomName
			}
		}
		out = append(out, info)
	}
	return out, nil
}
