package core

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"time"
)

const (
	MinPlayers = 1
	MaxPlayers = 8

	// A name match seen within this window is treated as a live duplicate.
	freshWindow = 5 * time.Second
)

type GameStatus string

const (
	WaitingForPlayers GameStatus = "WaitingForPlayers"
	InProgress        GameStatus = "InProgress"
	Finished          GameStatus = "Finished"
)

// Options are the per-process settings attached to every room. They are not
// part of the persisted snapshot.
type Options struct {
	CheatMode bool
	// Events drives market events on every turn. Nil disables them.
	Events    *game.EventEngine
	BoardSize int
	Clock     func() time.Time
}

func (o Options) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now().UTC()
}

type SharedState struct {
	TurnNumber       int                       `json:"turn_number"`
	Markets          map[string]*game.Market   `json:"markets"`
	Airports         map[string]game.Airport   `json:"airports"`
	CargoTypes       map[string]game.CargoType `json:"cargo_types"`
	Events           []game.MarketEvent        `json:"events"`
	WorldTime        time.Time                 `json:"world_time"`
	LastMarketUpdate time.Time                 `json:"last_market_update"`
}

type PlayerState struct {
	ID       uuid.UUID   `json:"player_id"`
	Name     string      `json:"player_name"`
	Player   game.Player `json:"player"`
	Online   bool        `json:"is_online"`
	LastSeen time.Time   `json:"last_seen"`
	JoinedAt time.Time   `json:"joined_at"`
}

// Room is one multiplayer game. It has no lock of its own: every access goes
// through the Registry, which serializes all rooms behind a single mutex.
type Room struct {
	ID           uuid.UUID                      `json:"id"`
	Name         string                         `json:"name"`
	HostPlayerID uuid.UUID                      `json:"host_player_id"`
	MaxPlayers   int                            `json:"max_players"`
	CreatedAt    time.Time                      `json:"created_at"`
	Status       GameStatus                     `json:"game_status"`
	Shared       SharedState                    `json:"shared_state"`
	Players      map[uuid.UUID]*PlayerState     `json:"players"`
	Statistics   map[uuid.UUID]*game.Statistics `json:"player_statistics"`
	Board        *game.MessageBoard             `json:"message_board"`
	// Revision counts applied mutations; stores keep the highest one.
	Revision     int64                          `json:"revision"`

	opts Options
}

// NewRoom does not validate maxPlayers; callers keep it within
// [MinPlayers, MaxPlayers].
func NewRoom(name string, hostID uuid.UUID, hostName string, maxPlayers int, catalog *game.Catalog, opts Options) *Room {
	now := opts.now()
	airports := catalog.CloneAirports()
	cargoTypes := catalog.CloneCargoTypes()

	r := &Room{
		ID:           uuid.New(),
		Name:         name,
		HostPlayerID: hostID,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		Status:       WaitingForPlayers,
		Shared: SharedState{
			TurnNumber:       1,
			Markets:          game.SeedMarkets(airports, cargoTypes, now),
			Airports:         airports,
			CargoTypes:       cargoTypes,
			Events:           []game.MarketEvent{},
			WorldTime:        now,
			LastMarketUpdate: now,
		},
		Players:    map[uuid.UUID]*PlayerState{},
		Statistics: map[uuid.UUID]*game.Statistics{},
		Board:      game.NewMessageBoard(opts.BoardSize),
		opts:       opts,
	}

	r.Players[hostID] = &PlayerState{
		ID:       hostID,
		Name:     hostName,
		Player:   game.NewStartingPlayer(r.hostAirport()),
		Online:   true,
		LastSeen: now,
		JoinedAt: now,
	}
	r.Statistics[hostID] = game.NewStatistics()

	return r
}

func (r *Room) hostAirport() string {
	if _, ok := r.Shared.Airports[game.DefaultAirport]; ok {
		return game.DefaultAirport
	}
	if sorted := (&game.Catalog{Airports: r.Shared.Airports}).SortedAirports(); len(sorted) > 0 {
		return sorted[0].ID
	}
	return game.DefaultAirport
}

// AddPlayer admits a player and returns the id the caller must use from now
// on. A player reusing the name of an offline or stale entry takes that entry
// over, keeping its id, loadout and join time.
func (r *Room) AddPlayer(requestedID uuid.UUID, name string, startingAirport string) (uuid.UUID, error) {
	now := r.opts.now()

	if r.OnlineCount() >= r.MaxPlayers {
		return uuid.Nil, ErrRoomFull
	}

	if existing := r.playerByName(name); existing != nil {
		if existing.Online && now.Sub(existing.LastSeen) <= freshWindow {
			return uuid.Nil, ErrNameTaken
		}
		existing.Online = true
		existing.LastSeen = now
		return existing.ID, nil
	}

	if _, ok := r.Players[requestedID]; ok {
		return uuid.Nil, ErrAlreadyInRoom
	}
	if r.Status != WaitingForPlayers {
		return uuid.Nil, ErrGameInProgress
	}

	if startingAirport == "" {
		startingAirport = game.DefaultAirport
	}
	if _, ok := r.Shared.Airports[startingAirport]; !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownAirport, startingAirport)
	}

	r.Players[requestedID] = &PlayerState{
		ID:       requestedID,
		Name:     name,
		Player:   game.NewStartingPlayer(startingAirport),
		Online:   true,
		LastSeen: now,
		JoinedAt: now,
	}
	r.Statistics[requestedID] = game.NewStatistics()

	return requestedID, nil
}

func (r *Room) playerByName(name string) *PlayerState {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MarkPlayerOffline keeps the player and their statistics for a later rejoin.
func (r *Room) MarkPlayerOffline(id uuid.UUID) error {
	p, ok := r.Players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Online = false
	p.LastSeen = r.opts.now()
	return nil
}

// UpdatePlayerActivity counts any request, reads included, as a sign of life.
func (r *Room) UpdatePlayerActivity(id uuid.UUID) bool {
	p, ok := r.Players[id]
	if !ok {
		return false
	}
	p.Online = true
	p.LastSeen = r.opts.now()
	return true
}

func (r *Room) Player(id uuid.UUID) (*PlayerState, bool) {
	p, ok := r.Players[id]
	return p, ok
}

func (r *Room) Market(airportID string) (*game.Market, bool) {
	m, ok := r.Shared.Markets[airportID]
	return m, ok
}

func (r *Room) stats(id uuid.UUID) *game.Statistics {
	s, ok := r.Statistics[id]
	if !ok {
		s = game.NewStatistics()
		r.Statistics[id] = s
	}
	return s
}

func (r *Room) OnlineCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Online {
			n++
		}
	}
	return n
}

func (r *Room) IsJoinable() bool {
	return r.Status == WaitingForPlayers && r.OnlineCount() < r.MaxPlayers
}

func (r *Room) HostName() string {
	if p, ok := r.Players[r.HostPlayerID]; ok {
		return p.Name
	}
	return "Unknown"
}

// LastActivity is the most recent LastSeen of any player, or the creation time.
func (r *Room) LastActivity() time.Time {
	last := r.CreatedAt
	for _, p := range r.Players {
		if p.LastSeen.After(last) {
			last = p.LastSeen
		}
	}
	return last
}

// AdvanceTurn moves the shared clock forward and, when an event engine is
// attached, expires old market events and may roll a new one.
func (r *Room) AdvanceTurn() {
	now := r.opts.now()
	r.Shared.TurnNumber++
	r.Shared.WorldTime = now

	if r.opts.Events == nil {
		return
	}

	active, expired := game.TickEvents(r.Shared.Events, r.Shared.Markets, now)
	changed := len(expired) > 0

	if ev, ok := r.opts.Events.Roll(r.Shared.Airports, r.Shared.CargoTypes); ok && !hasEventOn(active, ev) {
		if m, ok := r.Shared.Markets[ev.AirportID]; ok && ev.Apply(m, now) {
			active = append(active, ev)
			changed = true
		}
	}

	r.Shared.Events = active
	if changed {
		r.Shared.LastMarketUpdate = now
	}
}

// one event per price at a time, so expiry can restore the right value
func hasEventOn(events []game.MarketEvent, ev game.MarketEvent) bool {
	for _, e := range events {
		if e.AirportID == ev.AirportID && e.CargoID == ev.CargoID {
			return true
		}
	}
	return false
}

func (r *Room) StartGame() error {
	if r.Status != WaitingForPlayers || r.OnlineCount() == 0 {
		return ErrCannotStart
	}
	r.Status = InProgress
	return nil
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:             r.ID,
		Name:           r.Name,
		HostPlayerName: r.HostName(),
		CurrentPlayers: r.OnlineCount(),
		MaxPlayers:     r.MaxPlayers,
		CreatedAt:      r.CreatedAt,
		GameStatus:     r.Status,
		IsJoinable:     r.IsJoinable(),
		LastActivity:   r.LastActivity(),
	}
}

func (r *Room) snapshot() (RoomSnapshot, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return RoomSnapshot{}, fmt.Errorf("encoding room %s: %w", r.ID, err)
	}
	return RoomSnapshot{ID: r.ID, Name: r.Name, Revision: r.Revision, Data: data}, nil
}

// DecodeRoom rebuilds a room from a persisted snapshot.
func DecodeRoom(data []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.ID == uuid.Nil {
		return nil, fmt.Errorf("room snapshot has no id")
	}
	if r.Players == nil {
		r.Players = map[uuid.UUID]*PlayerState{}
	}
	if r.Statistics == nil {
		r.Statistics = map[uuid.UUID]*game.Statistics{}
	}
	if r.Board == nil {
		r.Board = game.NewMessageBoard(game.DefaultBoardSize)
	}
	if r.Shared.Markets == nil {
		r.Shared.Markets = game.SeedMarkets(r.Shared.Airports, r.Shared.CargoTypes, r.CreatedAt)
	}
	for _, p := range r.Players {
		if p.Player.Cargo == nil {
			p.Player.Cargo = game.CargoInventory{}
		}
	}
	return &r, nil
}

func (r *Room) attach(opts Options) {
	r.opts = opts
}
