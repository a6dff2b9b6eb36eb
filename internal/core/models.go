package core

import (
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"time"
)

type CreateRoomRequest struct {
	Name           string `json:"name"`
	HostPlayerName string `json:"host_player_name"`
	MaxPlayers     *int   `json:"max_players,omitempty"`
}

type CreateRoomResponse struct {
	Room         RoomSummary `json:"room"`
	HostPlayerID uuid.UUID   `json:"host_player_id"`
}

type RoomSummary struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	HostPlayerName string     `json:"host_player_name"`
	CurrentPlayers int        `json:"current_players"`
	MaxPlayers     int        `json:"max_players"`
	CreatedAt      time.Time  `json:"created_at"`
	GameStatus     GameStatus `json:"game_status"`
	IsJoinable     bool       `json:"is_joinable"`
	LastActivity   time.Time  `json:"-"`
}

type JoinRoomRequest struct {
	PlayerName      string `json:"player_name"`
	StartingAirport string `json:"starting_airport,omitempty"`
}

type JoinRoomResponse struct {
	RoomID     uuid.UUID `json:"room_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
}

type LeaveRoomResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StartGameResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	GameStatus GameStatus `json:"game_status"`
}

type PlayerInfo struct {
	ID             uuid.UUID      `json:"player_id"`
	Name           string         `json:"player_name"`
	Money          int            `json:"money"`
	CurrentAirport string         `json:"current_airport"`
	Fuel           int            `json:"fuel"`
	MaxFuel        int            `json:"max_fuel"`
	CargoInventory map[string]int `json:"cargo_inventory"`
	CargoWeight    int            `json:"cargo_weight"`
	MaxCargoWeight int            `json:"max_cargo_weight"`
	FuelEfficiency float64        `json:"fuel_efficiency"`
	IsOnline       bool           `json:"is_online"`
	LastSeen       time.Time      `json:"last_seen"`
	IsHost         bool           `json:"is_host"`
}

type MarketInfo struct {
	AirportID   string         `json:"airport_id"`
	AirportName string         `json:"airport_name"`
	FuelPrice   int            `json:"fuel_price"`
	CargoPrices map[string]int `json:"cargo_prices"`
	LastUpdated time.Time      `json:"last_updated"`
}

type DestinationInfo struct {
	AirportID    string  `json:"airport_id"`
	AirportName  string  `json:"airport_name"`
	Distance     float64 `json:"distance"`
	FuelRequired int     `json:"fuel_required"`
	CanTravel    bool    `json:"can_travel"`
	FuelPrice    int     `json:"fuel_price"`
}

type GameStateResponse struct {
	RoomInfo              RoomSummary        `json:"room_info"`
	MyPlayerID            uuid.UUID          `json:"my_player_id"`
	Players               []PlayerInfo       `json:"players"`
	CurrentMarket         *MarketInfo        `json:"current_market"`
	AvailableDestinations []DestinationInfo  `json:"available_destinations"`
	Statistics            game.Statistics    `json:"statistics"`
	ActiveEvents          []game.MarketEvent `json:"active_events"`
	TurnNumber            int                `json:"turn_number"`
	WorldTime             time.Time          `json:"world_time"`
}

type TravelRequest struct {
	Destination string `json:"destination"`
}

type TravelResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	FuelConsumed *int    `json:"fuel_consumed"`
	NewLocation  *string `json:"new_location"`
}

type TradeAction string

const (
	Buy  TradeAction = "Buy"
	Sell TradeAction = "Sell"
)

type TradeRequest struct {
	CargoType string      `json:"cargo_type"`
	Quantity  int         `json:"quantity"`
	Action    TradeAction `json:"action"`
}

type TradeResponse struct {
	Success           bool           `json:"success"`
	Message           string         `json:"message"`
	TransactionAmount *int           `json:"transaction_amount"`
	NewMoney          *int           `json:"new_money"`
	NewInventory      map[string]int `json:"new_inventory"`
}

type FuelRequest struct {
	Quantity int `json:"quantity"`
}

type FuelResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Cost     *int   `json:"cost"`
	NewFuel  *int   `json:"new_fuel"`
	NewMoney *int   `json:"new_money"`
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

type PostMessageResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	MessageID *uuid.UUID `json:"message_id"`
}

type MessagesResponse struct {
	Messages   []game.Message `json:"messages"`
	AirportID  string         `json:"airport_id"`
	TotalCount int            `json:"total_count"`
}

type PlayerSessionInfo struct {
	PlayerID    uuid.UUID  `json:"player_id"`
	PlayerName  string     `json:"player_name"`
	RoomID      *uuid.UUID `json:"room_id"`
	RoomName    *string    `json:"room_name"`
	ConnectedAt time.Time  `json:"connected_at"`
}
