package core

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/gotoplanb/kzrk/internal/game"
	"golang.org/x/exp/maps"
	"sort"
)

func buildState(room *Room, playerID uuid.UUID) (GameStateResponse, error) {
	me, ok := room.Player(playerID)
	if !ok {
		return GameStateResponse{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	here, ok := room.Shared.Airports[me.Player.CurrentAirport]
	if !ok {
		return GameStateResponse{}, fmt.Errorf("%w: %s", ErrUnknownAirport, me.Player.CurrentAirport)
	}

	var market *MarketInfo
	if m, ok := room.Market(here.ID); ok {
		market = &MarketInfo{
			AirportID:   m.AirportID,
			AirportName: here.Name,
			FuelPrice:   m.FuelPrice,
			CargoPrices: maps.Clone(m.CargoPrices),
			LastUpdated: m.LastUpdated,
		}
	}

	stats := *room.stats(playerID)
	stats.AirportsVisited = append([]string{}, stats.AirportsVisited...)
	stats.EfficiencyScore = stats.Efficiency(room.Shared.TurnNumber)

	return GameStateResponse{
		RoomInfo:              room.Summary(),
		MyPlayerID:            playerID,
		Players:               playerInfos(room),
		CurrentMarket:         market,
		AvailableDestinations: destinations(room, me, here),
		Statistics:            stats,
		ActiveEvents:          append([]game.MarketEvent{}, room.Shared.Events...),
		TurnNumber:            room.Shared.TurnNumber,
		WorldTime:             room.Shared.WorldTime,
	}, nil
}

// destinations are sorted nearest first.
func destinations(room *Room, me *PlayerState, here game.Airport) []DestinationInfo {
	out := make([]DestinationInfo, 0, len(room.Shared.Airports))
	for id, airport := range room.Shared.Airports {
		if id == here.ID {
			continue
		}
		distance := here.DistanceTo(airport)
		fuelPrice := game.DefaultFuelPrice
		if m, ok := room.Market(id); ok {
			fuelPrice = m.FuelPrice
		}
		out = append(out, DestinationInfo{
			AirportID:    id,
			AirportName:  airport.Name,
			Distance:     distance,
			FuelRequired: me.Player.FuelNeeded(distance),
			CanTravel:    room.opts.CheatMode || me.Player.CanTravel(distance),
			FuelPrice:    fuelPrice,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].AirportID < out[j].AirportID
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}

func playerInfos(room *Room) []PlayerInfo {
	out := make([]PlayerInfo, 0, len(room.Players))
	for _, ps := range room.Players {
		out = append(out, PlayerInfo{
			ID:             ps.ID,
			Name:           ps.Name,
			Money:          ps.Player.Money,
			CurrentAirport: ps.Player.CurrentAirport,
			Fuel:           ps.Player.Fuel,
			MaxFuel:        ps.Player.MaxFuel,
			CargoInventory: ps.Player.Cargo.Clone(),
			CargoWeight:    ps.Player.CargoWeight(room.Shared.CargoTypes),
			MaxCargoWeight: ps.Player.MaxCargoWeight,
			FuelEfficiency: ps.Player.FuelEfficiency,
			IsOnline:       ps.Online,
			LastSeen:       ps.LastSeen,
			IsHost:         ps.ID == room.HostPlayerID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
