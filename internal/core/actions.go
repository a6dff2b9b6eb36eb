package core

import (
	"fmt"
	"github.com/google/uuid"
	"strings"
)

// Each action validates everything before it mutates anything, so a rejected
// action leaves the room exactly as it was.

func (s *Service) Travel(roomID uuid.UUID, playerID uuid.UUID, req TravelRequest) (TravelResponse, error) {
	dest := strings.ToUpper(strings.TrimSpace(req.Destination))
	if dest == "" {
		return TravelResponse{}, fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}

	var resp TravelResponse
	rejection, err := s.apply(roomID, playerID, Traveled, func(room *Room) error {
		ps, ok := room.Player(playerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		to, ok := room.Shared.Airports[dest]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidDestination, dest)
		}
		from, ok := room.Shared.Airports[ps.Player.CurrentAirport]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAirport, ps.Player.CurrentAirport)
		}
		if from.ID == to.ID {
			return reject("Already at %s", dest)
		}

		distance := from.DistanceTo(to)
		fuel := ps.Player.FuelNeeded(distance)
		if room.opts.CheatMode {
			fuel = 0
		} else if !ps.Player.CanTravel(distance) {
			return reject("Insufficient fuel. Need %d units, have %d", fuel, ps.Player.Fuel)
		}

		ps.Player.ConsumeFuel(fuel)
		ps.Player.CurrentAirport = dest
		room.stats(playerID).RecordTravel(dest, distance)
		room.UpdatePlayerActivity(playerID)
		room.AdvanceTurn()

		resp = TravelResponse{
			Success:      true,
			Message:      fmt.Sprintf("Traveled to %s (%s)", to.Name, dest),
			FuelConsumed: &fuel,
			NewLocation:  &dest,
		}
		return nil
	})
	if err != nil {
		return TravelResponse{}, err
	}
	if rejection != nil {
		return TravelResponse{Message: rejection.Error()}, nil
	}
	return resp, nil
}

func (s *Service) Trade(roomID uuid.UUID, playerID uuid.UUID, req TradeRequest) (TradeResponse, error) {
	if req.Quantity <= 0 {
		return TradeResponse{}, ErrInvalidQuantity
	}
	if req.Action != Buy && req.Action != Sell {
		return TradeResponse{}, fmt.Errorf("%w: action must be Buy or Sell", ErrInvalidRequest)
	}
	cargoID := strings.ToLower(strings.TrimSpace(req.CargoType))

	var resp TradeResponse
	rejection, err := s.apply(roomID, playerID, Traded, func(room *Room) error {
		ps, ok := room.Player(playerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		cargo, ok := room.Shared.CargoTypes[cargoID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidCargo, req.CargoType)
		}
		market, ok := room.Market(ps.Player.CurrentAirport)
		if !ok {
			return ErrMarketUnavailable
		}
		price, ok := market.CargoPrice(cargoID)
		if !ok {
			return fmt.Errorf("%w: %s is not traded at %s", ErrInvalidCargo, cargoID, market.AirportID)
		}

		// both checks bound quantity before price*quantity is formed
		var amount int
		var message string
		switch req.Action {
		case Buy:
			if !ps.Player.CanAffordUnits(price, req.Quantity) {
				return reject("Insufficient funds")
			}
			if !ps.Player.CanCarryUnits(cargo.WeightPerUnit, req.Quantity, room.Shared.CargoTypes) {
				return reject("Insufficient cargo capacity")
			}
			amount = price * req.Quantity
			ps.Player.Spend(amount)
			ps.Player.Cargo.Add(cargoID, req.Quantity)
			room.stats(playerID).RecordCargoPurchase(amount)
			message = fmt.Sprintf("Successfully bought %d units of %s", req.Quantity, cargoID)
		case Sell:
			if ps.Player.Cargo.Quantity(cargoID) < req.Quantity {
				return reject("Insufficient cargo to sell")
			}
			amount = price * req.Quantity
			ps.Player.Cargo.Remove(cargoID, req.Quantity)
			ps.Player.Earn(amount)
			room.stats(playerID).RecordSale(cargoID, amount)
			message = fmt.Sprintf("Successfully sold %d units of %s", req.Quantity, cargoID)
		}
		room.UpdatePlayerActivity(playerID)

		money := ps.Player.Money
		resp = TradeResponse{
			Success:           true,
			Message:           message,
			TransactionAmount: &amount,
			NewMoney:          &money,
			NewInventory:      ps.Player.Cargo.Clone(),
		}
		return nil
	})
	if err != nil {
		return TradeResponse{}, err
	}
	if rejection != nil {
		return TradeResponse{Message: rejection.Error()}, nil
	}
	return resp, nil
}

// BuyFuel never clamps: asking for more than the tank holds is rejected with
// the remaining capacity.
func (s *Service) BuyFuel(roomID uuid.UUID, playerID uuid.UUID, req FuelRequest) (FuelResponse, error) {
	if req.Quantity <= 0 {
		return FuelResponse{}, ErrInvalidQuantity
	}

	var resp FuelResponse
	rejection, err := s.apply(roomID, playerID, Refueled, func(room *Room) error {
		ps, ok := room.Player(playerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		market, ok := room.Market(ps.Player.CurrentAirport)
		if !ok {
			return ErrMarketUnavailable
		}

		space := ps.Player.FuelSpace()
		if space == 0 {
			return reject("Fuel tank is already full")
		}
		if req.Quantity > space {
			return reject("Fuel tank can only hold %d more units", space)
		}
		cost := market.FuelPrice * req.Quantity
		if !ps.Player.CanAfford(cost) {
			return reject("Insufficient funds for fuel purchase")
		}

		ps.Player.Spend(cost)
		ps.Player.AddFuel(req.Quantity)
		room.stats(playerID).RecordFuelPurchase(req.Quantity, cost)
		room.UpdatePlayerActivity(playerID)

		fuel, money := ps.Player.Fuel, ps.Player.Money
		resp = FuelResponse{
			Success:  true,
			Message:  fmt.Sprintf("Purchased %d units of fuel for $%d", req.Quantity, cost),
			Cost:     &cost,
			NewFuel:  &fuel,
			NewMoney: &money,
		}
		return nil
	})
	if err != nil {
		return FuelResponse{}, err
	}
	if rejection != nil {
		return FuelResponse{Message: rejection.Error()}, nil
	}
	return resp, nil
}
