package game

import (
	"math"
)

const (
	StartingMoney          = 5000
	StartingMaxFuel        = 200
	StartingMaxCargoWeight = 1000
	StartingFuelEfficiency = 15.0
	DefaultAirport         = "JFK"
)

// Player is the money/fuel/cargo loadout of a single pilot. The mutators never
// let money, fuel or cargo go negative and never fill the tank past MaxFuel.
type Player struct {
	Money          int            `json:"money"`
	CurrentAirport string         `json:"current_airport"`
	Fuel           int            `json:"fuel"`
	MaxFuel        int            `json:"max_fuel"`
	Cargo          CargoInventory `json:"cargo_inventory"`
	MaxCargoWeight int            `json:"max_cargo_weight"`
	FuelEfficiency float64        `json:"fuel_efficiency"`
}

// NewPlayer starts with two thirds of a tank.
func NewPlayer(money int, airport string, maxFuel int, maxCargoWeight int, efficiency float64) Player {
	return Player{
		Money:          money,
		CurrentAirport: airport,
		Fuel:           maxFuel * 2 / 3,
		MaxFuel:        maxFuel,
		Cargo:          CargoInventory{},
		MaxCargoWeight: maxCargoWeight,
		FuelEfficiency: efficiency,
	}
}

// NewStartingPlayer is the fixed loadout every room player gets.
func NewStartingPlayer(airport string) Player {
	return NewPlayer(StartingMoney, airport, StartingMaxFuel, StartingMaxCargoWeight, StartingFuelEfficiency)
}

func (p *Player) CanAfford(cost int) bool {
	return cost >= 0 && p.Money >= cost
}

// CanAffordUnits reports whether quantity units at price each fit in the
// player's money, without computing a product that could overflow.
func (p *Player) CanAffordUnits(price int, quantity int) bool {
	if quantity < 0 || p.Money < 0 {
		return false
	}
	if price <= 0 || quantity == 0 {
		return true
	}
	return quantity <= p.Money/price
}

func (p *Player) Spend(amount int) bool {
	if !p.CanAfford(amount) {
		return false
	}
	p.Money -= amount
	return true
}

func (p *Player) Earn(amount int) {
	if amount > 0 {
		p.Money += amount
	}
}

func (p *Player) ConsumeFuel(amount int) bool {
	if amount < 0 || p.Fuel < amount {
		return false
	}
	p.Fuel -= amount
	return true
}

// AddFuel clamps to the tank size.
func (p *Player) AddFuel(amount int) {
	if amount <= 0 {
		return
	}
	p.Fuel = min(p.Fuel+amount, p.MaxFuel)
}

func (p *Player) FuelSpace() int {
	return max(p.MaxFuel-p.Fuel, 0)
}

// FuelNeeded is ceil(distance / efficiency).
func (p *Player) FuelNeeded(distance float64) int {
	if distance <= 0 || p.FuelEfficiency <= 0 {
		return 0
	}
	return int(math.Ceil(distance / p.FuelEfficiency))
}

func (p *Player) CanTravel(distance float64) bool {
	return p.Fuel >= p.FuelNeeded(distance)
}

func (p *Player) CargoWeight(types map[string]CargoType) int {
	return p.Cargo.TotalWeight(types)
}

func (p *Player) CanCarry(additionalWeight int, types map[string]CargoType) bool {
	return additionalWeight >= 0 && additionalWeight <= p.MaxCargoWeight-p.CargoWeight(types)
}

// CanCarryUnits is CanCarry for quantity units of weightPerUnit each.
func (p *Player) CanCarryUnits(weightPerUnit int, quantity int, types map[string]CargoType) bool {
	if quantity < 0 {
		return false
	}
	free := p.MaxCargoWeight - p.CargoWeight(types)
	if free < 0 {
		return false
	}
	if weightPerUnit <= 0 || quantity == 0 {
		return true
	}
	return quantity <= free/weightPerUnit
}
