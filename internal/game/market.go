package game

import (
	"time"
)

const DefaultFuelPrice = 50

// Market is the price snapshot of one airport.
type Market struct {
	AirportID   string         `json:"airport_id"`
	FuelPrice   int            `json:"fuel_price"`
	CargoPrices map[string]int `json:"cargo_prices"`
	LastUpdated time.Time      `json:"last_updated"`
}

func NewMarket(airportID string, fuelPrice int, at time.Time) *Market {
	return &Market{
		AirportID:   airportID,
		FuelPrice:   fuelPrice,
		CargoPrices: map[string]int{},
		LastUpdated: at,
	}
}

func (m *Market) CargoPrice(cargoID string) (int, bool) {
	p, ok := m.CargoPrices[cargoID]
	return p, ok
}

func (m *Market) SetCargoPrice(cargoID string, price int, at time.Time) {
	m.CargoPrices[cargoID] = max(price, 1)
	m.LastUpdated = at
}

// SeedMarkets builds one market per airport with cargo priced at base price.
func SeedMarkets(airports map[string]Airport, types map[string]CargoType, at time.Time) map[string]*Market {
	markets := make(map[string]*Market, len(airports))
	for id := range airports {
		m := NewMarket(id, DefaultFuelPrice, at)
		for cargoID, t := range types {
			m.SetCargoPrice(cargoID, t.BasePrice, at)
		}
		markets[id] = m
	}
	return markets
}
