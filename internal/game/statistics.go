package game

import (
	"golang.org/x/exp/slices"
)

// Statistics are display-only running totals for one player.
type Statistics struct {
	TotalRevenue        int      `json:"total_revenue"`
	TotalExpenses       int      `json:"total_expenses"`
	NetProfit           int      `json:"net_profit"`
	CargoTrades         int      `json:"cargo_trades"`
	FuelPurchased       int      `json:"fuel_purchased"`
	DistancesTraveled   float64  `json:"distances_traveled"`
	AirportsVisited     []string `json:"airports_visited"`
	BestSingleTrade     int      `json:"best_single_trade"`
	MostProfitableCargo string   `json:"most_profitable_cargo"`
	EfficiencyScore     float64  `json:"efficiency_score"`
}

func NewStatistics() *Statistics {
	return &Statistics{AirportsVisited: []string{}}
}

func (s *Statistics) RecordSale(cargoID string, revenue int) {
	s.TotalRevenue += revenue
	s.CargoTrades++
	s.updateNet()
	if revenue > s.BestSingleTrade {
		s.BestSingleTrade = revenue
		s.MostProfitableCargo = cargoID
	}
}

func (s *Statistics) RecordCargoPurchase(expense int) {
	s.TotalExpenses += expense
	s.CargoTrades++
	s.updateNet()
}

func (s *Statistics) RecordFuelPurchase(units int, cost int) {
	s.FuelPurchased += units
	s.TotalExpenses += cost
	s.updateNet()
}

func (s *Statistics) RecordTravel(airportID string, distance float64) {
	s.DistancesTraveled += distance
	if !slices.Contains(s.AirportsVisited, airportID) {
		s.AirportsVisited = append(s.AirportsVisited, airportID)
	}
}

// Efficiency is net profit per turn.
func (s *Statistics) Efficiency(turns int) float64 {
	if turns <= 0 {
		return 0
	}
	return float64(s.NetProfit) / float64(turns)
}

// net profit saturates at zero
func (s *Statistics) updateNet() {
	s.NetProfit = max(s.TotalRevenue-s.TotalExpenses, 0)
}
