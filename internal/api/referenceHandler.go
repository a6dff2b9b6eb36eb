package api

import (
	"net/http"
)

type AirportInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	BaseFuelPrice int     `json:"base_fuel_price"`
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "KZRK Game API is running"})
}

func (a *API) AirportsHandler(w http.ResponseWriter, r *http.Request) {
	airports := a.service.Catalog().SortedAirports()
	out := make([]AirportInfo, 0, len(airports))
	for _, airport := range airports {
		out = append(out, AirportInfo{
			ID:            airport.ID,
			Name:          airport.Name,
			Latitude:      airport.Latitude,
			Longitude:     airport.Longitude,
			BaseFuelPrice: airport.BaseFuelPrice,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) CargoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Catalog().SortedCargoTypes())
}
