package game

import (
	"github.com/hashicorp/golang-lru"
	"math"
)

const earthRadiusKm = 6371.0

type MarketProfile struct {
	Produces     []string `json:"produces"`
	Consumes     []string `json:"consumes"`
	FuelModifier float64  `json:"fuel_modifier"`
}

type Airport struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	BaseFuelPrice int           `json:"base_fuel_price"`
	Profile       MarketProfile `json:"market_profile"`
}

type distanceKey [4]float64

var distances *lru.Cache

func init() {
	c, err := lru.New(1024)
	if err != nil {
		panic(err)
	}
	distances = c
}

// DistanceTo is the great-circle distance in kilometres.
func (a Airport) DistanceTo(other Airport) float64 {
	key := distanceKey{a.Latitude, a.Longitude, other.Latitude, other.Longitude}
	if v, ok := distances.Get(key); ok {
		return v.(float64)
	}
	d := haversine(a.Latitude, a.Longitude, other.Latitude, other.Longitude)
	distances.Add(key, d)
	return d
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(rLat1)*math.Cos(rLat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
