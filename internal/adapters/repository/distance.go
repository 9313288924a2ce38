package repository

import (
	"math"

	"github.com/okian/lojista/internal/domain/model"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres,
// rounded to one decimal.
func DistanceKm(a, b model.Coordinates) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	km := 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
	return math.Round(km*10) / 10
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
