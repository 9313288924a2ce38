// Package model contains domain models passed between layers.
//
// JSON names mirror the merchant backend's wire format.
package model

import (
	"fmt"
	"strconv"
)

// Coordinates is a single latitude/longitude fix.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// String renders the fix as "lat,lon".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// MerchantProfile is the merchant detail returned for a viewer position.
// Distance is computed by the backend from the supplied coordinates.
type MerchantProfile struct {
	ID            FlexID  `json:"id" validate:"required"`
	CompanyName   string  `json:"nomeEmpresa" validate:"required"`
	ImageURL      string  `json:"imagemLojista"`
	Category      string  `json:"categoria"`
	Distance      float64 `json:"distancia"`
	RatingAverage float64 `json:"avaliacao" validate:"gte=0,lte=5"`
}

// Product is one entry of a merchant's product list.
type Product struct {
	ID            FlexID  `json:"id" validate:"required"`
	Name          string  `json:"nome"`
	Category      string  `json:"categoria"`
	ImageURL      string  `json:"imagemProduto"`
	RatingAverage float64 `json:"avaliacao" validate:"gte=0,lte=5"`
}

// FormatDistance renders a backend distance in kilometres.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}
