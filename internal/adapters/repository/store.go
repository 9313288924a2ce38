// Package repository holds the stub backend's merchant catalog.
package repository

import (
	"context"

	"github.com/okian/lojista/internal/domain/model"
)

// Catalog provides read/write access to merchants and their products.
type Catalog interface {
	// Merchant returns the profile for id. When from is non-nil the distance is
	// computed from that point, otherwise it is zero.
	// Returns ErrNotFound if the merchant is unknown.
	Merchant(ctx context.Context, id string, from *model.Coordinates) (model.MerchantProfile, error)

	// Products returns the merchant's products in catalog order. An unknown
	// merchant has no products.
	Products(ctx context.Context, merchantID string) ([]model.Product, error)

	// AddRating folds stars into the merchant's average and returns the new one.
	AddRating(ctx context.Context, merchantID string, stars int) (float64, error)

	// Count returns the number of merchants.
	Count(ctx context.Context) int
}

// MerchantRecord is a catalog row: the profile plus where the merchant is and
// how many ratings its average is built from.
type MerchantRecord struct {
	ID          string          `yaml:"id"`
	CompanyName string          `yaml:"nomeEmpresa"`
	ImageURL    string          `yaml:"imagemLojista"`
	Category    string          `yaml:"categoria"`
	Latitude    float64         `yaml:"latitude"`
	Longitude   float64         `yaml:"longitude"`
	Rating      float64         `yaml:"avaliacao"`
	RatingCount int             `yaml:"totalAvaliacoes"`
	Products    []ProductRecord `yaml:"produtos"`

	// starSum is the unrounded total behind Rating.
	starSum float64
}

// ProductRecord is a product row.
type ProductRecord struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"nome"`
	Category string  `yaml:"categoria"`
	ImageURL string  `yaml:"imagemProduto"`
	Rating   float64 `yaml:"avaliacao"`
}

func (p ProductRecord) toModel() model.Product {
	return model.Product{
		ID:            model.FlexID(p.ID),
		Name:          p.Name,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		RatingAverage: p.Rating,
	}
}
