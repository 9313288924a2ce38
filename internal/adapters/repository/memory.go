package repository

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/okian/lojista/internal/domain/model"
)

// MemoryCatalog is an in-memory Catalog safe for concurrent use.
type MemoryCatalog struct {
	mu        sync.RWMutex
	merchants map[string]*MerchantRecord
}

// NewMemoryCatalog creates a catalog.
func NewMemoryCatalog(opts ...Option) *MemoryCatalog {
	c := &MemoryCatalog{merchants: make(map[string]*MerchantRecord)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCatalog) put(r MerchantRecord) {
	r.Products = slices.Clone(r.Products)
	r.starSum = r.Rating * float64(r.RatingCount)
	c.merchants[r.ID] = &r
}

// Merchant implements Catalog.
func (c *MemoryCatalog) Merchant(ctx context.Context, id string, from *model.Coordinates) (model.MerchantProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.merchants[id]
	if !ok {
		return model.MerchantProfile{}, ErrNotFound
	}
	p := model.MerchantProfile{
		ID:            model.FlexID(r.ID),
		CompanyName:   r.CompanyName,
		ImageURL:      r.ImageURL,
		Category:      r.Category,
		RatingAverage: r.Rating,
	}
	if from != nil {
		p.Distance = DistanceKm(*from, model.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude})
	}
	return p, nil
}

// Products implements Catalog.
func (c *MemoryCatalog) Products(ctx context.Context, merchantID string) ([]model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.merchants[merchantID]
	if !ok {
		return []model.Product{}, nil
	}
	out := make([]model.Product, len(r.Products))
	for i, p := range r.Products {
		out[i] = p.toModel()
	}
	return out, nil
}

// AddRating implements Catalog. The returned average is rounded to two
// decimals; the running total is not.
func (c *MemoryCatalog) AddRating(ctx context.Context, merchantID string, stars int) (float64, error) {
	if stars < 1 || stars > 5 {
		return 0, ErrInvalidStars
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.merchants[merchantID]
	if !ok {
		return 0, ErrNotFound
	}
	r.starSum += float64(stars)
	r.RatingCount++
	r.Rating = math.Round(r.starSum/float64(r.RatingCount)*100) / 100
	return r.Rating, nil
}

// Count implements Catalog.
func (c *MemoryCatalog) Count(ctx context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.merchants)
}
