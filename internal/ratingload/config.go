package ratingload

import (
	"context"
	"time"

	"github.com/okian/lojista/internal/adapters/http/client"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
)

// Config holds configuration for a load run.
type Config struct {
	Merchants   []string          // Merchant ids to rate
	NumRatings  int               // Number of distinct ratings to submit
	ReplayEvery int               // Resend every n-th rating with the same key; 0 disables replays
	Workers     int               // Concurrent submissions
	Origin      model.Coordinates // Viewer position used when reading profiles
	OutputFile  string            // Where to write the submitted ratings; empty skips it
	Verbose     bool              // Log every failed submission
}

// Backend is the part of the merchant API a run talks to.
type Backend interface {
	Health(ctx context.Context) (client.Health, error)
	Merchant(ctx context.Context, id string, at model.Coordinates) (model.MerchantProfile, error)
	rating.Submitter
}

// Stats holds run statistics.
type Stats struct {
	RatingsGenerated int
	Submitted        int
	Accepted         int
	Duplicate        int
	Failed           int
	Replayed         int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
