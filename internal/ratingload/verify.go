package ratingload

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

// averageTolerance absorbs the backend rounding averages to two decimals, once
// before and once after the run.
const averageTolerance = 0.011

// snapshotAverages reads the current rating average of every merchant.
func snapshotAverages(ctx context.Context, cfg *Config, api Backend) (map[string]float64, error) {
	out := make(map[string]float64, len(cfg.Merchants))
	for _, id := range cfg.Merchants {
		p, err := api.Merchant(ctx, id, cfg.Origin)
		if err != nil {
			return nil, fmt.Errorf("reading merchant %s: %w", id, err)
		}
		out[id] = p.RatingAverage
	}
	return out, nil
}

// verifyResults checks that every replay was reported as a duplicate, every
// distinct rating was accepted once, and each merchant's average moved from
// its previous value toward the mean of the stars it received.
func verifyResults(ctx context.Context, log logger.Logger, subs []rating.Submission, before, after map[string]float64, stats *Stats) error {
	if stats.Duplicate != stats.Replayed {
		return fmt.Errorf("%w: %d duplicates for %d replays", ErrDuplicateCount, stats.Duplicate, stats.Replayed)
	}
	if stats.Accepted != len(subs) {
		return fmt.Errorf("%w: %d of %d accepted", ErrLostRatings, stats.Accepted, len(subs))
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, s := range subs {
		sums[s.MerchantID] += s.Stars
		counts[s.MerchantID]++
	}

	for id, n := range counts {
		mean := float64(sums[id]) / float64(n)
		lo := math.Min(before[id], mean) - averageTolerance
		hi := math.Max(before[id], mean) + averageTolerance
		got := after[id]
		if got < lo || got > hi {
			return fmt.Errorf("%w: merchant %s went from %.2f to %.2f, received mean %.2f",
				ErrAverageDrift, id, before[id], got, mean)
		}
		log.Info(ctx, "merchant average verified",
			logger.String("merchant", id),
			logger.Float64("before", before[id]),
			logger.Float64("after", got),
			logger.Float64("receivedMean", mean),
			logger.Int("ratings", n))
	}
	return nil
}
