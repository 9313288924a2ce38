package ratingload

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

// submitRatings sends every submission with at most cfg.Workers in flight.
// Individual failures are counted, not returned.
func submitRatings(ctx context.Context, log logger.Logger, cfg *Config, api rating.Submitter, subs []rating.Submission, stats *Stats) error {
	log.Info(ctx, "submitting ratings", logger.Int("count", len(subs)), logger.Int("workers", cfg.Workers))

	var submitted, accepted, duplicate, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, s := range subs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ack, err := api.SubmitRating(gctx, s)
			submitted.Add(1)
			switch {
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "rating failed",
						logger.String("merchant", s.MerchantID),
						logger.String("key", s.IdempotencyKey),
						logger.Error(err))
				}
			case ack.Duplicate:
				duplicate.Add(1)
			default:
				accepted.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "rating submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
	return err
}
