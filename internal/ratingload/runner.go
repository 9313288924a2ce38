// Package ratingload drives a merchant backend with concurrent rating
// submissions, replays some of them, and verifies the backend's bookkeeping.
package ratingload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete load run against api.
func Run(ctx context.Context, log logger.Logger, cfg *Config, api Backend) (Stats, error) {
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting rating load run",
		logger.Any("merchants", cfg.Merchants),
		logger.Int("ratings", cfg.NumRatings),
		logger.Int("replayEvery", cfg.ReplayEvery),
		logger.Int("workers", cfg.Workers))

	h, err := api.Health(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if h.Status != "ok" {
		return stats, fmt.Errorf("%w: status %q", ErrUnhealthy, h.Status)
	}

	before, err := snapshotAverages(ctx, cfg, api)
	if err != nil {
		return stats, err
	}

	subs, err := generateRatings(ctx, cfg, stats.StartTime)
	if err != nil {
		return stats, fmt.Errorf("rating generation failed: %w", err)
	}
	stats.RatingsGenerated = len(subs)

	replays := replaysOf(subs, cfg.ReplayEvery)
	stats.Replayed = len(replays)

	all := make([]rating.Submission, 0, len(subs)+len(replays))
	all = append(all, subs...)
	all = append(all, replays...)
	if err := submitRatings(ctx, log, cfg, api, all, &stats); err != nil {
		return stats, fmt.Errorf("rating submission failed: %w", err)
	}

	after, err := snapshotAverages(ctx, cfg, api)
	if err != nil {
		return stats, err
	}

	if err := verifyResults(ctx, log, subs, before, after, &stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveRatings(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save ratings to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, &stats)
	return stats, nil
}

type savedRating struct {
	Key        string `json:"key"`
	MerchantID string `json:"idLojista"`
	Stars      int    `json:"nota"`
	Feedback   string `json:"feedback"`
}

// saveRatings writes the submitted ratings as a JSON array.
func saveRatings(filename string, subs []rating.Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	out := make([]savedRating, len(subs))
	for i, s := range subs {
		out[i] = savedRating{Key: s.IdempotencyKey, MerchantID: s.MerchantID, Stars: s.Stars, Feedback: s.Feedback}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ratings: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write ratings: %w", err)
	}
	return nil
}

func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.RatingsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("replayed", stats.Replayed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("ratingsPerSecond", perSecond))
}
