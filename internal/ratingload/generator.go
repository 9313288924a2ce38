package ratingload

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lojista/internal/domain/rating"
)

// Star weights, index 0 is one star. Most customers are happy.
var starWeights = [rating.MaxStars]int64{1, 1, 2, 3, 3}

var feedbacks = []string{
	"",
	"Ótimo atendimento",
	"Entrega rápida",
	"Produtos frescos",
	"Preço justo, voltarei",
	"Demorou um pouco",
}

// randomInt returns a value in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

func randomStars() int {
	var total int64
	for _, w := range starWeights {
		total += w
	}
	pick := randomInt(total)
	for i, w := range starWeights {
		if pick < w {
			return i + rating.MinStars
		}
		pick -= w
	}
	return rating.MaxStars
}

// generateRatings creates cfg.NumRatings submissions spread round-robin over
// the configured merchants, each with its own idempotency key.
func generateRatings(ctx context.Context, cfg *Config, now time.Time) ([]rating.Submission, error) {
	if len(cfg.Merchants) == 0 {
		return nil, ErrNoMerchants
	}
	subs := make([]rating.Submission, cfg.NumRatings)
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generating rating %d: %w", i, err)
		}
		subs[i] = rating.Submission{
			MerchantID:     cfg.Merchants[i%len(cfg.Merchants)],
			Stars:          randomStars(),
			Feedback:       feedbacks[randomInt(int64(len(feedbacks)))],
			IdempotencyKey: uuid.NewString(),
			SubmittedAt:    now,
		}
	}
	return subs, nil
}

// replaysOf picks every n-th submission to be resent unchanged.
func replaysOf(subs []rating.Submission, every int) []rating.Submission {
	if every <= 0 {
		return nil
	}
	var out []rating.Submission
	for i := every - 1; i < len(subs); i += every {
		out = append(out, subs[i])
	}
	return out
}
