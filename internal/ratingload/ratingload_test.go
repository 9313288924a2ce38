package ratingload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lojista/internal/adapters/http/api"
	"github.com/okian/lojista/internal/adapters/http/client"
	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/internal/domain/dedupe"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

type downBackend struct{}

func (downBackend) Health(ctx context.Context) (client.Health, error) {
	return client.Health{}, errors.New("connection refused")
}

func (downBackend) Merchant(ctx context.Context, id string, at model.Coordinates) (model.MerchantProfile, error) {
	return model.MerchantProfile{}, errors.New("unreachable")
}

func (downBackend) SubmitRating(ctx context.Context, s rating.Submission) (rating.Ack, error) {
	return rating.Ack{}, errors.New("unreachable")
}

// forgetful accepts everything and never reports duplicates.
type forgetful struct{}

func (forgetful) Health(ctx context.Context) (client.Health, error) {
	return client.Health{Status: "ok"}, nil
}

func (forgetful) Merchant(ctx context.Context, id string, at model.Coordinates) (model.MerchantProfile, error) {
	return model.MerchantProfile{ID: model.FlexID(id), CompanyName: "x", RatingAverage: 3}, nil
}

func (forgetful) SubmitRating(ctx context.Context, s rating.Submission) (rating.Ack, error) {
	return rating.Ack{Key: s.IdempotencyKey}, nil
}

func TestGenerateRatings(t *testing.T) {
	Convey("Given two merchants and ten ratings", t, func() {
		cfg := &Config{Merchants: []string{"1", "2"}, NumRatings: 10}
		now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		subs, err := generateRatings(context.Background(), cfg, now)

		Convey("Then ratings alternate merchants with valid stars and unique keys", func() {
			So(err, ShouldBeNil)
			So(subs, ShouldHaveLength, 10)
			keys := map[string]bool{}
			for i, s := range subs {
				So(s.MerchantID, ShouldEqual, cfg.Merchants[i%2])
				So(s.Stars, ShouldBeBetweenOrEqual, rating.MinStars, rating.MaxStars)
				So(len([]rune(s.Feedback)), ShouldBeLessThanOrEqualTo, rating.MaxFeedbackRunes)
				So(s.SubmittedAt.Equal(now), ShouldBeTrue)
				keys[s.IdempotencyKey] = true
			}
			So(keys, ShouldHaveLength, 10)
		})

		Convey("Then every third rating is picked for replay", func() {
			replays := replaysOf(subs, 3)
			So(replays, ShouldHaveLength, 3)
			So(replays[0].IdempotencyKey, ShouldEqual, subs[2].IdempotencyKey)
			So(replays[2].IdempotencyKey, ShouldEqual, subs[8].IdempotencyKey)
			So(replaysOf(subs, 0), ShouldBeEmpty)
		})
	})

	Convey("Given no merchants", t, func() {
		_, err := generateRatings(context.Background(), &Config{NumRatings: 1}, time.Now())

		Convey("Then generation is refused", func() {
			So(errors.Is(err, ErrNoMerchants), ShouldBeTrue)
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given ratings for one merchant", t, func() {
		subs := []rating.Submission{
			{MerchantID: "1", Stars: 5},
			{MerchantID: "1", Stars: 5},
		}
		stats := &Stats{Accepted: 2}
		before := map[string]float64{"1": 3}

		Convey("When the average moved toward five", func() {
			err := verifyResults(context.Background(), logger.Discard(), subs, before, map[string]float64{"1": 3.5}, stats)

			Convey("Then the run verifies", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the average dropped", func() {
			err := verifyResults(context.Background(), logger.Discard(), subs, before, map[string]float64{"1": 2.9}, stats)

			Convey("Then drift is reported", func() {
				So(errors.Is(err, ErrAverageDrift), ShouldBeTrue)
			})
		})

		Convey("When a rating was lost", func() {
			stats.Accepted = 1
			err := verifyResults(context.Background(), logger.Discard(), subs, before, map[string]float64{"1": 4}, stats)

			Convey("Then the loss is reported", func() {
				So(errors.Is(err, ErrLostRatings), ShouldBeTrue)
			})
		})
	})
}

func TestRunAgainstStubBackend(t *testing.T) {
	Convey("Given the stub backend with the demo catalog", t, func() {
		catalog, err := repository.LoadCatalog("")
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(catalog, dedupe.NewInMemoryDeduper()).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		out := filepath.Join(t.TempDir(), "ratings", "run.json")
		cfg := &Config{
			Merchants:   []string{"1", "2", "3"},
			NumRatings:  30,
			ReplayEvery: 5,
			Workers:     4,
			Origin:      model.Coordinates{Latitude: -23.55, Longitude: -46.63},
			OutputFile:  out,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When a run completes", func() {
			stats, err := Run(ctx, logger.Discard(), cfg, client.New(srv.URL))

			Convey("Then every rating is accepted once and every replay is a duplicate", func() {
				So(err, ShouldBeNil)
				So(stats.RatingsGenerated, ShouldEqual, 30)
				So(stats.Replayed, ShouldEqual, 6)
				So(stats.Submitted, ShouldEqual, 36)
				So(stats.Accepted, ShouldEqual, 30)
				So(stats.Duplicate, ShouldEqual, 6)
				So(stats.Failed, ShouldEqual, 0)
			})

			Convey("Then the submitted ratings are saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var saved []savedRating
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 30)
				So(saved[0].Key, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a backend that is down", t, func() {
		cfg := &Config{Merchants: []string{"1"}, NumRatings: 1, Workers: 1}

		Convey("Then the run stops at the health check", func() {
			_, err := Run(context.Background(), logger.Discard(), cfg, downBackend{})
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a backend that forgets idempotency keys", t, func() {
		cfg := &Config{Merchants: []string{"1"}, NumRatings: 4, ReplayEvery: 2, Workers: 2}

		Convey("Then the replays are flagged", func() {
			_, err := Run(context.Background(), logger.Discard(), cfg, forgetful{})
			So(errors.Is(err, ErrDuplicateCount), ShouldBeTrue)
		})
	})
}
