package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lojista/internal/adapters/http/api"
	"github.com/okian/lojista/internal/adapters/repository"
	service "github.com/okian/lojista/internal/app"
	"github.com/okian/lojista/internal/app/screen"
	"github.com/okian/lojista/internal/config"
	"github.com/okian/lojista/internal/domain/dedupe"
)

func TestServiceAgainstStubBackend(t *testing.T) {
	Convey("Given the stub backend and a service built from config", t, func() {
		catalog := repository.NewMemoryCatalog(repository.WithRecords(repository.MerchantRecord{
			ID:          "42",
			CompanyName: "Loja 42",
			Latitude:    10,
			Longitude:   21,
			Rating:      3,
			RatingCount: 1,
			Products:    []repository.ProductRecord{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
		}))
		mux := http.NewServeMux()
		api.NewServer(catalog, dedupe.NewInMemoryDeduper()).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := config.New()
		cfg.APIBaseURL = srv.URL
		cfg.LocationLatitude = 10
		cfg.LocationLongitude = 20

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When showing the merchant", func() {
			st, err := service.FromConfig(cfg, nil).Show(ctx, "42")

			Convey("Then the backend computed the distance", func() {
				So(err, ShouldBeNil)
				p, ok := st.Profile.Ready()
				So(ok, ShouldBeTrue)
				So(p.Distance, ShouldAlmostEqual, 109.5, 0.2)
				So(st.Products, ShouldHaveLength, 2)
			})
		})

		Convey("When rating with the log submitter", func() {
			st, err := service.FromConfig(cfg, nil).Rate(ctx, "42", 5, "bom")

			Convey("Then nothing reaches the backend", func() {
				So(err, ShouldBeNil)
				So(st.Notice, ShouldEqual, screen.TextRatingSent)
				p, _ := catalog.Merchant(ctx, "42", nil)
				So(p.RatingAverage, ShouldEqual, 3.0)
			})
		})

		Convey("When rating with the http submitter", func() {
			cfg.RatingSubmitter = config.SubmitterHTTP
			st, err := service.FromConfig(cfg, nil).Rate(ctx, "42", 5, "bom")

			Convey("Then the backend folds it into the average", func() {
				So(err, ShouldBeNil)
				So(st.Notice, ShouldEqual, screen.TextRatingSent)
				p, _ := catalog.Merchant(ctx, "42", nil)
				So(p.RatingAverage, ShouldEqual, 4.0)
			})
		})

		Convey("When the permission is configured as denied", func() {
			cfg.LocationPermission = config.PermissionDenied
			st, err := service.FromConfig(cfg, nil).Show(ctx, "42")

			Convey("Then only products are shown", func() {
				So(err, ShouldBeNil)
				So(st.ErrorMessage, ShouldEqual, screen.TextPermissionDenied)
				So(st.Products, ShouldHaveLength, 2)
			})
		})

		Convey("When the merchant is unknown", func() {
			st, err := service.FromConfig(cfg, nil).Show(ctx, "404")

			Convey("Then the profile error is shown", func() {
				So(err, ShouldBeNil)
				So(st.ErrorMessage, ShouldEqual, screen.TextProfileError)
				So(st.Products, ShouldBeEmpty)
			})
		})
	})
}
