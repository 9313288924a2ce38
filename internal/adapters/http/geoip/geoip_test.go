package geoip_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/lojista/internal/adapters/http/geoip"
	. "github.com/smartystreets/goconvey/convey"
)

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestSource(t *testing.T) {
	Convey("Given a geoip lookup", t, func() {
		ctx := context.Background()

		Convey("lat/lon answers are read", func() {
			srv := serve(http.StatusOK, `{"status":"success","lat":-23.5,"lon":-46.6}`)
			defer srv.Close()
			c, err := geoip.Source{URL: srv.URL}.CurrentPosition(ctx)
			So(err, ShouldBeNil)
			So(c.Latitude, ShouldEqual, -23.5)
			So(c.Longitude, ShouldEqual, -46.6)
		})

		Convey("latitude/longitude answers are read", func() {
			srv := serve(http.StatusOK, `{"latitude":10,"longitude":20}`)
			defer srv.Close()
			c, err := geoip.Source{URL: srv.URL}.CurrentPosition(ctx)
			So(err, ShouldBeNil)
			So(c.Latitude, ShouldEqual, 10.0)
		})

		Convey("a failed lookup has no fix", func() {
			srv := serve(http.StatusOK, `{"status":"fail","message":"private range"}`)
			defer srv.Close()
			_, err := geoip.Source{URL: srv.URL}.CurrentPosition(ctx)
			So(errors.Is(err, geoip.ErrNoFix), ShouldBeTrue)
		})

		Convey("an answer without coordinates has no fix", func() {
			srv := serve(http.StatusOK, `{}`)
			defer srv.Close()
			_, err := geoip.Source{URL: srv.URL}.CurrentPosition(ctx)
			So(errors.Is(err, geoip.ErrNoFix), ShouldBeTrue)
		})

		Convey("non-200 answers fail", func() {
			srv := serve(http.StatusTooManyRequests, `{}`)
			defer srv.Close()
			_, err := geoip.Source{URL: srv.URL}.CurrentPosition(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "429")
		})
	})
}
