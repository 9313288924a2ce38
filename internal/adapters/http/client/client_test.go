package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/lojista/internal/adapters/http/client"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func fetchKind(err error) client.Kind {
	var fe *client.FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return -1
}

func TestClientMerchant(t *testing.T) {
	Convey("Given a backend serving /lojistas", t, func() {
		var gotQuery atomic.Value
		body := `{"id":42,"nomeEmpresa":"Padaria Central","categoria":"Padaria","distancia":1.2,"avaliacao":4.5}`
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery.Store(r.URL.Path + "?" + r.URL.RawQuery)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()
		c := client.New(srv.URL + "/")
		ctx := context.Background()

		Convey("When fetching merchant 42 at (10, 20)", func() {
			p, err := c.Merchant(ctx, "42", model.Coordinates{Latitude: 10, Longitude: 20})

			Convey("Then the request carries the id and both coordinates", func() {
				So(err, ShouldBeNil)
				So(gotQuery.Load(), ShouldEqual, "/lojistas?id=42&latitude=10&longitude=20")
				So(p.CompanyName, ShouldEqual, "Padaria Central")
				So(p.Distance, ShouldEqual, 1.2)
			})
		})

		Convey("When the backend answers 500", func() {
			status = http.StatusInternalServerError
			_, err := c.Merchant(ctx, "42", model.Coordinates{})

			Convey("Then a status FetchError is returned", func() {
				So(errors.Is(err, client.ErrFetch), ShouldBeTrue)
				So(fetchKind(err), ShouldEqual, client.KindStatus)
				So(err.Error(), ShouldContainSubstring, "500")
			})
		})

		Convey("When the payload is malformed", func() {
			body = `{"id":`
			_, err := c.Merchant(ctx, "42", model.Coordinates{})

			Convey("Then a decode FetchError is returned", func() {
				So(fetchKind(err), ShouldEqual, client.KindDecode)
			})
		})

		Convey("When the payload misses the company name", func() {
			body = `{"id":42}`
			_, err := c.Merchant(ctx, "42", model.Coordinates{})

			Convey("Then an invalid FetchError is returned", func() {
				So(fetchKind(err), ShouldEqual, client.KindInvalid)
			})
		})
	})
}

func TestClientTimeout(t *testing.T) {
	Convey("Given a backend that never answers in time", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c := client.New(srv.URL, client.WithTimeout(30*time.Millisecond))

		Convey("When fetching products", func() {
			_, err := c.Products(context.Background(), "42")

			Convey("Then expiry is reported as a timeout FetchError", func() {
				So(errors.Is(err, client.ErrFetch), ShouldBeTrue)
				So(fetchKind(err), ShouldEqual, client.KindTimeout)
			})
		})
	})
}

func TestClientProducts(t *testing.T) {
	Convey("Given a backend serving /produtos", t, func() {
		var gotQuery atomic.Value
		gotQuery.Store("")
		body := `[{"id":2,"nome":"Bolo"},{"id":1,"nome":"Pão"},{"id":2,"nome":"Bolo"}]`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery.Store(r.URL.RawQuery)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()
		c := client.New(srv.URL)

		Convey("When fetching the list", func() {
			ps, err := c.Products(context.Background(), "42")

			Convey("Then server order is preserved without dedup", func() {
				So(err, ShouldBeNil)
				So(gotQuery.Load(), ShouldEqual, "idLojista=42")
				So(len(ps), ShouldEqual, 3)
				So(ps[0].ID, ShouldEqual, model.FlexID("2"))
				So(ps[1].ID, ShouldEqual, model.FlexID("1"))
				So(ps[2].ID, ShouldEqual, model.FlexID("2"))
			})
		})

		Convey("When the backend answers null", func() {
			body = `null`
			ps, err := c.Products(context.Background(), "42")

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(ps, ShouldNotBeNil)
				So(len(ps), ShouldEqual, 0)
			})
		})

		Convey("When an item has no id", func() {
			body = `[{"nome":"?"}]`
			_, err := c.Products(context.Background(), "42")

			Convey("Then the list is rejected", func() {
				So(fetchKind(err), ShouldEqual, client.KindInvalid)
			})
		})
	})
}

func TestClientSubmitRating(t *testing.T) {
	Convey("Given a backend accepting ratings", t, func() {
		var (
			mu      sync.Mutex
			gotKey  string
			gotBody map[string]any
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			gotKey = r.Header.Get("Idempotency-Key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"duplicate":false}`))
		}))
		defer srv.Close()
		c := client.New(srv.URL)

		Convey("When a valid submission is posted", func() {
			sub := rating.Submission{MerchantID: "42", Stars: 4, Feedback: "bom", IdempotencyKey: "key-1"}
			ack, err := c.SubmitRating(context.Background(), sub)

			Convey("Then the key travels in the header and the body uses wire names", func() {
				mu.Lock()
				defer mu.Unlock()
				So(err, ShouldBeNil)
				So(ack.Key, ShouldEqual, "key-1")
				So(gotKey, ShouldEqual, "key-1")
				So(gotBody["idLojista"], ShouldEqual, "42")
				So(gotBody["nota"], ShouldEqual, 4.0)
			})
		})

		Convey("When the submission is out of range", func() {
			_, err := c.SubmitRating(context.Background(), rating.Submission{MerchantID: "42", Stars: 9})

			Convey("Then it is rejected before any request", func() {
				So(fetchKind(err), ShouldEqual, client.KindInvalid)
				mu.Lock()
				defer mu.Unlock()
				So(gotKey, ShouldEqual, "")
			})
		})
	})
}

func TestFetchErrorMessages(t *testing.T) {
	Convey("FetchError renders its kind", t, func() {
		So((&client.FetchError{Op: "produtos", Kind: client.KindNetwork, Err: errors.New("refused")}).Error(),
			ShouldEqual, "produtos: network: refused")
		So((&client.FetchError{Op: "produtos", Kind: client.KindTimeout}).Error(), ShouldEqual, "produtos: timeout")
		So(client.KindDecode.String(), ShouldEqual, "decode")
	})
}

func TestClientHealth(t *testing.T) {
	Convey("Given a backend serving /healthz", t, func() {
		var status atomic.Int32
		status.Store(http.StatusOK)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/healthz" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(int(status.Load()))
			_, _ = w.Write([]byte(`{"status":"ok","lojistas":3}`))
		}))
		defer srv.Close()
		c := client.New(srv.URL)

		Convey("Then the report is decoded", func() {
			h, err := c.Health(context.Background())
			So(err, ShouldBeNil)
			So(h.Status, ShouldEqual, "ok")
			So(h.Merchants, ShouldEqual, 3)
		})

		Convey("When the backend is unhealthy", func() {
			status.Store(http.StatusServiceUnavailable)
			_, err := c.Health(context.Background())

			Convey("Then a status FetchError is returned", func() {
				So(fetchKind(err), ShouldEqual, client.KindStatus)
			})
		})
	})
}
