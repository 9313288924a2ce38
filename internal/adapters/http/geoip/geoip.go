// Package geoip provides a location.PositionSource backed by an HTTP IP
// geolocation lookup. It is the fallback fix for hosts without a positioning
// device.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/lojista/internal/domain/model"
)

// ErrNoFix is returned when the lookup answered without usable coordinates.
var ErrNoFix = errors.New("geoip: response has no coordinates")

// Source queries URL and reads the coordinates out of the JSON answer. Both
// {"lat":..,"lon":..} and {"latitude":..,"longitude":..} shapes are accepted.
type Source struct {
	URL        string
	HTTPClient *http.Client
}

type answer struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Status    string   `json:"status"`
}

// CurrentPosition implements location.PositionSource. The deadline comes from ctx.
func (s Source) CurrentPosition(ctx context.Context) (model.Coordinates, error) {
	hc := s.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geoip: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geoip: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, fmt.Errorf("geoip: unexpected status %d", resp.StatusCode)
	}

	var a answer
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&a); err != nil {
		return model.Coordinates{}, fmt.Errorf("geoip: decode: %w", err)
	}
	if a.Status != "" && a.Status != "success" {
		return model.Coordinates{}, fmt.Errorf("%w (status %q)", ErrNoFix, a.Status)
	}

	switch {
	case a.Lat != nil && a.Lon != nil:
		return model.Coordinates{Latitude: *a.Lat, Longitude: *a.Lon}, nil
	case a.Latitude != nil && a.Longitude != nil:
		return model.Coordinates{Latitude: *a.Latitude, Longitude: *a.Longitude}, nil
	default:
		return model.Coordinates{}, ErrNoFix
	}
}
