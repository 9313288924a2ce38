package service

import (
	"net/http"

	"github.com/okian/lojista/internal/adapters/http/client"
	"github.com/okian/lojista/internal/adapters/http/geoip"
	"github.com/okian/lojista/internal/config"
	"github.com/okian/lojista/internal/domain/location"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

// FromConfig builds a Service talking to the configured backend. Extra options
// are applied last and override the configured collaborators.
func FromConfig(cfg *config.Config, log logger.Logger, extra ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}

	api := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.APITimeout()),
		client.WithLogger(log.Named("client")),
	)

	opts := []Option{
		WithBackend(api),
		WithResolver(resolverFromConfig(cfg, log)),
		WithSubmitter(submitterFromConfig(cfg, api, log)),
		WithWorkerCount(cfg.WorkerCount),
		WithMailboxSize(cfg.MailboxSize),
		WithLogger(log),
	}
	return New(append(opts, extra...)...)
}

func resolverFromConfig(cfg *config.Config, log logger.Logger) location.Resolver {
	var source location.PositionSource = location.StaticSource(model.Coordinates{
		Latitude:  cfg.LocationLatitude,
		Longitude: cfg.LocationLongitude,
	})
	if cfg.LocationSource == config.SourceGeoIP {
		source = geoip.Source{URL: cfg.LocationGeoIPURL, HTTPClient: &http.Client{}}
	}
	return location.NewResolver(
		location.StaticPermissions(location.ParseStatus(cfg.LocationPermission)),
		source,
		location.WithTimeout(cfg.LocationTimeout()),
		location.WithLogger(log.Named("location")),
	)
}

func submitterFromConfig(cfg *config.Config, api *client.Client, log logger.Logger) rating.Submitter {
	if cfg.RatingSubmitter == config.SubmitterHTTP {
		return api
	}
	return rating.LogSubmitter{Logger: log.Named("rating")}
}
