// Package config defines the screen client and stub backend configuration.
//
// Conventions:
// - New returns defaults; Load layers a YAML file and LOJISTA_* env vars on top.
// - Keys are flat so env names map one-to-one (LOJISTA_API_TIMEOUT_MS -> api_timeout_ms).
// - Validation failures wrap ErrInvalidConfig, loading failures wrap ErrLoadConfig.
package config

import (
	"time"
)

// Location source and permission values.
const (
	SourceStatic = "static"
	SourceGeoIP  = "geoip"

	PermissionGranted = "granted"
	PermissionDenied  = "denied"

	SubmitterLog  = "log"
	SubmitterHTTP = "http"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFile receives log records while the terminal UI owns stdout.
	LogFile string `koanf:"log_file"`

	// APIBaseURL is the merchant backend base, e.g. "http://localhost:3333".
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`

	// APITimeoutMS bounds every remote fetch.
	APITimeoutMS int `koanf:"api_timeout_ms" validate:"gt=0"`

	// LocationSource selects where the coordinate fix comes from: static or geoip.
	LocationSource string `koanf:"location_source" validate:"oneof=static geoip"`

	// LocationPermission answers the foreground permission prompt: granted or denied.
	LocationPermission string `koanf:"location_permission" validate:"oneof=granted denied"`

	// LocationLatitude and LocationLongitude are the static fix.
	LocationLatitude  float64 `koanf:"location_latitude" validate:"latitude"`
	LocationLongitude float64 `koanf:"location_longitude" validate:"longitude"`

	// LocationGeoIPURL is queried when LocationSource is geoip.
	LocationGeoIPURL string `koanf:"location_geoip_url" validate:"omitempty,url"`

	// LocationTimeoutMS bounds a single fix.
	LocationTimeoutMS int `koanf:"location_timeout_ms" validate:"gt=0"`

	// RatingSubmitter selects where a submitted rating goes: log (no network) or http.
	RatingSubmitter string `koanf:"rating_submitter" validate:"oneof=log http"`

	// MetricsAddr exposes the client metrics when non-empty, e.g. ":9464".
	MetricsAddr string `koanf:"metrics_addr"`

	// WorkerCount and MailboxSize size the headless event loop.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`
	MailboxSize int `koanf:"mailbox_size" validate:"gt=0"`

	// StubAddr is the stub backend listen address.
	StubAddr string `koanf:"stub_addr" validate:"required"`

	// StubFixtures points at a YAML catalog; empty uses the built-in demo catalog.
	StubFixtures string `koanf:"stub_fixtures"`

	// StubDedupeSize bounds remembered rating idempotency keys.
	StubDedupeSize int `koanf:"stub_dedupe_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFile:            "lojista.log",
		APIBaseURL:         "http://localhost:3333",
		APITimeoutMS:       10_000,
		LocationSource:     SourceStatic,
		LocationPermission: PermissionGranted,
		LocationLatitude:   -23.5505,
		LocationLongitude:  -46.6333,
		LocationTimeoutMS:  15_000,
		RatingSubmitter:    SubmitterLog,
		WorkerCount:        4,
		MailboxSize:        64,
		StubAddr:           ":3333",
		StubDedupeSize:     10_000,
	}
}

// APITimeout returns APITimeoutMS as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// LocationTimeout returns LocationTimeoutMS as a duration.
func (c *Config) LocationTimeout() time.Duration {
	return time.Duration(c.LocationTimeoutMS) * time.Millisecond
}
