package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/lojista/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"LOJISTA_CONFIG",
	"LOJISTA_API_BASE_URL",
	"LOJISTA_API_TIMEOUT_MS",
	"LOJISTA_LOCATION_SOURCE",
	"LOJISTA_LOCATION_PERMISSION",
	"LOJISTA_LOCATION_LATITUDE",
	"LOJISTA_LOCATION_LONGITUDE",
	"LOJISTA_LOCATION_GEOIP_URL",
	"LOJISTA_RATING_SUBMITTER",
	"LOJISTA_WORKER_COUNT",
	"LOJISTA_LOG_LEVEL",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "lojista-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:3333")
				convey.So(cfg.APITimeoutMS, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LOJISTA_API_BASE_URL", "http://api.example.test")
			_ = os.Setenv("LOJISTA_API_TIMEOUT_MS", "2500")
			_ = os.Setenv("LOJISTA_LOCATION_PERMISSION", "denied")
			_ = os.Setenv("LOJISTA_LOCATION_LATITUDE", "10")
			_ = os.Setenv("LOJISTA_LOCATION_LONGITUDE", "20")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://api.example.test")
				convey.So(cfg.APITimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.LocationPermission, convey.ShouldEqual, config.PermissionDenied)
				convey.So(cfg.LocationLatitude, convey.ShouldEqual, 10.0)
				convey.So(cfg.LocationLongitude, convey.ShouldEqual, 20.0)
			})
		})

		convey.Convey("When loading config with YAML file and env", func() {
			tmpFile := createTempConfigFile(`
api_base_url: "http://file.example.test"
api_timeout_ms: 4000
rating_submitter: http
worker_count: 8
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("LOJISTA_CONFIG", tmpFile)
			_ = os.Setenv("LOJISTA_WORKER_COUNT", "2")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides file and file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://file.example.test")
				convey.So(cfg.APITimeoutMS, convey.ShouldEqual, 4000)
				convey.So(cfg.RatingSubmitter, convey.ShouldEqual, config.SubmitterHTTP)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.MailboxSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When LoadFrom is given an explicit path", func() {
			tmpFile := createTempConfigFile("location_source: static\nlocation_latitude: 1.5\n")
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.LoadFrom(ctx, tmpFile)

			convey.Convey("Then the file is applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LocationLatitude, convey.ShouldEqual, 1.5)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("LOJISTA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("LOJISTA_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LOJISTA_API_TIMEOUT_MS", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the base URL is empty", func() {
			_ = os.Setenv("LOJISTA_API_BASE_URL", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an unknown location permission is given", func() {
			_ = os.Setenv("LOJISTA_LOCATION_PERMISSION", "maybe")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When geoip is selected without a URL", func() {
			_ = os.Setenv("LOJISTA_LOCATION_SOURCE", "geoip")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "location_geoip_url")
			})
		})

		convey.Convey("When latitude is out of range", func() {
			_ = os.Setenv("LOJISTA_LOCATION_LATITUDE", "91")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
