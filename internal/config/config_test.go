package config_test

import (
	"testing"
	"time"

	"github.com/okian/lojista/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:3333")
			convey.So(cfg.APITimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.LocationTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.LocationSource, convey.ShouldEqual, config.SourceStatic)
			convey.So(cfg.LocationPermission, convey.ShouldEqual, config.PermissionGranted)
			convey.So(cfg.RatingSubmitter, convey.ShouldEqual, config.SubmitterLog)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.MailboxSize, convey.ShouldEqual, 64)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
