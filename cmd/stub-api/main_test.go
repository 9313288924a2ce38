package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/lojista/pkg/logger"
)

func TestRun(t *testing.T) {
	convey.Convey("Given the stub backend on an ephemeral port", t, func() {
		t.Setenv("LOJISTA_CONFIG", "")
		t.Setenv("LOJISTA_STUB_ADDR", "127.0.0.1:0")

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			err := run(ctx, logger.Discard())

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the fixtures file is missing", func() {
			t.Setenv("LOJISTA_STUB_FIXTURES", filepath.Join(t.TempDir(), "missing.yaml"))
			err := run(context.Background(), logger.Discard())

			convey.Convey("Then it refuses to start", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
