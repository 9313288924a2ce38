package logger

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)
			defer func() { So(Sync(), ShouldBeNil) }()

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(func() { Get().Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
			})
		})

		Convey("When initialized with a custom output", func() {
			var buf bytes.Buffer
			So(Init(WithOutput(&buf)), ShouldBeNil)

			Named("screen").Info(context.Background(), "opened", String("merchant", "42"))

			Convey("Then records go to that writer with the group name", func() {
				So(buf.String(), ShouldContainSubstring, "opened")
				So(buf.String(), ShouldContainSubstring, "screen.merchant=42")
				So(buf.String(), ShouldContainSubstring, "source=")
			})
		})

		Convey("When JSON output is requested", func() {
			var buf bytes.Buffer
			So(Init(WithOutput(&buf), WithJSON(true)), ShouldBeNil)

			Get().Warn(context.Background(), "careful", Int("n", 3))

			Convey("Then records are JSON objects", func() {
				So(buf.String(), ShouldStartWith, "{")
				So(buf.String(), ShouldContainSubstring, `"n":3`)
			})
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("Debug records are dropped at the default level", func() {
			Get().Debug(ctx, "hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
		})

		Convey("Debug records appear after SetLevelString(debug)", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(ctx, "visible")
			So(buf.String(), ShouldContainSubstring, "visible")
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("Discard swallows everything", func() {
			Discard().Error(ctx, "nope")
			So(buf.String(), ShouldNotContainSubstring, "nope")
		})
	})
}
