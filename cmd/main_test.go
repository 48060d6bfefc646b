package main

import (
	"net"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given the server entrypoint", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("ETUDE_QUEUE_SIZE", "0")

			convey.Convey("Then it exits non-zero", func() {
				convey.So(run(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the address is already taken", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			defer ln.Close()
			t.Setenv("ETUDE_ADDR", ln.Addr().String())
			t.Setenv("ETUDE_LOG_FORMAT", "json")

			convey.Convey("Then it exits non-zero", func() {
				convey.So(run(), convey.ShouldEqual, 1)
			})
		})
	})
}
