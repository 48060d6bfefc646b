package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/etude/internal/config"
	"github.com/okian/etude/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestHandler(t *testing.T) {
	Convey("Given a handler built from the default config", t, func() {
		cfg := config.New()
		cfg.MaxListLimit = 5
		svc, err := NewService(cfg, logger.Get())
		So(err, ShouldBeNil)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(Handler(context.Background(), svc, cfg))
		defer srv.Close()

		Convey("Then API and docs routes are mounted", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs", "/hardest?limit=5"} {
				resp, err := http.Get(srv.URL + path)
				So(err, ShouldBeNil)
				_ = resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			}
		})

		Convey("And the configured list limit is enforced", func() {
			resp, err := http.Get(srv.URL + "/hardest?limit=6")
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("And a record can be evaluated", func() {
			resp, err := http.Post(srv.URL+"/evaluate", "application/json",
				strings.NewReader(`{"id":"x","instruments":"Guitar","event_count":200,"duration_seconds":60}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			var view map[string]any
			So(json.Unmarshal(body, &view), ShouldBeNil)
			So(view["instrument"], ShouldEqual, "guitar")
			So(view["applicable"], ShouldEqual, true)
		})
	})
}

func TestNewServiceRejectsBadPolicy(t *testing.T) {
	cfg := config.New()
	cfg.InstrumentWeights = map[string]map[string]float64{"kazoo": {"speed": 1}}
	if _, err := NewService(cfg, logger.Get()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	Convey("Given a server on an ephemeral port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Serve(ctx, ln, config.New(), logger.Get()) }()

		Convey("It answers and then stops when the context ends", func() {
			url := "http://" + ln.Addr().String() + "/healthz"
			var status int
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if resp, err := http.Get(url); err == nil {
					status = resp.StatusCode
					_ = resp.Body.Close()
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(status, ShouldEqual, http.StatusOK)

			cancel()
			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(10 * time.Second):
				So("server did not stop", ShouldBeEmpty)
			}
		})
	})
}

func TestRunReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	cfg := config.New()
	cfg.Addr = ln.Addr().String()
	if err := Run(context.Background(), cfg, logger.Get()); !errors.Is(err, ErrServe) {
		t.Fatalf("err = %v, want ErrServe", err)
	}
}
