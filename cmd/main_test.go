package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New(context.Background())
	cfg.StorageBackend = backend
	cfg.DataFile = filepath.Join(dir, "data.json")
	cfg.SQLitePath = filepath.Join(dir, "podium.db")
	return cfg
}

func TestParseFlags(t *testing.T) {
	convey.Convey("Given command line flags", t, func() {
		convey.Convey("When --config and --addr are passed", func() {
			f, err := parseFlags([]string{"--config", "podium.yaml", "--addr", ":9090"})

			convey.Convey("Then both are captured", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.configFile, convey.ShouldEqual, "podium.yaml")
				convey.So(f.addr, convey.ShouldEqual, ":9090")
				convey.So(len(f.loadOptions()), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When no flags are passed", func() {
			f, err := parseFlags(nil)

			convey.Convey("Then nothing overrides the config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.loadOptions(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When an unknown flag is passed", func() {
			_, err := parseFlags([]string{"--bogus"})

			convey.Convey("Then parsing fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestFlagOverridesConfig(t *testing.T) {
	convey.Convey("Given a config file and an --addr flag", t, func() {
		for _, name := range []string{"PODIUM_ADDR", "PORT", "PODIUM_CONFIG"} {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
		path := filepath.Join(t.TempDir(), "podium.yaml")
		convey.So(os.WriteFile(path, []byte("addr: \":4000\"\naccess_code: \"2024\"\n"), 0o600), convey.ShouldBeNil)

		f, err := parseFlags([]string{"--config", path, "--addr", ":5000"})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the flag wins and the file fills the rest", func() {
			cfg, err := config.Load(context.Background(), f.loadOptions()...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.AccessCode, convey.ShouldEqual, "2024")
		})
	})
}

func TestOpenGateway(t *testing.T) {
	convey.Convey("Given each storage backend", t, func() {
		ctx := context.Background()
		for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
			convey.Convey("When opening the "+backend+" backend", func() {
				gw, err := openGateway(ctx, testConfig(t, backend), logger.Get())

				convey.Convey("Then a usable gateway is returned", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(gw, convey.ShouldNotBeNil)
					convey.So(gw.Close(), convey.ShouldBeNil)
				})
			})
		}
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a started service behind the full route table", t, func() {
		ctx := context.Background()
		cfg := testConfig(t, config.BackendFile)
		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, cfg, svc)
		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then the public page is served at the root", func() {
			w := get("/")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "<html")
		})

		convey.Convey("Then the API answers under /api", func() {
			w := get("/api/games")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var games []map[string]any
			convey.So(json.Unmarshal(w.Body.Bytes(), &games), convey.ShouldBeNil)
			convey.So(games, convey.ShouldNotBeEmpty)
		})

		convey.Convey("Then unknown API paths are not swallowed by the site", func() {
			w := get("/api/unknown")
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldContainSubstring, "application/json")
		})

		convey.Convey("Then the docs are served", func() {
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a login through the full stack issues a token", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"code":"`+cfg.AccessCode+`"}`))
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"token"`)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.Convey("When the context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then the system updater returns", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx, 10*time.Millisecond) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When system metrics are sampled", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
