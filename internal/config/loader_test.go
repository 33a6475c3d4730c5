package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.AccessCode, convey.ShouldEqual, "1911")
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 24*time.Hour)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_ACCESS_CODE", "4242")
			_ = os.Setenv("PODIUM_TOKEN_TTL", "2h")
			_ = os.Setenv("PODIUM_MUTATION_QUEUE_SIZE", "16")
			_ = os.Setenv("PODIUM_STORAGE_BACKEND", "sqlite")
			_ = os.Setenv("PODIUM_METRICS_INTERVAL", "30s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AccessCode, convey.ShouldEqual, "4242")
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.MutationQueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.MetricsInterval, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When only the legacy variables are set", func() {
			_ = os.Setenv("PORT", "4000")
			_ = os.Setenv("ACCESS_CODE", "2024")
			_ = os.Setenv("JWT_SECRET", "legacy-secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are honoured", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":4000")
				convey.So(cfg.AccessCode, convey.ShouldEqual, "2024")
				convey.So(cfg.TokenSecret, convey.ShouldEqual, "legacy-secret")
			})

			convey.Convey("And prefixed variables win over them", func() {
				_ = os.Setenv("PODIUM_ADDR", ":5000")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeFile(t, "podium.yaml", `
addr: ":9090"
data_file: "/var/lib/podium/data.json"
token_ttl: 30m
cors_origin: "https://fest.example"
`)
			_ = os.Setenv(config.ConfigFileEnv, path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataFile, convey.ShouldEqual, "/var/lib/podium/data.json")
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.CORSOrigin, convey.ShouldEqual, "https://fest.example")
			})

			convey.Convey("And env vars still take precedence", func() {
				_ = os.Setenv("PODIUM_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})

			convey.Convey("And overrides take precedence over everything", func() {
				_ = os.Setenv("PODIUM_ADDR", ":7070")
				cfg, err := config.Load(ctx, config.WithOverrides(map[string]any{"addr": ":6060"}))
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the config file is passed explicitly", func() {
			path := writeFile(t, "explicit.yaml", "access_code: \"7777\"\n")
			cfg, err := config.Load(ctx, config.WithConfigFile(path))

			convey.Convey("Then it is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AccessCode, convey.ShouldEqual, "7777")
			})
		})

		convey.Convey("When a dotenv file is given", func() {
			path := writeFile(t, "test.env", "PODIUM_SQLITE_PATH=/tmp/podium-test.db\n")
			defer func() { _ = os.Unsetenv("PODIUM_SQLITE_PATH") }()

			cfg, err := config.Load(ctx, config.WithDotEnv(path))

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/podium-test.db")
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv(config.ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML is malformed", func() {
			_ = os.Setenv(config.ConfigFileEnv, writeFile(t, "bad.yaml", "addr: [unterminated"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a named dotenv file is missing", func() {
			_, err := config.Load(ctx, config.WithDotEnv(filepath.Join(t.TempDir(), "nope.env")))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a duration is not parseable", func() {
			_ = os.Setenv("PODIUM_TOKEN_TTL", "forever")
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the storage backend is unknown", func() {
			_ = os.Setenv("PODIUM_STORAGE_BACKEND", "tape")
			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"PODIUM_CONFIG", "PODIUM_ADDR", "PODIUM_ACCESS_CODE", "PODIUM_TOKEN_SECRET",
		"PODIUM_TOKEN_TTL", "PODIUM_MUTATION_QUEUE_SIZE", "PODIUM_STORAGE_BACKEND",
		"PODIUM_SQLITE_PATH", "PODIUM_DATA_FILE", "PODIUM_METRICS_INTERVAL",
		"PORT", "ACCESS_CODE", "JWT_SECRET",
	} {
		_ = os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
