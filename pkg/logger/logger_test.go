package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	err = Init(WithFormat("json"))
	if err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()
		ctx := context.Background()

		Convey("When logging with fields through a named logger", func() {
			Named("ledger-writer").Info(ctx, "result recorded",
				String("game_id", "chess"),
				Int("position", 1),
				Bool("replaced", true),
				Duration("took", 2*time.Millisecond),
			)

			Convey("Then the record carries the fields, component and source", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "result recorded")
				So(rec["game_id"], ShouldEqual, "chess")
				So(rec["position"], ShouldEqual, 1.0)
				So(rec["replaced"], ShouldEqual, true)
				So(rec["component"], ShouldEqual, "ledger-writer")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a message out", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(out, ShouldContainSubstring, "shown")
			})
		})

		Convey("When an unknown level is set", func() {
			err := SetLevelString("loud")

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
