package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	return -1
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test_namespace")
			subsystemOpt := WithSubsystem("test_subsystem")
			metricPrefixOpt := WithMetricPrefix("test_prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestRefreshInterval(t *testing.T) {
	Convey("Given managers with and without a refresh interval", t, func() {
		custom := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithRefreshInterval(3*time.Second))
		plain := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithRefreshInterval(-time.Second))

		Convey("Then the option sets the interval and bad values keep the default", func() {
			So(custom.RefreshInterval(), ShouldEqual, 3*time.Second)
			So(plain.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})

		Convey("When the global interval is changed", func() {
			before := RefreshInterval()
			SetRefreshInterval(250 * time.Millisecond)
			SetRefreshInterval(0)
			got := RefreshInterval()
			SetRefreshInterval(before)

			Convey("Then positive values stick and others are ignored", func() {
				So(got, ShouldEqual, 250*time.Millisecond)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the podium namespace is used", func() {
				So(manager, ShouldNotBeNil)
				manager.ledgerSize.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "podium_ledger_results" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("fest"),
				WithSubsystem("board"),
				WithMetricPrefix("v2"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names carry the namespace, subsystem and prefix", func() {
				manager.catalogGames.Set(19)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "fest_board_v2_catalog_games")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ledger metrics", func() {
			before := value(globalManager.resultsRecorded.WithLabelValues("true"))
			RecordResultRecorded(true)
			RecordResultRecorded(false)

			Convey("Then the replaced counter moves by one", func() {
				after := value(globalManager.resultsRecorded.WithLabelValues("true"))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When updating gauges", func() {
			UpdateLedgerSize(7)
			UpdateCatalogGames(19)
			UpdateQueueSize(2)
			UpdateQueueCapacity(1024)

			Convey("Then they hold the last value", func() {
				So(value(globalManager.ledgerSize), ShouldEqual, 7.0)
				So(value(globalManager.catalogGames), ShouldEqual, 19.0)
				So(value(globalManager.queueSize), ShouldEqual, 2.0)
				So(value(globalManager.queueCapacity), ShouldEqual, 1024.0)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordResultDeleted(true)
					RecordResultDeleted(false)
					RecordSnapshotSave(3.5)
					RecordSnapshotSaveError()
					RecordSnapshotLoad("loaded")
					RecordSnapshotLoad("defaulted")
					RecordLogin("success")
					RecordLogin("rejected")
					RecordTokenVerifyFailure()
					RecordQueueRejected()
					RecordMutationLatency(1.2)
					RecordHTTPRequest("results", "GET", "200")
					RecordHTTPRequestDuration("results", "GET", "200", 4.0)
					RecordErrorByComponent("repository", "save_failed")
					RecordErrorByEndpoint("results", "POST", "client_error")
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			_, err := GetRegistry().Gather()

			Convey("Then it should not fail", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
