package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerRegistersMetrics(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg))

		Convey("When compute metrics are recorded", func() {
			m.computeLatency.WithLabelValues("visualize").Observe(12.5)
			m.computeErrors.WithLabelValues("visualize").Inc()

			Convey("Then they are gathered under the expected names", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["ironstats_analytics_compute_latency_milliseconds"], ShouldBeTrue)
				So(names["ironstats_analytics_compute_errors_total"], ShouldBeTrue)
			})
		})

		Convey("When cache metrics are recorded", func() {
			m.cacheHits.Inc()
			m.cacheHits.Inc()
			m.cacheMisses.Inc()
			m.cacheEntries.Set(7)

			Convey("Then the counters and gauge carry the recorded values", func() {
				So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 2)
				So(testutil.ToFloat64(m.cacheMisses), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheEntries), ShouldEqual, 7)
			})
		})

		Convey("When dataset gauges are set", func() {
			m.datasetRows.Set(500_000)
			m.datasetLoadTime.Set(1.25)

			Convey("Then they read back", func() {
				So(testutil.ToFloat64(m.datasetRows), ShouldEqual, 500_000)
				So(testutil.ToFloat64(m.datasetLoadTime), ShouldEqual, 1.25)
			})
		})

		Convey("When SQL and validation counters are recorded", func() {
			m.sqlQueryLatency.WithLabelValues("leaderboard").Observe(3)
			m.sqlQueryErrors.Inc()
			m.validationErrors.Inc()

			Convey("Then they read back", func() {
				So(testutil.ToFloat64(m.sqlQueryErrors), ShouldEqual, 1)
				So(testutil.ToFloat64(m.validationErrors), ShouldEqual, 1)
			})
		})
	})
}

func TestManagerOptions(t *testing.T) {
	Convey("Given custom namespace and subsystem options", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithNamespace("custom"),
			WithSubsystem("sub"),
		)
		m.cacheHits.Inc()

		Convey("Then metric names carry them", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() == "custom_sub_cache_hits_total" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestManagerPrefixAndLabels(t *testing.T) {
	Convey("Given a manager with a metric prefix and constant labels", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithMetricPrefix("core_"),
			WithCustomLabels(map[string]string{"region": "eu"}),
		)
		m.cacheHits.Inc()

		Convey("Then the gathered family carries both", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			var labelled bool
			for _, f := range families {
				if f.GetName() != "ironstats_analytics_core_cache_hits_total" {
					continue
				}
				for _, metric := range f.GetMetric() {
					for _, pair := range metric.GetLabel() {
						if pair.GetName() == "region" && pair.GetValue() == "eu" {
							labelled = true
						}
					}
				}
			}
			So(labelled, ShouldBeTrue)
		})
	})
}

func TestManagerDisabled(t *testing.T) {
	Convey("Given a disabled manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithMetricsEnabled(false),
		)

		Convey("When metrics are recorded", func() {
			m.cacheHits.Inc()
			m.computeLatency.WithLabelValues("visualize").Observe(1)

			Convey("Then the configured registry stays empty", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})
	})
}

func TestPackageLevelHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When the package-level helpers run", func() {
			RecordComputeLatency("visualize", 5)
			RecordComputeError("visualize")
			RecordCacheHit()
			RecordCacheMiss()
			UpdateCacheEntries(3)
			RecordSQLQueryLatency("bands", 2)
			RecordSQLQueryError()
			UpdateDatasetRows(100)
			UpdateDatasetLoadTime(0.5)
			RecordValidationError()

			Convey("Then the shared registry gathers without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
