package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gatheredNames(reg *prometheus.Registry) map[string]bool {
	names := make(map[string]bool)
	mfs, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("pad"),
				WithLatencyBuckets([]float64{1, 10}),
				WithHTTPBuckets([]float64{0.5, 1}),
				WithPrometheusRegistry(registry),
			)
			manager.framesEmitted.WithLabelValues("keyboard").Inc()
			manager.queueCapacity.WithLabelValues("keyboard").Set(64)

			Convey("Then collectors are registered under the custom names", func() {
				names := gatheredNames(registry)
				So(names["test_pad_frames_emitted_total"], ShouldBeTrue)
				So(names["test_pad_queue_capacity"], ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithLatencyBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "synthpad")
				So(manager.subsystem, ShouldEqual, "engine")
				So(len(manager.latencyBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording engine metrics", func() {
			So(func() {
				RecordEventSubmitted("keyboard")
				RecordEventDropped("keyboard")
				RecordFrameEmitted("keyboard")
				RecordFrameSuppressed("keyboard")
				RecordReconcileLatency("keyboard", 12)
				RecordWindowEvents("keyboard", 3)
				UpdateHeldTriggers("keyboard", 2)
				RecordNumericAnomaly("radar")
				RecordConsumerError("radar")
				RecordReset("radar")
				UpdateWindowersRunning(2)
			}, ShouldNotPanic)
		})

		Convey("When recording queue, capture and output metrics", func() {
			So(func() {
				UpdateQueueSize("keyboard", 3)
				UpdateQueueCapacity("keyboard", 64)
				UpdateQueueUtilization("keyboard", 3.0/64)
				RecordCaptureDropped("move")
				AddActiveListeners(1)
				AddActiveListeners(-1)
				UpdateWindowListeners(1)
				RecordMIDIMessage("note_on")
				RecordHTTPRequest("/stats", "GET", "200")
				RecordHTTPRequestDuration("/stats", "GET", "200", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When a shared registration gains and loses users", func() {
			UpdateRegistrationUsers("pad:touchstart", 2)
			names := gatheredNames(GetRegistry())
			UpdateRegistrationUsers("pad:touchstart", 0)

			Convey("Then the series exists only while it has users", func() {
				So(names["synthpad_engine_capture_registration_users"], ShouldBeTrue)
				So(globalManager.registrationUsers.DeleteLabelValues("pad:touchstart"), ShouldBeFalse)
			})
		})

		Convey("Then the custom registry exposes them", func() {
			RecordFrameEmitted("radar")
			names := gatheredNames(GetRegistry())
			So(names["synthpad_engine_frames_emitted_total"], ShouldBeTrue)
		})
	})
}
