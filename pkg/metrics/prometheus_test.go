package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with an isolated registry", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			manager := NewManager(WithHistogramBuckets(nil), WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording reconciliation metrics", func() {
			So(func() {
				RecordEventTracked()
				RecordEventCancelled()
				RecordEventSuperseded(3)
				RecordEventSuperseded(0)
				RecordEventSuperseded(-1)
			}, ShouldNotPanic)
		})

		Convey("When recording session lifecycle metrics", func() {
			So(func() {
				RecordSessionCreated()
				RecordSessionDeleted()
				UpdateSessionsCached(10)
				UpdateSessionsCached(0)
			}, ShouldNotPanic)
		})

		Convey("When recording persistence metrics", func() {
			So(func() {
				RecordPersistLatency(0.0)
				RecordPersistLatency(250.0)
				RecordPersistError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("sessions", "POST", "201")
				RecordHTTPRequest("", "", "500")
				RecordHTTPRequestDuration("sessions", "GET", "200", 12.5)
			}, ShouldNotPanic)
		})

		Convey("When gathering from the registry", func() {
			families, err := GetRegistry().Gather()

			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		done := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordEventTracked()
					UpdateSessionsCached(j)
					RecordPersistLatency(float64(j))
					RecordHTTPRequest("move", "POST", "200")
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then no recording panics", func() {
			So(true, ShouldBeTrue)
		})
	})
}
