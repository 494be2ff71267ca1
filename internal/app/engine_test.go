package app_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/okian/synthpad/internal/app"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func press(src int, f float64) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Press, Frequency: f, Velocity: 1}
}

func move(src int, f, v float64) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Move, Frequency: f, Velocity: v}
}

func release(src int) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Release}
}

func TestEngineFlush(t *testing.T) {
	Convey("Given an engine with a recorder", t, func() {
		ctx := context.Background()
		rec := trigger.NewRecorder(0)
		e := app.NewEngine("test", app.WithConsumer(rec), app.WithQueueSize(16))

		Convey("When a window has no events", func() {
			frame, emitted := e.Flush(ctx)

			Convey("Then nothing is emitted", func() {
				So(frame, ShouldBeNil)
				So(emitted, ShouldBeFalse)
				So(rec.Total(), ShouldEqual, 0)
			})
		})

		Convey("When a trigger is held across windows", func() {
			So(e.Submit(ctx, press(1, 440)), ShouldBeTrue)
			first, ok1 := e.Flush(ctx)
			So(e.Submit(ctx, move(1, 440, 1)), ShouldBeTrue)
			second, ok2 := e.Flush(ctx)

			Convey("Then it is pressed first and down afterwards", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(first[0].Type, ShouldEqual, trigger.Pressed)
				So(second[0].Type, ShouldEqual, trigger.Down)
				So(rec.Total(), ShouldEqual, 2)
			})

			Convey("And an identical window follows", func() {
				So(e.Submit(ctx, move(1, 440, 1)), ShouldBeTrue)
				frame, emitted := e.Flush(ctx)

				Convey("Then the frame is suppressed", func() {
					So(emitted, ShouldBeFalse)
					So(frame, ShouldHaveLength, 1)
					So(rec.Total(), ShouldEqual, 2)
					So(e.GetStats()["suppressed"], ShouldEqual, int64(1))
				})
			})

			Convey("And the value changes", func() {
				So(e.Submit(ctx, move(1, 441, 0.5)), ShouldBeTrue)
				_, emitted := e.Flush(ctx)

				Convey("Then the frame is emitted", func() {
					So(emitted, ShouldBeTrue)
					So(rec.Last()[0].Frequency, ShouldEqual, 441)
				})
			})
		})

		Convey("When a held trigger sees an idle window", func() {
			So(e.Submit(ctx, press(1, 440)), ShouldBeTrue)
			e.Flush(ctx)
			before := e.Snapshot()
			frame, emitted := e.Flush(ctx)

			Convey("Then the snapshot moves from pressed to down without a frame", func() {
				So(before[0].Type, ShouldEqual, trigger.Pressed)
				So(frame, ShouldBeNil)
				So(emitted, ShouldBeFalse)
				So(e.Snapshot()[0].Type, ShouldEqual, trigger.Down)
				So(rec.Total(), ShouldEqual, 1)
			})
		})

		Convey("When a tap happens inside one window", func() {
			e.Submit(ctx, press(1, 440))
			e.Submit(ctx, release(1))
			_, ok1 := e.Flush(ctx)
			_, ok2 := e.Flush(ctx)
			_, ok3 := e.Flush(ctx)

			Convey("Then pressed and released are emitted in consecutive windows", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(ok3, ShouldBeFalse)
				So(trigger.CheckFrames(rec.Frames()), ShouldBeNil)
			})
		})

		Convey("When a release arrives for an unknown source", func() {
			e.Submit(ctx, release(42))
			_, emitted := e.Flush(ctx)

			Convey("Then nothing is emitted", func() {
				So(emitted, ShouldBeFalse)
				So(rec.Total(), ShouldEqual, 0)
			})
		})

		Convey("When an event carries a NaN value", func() {
			So(e.Submit(ctx, trigger.Event{Source: 1, Kind: trigger.Press, Frequency: 100, Velocity: math.NaN()}), ShouldBeTrue)
			frame, emitted := e.Flush(ctx)

			Convey("Then it is counted and passed through", func() {
				So(emitted, ShouldBeTrue)
				So(math.IsNaN(frame[0].Velocity), ShouldBeTrue)
				So(e.GetStats()["anomalies"], ShouldEqual, int64(1))
			})
		})
	})
}

func TestEngineBackpressure(t *testing.T) {
	Convey("Given an engine with a two-event buffer", t, func() {
		ctx := context.Background()
		e := app.NewEngine("bp", app.WithQueueSize(2))

		Convey("When a third event is submitted before the window", func() {
			So(e.Submit(ctx, press(1, 1)), ShouldBeTrue)
			So(e.Submit(ctx, press(2, 2)), ShouldBeTrue)
			accepted := e.Submit(ctx, press(3, 3))

			Convey("Then it is rejected and counted", func() {
				So(accepted, ShouldBeFalse)
				So(e.GetStats()["dropped"], ShouldEqual, int64(1))
			})
		})

		Convey("When the engine is closed", func() {
			So(e.Close(), ShouldBeNil)

			Convey("Then submissions are rejected", func() {
				So(e.Submit(ctx, press(1, 1)), ShouldBeFalse)
			})
		})
	})
}

func TestEngineReset(t *testing.T) {
	Convey("Given triggers {0: down, 1: pressed}", t, func() {
		ctx := context.Background()
		rec := trigger.NewRecorder(0)
		e := app.NewEngine("reset", app.WithConsumer(rec))

		e.Submit(ctx, press(10, 110))
		e.Flush(ctx)
		e.Submit(ctx, press(20, 220))
		e.Flush(ctx)
		So(e.Snapshot(), ShouldResemble, trigger.Frame{
			{ID: 0, Frequency: 110, Velocity: 1, Type: trigger.Down},
			{ID: 1, Frequency: 220, Velocity: 1, Type: trigger.Pressed},
		})

		Convey("When the surface is torn down with events still queued", func() {
			e.Submit(ctx, press(30, 330))
			frame := e.Reset(ctx)

			Convey("Then both triggers are released and state is cleared", func() {
				So(frame, ShouldResemble, trigger.Frame{
					{ID: 0, Frequency: 110, Type: trigger.Released},
					{ID: 1, Frequency: 220, Type: trigger.Released},
				})
				So(rec.Last(), ShouldResemble, frame)
				So(e.Held(), ShouldEqual, 0)
				So(trigger.CheckFrames(rec.Frames()), ShouldBeNil)
			})

			Convey("Then the discarded event never surfaces", func() {
				_, emitted := e.Flush(ctx)
				So(emitted, ShouldBeFalse)
			})

			Convey("Then a new press starts again from id 0", func() {
				e.Submit(ctx, press(40, 440))
				frame, _ := e.Flush(ctx)
				So(frame[0].ID, ShouldEqual, 0)
				So(frame[0].Type, ShouldEqual, trigger.Pressed)
			})
		})

		Convey("When reset twice", func() {
			e.Reset(ctx)
			second := e.Reset(ctx)

			Convey("Then the second reset emits nothing", func() {
				So(second, ShouldBeNil)
				So(e.GetStats()["resets"], ShouldEqual, int64(2))
			})
		})
	})
}

func TestEngineConsumerErrors(t *testing.T) {
	Convey("Given an engine whose first consumer fails", t, func() {
		ctx := context.Background()
		rec := trigger.NewRecorder(0)
		failing := trigger.ConsumerFunc(func(context.Context, trigger.Frame) error {
			return errors.New("synth offline")
		})
		e := app.NewEngine("errs", app.WithConsumer(failing))
		e.AddConsumer(rec)

		e.Submit(ctx, press(1, 1))
		_, emitted := e.Flush(ctx)

		Convey("Then later consumers still receive the frame", func() {
			So(emitted, ShouldBeTrue)
			So(rec.Total(), ShouldEqual, 1)
			So(e.GetStats()["consumerErrors"], ShouldEqual, int64(1))
		})
	})
}

func TestEngineRun(t *testing.T) {
	Convey("Given an engine driven by its own window loop", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		rec := trigger.NewRecorder(0)
		e := app.NewEngine("run", app.WithConsumer(rec), app.WithWindow(time.Millisecond), app.WithQueueSize(4096))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Run(ctx)
		}()

		Convey("When pointers press, move and release concurrently", func() {
			var producers sync.WaitGroup
			for p := 0; p < 4; p++ {
				producers.Add(1)
				go func(p int) {
					defer producers.Done()
					for i := 0; i < 20; i++ {
						e.Submit(ctx, press(p, float64(100+p)))
						e.Submit(ctx, move(p, float64(100+p+i), 0.5))
						if i%3 == 0 {
							time.Sleep(time.Millisecond)
						}
						e.Submit(ctx, release(p))
					}
				}(p)
			}
			producers.Wait()
			time.Sleep(20 * time.Millisecond)
			cancel()
			wg.Wait()
			e.Flush(context.Background())
			e.Flush(context.Background())
			e.Reset(context.Background())

			Convey("Then the recorded stream satisfies every invariant", func() {
				So(rec.Total(), ShouldBeGreaterThan, 0)
				So(trigger.CheckFrames(rec.Frames()), ShouldBeNil)
			})
		})

		Reset(func() {
			cancel()
			wg.Wait()
		})
	})
}
