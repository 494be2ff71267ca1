package trigger_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/synthpad/internal/domain/trigger"
	. "github.com/smartystreets/goconvey/convey"
)

func press(src int, freq float64) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Press, Frequency: freq, Velocity: 1}
}

func move(src int, freq, vel float64) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Move, Frequency: freq, Velocity: vel}
}

func release(src int) trigger.Event {
	return trigger.Event{Source: src, Kind: trigger.Release}
}

func ids(f trigger.Frame) []int {
	out := make([]int, len(f))
	for i, s := range f {
		out[i] = s.ID
	}
	return out
}

func types(f trigger.Frame) []trigger.StateType {
	out := make([]trigger.StateType, len(f))
	for i, s := range f {
		out[i] = s.Type
	}
	return out
}

func TestReconcileLifecycle(t *testing.T) {
	Convey("Given an empty held set", t, func() {
		held := trigger.HeldSet{}

		Convey("When a window has no events", func() {
			frame, next := trigger.Reconcile(nil, held)

			Convey("Then nothing is emitted and the held set is unchanged", func() {
				So(frame, ShouldBeEmpty)
				So(next.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a pointer presses", func() {
			frame, held := trigger.Reconcile([]trigger.Event{press(7, 440)}, held)

			Convey("Then it is pressed with id 0", func() {
				So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 440, Velocity: 1, Type: trigger.Pressed}})
				So(held[7].ID, ShouldEqual, 0)
				So(held[7].Type, ShouldEqual, trigger.Pressed)
			})

			Convey("And an idle window closes", func() {
				idle, settled := trigger.Reconcile(nil, held)

				Convey("Then nothing is emitted but the trigger settles to down", func() {
					So(idle, ShouldBeEmpty)
					So(settled[7].Type, ShouldEqual, trigger.Down)
					So(settled.Triggers()[0].Type, ShouldEqual, trigger.Down)
					So(held[7].Type, ShouldEqual, trigger.Pressed)
				})
			})

			Convey("And it moves in the next window", func() {
				frame, held := trigger.Reconcile([]trigger.Event{move(7, 450, 0.5)}, held)

				Convey("Then it is down with the new values and the same id", func() {
					So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 450, Velocity: 0.5, Type: trigger.Down}})
					So(held[7].Type, ShouldEqual, trigger.Down)
				})

				Convey("And it releases", func() {
					frame, held := trigger.Reconcile([]trigger.Event{release(7)}, held)

					Convey("Then it is released with its last frequency and dropped", func() {
						So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 450, Type: trigger.Released}})
						So(held.Len(), ShouldEqual, 0)
					})
				})
			})
		})

		Convey("When two presses of one source land in one window", func() {
			frame, _ := trigger.Reconcile([]trigger.Event{press(1, 100), press(1, 200)}, held)

			Convey("Then they collapse into one pressed trigger with the last value", func() {
				So(frame, ShouldHaveLength, 1)
				So(frame[0].Type, ShouldEqual, trigger.Pressed)
				So(frame[0].Frequency, ShouldEqual, 200)
			})
		})

		Convey("When a move arrives from an unknown source", func() {
			frame, held := trigger.Reconcile([]trigger.Event{move(3, 300, 0.2)}, held)

			Convey("Then it starts a trigger", func() {
				So(types(frame), ShouldResemble, []trigger.StateType{trigger.Pressed})
				So(held.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestReconcileNoOrphanReleases(t *testing.T) {
	Convey("Given one held trigger", t, func() {
		_, held := trigger.Reconcile([]trigger.Event{press(1, 100)}, trigger.HeldSet{})
		_, held = trigger.Reconcile([]trigger.Event{move(1, 100, 1)}, held)

		Convey("When a release arrives for an unknown source", func() {
			frame, next := trigger.Reconcile([]trigger.Event{release(99)}, held)

			Convey("Then it produces no transition", func() {
				So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 100, Velocity: 1, Type: trigger.Down}})
				So(next, ShouldResemble, held)
			})
		})

		Convey("When the only event is an orphan release on an empty set", func() {
			frame, next := trigger.Reconcile([]trigger.Event{release(5)}, trigger.HeldSet{})

			Convey("Then the frame is empty", func() {
				So(frame, ShouldBeEmpty)
				So(next.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestReconcileIDReuse(t *testing.T) {
	Convey("Given triggers 0, 1 and 2 held", t, func() {
		_, held := trigger.Reconcile([]trigger.Event{press(10, 1), press(11, 2), press(12, 3)}, trigger.HeldSet{})
		So(held[10].ID, ShouldEqual, 0)
		So(held[11].ID, ShouldEqual, 1)
		So(held[12].ID, ShouldEqual, 2)

		Convey("When id 1 is released and a new pointer presses later", func() {
			_, held = trigger.Reconcile([]trigger.Event{release(11)}, held)
			frame, held := trigger.Reconcile([]trigger.Event{press(20, 4)}, held)

			Convey("Then the new pointer takes id 1, not 3", func() {
				So(held[20].ID, ShouldEqual, 1)
				So(ids(frame), ShouldResemble, []int{0, 1, 2})
				So(types(frame), ShouldResemble, []trigger.StateType{trigger.Down, trigger.Pressed, trigger.Down})
			})
		})

		Convey("When id 1 is released and a new pointer presses in the same window", func() {
			frame, held := trigger.Reconcile([]trigger.Event{release(11), press(20, 4)}, held)

			Convey("Then the released id is not reused inside the frame", func() {
				So(ids(frame), ShouldResemble, []int{0, 1, 2, 3})
				So(frame[1].Type, ShouldEqual, trigger.Released)
				So(frame[3].Type, ShouldEqual, trigger.Pressed)
				So(held[20].ID, ShouldEqual, 3)
			})
		})
	})
}

func TestReconcileTaps(t *testing.T) {
	Convey("Given an empty held set", t, func() {
		Convey("When a source presses and releases in one window", func() {
			frame, held := trigger.Reconcile([]trigger.Event{press(1, 220), release(1)}, trigger.HeldSet{})

			Convey("Then the frame reports pressed and keeps the release pending", func() {
				So(types(frame), ShouldResemble, []trigger.StateType{trigger.Pressed})
				So(held[1].PendingRelease, ShouldBeTrue)
			})

			Convey("And the next window has no events", func() {
				frame, held := trigger.Reconcile(nil, held)

				Convey("Then the pending release is emitted", func() {
					So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 220, Type: trigger.Released}})
					So(held.Len(), ShouldEqual, 0)
				})
			})

			Convey("And the same source presses again in the next window", func() {
				frame, held := trigger.Reconcile([]trigger.Event{press(1, 230)}, held)

				Convey("Then it keeps its id and reports down", func() {
					So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 230, Velocity: 1, Type: trigger.Down}})
					So(held[1].PendingRelease, ShouldBeFalse)
				})
			})
		})

		Convey("When a source presses, releases and presses again in one window", func() {
			frame, held := trigger.Reconcile([]trigger.Event{press(1, 220), release(1), press(1, 240)}, trigger.HeldSet{})

			Convey("Then it is a single held press", func() {
				So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 240, Velocity: 1, Type: trigger.Pressed}})
				So(held[1].PendingRelease, ShouldBeFalse)
			})
		})
	})

	Convey("Given a source held before the window", t, func() {
		_, held := trigger.Reconcile([]trigger.Event{press(1, 220)}, trigger.HeldSet{})

		Convey("When it releases and presses again within one window", func() {
			frame, held := trigger.Reconcile([]trigger.Event{release(1), press(1, 260)}, held)

			Convey("Then it keeps its id and stays down", func() {
				So(frame, ShouldResemble, trigger.Frame{{ID: 0, Frequency: 260, Velocity: 1, Type: trigger.Down}})
				So(held[1].ID, ShouldEqual, 0)
			})
		})
	})
}

func TestReconcileDoesNotMutatePrior(t *testing.T) {
	Convey("Given a held set", t, func() {
		_, held := trigger.Reconcile([]trigger.Event{press(1, 100)}, trigger.HeldSet{})
		snapshot := held.Clone()

		Convey("When reconciling a release", func() {
			trigger.Reconcile([]trigger.Event{release(1), press(2, 5)}, held)

			Convey("Then the prior set is untouched", func() {
				So(held, ShouldResemble, snapshot)
			})
		})
	})
}

func TestReconcileNumericPassthrough(t *testing.T) {
	Convey("Given an event with a NaN velocity", t, func() {
		ev := trigger.Event{Source: 1, Kind: trigger.Press, Frequency: 100, Velocity: math.NaN()}
		So(ev.Finite(), ShouldBeFalse)

		Convey("Then the value reaches the frame untouched", func() {
			frame, _ := trigger.Reconcile([]trigger.Event{ev}, trigger.HeldSet{})
			So(math.IsNaN(frame[0].Velocity), ShouldBeTrue)
		})
	})
}

func TestReleaseAll(t *testing.T) {
	Convey("Given triggers {0: down, 1: pressed}", t, func() {
		held := trigger.HeldSet{
			4: {ID: 0, Frequency: 110, Velocity: 1, Type: trigger.Down},
			9: {ID: 1, Frequency: 220, Velocity: 1, Type: trigger.Pressed},
		}

		Convey("When tearing down", func() {
			frame := trigger.ReleaseAll(held)

			Convey("Then both are released with their frequencies", func() {
				So(frame, ShouldResemble, trigger.Frame{
					{ID: 0, Frequency: 110, Type: trigger.Released},
					{ID: 1, Frequency: 220, Type: trigger.Released},
				})
			})
		})

		Convey("When nothing is held", func() {
			So(trigger.ReleaseAll(trigger.HeldSet{}), ShouldBeNil)
		})
	})
}

func TestFirstAvailableID(t *testing.T) {
	Convey("Given id collections", t, func() {
		So(trigger.FirstAvailableID(nil), ShouldEqual, 0)
		So(trigger.FirstAvailableID([]int{0, 1, 2}), ShouldEqual, 3)
		So(trigger.FirstAvailableID([]int{2, 0}), ShouldEqual, 1)
		So(trigger.FirstAvailableID([]int{1, 2}), ShouldEqual, 0)
		So(trigger.FirstAvailableID([]int{0, 0, 1}), ShouldEqual, 2)
	})
}

func TestFrameEqual(t *testing.T) {
	Convey("Given two frames", t, func() {
		a := trigger.Frame{{ID: 0, Frequency: 1, Velocity: 1, Type: trigger.Down}}

		So(a.Equal(a.Clone()), ShouldBeTrue)
		So(a.Equal(trigger.Frame{{ID: 0, Frequency: 2, Velocity: 1, Type: trigger.Down}}), ShouldBeFalse)
		So(a.Equal(trigger.Frame{{ID: 0, Frequency: 1, Velocity: 1, Type: trigger.Pressed}}), ShouldBeFalse)
		So(a.Equal(nil), ShouldBeFalse)

		nan := trigger.Frame{{ID: 0, Velocity: math.NaN(), Type: trigger.Down}}
		So(nan.Equal(nan.Clone()), ShouldBeTrue)
	})
}

// Random interleavings across pointers must keep every frame valid.
func TestReconcileRandomInterleavings(t *testing.T) {
	Convey("Given random multi-pointer scripts", t, func() {
		rng := rand.New(rand.NewSource(42))

		for run := 0; run < 200; run++ {
			checker := trigger.NewChecker()
			held := trigger.HeldSet{}
			idOf := map[int]int{}

			for w := 0; w < 30; w++ {
				var events []trigger.Event
				for n := rng.Intn(5); n > 0; n-- {
					src := rng.Intn(6)
					switch rng.Intn(3) {
					case 0:
						events = append(events, press(src, float64(src)))
					case 1:
						events = append(events, move(src, rng.Float64(), rng.Float64()))
					default:
						events = append(events, release(src))
					}
				}

				var frame trigger.Frame
				frame, held = trigger.Reconcile(events, held)
				if frame != nil {
					So(checker.Observe(frame), ShouldBeNil)
				}

				for src, h := range held {
					if prev, ok := idOf[src]; ok {
						So(h.ID, ShouldEqual, prev)
					}
					idOf[src] = h.ID
				}
				for src := range idOf {
					if _, ok := held[src]; !ok {
						delete(idOf, src)
					}
				}
			}

			// Drain pending releases, then tear down.
			var frame trigger.Frame
			frame, held = trigger.Reconcile(nil, held)
			if len(frame) > 0 {
				So(checker.Observe(frame), ShouldBeNil)
			}
			if f := trigger.ReleaseAll(held); f != nil {
				So(checker.Observe(f), ShouldBeNil)
			}
			So(checker.Finish(), ShouldBeNil)
		}
	})
}
