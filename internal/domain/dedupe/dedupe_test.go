package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/synthpad/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithInitialCapacity(8))

		So(d.Size(), ShouldEqual, 0)

		Convey("When the first reference is recorded", func() {
			seen := d.SeenAndRecord(ctx, "window/mouse")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Count("window/mouse"), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second reference is recorded", func() {
				seen := d.SeenAndRecord(ctx, "window/mouse")

				Convey("Then it is reported as a duplicate", func() {
					So(seen, ShouldBeTrue)
					So(d.Count("window/mouse"), ShouldEqual, 2)
					So(d.Size(), ShouldEqual, 1)
				})

				Convey("And both are unrecorded", func() {
					first := d.Unrecord(ctx, "window/mouse")
					last := d.Unrecord(ctx, "window/mouse")

					Convey("Then only the last removal reports true", func() {
						So(first, ShouldBeFalse)
						So(last, ShouldBeTrue)
						So(d.Count("window/mouse"), ShouldEqual, 0)
						So(d.Size(), ShouldEqual, 0)
					})
				})
			})
		})

		Convey("When an unknown id is unrecorded", func() {
			Convey("Then nothing happens", func() {
				So(d.Unrecord(ctx, "missing"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a deduper with a change hook", t, func() {
		ctx := context.Background()
		var changes []int
		d := dedupe.NewInMemoryDeduper(dedupe.WithOnChange(func(_ string, refs int) {
			changes = append(changes, refs)
		}))

		d.SeenAndRecord(ctx, "a")
		d.SeenAndRecord(ctx, "a")
		d.Unrecord(ctx, "a")
		d.Unrecord(ctx, "a")

		Convey("Then every transition is observed", func() {
			So(changes, ShouldResemble, []int{1, 2, 1, 0})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given many goroutines sharing registrations", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		const workers = 32

		var firsts, lasts sync.Map
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("target-%d", i%4)
				if !d.SeenAndRecord(ctx, key) {
					firsts.Store(fmt.Sprintf("%s-%d", key, i), true)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then each key has exactly one first registration", func() {
			n := 0
			firsts.Range(func(_, _ any) bool { n++; return true })
			So(n, ShouldEqual, 4)
			So(d.Size(), ShouldEqual, 4)
		})

		Convey("Then each key has exactly one last release", func() {
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					key := fmt.Sprintf("target-%d", i%4)
					if d.Unrecord(ctx, key) {
						lasts.Store(key, true)
					}
				}(i)
			}
			wg.Wait()

			n := 0
			lasts.Range(func(_, _ any) bool { n++; return true })
			So(n, ShouldEqual, 4)
			So(d.Size(), ShouldEqual, 0)
		})
	})
}
