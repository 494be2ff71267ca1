package capture

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMouseTracker(t *testing.T) {
	Convey("Given a fresh mouse tracker", t, func() {
		var m mouseTracker

		cases := []struct {
			name string
			tick mouseTick
			want []mouseEvent
		}{
			{"first tick reports the cursor", mouseTick{x: 5, y: 5}, []mouseEvent{{MouseMove, 5, 5}}},
			{"still cursor is quiet", mouseTick{x: 5, y: 5}, nil},
			{"press without motion", mouseTick{x: 5, y: 5, pressed: true}, []mouseEvent{{MouseDown, 5, 5}}},
			{"drag", mouseTick{x: 9, y: 6}, []mouseEvent{{MouseMove, 9, 6}}},
			{"release after moving", mouseTick{x: 12, y: 6, released: true},
				[]mouseEvent{{MouseMove, 12, 6}, {MouseUp, 12, 6}}},
			{"click on a new spot", mouseTick{x: 20, y: 1, pressed: true, released: true},
				[]mouseEvent{{MouseDown, 20, 1}, {MouseMove, 20, 1}, {MouseUp, 20, 1}}},
		}

		Convey("When ticks are fed in order", func() {
			for _, tc := range cases {
				So(m.step(tc.tick), ShouldResemble, tc.want)
			}
		})
	})
}

func TestTouchTracker(t *testing.T) {
	Convey("Given a fresh touch tracker", t, func() {
		tr := newTouchTracker()

		type want struct {
			started, moved, ended []Touch
			tracked               int
		}
		cases := []struct {
			name string
			tick touchTick
			want want
		}{
			{
				name: "a touch starts and is live in the same tick",
				tick: touchTick{
					pressed: []touchSample{{id: 1, x: 10, y: 10}},
					live:    []touchSample{{id: 1, x: 10, y: 10}},
				},
				want: want{started: []Touch{{ID: 1, X: 10, Y: 10}}, tracked: 1},
			},
			{
				name: "an unmoved touch is quiet",
				tick: touchTick{live: []touchSample{{id: 1, x: 10, y: 10}}},
				want: want{tracked: 1},
			},
			{
				name: "a touch never seen starting is ignored",
				tick: touchTick{
					live:     []touchSample{{id: 1, x: 10, y: 10}, {id: 7, x: 3, y: 3}},
					released: []touchSample{{id: 8, x: 4, y: 4}},
				},
				want: want{tracked: 1},
			},
			{
				name: "a second touch starts while the first moves",
				tick: touchTick{
					pressed: []touchSample{{id: 2, x: 50, y: 50}},
					live:    []touchSample{{id: 1, x: 12, y: 11}, {id: 2, x: 50, y: 50}},
				},
				want: want{
					started: []Touch{{ID: 2, X: 50, Y: 50}},
					moved:   []Touch{{ID: 1, X: 12, Y: 11}},
					tracked: 2,
				},
			},
			{
				name: "a release ends at the previous tick's position",
				tick: touchTick{
					live:     []touchSample{{id: 2, x: 50, y: 50}},
					released: []touchSample{{id: 1, x: 12, y: 11}},
				},
				want: want{ended: []Touch{{ID: 1, X: 12, Y: 11}}, tracked: 1},
			},
			{
				name: "a repeated release is ignored",
				tick: touchTick{released: []touchSample{{id: 1, x: 12, y: 11}}},
				want: want{tracked: 1},
			},
			{
				name: "a reused id starts again",
				tick: touchTick{
					pressed:  []touchSample{{id: 1, x: 30, y: 30}},
					live:     []touchSample{{id: 1, x: 30, y: 30}},
					released: []touchSample{{id: 2, x: 55, y: 52}},
				},
				want: want{
					started: []Touch{{ID: 1, X: 30, Y: 30}},
					ended:   []Touch{{ID: 2, X: 55, Y: 52}},
					tracked: 1,
				},
			},
		}

		Convey("When ticks are fed in order", func() {
			for _, tc := range cases {
				started, moved, ended := tr.step(tc.tick)
				So(started, ShouldResemble, tc.want.started)
				So(moved, ShouldResemble, tc.want.moved)
				So(ended, ShouldResemble, tc.want.ended)
				So(tr.last, ShouldHaveLength, tc.want.tracked)
			}
		})
	})
}
