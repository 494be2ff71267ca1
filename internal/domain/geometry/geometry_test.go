package geometry_test

import (
	"math"
	"testing"

	"github.com/okian/synthpad/internal/domain/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func TestRect(t *testing.T) {
	Convey("Given a rect at (10,20) sized 100x50", t, func() {
		r := geometry.Rect{X: 10, Y: 20, Width: 100, Height: 50}

		Convey("Then Contains accepts inner and edge points", func() {
			So(r.Contains(geometry.Point{X: 50, Y: 40}), ShouldBeTrue)
			So(r.Contains(geometry.Point{X: 10, Y: 20}), ShouldBeTrue)
			So(r.Contains(geometry.Point{X: 110, Y: 70}), ShouldBeTrue)
		})

		Convey("Then Contains rejects points on every outer side", func() {
			So(r.Contains(geometry.Point{X: 5, Y: 40}), ShouldBeFalse)
			So(r.Contains(geometry.Point{X: 115, Y: 40}), ShouldBeFalse)
			So(r.Contains(geometry.Point{X: 50, Y: 15}), ShouldBeFalse)
			So(r.Contains(geometry.Point{X: 50, Y: 75}), ShouldBeFalse)
		})

		Convey("Then Relative subtracts the origin", func() {
			So(geometry.Relative(geometry.Point{X: 15, Y: 30}, r), ShouldResemble, geometry.Point{X: 5, Y: 10})
		})

		Convey("Then Empty is false", func() {
			So(r.Empty(), ShouldBeFalse)
			So(geometry.Rect{Width: 1}.Empty(), ShouldBeTrue)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a rect at (100,100) sized 200x50", t, func() {
		r := geometry.Rect{X: 100, Y: 100, Width: 200, Height: 50}

		Convey("When normalizing the center", func() {
			p := geometry.Normalize(geometry.Point{X: 200, Y: 125}, r)

			Convey("Then it maps to (0.5, 0.5)", func() {
				So(p.X, ShouldAlmostEqual, 0.5, eps)
				So(p.Y, ShouldAlmostEqual, 0.5, eps)
			})
		})

		Convey("When normalizing a point outside", func() {
			p := geometry.Normalize(geometry.Point{X: 0, Y: 200}, r)

			Convey("Then it maps outside the unit square", func() {
				So(p.X, ShouldBeLessThan, 0)
				So(p.Y, ShouldBeGreaterThan, 1)
			})
		})

		Convey("When denormalizing", func() {
			p := geometry.Denormalize(geometry.Point{X: 0.25, Y: 0.2}, r)

			Convey("Then it is the inverse of Normalize", func() {
				So(p.X, ShouldAlmostEqual, 150, eps)
				So(p.Y, ShouldAlmostEqual, 110, eps)
			})
		})

		Convey("When the rect is degenerate", func() {
			p := geometry.Normalize(geometry.Point{}, geometry.Rect{})

			Convey("Then the components are NaN", func() {
				So(math.IsNaN(p.X), ShouldBeTrue)
				So(math.IsNaN(p.Y), ShouldBeTrue)
			})
		})
	})
}

func TestAngles(t *testing.T) {
	Convey("Given the center of a unit square", t, func() {
		c := geometry.Point{X: 0.5, Y: 0.5}

		Convey("Then angles are measured clockwise from straight up", func() {
			So(geometry.Angle(c, geometry.Point{X: 0.5, Y: 0}), ShouldAlmostEqual, 0, eps)
			So(geometry.Angle(c, geometry.Point{X: 1, Y: 0.5}), ShouldAlmostEqual, math.Pi/2, eps)
			So(geometry.Angle(c, geometry.Point{X: 0, Y: 0.5}), ShouldAlmostEqual, -math.Pi/2, eps)
			So(geometry.Angle(c, geometry.Point{X: 0.5, Y: 1}), ShouldAlmostEqual, math.Pi, eps)
		})

		Convey("Then NormalizeAngle wraps into (-π, π]", func() {
			So(geometry.NormalizeAngle(0), ShouldAlmostEqual, 0, eps)
			So(geometry.NormalizeAngle(-math.Pi), ShouldAlmostEqual, math.Pi, eps)
			So(geometry.NormalizeAngle(3*math.Pi/2), ShouldAlmostEqual, -math.Pi/2, eps)
			So(geometry.NormalizeAngle(-3*math.Pi/2), ShouldAlmostEqual, math.Pi/2, eps)
			So(geometry.NormalizeAngle(7*math.Pi/2), ShouldAlmostEqual, -math.Pi/2, eps)
		})
	})
}

func TestDistanceAndClamp(t *testing.T) {
	Convey("Given two points 3-4-5 apart", t, func() {
		So(geometry.Distance(geometry.Point{}, geometry.Point{X: 3, Y: 4}), ShouldAlmostEqual, 5, eps)
	})

	Convey("Given values around [0,1]", t, func() {
		So(geometry.Clamp(-1, 0, 1), ShouldEqual, 0)
		So(geometry.Clamp(2, 0, 1), ShouldEqual, 1)
		So(geometry.Clamp(0.3, 0, 1), ShouldEqual, 0.3)
	})
}
