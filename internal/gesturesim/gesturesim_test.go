package gesturesim

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func smallConfig(surface string) *Config {
	return &Config{
		Sessions:    8,
		MaxPointers: 4,
		MaxMoves:    6,
		Workers:     3,
		Surface:     surface,
		Window:      time.Millisecond,
	}
}

func TestGenerateScript(t *testing.T) {
	Convey("Given generated scripts", t, func() {
		config := smallConfig(SurfaceKeyboard)

		for i := 0; i < 20; i++ {
			script := generateScript(config, SurfaceKeyboard)

			So(script.SessionID, ShouldNotBeEmpty)
			So(script.Steps, ShouldNotBeEmpty)
			So(script.Steps[len(script.Steps)-1].Flush, ShouldBeTrue)

			down := map[int]bool{}
			for _, step := range script.Steps {
				switch step.Kind {
				case capture.MouseDown:
					So(down[capture.MouseID], ShouldBeFalse)
					down[capture.MouseID] = true
				case capture.MouseMove:
					So(down[capture.MouseID], ShouldBeTrue)
				case capture.MouseUp:
					So(down[capture.MouseID], ShouldBeTrue)
					delete(down, capture.MouseID)
				case capture.TouchStart:
					for _, tc := range step.Touches {
						So(down[tc.ID], ShouldBeFalse)
						down[tc.ID] = true
					}
				case capture.TouchMove:
					for _, tc := range step.Touches {
						So(down[tc.ID], ShouldBeTrue)
					}
				case capture.TouchEnd:
					for _, tc := range step.Touches {
						So(down[tc.ID], ShouldBeTrue)
						delete(down, tc.ID)
					}
				}
			}
			So(down, ShouldBeEmpty)
		}
	})
}

func TestSurfaceFor(t *testing.T) {
	Convey("Mixed runs alternate surfaces", t, func() {
		So(surfaceFor(SurfaceMixed, 0), ShouldEqual, SurfaceRadar)
		So(surfaceFor(SurfaceMixed, 1), ShouldEqual, SurfaceKeyboard)
		So(surfaceFor(SurfaceRadar, 1), ShouldEqual, SurfaceRadar)
	})
}

func TestVerifyFrames(t *testing.T) {
	Convey("Given recorded frames", t, func() {
		Convey("When a trigger is pressed, held and released", func() {
			frames := []trigger.Frame{
				{{ID: 0, Frequency: 110, Velocity: 1, Type: trigger.Pressed}},
				{{ID: 0, Frequency: 110, Velocity: 1, Type: trigger.Released}},
			}

			Convey("Then they verify", func() {
				So(verifyFrames(frames, true), ShouldBeNil)
			})
		})

		Convey("When a trigger is never released", func() {
			frames := []trigger.Frame{
				{{ID: 0, Frequency: 110, Velocity: 1, Type: trigger.Pressed}},
			}

			Convey("Then verification fails", func() {
				So(verifyFrames(frames, false), ShouldNotBeNil)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a small simulation", t, func() {
		ctx := context.Background()

		for _, surface := range []string{SurfaceRadar, SurfaceKeyboard, SurfaceMixed} {
			surface := surface
			Convey("When it replays "+surface+" sessions with explicit windows", func() {
				stats, err := Run(ctx, smallConfig(surface))

				Convey("Then every session verifies", func() {
					So(err, ShouldBeNil)
					So(stats.SessionsGenerated, ShouldEqual, 8)
					So(stats.SessionsPlayed, ShouldEqual, 8)
					So(stats.SessionsFailed, ShouldEqual, 0)
					So(stats.StepsInjected, ShouldBeGreaterThan, 0)
				})
			})
		}

		Convey("When it replays with the engine's timer", func() {
			config := smallConfig(SurfaceMixed)
			config.Timed = true
			stats, err := Run(ctx, config)

			Convey("Then every session verifies", func() {
				So(err, ShouldBeNil)
				So(stats.SessionsFailed, ShouldEqual, 0)
			})
		})

		Convey("When scripts are saved", func() {
			config := smallConfig(SurfaceRadar)
			config.OutputFile = filepath.Join(t.TempDir(), "out", "scripts.json")
			_, err := Run(ctx, config)
			So(err, ShouldBeNil)

			Convey("Then the file holds every script", func() {
				data, err := os.ReadFile(config.OutputFile)
				So(err, ShouldBeNil)
				var scripts []Script
				So(json.Unmarshal(data, &scripts), ShouldBeNil)
				So(scripts, ShouldHaveLength, 8)
			})
		})

		Convey("When the config is invalid", func() {
			config := smallConfig("cello")
			_, err := Run(ctx, config)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When workers is zero", func() {
			config := smallConfig(SurfaceRadar)
			config.Workers = 0
			_, err := Run(ctx, config)

			Convey("Then one worker is used", func() {
				So(err, ShouldBeNil)
				So(config.Workers, ShouldEqual, 1)
			})
		})
	})
}
