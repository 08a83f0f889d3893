package condition_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/skinsight/engine/internal/domain/condition"
	"github.com/skinsight/engine/internal/domain/imaging"
	"github.com/skinsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	healthySkin = color.RGBA{R: 224, G: 172, B: 140, A: 255}
	blemishTone = color.RGBA{R: 210, G: 90, B: 85, A: 255}
	darkTone    = color.RGBA{R: 80, G: 50, B: 45, A: 255}
)

// skinPatch builds a uniform skin-tone face crop.
func skinPatch(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, healthySkin)
		}
	}
	return img
}

// seed paints a square of side px at (x0, y0).
func seed(img *image.RGBA, x0, y0, side int, c color.RGBA) {
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func analyzerByName(name string) condition.Analyzer {
	for _, a := range condition.Family() {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

func TestFamily(t *testing.T) {
	Convey("Given the analyzer family", t, func() {
		family := condition.Family()

		Convey("Then it should cover every condition name exactly once, in order", func() {
			names := make([]string, 0, len(family))
			for _, a := range family {
				names = append(names, a.Name())
			}
			So(names, ShouldResemble, model.ConditionNames())
		})
	})
}

func TestAnalyzeHealthySkin(t *testing.T) {
	Convey("Given a uniform, healthy skin crop", t, func() {
		roi := imaging.ToPlanes(skinPatch(120, 120))
		ctx := context.Background()

		Convey("When every analyzer runs", func() {
			for _, a := range condition.Family() {
				res, err := a.Analyze(ctx, roi)
				So(err, ShouldBeNil)
				So(res.Detected, ShouldBeFalse)
				So(res.Severity, ShouldEqual, model.SeverityNone)
				So(res.Confidence, ShouldBeGreaterThanOrEqualTo, 0.8)
				So(res.Location, ShouldBeEmpty)
				So(res.Description, ShouldNotBeEmpty)
			}
		})
	})
}

func TestAnalyzeAcne(t *testing.T) {
	Convey("Given the acne analyzer", t, func() {
		a := analyzerByName("acne")
		So(a, ShouldNotBeNil)
		ctx := context.Background()

		Convey("When the crop carries scattered red blemishes", func() {
			img := skinPatch(100, 100)
			// Four 12x12 blemishes, just under 6% of the crop.
			seed(img, 20, 20, 12, blemishTone)
			seed(img, 64, 24, 12, blemishTone)
			seed(img, 30, 60, 12, blemishTone)
			seed(img, 70, 70, 12, blemishTone)
			res, err := a.Analyze(ctx, imaging.ToPlanes(img))

			Convey("Then acne should be detected with a sensible result", func() {
				So(err, ShouldBeNil)
				So(res.Detected, ShouldBeTrue)
				So(res.Severity, ShouldNotEqual, model.SeverityNone)
				So(res.Confidence, ShouldBeGreaterThanOrEqualTo, 0.55)
				So(res.Confidence, ShouldBeLessThanOrEqualTo, 1.0)
				So(res.Location, ShouldNotBeEmpty)
			})
		})

		Convey("When the blemish area grows with everything else fixed", func() {
			Convey("Then severity should be monotonically non-decreasing", func() {
				prev := model.SeverityNone
				for _, side := range []int{8, 18, 34} {
					img := skinPatch(100, 100)
					seed(img, 30, 30, side, blemishTone)
					res, err := a.Analyze(ctx, imaging.ToPlanes(img))
					So(err, ShouldBeNil)
					So(res.Severity.Rank(), ShouldBeGreaterThanOrEqualTo, prev.Rank())
					prev = res.Severity
				}
			})
		})
	})
}

func TestAnalyzeDarkSpots(t *testing.T) {
	Convey("Given the dark spot analyzer", t, func() {
		a := analyzerByName("dark_spots")
		So(a, ShouldNotBeNil)
		ctx := context.Background()

		Convey("When the crop carries dark patches on the forehead", func() {
			img := skinPatch(100, 100)
			seed(img, 24, 8, 16, darkTone)
			seed(img, 60, 10, 16, darkTone)
			res, err := a.Analyze(ctx, imaging.ToPlanes(img))

			Convey("Then the spots should be detected and localized up top", func() {
				So(err, ShouldBeNil)
				So(res.Detected, ShouldBeTrue)
				So(res.Location, ShouldEqual, "forehead")
			})
		})
	})
}

func TestAnalyzeEdgeCases(t *testing.T) {
	Convey("Given any analyzer from the family", t, func() {
		a := condition.Family()[0]

		Convey("When the region is nil", func() {
			_, err := a.Analyze(context.Background(), nil)

			Convey("Then it should fail cleanly", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := a.Analyze(ctx, imaging.ToPlanes(skinPatch(40, 40)))

			Convey("Then it should return promptly with the context error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
