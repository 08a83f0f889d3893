package detect_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/skinsight/engine/internal/domain/detect"
	"github.com/skinsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	skinTone = color.RGBA{R: 224, G: 172, B: 140, A: 255}
	darkBG   = color.RGBA{R: 24, G: 28, B: 34, A: 255}
)

// frameWithFace draws a skin-tone rectangle on a dark background.
func frameWithFace(w, h int, face image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(face) {
				img.SetRGBA(x, y, skinTone)
			} else {
				img.SetRGBA(x, y, darkBG)
			}
		}
	}
	return img
}

// centeredFace returns a centered square covering roughly ratio of the frame.
func centeredFace(w, h int, ratio float64) image.Rectangle {
	side := int(float64(w) * 0.01)
	for s := 1; s < w && s < h; s++ {
		if float64(s*s) >= ratio*float64(w*h) {
			side = s
			break
		}
	}
	x0 := (w - side) / 2
	y0 := (h - side) / 2
	return image.Rect(x0, y0, x0+side, y0+side)
}

func TestDetect(t *testing.T) {
	Convey("Given a detector with defaults", t, func() {
		d := detect.New()
		ctx := context.Background()

		Convey("When the frame is blank", func() {
			img := frameWithFace(200, 200, image.Rect(0, 0, 0, 0))
			_, err := d.Detect(ctx, img, detect.ModeCommitted)

			Convey("Then it should report no face, not panic", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldEqual, model.ErrNoFaceDetected)
			})
		})

		Convey("When a centered face covers 40% of the frame", func() {
			img := frameWithFace(200, 200, centeredFace(200, 200, 0.40))
			det, err := d.Detect(ctx, img, detect.ModeCommitted)

			Convey("Then confidence should clear the 0.9 gate", func() {
				So(err, ShouldBeNil)
				So(det.Confidence, ShouldBeGreaterThanOrEqualTo, 0.9)
				So(det.FrameWidth, ShouldEqual, 200)
				So(det.FrameHeight, ShouldEqual, 200)
			})

			Convey("Then the bounds should cover the drawn region", func() {
				So(err, ShouldBeNil)
				So(det.AreaRatio(), ShouldBeGreaterThan, 0.3)
				So(det.AreaRatio(), ShouldBeLessThan, 0.5)
			})
		})

		Convey("When the face is small and off to the side", func() {
			img := frameWithFace(200, 200, image.Rect(4, 4, 40, 40))
			det, err := d.Detect(ctx, img, detect.ModeCommitted)

			Convey("Then the detection should be below the gate", func() {
				So(err, ShouldBeNil)
				So(det.Confidence, ShouldBeLessThan, 0.9)
			})

			Convey("Then guidance should be actionable", func() {
				So(err, ShouldBeNil)
				So(detect.Guidance(det), ShouldNotBeEmpty)
			})
		})

		Convey("When two faces are present, one large and centered", func() {
			img := frameWithFace(200, 200, centeredFace(200, 200, 0.25))
			// Second, smaller face at the edge, separated from the first.
			for y := 2; y < 26; y++ {
				for x := 2; x < 26; x++ {
					img.SetRGBA(x, y, skinTone)
				}
			}
			det, err := d.Detect(ctx, img, detect.ModeCommitted)

			Convey("Then exactly the larger one should win", func() {
				So(err, ShouldBeNil)
				cx := det.Bounds.X + det.Bounds.Width/2
				cy := det.Bounds.Y + det.Bounds.Height/2
				So(cx, ShouldBeBetween, 80, 120)
				So(cy, ShouldBeBetween, 80, 120)
			})
		})

		Convey("When the face area grows with everything else fixed", func() {
			Convey("Then confidence should be monotonically non-decreasing", func() {
				prev := 0.0
				for _, ratio := range []float64{0.05, 0.10, 0.20, 0.30, 0.40} {
					img := frameWithFace(200, 200, centeredFace(200, 200, ratio))
					det, err := d.Detect(ctx, img, detect.ModeCommitted)
					So(err, ShouldBeNil)
					So(det.Confidence, ShouldBeGreaterThanOrEqualTo, prev)
					prev = det.Confidence
				}
			})
		})

		Convey("When running in preview mode", func() {
			img := frameWithFace(400, 300, image.Rect(100, 60, 300, 240))
			det, err := d.Detect(ctx, img, detect.ModePreview)

			Convey("Then detection should still succeed with scaled bounds", func() {
				So(err, ShouldBeNil)
				So(det.Bounds.Width, ShouldBeGreaterThan, 150)
				So(det.FrameWidth, ShouldEqual, 400)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			img := frameWithFace(100, 100, centeredFace(100, 100, 0.3))
			_, err := d.Detect(cancelled, img, detect.ModeCommitted)

			Convey("Then the call should return promptly with the context error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
