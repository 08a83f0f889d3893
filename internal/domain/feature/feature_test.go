package feature_test

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/skinsight/engine/internal/domain/feature"
	"github.com/skinsight/engine/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// texturedROI draws a deterministic gradient-with-speckles face region.
func texturedROI(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*3 + y*5) % 200)
			c := color.RGBA{R: 180, G: 140 - v/4, B: 120, A: 255}
			if (x*7+y*13)%31 == 0 {
				c = color.RGBA{R: 90, G: 50, B: 40, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestExtract(t *testing.T) {
	Convey("Given an extractor with defaults", t, func() {
		e := feature.New()
		ctx := context.Background()

		Convey("When extracting from a textured region", func() {
			vec, err := e.Extract(ctx, texturedROI(96, 96))

			Convey("Then the embedding should be exactly 512-dimensional", func() {
				So(err, ShouldBeNil)
				So(len(vec), ShouldEqual, feature.EmbeddingDim)
			})

			Convey("Then the embedding should be unit length", func() {
				So(err, ShouldBeNil)
				var norm float64
				for _, v := range vec {
					norm += v * v
				}
				So(math.Sqrt(norm), ShouldAlmostEqual, 1.0, 1e-9)
			})

			Convey("Then every component should be finite", func() {
				So(err, ShouldBeNil)
				for _, v := range vec {
					So(math.IsNaN(v), ShouldBeFalse)
					So(math.IsInf(v, 0), ShouldBeFalse)
				}
			})
		})

		Convey("When extracting the same region twice", func() {
			a, errA := e.Extract(ctx, texturedROI(96, 96))
			b, errB := e.Extract(ctx, texturedROI(96, 96))

			Convey("Then the embeddings should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(len(a), ShouldEqual, len(b))
				for i := range a {
					So(a[i], ShouldEqual, b[i])
				}
			})
		})

		Convey("When extracting from different regions", func() {
			a, _ := e.Extract(ctx, texturedROI(96, 96))
			b, _ := e.Extract(ctx, texturedROI(64, 64))

			Convey("Then the embeddings should differ somewhere", func() {
				diff := false
				for i := range a {
					if a[i] != b[i] {
						diff = true
						break
					}
				}
				So(diff, ShouldBeTrue)
			})
		})

		Convey("When extracting from a flat region", func() {
			flat := image.NewRGBA(image.Rect(0, 0, 32, 32))
			for y := 0; y < 32; y++ {
				for x := 0; x < 32; x++ {
					flat.SetRGBA(x, y, color.RGBA{R: 180, G: 140, B: 120, A: 255})
				}
			}
			vec, err := e.Extract(ctx, flat)

			Convey("Then extraction should still produce a finite vector", func() {
				So(err, ShouldBeNil)
				So(len(vec), ShouldEqual, feature.EmbeddingDim)
				for _, v := range vec {
					So(math.IsNaN(v), ShouldBeFalse)
				}
			})
		})

		Convey("When the region is empty", func() {
			empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
			_, err := e.Extract(ctx, empty)

			Convey("Then it should fail with the extraction sentinel", func() {
				So(err, ShouldEqual, model.ErrFeatureExtraction)
			})
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := e.Extract(cancelled, texturedROI(32, 32))

			Convey("Then it should return the context error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
