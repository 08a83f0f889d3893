package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	service "github.com/skinsight/engine/internal/app"
	"github.com/skinsight/engine/internal/domain/feature"
	"github.com/skinsight/engine/internal/domain/model"
	"github.com/skinsight/engine/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	skinTone = color.RGBA{R: 224, G: 172, B: 140, A: 255}
	darkBG   = color.RGBA{R: 24, G: 28, B: 34, A: 255}
)

// facePNG renders a centered square face over a dark background and encodes
// it as PNG.
func facePNG(t *testing.T, frame int, faceRatio float64) []byte {
	t.Helper()
	side := 1
	for s := 1; s < frame; s++ {
		if float64(s*s) >= faceRatio*float64(frame*frame) {
			side = s
			break
		}
	}
	x0 := (frame - side) / 2
	img := image.NewRGBA(image.Rect(0, 0, frame, frame))
	for y := 0; y < frame; y++ {
		for x := 0; x < frame; x++ {
			if x >= x0 && x < x0+side && y >= x0 && y < x0+side {
				img.SetRGBA(x, y, skinTone)
			} else {
				img.SetRGBA(x, y, darkBG)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that has not been started", t, func() {
		svc := service.New()

		Convey("When it is used", func() {
			_, _, detErr := svc.DetectFace(context.Background(), nil, "committed")
			_, _, anErr := svc.Analyze(context.Background(), nil, model.Hints{})

			Convey("Then both operations should refuse", func() {
				So(detErr, ShouldEqual, service.ErrNotStarted)
				So(anErr, ShouldEqual, service.ErrNotStarted)
			})
		})
	})

	Convey("Given a started service", t, func() {
		svc := startService(t)

		Convey("When Start is called again", func() {
			Convey("Then it should be a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})

		Convey("When stats are requested", func() {
			stats := svc.GetStats()

			Convey("Then they should describe the running service", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["catalog_products"], ShouldBeGreaterThan, 0)
				So(stats["similarity_enabled"], ShouldBeFalse)
			})
		})
	})
}

func TestDetectFace(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t)
		ctx := context.Background()

		Convey("When the payload is not an image", func() {
			_, _, err := svc.DetectFace(ctx, []byte("not an image"), "committed")

			Convey("Then it should fail with the invalid-image error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, model.ErrInvalidImageFormat.Error())
			})
		})

		Convey("When a centered face fills 40% of the frame", func() {
			det, guidance, err := svc.DetectFace(ctx, facePNG(t, 200, 0.40), "committed")

			Convey("Then the detection should clear the gate with no guidance", func() {
				So(err, ShouldBeNil)
				So(det.Confidence, ShouldBeGreaterThanOrEqualTo, 0.9)
				So(guidance, ShouldBeEmpty)
			})
		})

		Convey("When the face is too small for the gate", func() {
			det, guidance, err := svc.DetectFace(ctx, facePNG(t, 200, 0.05), "preview")

			Convey("Then guidance should accompany the below-gate detection", func() {
				So(err, ShouldBeNil)
				So(det.Confidence, ShouldBeLessThan, 0.9)
				So(guidance, ShouldNotBeEmpty)
			})
		})
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given a started service without a reference pack", t, func() {
		svc := startService(t)
		ctx := context.Background()

		Convey("When a clear, centered face is analyzed", func() {
			result, recs, err := svc.Analyze(ctx, facePNG(t, 200, 0.40), model.Hints{})

			Convey("Then the analysis should complete with reduced confidence", func() {
				So(err, ShouldBeNil)
				So(result.ID, ShouldNotBeEmpty)
				So(result.ReducedConfidence, ShouldBeTrue)
				So(result.SimilarCases, ShouldBeEmpty)
			})

			Convey("Then healthy skin should score in the maintenance band", func() {
				So(err, ShouldBeNil)
				So(result.HealthScore, ShouldBeGreaterThanOrEqualTo, 80)
				So(result.HealthScore, ShouldBeLessThanOrEqualTo, 100)
				So(result.PrimaryConcerns, ShouldBeEmpty)
			})

			Convey("Then every condition should be reported", func() {
				So(err, ShouldBeNil)
				So(len(result.Conditions), ShouldEqual, len(model.ConditionNames()))
			})

			Convey("Then a full recommendation list should come back", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 6)
			})
		})

		Convey("When the image has no face", func() {
			blank := facePNG(t, 100, 0)
			_, _, err := svc.Analyze(ctx, blank, model.Hints{})

			Convey("Then the structured no-face error should surface", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, model.ErrNoFaceDetected.Error())
			})
		})

		Convey("When the face cannot clear the gate", func() {
			_, _, err := svc.Analyze(ctx, facePNG(t, 200, 0.05), model.Hints{})

			Convey("Then the error should carry guidance", func() {
				So(err, ShouldNotBeNil)
				var lowConf *service.LowConfidenceError
				So(errors.As(err, &lowConf), ShouldBeTrue)
				So(lowConf.Guidance, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a service with a seeded reference pack", t, func() {
		dir := t.TempDir()
		packPath := filepath.Join(dir, "refpack.json")
		writeReferencePack(t, packPath)

		svc := startService(t, service.WithReferencePackPath(packPath))

		Convey("When a face is analyzed", func() {
			result, _, err := svc.Analyze(context.Background(), facePNG(t, 200, 0.40), model.Hints{})

			Convey("Then the analysis should be grounded at full confidence", func() {
				So(err, ShouldBeNil)
				So(result.ReducedConfidence, ShouldBeFalse)
				So(result.SimilarCases, ShouldNotBeEmpty)
				So(result.SimilarCases[0].Label, ShouldNotBeEmpty)
			})
		})
	})
}

// writeReferencePack extracts a real embedding and persists it as a
// one-case pack so searches are dimension-compatible.
func writeReferencePack(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			img.SetRGBA(x, y, skinTone)
		}
	}
	emb, err := feature.New().Extract(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	pack := map[string]interface{}{
		"cases": []map[string]interface{}{
			{"label": "clear skin reference", "note": "seeded", "embedding": emb},
		},
	}
	data, err := json.Marshal(pack)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}
