package similarity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skinsight/engine/internal/domain/model"
	"github.com/skinsight/engine/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func unitAxis(dim, axis int) []float64 {
	v := make([]float64, dim)
	v[axis] = 1
	return v
}

func TestIndex(t *testing.T) {
	Convey("Given an index over three orthogonal references", t, func() {
		embeddings := [][]float64{
			unitAxis(8, 0),
			unitAxis(8, 1),
			unitAxis(8, 2),
		}
		meta := []similarity.Meta{
			{Label: "mild-acne-cluster"},
			{Label: "clear-skin-cluster"},
			{Label: "rosacea-cluster", Note: "reference set B"},
		}
		ix, err := similarity.NewIndex(embeddings, meta)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When searching with a query aligned to the second row", func() {
			matches, err := ix.Search(ctx, unitAxis(8, 1), 2)

			Convey("Then the best match should be that row with similarity 1", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 2)
				So(matches[0].Label, ShouldEqual, "clear-skin-cluster")
				So(matches[0].Similarity, ShouldAlmostEqual, 1.0, 1e-9)
			})

			Convey("Then results should be sorted descending", func() {
				So(err, ShouldBeNil)
				So(matches[0].Similarity, ShouldBeGreaterThanOrEqualTo, matches[1].Similarity)
			})
		})

		Convey("When k exceeds the reference count", func() {
			matches, err := ix.Search(ctx, unitAxis(8, 0), 10)

			Convey("Then all references should come back", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 3)
			})
		})

		Convey("When k is not positive", func() {
			matches, err := ix.Search(ctx, unitAxis(8, 0), 0)

			Convey("Then the default top-k should apply", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 3)
			})
		})

		Convey("When the query dimensionality is wrong", func() {
			_, err := ix.Search(ctx, unitAxis(4, 0), 2)

			Convey("Then the unavailable sentinel should classify the error", func() {
				So(errors.Is(err, model.ErrSimilarityUnavailable), ShouldBeTrue)
			})
		})

		Convey("Then Len should report the reference count", func() {
			So(ix.Len(), ShouldEqual, 3)
		})
	})

	Convey("Given no index at all", t, func() {
		var ix *similarity.Index

		Convey("When searching", func() {
			_, err := ix.Search(context.Background(), unitAxis(8, 0), 5)

			Convey("Then it should degrade with the sentinel, never panic", func() {
				So(errors.Is(err, model.ErrSimilarityUnavailable), ShouldBeTrue)
			})
		})

		Convey("Then Len should be zero", func() {
			So(ix.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given invalid construction inputs", t, func() {
		Convey("When the reference set is empty", func() {
			_, err := similarity.NewIndex(nil, nil)
			So(errors.Is(err, model.ErrSimilarityUnavailable), ShouldBeTrue)
		})

		Convey("When metadata does not parallel the embeddings", func() {
			_, err := similarity.NewIndex([][]float64{unitAxis(8, 0)}, nil)
			So(errors.Is(err, model.ErrSimilarityUnavailable), ShouldBeTrue)
		})

		Convey("When rows have ragged dimensions", func() {
			_, err := similarity.NewIndex(
				[][]float64{unitAxis(8, 0), unitAxis(4, 0)},
				[]similarity.Meta{{Label: "a"}, {Label: "b"}},
			)
			So(errors.Is(err, model.ErrSimilarityUnavailable), ShouldBeTrue)
		})
	})
}
