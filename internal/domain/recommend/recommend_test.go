package recommend_test

import (
	"fmt"
	"testing"

	"github.com/skinsight/engine/internal/domain/model"
	"github.com/skinsight/engine/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

// testCatalog spans every category with a couple of condition-targeting
// entries per active category.
func testCatalog() []model.Product {
	return []model.Product{
		{ID: "cl-01", Name: "Gentle Gel Cleanser", Category: model.CategoryCleanser, Tags: []string{"acne"}, Price: 14, BaseWeight: 10},
		{ID: "cl-02", Name: "Cream Cleanser", Category: model.CategoryCleanser, Tags: []string{"redness"}, Price: 16, BaseWeight: 9},
		{ID: "tr-01", Name: "Benzoyl Spot Treatment", Category: model.CategoryTreatment, Tags: []string{"acne"}, Price: 22, BaseWeight: 12},
		{ID: "tr-02", Name: "Azelaic Acid Treatment", Category: model.CategoryTreatment, Tags: []string{"redness", "pigmentation"}, Price: 28, BaseWeight: 11},
		{ID: "tr-03", Name: "Adapalene Gel", Category: model.CategoryTreatment, Tags: []string{"acne", "texture"}, Price: 30, BaseWeight: 11},
		{ID: "se-01", Name: "Niacinamide Serum", Category: model.CategorySerum, Tags: []string{"pores", "redness"}, Price: 18, BaseWeight: 12},
		{ID: "se-02", Name: "Vitamin C Serum", Category: model.CategorySerum, Tags: []string{"dark_spots", "pigmentation"}, Price: 32, BaseWeight: 12},
		{ID: "se-03", Name: "Retinol Serum", Category: model.CategorySerum, Tags: []string{"wrinkles", "texture"}, Price: 36, BaseWeight: 11},
		{ID: "mo-01", Name: "Barrier Moisturizer", Category: model.CategoryMoisturizer, Tags: []string{"redness"}, Price: 20, BaseWeight: 13},
		{ID: "su-01", Name: "Daily SPF 50", Category: model.CategorySunscreen, Tags: []string{"dark_spots", "pigmentation"}, Price: 19, BaseWeight: 14},
		{ID: "ma-01", Name: "Clay Mask", Category: model.CategoryMask, Tags: []string{"pores", "acne"}, Price: 15, BaseWeight: 8},
		{ID: "to-01", Name: "Soothing Toner", Category: model.CategoryToner, Tags: []string{"redness"}, Price: 13, BaseWeight: 8},
		{ID: "ex-01", Name: "BHA Exfoliant", Category: model.CategoryExfoliant, Tags: []string{"texture", "pores", "acne"}, Price: 24, BaseWeight: 10},
	}
}

func clearSkin() map[string]model.ConditionResult {
	m := make(map[string]model.ConditionResult, 7)
	for _, name := range model.ConditionNames() {
		m[name] = model.ConditionResult{Detected: false, Severity: model.SeverityNone}
	}
	return m
}

func TestNew(t *testing.T) {
	Convey("Given an empty catalog", t, func() {
		_, err := recommend.New(nil)

		Convey("Then construction should fail with the domain error", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "catalog")
		})
	})
}

func TestRecommend(t *testing.T) {
	Convey("Given an engine over the test catalog", t, func() {
		eng, err := recommend.New(testCatalog())
		So(err, ShouldBeNil)

		Convey("When the skin is clear and the score is high", func() {
			recs := eng.Recommend(clearSkin(), 95, model.Hints{})

			Convey("Then a full maintenance routine should still come back", func() {
				So(recs, ShouldNotBeEmpty)
				So(len(recs), ShouldEqual, recommend.DefaultTarget)
				for _, r := range recs {
					So(r.MatchReason, ShouldNotBeEmpty)
				}
			})

			Convey("Then protection categories should lead the ranking", func() {
				So(recs[0].Category, ShouldBeIn, []model.Category{
					model.CategorySunscreen, model.CategoryMoisturizer,
				})
			})
		})

		Convey("When severe acne dominates the findings", func() {
			conditions := clearSkin()
			conditions[model.ConditionAcne] = model.ConditionResult{
				Detected: true, Severity: model.SeveritySevere, Confidence: 0.9,
			}
			recs := eng.Recommend(conditions, 55, model.Hints{})

			Convey("Then acne-targeting products should rank first with reasons", func() {
				So(recs[0].MatchReason, ShouldContainSubstring, "acne")
				top := make([]string, 0, 3)
				for _, r := range recs[:3] {
					top = append(top, r.ProductID)
				}
				So(top, ShouldContain, "tr-01")
			})

			Convey("Then no category should exceed the cap", func() {
				perCategory := make(map[model.Category]int)
				for _, r := range recs {
					perCategory[r.Category]++
				}
				for cat, n := range perCategory {
					So(n, ShouldBeLessThanOrEqualTo, recommend.DefaultCategoryCap)
					So(cat, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When the ranking is produced", func() {
			recs := eng.Recommend(clearSkin(), 40, model.Hints{})

			Convey("Then scores should be non-increasing", func() {
				for i := 1; i < len(recs); i++ {
					So(recs[i].Score, ShouldBeLessThanOrEqualTo, recs[i-1].Score)
				}
			})
		})

		Convey("When an age bracket hints at mature skin", func() {
			conditions := clearSkin()
			conditions[model.ConditionWrinkles] = model.ConditionResult{
				Detected: true, Severity: model.SeverityMild, Confidence: 0.7,
			}
			plain := eng.Recommend(conditions, 80, model.Hints{})
			mature := eng.Recommend(conditions, 80, model.Hints{AgeBracket: "50s"})

			Convey("Then wrinkle-targeting products should score higher than without the hint", func() {
				So(scoreOf(mature, "se-03"), ShouldBeGreaterThan, scoreOf(plain, "se-03"))
			})
		})

		Convey("When a product carries a recognized active for a detected condition", func() {
			catalog := testCatalog()
			catalog = append(catalog, model.Product{
				ID: "to-02", Name: "BHA Toner", Category: model.CategoryToner,
				Ingredients: []string{"Salicylic Acid"}, Price: 17, BaseWeight: 8,
			})
			withActives, err := recommend.New(catalog)
			So(err, ShouldBeNil)

			conditions := clearSkin()
			conditions[model.ConditionAcne] = model.ConditionResult{
				Detected: true, Severity: model.SeverityModerate, Confidence: 0.8,
			}
			activeRecs := withActives.Recommend(conditions, 65, model.Hints{})

			Convey("Then the formulation should lift it into the routine with a reason", func() {
				So(scoreOf(activeRecs, "to-02"), ShouldBeGreaterThan, -1)
				for _, r := range activeRecs {
					if r.ProductID == "to-02" {
						So(r.MatchReason, ShouldContainSubstring, "Salicylic Acid")
					}
				}
			})
		})

		Convey("When two analyses are identical", func() {
			conditions := clearSkin()
			conditions[model.ConditionRedness] = model.ConditionResult{
				Detected: true, Severity: model.SeverityModerate, Confidence: 0.8,
			}
			first := eng.Recommend(conditions, 70, model.Hints{})
			second := eng.Recommend(conditions, 70, model.Hints{})

			Convey("Then the output should be byte-for-byte deterministic", func() {
				So(fmt.Sprint(first), ShouldEqual, fmt.Sprint(second))
			})
		})
	})

	Convey("Given a catalog narrower than the target", t, func() {
		narrow := []model.Product{
			{ID: "se-01", Name: "Serum A", Category: model.CategorySerum, Price: 20, BaseWeight: 10},
			{ID: "se-02", Name: "Serum B", Category: model.CategorySerum, Price: 22, BaseWeight: 9},
			{ID: "se-03", Name: "Serum C", Category: model.CategorySerum, Price: 24, BaseWeight: 8},
			{ID: "se-04", Name: "Serum D", Category: model.CategorySerum, Price: 26, BaseWeight: 7},
		}
		eng, err := recommend.New(narrow, recommend.WithTarget(4))
		So(err, ShouldBeNil)

		Convey("When the cap alone cannot satisfy the target", func() {
			recs := eng.Recommend(clearSkin(), 85, model.Hints{})

			Convey("Then backfill should exceed the cap rather than come up short", func() {
				So(len(recs), ShouldEqual, 4)
			})
		})
	})
}

func scoreOf(recs []model.Recommendation, id string) float64 {
	for _, r := range recs {
		if r.ProductID == id {
			return r.Score
		}
	}
	return -1
}
