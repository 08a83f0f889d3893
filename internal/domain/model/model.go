// Package model contains domain models passed between pipeline stages.
//
// Callers of the external boundary use a variety of field names for the same
// concepts; the HTTP layer normalizes all of them into these shapes and the
// core pipeline never sees the ambiguity.
package model

import "time"

// Severity is the categorical bucket derived from a continuous detection
// measure.
type Severity string

// Severity bands, ordered none < mild < moderate < severe.
const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Rank returns the ordinal position of a severity band, with none at 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 0
	}
}

// Condition names shared by the analyzer family, the aggregator, and the
// recommendation engine.
const (
	ConditionAcne         = "acne"
	ConditionRedness      = "redness"
	ConditionDarkSpots    = "dark_spots"
	ConditionTexture      = "texture"
	ConditionPores        = "pores"
	ConditionWrinkles     = "wrinkles"
	ConditionPigmentation = "pigmentation"
)

// ConditionNames lists all analyzer names in a stable order.
func ConditionNames() []string {
	return []string{
		ConditionAcne,
		ConditionRedness,
		ConditionDarkSpots,
		ConditionTexture,
		ConditionPores,
		ConditionWrinkles,
		ConditionPigmentation,
	}
}

// Bounds is a rectangular region in absolute pixel coordinates.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is the single primary face found in a frame. At most one
// detection survives candidate selection.
type Detection struct {
	Bounds      Bounds  `json:"bounds"`
	Confidence  float64 `json:"confidence"`
	FrameWidth  int     `json:"frame_width"`
	FrameHeight int     `json:"frame_height"`
}

// AreaRatio returns the face area as a fraction of the frame area.
func (d Detection) AreaRatio() float64 {
	frame := d.FrameWidth * d.FrameHeight
	if frame == 0 {
		return 0
	}
	return float64(d.Bounds.Width*d.Bounds.Height) / float64(frame)
}

// ConditionResult is the per-condition analyzer output. All fields are
// always populated.
type ConditionResult struct {
	Detected    bool     `json:"detected"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
}

// SimilarCase is one reference-corpus match used for explanatory grounding.
type SimilarCase struct {
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
	Note       string  `json:"note,omitempty"`
}

// AnalysisResult is the full pipeline output for one image.
type AnalysisResult struct {
	ID                string                     `json:"id"`
	HealthScore       float64                    `json:"health_score"`
	Conditions        map[string]ConditionResult `json:"conditions"`
	PrimaryConcerns   []string                   `json:"primary_concerns"`
	SimilarCases      []SimilarCase              `json:"similar_cases,omitempty"`
	Confidence        float64                    `json:"confidence"`
	ReducedConfidence bool                       `json:"reduced_confidence"`
	Timestamp         time.Time                  `json:"timestamp"`
}

// Category classifies catalog products.
type Category string

// Product categories known to the recommendation engine.
const (
	CategoryCleanser    Category = "cleanser"
	CategoryTreatment   Category = "treatment"
	CategorySerum       Category = "serum"
	CategoryMoisturizer Category = "moisturizer"
	CategorySunscreen   Category = "sunscreen"
	CategoryMask        Category = "mask"
	CategoryToner       Category = "toner"
	CategoryExfoliant   Category = "exfoliant"
)

// Product is one catalog entry. The catalog is read-only after startup.
type Product struct {
	ID          string   `json:"id" koanf:"id"`
	Name        string   `json:"name" koanf:"name"`
	Category    Category `json:"category" koanf:"category"`
	Tags        []string `json:"tags" koanf:"tags"`
	Ingredients []string `json:"ingredients" koanf:"ingredients"`
	Price       float64  `json:"price" koanf:"price"`
	BaseWeight  float64  `json:"base_weight" koanf:"base_weight"`
}

// Recommendation is one ranked product with the reasoning that produced it.
type Recommendation struct {
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Score       float64  `json:"score"`
	MatchReason string   `json:"match_reason"`
}

// Hints carries optional demographic signals. They are secondary and never
// required for an analysis.
type Hints struct {
	AgeBracket string `json:"age_bracket,omitempty"`
	Ethnicity  string `json:"ethnicity,omitempty"`
}
