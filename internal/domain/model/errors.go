package model

import "errors"

// Pipeline error taxonomy. Stage-fatal errors abort the pipeline; the
// non-fatal ones degrade the result instead and are listed here so callers
// can classify with errors.Is.
var (
	// ErrNoFaceDetected is returned when no candidate region passes the
	// minimum-size filter. Stage-fatal.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrLowConfidenceDetection is returned when a face was found but its
	// confidence is below the committed-mode gate. Stage-fatal, carries
	// guidance at the boundary.
	ErrLowConfidenceDetection = errors.New("low confidence detection")

	// ErrInvalidImageFormat is returned for undecodable payloads. Stage-fatal.
	ErrInvalidImageFormat = errors.New("invalid image format")

	// ErrFeatureExtraction is returned when the extractor cannot produce an
	// embedding from the face region. Stage-fatal.
	ErrFeatureExtraction = errors.New("feature extraction failed")

	// ErrSimilarityUnavailable marks an absent or empty reference index.
	// Non-fatal: the pipeline proceeds with reduced confidence.
	ErrSimilarityUnavailable = errors.New("similarity index unavailable")

	// ErrRecommendation marks a recommendation engine failure. Non-fatal:
	// callers fall back to generic preventive recommendations.
	ErrRecommendation = errors.New("recommendation engine failed")

	// ErrStageTimeout is returned when a pipeline stage exceeds its
	// execution budget.
	ErrStageTimeout = errors.New("stage exceeded execution budget")
)
