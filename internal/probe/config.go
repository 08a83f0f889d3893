package probe

import "time"

// Config holds configuration for one probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	PollInterval time.Duration // Delay between preview polls
	PollCount    int           // Number of preview polls to issue
	Timeout      time.Duration // HTTP request timeout
	SeedPackPath string        // Where to write the reference pack, empty to skip
	LogFile      string        // Log file for probe output
	Verbose      bool          // Enable verbose logging
}

// Stats holds probe statistics.
type Stats struct {
	ChecksRun    int
	ChecksPassed int
	ChecksFailed int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Response mirrors of the API contract. The probe parses only the fields it
// verifies.

type detectionPayload struct {
	Bounds struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"bounds"`
	Confidence  float64 `json:"confidence"`
	FrameWidth  int     `json:"frame_width"`
	FrameHeight int     `json:"frame_height"`
}

type faceCheckResponse struct {
	Status    string           `json:"status"`
	Detection detectionPayload `json:"detection"`
	Guidance  string           `json:"guidance"`
}

type conditionPayload struct {
	Detected bool    `json:"detected"`
	Severity string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

type analysisPayload struct {
	ID                string                      `json:"id"`
	HealthScore       float64                     `json:"health_score"`
	Conditions        map[string]conditionPayload `json:"conditions"`
	PrimaryConcerns   []string                    `json:"primary_concerns"`
	ReducedConfidence bool                        `json:"reduced_confidence"`
	Confidence        float64                     `json:"confidence"`
}

type recommendationPayload struct {
	ProductID   string  `json:"product_id"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	MatchReason string  `json:"match_reason"`
}

type analyzeResponse struct {
	Analysis        analysisPayload         `json:"analysis"`
	Recommendations []recommendationPayload `json:"recommendations"`
}

type errorPayload struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Guidance string `json:"guidance"`
}
