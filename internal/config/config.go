// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of analysis pool workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the analysis pool submission buffer.
	QueueSize int `koanf:"queue_size"`

	// DetectionThreshold gates committed-mode analysis on face confidence.
	DetectionThreshold float64 `koanf:"detection_threshold"`

	// MinFaceAreaRatio filters out candidate regions smaller than this
	// fraction of the frame.
	MinFaceAreaRatio float64 `koanf:"min_face_area_ratio"`

	// StageTimeoutMS bounds each pipeline stage's execution budget.
	StageTimeoutMS int `koanf:"stage_timeout_ms"`

	// ReferencePackPath points at the reference embedding pack (JSON).
	// Empty or missing file degrades similarity grounding.
	ReferencePackPath string `koanf:"reference_pack_path"`

	// CatalogPath points at the product catalog (YAML). Empty or missing
	// file falls back to the built-in catalog.
	CatalogPath string `koanf:"catalog_path"`

	// SimilarityTopK sets how many reference matches accompany an analysis.
	SimilarityTopK int `koanf:"similarity_top_k"`

	// RecommendationCount fixes the size of a recommendation set.
	RecommendationCount int `koanf:"recommendation_count"`

	// CategoryCap limits products per category before backfill.
	CategoryCap int `koanf:"category_cap"`

	// MaxImageBytes caps accepted encoded image payloads.
	MaxImageBytes int `koanf:"max_image_bytes"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		WorkerCount:         runtime.NumCPU() * 2,
		QueueSize:           256,
		DetectionThreshold:  0.9,
		MinFaceAreaRatio:    0.02,
		StageTimeoutMS:      2000,
		ReferencePackPath:   "",
		CatalogPath:         "",
		SimilarityTopK:      5,
		RecommendationCount: 6,
		CategoryCap:         2,
		MaxImageBytes:       8 << 20,
	}
	return c
}
