// Package service wires the analysis pipeline together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skinsight/engine/internal/adapters/assets"
	workerpool "github.com/skinsight/engine/internal/adapters/pool"
	"github.com/skinsight/engine/internal/domain/condition"
	"github.com/skinsight/engine/internal/domain/detect"
	"github.com/skinsight/engine/internal/domain/feature"
	"github.com/skinsight/engine/internal/domain/health"
	"github.com/skinsight/engine/internal/domain/imaging"
	"github.com/skinsight/engine/internal/domain/model"
	"github.com/skinsight/engine/internal/domain/recommend"
	"github.com/skinsight/engine/pkg/logger"
	"github.com/skinsight/engine/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultDetectionThreshold = 0.9
	defaultStageTimeout       = 2 * time.Second
	defaultQueueSize          = 256

	// reducedConfidenceFactor scales the overall confidence when the
	// analysis runs without similarity grounding.
	reducedConfidenceFactor = 0.85
)

// Service implements the analysis pipeline behind the API.
type Service struct {
	mu sync.RWMutex

	// Core components
	assets     *assets.Context
	detector   *detect.Detector
	extractor  *feature.Extractor
	analyzers  []condition.Analyzer
	aggregator *health.Aggregator
	engine     *recommend.Engine
	pool       *workerpool.Pool

	// Configuration
	workerCount        int
	queueSize          int
	detectionThreshold float64
	minFaceAreaRatio   float64
	stageTimeout       time.Duration
	similarityTopK     int
	recommendationN    int
	categoryCap        int
	referencePackPath  string
	catalogPath        string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the analysis submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDetectionThreshold sets the confidence gate for committed analysis.
func WithDetectionThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 && t <= 1 {
			s.detectionThreshold = t
		}
	}
}

// WithMinFaceAreaRatio sets the smallest face worth detecting.
func WithMinFaceAreaRatio(r float64) Option {
	return func(s *Service) {
		if r > 0 && r < 1 {
			s.minFaceAreaRatio = r
		}
	}
}

// WithStageTimeout sets the per-stage execution budget.
func WithStageTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.stageTimeout = d
		}
	}
}

// WithReferencePackPath points the service at the reference-embedding pack.
func WithReferencePackPath(path string) Option {
	return func(s *Service) {
		s.referencePackPath = path
	}
}

// WithCatalogPath points the service at the product catalog file.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithSimilarityTopK sets how many reference cases ground an analysis.
func WithSimilarityTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.similarityTopK = k
		}
	}
}

// WithRecommendationCount sets how many products an analysis recommends.
func WithRecommendationCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recommendationN = n
		}
	}
}

// WithCategoryCap sets the per-category recommendation bound.
func WithCategoryCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.categoryCap = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU() * 2,
		queueSize:          defaultQueueSize,
		detectionThreshold: defaultDetectionThreshold,
		stageTimeout:       defaultStageTimeout,
		similarityTopK:     0, // resolved to the index default at search time
		recommendationN:    recommend.DefaultTarget,
		categoryCap:        recommend.DefaultCategoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the startup assets and builds the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analysis service...")

	ac, err := assets.Load(ctx, s.logger.Named("assets"), s.referencePackPath, s.catalogPath)
	if err != nil {
		return fmt.Errorf("loading assets: %w", err)
	}
	s.assets = ac

	detectOpts := []detect.Option{}
	if s.minFaceAreaRatio > 0 {
		detectOpts = append(detectOpts, detect.WithMinAreaRatio(s.minFaceAreaRatio))
	}
	s.detector = detect.New(detectOpts...)
	s.extractor = feature.New()
	s.analyzers = condition.Family()
	s.aggregator = health.New()

	s.engine, err = recommend.New(ac.Catalog,
		recommend.WithTarget(s.recommendationN),
		recommend.WithCategoryCap(s.categoryCap),
	)
	if err != nil {
		return fmt.Errorf("building recommendation engine: %w", err)
	}

	s.pool = workerpool.New(
		workerpool.WithWorkers(s.workerCount),
		workerpool.WithQueueSize(s.queueSize),
		workerpool.WithLogger(s.logger.Named("pool")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Float64("detection_threshold", s.detectionThreshold),
		logger.Bool("similarity_enabled", ac.Index != nil),
		logger.Int("catalog_products", len(ac.Catalog)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")
	if s.pool != nil {
		if err := s.pool.Stop(ctx); err != nil {
			s.logger.Warn(ctx, "pool did not stop cleanly", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// DetectFace runs face detection only. It powers the live preview loop and
// the pre-analysis check; guidance is non-empty when the detection falls
// below the confidence gate.
func (s *Service) DetectFace(ctx context.Context, data []byte, mode string) (model.Detection, string, error) {
	if !s.isStarted() {
		return model.Detection{}, "", ErrNotStarted
	}

	img, err := imaging.Decode(data)
	if err != nil {
		metrics.RecordDetection(mode, "invalid_image")
		return model.Detection{}, "", err
	}

	m := detect.ModeCommitted
	if mode == string(detect.ModePreview) {
		m = detect.ModePreview
	}

	det, err := s.detector.Detect(ctx, img, m)
	if err != nil {
		metrics.RecordDetection(string(m), "no_face")
		return model.Detection{}, "", err
	}
	metrics.RecordDetectionConfidence(det.Confidence)

	if det.Confidence < s.detectionThreshold {
		metrics.RecordDetection(string(m), "low_confidence")
		return det, detect.Guidance(det), nil
	}
	metrics.RecordDetection(string(m), "ok")
	return det, "", nil
}

// Analyze runs the full pipeline for one committed image through the
// bounded pool. It returns the analysis plus ranked recommendations.
func (s *Service) Analyze(ctx context.Context, data []byte, hints model.Hints) (*model.AnalysisResult, []model.Recommendation, error) {
	if !s.isStarted() {
		return nil, nil, ErrNotStarted
	}

	type outcome struct {
		result *model.AnalysisResult
		recs   []model.Recommendation
		err    error
	}
	done := make(chan outcome, 1)

	if err := s.pool.Submit(ctx, func(jobCtx context.Context) {
		result, recs, err := s.runAnalysis(jobCtx, data, hints)
		done <- outcome{result: result, recs: recs, err: err}
	}); err != nil {
		metrics.RecordAnalysis("rejected")
		return nil, nil, err
	}

	select {
	case out := <-done:
		return out.result, out.recs, out.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// runAnalysis executes the pipeline stages on a pool worker.
func (s *Service) runAnalysis(ctx context.Context, data []byte, hints model.Hints) (*model.AnalysisResult, []model.Recommendation, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		metrics.RecordAnalysis("invalid_image")
		return nil, nil, err
	}

	// Detection gates everything downstream.
	var det model.Detection
	err = s.stage(ctx, "detect", func(sc context.Context) error {
		var detectErr error
		det, detectErr = s.detector.Detect(sc, img, detect.ModeCommitted)
		return detectErr
	})
	if err != nil {
		metrics.RecordAnalysis("no_face")
		return nil, nil, err
	}
	metrics.RecordDetectionConfidence(det.Confidence)
	if det.Confidence < s.detectionThreshold {
		metrics.RecordAnalysis("low_confidence")
		return nil, nil, &LowConfidenceError{Detection: det, Guidance: detect.Guidance(det)}
	}

	roi := imaging.Crop(img, det.Bounds)
	planes := imaging.ToPlanes(roi)

	// Condition family shares one stage budget.
	conditions := make(map[string]model.ConditionResult, len(s.analyzers))
	err = s.stage(ctx, "conditions", func(sc context.Context) error {
		for _, a := range s.analyzers {
			res, analyzeErr := a.Analyze(sc, planes)
			if analyzeErr != nil {
				return fmt.Errorf("analyzing %s: %w", a.Name(), analyzeErr)
			}
			conditions[a.Name()] = res
			if res.Detected {
				metrics.RecordConditionDetected(a.Name(), string(res.Severity))
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordAnalysis("error")
		return nil, nil, err
	}

	var embedding []float64
	err = s.stage(ctx, "embedding", func(sc context.Context) error {
		var extractErr error
		embedding, extractErr = s.extractor.Extract(sc, roi)
		return extractErr
	})
	if err != nil {
		metrics.RecordAnalysis("error")
		return nil, nil, err
	}

	// Similarity grounding is optional: any failure degrades the analysis
	// instead of aborting it.
	var similar []model.SimilarCase
	degraded := false
	searchErr := s.stage(ctx, "similarity", func(sc context.Context) error {
		var innerErr error
		similar, innerErr = s.assets.Index.Search(sc, embedding, s.similarityTopK)
		return innerErr
	})
	if searchErr != nil {
		degraded = true
		similar = nil
		metrics.RecordSimilarityDegraded()
		if !errors.Is(searchErr, model.ErrSimilarityUnavailable) {
			s.logger.Warn(ctx, "similarity search failed, continuing ungrounded", logger.Error(searchErr))
		}
	}

	score := s.aggregator.Score(conditions)
	metrics.RecordHealthScore(score)

	recs := s.engine.Recommend(conditions, score, hints)
	for _, r := range recs {
		metrics.RecordRecommendation(string(r.Category))
	}

	confidence := overallConfidence(det, conditions)
	if degraded {
		confidence *= reducedConfidenceFactor
	}

	result := &model.AnalysisResult{
		ID:                uuid.NewString(),
		HealthScore:       score,
		Conditions:        conditions,
		PrimaryConcerns:   s.aggregator.PrimaryConcerns(conditions),
		SimilarCases:      similar,
		Confidence:        confidence,
		ReducedConfidence: degraded,
		Timestamp:         time.Now().UTC(),
	}
	metrics.RecordAnalysis("success")
	return result, recs, nil
}

// stage runs one pipeline stage under its execution budget and records its
// latency. A budget overrun surfaces as ErrStageTimeout; the caller's own
// cancellation passes through untouched.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	start := time.Now()
	err := fn(stageCtx)
	metrics.RecordStageLatency(name, float64(time.Since(start).Milliseconds()))

	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		metrics.RecordErrorByComponent(name, "timeout")
		return fmt.Errorf("%w: %s stage exceeded %s", model.ErrStageTimeout, name, s.stageTimeout)
	}
	return err
}

// overallConfidence blends the detection confidence with the mean analyzer
// confidence.
func overallConfidence(det model.Detection, conditions map[string]model.ConditionResult) float64 {
	if len(conditions) == 0 {
		return det.Confidence
	}
	var sum float64
	for _, res := range conditions {
		sum += res.Confidence
	}
	return (det.Confidence + sum/float64(len(conditions))) / 2
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"worker_count":        s.workerCount,
		"queue_size":          s.queueSize,
		"detection_threshold": s.detectionThreshold,
	}
	if s.started {
		stats["queue_depth"] = s.pool.QueueDepth()
		stats["catalog_products"] = len(s.assets.Catalog)
		stats["reference_cases"] = s.assets.Index.Len()
		stats["similarity_enabled"] = s.assets.Index != nil
		metrics.UpdatePoolQueueDepth(s.pool.QueueDepth())
	}
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
