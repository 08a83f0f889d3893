// Package probe is an end-to-end verification client for a running
// analysis service. It generates synthetic face images, drives the public
// endpoints, and checks the pipeline's contracts from the outside.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skinsight/engine/pkg/logger"
)

// runner carries the state of one probe run.
type runner struct {
	cfg    *Config
	client *httpClient
	stats  *Stats
	log    logger.Logger
}

// Run executes the complete probe against a running service.
func Run(ctx context.Context, cfg *Config) error {
	r := &runner{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		stats:  &Stats{StartTime: time.Now()},
		log:    logger.Get().Named("probe"),
	}

	r.log.Info(ctx, "starting analysis service probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("pollInterval", cfg.PollInterval.String()),
		logger.Int("pollCount", cfg.PollCount))

	if cfg.SeedPackPath != "" {
		if err := seedReferencePack(ctx, cfg.SeedPackPath); err != nil {
			return fmt.Errorf("seeding reference pack: %w", err)
		}
		r.log.Info(ctx, "reference pack seeded", logger.String("path", cfg.SeedPackPath))
	}

	if err := r.checkServiceHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := r.verifyDetectionContract(ctx); err != nil {
		return fmt.Errorf("detection verification failed: %w", err)
	}
	if err := r.runPreviewLoop(ctx); err != nil {
		return fmt.Errorf("preview loop failed: %w", err)
	}
	if err := r.verifyAnalysisContract(ctx); err != nil {
		return fmt.Errorf("analysis verification failed: %w", err)
	}
	if err := r.fetchStats(ctx); err != nil {
		return fmt.Errorf("stats retrieval failed: %w", err)
	}

	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)

	r.log.Info(ctx, "probe finished",
		logger.Int("checksRun", r.stats.ChecksRun),
		logger.Int("checksPassed", r.stats.ChecksPassed),
		logger.Int("checksFailed", r.stats.ChecksFailed),
		logger.String("duration", r.stats.Duration.String()))

	if r.stats.ChecksFailed > 0 {
		return fmt.Errorf("%d of %d checks failed", r.stats.ChecksFailed, r.stats.ChecksRun)
	}
	return nil
}

// check records one verification outcome.
func (r *runner) check(ctx context.Context, name string, ok bool, detail string) {
	r.stats.ChecksRun++
	if ok {
		r.stats.ChecksPassed++
		if r.cfg.Verbose {
			r.log.Info(ctx, "check passed", logger.String("check", name))
		}
		return
	}
	r.stats.ChecksFailed++
	r.log.Error(ctx, "check failed",
		logger.String("check", name),
		logger.String("detail", detail))
}

// checkServiceHealth verifies the service answers its metrics scrape.
func (r *runner) checkServiceHealth(ctx context.Context) error {
	status, _, err := r.client.get(ctx, r.cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	r.log.Info(ctx, "service is healthy")
	return nil
}

// runPreviewLoop polls the face-check endpoint the way a capture client
// does: fixed interval, never more than one outstanding request.
func (r *runner) runPreviewLoop(ctx context.Context) error {
	payload, err := renderFace(faceSpec{frame: 320, faceRatio: 0.35})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for i := 0; i < r.cfg.PollCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		status, body, err := r.client.post(ctx, r.cfg.BaseURL+"/v1/face-check",
			map[string]string{"image": payload, "mode": "preview"})
		if err != nil {
			return err
		}
		var resp faceCheckResponse
		if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil {
			return fmt.Errorf("parsing preview response: %w", unmarshalErr)
		}
		r.check(ctx, "preview poll answers 200", status == http.StatusOK,
			fmt.Sprintf("poll %d returned status %d", i, status))
		r.check(ctx, "preview detection is stable", resp.Detection.Confidence > 0,
			fmt.Sprintf("poll %d returned zero confidence", i))
	}
	r.log.Info(ctx, "preview loop completed", logger.Int("polls", r.cfg.PollCount))
	return nil
}

// fetchStats retrieves and logs the service statistics.
func (r *runner) fetchStats(ctx context.Context) error {
	status, body, err := r.client.get(ctx, r.cfg.BaseURL+"/stats")
	if err != nil {
		return err
	}
	r.check(ctx, "stats endpoint answers 200", status == http.StatusOK,
		fmt.Sprintf("stats returned status %d", status))

	var stats map[string]interface{}
	if err := json.Unmarshal(body, &stats); err != nil {
		return fmt.Errorf("parsing stats: %w", err)
	}
	r.log.Info(ctx, "service stats", logger.Any("stats", stats))
	return nil
}
