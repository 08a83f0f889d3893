// Package condition implements the per-condition skin detectors. All seven
// share one contract: derive a binary abnormality mask from localized
// channel statistics, bucket the mask's area fraction into a severity band,
// and derive confidence from area and margin over threshold.
//
// The mask threshold is mean + max(k*stddev, floor). The absolute floor is
// load-bearing: on near-uniform healthy skin the standard deviation
// collapses and a purely relative threshold would flag half the pixels.
// With the floor in place a uniformly lit, texture-free face produces a
// near-zero detected area on every detector.
package condition

import (
	"context"
	"fmt"
	"math"

	"github.com/skinsight/engine/internal/domain/imaging"
	"github.com/skinsight/engine/internal/domain/model"
)

// Analyzer is the shared detector contract.
type Analyzer interface {
	// Name returns the condition name this analyzer detects.
	Name() string

	// Analyze inspects the face-region planes and returns a fully
	// populated result. It never returns a partial ConditionResult.
	Analyze(ctx context.Context, roi *imaging.Planes) (model.ConditionResult, error)
}

// Family returns all analyzers in their stable reporting order.
func Family() []Analyzer {
	return []Analyzer{
		newAcne(),
		newRedness(),
		newDarkSpots(),
		newTexture(),
		newPores(),
		newWrinkles(),
		newPigmentation(),
	}
}

// severityBands maps a mask area fraction to a severity bucket.
type severityBands struct {
	mildAt     float64
	moderateAt float64
	severeAt   float64
}

func (b severityBands) bucket(frac float64) model.Severity {
	switch {
	case frac >= b.severeAt:
		return model.SeveritySevere
	case frac >= b.moderateAt:
		return model.SeverityModerate
	case frac >= b.mildAt:
		return model.SeverityMild
	default:
		return model.SeverityNone
	}
}

// maskStats summarizes one thresholded abnormality mask.
type maskStats struct {
	fraction float64 // flagged pixels / total pixels
	margin   float64 // mean exceedance of flagged pixels over the threshold
	cx, cy   float64 // flagged-pixel centroid, normalized to [0,1]
}

// exceedStats flags pixels whose value exceeds mean + max(k*std, floor).
func exceedStats(plane []float64, w, h int, k, floor float64) maskStats {
	mean, std := imaging.MeanStd(plane)
	threshold := mean + math.Max(k*std, floor)
	return collect(plane, w, h, func(v float64) (bool, float64) {
		return v > threshold, v - threshold
	})
}

// deficitStats flags pixels whose value falls below mean - max(k*std, floor).
func deficitStats(plane []float64, w, h int, k, floor float64) maskStats {
	mean, std := imaging.MeanStd(plane)
	threshold := mean - math.Max(k*std, floor)
	return collect(plane, w, h, func(v float64) (bool, float64) {
		return v < threshold, threshold - v
	})
}

// absoluteStats flags pixels whose value exceeds max(k*std, floor) outright,
// for planes that are already deviations (gradients, Laplacians).
func absoluteStats(plane []float64, w, h int, k, floor float64) maskStats {
	_, std := imaging.MeanStd(plane)
	threshold := math.Max(k*std, floor)
	return collect(plane, w, h, func(v float64) (bool, float64) {
		return v > threshold, v - threshold
	})
}

func collect(plane []float64, w, h int, flag func(float64) (bool, float64)) maskStats {
	if len(plane) == 0 {
		return maskStats{}
	}
	var flagged int
	var exceed, sumX, sumY float64
	for i, v := range plane {
		ok, over := flag(v)
		if !ok {
			continue
		}
		flagged++
		exceed += over
		sumX += float64(i % w)
		sumY += float64(i / w)
	}
	s := maskStats{fraction: float64(flagged) / float64(len(plane))}
	if flagged > 0 {
		s.margin = exceed / float64(flagged)
		s.cx = sumX / float64(flagged) / float64(w)
		s.cy = sumY / float64(flagged) / float64(h)
	}
	return s
}

// confidence derives detection confidence from mask area and threshold
// margin. Both terms are monotone, capped, and keep the result in [0,1].
func confidence(s maskStats, detected bool) float64 {
	if !detected {
		// Confidence that the condition is absent shrinks as the mask
		// creeps toward the mild band.
		return clamp01(1 - s.fraction*4)
	}
	base := 0.55
	area := math.Min(0.30, s.fraction*1.5)
	margin := math.Min(0.15, s.margin/80)
	return clamp01(base + area + margin)
}

// location names the facial zone of the mask centroid.
func location(s maskStats, detected bool) string {
	if !detected {
		return ""
	}
	switch {
	case s.cy < 0.33:
		return "forehead"
	case s.cy >= 0.70:
		return "chin and jawline"
	case s.cx < 0.38:
		return "left cheek"
	case s.cx > 0.62:
		return "right cheek"
	default:
		return "nose and mid-face"
	}
}

// describe builds the per-condition human-readable summary.
func describe(label string, sev model.Severity, s maskStats) string {
	if sev == model.SeverityNone {
		return fmt.Sprintf("no significant %s detected", label)
	}
	return fmt.Sprintf("%s %s affecting about %.0f%% of the analyzed area",
		sev, label, s.fraction*100)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// statAnalyzer is the shared implementation behind every detector: a plane
// derivation plus threshold parameters and severity bands.
type statAnalyzer struct {
	name  string
	label string
	k     float64
	floor float64
	bands severityBands
	plane func(*imaging.Planes) ([]float64, int, int)
	stats func([]float64, int, int, float64, float64) maskStats
}

func (a *statAnalyzer) Name() string { return a.name }

func (a *statAnalyzer) Analyze(ctx context.Context, roi *imaging.Planes) (model.ConditionResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ConditionResult{}, err
	}
	if roi == nil || len(roi.Y) == 0 {
		return model.ConditionResult{}, model.ErrFeatureExtraction
	}

	plane, w, h := a.plane(roi)
	s := a.stats(plane, w, h, a.k, a.floor)
	sev := a.bands.bucket(s.fraction)
	detected := sev != model.SeverityNone

	return model.ConditionResult{
		Detected:    detected,
		Severity:    sev,
		Confidence:  confidence(s, detected),
		Location:    location(s, detected),
		Description: describe(a.label, sev, s),
	}, nil
}
