// Package feature converts a face region into a fixed-length numeric
// embedding. The extractor is a pure function of its input: no randomness,
// no state, identical pixels always produce the identical vector.
package feature

import (
	"context"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/skinsight/engine/internal/domain/imaging"
	"github.com/skinsight/engine/internal/domain/model"
)

// EmbeddingDim is the fixed embedding length. Every embedding this package
// produces has exactly this many dimensions.
const EmbeddingDim = 512

// Canonical working geometry.
const (
	canonicalSize = 128
	dctSize       = 32
)

// Block sizes of the concatenated descriptor. They sum to EmbeddingDim;
// the final pad/truncate step enforces the invariant regardless.
const (
	lbpBins          = 59
	filterBankStats  = 36
	momentStats      = 4
	gradientStats    = 13
	intensityBins    = 64
	dctCoefficients  = 336
	gradientOrienBin = 8
)

// edgeThreshold is the gradient magnitude above which a pixel counts as an
// edge for the density statistic.
const edgeThreshold = 40.0

// Extractor computes embeddings from face regions.
type Extractor struct {
	size int
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithCanonicalSize overrides the canonical square the ROI is resampled to.
func WithCanonicalSize(px int) Option {
	return func(e *Extractor) {
		if px >= dctSize {
			e.size = px
		}
	}
}

// New creates an Extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{size: canonicalSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes the 512-dimensional embedding of a face region.
func (e *Extractor) Extract(ctx context.Context, roi image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if roi == nil || roi.Bounds().Dx() == 0 || roi.Bounds().Dy() == 0 {
		return nil, model.ErrFeatureExtraction
	}

	gray, w, h := imaging.Luminance(imaging.Resize(roi, e.size, e.size))

	vec := make([]float64, 0, EmbeddingDim)
	vec = append(vec, lbpHistogram(gray, w, h)...)
	vec = append(vec, filterBankStatistics(gray, w, h)...)
	vec = append(vec, momentStatistics(gray)...)
	vec = append(vec, gradientStatistics(gray, w, h)...)
	vec = append(vec, intensityHistogram(gray)...)

	thumb, tw, th := imaging.Luminance(imaging.Resize(roi, dctSize, dctSize))
	vec = append(vec, dctDescriptor(thumb, tw, th)...)

	vec = fit(vec, EmbeddingDim)
	normalize(vec)
	return vec, nil
}

// momentStatistics returns mean, variance, skew, and excess kurtosis of the
// intensity distribution.
func momentStatistics(gray []float64) []float64 {
	mean := stat.Mean(gray, nil)
	variance := stat.Variance(gray, nil)
	skew := stat.Skew(gray, nil)
	kurt := stat.ExKurtosis(gray, nil)
	// Flat regions have undefined skew/kurtosis; pin them to zero so the
	// extractor stays a total function.
	if math.IsNaN(skew) || math.IsInf(skew, 0) {
		skew = 0
	}
	if math.IsNaN(kurt) || math.IsInf(kurt, 0) {
		kurt = 0
	}
	return []float64{mean, variance, skew, kurt}
}

// gradientStatistics returns magnitude statistics, edge density, and an
// 8-bin orientation histogram.
func gradientStatistics(gray []float64, w, h int) []float64 {
	gx, gy := imaging.Sobel(gray, w, h)
	mag := imaging.GradientMagnitude(gx, gy)

	mean, std := imaging.MeanStd(mag)
	maxMag := 0.0
	energy := 0.0
	edges := 0
	for _, v := range mag {
		if v > maxMag {
			maxMag = v
		}
		energy += v * v
		if v > edgeThreshold {
			edges++
		}
	}
	energy = math.Sqrt(energy / float64(len(mag)))
	density := float64(edges) / float64(len(mag))

	orient := make([]float64, gradientOrienBin)
	total := 0.0
	for i := range mag {
		if mag[i] == 0 {
			continue
		}
		theta := math.Atan2(gy[i], gx[i]) // [-pi, pi]
		bin := int((theta + math.Pi) / (2 * math.Pi) * gradientOrienBin)
		if bin >= gradientOrienBin {
			bin = gradientOrienBin - 1
		}
		orient[bin] += mag[i]
		total += mag[i]
	}
	if total > 0 {
		for i := range orient {
			orient[i] /= total
		}
	}

	out := []float64{mean, std, maxMag, energy, density}
	return append(out, orient...)
}

// intensityHistogram returns a normalized 64-bin intensity histogram.
func intensityHistogram(gray []float64) []float64 {
	hist := make([]float64, intensityBins)
	for _, v := range gray {
		bin := int(v / 256 * intensityBins)
		if bin >= intensityBins {
			bin = intensityBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		hist[bin]++
	}
	n := float64(len(gray))
	if n > 0 {
		for i := range hist {
			hist[i] /= n
		}
	}
	return hist
}

// fit pads with zeros or truncates so len(vec) == dim.
func fit(vec []float64, dim int) []float64 {
	if len(vec) == dim {
		return vec
	}
	if len(vec) > dim {
		return vec[:dim]
	}
	out := make([]float64, dim)
	copy(out, vec)
	return out
}

// normalize scales the vector to unit L2 length in place. A zero vector is
// left untouched.
func normalize(vec []float64) {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}
