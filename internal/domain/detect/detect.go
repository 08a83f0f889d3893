// Package detect locates the primary face in a frame and gates the rest of
// the pipeline on its confidence.
package detect

import (
	"context"
	"image"
	"math"

	"github.com/skinsight/engine/internal/domain/imaging"
	"github.com/skinsight/engine/internal/domain/model"
)

// Mode selects the detection cost profile.
type Mode string

// Detection modes. Preview serves repeated client polling during live
// capture; committed runs once per captured or uploaded photo.
const (
	ModePreview   Mode = "preview"
	ModeCommitted Mode = "committed"
)

// Working widths per mode. Detection runs on a downsampled frame; bounds
// are scaled back to the original resolution.
const (
	previewWorkingWidth   = 160
	committedWorkingWidth = 320
)

// Skin classification bounds in YCbCr.
const (
	skinCbMin = 77
	skinCbMax = 127
	skinCrMin = 133
	skinCrMax = 173
	skinYMin  = 40
)

// Candidate selection weights: larger, centered, dense regions win.
const (
	selSizeWeight     = 0.4
	selPositionWeight = 0.3
	selDensityWeight  = 0.2
	selVerticalWeight = 0.1
)

// Confidence model: a centered face filling fullConfidenceAreaRatio of the
// frame reaches the top of the size term. Confidence is monotonically
// non-decreasing in the face-area ratio.
const (
	confSizeWeight          = 0.7
	confCenterWeight        = 0.3
	fullConfidenceAreaRatio = 0.35
)

const defaultMinAreaRatio = 0.02

// Detector finds at most one face per frame.
type Detector struct {
	minAreaRatio float64
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithMinAreaRatio sets the minimum fraction of the frame a candidate skin
// region must cover to count as a face.
func WithMinAreaRatio(ratio float64) Option {
	return func(d *Detector) {
		if ratio > 0 && ratio < 1 {
			d.minAreaRatio = ratio
		}
	}
}

// New creates a Detector with configuration options.
func New(opts ...Option) *Detector {
	d := &Detector{
		minAreaRatio: defaultMinAreaRatio,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// candidate is one connected skin region on the working frame.
type candidate struct {
	minX, minY, maxX, maxY int
	pixels                 int
}

func (c candidate) width() int  { return c.maxX - c.minX + 1 }
func (c candidate) height() int { return c.maxY - c.minY + 1 }

// Detect locates the primary face. It returns model.ErrNoFaceDetected when
// no skin region passes the minimum-size filter. Multiple candidates are
// reduced to the single best-scoring one.
func (d *Detector) Detect(ctx context.Context, img image.Image, mode Mode) (model.Detection, error) {
	if err := ctx.Err(); err != nil {
		return model.Detection{}, err
	}

	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()
	if origW == 0 || origH == 0 {
		return model.Detection{}, model.ErrInvalidImageFormat
	}

	workW := committedWorkingWidth
	if mode == ModePreview {
		workW = previewWorkingWidth
	}
	if workW > origW {
		workW = origW
	}
	workH := int(math.Round(float64(origH) * float64(workW) / float64(origW)))
	if workH < 1 {
		workH = 1
	}

	planes := imaging.ToPlanes(imaging.Resize(img, workW, workH))
	mask := skinMask(planes)

	candidates := components(mask, workW, workH)
	best, ok := selectCandidate(candidates, workW, workH, d.minAreaRatio)
	if !ok {
		return model.Detection{}, model.ErrNoFaceDetected
	}

	// Scale bounds back to the original resolution.
	sx := float64(origW) / float64(workW)
	sy := float64(origH) / float64(workH)
	det := model.Detection{
		Bounds: model.Bounds{
			X:      int(math.Round(float64(best.minX) * sx)),
			Y:      int(math.Round(float64(best.minY) * sy)),
			Width:  int(math.Round(float64(best.width()) * sx)),
			Height: int(math.Round(float64(best.height()) * sy)),
		},
		FrameWidth:  origW,
		FrameHeight: origH,
	}
	det.Confidence = confidence(best, workW, workH)
	return det, nil
}

// skinMask flags pixels inside the YCbCr skin bounds.
func skinMask(p *imaging.Planes) []bool {
	mask := make([]bool, len(p.Y))
	for i := range p.Y {
		if p.Y[i] >= skinYMin &&
			p.Cb[i] >= skinCbMin && p.Cb[i] <= skinCbMax &&
			p.Cr[i] >= skinCrMin && p.Cr[i] <= skinCrMax {
			mask[i] = true
		}
	}
	return mask
}

// components labels 4-connected regions of the mask.
func components(mask []bool, w, h int) []candidate {
	visited := make([]bool, len(mask))
	var out []candidate
	stack := make([]int, 0, 256)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		c := candidate{minX: w, minY: h, maxX: 0, maxY: 0}
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			if x < c.minX {
				c.minX = x
			}
			if x > c.maxX {
				c.maxX = x
			}
			if y < c.minY {
				c.minY = y
			}
			if y > c.maxY {
				c.maxY = y
			}
			c.pixels++
			if x > 0 && mask[i-1] && !visited[i-1] {
				visited[i-1] = true
				stack = append(stack, i-1)
			}
			if x < w-1 && mask[i+1] && !visited[i+1] {
				visited[i+1] = true
				stack = append(stack, i+1)
			}
			if y > 0 && mask[i-w] && !visited[i-w] {
				visited[i-w] = true
				stack = append(stack, i-w)
			}
			if y < h-1 && mask[i+w] && !visited[i+w] {
				visited[i+w] = true
				stack = append(stack, i+w)
			}
		}
		out = append(out, c)
	}
	return out
}

// selectCandidate applies the minimum-size filter and keeps the single
// highest-scoring region.
func selectCandidate(cands []candidate, w, h int, minAreaRatio float64) (candidate, bool) {
	frame := float64(w * h)
	bestScore := -1.0
	var best candidate
	for _, c := range cands {
		if float64(c.pixels)/frame < minAreaRatio {
			continue
		}
		s := selectionScore(c, w, h)
		if s > bestScore {
			bestScore = s
			best = c
		}
	}
	return best, bestScore >= 0
}

// selectionScore ranks candidates by size, centeredness, fill density, and
// a bias against the lower third of the frame.
func selectionScore(c candidate, w, h int) float64 {
	frame := float64(w * h)
	sizeScore := float64(c.width()*c.height()) / frame

	cx := float64(c.minX+c.maxX) / 2
	cy := float64(c.minY+c.maxY) / 2
	fx, fy := float64(w)/2, float64(h)/2
	dist := math.Hypot(cx-fx, cy-fy)
	maxDist := math.Hypot(fx, fy)
	positionScore := 1 - dist/maxDist

	density := float64(c.pixels) / float64(c.width()*c.height())

	verticalBias := 1.0
	if cy > float64(h)*0.66 {
		verticalBias = 0.7
	}

	return sizeScore*selSizeWeight +
		positionScore*selPositionWeight +
		density*selDensityWeight +
		verticalBias*selVerticalWeight
}

// confidence maps the winning candidate to the gate confidence. The size
// term saturates at fullConfidenceAreaRatio so anything at or above it with
// a centered face scores 1.0.
func confidence(c candidate, w, h int) float64 {
	frame := float64(w * h)
	areaRatio := float64(c.width()*c.height()) / frame
	sizeTerm := math.Min(1, areaRatio/fullConfidenceAreaRatio)

	cx := float64(c.minX+c.maxX) / 2
	cy := float64(c.minY+c.maxY) / 2
	fx, fy := float64(w)/2, float64(h)/2
	centerTerm := 1 - math.Hypot(cx-fx, cy-fy)/math.Hypot(fx, fy)

	conf := sizeTerm*confSizeWeight + centerTerm*confCenterWeight
	return math.Max(0, math.Min(1, conf))
}

// Guidance suggests how to retake a sub-threshold capture based on which
// confidence term fell short.
func Guidance(det model.Detection) string {
	areaRatio := det.AreaRatio()
	cx := float64(det.Bounds.X) + float64(det.Bounds.Width)/2
	cy := float64(det.Bounds.Y) + float64(det.Bounds.Height)/2
	fx := float64(det.FrameWidth) / 2
	fy := float64(det.FrameHeight) / 2
	offCenter := math.Hypot(cx-fx, cy-fy)/math.Hypot(fx, fy) > 0.25

	switch {
	case areaRatio < fullConfidenceAreaRatio/2 && offCenter:
		return "move closer and center your face in the frame, with even lighting"
	case areaRatio < fullConfidenceAreaRatio/2:
		return "move closer to the camera so your face fills more of the frame"
	case offCenter:
		return "center your face in the frame"
	default:
		return "retake with better lighting and keep your face centered"
	}
}
