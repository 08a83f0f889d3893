package condition

import (
	"math"

	"github.com/skinsight/engine/internal/domain/imaging"
)

// Wrinkles are predominantly horizontal creases, so only the vertical
// gradient component counts. The higher floor keeps isolated speckle noise
// from reading as lines.
const (
	wrinkleStdMultiplier = 2.0
	wrinkleFloor         = 25
)

func newWrinkles() Analyzer {
	return &statAnalyzer{
		name:  "wrinkles",
		label: "fine lines and wrinkles",
		k:     wrinkleStdMultiplier,
		floor: wrinkleFloor,
		bands: severityBands{mildAt: 0.04, moderateAt: 0.10, severeAt: 0.20},
		plane: horizontalEdgePlane,
		stats: absoluteStats,
	}
}

func horizontalEdgePlane(p *imaging.Planes) ([]float64, int, int) {
	_, gy := imaging.Sobel(p.Y, p.W, p.H)
	out := make([]float64, len(gy))
	for i, v := range gy {
		out[i] = math.Abs(v)
	}
	return out, p.W, p.H
}
