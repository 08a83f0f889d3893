package condition

import (
	"math"

	"github.com/skinsight/engine/internal/domain/imaging"
)

// Enlarged pores are fine-grained high-frequency detail, picked up by the
// absolute Laplacian response.
const (
	poreStdMultiplier = 1.8
	poreFloor         = 10
)

func newPores() Analyzer {
	return &statAnalyzer{
		name:  "pores",
		label: "enlarged pores",
		k:     poreStdMultiplier,
		floor: poreFloor,
		bands: severityBands{mildAt: 0.06, moderateAt: 0.15, severeAt: 0.30},
		plane: laplacianPlane,
		stats: absoluteStats,
	}
}

func laplacianPlane(p *imaging.Planes) ([]float64, int, int) {
	lap := imaging.Laplacian(p.Y, p.W, p.H)
	out := make([]float64, len(lap))
	for i, v := range lap {
		out[i] = math.Abs(v)
	}
	return out, p.W, p.H
}
