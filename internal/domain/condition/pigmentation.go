package condition

import (
	"math"

	"github.com/skinsight/engine/internal/domain/imaging"
)

// Pigmentation irregularity is chroma that strays from the face's own
// average tone in either direction, summed over both chroma channels.
const (
	pigmentationStdMultiplier = 2.0
	pigmentationFloor         = 12
)

func newPigmentation() Analyzer {
	return &statAnalyzer{
		name:  "pigmentation",
		label: "pigmentation irregularities",
		k:     pigmentationStdMultiplier,
		floor: pigmentationFloor,
		bands: severityBands{mildAt: 0.04, moderateAt: 0.12, severeAt: 0.25},
		plane: chromaDeviationPlane,
		stats: absoluteStats,
	}
}

func chromaDeviationPlane(p *imaging.Planes) ([]float64, int, int) {
	meanCb, _ := imaging.MeanStd(p.Cb)
	meanCr, _ := imaging.MeanStd(p.Cr)
	out := make([]float64, len(p.Cb))
	for i := range p.Cb {
		out[i] = math.Abs(p.Cb[i]-meanCb) + math.Abs(p.Cr[i]-meanCr)
	}
	return out, p.W, p.H
}
