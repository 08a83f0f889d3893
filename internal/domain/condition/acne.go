package condition

import "github.com/skinsight/engine/internal/domain/imaging"

// Acne shows up as localized red dominance: pixels whose red channel
// clearly exceeds the green/blue average relative to the rest of the face.
const (
	acneStdMultiplier = 2.2
	acneFloor         = 18
)

func newAcne() Analyzer {
	return &statAnalyzer{
		name:  "acne",
		label: "acne breakouts",
		k:     acneStdMultiplier,
		floor: acneFloor,
		bands: severityBands{mildAt: 0.02, moderateAt: 0.08, severeAt: 0.18},
		plane: rednessPlane,
		stats: exceedStats,
	}
}

// rednessPlane measures red dominance per pixel.
func rednessPlane(p *imaging.Planes) ([]float64, int, int) {
	out := make([]float64, len(p.R))
	for i := range p.R {
		out[i] = p.R[i] - (p.G[i]+p.B[i])/2
	}
	return out, p.W, p.H
}
