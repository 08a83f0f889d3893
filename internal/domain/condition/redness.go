package condition

import "github.com/skinsight/engine/internal/domain/imaging"

// Diffuse redness rides the Cr chroma channel rather than raw red
// dominance, so flushed regions register even when red pixels are not
// individually extreme. The bands sit higher than acne's because redness
// is a broad-area condition.
const (
	rednessStdMultiplier = 1.8
	rednessFloor         = 8
)

func newRedness() Analyzer {
	return &statAnalyzer{
		name:  "redness",
		label: "skin redness",
		k:     rednessStdMultiplier,
		floor: rednessFloor,
		bands: severityBands{mildAt: 0.05, moderateAt: 0.15, severeAt: 0.30},
		plane: func(p *imaging.Planes) ([]float64, int, int) { return p.Cr, p.W, p.H },
		stats: exceedStats,
	}
}
