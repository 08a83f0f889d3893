package condition

import "github.com/skinsight/engine/internal/domain/imaging"

// Uneven texture registers as gradient activity across the face. The plane
// is already a deviation measure, so the threshold is absolute.
const (
	textureStdMultiplier = 1.5
	textureFloor         = 15
)

func newTexture() Analyzer {
	return &statAnalyzer{
		name:  "texture",
		label: "uneven texture",
		k:     textureStdMultiplier,
		floor: textureFloor,
		bands: severityBands{mildAt: 0.08, moderateAt: 0.20, severeAt: 0.35},
		plane: gradientPlane,
		stats: absoluteStats,
	}
}

func gradientPlane(p *imaging.Planes) ([]float64, int, int) {
	gx, gy := imaging.Sobel(p.Y, p.W, p.H)
	return imaging.GradientMagnitude(gx, gy), p.W, p.H
}
