package condition

import "github.com/skinsight/engine/internal/domain/imaging"

// Dark spots are luminance deficits: pixels well below the face's mean
// brightness.
const (
	darkSpotStdMultiplier = 2.0
	darkSpotFloor         = 20
)

func newDarkSpots() Analyzer {
	return &statAnalyzer{
		name:  "dark_spots",
		label: "dark spots",
		k:     darkSpotStdMultiplier,
		floor: darkSpotFloor,
		bands: severityBands{mildAt: 0.02, moderateAt: 0.06, severeAt: 0.14},
		plane: func(p *imaging.Planes) ([]float64, int, int) { return p.Y, p.W, p.H },
		stats: deficitStats,
	}
}
