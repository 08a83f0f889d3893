package feature

import "math"

// Oriented difference filter bank: responses are sampled at four
// orientations and three scales, approximating a small Gabor bank without
// carrying kernel tables around.

// filterOrientations holds unit step vectors for 0, 45, 90, and 135 degrees.
var filterOrientations = [4][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// filterScales are the sampling offsets in pixels.
var filterScales = [3]int{1, 2, 4}

// filterBankStatistics returns mean absolute response, standard deviation,
// and RMS energy for each scale/orientation pair.
func filterBankStatistics(gray []float64, w, h int) []float64 {
	out := make([]float64, 0, filterBankStats)
	for _, scale := range filterScales {
		for _, dir := range filterOrientations {
			dx, dy := dir[0]*scale, dir[1]*scale
			var sumAbs, sumSq float64
			var resp []float64
			for y := scale; y < h-scale; y++ {
				for x := scale; x < w-scale; x++ {
					r := gray[(y+dy)*w+(x+dx)] - gray[(y-dy)*w+(x-dx)]
					resp = append(resp, r)
					sumAbs += math.Abs(r)
					sumSq += r * r
				}
			}
			n := float64(len(resp))
			if n == 0 {
				out = append(out, 0, 0, 0)
				continue
			}
			meanAbs := sumAbs / n
			rms := math.Sqrt(sumSq / n)
			mean := 0.0
			for _, r := range resp {
				mean += r
			}
			mean /= n
			variance := 0.0
			for _, r := range resp {
				d := r - mean
				variance += d * d
			}
			std := math.Sqrt(variance / n)
			out = append(out, meanAbs, std, rms)
		}
	}
	return out
}
