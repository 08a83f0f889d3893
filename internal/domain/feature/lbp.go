package feature

// Uniform local binary patterns over an 8-neighborhood. Patterns with at
// most two 0/1 transitions get their own histogram bin (58 of them); all
// other patterns share the final bin.

var uniformIndex = buildUniformIndex()

func buildUniformIndex() [256]int {
	var table [256]int
	next := 0
	for p := 0; p < 256; p++ {
		if transitions(uint8(p)) <= 2 {
			table[p] = next
			next++
		} else {
			table[p] = -1
		}
	}
	// Non-uniform patterns map to the shared last bin.
	for p := 0; p < 256; p++ {
		if table[p] == -1 {
			table[p] = lbpBins - 1
		}
	}
	return table
}

// transitions counts circular 0/1 transitions in an 8-bit pattern.
func transitions(p uint8) int {
	n := 0
	for i := 0; i < 8; i++ {
		a := (p >> uint(i)) & 1
		b := (p >> uint((i+1)%8)) & 1
		if a != b {
			n++
		}
	}
	return n
}

// neighborOffsets lists the 8-neighborhood in clockwise order starting at
// the top-left.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1},
	{-1, 1}, {-1, 0},
}

// lbpHistogram returns the normalized uniform-LBP histogram of gray.
func lbpHistogram(gray []float64, w, h int) []float64 {
	hist := make([]float64, lbpBins)
	count := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := gray[y*w+x]
			var pattern uint8
			for bit, off := range neighborOffsets {
				if gray[(y+off[1])*w+(x+off[0])] >= center {
					pattern |= 1 << uint(bit)
				}
			}
			hist[uniformIndex[pattern]]++
			count++
		}
	}
	if count > 0 {
		for i := range hist {
			hist[i] /= float64(count)
		}
	}
	return hist
}
