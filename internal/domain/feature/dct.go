package feature

import "math"

// Frequency-domain block: a 2-D DCT-II of the 32x32 thumbnail, read in
// zigzag order so low frequencies come first, stored as log magnitudes.

// dctDescriptor returns the first dctCoefficients zigzag coefficients.
func dctDescriptor(gray []float64, w, h int) []float64 {
	coeffs := dct2(gray, w, h)
	order := zigzag(w, h)
	out := make([]float64, 0, dctCoefficients)
	for _, idx := range order {
		if len(out) == dctCoefficients {
			break
		}
		out = append(out, math.Log1p(math.Abs(coeffs[idx])))
	}
	for len(out) < dctCoefficients {
		out = append(out, 0)
	}
	return out
}

// dct2 computes a separable 2-D DCT-II with orthonormal scaling.
func dct2(gray []float64, w, h int) []float64 {
	rows := make([]float64, w*h)
	for y := 0; y < h; y++ {
		dct1(gray[y*w:(y+1)*w], rows[y*w:(y+1)*w])
	}
	out := make([]float64, w*h)
	col := make([]float64, h)
	res := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = rows[y*w+x]
		}
		dct1(col, res)
		for y := 0; y < h; y++ {
			out[y*w+x] = res[y]
		}
	}
	return out
}

// dct1 computes a 1-D DCT-II of src into dst with orthonormal scaling.
func dct1(src, dst []float64) {
	n := len(src)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += src[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
		}
		scale := math.Sqrt(2 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		dst[k] = sum * scale
	}
}

// zigzag returns indices of a w x h grid in zigzag scan order.
func zigzag(w, h int) []int {
	out := make([]int, 0, w*h)
	for s := 0; s < w+h-1; s++ {
		if s%2 == 0 {
			for y := min(s, h-1); y >= 0 && s-y < w; y-- {
				out = append(out, y*w+(s-y))
			}
		} else {
			for x := min(s, w-1); x >= 0 && s-x < h; x-- {
				out = append(out, (s-x)*w+x)
			}
		}
	}
	return out
}
