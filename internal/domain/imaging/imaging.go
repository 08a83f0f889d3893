// Package imaging provides the deterministic pixel plumbing shared by the
// detector, the feature extractor, and the condition analyzers.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	// Registered decoders for the formats accepted at the boundary.
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/skinsight/engine/internal/domain/model"
)

// Decode decodes an encoded JPEG or PNG payload.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidImageFormat, err)
	}
	return img, nil
}

// Resize resamples img to w x h using Catmull-Rom interpolation. The kernel
// is fixed so the same input always produces the same pixels.
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Crop returns the sub-image covered by b, clamped to the image bounds.
func Crop(img image.Image, b model.Bounds) image.Image {
	r := image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height).Intersect(img.Bounds())
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// Planes holds per-channel float planes of an image in row-major order.
// Values are in [0,255].
type Planes struct {
	W, H       int
	R, G, B    []float64
	Y, Cb, Cr  []float64
}

// ToPlanes extracts RGB and YCbCr planes from an image.
func ToPlanes(img image.Image) *Planes {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := &Planes{
		W: w, H: h,
		R: make([]float64, w*h), G: make([]float64, w*h), B: make([]float64, w*h),
		Y: make([]float64, w*h), Cb: make([]float64, w*h), Cr: make([]float64, w*h),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r8, g8, b8 := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)
			yy, cb, cr := color.RGBToYCbCr(r8, g8, b8)
			p.R[i], p.G[i], p.B[i] = float64(r8), float64(g8), float64(b8)
			p.Y[i], p.Cb[i], p.Cr[i] = float64(yy), float64(cb), float64(cr)
			i++
		}
	}
	return p
}

// Luminance returns the luminance plane of an image using the Rec. 601
// weights, values in [0,255].
func Luminance(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			out[i] = 0.299*float64(r16>>8) + 0.587*float64(g16>>8) + 0.114*float64(b16>>8)
			i++
		}
	}
	return out, w, h
}

// MeanStd returns the mean and population standard deviation of a plane.
func MeanStd(plane []float64) (mean, std float64) {
	if len(plane) == 0 {
		return 0, 0
	}
	for _, v := range plane {
		mean += v
	}
	mean /= float64(len(plane))
	for _, v := range plane {
		d := v - mean
		std += d * d
	}
	std /= float64(len(plane))
	return mean, math.Sqrt(std)
}

// Sobel computes horizontal and vertical gradient planes of gray. Border
// pixels are left at zero.
func Sobel(gray []float64, w, h int) (gx, gy []float64) {
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			tl, t, tr := gray[i-w-1], gray[i-w], gray[i-w+1]
			l, r := gray[i-1], gray[i+1]
			bl, bo, br := gray[i+w-1], gray[i+w], gray[i+w+1]
			gx[i] = (tr + 2*r + br) - (tl + 2*l + bl)
			gy[i] = (bl + 2*bo + br) - (tl + 2*t + tr)
		}
	}
	return gx, gy
}

// GradientMagnitude combines Sobel planes into a magnitude plane.
func GradientMagnitude(gx, gy []float64) []float64 {
	out := make([]float64, len(gx))
	for i := range gx {
		out[i] = math.Sqrt(gx[i]*gx[i] + gy[i]*gy[i])
	}
	return out
}

// Laplacian computes a 4-neighbor Laplacian response plane, a cheap
// high-frequency detector. Border pixels are left at zero.
func Laplacian(gray []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			out[i] = gray[i-w] + gray[i+w] + gray[i-1] + gray[i+1] - 4*gray[i]
		}
	}
	return out
}

