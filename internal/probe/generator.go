package probe

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// decodeBase64PNG reverses renderFace for local processing.
func decodeBase64PNG(payload string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(data))
}

// Synthetic face palette.
var (
	skinTone    = color.RGBA{R: 224, G: 172, B: 140, A: 255}
	blemishTone = color.RGBA{R: 210, G: 90, B: 85, A: 255}
	background  = color.RGBA{R: 24, G: 28, B: 34, A: 255}
)

// faceSpec describes one synthetic test image.
type faceSpec struct {
	frame     int     // square frame side in pixels
	faceRatio float64 // face area as a fraction of the frame, 0 for no face
	offCenter bool    // push the face into a corner
	blemishes int     // number of seeded blemish patches
}

// renderFace draws a skin-tone ellipse over a dark background and returns
// the base64-encoded PNG the API expects.
func renderFace(spec faceSpec) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, spec.frame, spec.frame))
	for y := 0; y < spec.frame; y++ {
		for x := 0; x < spec.frame; x++ {
			img.SetRGBA(x, y, background)
		}
	}

	if spec.faceRatio > 0 {
		// Ellipse with 4:5 aspect, sized so its area matches faceRatio.
		frameArea := float64(spec.frame * spec.frame)
		// area = pi * a * b with b = 1.25 * a
		a := 1.0
		for a*a*1.25*3.14159 < spec.faceRatio*frameArea {
			a++
		}
		b := a * 1.25

		cx, cy := float64(spec.frame)/2, float64(spec.frame)/2
		if spec.offCenter {
			cx, cy = a+2, b+2
		}

		for y := 0; y < spec.frame; y++ {
			for x := 0; x < spec.frame; x++ {
				dx := (float64(x) - cx) / a
				dy := (float64(y) - cy) / b
				if dx*dx+dy*dy <= 1 {
					img.SetRGBA(x, y, skinTone)
				}
			}
		}

		// Deterministic blemish placement inside the face.
		for i := 0; i < spec.blemishes; i++ {
			bx := int(cx) + (i%3-1)*int(a/2)
			by := int(cy) + (i/3-1)*int(b/3)
			side := spec.frame / 20
			for y := by; y < by+side && y < spec.frame; y++ {
				for x := bx; x < bx+side && x < spec.frame; x++ {
					if x >= 0 && y >= 0 {
						img.SetRGBA(x, y, blemishTone)
					}
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
