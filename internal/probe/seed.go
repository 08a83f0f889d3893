package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"

	"github.com/skinsight/engine/internal/domain/feature"
)

const packFilePermission = 0o600

// seedCase describes one reference case worth embedding.
type seedCase struct {
	spec  faceSpec
	label string
	note  string
}

var seedCases = []seedCase{
	{faceSpec{frame: 240, faceRatio: 0.40}, "clear skin", "healthy baseline"},
	{faceSpec{frame: 240, faceRatio: 0.40, blemishes: 3}, "mild acne", "scattered breakouts"},
	{faceSpec{frame: 240, faceRatio: 0.40, blemishes: 6}, "moderate acne", "dense breakouts"},
}

// seedReferencePack extracts embeddings from the synthetic corpus and
// writes a pack file the service can load at startup.
func seedReferencePack(ctx context.Context, path string) error {
	extractor := feature.New()

	type packCase struct {
		Label     string    `json:"label"`
		Note      string    `json:"note,omitempty"`
		Embedding []float64 `json:"embedding"`
	}
	cases := make([]packCase, 0, len(seedCases))

	for _, sc := range seedCases {
		img, err := renderFaceImage(sc.spec)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", sc.label, err)
		}
		emb, err := extractor.Extract(ctx, img)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", sc.label, err)
		}
		cases = append(cases, packCase{Label: sc.label, Note: sc.note, Embedding: emb})
	}

	data, err := json.MarshalIndent(map[string]interface{}{"cases": cases}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pack: %w", err)
	}
	if err := os.WriteFile(path, data, packFilePermission); err != nil {
		return fmt.Errorf("writing pack: %w", err)
	}
	return nil
}

// renderFaceImage renders a spec as a decoded image for local embedding.
func renderFaceImage(spec faceSpec) (image.Image, error) {
	payload, err := renderFace(spec)
	if err != nil {
		return nil, err
	}
	return decodeBase64PNG(payload)
}
