package assets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skinsight/engine/internal/domain/similarity"
)

// referencePack is the on-disk shape of the reference corpus.
type referencePack struct {
	Cases []referenceCase `json:"cases"`
}

type referenceCase struct {
	Label     string    `json:"label"`
	Note      string    `json:"note,omitempty"`
	Embedding []float64 `json:"embedding"`
}

// loadReferencePack reads the pack and builds the similarity index. Any
// failure is reported to the caller, which degrades rather than aborts.
func loadReferencePack(path string) (*similarity.Index, error) {
	if path == "" {
		return nil, fmt.Errorf("no reference pack path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference pack: %w", err)
	}

	var pack referencePack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing reference pack: %w", err)
	}

	embeddings := make([][]float64, len(pack.Cases))
	meta := make([]similarity.Meta, len(pack.Cases))
	for i, c := range pack.Cases {
		embeddings[i] = c.Embedding
		meta[i] = similarity.Meta{Label: c.Label, Note: c.Note}
	}
	return similarity.NewIndex(embeddings, meta)
}
