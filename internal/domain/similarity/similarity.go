// Package similarity provides nearest-neighbor lookup against a precomputed
// reference corpus, used for explanatory grounding of an analysis.
//
// The index is optional by contract: a nil *Index answers every search with
// ErrSimilarityUnavailable and the pipeline degrades instead of failing.
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/skinsight/engine/internal/domain/model"
)

// DefaultTopK is the number of reference matches returned when the caller
// does not override it.
const DefaultTopK = 5

// Meta is the metadata carried alongside one reference embedding.
type Meta struct {
	Label string `json:"label"`
	Note  string `json:"note,omitempty"`
}

// Index holds an M x D matrix of row-normalized reference embeddings plus
// parallel metadata. It is immutable after construction and safe for
// concurrent reads.
type Index struct {
	refs *mat.Dense
	meta []Meta
	dim  int
}

// NewIndex builds an index from reference embeddings and parallel metadata.
// Rows are copied and L2-normalized so searches reduce to dot products.
func NewIndex(embeddings [][]float64, meta []Meta) (*Index, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty reference set", model.ErrSimilarityUnavailable)
	}
	if len(embeddings) != len(meta) {
		return nil, fmt.Errorf("%w: %d embeddings but %d metadata rows",
			model.ErrSimilarityUnavailable, len(embeddings), len(meta))
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-dimensional embeddings", model.ErrSimilarityUnavailable)
	}

	refs := mat.NewDense(len(embeddings), dim, nil)
	for i, row := range embeddings {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d dims, want %d",
				model.ErrSimilarityUnavailable, i, len(row), dim)
		}
		refs.SetRow(i, normalized(row))
	}

	metaCopy := make([]Meta, len(meta))
	copy(metaCopy, meta)

	return &Index{refs: refs, meta: metaCopy, dim: dim}, nil
}

// Len returns the number of reference embeddings, zero for a nil index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	r, _ := ix.refs.Dims()
	return r
}

// Search returns the top-k reference cases by cosine similarity, descending.
// A nil index returns ErrSimilarityUnavailable; callers treat that as a
// degrade signal, never a fatal failure.
func (ix *Index) Search(ctx context.Context, query []float64, k int) ([]model.SimilarCase, error) {
	if ix == nil {
		return nil, model.ErrSimilarityUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dims, want %d",
			model.ErrSimilarityUnavailable, len(query), ix.dim)
	}
	if k <= 0 {
		k = DefaultTopK
	}

	q := mat.NewVecDense(ix.dim, normalized(query))
	rows, _ := ix.refs.Dims()

	scored := make([]model.SimilarCase, rows)
	for i := 0; i < rows; i++ {
		sim := mat.Dot(ix.refs.RowView(i), q)
		scored[i] = model.SimilarCase{
			Label:      ix.meta[i].Label,
			Similarity: sim,
			Note:       ix.meta[i].Note,
		}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Similarity > scored[b].Similarity
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// normalized returns an L2-normalized copy of v. Zero vectors come back as
// a zero copy rather than NaNs.
func normalized(v []float64) []float64 {
	out := make([]float64, len(v))
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
