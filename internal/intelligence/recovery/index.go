// Package recovery maps generated feature vectors back onto real catalog
// structures via nearest-neighbor search, applying a diversity policy so the
// pipeline does not keep returning the same chemical formula.
package recovery

import (
	"context"
	"math"
	"sort"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Neighbor is one scored catalog match: the catalog row index and the
// Euclidean distance from the query vector.
type Neighbor struct {
	Index    int
	Distance float64
}

// NeighborIndex answers k-nearest-neighbor queries over the catalog feature
// matrix.  Implementations must return neighbors in ascending distance order.
// The in-process ExactIndex is the default; a remote vector database can back
// the same interface for catalogs that outgrow memory.
type NeighborIndex interface {
	// Query returns the k nearest catalog rows for each query vector.  An
	// empty query batch yields an empty result.  k larger than Size is a
	// caller error.
	Query(ctx context.Context, vectors [][]float64, k int) ([][]Neighbor, error)

	// Size returns the number of indexed catalog rows.
	Size() int
}

// ExactIndex is a brute-force Euclidean index over an in-memory feature
// matrix.  The matrix is captured at construction and never mutated, so
// queries need no locking.
type ExactIndex struct {
	matrix [][]float64
	dim    int
}

// NewExactIndex builds an index over the catalog feature matrix.  All rows
// must share one dimensionality and the matrix must be non-empty.
func NewExactIndex(matrix [][]float64) (*ExactIndex, error) {
	if len(matrix) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "feature matrix has no rows")
	}
	dim := len(matrix[0])
	if dim == 0 {
		return nil, errors.New(errors.ErrCodeCatalogInconsistent, "feature matrix rows are empty")
	}
	for i, row := range matrix {
		if len(row) != dim {
			return nil, errors.Newf(errors.ErrCodeCatalogInconsistent,
				"feature matrix row %d has %d columns, row 0 has %d", i, len(row), dim)
		}
	}
	return &ExactIndex{matrix: matrix, dim: dim}, nil
}

// Size returns the number of indexed rows.
func (x *ExactIndex) Size() int {
	return len(x.matrix)
}

// Dim returns the feature dimensionality of the indexed rows.
func (x *ExactIndex) Dim() int {
	return x.dim
}

// Query computes exact Euclidean distances from each query vector to every
// catalog row and returns the k closest per query, nearest first.
func (x *ExactIndex) Query(_ context.Context, vectors [][]float64, k int) ([][]Neighbor, error) {
	if k <= 0 || k > len(x.matrix) {
		return nil, errors.Newf(errors.ErrCodeGenIndexConfigInvalid,
			"k=%d out of range for catalog of %d rows", k, len(x.matrix))
	}
	if len(vectors) == 0 {
		return [][]Neighbor{}, nil
	}

	out := make([][]Neighbor, len(vectors))
	for qi, q := range vectors {
		if len(q) != x.dim {
			return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
				"query %d has %d components, index expects %d", qi, len(q), x.dim)
		}
		all := make([]Neighbor, len(x.matrix))
		for ri, row := range x.matrix {
			var sum float64
			for j := range row {
				d := q[j] - row[j]
				sum += d * d
			}
			all[ri] = Neighbor{Index: ri, Distance: math.Sqrt(sum)}
		}
		// Stable sort keeps catalog order as the tie-break for equal
		// distances, so results are deterministic.
		sort.SliceStable(all, func(a, b int) bool {
			return all[a].Distance < all[b].Distance
		})
		out[qi] = all[:k]
	}
	return out, nil
}
