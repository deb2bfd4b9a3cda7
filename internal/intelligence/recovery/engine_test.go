package recovery

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	apperrors "github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// catalogEntry builds a one-site material so each entry carries a chosen
// formula.
func catalogEntry(id, element string) material.Material {
	return material.Material{
		MaterialID: id,
		Structure: material.Structure{
			Sites: []material.Site{{Element: element, Occupancy: 1}},
		},
	}
}

// buildEngine assembles an engine over parallel (element, featureRow) data.
func buildEngine(t *testing.T, elements []string, matrix [][]float64, opts Options) *Engine {
	t.Helper()
	idx, err := NewExactIndex(matrix)
	require.NoError(t, err)

	catalog := make([]material.Material, len(elements))
	for i, el := range elements {
		catalog[i] = catalogEntry(fmt.Sprintf("mp-%d", i), el)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	eng, err := NewEngine(idx, catalog, opts)
	require.NoError(t, err)
	return eng
}

func TestNewEngineValidation(t *testing.T) {
	idx, err := NewExactIndex([][]float64{{0}, {1}})
	require.NoError(t, err)
	catalog := []material.Material{catalogEntry("mp-0", "Si"), catalogEntry("mp-1", "Ge")}
	rng := rand.New(rand.NewSource(1))

	_, err = NewEngine(nil, catalog, Options{Rand: rng})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenIndexConfigInvalid))

	_, err = NewEngine(idx, nil, Options{Rand: rng})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogEmpty))

	_, err = NewEngine(idx, catalog[:1], Options{Rand: rng})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogInconsistent))

	_, err = NewEngine(idx, catalog, Options{Rand: rng, Neighbors: 3})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenIndexConfigInvalid))

	_, err = NewEngine(idx, catalog, Options{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenIndexConfigInvalid))
}

func TestRecoverEmptyBatch(t *testing.T) {
	eng := buildEngine(t, []string{"Si", "Ge"}, [][]float64{{0}, {1}}, Options{})
	res, err := eng.Recover(context.Background(), nil, true, 0.7)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRecoverRejectsBadDiversityWeight(t *testing.T) {
	eng := buildEngine(t, []string{"Si", "Ge"}, [][]float64{{0}, {1}}, Options{})
	_, err := eng.Recover(context.Background(), [][]float64{{0}}, false, 1.5)
	assert.Error(t, err)
	_, err = eng.Recover(context.Background(), [][]float64{{0}}, false, -0.1)
	assert.Error(t, err)
}

func TestMultiCandidateDistinctFormulasNearestFirst(t *testing.T) {
	// Seven entries, formulas Si,Si,Ge,Si,C,Sn,Pb at increasing distance
	// from the origin.
	elements := []string{"Si", "Si", "Ge", "Si", "C", "Sn", "Pb"}
	matrix := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}}
	eng := buildEngine(t, elements, matrix, Options{})

	res, err := eng.Recover(context.Background(), [][]float64{{0}}, true, 0.7)
	require.NoError(t, err)
	require.Len(t, res, 1)
	cands := res[0]
	require.Len(t, cands, 5)

	// First pass keeps the first occurrence of each distinct formula.
	assert.Equal(t, "mp-0", cands[0].MaterialID) // Si at distance 1
	assert.Equal(t, "mp-2", cands[1].MaterialID) // Ge
	assert.Equal(t, "mp-4", cands[2].MaterialID) // C
	assert.Equal(t, "mp-5", cands[3].MaterialID) // Sn
	assert.Equal(t, "mp-6", cands[4].MaterialID) // Pb

	seen := map[string]int{}
	for _, c := range cands {
		seen[c.Structure.ReducedFormula()]++
	}
	for f, n := range seen {
		assert.Equal(t, 1, n, "formula %s repeated in first-pass results", f)
	}
}

func TestMultiCandidateNeverMoreThanFive(t *testing.T) {
	elements := make([]string, 30)
	matrix := make([][]float64, 30)
	for i := range elements {
		elements[i] = fmt.Sprintf("E%d", i)
		matrix[i] = []float64{float64(i)}
	}
	eng := buildEngine(t, elements, matrix, Options{})

	res, err := eng.Recover(context.Background(), [][]float64{{0}}, true, 0.7)
	require.NoError(t, err)
	assert.Len(t, res[0], 5)
}

func TestMultiCandidateSecondPassFillsByPosition(t *testing.T) {
	// Only two distinct formulas near the query: first pass yields Si, Ge;
	// second pass fills positions 2..4 with the neighbors at those ranks,
	// repeats allowed.
	elements := []string{"Si", "Ge", "Si", "Ge", "Si", "Ge"}
	matrix := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	eng := buildEngine(t, elements, matrix, Options{})

	res, err := eng.Recover(context.Background(), [][]float64{{0}}, true, 0.7)
	require.NoError(t, err)
	cands := res[0]
	require.Len(t, cands, 5)

	assert.Equal(t, "mp-0", cands[0].MaterialID)
	assert.Equal(t, "mp-1", cands[1].MaterialID)
	// Positional fill: neighbor ranks 2, 3, 4.
	assert.Equal(t, "mp-2", cands[2].MaterialID)
	assert.Equal(t, "mp-3", cands[3].MaterialID)
	assert.Equal(t, "mp-4", cands[4].MaterialID)
}

func TestMultiCandidateTinyCatalogReturnsFewer(t *testing.T) {
	eng := buildEngine(t, []string{"Si", "Si"}, [][]float64{{1}, {2}}, Options{})
	res, err := eng.Recover(context.Background(), [][]float64{{0}}, true, 0.7)
	require.NoError(t, err)
	// One distinct formula from pass one, position 1 filled in pass two.
	require.Len(t, res[0], 2)
	assert.Equal(t, "mp-0", res[0][0].MaterialID)
	assert.Equal(t, "mp-1", res[0][1].MaterialID)
}

func TestSingleCandidateAvoidsRememberedFormula(t *testing.T) {
	// Catalog A/B/A pattern: nearest is Si at [0,0], then Si again at
	// [0.1,0.1], then Ge at [1,1].
	elements := []string{"Si", "Ge", "Si"}
	matrix := [][]float64{{0, 0}, {1, 1}, {0.1, 0.1}}
	eng := buildEngine(t, elements, matrix, Options{})

	ctx := context.Background()

	// First call: nothing remembered, nearest Si wins and is recorded.
	res, err := eng.Recover(ctx, [][]float64{{0, 0}}, false, 1.0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Len(t, res[0], 1)
	assert.Equal(t, "mp-0", res[0][0].MaterialID)
	assert.True(t, eng.Memory().Contains("Si"))

	// Second call with diversity_weight=1.0: both Si neighbors are
	// skipped (a remembered formula is never accepted at weight 1), so Ge
	// is selected despite being farther.
	res, err = eng.Recover(ctx, [][]float64{{0, 0}}, false, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "mp-1", res[0][0].MaterialID)
	assert.True(t, eng.Memory().Contains("Ge"))
}

func TestSingleCandidateFallsBackToNearestWhenAllRemembered(t *testing.T) {
	elements := []string{"Si", "Si", "Si"}
	matrix := [][]float64{{0}, {1}, {2}}
	eng := buildEngine(t, elements, matrix, Options{})

	eng.Memory().Remember("Si")

	res, err := eng.Recover(context.Background(), [][]float64{{0}}, false, 1.0)
	require.NoError(t, err)
	// Every scanned neighbor is remembered and weight 1.0 never accepts a
	// repeat, so the globally nearest neighbor is returned.
	assert.Equal(t, "mp-0", res[0][0].MaterialID)
	assert.InDelta(t, 0, res[0][0].Distance, 1e-12)
}

func TestSingleCandidateZeroWeightIgnoresHistory(t *testing.T) {
	elements := []string{"Si", "Ge"}
	matrix := [][]float64{{0}, {1}}
	eng := buildEngine(t, elements, matrix, Options{})

	eng.Memory().Remember("Si")

	// diversity_weight = 0: every draw exceeds the threshold, so history
	// never vetoes the nearest neighbor.
	res, err := eng.Recover(context.Background(), [][]float64{{0}}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "mp-0", res[0][0].MaterialID)
}

func TestSingleCandidateMemoryStaysBounded(t *testing.T) {
	n := 40
	elements := make([]string, n)
	matrix := make([][]float64, n)
	for i := range elements {
		elements[i] = fmt.Sprintf("E%d", i)
		matrix[i] = []float64{float64(i)}
	}
	eng := buildEngine(t, elements, matrix, Options{Neighbors: 5})

	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := eng.Recover(ctx, [][]float64{{float64(i)}}, false, 0.7)
		require.NoError(t, err)
		assert.LessOrEqual(t, eng.Memory().Len(), 20)
	}
}

func TestRecoverAppliesFeatureScaler(t *testing.T) {
	// Catalog indexed in real units [0, 10]; generated features arrive
	// normalized to [0, 1] and must be descaled before the distance query.
	scaler := &material.MinMaxScaler{
		DataMin:  []float64{0},
		DataMax:  []float64{10},
		RangeMin: 0,
		RangeMax: 1,
	}
	elements := []string{"Si", "Ge"}
	matrix := [][]float64{{1}, {9}}
	eng := buildEngine(t, elements, matrix, Options{FeatureScaler: scaler})

	// Normalized 0.9 descaled to 9.0: nearest is Ge, not Si.
	res, err := eng.Recover(context.Background(), [][]float64{{0.9}}, true, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "mp-1", res[0][0].MaterialID)
}

func TestRecoverOneListPerFeatureVector(t *testing.T) {
	elements := []string{"Si", "Ge", "C"}
	matrix := [][]float64{{0}, {5}, {10}}
	eng := buildEngine(t, elements, matrix, Options{})

	res, err := eng.Recover(context.Background(), [][]float64{{0}, {10}}, true, 0.7)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "mp-0", res[0][0].MaterialID)
	assert.Equal(t, "mp-2", res[1][0].MaterialID)
}
