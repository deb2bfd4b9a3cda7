package matvae

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructionLossZeroForIdenticalInput(t *testing.T) {
	batch := [][]float64{{0.1, 0.9}, {0.5, 0.5}}
	loss, err := ReconstructionLoss(batch, batch)
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestReconstructionLossMeanSquaredError(t *testing.T) {
	input := [][]float64{{0, 0}, {1, 1}}
	recon := [][]float64{{1, 0}, {1, 0}}
	// squared errors: 1, 0, 0, 1 -> mean 0.5
	loss, err := ReconstructionLoss(input, recon)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, loss, 1e-12)
}

func TestReconstructionLossErrors(t *testing.T) {
	_, err := ReconstructionLoss(nil, nil)
	assert.Error(t, err)

	_, err = ReconstructionLoss([][]float64{{1}}, [][]float64{{1}, {2}})
	assert.Error(t, err)

	_, err = ReconstructionLoss([][]float64{{1, 2}}, [][]float64{{1}})
	assert.Error(t, err)
}

func TestKLDivergenceZeroAtStandardNormal(t *testing.T) {
	means := [][]float64{{0, 0, 0}}
	logVars := [][]float64{{0, 0, 0}}
	kl, err := KLDivergence(means, logVars)
	require.NoError(t, err)
	assert.InDelta(t, 0, kl, 1e-12)
}

func TestKLDivergencePositiveAwayFromPrior(t *testing.T) {
	kl, err := KLDivergence([][]float64{{2, 0}}, [][]float64{{0, 1}})
	require.NoError(t, err)
	// per-component: mean shift contributes 0.5*m^2 = 2;
	// variance term contributes -0.5*(1 + 1 - e) = 0.5*(e - 2).
	want := 2 + 0.5*(math.E-2)
	assert.InDelta(t, want, kl, 1e-12)
	assert.Greater(t, kl, 0.0)
}

func TestKLDivergenceAveragesOverBatch(t *testing.T) {
	single, err := KLDivergence([][]float64{{1, 1}}, [][]float64{{0, 0}})
	require.NoError(t, err)

	doubled, err := KLDivergence(
		[][]float64{{1, 1}, {1, 1}},
		[][]float64{{0, 0}, {0, 0}},
	)
	require.NoError(t, err)
	assert.InDelta(t, single, doubled, 1e-12)
}

func TestTotalLossCombinesTerms(t *testing.T) {
	cfg := smallConfig()
	cfg.KLWeight = 2.0
	v, err := New(cfg)
	require.NoError(t, err)

	input := [][]float64{{0, 0, 0, 0}}
	recon := [][]float64{{1, 0, 0, 0}}
	means := [][]float64{{1, 0}}
	logVars := [][]float64{{0, 0}}

	rec, err := ReconstructionLoss(input, recon)
	require.NoError(t, err)
	kl, err := KLDivergence(means, logVars)
	require.NoError(t, err)

	total, err := v.TotalLoss(input, recon, means, logVars)
	require.NoError(t, err)
	assert.InDelta(t, rec+2.0*kl, total, 1e-12)
}
