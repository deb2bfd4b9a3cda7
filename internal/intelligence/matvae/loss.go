package matvae

import (
	"math"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// The loss functions are pure: they read their inputs, touch no model state,
// and are safe to call concurrently.  They reproduce the training objective
// so offline evaluation of loaded weights matches the recorded training
// history.

// ReconstructionLoss is the mean squared error between a batch of inputs and
// their reconstructions, averaged over every element.
func ReconstructionLoss(input, reconstructed [][]float64) (float64, error) {
	if len(input) != len(reconstructed) {
		return 0, errors.Newf(errors.ErrCodeGenDimMismatch,
			"input batch has %d rows, reconstruction has %d", len(input), len(reconstructed))
	}
	if len(input) == 0 {
		return 0, errors.New(errors.ErrCodeGenDimMismatch, "empty batch")
	}

	var sum float64
	var count int
	for i := range input {
		if len(input[i]) != len(reconstructed[i]) {
			return 0, errors.Newf(errors.ErrCodeGenDimMismatch,
				"row %d has %d components, reconstruction has %d",
				i, len(input[i]), len(reconstructed[i]))
		}
		for j := range input[i] {
			d := input[i][j] - reconstructed[i][j]
			sum += d * d
			count++
		}
	}
	return sum / float64(count), nil
}

// KLDivergence is the closed-form KL divergence of the diagonal latent
// posterior against the standard normal prior,
//
//	-0.5 * mean_batch( sum_j (1 + logVar_j - mean_j^2 - exp(logVar_j)) )
//
// and is zero exactly when mean == 0 and logVar == 0 everywhere.
func KLDivergence(means, logVars [][]float64) (float64, error) {
	if len(means) != len(logVars) {
		return 0, errors.Newf(errors.ErrCodeGenDimMismatch,
			"means batch has %d rows, log_vars has %d", len(means), len(logVars))
	}
	if len(means) == 0 {
		return 0, errors.New(errors.ErrCodeGenDimMismatch, "empty batch")
	}

	var total float64
	for i := range means {
		if len(means[i]) != len(logVars[i]) {
			return 0, errors.Newf(errors.ErrCodeGenDimMismatch,
				"row %d has %d mean components but %d log_var components",
				i, len(means[i]), len(logVars[i]))
		}
		var rowSum float64
		for j := range means[i] {
			m := means[i][j]
			lv := logVars[i][j]
			rowSum += 1 + lv - m*m - math.Exp(lv)
		}
		total += rowSum
	}
	return -0.5 * total / float64(len(means)), nil
}

// TotalLoss combines reconstruction and KL terms with the configured weight.
func (v *VAE) TotalLoss(input, reconstructed, means, logVars [][]float64) (float64, error) {
	rec, err := ReconstructionLoss(input, reconstructed)
	if err != nil {
		return 0, err
	}
	kl, err := KLDivergence(means, logVars)
	if err != nil {
		return 0, err
	}
	return rec + v.cfg.KLWeight*kl, nil
}
