package matvae

import (
	"math"
	"math/rand"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Encode runs the encoder on a single feature vector and returns the latent
// mean and log-variance.  The property vector is validated for shape so that
// callers supply consistent pairs, but conditioning enters through Decode.
func (v *VAE) Encode(features, properties []float64) (mean, logVar []float64, err error) {
	if len(features) != v.cfg.InputDim {
		return nil, nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"feature vector has %d components, model expects %d", len(features), v.cfg.InputDim)
	}
	if len(properties) != v.cfg.PropertyDim {
		return nil, nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"property vector has %d components, model expects %d", len(properties), v.cfg.PropertyDim)
	}

	x := features
	for i := range v.encoder.Hidden {
		x = v.encoder.Hidden[i].forward(x, relu)
	}
	mean = v.encoder.Mean.forward(x, nil)
	logVar = v.encoder.LogVar.forward(x, nil)
	return mean, logVar, nil
}

// Decode runs the decoder on a (latent, property) pair.  Every component of
// the result lies in [0, 1]; the caller maps it back to real units with the
// feature scaler.
func (v *VAE) Decode(latent, properties []float64) ([]float64, error) {
	if len(latent) != v.cfg.LatentDim {
		return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"latent vector has %d components, model expects %d", len(latent), v.cfg.LatentDim)
	}
	if len(properties) != v.cfg.PropertyDim {
		return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"property vector has %d components, model expects %d", len(properties), v.cfg.PropertyDim)
	}

	x := make([]float64, 0, v.cfg.LatentDim+v.cfg.PropertyDim)
	x = append(x, latent...)
	x = append(x, properties...)
	for i := range v.decoder.Hidden {
		x = v.decoder.Hidden[i].forward(x, relu)
	}
	return v.decoder.Output.forward(x, sigmoid), nil
}

// DecodeBatch decodes each (latent, property) row pair.  Both slices must
// have the same length.
func (v *VAE) DecodeBatch(latents, properties [][]float64) ([][]float64, error) {
	if len(latents) != len(properties) {
		return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"batch has %d latent rows but %d property rows", len(latents), len(properties))
	}
	out := make([][]float64, len(latents))
	for i := range latents {
		row, err := v.Decode(latents[i], properties[i])
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// Reparameterize draws z = mean + exp(0.5*logVar) * eps with eps ~ N(0, 1)
// from the supplied source.  The caller owns the source; passing a seeded one
// makes the draw reproducible.
func Reparameterize(mean, logVar []float64, rng *rand.Rand) ([]float64, error) {
	if len(mean) != len(logVar) {
		return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"mean has %d components, log_var has %d", len(mean), len(logVar))
	}
	z := make([]float64, len(mean))
	for i := range mean {
		std := math.Exp(0.5 * logVar[i])
		z[i] = mean[i] + std*rng.NormFloat64()
	}
	return z, nil
}
