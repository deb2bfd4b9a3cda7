package matvae

import (
	"math/rand"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Decoder abstraction used by the sampler so tests can observe the latents
// fed into the model.
type PropertyDecoder interface {
	Decode(latent, properties []float64) ([]float64, error)
	LatentDim() int
	PropertyDim() int
}

// Sampler draws latent vectors from an isotropic normal and decodes them
// conditioned on a target property vector.  The random source is injected at
// construction; a seeded source makes every draw reproducible.
type Sampler struct {
	dec PropertyDecoder
	rng *rand.Rand
}

// NewSampler builds a sampler over the given decoder.  rng must not be nil.
func NewSampler(dec PropertyDecoder, rng *rand.Rand) (*Sampler, error) {
	if dec == nil {
		return nil, errors.New(errors.ErrCodeGenSamplerConfigError, "decoder is nil")
	}
	if rng == nil {
		return nil, errors.New(errors.ErrCodeGenSamplerConfigError, "random source is nil")
	}
	return &Sampler{dec: dec, rng: rng}, nil
}

// Generate decodes n feature vectors for one target property vector.  Each
// latent component is drawn from Normal(0, temperature); temperature is the
// standard deviation, so higher values spread the latents and yield more
// diverse candidates.  temperature must be positive and n non-negative.
func (s *Sampler) Generate(target []float64, n int, temperature float64) ([][]float64, error) {
	if temperature <= 0 {
		return nil, errors.Newf(errors.ErrCodeGenTemperatureInvalid,
			"temperature %g must be positive", temperature)
	}
	if n < 0 {
		return nil, errors.Newf(errors.ErrCodeGenSamplerConfigError,
			"sample count %d must be non-negative", n)
	}
	if len(target) != s.dec.PropertyDim() {
		return nil, errors.Newf(errors.ErrCodeGenDimMismatch,
			"target vector has %d components, decoder expects %d",
			len(target), s.dec.PropertyDim())
	}

	out := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		latent := make([]float64, s.dec.LatentDim())
		for j := range latent {
			latent[j] = s.rng.NormFloat64() * temperature
		}
		row, err := s.dec.Decode(latent, target)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
