// Package matvae implements the conditional variational autoencoder used to
// generate material feature vectors conditioned on target property vectors.
// At inference time only the decoder path is exercised; the encoder and the
// explicit loss functions exist so that trained weights round-trip and the
// training objective is reproducible.
package matvae

import (
	"math"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// VAE configuration
// ---------------------------------------------------------------------------

// VAEConfig holds the architecture of the conditional VAE.  All dimensions
// are fixed at construction time; mismatches against weights, scalers, or the
// catalog are fatal construction errors, never per-call ones.
type VAEConfig struct {
	InputDim    int     `json:"input_dim" yaml:"input_dim"`
	PropertyDim int     `json:"property_dim" yaml:"property_dim"`
	LatentDim   int     `json:"latent_dim" yaml:"latent_dim"`
	HiddenDims  []int   `json:"hidden_dims" yaml:"hidden_dims"`
	KLWeight    float64 `json:"kl_weight" yaml:"kl_weight"`
}

// DefaultVAEConfig returns the architecture the reference model was trained
// with.
func DefaultVAEConfig() VAEConfig {
	return VAEConfig{
		InputDim:    128,
		PropertyDim: 3,
		LatentDim:   16,
		HiddenDims:  []int{64, 32},
		KLWeight:    1.0,
	}
}

// Validate checks the configuration for consistency.
func (c *VAEConfig) Validate() error {
	if c.InputDim <= 0 {
		return errors.New(errors.ErrCodeGenDimMismatch, "input_dim must be positive")
	}
	if c.PropertyDim <= 0 {
		return errors.New(errors.ErrCodeGenDimMismatch, "property_dim must be positive")
	}
	if c.LatentDim <= 0 {
		return errors.New(errors.ErrCodeGenDimMismatch, "latent_dim must be positive")
	}
	if len(c.HiddenDims) == 0 {
		return errors.New(errors.ErrCodeGenDimMismatch, "hidden_dims must not be empty")
	}
	for i, d := range c.HiddenDims {
		if d <= 0 {
			return errors.Newf(errors.ErrCodeGenDimMismatch, "hidden_dims[%d] must be positive", i)
		}
	}
	if c.KLWeight < 0 {
		return errors.New(errors.ErrCodeGenDimMismatch, "kl_weight must be non-negative")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Dense layer
// ---------------------------------------------------------------------------

// Dense is one fully-connected layer.  Weights are stored row-major as
// W[out][in] so a forward pass is a plain matrix-vector product.
type Dense struct {
	W [][]float64 `json:"weights"`
	B []float64   `json:"bias"`
}

// newDense allocates a zero-initialized layer of the given shape.
func newDense(in, out int) Dense {
	w := make([][]float64, out)
	for o := range w {
		w[o] = make([]float64, in)
	}
	return Dense{W: w, B: make([]float64, out)}
}

// inDim returns the expected input width.
func (d *Dense) inDim() int {
	if len(d.W) == 0 {
		return 0
	}
	return len(d.W[0])
}

// outDim returns the output width.
func (d *Dense) outDim() int {
	return len(d.W)
}

// forward computes activation(W·x + b).
func (d *Dense) forward(x []float64, activation func(float64) float64) []float64 {
	out := make([]float64, d.outDim())
	for o, row := range d.W {
		sum := d.B[o]
		for i, w := range row {
			sum += w * x[i]
		}
		if activation != nil {
			sum = activation(sum)
		}
		out[o] = sum
	}
	return out
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// ---------------------------------------------------------------------------
// VAE model
// ---------------------------------------------------------------------------

// Encoder maps a feature vector onto the parameters of a latent normal
// distribution.  Property conditioning enters the model via the decoder.
type Encoder struct {
	Hidden []Dense `json:"hidden"`
	Mean   Dense   `json:"mean"`
	LogVar Dense   `json:"log_var"`
}

// Decoder maps a (latent, property) pair onto a reconstructed feature vector
// in [0,1] per component.
type Decoder struct {
	Hidden []Dense `json:"hidden"`
	Output Dense   `json:"output"`
}

// VAE bundles the encoder, decoder, and architecture.  A constructed VAE is
// immutable after weight loading and safe for lock-free concurrent use.
type VAE struct {
	cfg     VAEConfig
	encoder Encoder
	decoder Decoder
}

// New constructs a VAE with zero-initialized weights of the configured
// shapes.  Weights are populated by Load or SetWeights.
func New(cfg VAEConfig) (*VAE, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &VAE{cfg: cfg}

	// Encoder: features through the hidden stack to (mean, logVar).
	in := cfg.InputDim
	for _, h := range cfg.HiddenDims {
		v.encoder.Hidden = append(v.encoder.Hidden, newDense(in, h))
		in = h
	}
	v.encoder.Mean = newDense(in, cfg.LatentDim)
	v.encoder.LogVar = newDense(in, cfg.LatentDim)

	// Decoder: concat(latent, property) through the hidden stack in reverse
	// order, then a sigmoid output of InputDim.
	in = cfg.LatentDim + cfg.PropertyDim
	for i := len(cfg.HiddenDims) - 1; i >= 0; i-- {
		v.decoder.Hidden = append(v.decoder.Hidden, newDense(in, cfg.HiddenDims[i]))
		in = cfg.HiddenDims[i]
	}
	v.decoder.Output = newDense(in, cfg.InputDim)

	return v, nil
}

// Config returns the architecture the model was constructed with.
func (v *VAE) Config() VAEConfig {
	return v.cfg
}

// LatentDim returns the latent-space dimensionality.
func (v *VAE) LatentDim() int { return v.cfg.LatentDim }

// PropertyDim returns the conditioning-vector dimensionality.
func (v *VAE) PropertyDim() int { return v.cfg.PropertyDim }

// InputDim returns the feature-vector dimensionality.
func (v *VAE) InputDim() int { return v.cfg.InputDim }

// SetWeights replaces the model weights after shape validation.
func (v *VAE) SetWeights(enc Encoder, dec Decoder) error {
	probe := &VAE{cfg: v.cfg, encoder: enc, decoder: dec}
	if err := probe.validateShapes(); err != nil {
		return err
	}
	v.encoder = enc
	v.decoder = dec
	return nil
}

// validateShapes checks every layer against the configured architecture.
func (v *VAE) validateShapes() error {
	if len(v.encoder.Hidden) != len(v.cfg.HiddenDims) {
		return errors.Newf(errors.ErrCodeGenDimMismatch,
			"encoder has %d hidden layers, config specifies %d",
			len(v.encoder.Hidden), len(v.cfg.HiddenDims))
	}
	in := v.cfg.InputDim
	for i, layer := range v.encoder.Hidden {
		if layer.inDim() != in || layer.outDim() != v.cfg.HiddenDims[i] {
			return errors.Newf(errors.ErrCodeGenDimMismatch,
				"encoder hidden layer %d has shape %dx%d, want %dx%d",
				i, layer.outDim(), layer.inDim(), v.cfg.HiddenDims[i], in)
		}
		in = v.cfg.HiddenDims[i]
	}
	for name, head := range map[string]*Dense{"mean": &v.encoder.Mean, "log_var": &v.encoder.LogVar} {
		if head.inDim() != in || head.outDim() != v.cfg.LatentDim {
			return errors.Newf(errors.ErrCodeGenDimMismatch,
				"encoder %s head has shape %dx%d, want %dx%d",
				name, head.outDim(), head.inDim(), v.cfg.LatentDim, in)
		}
	}

	if len(v.decoder.Hidden) != len(v.cfg.HiddenDims) {
		return errors.Newf(errors.ErrCodeGenDimMismatch,
			"decoder has %d hidden layers, config specifies %d",
			len(v.decoder.Hidden), len(v.cfg.HiddenDims))
	}
	in = v.cfg.LatentDim + v.cfg.PropertyDim
	for i, layer := range v.decoder.Hidden {
		want := v.cfg.HiddenDims[len(v.cfg.HiddenDims)-1-i]
		if layer.inDim() != in || layer.outDim() != want {
			return errors.Newf(errors.ErrCodeGenDimMismatch,
				"decoder hidden layer %d has shape %dx%d, want %dx%d",
				i, layer.outDim(), layer.inDim(), want, in)
		}
		in = want
	}
	if v.decoder.Output.inDim() != in || v.decoder.Output.outDim() != v.cfg.InputDim {
		return errors.Newf(errors.ErrCodeGenDimMismatch,
			"decoder output layer has shape %dx%d, want %dx%d",
			v.decoder.Output.outDim(), v.decoder.Output.inDim(), v.cfg.InputDim, in)
	}
	return nil
}
