// Package generation drives the end-to-end material generation loop: draw
// target property vectors inside the requested constraint ranges, sample
// candidate feature vectors from the conditional VAE, recover real catalog
// structures for them, and select a diverse final batch.
package generation

import (
	"context"
	"math/rand"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// FeatureSampler produces candidate feature vectors for one normalized
// target property vector.
type FeatureSampler interface {
	Generate(target []float64, n int, temperature float64) ([][]float64, error)
}

// StructureRecoverer maps generated feature vectors onto catalog candidates.
type StructureRecoverer interface {
	Recover(ctx context.Context, features [][]float64, returnMultiple bool, diversityWeight float64) ([][]material.CandidateStructure, error)
}

// Options tunes the orchestration loop.  Zero values select the defaults
// used by the reference pipeline.
type Options struct {
	// FeaturesPerTarget is how many feature vectors the sampler draws per
	// target.  Default 3.
	FeaturesPerTarget int

	// DiversityWeight is passed through to the recovery engine.  Default
	// 0.7.
	DiversityWeight float64

	// MaxSamples caps n_samples per call.  Default 50.
	MaxSamples int

	// Rand draws the per-sample uniform targets.  Must not be nil.
	Rand *rand.Rand

	Logger logging.Logger
}

const (
	defaultFeaturesPerTarget = 3
	defaultDiversityWeight   = 0.7
	defaultMaxSamples        = 50
)

// Service is the generation orchestrator.  It owns no model state itself;
// the sampler and recoverer carry the loaded artifacts.
type Service struct {
	sampler         FeatureSampler
	recoverer       StructureRecoverer
	propScaler      *material.MinMaxScaler
	featuresPerTgt  int
	diversityWeight float64
	maxSamples      int
	rng             *rand.Rand
	logger          logging.Logger
}

// NewService wires the orchestrator.  The property scaler must be fitted on
// exactly the supported property dimensions.
func NewService(sampler FeatureSampler, recoverer StructureRecoverer, propScaler *material.MinMaxScaler, opts Options) (*Service, error) {
	if sampler == nil {
		return nil, errors.New(errors.ErrCodeGenModelNotLoaded, "feature sampler is nil")
	}
	if recoverer == nil {
		return nil, errors.New(errors.ErrCodeGenModelNotLoaded, "structure recoverer is nil")
	}
	if propScaler == nil {
		return nil, errors.New(errors.ErrCodeGenModelNotLoaded, "property scaler is nil")
	}
	if err := propScaler.Validate(); err != nil {
		return nil, err
	}
	if propScaler.Dim() != material.PropertyDim {
		return nil, errors.Newf(errors.ErrCodeScalerDimMismatch,
			"property scaler fitted on %d columns, pipeline supports %d",
			propScaler.Dim(), material.PropertyDim)
	}
	if opts.Rand == nil {
		return nil, errors.New(errors.ErrCodeGenSamplerConfigError, "random source is nil")
	}

	s := &Service{
		sampler:         sampler,
		recoverer:       recoverer,
		propScaler:      propScaler,
		featuresPerTgt:  opts.FeaturesPerTarget,
		diversityWeight: opts.DiversityWeight,
		maxSamples:      opts.MaxSamples,
		rng:             opts.Rand,
		logger:          opts.Logger,
	}
	if s.featuresPerTgt <= 0 {
		s.featuresPerTgt = defaultFeaturesPerTarget
	}
	if s.diversityWeight == 0 {
		s.diversityWeight = defaultDiversityWeight
	}
	if s.maxSamples <= 0 {
		s.maxSamples = defaultMaxSamples
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	return s, nil
}

// GenerateMaterials produces up to nSamples candidate materials satisfying
// the constraints.  Per-sample failures (malformed range, empty recovery
// pool) skip that sample and the batch continues; the result can be shorter
// than nSamples and an empty result is not an error.  Output order follows
// request order with no placeholders for skipped samples.
func (s *Service) GenerateMaterials(ctx context.Context, constraints material.Constraints, nSamples int, temperature float64) ([]material.GeneratedMaterial, error) {
	if nSamples <= 0 || nSamples > s.maxSamples {
		return nil, errors.Newf(errors.ErrCodeGenConstraintInvalid,
			"n_samples %d outside [1, %d]", nSamples, s.maxSamples)
	}
	if temperature <= 0 {
		return nil, errors.Newf(errors.ErrCodeGenTemperatureInvalid,
			"temperature %g must be positive", temperature)
	}
	for _, name := range material.PropertyNames {
		if _, ok := constraints[name]; !ok {
			return nil, errors.Newf(errors.ErrCodeGenConstraintInvalid,
				"missing constraint for %q", name)
		}
	}

	// One uniform target draw per requested sample.  A malformed range
	// skips the sample rather than failing the batch.
	targets := make([]material.PropertyVector, 0, nSamples)
	for i := 0; i < nSamples; i++ {
		target, ok := s.drawTarget(constraints)
		if !ok {
			s.logger.Warn("skipping sample with malformed constraint range",
				logging.Int("sample", i))
			continue
		}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return []material.GeneratedMaterial{}, nil
	}

	rows := make([][]float64, len(targets))
	for i, t := range targets {
		rows[i] = t
	}
	normalized, err := s.propScaler.Transform(rows)
	if err != nil {
		return nil, err
	}

	results := make([]material.GeneratedMaterial, 0, len(targets))
	usedFormulas := make(map[string]struct{}, len(targets))
	for i, norm := range normalized {
		chosen, ok, err := s.generateOne(ctx, norm, temperature, usedFormulas)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn("recovery pool empty, skipping sample", logging.Int("sample", i))
			continue
		}
		usedFormulas[chosen.Formula] = struct{}{}
		chosen.TargetProperties = targets[i]
		results = append(results, chosen)
	}

	s.logger.Info("generation batch complete",
		logging.Int("requested", nSamples),
		logging.Int("produced", len(results)))
	return results, nil
}

// drawTarget samples each property uniformly within its constraint range.
// Degenerate ranges pin the property exactly.
func (s *Service) drawTarget(constraints material.Constraints) (material.PropertyVector, bool) {
	target := make(material.PropertyVector, material.PropertyDim)
	for j, name := range material.PropertyNames {
		r := constraints[name]
		if !r.Valid() {
			return nil, false
		}
		target[j] = r.Min + s.rng.Float64()*(r.Max-r.Min)
	}
	return target, true
}

// generateOne runs sampler and recovery for one normalized target and picks
// a candidate from the flattened pool.  The first candidate whose formula is
// new to the batch wins; if every formula is already used, the first pooled
// candidate is accepted so the batch does not come up short.
func (s *Service) generateOne(ctx context.Context, normTarget []float64, temperature float64, used map[string]struct{}) (material.GeneratedMaterial, bool, error) {
	features, err := s.sampler.Generate(normTarget, s.featuresPerTgt, temperature)
	if err != nil {
		return material.GeneratedMaterial{}, false, err
	}

	lists, err := s.recoverer.Recover(ctx, features, true, s.diversityWeight)
	if err != nil {
		return material.GeneratedMaterial{}, false, err
	}

	var pool []material.CandidateStructure
	for _, l := range lists {
		pool = append(pool, l...)
	}
	if len(pool) == 0 {
		return material.GeneratedMaterial{}, false, nil
	}

	chosen := pool[0]
	formula := chosen.Structure.ReducedFormula()
	for _, c := range pool {
		f := c.Structure.ReducedFormula()
		if _, taken := used[f]; !taken {
			chosen = c
			formula = f
			break
		}
	}

	return material.GeneratedMaterial{
		MaterialID: chosen.MaterialID,
		Structure:  chosen.Structure,
		Formula:    formula,
		Distance:   chosen.Distance,
	}, true, nil
}
