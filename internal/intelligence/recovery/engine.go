package recovery

import (
	"context"
	"math/rand"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Scan windows and result bound for the two recovery modes.
const (
	multiScanWindow  = 15
	singleScanWindow = 10
	maxCandidates    = 5
)

// Options configures an Engine beyond its index and catalog.
type Options struct {
	// FeatureScaler, when set, inverse-transforms generated features into
	// the real-valued space the catalog was indexed in before querying.
	FeatureScaler *material.MinMaxScaler

	// Neighbors is the k used for every index query.  Must not exceed the
	// catalog size.  Zero selects min(15, catalog size).
	Neighbors int

	// Rand drives the probabilistic accept/reject branch of the diversity
	// policy.  A seeded source makes recovery reproducible.  Must not be
	// nil.
	Rand *rand.Rand

	// MemoryCap overrides the diversity-history bound; zero keeps the
	// default of 20.
	MemoryCap int

	Logger logging.Logger
}

// Engine recovers real catalog structures for generated feature vectors.
// The catalog, formulas, and index are immutable after construction; the
// diversity memory is the only mutable state and serializes itself.
type Engine struct {
	index    NeighborIndex
	catalog  []material.Material
	formulas []string
	scaler   *material.MinMaxScaler
	k        int
	rng      *rand.Rand
	memory   *DiversityMemory
	logger   logging.Logger
}

// NewEngine validates the catalog against the index and precomputes the
// reduced formula of every catalog entry.  A k beyond the catalog size is a
// configuration error here, never a per-call one.
func NewEngine(index NeighborIndex, catalog []material.Material, opts Options) (*Engine, error) {
	if index == nil {
		return nil, errors.New(errors.ErrCodeGenIndexConfigInvalid, "neighbor index is nil")
	}
	if len(catalog) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "catalog has no entries")
	}
	if index.Size() != len(catalog) {
		return nil, errors.Newf(errors.ErrCodeCatalogInconsistent,
			"index covers %d rows but catalog has %d entries", index.Size(), len(catalog))
	}
	if opts.Rand == nil {
		return nil, errors.New(errors.ErrCodeGenIndexConfigInvalid, "random source is nil")
	}

	k := opts.Neighbors
	if k == 0 {
		k = multiScanWindow
		if k > len(catalog) {
			k = len(catalog)
		}
	}
	if k < 0 || k > len(catalog) {
		return nil, errors.Newf(errors.ErrCodeGenIndexConfigInvalid,
			"n_neighbors=%d out of range for catalog of %d entries", k, len(catalog))
	}

	formulas := make([]string, len(catalog))
	for i := range catalog {
		formulas[i] = catalog[i].Structure.ReducedFormula()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Engine{
		index:    index,
		catalog:  catalog,
		formulas: formulas,
		scaler:   opts.FeatureScaler,
		k:        k,
		rng:      opts.Rand,
		memory:   NewDiversityMemory(opts.MemoryCap),
		logger:   logger,
	}, nil
}

// Memory exposes the diversity history for inspection.
func (e *Engine) Memory() *DiversityMemory {
	return e.memory
}

// Recover maps each generated feature vector onto catalog candidates.
//
// In multi-candidate mode each inner slice holds up to 5 candidates built in
// two passes over the nearest neighbors: first-come distinct formulas, then a
// positional fill that permits repeats.  In single-candidate mode each inner
// slice holds exactly one candidate chosen under the diversity policy, and
// the chosen formula is recorded in the engine's history.
//
// An empty feature batch returns an empty result without touching the index.
func (e *Engine) Recover(ctx context.Context, features [][]float64, returnMultiple bool, diversityWeight float64) ([][]material.CandidateStructure, error) {
	if diversityWeight < 0 || diversityWeight > 1 {
		return nil, errors.Newf(errors.ErrCodeGenRecoveryFailed,
			"diversity_weight %g outside [0,1]", diversityWeight)
	}
	if len(features) == 0 {
		return [][]material.CandidateStructure{}, nil
	}

	queries := features
	if e.scaler != nil {
		denorm, err := e.scaler.InverseTransform(features)
		if err != nil {
			return nil, err
		}
		queries = denorm
	}

	neighbors, err := e.index.Query(ctx, queries, e.k)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenRecoveryFailed, "neighbor query")
	}

	out := make([][]material.CandidateStructure, len(neighbors))
	for i, nn := range neighbors {
		if returnMultiple {
			out[i] = e.multiCandidates(nn)
		} else {
			out[i] = []material.CandidateStructure{e.singleCandidate(nn, diversityWeight)}
		}
	}
	return out, nil
}

// multiCandidates builds up to maxCandidates candidates from a neighbor
// list.  Pass one keeps the first occurrence of each distinct formula; if
// that yields fewer than maxCandidates, pass two walks the first
// maxCandidates neighbors by position and appends those whose position is
// not already covered, repeats allowed.
func (e *Engine) multiCandidates(nn []Neighbor) []material.CandidateStructure {
	window := multiScanWindow
	if window > len(nn) {
		window = len(nn)
	}

	candidates := make([]material.CandidateStructure, 0, maxCandidates)
	seen := make(map[string]struct{}, maxCandidates)
	for _, n := range nn[:window] {
		f := e.formulas[n.Index]
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		candidates = append(candidates, e.candidateAt(n))
		if len(candidates) >= maxCandidates {
			break
		}
	}

	if len(candidates) < maxCandidates {
		fill := maxCandidates
		if fill > len(nn) {
			fill = len(nn)
		}
		for j := 0; j < fill; j++ {
			if j < len(candidates) {
				continue
			}
			candidates = append(candidates, e.candidateAt(nn[j]))
		}
	}
	return candidates
}

// singleCandidate applies the diversity policy over the nearest neighbors.
// A formula absent from the history is accepted outright; a remembered one
// is accepted with probability 1-diversityWeight.  When nothing in the scan
// window is accepted, the globally nearest neighbor wins.
func (e *Engine) singleCandidate(nn []Neighbor, diversityWeight float64) material.CandidateStructure {
	window := singleScanWindow
	if window > len(nn) {
		window = len(nn)
	}

	chosen := nn[0]
	for _, n := range nn[:window] {
		f := e.formulas[n.Index]
		if !e.memory.Contains(f) || e.rng.Float64() > diversityWeight {
			chosen = n
			break
		}
	}

	e.memory.Remember(e.formulas[chosen.Index])
	return e.candidateAt(chosen)
}

func (e *Engine) candidateAt(n Neighbor) material.CandidateStructure {
	entry := &e.catalog[n.Index]
	return material.CandidateStructure{
		Structure:  entry.Structure,
		Distance:   n.Distance,
		MaterialID: entry.MaterialID,
	}
}

// FormulaAt returns the precomputed reduced formula of a catalog row.
func (e *Engine) FormulaAt(i int) string {
	return e.formulas[i]
}
