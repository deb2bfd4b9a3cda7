// Package material defines the domain model for the material-generation
// pipeline: crystal structures, catalog entries, property vectors, and the
// invertible scalers that map between real-world units and the normalized
// space the generative model operates in.
package material

import (
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Property indices within a PropertyVector.  The pipeline conditions
// generation on exactly these three physical properties, in this order.
const (
	PropBandGap = iota
	PropFormationEnergy
	PropBulkModulus

	// PropertyDim is the fixed dimensionality of every PropertyVector.
	PropertyDim = 3
)

// PropertyNames lists the canonical constraint keys, index-aligned with the
// Prop* constants.
var PropertyNames = [PropertyDim]string{"band_gap", "formation_energy", "bulk_modulus"}

// PropertyVector is a fixed-length vector of target physical properties.
// Instances exist in either real units or normalized units; callers must
// track which space a given instance is in.
type PropertyVector []float64

// FeatureVector is a fixed-length descriptor encoding of a material in
// normalized [0,1] space.  Immutable once produced.
type FeatureVector []float64

// Lattice holds the three translation vectors of a periodic cell, row-major.
type Lattice struct {
	Matrix [3][3]float64 `json:"matrix"`
}

// Site is one atomic site in a structure.
type Site struct {
	// Element is the chemical symbol, e.g. "Si".
	Element string `json:"element"`
	// Occupancy is the site occupancy fraction, 1.0 for ordered structures.
	Occupancy float64 `json:"occupancy"`
	// Coords are Cartesian coordinates in Å.
	Coords [3]float64 `json:"coords"`
}

// Structure is a periodic crystal structure: a lattice plus decorated sites.
// Treated as an opaque, serializable record by the generation pipeline; only
// the composition-derived reduced formula is interpreted.
type Structure struct {
	Lattice Lattice `json:"lattice"`
	Sites   []Site  `json:"sites"`
}

// Validate checks that the structure has at least one site and that every
// site carries a chemical symbol.
func (s *Structure) Validate() error {
	if len(s.Sites) == 0 {
		return errors.New(errors.ErrCodeStructureInvalid, "structure has no sites")
	}
	for i, site := range s.Sites {
		if site.Element == "" {
			return errors.Newf(errors.ErrCodeStructureInvalid, "site %d has no element", i)
		}
	}
	return nil
}

// Material is one immutable entry of the reference catalog.
type Material struct {
	MaterialID             string    `json:"material_id"`
	Structure              Structure `json:"structure"`
	BandGap                float64   `json:"band_gap"`
	FormationEnergyPerAtom float64   `json:"formation_energy_per_atom"`
	EnergyAboveHull        float64   `json:"energy_above_hull"`
}

// CandidateStructure is a scored recovery result.  Distance is the Euclidean
// distance in descaled feature space between the generated feature vector and
// the catalog entry's feature vector; lower is a closer match.
type CandidateStructure struct {
	Structure  Structure `json:"structure"`
	Distance   float64   `json:"distance"`
	MaterialID string    `json:"material_id"`
}

// GeneratedMaterial is the orchestrator's final output unit for one requested
// sample.  TargetProperties are in real units.
type GeneratedMaterial struct {
	TargetProperties PropertyVector `json:"target_properties"`
	MaterialID       string         `json:"material_id"`
	Structure        Structure      `json:"structure"`
	Formula          string         `json:"formula"`
	Distance         float64        `json:"distance"`
}

// Range is an inclusive [Min, Max] bound on one property, in real units.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether the bound is well-formed.  Degenerate ranges
// (Min == Max) are valid and pin the property exactly.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

// Constraints maps canonical property names to their requested bounds.
// The core requires bounds for all three supported properties; defaulting of
// missing properties is the caller's responsibility.
type Constraints map[string]Range

// Validate checks that all three supported properties are bounded and
// well-formed.
func (c Constraints) Validate() error {
	for _, name := range PropertyNames {
		r, ok := c[name]
		if !ok {
			return errors.Newf(errors.ErrCodeGenConstraintInvalid, "missing constraint for %q", name)
		}
		if !r.Valid() {
			return errors.Newf(errors.ErrCodeGenConstraintInvalid, "constraint for %q has min > max", name)
		}
	}
	return nil
}
