package export

import (
	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
)

// LatticeParameters are the six scalar cell parameters.
type LatticeParameters struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	C     float64 `json:"c"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// StructureVisData is the 3D-viewer payload for one structure.
type StructureVisData struct {
	Formula           string            `json:"formula"`
	Atoms             []string          `json:"atoms"`
	Positions         [][3]float64      `json:"positions"`
	LatticeParameters LatticeParameters `json:"lattice_parameters"`
	LatticeVectors    [3][3]float64     `json:"lattice_vectors"`
}

// MaterialVisData pairs the generation metadata with optional structure
// geometry.
type MaterialVisData struct {
	MaterialID       string                  `json:"material_id"`
	Formula          string                  `json:"formula"`
	TargetProperties material.PropertyVector `json:"target_properties"`
	Distance         float64                 `json:"distance"`
	StructureData    *StructureVisData       `json:"structure_data,omitempty"`
}

// StructureToVisData converts a structure into viewer geometry.
func StructureToVisData(s *material.Structure) StructureVisData {
	a, b, c := s.Lattice.Lengths()
	alpha, beta, gamma := s.Lattice.Angles()

	atoms := make([]string, len(s.Sites))
	positions := make([][3]float64, len(s.Sites))
	for i, site := range s.Sites {
		atoms[i] = site.Element
		positions[i] = site.Coords
	}

	return StructureVisData{
		Formula:   s.ReducedFormula(),
		Atoms:     atoms,
		Positions: positions,
		LatticeParameters: LatticeParameters{
			A: a, B: b, C: c,
			Alpha: alpha, Beta: beta, Gamma: gamma,
		},
		LatticeVectors: s.Lattice.Matrix,
	}
}

// VisualizationData builds the viewer payload for a generated batch.
// Structure geometry is included only when includeStructures is set; the
// list payload stays small without it.
func VisualizationData(materials []material.GeneratedMaterial, includeStructures bool) []MaterialVisData {
	out := make([]MaterialVisData, len(materials))
	for i := range materials {
		m := &materials[i]
		out[i] = MaterialVisData{
			MaterialID:       m.MaterialID,
			Formula:          m.Formula,
			TargetProperties: m.TargetProperties,
			Distance:         m.Distance,
		}
		if includeStructures {
			sd := StructureToVisData(&m.Structure)
			out[i].StructureData = &sd
		}
	}
	return out
}
