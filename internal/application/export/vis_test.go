package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
)

func TestStructureToVisData(t *testing.T) {
	m := cubicMaterial()
	vd := StructureToVisData(&m.Structure)

	assert.Equal(t, "ClNa", vd.Formula)
	assert.Equal(t, []string{"Na", "Cl"}, vd.Atoms)
	require.Len(t, vd.Positions, 2)
	assert.Equal(t, [3]float64{2.5, 2.5, 2.5}, vd.Positions[1])

	assert.InDelta(t, 5, vd.LatticeParameters.A, 1e-12)
	assert.InDelta(t, 5, vd.LatticeParameters.B, 1e-12)
	assert.InDelta(t, 5, vd.LatticeParameters.C, 1e-12)
	assert.InDelta(t, 90, vd.LatticeParameters.Alpha, 1e-9)
	assert.InDelta(t, 90, vd.LatticeParameters.Beta, 1e-9)
	assert.InDelta(t, 90, vd.LatticeParameters.Gamma, 1e-9)
	assert.Equal(t, m.Structure.Lattice.Matrix, vd.LatticeVectors)
}

func TestVisualizationDataWithoutStructures(t *testing.T) {
	out := VisualizationData([]material.GeneratedMaterial{cubicMaterial()}, false)
	require.Len(t, out, 1)
	assert.Equal(t, "ClNa", out[0].Formula)
	assert.Equal(t, "mp-22862", out[0].MaterialID)
	assert.Nil(t, out[0].StructureData)
}

func TestVisualizationDataWithStructures(t *testing.T) {
	out := VisualizationData([]material.GeneratedMaterial{cubicMaterial()}, true)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].StructureData)
	assert.Equal(t, []string{"Na", "Cl"}, out[0].StructureData.Atoms)
}
