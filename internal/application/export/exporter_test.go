package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
)

// cubicMaterial is an NaCl-like rock-salt toy cell with a 5 Å cubic lattice.
func cubicMaterial() material.GeneratedMaterial {
	return material.GeneratedMaterial{
		MaterialID:       "mp-22862",
		Formula:          "ClNa",
		TargetProperties: material.PropertyVector{1.2, -1.5, 120},
		Distance:         0.05,
		Structure: material.Structure{
			Lattice: material.Lattice{Matrix: [3][3]float64{
				{5, 0, 0},
				{0, 5, 0},
				{0, 0, 5},
			}},
			Sites: []material.Site{
				{Element: "Na", Occupancy: 1, Coords: [3]float64{0, 0, 0}},
				{Element: "Cl", Occupancy: 1, Coords: [3]float64{2.5, 2.5, 2.5}},
			},
		},
	}
}

func TestExportCIF(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, nil)
	require.NoError(t, err)

	files, err := e.Export([]material.GeneratedMaterial{cubicMaterial()}, []string{FormatCIF})
	require.NoError(t, err)

	require.Contains(t, files, "ClNa")
	cifPath := files["ClNa"][FormatCIF]
	require.NotEmpty(t, cifPath)

	data, err := os.ReadFile(cifPath)
	require.NoError(t, err)
	cif := string(data)

	assert.Contains(t, cif, "data_ClNa")
	assert.Contains(t, cif, "_cell_length_a   5.000000")
	assert.Contains(t, cif, "_cell_angle_gamma   90.000000")
	// Cl at the cell center has fractional coords 0.5 0.5 0.5.
	assert.Contains(t, cif, "Cl  Cl1  1.0000  0.500000  0.500000  0.500000")
}

func TestExportXYZ(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, nil)
	require.NoError(t, err)

	files, err := e.Export([]material.GeneratedMaterial{cubicMaterial()}, []string{FormatXYZ})
	require.NoError(t, err)

	data, err := os.ReadFile(files["ClNa"][FormatXYZ])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "ClNa", lines[1])
	assert.Equal(t, "Na 0.000000 0.000000 0.000000", lines[2])
	assert.Equal(t, "Cl 2.500000 2.500000 2.500000", lines[3])
}

func TestExportPropertiesSidecar(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, nil)
	require.NoError(t, err)

	files, err := e.Export([]material.GeneratedMaterial{cubicMaterial()}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(files["ClNa"]["properties_json"])
	require.NoError(t, err)

	var props map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &props))
	assert.Equal(t, "ClNa", props["formula"])
	assert.Equal(t, "mp-22862", props["material_id"])
	assert.InDelta(t, 1.2, props["band_gap"].(float64), 1e-12)
	assert.InDelta(t, -1.5, props["formation_energy"].(float64), 1e-12)
	assert.InDelta(t, 120.0, props["bulk_modulus"].(float64), 1e-12)
}

func TestExportSkipsDegenerateLattice(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, nil)
	require.NoError(t, err)

	broken := cubicMaterial()
	broken.Structure.Lattice = material.Lattice{} // zero volume

	files, err := e.Export([]material.GeneratedMaterial{broken}, []string{FormatCIF, FormatXYZ})
	require.NoError(t, err)

	// CIF needs fractional coordinates and fails; XYZ is Cartesian and
	// still exports.
	assert.NotContains(t, files["ClNa"], FormatCIF)
	assert.Contains(t, files["ClNa"], FormatXYZ)
}

func TestExportUnsupportedFormatIgnored(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, nil)
	require.NoError(t, err)

	files, err := e.Export([]material.GeneratedMaterial{cubicMaterial()}, []string{"poscar"})
	require.NoError(t, err)
	assert.NotContains(t, files["ClNa"], "poscar")
	assert.Contains(t, files["ClNa"], "properties_json")
}
