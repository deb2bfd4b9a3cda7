package constraint_gpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
)

func TestExtractConstraintsFromAssignment(t *testing.T) {
	response := `Here is the result:
constraints = {
    'band_gap': {'min': 1.5, 'max': 2.0},
    'bulk_modulus': {'min': 100, 'max': 300}
}`
	c, ok := ExtractConstraints(response)
	require.True(t, ok)
	assert.Equal(t, material.Range{Min: 1.5, Max: 2.0}, c["band_gap"])
	assert.Equal(t, material.Range{Min: 100, Max: 300}, c["bulk_modulus"])
	assert.NotContains(t, c, "formation_energy")
}

func TestExtractConstraintsFromBareDict(t *testing.T) {
	response := `{'formation_energy': {'min': -1.2, 'max': -0.3}}`
	c, ok := ExtractConstraints(response)
	require.True(t, ok)
	assert.Equal(t, material.Range{Min: -1.2, Max: -0.3}, c["formation_energy"])
}

func TestExtractConstraintsRepairsPythonSyntax(t *testing.T) {
	// Unquoted keys, Python literals, and a trailing comma.
	response := `constraints = {band_gap: {min: 1.0, max: None}, bulk_modulus: {min: 50, max: 200,},}`
	c, ok := ExtractConstraints(response)
	require.True(t, ok)
	// band_gap has a null bound and is dropped; bulk_modulus survives.
	assert.NotContains(t, c, "band_gap")
	assert.Equal(t, material.Range{Min: 50, Max: 200}, c["bulk_modulus"])
}

func TestExtractConstraintsIgnoresUnsupportedProperties(t *testing.T) {
	response := `{'density': {'min': 1, 'max': 5}, 'band_gap': {'min': 0.5, 'max': 1.5}}`
	c, ok := ExtractConstraints(response)
	require.True(t, ok)
	assert.Len(t, c, 1)
	assert.Contains(t, c, "band_gap")
}

func TestExtractConstraintsNoDict(t *testing.T) {
	_, ok := ExtractConstraints("I am sorry, I cannot help with that.")
	assert.False(t, ok)

	_, ok = ExtractConstraints("{broken json")
	assert.False(t, ok)

	_, ok = ExtractConstraints(`{'density': {'min': 1, 'max': 5}}`)
	assert.False(t, ok)
}

func TestRuleBasedBandGapRange(t *testing.T) {
	c := RuleBasedConstraints("Find a material with a band gap of 1.5 to 2.0 eV")
	require.Contains(t, c, "band_gap")
	assert.Equal(t, material.Range{Min: 1.5, Max: 2.0}, c["band_gap"])
}

func TestRuleBasedBandGapBounds(t *testing.T) {
	c := RuleBasedConstraints("semiconductor with bandgap greater than 1.2 eV")
	require.Contains(t, c, "band_gap")
	assert.InDelta(t, 1.2, c["band_gap"].Min, 1e-12)
	assert.InDelta(t, 2.5, c["band_gap"].Max, 1e-12) // default upper bound kept

	c = RuleBasedConstraints("band gap less than 1.0 eV")
	assert.InDelta(t, 0.5, c["band_gap"].Min, 1e-12)
	assert.InDelta(t, 1.0, c["band_gap"].Max, 1e-12)
}

func TestRuleBasedBandGapExact(t *testing.T) {
	c := RuleBasedConstraints("material with band gap exactly 1.1 eV")
	require.Contains(t, c, "band_gap")
	assert.Equal(t, material.Range{Min: 1.1, Max: 1.1}, c["band_gap"])
}

func TestRuleBasedKeywordDefaults(t *testing.T) {
	c := RuleBasedConstraints("stable material with low formation energy and high stiffness")
	assert.Equal(t, defaultRanges["formation_energy"], c["formation_energy"])
	assert.Equal(t, defaultRanges["bulk_modulus"], c["bulk_modulus"])
	assert.NotContains(t, c, "band_gap")
}

func TestRuleBasedNoKeywords(t *testing.T) {
	c := RuleBasedConstraints("find me something interesting")
	assert.Empty(t, c)
}

func TestPrepareConstraintsFillsDefaults(t *testing.T) {
	partial := material.Constraints{
		"band_gap": {Min: 1.0, Max: 1.5},
	}
	full := PrepareConstraints(partial)

	assert.Equal(t, material.Range{Min: 1.0, Max: 1.5}, full["band_gap"])
	assert.Equal(t, material.Range{Min: -2.0, Max: -0.1}, full["formation_energy"])
	assert.Equal(t, material.Range{Min: 50, Max: 200}, full["bulk_modulus"])
	assert.NoError(t, full.Validate())
}

func TestPrepareConstraintsFromEmpty(t *testing.T) {
	full := PrepareConstraints(nil)
	assert.NoError(t, full.Validate())
	assert.Equal(t, defaultRanges["band_gap"], full["band_gap"])
}
