package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScaler() *MinMaxScaler {
	return &MinMaxScaler{
		DataMin:  []float64{0, -5, 10},
		DataMax:  []float64{10, 5, 400},
		RangeMin: 0,
		RangeMax: 1,
	}
}

func TestScalerValidate(t *testing.T) {
	s := newTestScaler()
	assert.NoError(t, s.Validate())

	bad := &MinMaxScaler{DataMin: []float64{0}, DataMax: []float64{1, 2}, RangeMax: 1}
	assert.Error(t, bad.Validate())

	empty := &MinMaxScaler{RangeMax: 1}
	assert.Error(t, empty.Validate())

	flat := &MinMaxScaler{DataMin: []float64{0}, DataMax: []float64{1}, RangeMin: 1, RangeMax: 1}
	assert.Error(t, flat.Validate())
}

func TestTransformMapsOntoRange(t *testing.T) {
	s := newTestScaler()
	out, err := s.Transform([][]float64{{0, -5, 10}, {10, 5, 400}})
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		assert.InDelta(t, 0, out[0][j], 1e-12)
		assert.InDelta(t, 1, out[1][j], 1e-12)
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestScaler()
	rows := [][]float64{
		{1.3, -2.2, 117.5},
		{9.9, 4.4, 42.0},
		{5.0, 0.0, 399.0},
	}
	norm, err := s.Transform(rows)
	require.NoError(t, err)
	back, err := s.InverseTransform(norm)
	require.NoError(t, err)
	for i := range rows {
		for j := range rows[i] {
			assert.InDelta(t, rows[i][j], back[i][j], 1e-9)
		}
	}
}

func TestTransformDimensionMismatch(t *testing.T) {
	s := newTestScaler()
	_, err := s.Transform([][]float64{{1, 2}})
	assert.Error(t, err)

	_, err = s.InverseTransform([][]float64{{1, 2, 3, 4}})
	assert.Error(t, err)
}

func TestConstantColumnDoesNotDivideByZero(t *testing.T) {
	s := &MinMaxScaler{
		DataMin:  []float64{5},
		DataMax:  []float64{5},
		RangeMin: 0,
		RangeMax: 1,
	}
	out, err := s.Transform([][]float64{{5}})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0][0], 1e-12)
}

func TestConstraintsValidate(t *testing.T) {
	c := Constraints{
		"band_gap":         {Min: 1, Max: 2},
		"formation_energy": {Min: -2, Max: -0.1},
		"bulk_modulus":     {Min: 50, Max: 200},
	}
	assert.NoError(t, c.Validate())

	delete(c, "bulk_modulus")
	assert.Error(t, c.Validate())

	c["bulk_modulus"] = Range{Min: 200, Max: 50}
	assert.Error(t, c.Validate())

	c["bulk_modulus"] = Range{Min: 100, Max: 100} // degenerate is fine
	assert.NoError(t, c.Validate())
}
