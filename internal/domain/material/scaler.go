package material

import (
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// MinMaxScaler maps column values linearly from [DataMin_j, DataMax_j] onto
// [RangeMin, RangeMax] (normally [0, 1]) and back.  The parameters are fitted
// offline during training and loaded as an artifact; at inference time the
// scaler is a pure, invertible function.
type MinMaxScaler struct {
	DataMin  []float64 `json:"data_min"`
	DataMax  []float64 `json:"data_max"`
	RangeMin float64   `json:"range_min"`
	RangeMax float64   `json:"range_max"`
}

// Dim returns the number of columns the scaler was fitted on.
func (s *MinMaxScaler) Dim() int {
	return len(s.DataMin)
}

// Validate checks parameter consistency.  A scaler with mismatched or empty
// parameter vectors is a construction-time fatal error, not a per-call one.
func (s *MinMaxScaler) Validate() error {
	if len(s.DataMin) == 0 {
		return errors.New(errors.ErrCodeScalerDimMismatch, "scaler has no fitted columns")
	}
	if len(s.DataMin) != len(s.DataMax) {
		return errors.Newf(errors.ErrCodeScalerDimMismatch,
			"data_min has %d columns, data_max has %d", len(s.DataMin), len(s.DataMax))
	}
	if s.RangeMax <= s.RangeMin {
		return errors.New(errors.ErrCodeScalerDimMismatch, "range_max must exceed range_min")
	}
	return nil
}

// span returns the column span, substituting 1 for constant columns so that
// transform/inverse remain well-defined (sklearn convention).
func (s *MinMaxScaler) span(j int) float64 {
	d := s.DataMax[j] - s.DataMin[j]
	if d == 0 {
		return 1
	}
	return d
}

// Transform maps rows from real units into normalized space.
func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	scale := s.RangeMax - s.RangeMin
	for i, row := range rows {
		if len(row) != s.Dim() {
			return nil, errors.Newf(errors.ErrCodeScalerDimMismatch,
				"row %d has %d columns, scaler expects %d", i, len(row), s.Dim())
		}
		o := make([]float64, len(row))
		for j, v := range row {
			o[j] = (v-s.DataMin[j])/s.span(j)*scale + s.RangeMin
		}
		out[i] = o
	}
	return out, nil
}

// InverseTransform maps rows from normalized space back into real units.
// InverseTransform(Transform(x)) == x within floating-point tolerance.
func (s *MinMaxScaler) InverseTransform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	scale := s.RangeMax - s.RangeMin
	for i, row := range rows {
		if len(row) != s.Dim() {
			return nil, errors.Newf(errors.ErrCodeScalerDimMismatch,
				"row %d has %d columns, scaler expects %d", i, len(row), s.Dim())
		}
		o := make([]float64, len(row))
		for j, v := range row {
			o[j] = (v-s.RangeMin)/scale*s.span(j) + s.DataMin[j]
		}
		out[i] = o
	}
	return out, nil
}
