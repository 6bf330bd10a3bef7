package service

import (
	"fmt"
	"math"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"
)

// ForecastCorrector applies the learned multiplicative bias to a raw hourly
// forecast. It is a pure function of its input and the currently stored
// bias; it never mutates state.
type ForecastCorrector struct {
	store *BiasStore
}

func NewForecastCorrector(store *BiasStore) *ForecastCorrector {
	return &ForecastCorrector{store: store}
}

// Correct returns raw scaled by (1 + bias), clamped at zero. The input must
// be exactly 24 values; callers pad or truncate upstream.
func (c *ForecastCorrector) Correct(kind domain.ForecastKind, raw []float64) ([]float64, error) {
	if len(raw) != domain.ForecastHours {
		return nil, &domain.InvalidInputError{
			Reason: fmt.Sprintf("%s forecast has %d values, want %d", kind, len(raw), domain.ForecastHours),
		}
	}
	bias := c.store.bias(kind)
	corrected := make([]float64, len(raw))
	for i, v := range raw {
		corrected[i] = math.Max(v*(1+bias), 0.0)
	}
	return corrected, nil
}

// PadHourly normalizes a sample sequence to n values. Short sequences are
// padded with zeros at the front so the most recent samples occupy the
// tail; long sequences keep their last n values.
func PadHourly(values []float64, n int) []float64 {
	if len(values) >= n {
		return append([]float64(nil), values[len(values)-n:]...)
	}
	out := make([]float64, n)
	copy(out[n-len(values):], values)
	return out
}

// TruncateHourly normalizes a forecast sequence to n values. Long sequences
// keep their first n values (nearest hours); short sequences get zero
// entries appended for the unknown future hours.
func TruncateHourly(values []float64, n int) []float64 {
	if len(values) >= n {
		return append([]float64(nil), values[:n]...)
	}
	out := make([]float64, n)
	copy(out, values)
	return out
}
