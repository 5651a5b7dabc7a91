package core

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// Range is a closed numeric interval used as a normalization target for
// bias magnitudes.
type Range struct {
	Low  float64
	High float64
}

// SymmetricRange returns the interval [-v, v] for the magnitude of v.
func SymmetricRange(v float64) Range {
	v = math.Abs(v)
	return Range{Low: -v, High: v}
}

// Validate checks that the interval is ordered.
func (r Range) Validate() error {
	if r.Low > r.High {
		return fmt.Errorf("range low %v must not exceed high %v", r.Low, r.High)
	}
	return nil
}

// ParseRange interprets a loosely-typed range value. A single number v is the
// symmetric bound [-|v|, |v|]; a two-element sequence is taken as [low, high].
func ParseRange(value any) (Range, error) {
	switch v := value.(type) {
	case Range:
		return v, v.Validate()
	case *Range:
		if v == nil {
			return Range{}, fmt.Errorf("range cannot be nil")
		}
		return *v, v.Validate()
	}

	if f, err := cast.ToFloat64E(value); err == nil {
		return SymmetricRange(f), nil
	}

	seq, err := cast.ToSliceE(value)
	if err != nil {
		// one more chance: typed float slices don't coerce via ToSliceE
		if fs, ferr := cast.ToFloat64SliceE(value); ferr == nil {
			return rangeFromFloats(fs)
		}
		return Range{}, fmt.Errorf("cannot interpret %v as a range: %w", value, err)
	}
	fs := make([]float64, 0, len(seq))
	for _, e := range seq {
		f, err := cast.ToFloat64E(e)
		if err != nil {
			return Range{}, fmt.Errorf("range element %v is not numeric: %w", e, err)
		}
		fs = append(fs, f)
	}
	return rangeFromFloats(fs)
}

func rangeFromFloats(fs []float64) (Range, error) {
	switch len(fs) {
	case 1:
		return SymmetricRange(fs[0]), nil
	case 2:
		r := Range{Low: fs[0], High: fs[1]}
		return r, r.Validate()
	default:
		return Range{}, fmt.Errorf("range must have one or two elements, got %d", len(fs))
	}
}
