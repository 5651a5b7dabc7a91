package composites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cast"

	"github.com/annealkit/preprocessing/internal/logging"
	"github.com/annealkit/preprocessing/internal/metrics"
	"github.com/annealkit/preprocessing/pkg/core"
	"github.com/annealkit/preprocessing/pkg/solver"
)

// Option keys consumed by the ScalingComposite. Anything else in the params
// map is forwarded to the child sampler.
const (
	// ParamScalar overrides range normalization with an explicit factor.
	ParamScalar = "scalar"
	// ParamBiasRange bounds the linear biases (and the quadratic biases when
	// no quadratic range is given). Defaults to the symmetric range [-1, 1].
	ParamBiasRange = "bias_range"
	// ParamQuadraticRange bounds the quadratic biases.
	ParamQuadraticRange = "quadratic_range"
	// ParamIgnoredVariables lists variables whose linear biases stay untouched.
	ParamIgnoredVariables = "ignored_variables"
	// ParamIgnoredInteractions lists interactions whose quadratic biases stay
	// untouched. Pair order does not matter.
	ParamIgnoredInteractions = "ignored_interactions"
	// ParamIgnoreOffset excludes the offset from scaling.
	ParamIgnoreOffset = "ignore_offset"
)

// InfoScalar is the metadata key under which the applied scalar is recorded.
const InfoScalar = "scalar"

// ErrZeroScalar is returned when the effective scalar resolves to zero, e.g.
// when every included bias is already zero and a range anchored at zero is
// requested.
var ErrZeroScalar = errors.New("scalar must be non-zero")

// ScalingComposite scales a problem before delegating to its child sampler
// and corrects the returned energies back to the original scale.
type ScalingComposite struct {
	children []solver.Sampler
}

var _ solver.Composite = (*ScalingComposite)(nil)

// NewScalingComposite creates a scaling composite around one child sampler.
func NewScalingComposite(child solver.Sampler) (*ScalingComposite, error) {
	if child == nil {
		return nil, fmt.Errorf("child sampler cannot be nil")
	}
	return &ScalingComposite{children: []solver.Sampler{child}}, nil
}

// Children implements solver.Composite.
func (c *ScalingComposite) Children() []solver.Sampler { return c.children }

// Child implements solver.Composite.
func (c *ScalingComposite) Child() solver.Sampler { return c.children[0] }

// Parameters implements solver.Sampler: the child's parameters merged with
// the scaling options.
func (c *ScalingComposite) Parameters() map[string][]string {
	params := make(map[string][]string)
	for k, v := range c.Child().Parameters() {
		params[k] = v
	}
	for _, k := range []string{
		ParamScalar,
		ParamBiasRange,
		ParamQuadraticRange,
		ParamIgnoredVariables,
		ParamIgnoredInteractions,
		ParamIgnoreOffset,
	} {
		params[k] = []string{}
	}
	return params
}

// Properties implements solver.Sampler.
func (c *ScalingComposite) Properties() map[string]any {
	return map[string]any{"child_properties": c.Child().Properties()}
}

// Sample scales a private copy of the model, forwards it to the child, and
// returns the child's sample set with an energy-correction hook attached.
//
// The returned set may still be pending; the correction runs exactly once,
// on first forced access, before any caller-visible energy read. Without
// exclusions the corrected energy is the scaled energy divided by the
// scalar; with exclusions the uniform-scaling identity does not hold and
// every assignment is re-evaluated against the original model.
func (c *ScalingComposite) Sample(ctx context.Context, bqm *core.BQM, params solver.Params) (*core.SampleSet, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if bqm == nil {
		return nil, fmt.Errorf("bqm cannot be nil")
	}
	if params == nil {
		params = solver.Params{}
	} else {
		params = params.Clone()
	}

	opts, err := popScaleOptions(params)
	if err != nil {
		return nil, err
	}

	original := bqm
	scaled := bqm.Copy()

	// all scaling options are popped up front; only child options are
	// forwarded, whichever branch runs
	rawScalar, hasScalar := params.Pop(ParamScalar)
	rawBias, hasBias := params.Pop(ParamBiasRange)
	rawQuad, hasQuad := params.Pop(ParamQuadraticRange)

	var scalar float64
	mode := metrics.ModeNormalized
	if hasScalar && rawScalar != nil {
		scalar, err = cast.ToFloat64E(rawScalar)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", ParamScalar, err)
		}
		scaled.Scale(scalar, opts)
		mode = metrics.ModeExplicit
	} else {
		biasRange := core.SymmetricRange(1)
		if hasBias && rawBias != nil {
			biasRange, err = core.ParseRange(rawBias)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", ParamBiasRange, err)
			}
		}
		var quadraticRange *core.Range
		if hasQuad && rawQuad != nil {
			r, err := core.ParseRange(rawQuad)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", ParamQuadraticRange, err)
			}
			quadraticRange = &r
		}
		scalar = scaled.Normalize(biasRange, quadraticRange, opts)
	}

	if scalar == 0 {
		metrics.ScalarRejections.Inc()
		return nil, ErrZeroScalar
	}

	ss, err := c.Child().Sample(ctx, scaled, params)
	if err != nil {
		return nil, err
	}
	metrics.SamplesSubmitted.WithLabelValues(mode).Inc()

	uniform := opts.Empty()
	ss.OnResolve(func(records []core.Record, info map[string]any) error {
		start := time.Now()
		defer func() {
			metrics.ResolveDuration.Observe(time.Since(start).Seconds())
		}()

		if uniform {
			inv := 1 / scalar
			for i := range records {
				records[i].Energy *= inv
			}
		} else {
			for i := range records {
				energy, err := original.Energy(records[i].Sample)
				if err != nil {
					return fmt.Errorf("re-evaluating record %d: %w", i, err)
				}
				records[i].Energy = energy
			}
		}
		info[InfoScalar] = scalar
		return nil
	})

	logger.V(logging.DEBUG).Info("submitted scaled problem",
		"sampleset", ss.ID(),
		"scalar", scalar,
		"mode", mode,
		"uniform", uniform)

	return ss, nil
}

// popScaleOptions removes the exclusion options from params.
func popScaleOptions(params solver.Params) (core.ScaleOptions, error) {
	var opts core.ScaleOptions

	vars, err := params.Strings(ParamIgnoredVariables)
	if err != nil {
		return opts, err
	}
	opts.IgnoredVariables = vars
	delete(params, ParamIgnoredVariables)

	if raw, ok := params.Pop(ParamIgnoredInteractions); ok && raw != nil {
		inters, err := parseInteractions(raw)
		if err != nil {
			return opts, fmt.Errorf("parameter %q: %w", ParamIgnoredInteractions, err)
		}
		opts.IgnoredInteractions = inters
	}

	ignoreOffset, err := params.Bool(ParamIgnoreOffset)
	if err != nil {
		return opts, err
	}
	opts.IgnoreOffset = ignoreOffset
	delete(params, ParamIgnoreOffset)

	return opts, nil
}

// parseInteractions accepts []core.Interaction, [][2]string, or [][]string
// with two elements per entry.
func parseInteractions(raw any) ([]core.Interaction, error) {
	switch v := raw.(type) {
	case []core.Interaction:
		out := make([]core.Interaction, len(v))
		for i, inter := range v {
			out[i] = core.Pair(inter[0], inter[1])
		}
		return out, nil
	case [][2]string:
		out := make([]core.Interaction, len(v))
		for i, pair := range v {
			out[i] = core.Pair(pair[0], pair[1])
		}
		return out, nil
	case [][]string:
		out := make([]core.Interaction, len(v))
		for i, pair := range v {
			if len(pair) != 2 {
				return nil, fmt.Errorf("interaction %v must have exactly two variables", pair)
			}
			out[i] = core.Pair(pair[0], pair[1])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as a list of interactions", raw)
	}
}
