package solver

import (
	"context"
	"fmt"

	"github.com/annealkit/preprocessing/pkg/core"
)

// Sampler is the polymorphic capability surface shared by solvers and the
// composites that decorate them.
type Sampler interface {
	// Parameters lists the accepted option names, each mapped to the
	// properties that constrain it. This is a capability listing; values are
	// validated only when a call is made.
	Parameters() map[string][]string

	// Properties returns informational key/value pairs about the sampler.
	Properties() map[string]any

	// Sample draws candidate assignments for the model. The returned sample
	// set may still be pending; callers can poll Done without forcing it.
	// The sampler must not mutate bqm.
	Sample(ctx context.Context, bqm *core.BQM, params Params) (*core.SampleSet, error)
}

// Composite is a sampler that delegates to one or more child samplers.
type Composite interface {
	Sampler

	// Children returns the child samplers in order.
	Children() []Sampler

	// Child returns the first (usually only) child sampler.
	Child() Sampler
}

// Kind selects one of the built-in reference samplers.
type Kind int

// enumeration of Kind
const (
	ExactKind Kind = iota
	RandomKind
)

// New is a factory for the built-in reference samplers.
func New(kind Kind) (Sampler, error) {
	switch kind {
	case ExactKind:
		return NewExactSolver(), nil
	case RandomKind:
		return NewRandomSampler(0), nil
	default:
		return nil, fmt.Errorf("unsupported sampler kind: %v", kind)
	}
}
