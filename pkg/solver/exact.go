package solver

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/annealkit/preprocessing/pkg/core"
)

// DefaultMaxEnumeratedVariables caps the brute-force enumeration. 2^20
// assignments is around the largest problem worth solving exactly.
const DefaultMaxEnumeratedVariables = 20

// ExactSolver enumerates every assignment of the model and returns all of
// them ordered by ascending energy. It is intended as a reference child
// sampler for composites and tests, not as a production solver.
type ExactSolver struct {
	maxVariables int
}

// NewExactSolver creates an exact solver with the default variable cap.
func NewExactSolver() *ExactSolver {
	return &ExactSolver{maxVariables: DefaultMaxEnumeratedVariables}
}

// Parameters implements Sampler. The exact solver accepts no options.
func (s *ExactSolver) Parameters() map[string][]string {
	return map[string][]string{}
}

// Properties implements Sampler.
func (s *ExactSolver) Properties() map[string]any {
	return map[string]any{"max_variables": s.maxVariables}
}

// Sample implements Sampler. The returned sample set is already resolved.
func (s *ExactSolver) Sample(ctx context.Context, bqm *core.BQM, params Params) (*core.SampleSet, error) {
	n := bqm.NumVariables()
	if n > s.maxVariables {
		return nil, fmt.Errorf("exact solver supports at most %d variables, model has %d", s.maxVariables, n)
	}
	if n == 0 {
		records := []core.Record{{Sample: map[string]int8{}, Energy: bqm.Offset(), NumOccurrences: 1}}
		return core.SampleSetFromRecords(records, map[string]any{"num_variables": 0}), nil
	}

	vars := bqm.Variables()
	h := make([]float64, n)
	index := make(map[string]int, n)
	for i, v := range vars {
		h[i] = bqm.Linear(v)
		index[v] = i
	}

	type coupling struct {
		i, j int
		bias float64
	}
	couplings := make([]coupling, 0, bqm.NumInteractions())
	for _, inter := range bqm.Interactions() {
		bias, _ := bqm.Quadratic(inter[0], inter[1])
		couplings = append(couplings, coupling{i: index[inter[0]], j: index[inter[1]], bias: bias})
	}

	low := int8(0)
	if bqm.Vartype() == core.Spin {
		low = -1
	}

	records := make([]core.Record, 0, 1<<n)
	x := make([]float64, n)
	for m := 0; m < 1<<n; m++ {
		if m%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		sample := make(map[string]int8, n)
		for i, v := range vars {
			val := low
			if m&(1<<i) != 0 {
				val = 1
			}
			sample[v] = val
			x[i] = float64(val)
		}

		energy := bqm.Offset() + floats.Dot(h, x)
		for _, c := range couplings {
			energy += c.bias * x[c.i] * x[c.j]
		}
		records = append(records, core.Record{Sample: sample, Energy: energy, NumOccurrences: 1})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Energy < records[j].Energy })

	info := map[string]any{"num_variables": n}
	return core.SampleSetFromRecords(records, info), nil
}
