package solver

import (
	"context"
	"math/rand"
	"time"

	"github.com/annealkit/preprocessing/pkg/core"
)

// DefaultNumReads is the number of assignments drawn when num_reads is not
// given.
const DefaultNumReads = 10

// RandomSampler draws uniform random assignments. It gives no optimization
// guarantees and exists for smoke tests and as a trivially cheap child
// sampler.
type RandomSampler struct {
	seed int64
	rng  *rand.Rand
}

// NewRandomSampler creates a random sampler. A zero seed picks a
// time-derived one.
func NewRandomSampler(seed int64) *RandomSampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSampler{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Parameters implements Sampler.
func (s *RandomSampler) Parameters() map[string][]string {
	return map[string][]string{"num_reads": {}}
}

// Properties implements Sampler.
func (s *RandomSampler) Properties() map[string]any {
	return map[string]any{"seed": s.seed}
}

// Sample implements Sampler. The returned sample set is already resolved.
func (s *RandomSampler) Sample(ctx context.Context, bqm *core.BQM, params Params) (*core.SampleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	numReads, err := params.Int("num_reads", DefaultNumReads)
	if err != nil {
		return nil, err
	}

	vars := bqm.Variables()
	low := int8(0)
	if bqm.Vartype() == core.Spin {
		low = -1
	}

	records := make([]core.Record, 0, numReads)
	for r := 0; r < numReads; r++ {
		sample := make(map[string]int8, len(vars))
		for _, v := range vars {
			val := low
			if s.rng.Intn(2) == 1 {
				val = 1
			}
			sample[v] = val
		}
		energy, err := bqm.Energy(sample)
		if err != nil {
			return nil, err
		}
		records = append(records, core.Record{Sample: sample, Energy: energy, NumOccurrences: 1})
	}

	info := map[string]any{"seed": s.seed}
	return core.SampleSetFromRecords(records, info), nil
}
