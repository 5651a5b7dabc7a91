package composites

import (
	"context"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/annealkit/preprocessing/pkg/core"
	"github.com/annealkit/preprocessing/pkg/solver"
)

// spyChild wraps a delegate sampler and records what it was handed.
type spyChild struct {
	delegate       solver.Sampler
	calls          int
	receivedBQM    *core.BQM
	receivedParams solver.Params
}

func (s *spyChild) Parameters() map[string][]string {
	return map[string][]string{"num_reads": {}}
}

func (s *spyChild) Properties() map[string]any {
	return map[string]any{"category": "test"}
}

func (s *spyChild) Sample(ctx context.Context, bqm *core.BQM, params solver.Params) (*core.SampleSet, error) {
	s.calls++
	s.receivedBQM = bqm
	s.receivedParams = params
	return s.delegate.Sample(ctx, bqm, params)
}

func makeIsing() *core.BQM {
	return core.FromIsing(
		map[string]float64{"a": -4.0, "b": -4.0},
		map[core.Interaction]float64{core.Pair("a", "b"): 3.2},
		0.0,
	)
}

var _ = Describe("NewScalingComposite", func() {
	It("should reject a nil child", func() {
		_, err := NewScalingComposite(nil)
		Expect(err).To(HaveOccurred())
	})

	It("should hold exactly one child", func() {
		child := solver.NewExactSolver()
		c, err := NewScalingComposite(child)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Children()).To(HaveLen(1))
		Expect(c.Child()).To(BeIdenticalTo(child))
	})
})

var _ = Describe("ScalingComposite capability surface", func() {
	var c *ScalingComposite

	BeforeEach(func() {
		var err error
		c, err = NewScalingComposite(&spyChild{delegate: solver.NewExactSolver()})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should merge its options into the child's parameters", func() {
		params := c.Parameters()
		Expect(params).To(HaveKey("num_reads"))
		Expect(params).To(HaveKey(ParamScalar))
		Expect(params).To(HaveKey(ParamBiasRange))
		Expect(params).To(HaveKey(ParamQuadraticRange))
		Expect(params).To(HaveKey(ParamIgnoredVariables))
		Expect(params).To(HaveKey(ParamIgnoredInteractions))
		Expect(params).To(HaveKey(ParamIgnoreOffset))
	})

	It("should nest the child's properties unmodified", func() {
		props := c.Properties()
		Expect(props).To(HaveKey("child_properties"))
		child := props["child_properties"].(map[string]any)
		Expect(child).To(HaveKeyWithValue("category", "test"))
	})
})

var _ = Describe("ScalingComposite.Sample", func() {
	var (
		ctx   context.Context
		bqm   *core.BQM
		spy   *spyChild
		c     *ScalingComposite
		exact *solver.ExactSolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		bqm = makeIsing()
		exact = solver.NewExactSolver()
		spy = &spyChild{delegate: exact}
		var err error
		c, err = NewScalingComposite(spy)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with an explicit scalar and no exclusions", func() {
		It("should scale the child's copy and divide energies back", func() {
			ss, err := c.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			Expect(spy.receivedBQM.Linear("a")).To(Equal(-2.0))
			Expect(spy.receivedBQM.Linear("b")).To(Equal(-2.0))
			quad, _ := spy.receivedBQM.Quadratic("a", "b")
			Expect(quad).To(BeNumerically("~", 1.6, 1e-12))

			records, err := ss.Records()
			Expect(err).NotTo(HaveOccurred())
			for _, rec := range records {
				want, err := bqm.Energy(rec.Sample)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.Energy).To(BeNumerically("~", want, 1e-9))
			}
		})

		It("should leave the caller's problem untouched", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			Expect(bqm.Linear("a")).To(Equal(-4.0))
			quad, _ := bqm.Quadratic("a", "b")
			Expect(quad).To(Equal(3.2))
		})

		It("should preserve the variable and interaction sets", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			Expect(spy.receivedBQM.Variables()).To(Equal(bqm.Variables()))
			Expect(spy.receivedBQM.Interactions()).To(Equal(bqm.Interactions()))
			Expect(spy.receivedBQM.Offset()).To(Equal(bqm.Offset()))
		})

		It("should record the scalar in the metadata", func() {
			ss, err := c.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			info, err := ss.Info()
			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(HaveKeyWithValue(InfoScalar, 0.5))
		})

		It("should forward child parameters after stripping its own", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{
				ParamScalar: 0.5,
				"num_reads": 7,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(spy.receivedParams).To(HaveKeyWithValue("num_reads", 7))
			Expect(spy.receivedParams).NotTo(HaveKey(ParamScalar))
		})

		It("should strip range options even when a scalar overrides them", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{
				ParamScalar:         0.5,
				ParamBiasRange:      1,
				ParamQuadraticRange: []float64{-2, 2},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(spy.receivedParams).NotTo(HaveKey(ParamBiasRange))
			Expect(spy.receivedParams).NotTo(HaveKey(ParamQuadraticRange))
		})

		It("should not mutate the caller's params map", func() {
			params := solver.Params{ParamScalar: 0.5, "num_reads": 7}
			_, err := c.Sample(ctx, bqm, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(params).To(HaveKey(ParamScalar))
		})
	})

	Context("with range normalization", func() {
		It("should derive the scalar from the default bias range", func() {
			// max |bias| is 4, so the derived scalar is 0.25
			ss, err := c.Sample(ctx, bqm, nil)
			Expect(err).NotTo(HaveOccurred())

			for _, v := range spy.receivedBQM.Variables() {
				Expect(spy.receivedBQM.Linear(v)).To(And(
					BeNumerically(">=", -1), BeNumerically("<=", 1)))
			}

			info, err := ss.Info()
			Expect(err).NotTo(HaveOccurred())
			Expect(info[InfoScalar]).To(BeNumerically("~", 0.25, 1e-12))
		})

		It("should correct energies back to the original scale", func() {
			ss, err := c.Sample(ctx, bqm, solver.Params{ParamBiasRange: 1})
			Expect(err).NotTo(HaveOccurred())

			best, err := ss.First()
			Expect(err).NotTo(HaveOccurred())
			Expect(best.Energy).To(BeNumerically("~", -4.8, 1e-9))
		})

		It("should handle a separate quadratic range with all-zero quadratic biases", func() {
			degenerate := core.FromIsing(
				map[string]float64{"a": -4.0, "b": -4.0},
				map[core.Interaction]float64{core.Pair("a", "b"): 0.0},
				0.0,
			)
			ss, err := c.Sample(ctx, degenerate, solver.Params{
				ParamBiasRange:      1,
				ParamQuadraticRange: []float64{-2, 2},
			})
			Expect(err).NotTo(HaveOccurred())

			info, err := ss.Info()
			Expect(err).NotTo(HaveOccurred())
			Expect(info[InfoScalar]).To(BeNumerically("~", 0.25, 1e-12))
		})

		It("should reject a degenerate zero-anchored range before calling the child", func() {
			flat := core.FromIsing(map[string]float64{"a": 0}, nil, 0)
			_, err := c.Sample(ctx, flat, solver.Params{ParamBiasRange: []float64{0, 1}})
			Expect(err).To(MatchError(ErrZeroScalar))
			Expect(spy.calls).To(BeZero())
		})
	})

	Context("with exclusions", func() {
		It("should leave an ignored interaction unscaled and re-evaluate energies", func() {
			ss, err := c.Sample(ctx, bqm, solver.Params{
				ParamScalar:              0.5,
				ParamIgnoredInteractions: [][]string{{"a", "b"}},
			})
			Expect(err).NotTo(HaveOccurred())

			quad, _ := spy.receivedBQM.Quadratic("a", "b")
			Expect(quad).To(Equal(3.2))
			Expect(spy.receivedBQM.Linear("a")).To(Equal(-2.0))

			records, err := ss.Records()
			Expect(err).NotTo(HaveOccurred())
			for _, rec := range records {
				want, err := bqm.Energy(rec.Sample)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.Energy).To(Equal(want))
			}
		})

		It("should treat interaction membership as order-insensitive", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{
				ParamScalar:              0.5,
				ParamIgnoredInteractions: [][]string{{"b", "a"}},
			})
			Expect(err).NotTo(HaveOccurred())

			quad, _ := spy.receivedBQM.Quadratic("a", "b")
			Expect(quad).To(Equal(3.2))
		})

		It("should re-evaluate when only the offset is excluded", func() {
			offsetBQM := makeIsing()
			offsetBQM.SetOffset(2.0)

			ss, err := c.Sample(ctx, offsetBQM, solver.Params{
				ParamScalar:       0.5,
				ParamIgnoreOffset: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(spy.receivedBQM.Offset()).To(Equal(2.0))

			records, err := ss.Records()
			Expect(err).NotTo(HaveOccurred())
			for _, rec := range records {
				want, err := offsetBQM.Energy(rec.Sample)
				Expect(err).NotTo(HaveOccurred())
				Expect(rec.Energy).To(Equal(want))
			}
		})

		It("should leave an ignored variable's bias unscaled", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{
				ParamScalar:           0.5,
				ParamIgnoredVariables: []string{"a"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(spy.receivedBQM.Linear("a")).To(Equal(-4.0))
			Expect(spy.receivedBQM.Linear("b")).To(Equal(-2.0))
		})
	})

	Context("with an invalid configuration", func() {
		It("should reject an explicit zero scalar before calling the child", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{ParamScalar: 0})
			Expect(err).To(MatchError(ErrZeroScalar))
			Expect(err.Error()).To(ContainSubstring("scalar must be non-zero"))
			Expect(spy.calls).To(BeZero())
		})

		It("should reject a nil problem", func() {
			_, err := c.Sample(ctx, nil, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a malformed range", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{ParamBiasRange: []float64{1, 2, 3}})
			Expect(err).To(HaveOccurred())
			Expect(spy.calls).To(BeZero())
		})

		It("should reject malformed ignored interactions", func() {
			_, err := c.Sample(ctx, bqm, solver.Params{
				ParamIgnoredInteractions: [][]string{{"a"}},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when the child fails", func() {
		It("should propagate the child's error unchanged", func() {
			childErr := context.DeadlineExceeded
			failing := &funcSampler{
				sample: func(context.Context, *core.BQM, solver.Params) (*core.SampleSet, error) {
					return nil, childErr
				},
			}
			comp, err := NewScalingComposite(failing)
			Expect(err).NotTo(HaveOccurred())

			_, err = comp.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).To(MatchError(childErr))
		})
	})

	Context("with an asynchronous child", func() {
		It("should defer the correction until forced resolution", func() {
			var finished atomic.Bool
			inner := makeIsing()
			inner.Scale(0.5, core.ScaleOptions{})

			async := &funcSampler{
				sample: func(ctx context.Context, scaled *core.BQM, params solver.Params) (*core.SampleSet, error) {
					return core.NewDeferredSampleSet(
						func() bool { return finished.Load() },
						func() ([]core.Record, map[string]any, error) {
							energy, err := scaled.Energy(map[string]int8{"a": 1, "b": 1})
							if err != nil {
								return nil, nil, err
							}
							return []core.Record{{
								Sample:         map[string]int8{"a": 1, "b": 1},
								Energy:         energy,
								NumOccurrences: 1,
							}}, nil, nil
						},
					), nil
				},
			}

			comp, err := NewScalingComposite(async)
			Expect(err).NotTo(HaveOccurred())

			ss, err := comp.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			Expect(ss.Done()).To(BeFalse(), "result should still be pending")

			finished.Store(true)
			Expect(ss.Done()).To(BeTrue())

			best, err := ss.First()
			Expect(err).NotTo(HaveOccurred())
			Expect(best.Energy).To(BeNumerically("~", -4.8, 1e-9))

			info, err := ss.Info()
			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(HaveKeyWithValue(InfoScalar, 0.5))
		})

		It("should surface re-evaluation failures at resolution time", func() {
			async := &funcSampler{
				sample: func(ctx context.Context, scaled *core.BQM, params solver.Params) (*core.SampleSet, error) {
					records := []core.Record{{
						Sample: map[string]int8{"a": 1}, // "b" missing
						Energy: 0,
					}}
					return core.SampleSetFromRecords(records, nil), nil
				},
			}

			comp, err := NewScalingComposite(async)
			Expect(err).NotTo(HaveOccurred())

			// exclusions force the re-evaluation path
			ss, err := comp.Sample(ctx, bqm, solver.Params{
				ParamScalar:       0.5,
				ParamIgnoreOffset: true,
			})
			Expect(err).NotTo(HaveOccurred(), "submission must succeed")

			Expect(ss.Resolve()).To(HaveOccurred())
		})
	})

	Context("when nested", func() {
		It("should compose with itself and still produce original energies", func() {
			innerComp, err := NewScalingComposite(exact)
			Expect(err).NotTo(HaveOccurred())
			outer, err := NewScalingComposite(innerComp)
			Expect(err).NotTo(HaveOccurred())

			// outer scales explicitly; inner normalizes what it receives
			ss, err := outer.Sample(ctx, bqm, solver.Params{ParamScalar: 0.5})
			Expect(err).NotTo(HaveOccurred())

			best, err := ss.First()
			Expect(err).NotTo(HaveOccurred())
			Expect(best.Energy).To(BeNumerically("~", -4.8, 1e-9))
		})
	})
})

// funcSampler adapts a function to the Sampler interface.
type funcSampler struct {
	sample func(ctx context.Context, bqm *core.BQM, params solver.Params) (*core.SampleSet, error)
}

func (f *funcSampler) Parameters() map[string][]string { return map[string][]string{} }
func (f *funcSampler) Properties() map[string]any      { return map[string]any{} }
func (f *funcSampler) Sample(ctx context.Context, bqm *core.BQM, params solver.Params) (*core.SampleSet, error) {
	return f.sample(ctx, bqm, params)
}
