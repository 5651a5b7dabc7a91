// Package solver defines the sampler capability surface and reference samplers.
//
// A Sampler is a black-box solver: given a binary quadratic model it returns
// candidate assignments tagged with energies. Samplers declare the options
// they accept (Parameters) and informational properties (Properties), so that
// composites can expose a merged surface of their own options plus the
// child's.
//
// Key Components:
//
//   - Sampler: the polymorphic sampling interface
//   - Composite: a sampler that decorates one or more child samplers
//   - Params: loosely-typed per-call options, forwarded through composites
//   - ExactSolver: brute-force enumeration of every assignment
//   - RandomSampler: uniform random assignments, for smoke testing
//
// Example usage:
//
//	sampler := solver.NewExactSolver()
//	ss, err := sampler.Sample(ctx, bqm, nil)
//	if err != nil {
//	    return err
//	}
//	best, err := ss.First()
//
// Samplers are designed to be:
//   - Deterministic where possible: ExactSolver orders records by energy
//   - Composable: any Sampler can be wrapped by the composites package
//   - Non-blocking friendly: a Sample call may return a pending SampleSet
package solver
