// Package composites implements preprocessing decorators around samplers.
//
// A composite is itself a Sampler that holds one child sampler: it rewrites
// the problem on the way in, delegates the actual sampling, and fixes up the
// returned sample set on the way out. Composites expose the child's declared
// parameters merged with their own, so they nest arbitrarily.
//
// Key Components:
//
//   - ScalingComposite: rescales linear biases, quadratic biases, and the
//     offset by an explicit or range-derived scalar before sampling, then
//     corrects the returned energies back to the original problem's scale
//
// Control flow for a sample call:
//
//	caller → ScalingComposite.Sample → [scale private copy]
//	       → child.Sample(scaled copy) → possibly pending SampleSet
//	       → caller (may poll Done without forcing)
//	       → first forced access runs the energy correction exactly once
//
// Example usage:
//
//	sampler, err := composites.NewScalingComposite(solver.NewExactSolver())
//	if err != nil {
//	    return err
//	}
//	ss, err := sampler.Sample(ctx, bqm, solver.Params{
//	    composites.ParamScalar: 0.5,
//	})
//	if err != nil {
//	    return err
//	}
//	// energies observed here are already corrected
//	energies, err := ss.Energies()
//
// The correction is cheap when the whole problem was scaled uniformly
// (divide by the scalar); any ignored variable, ignored interaction, or
// ignored offset breaks that identity, and the composite re-evaluates each
// assignment against the original model instead.
package composites
