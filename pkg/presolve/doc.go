// Package presolve shrinks binary quadratic models before sampling.
//
// A Presolver applies cheap, lossless reductions to a model — removing
// negligible biases and fixing variables whose optimal value is forced — and
// remembers what it removed, so samples drawn from the reduced model can be
// restored to the original variable set.
//
// Example usage:
//
//	p := presolve.New(bqm)
//	p.LoadDefaultPresolvers()
//	if err := p.Apply(); err != nil {
//	    return err
//	}
//	ss, err := sampler.Sample(ctx, p.Model(), nil)
//	// ...
//	full := p.Restore(reducedSample)
//
// Techniques are selected by a bitmask so callers can opt out of individual
// reductions.
package presolve
