// Package core provides fundamental data structures for binary quadratic sampling.
//
// This package contains the domain models shared by the samplers and the
// preprocessing composites:
//
//   - BQM: a binary quadratic model with linear biases, quadratic biases, and
//     a constant offset, over spin (-1/+1) or binary (0/1) variables
//   - Interaction: an unordered pair of distinct variables, stored in
//     canonical order so that (a,b) and (b,a) compare equal
//   - Range: a closed numeric interval used as a normalization target
//   - SampleSet: an ordered collection of returned assignments with energies
//     and metadata, resolved lazily when the producing sampler is asynchronous
//
// Example usage:
//
//	// Build an Ising problem
//	bqm := core.FromIsing(
//	    map[string]float64{"a": -4.0, "b": -4.0},
//	    map[core.Interaction]float64{core.Pair("a", "b"): 3.2},
//	    0.0,
//	)
//
//	// Normalize biases into [-1, 1]
//	scalar := bqm.Normalize(core.SymmetricRange(1), nil, core.ScaleOptions{})
//
//	// Evaluate a candidate assignment
//	energy, err := bqm.Energy(map[string]int8{"a": 1, "b": -1})
//
// The core package is designed to be:
//   - Independent of any particular sampler implementation (pure domain logic)
//   - Safe for the scale/normalize/rescale arithmetic used by composites
//   - Well-tested with comprehensive unit tests
package core
