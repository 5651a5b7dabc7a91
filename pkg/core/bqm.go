package core

import (
	"fmt"
	"math"
	"sort"
)

// Interaction is an unordered pair of distinct variables, stored in canonical
// (lexicographic) order so that (a,b) and (b,a) compare equal as map keys.
type Interaction [2]string

// Pair builds the canonical interaction key for two variables.
func Pair(u, v string) Interaction {
	if u > v {
		u, v = v, u
	}
	return Interaction{u, v}
}

// BQM is a binary quadratic model: an energy function over spin or binary
// variables with per-variable linear biases, per-pair quadratic biases, and a
// constant offset.
//
// A BQM is not safe for concurrent mutation. Callers that hand a BQM to a
// sampler retain ownership; samplers and composites must operate on a Copy.
type BQM struct {
	vartype   Vartype
	linear    map[string]float64
	quadratic map[Interaction]float64
	offset    float64
}

// NewBQM creates an empty model of the given vartype.
func NewBQM(vartype Vartype) *BQM {
	return &BQM{
		vartype:   vartype,
		linear:    make(map[string]float64),
		quadratic: make(map[Interaction]float64),
	}
}

// FromIsing builds a Spin model from h (linear) and J (quadratic) biases.
func FromIsing(h map[string]float64, j map[Interaction]float64, offset float64) *BQM {
	bqm := NewBQM(Spin)
	for v, bias := range h {
		bqm.AddVariable(v, bias)
	}
	for inter, bias := range j {
		// tolerate non-canonical keys from callers
		_ = bqm.AddQuadratic(inter[0], inter[1], bias)
	}
	bqm.offset = offset
	return bqm
}

// FromQUBO builds a Binary model from an upper-triangular Q mapping. Diagonal
// entries (u == v) become linear biases.
func FromQUBO(q map[Interaction]float64, offset float64) *BQM {
	bqm := NewBQM(Binary)
	for inter, bias := range q {
		if inter[0] == inter[1] {
			bqm.AddVariable(inter[0], bias)
			continue
		}
		_ = bqm.AddQuadratic(inter[0], inter[1], bias)
	}
	bqm.offset = offset
	return bqm
}

// Vartype returns the variable domain of the model.
func (b *BQM) Vartype() Vartype { return b.vartype }

// Offset returns the constant energy offset.
func (b *BQM) Offset() float64 { return b.offset }

// SetOffset replaces the constant energy offset.
func (b *BQM) SetOffset(offset float64) { b.offset = offset }

// AddVariable adds bias to the linear bias of v, creating v if absent.
func (b *BQM) AddVariable(v string, bias float64) {
	b.linear[v] += bias
}

// AddQuadratic adds bias to the quadratic bias of the (u, v) interaction,
// creating the interaction and any missing variables. Self-interactions are
// rejected.
func (b *BQM) AddQuadratic(u, v string, bias float64) error {
	if u == v {
		return fmt.Errorf("no self-interactions allowed: variable %q", u)
	}
	if _, ok := b.linear[u]; !ok {
		b.linear[u] = 0
	}
	if _, ok := b.linear[v]; !ok {
		b.linear[v] = 0
	}
	b.quadratic[Pair(u, v)] += bias
	return nil
}

// Linear returns the linear bias of v, zero if v is unknown.
func (b *BQM) Linear(v string) float64 { return b.linear[v] }

// Quadratic returns the quadratic bias of the (u, v) interaction.
func (b *BQM) Quadratic(u, v string) (float64, bool) {
	bias, ok := b.quadratic[Pair(u, v)]
	return bias, ok
}

// Has reports whether v is a variable of the model.
func (b *BQM) Has(v string) bool {
	_, ok := b.linear[v]
	return ok
}

// NumVariables returns the number of variables.
func (b *BQM) NumVariables() int { return len(b.linear) }

// NumInteractions returns the number of interactions.
func (b *BQM) NumInteractions() int { return len(b.quadratic) }

// Degree returns the number of interactions incident to v.
func (b *BQM) Degree(v string) int {
	degree := 0
	for inter := range b.quadratic {
		if inter[0] == v || inter[1] == v {
			degree++
		}
	}
	return degree
}

// Variables returns the variables in sorted order.
func (b *BQM) Variables() []string {
	vars := make([]string, 0, len(b.linear))
	for v := range b.linear {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Interactions returns the interaction keys in sorted order.
func (b *BQM) Interactions() []Interaction {
	inters := make([]Interaction, 0, len(b.quadratic))
	for inter := range b.quadratic {
		inters = append(inters, inter)
	}
	sort.Slice(inters, func(i, j int) bool {
		if inters[i][0] != inters[j][0] {
			return inters[i][0] < inters[j][0]
		}
		return inters[i][1] < inters[j][1]
	})
	return inters
}

// RemoveVariable deletes v and all interactions incident to it.
func (b *BQM) RemoveVariable(v string) {
	delete(b.linear, v)
	for inter := range b.quadratic {
		if inter[0] == v || inter[1] == v {
			delete(b.quadratic, inter)
		}
	}
}

// RemoveInteraction deletes the (u, v) interaction if present.
func (b *BQM) RemoveInteraction(u, v string) {
	delete(b.quadratic, Pair(u, v))
}

// Copy returns an independent deep copy of the model.
func (b *BQM) Copy() *BQM {
	out := &BQM{
		vartype:   b.vartype,
		linear:    make(map[string]float64, len(b.linear)),
		quadratic: make(map[Interaction]float64, len(b.quadratic)),
		offset:    b.offset,
	}
	for v, bias := range b.linear {
		out.linear[v] = bias
	}
	for inter, bias := range b.quadratic {
		out.quadratic[inter] = bias
	}
	return out
}

// ScaleOptions selects the terms excluded from scaling and normalization.
type ScaleOptions struct {
	// IgnoredVariables lists variables whose linear biases are not scaled.
	IgnoredVariables []string

	// IgnoredInteractions lists interactions whose quadratic biases are not
	// scaled. Pair order does not matter.
	IgnoredInteractions []Interaction

	// IgnoreOffset excludes the constant offset from scaling.
	IgnoreOffset bool
}

// Empty reports whether no exclusion is requested at all.
func (o ScaleOptions) Empty() bool {
	return len(o.IgnoredVariables) == 0 && len(o.IgnoredInteractions) == 0 && !o.IgnoreOffset
}

func (o ScaleOptions) variableSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.IgnoredVariables))
	for _, v := range o.IgnoredVariables {
		set[v] = struct{}{}
	}
	return set
}

func (o ScaleOptions) interactionSet() map[Interaction]struct{} {
	set := make(map[Interaction]struct{}, len(o.IgnoredInteractions))
	for _, inter := range o.IgnoredInteractions {
		set[Pair(inter[0], inter[1])] = struct{}{}
	}
	return set
}

// Scale multiplies every non-ignored linear bias, every non-ignored quadratic
// bias, and (unless excluded) the offset by scalar, in place.
func (b *BQM) Scale(scalar float64, opts ScaleOptions) {
	ignoredVars := opts.variableSet()
	ignoredInters := opts.interactionSet()

	for v, bias := range b.linear {
		if _, ok := ignoredVars[v]; ok {
			continue
		}
		b.linear[v] = bias * scalar
	}
	for inter, bias := range b.quadratic {
		if _, ok := ignoredInters[inter]; ok {
			continue
		}
		b.quadratic[inter] = bias * scalar
	}
	if !opts.IgnoreOffset {
		b.offset *= scalar
	}
}

// Normalize scales the model so that the included biases fit the target
// ranges, and returns the scalar that was applied.
//
// biasRange bounds the linear biases, and the quadratic biases too when
// quadraticRange is nil. The derived scalar is the largest factor such that
// the extreme included biases land inside their ranges; equivalently
// 1/invScalar where invScalar is the worst-case ratio of an extreme bias to
// its nearer range bound.
//
// If no included bias constrains the fit the model is left untouched and the
// scalar is 1. If a range bound of zero makes the fit unreachable the scalar
// is 0 and nothing is scaled; callers treat a zero scalar as an error.
func (b *BQM) Normalize(biasRange Range, quadraticRange *Range, opts ScaleOptions) float64 {
	linRange := biasRange
	quadRange := biasRange
	if quadraticRange != nil {
		quadRange = *quadraticRange
	}

	ignoredVars := opts.variableSet()
	ignoredInters := opts.interactionSet()

	var linMin, linMax float64
	for v, bias := range b.linear {
		if _, ok := ignoredVars[v]; ok {
			continue
		}
		linMin = math.Min(linMin, bias)
		linMax = math.Max(linMax, bias)
	}

	var quadMin, quadMax float64
	for inter, bias := range b.quadratic {
		if _, ok := ignoredInters[inter]; ok {
			continue
		}
		quadMin = math.Min(quadMin, bias)
		quadMax = math.Max(quadMax, bias)
	}

	invScalar := math.Max(
		math.Max(fitRatio(linMin, linRange.Low), fitRatio(linMax, linRange.High)),
		math.Max(fitRatio(quadMin, quadRange.Low), fitRatio(quadMax, quadRange.High)),
	)

	if invScalar == 0 {
		// every included bias already sits inside a range that does not
		// constrain it
		return 1
	}
	if math.IsInf(invScalar, 1) {
		return 0
	}

	scalar := 1 / invScalar
	b.Scale(scalar, opts)
	return scalar
}

// fitRatio is the factor by which an extreme bias overshoots its range bound.
// A zero bound cannot absorb any bias by rescaling, so the fit is unreachable.
func fitRatio(bias, bound float64) float64 {
	if bound == 0 {
		return math.Inf(1)
	}
	return bias / bound
}

// Energy evaluates the model at the given assignment. Every variable of the
// model must be assigned an admissible value for the vartype.
func (b *BQM) Energy(sample map[string]int8) (float64, error) {
	energy := b.offset
	for v, bias := range b.linear {
		val, ok := sample[v]
		if !ok {
			return 0, fmt.Errorf("sample has no assignment for variable %q", v)
		}
		if !b.vartype.ValidValue(val) {
			return 0, fmt.Errorf("value %d for variable %q is invalid for vartype %s", val, v, b.vartype)
		}
		energy += bias * float64(val)
	}
	for inter, bias := range b.quadratic {
		energy += bias * float64(sample[inter[0]]) * float64(sample[inter[1]])
	}
	return energy, nil
}

// Energies evaluates the model at each of the given assignments.
func (b *BQM) Energies(samples []map[string]int8) ([]float64, error) {
	energies := make([]float64, len(samples))
	for i, sample := range samples {
		energy, err := b.Energy(sample)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		energies[i] = energy
	}
	return energies, nil
}
