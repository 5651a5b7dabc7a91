package presolve

import (
	"fmt"
	"math"

	"github.com/annealkit/preprocessing/pkg/core"
)

// Feasibility is what the presolver knows about the model's feasibility.
type Feasibility int

// enumeration of Feasibility
const (
	// Infeasible means the model is known to be infeasible.
	Infeasible Feasibility = iota
	// Feasible means the model is known to be feasible.
	Feasible
	// Unknown means feasibility has not been established.
	Unknown
)

// TechniqueFlags selects the reductions a Presolver applies.
type TechniqueFlags uint64

const (
	// TechniqueNone disables all reductions.
	TechniqueNone TechniqueFlags = 0

	// RemoveSmallBiases drops linear and quadratic biases with magnitude
	// below the tolerance.
	RemoveSmallBiases TechniqueFlags = 1 << 0

	// FixIsolatedVariables fixes variables with no remaining interactions to
	// the value that minimizes their linear term.
	FixIsolatedVariables TechniqueFlags = 1 << 1

	// TechniqueAll enables every reduction.
	TechniqueAll TechniqueFlags = math.MaxUint64

	// TechniqueDefault is the set applied by LoadDefaultPresolvers.
	TechniqueDefault = TechniqueAll
)

// DefaultTolerance is the magnitude below which a bias is considered
// negligible by RemoveSmallBiases.
const DefaultTolerance = 1e-10

// Presolver reduces a binary quadratic model and restores samples drawn from
// the reduced model back to the original variable set.
type Presolver struct {
	model       *core.BQM
	techniques  TechniqueFlags
	tolerance   float64
	fixed       map[string]int8
	feasibility Feasibility
}

// New creates a presolver over an independent copy of the model. No
// techniques are loaded; call LoadDefaultPresolvers or SetTechniques.
func New(model *core.BQM) *Presolver {
	return &Presolver{
		model:       model.Copy(),
		tolerance:   DefaultTolerance,
		fixed:       make(map[string]int8),
		feasibility: Unknown,
	}
}

// LoadDefaultPresolvers enables the default technique set.
func (p *Presolver) LoadDefaultPresolvers() {
	p.techniques = TechniqueDefault
}

// SetTechniques replaces the enabled technique set.
func (p *Presolver) SetTechniques(flags TechniqueFlags) {
	p.techniques = flags
}

// SetTolerance replaces the small-bias tolerance.
func (p *Presolver) SetTolerance(tol float64) error {
	if tol < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %v", tol)
	}
	p.tolerance = tol
	return nil
}

// Model returns the (possibly reduced) model. The presolver retains
// ownership; use Detach to take it over.
func (p *Presolver) Model() *core.BQM { return p.model }

// Detach hands the reduced model to the caller and leaves the presolver
// holding an empty model. Restore keeps working after a detach.
func (p *Presolver) Detach() *core.BQM {
	model := p.model
	p.model = core.NewBQM(model.Vartype())
	return model
}

// Feasibility reports what is known about the model's feasibility.
func (p *Presolver) Feasibility() Feasibility { return p.feasibility }

// Fixed returns the variables fixed so far and their values.
func (p *Presolver) Fixed() map[string]int8 {
	out := make(map[string]int8, len(p.fixed))
	for v, val := range p.fixed {
		out[v] = val
	}
	return out
}

// Apply runs the enabled techniques to a fixpoint. An unconstrained binary
// quadratic model is always feasible, so a successful apply reports Feasible.
func (p *Presolver) Apply() error {
	if !p.model.Vartype().Valid() {
		return fmt.Errorf("model has invalid vartype %s", p.model.Vartype())
	}

	for changed := true; changed; {
		changed = false
		if p.techniques&RemoveSmallBiases != 0 {
			changed = p.removeSmallBiases() || changed
		}
		if p.techniques&FixIsolatedVariables != 0 {
			changed = p.fixIsolatedVariables() || changed
		}
	}

	p.feasibility = Feasible
	return nil
}

// Restore re-inserts the fixed variables into a sample over the reduced
// model, producing a sample over the original variable set.
func (p *Presolver) Restore(reduced map[string]int8) map[string]int8 {
	full := make(map[string]int8, len(reduced)+len(p.fixed))
	for v, val := range reduced {
		full[v] = val
	}
	for v, val := range p.fixed {
		full[v] = val
	}
	return full
}

func (p *Presolver) removeSmallBiases() bool {
	changed := false
	for _, inter := range p.model.Interactions() {
		bias, _ := p.model.Quadratic(inter[0], inter[1])
		if math.Abs(bias) < p.tolerance {
			p.model.RemoveInteraction(inter[0], inter[1])
			changed = true
		}
	}
	for _, v := range p.model.Variables() {
		bias := p.model.Linear(v)
		if bias != 0 && math.Abs(bias) < p.tolerance {
			p.model.AddVariable(v, -bias)
			changed = true
		}
	}
	return changed
}

func (p *Presolver) fixIsolatedVariables() bool {
	changed := false
	for _, v := range p.model.Variables() {
		if p.model.Degree(v) != 0 {
			continue
		}
		bias := p.model.Linear(v)
		val := minimizingValue(bias, p.model.Vartype())
		p.model.SetOffset(p.model.Offset() + bias*float64(val))
		p.model.RemoveVariable(v)
		p.fixed[v] = val
		changed = true
	}
	return changed
}

// minimizingValue picks the assignment that minimizes bias*value for a
// single isolated variable.
func minimizingValue(bias float64, vartype core.Vartype) int8 {
	if vartype == core.Binary {
		if bias > 0 {
			return 0
		}
		return 1
	}
	if bias > 0 {
		return -1
	}
	return 1
}
