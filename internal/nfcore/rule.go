package nfcore

import (
	"fmt"
	"reflect"
)

// RuleKind distinguishes a Basic rule, whose propensity is a single
// rate constant times the product of corrected reactant counts, from
// a DOR (Distribution of Rates) rule, whose propensity is the sum of
// per-reactant-combination weights drawn from a local function
// (spec.md §4.7).
type RuleKind int

const (
	RuleBasic RuleKind = iota
	RuleDOR
)

// RuleReactant is one matched position of a rule: the pattern it must
// satisfy and the molecule type it resolves to (cached for
// ReactantList bookkeeping).
type RuleReactant struct {
	Pattern *Pattern
	TypeID  int

	list *ReactantList
}

// Rule is one reaction rule: a set of reactant patterns, a rate law,
// and an ordered sequence of transformations applied to a sampled
// mapping when the rule fires.
type Rule struct {
	ID   int
	Name string
	Kind RuleKind

	Reactants []RuleReactant
	Actions   []Transformation

	// Basic: rate law, an expression over parameters/observables/global
	// functions.
	RateExpr string

	// DOR: the local function supplying per-molecule weights, and
	// which reactant position it is scoped to.
	DORFunctionID int
	DORReactant   int

	propensity float64
	dorWeights map[int]float64 // molecule id -> current weight, DOR only

	// FireCount is the number of times this rule has been selected and
	// successfully fired, tracked for export and for the server's
	// /stats report.
	FireCount int
}

// samePositionTypeRank returns, for reactant index i, how many
// earlier reactant positions share its molecule type (used for the
// combinatorial "n, n-1, ..." correction of spec.md §4.3).
func (r *Rule) samePositionTypeRank(i int) int {
	rank := 0
	for j := 0; j < i; j++ {
		if r.Reactants[j].TypeID == r.Reactants[i].TypeID {
			rank++
		}
	}
	return rank
}

// reactantsEquivalent reports whether reactant positions i and j are
// fully symmetric: same molecule type, same pattern constraints, so
// neither is distinguishable from the other (e.g. both sides of a
// homodimerization A+A).
func (r *Rule) reactantsEquivalent(i, j int) bool {
	if r.Reactants[i].TypeID != r.Reactants[j].TypeID {
		return false
	}
	return reflect.DeepEqual(r.Reactants[i].Pattern, r.Reactants[j].Pattern)
}

// symmetryFactor returns the product of 1/s! over every maximal group
// of mutually fully-symmetric reactant positions, the correction
// spec.md §4.4 requires to divide out the double-count a symmetric
// rule like A+A introduces on top of the plain selection-without-
// replacement correction (e.g. a_initial = k*n*(n-1)/2! rather than
// k*n*(n-1)).
func (r *Rule) symmetryFactor() float64 {
	seen := make([]bool, len(r.Reactants))
	factor := 1.0
	for i := range r.Reactants {
		if seen[i] {
			continue
		}
		seen[i] = true
		size := 1
		for j := i + 1; j < len(r.Reactants); j++ {
			if !seen[j] && r.reactantsEquivalent(i, j) {
				seen[j] = true
				size++
			}
		}
		for k := 2; k <= size; k++ {
			factor /= float64(k)
		}
	}
	return factor
}

// ComputePropensity recomputes the rule's aggregate propensity from
// its current reactant-list counts, returning the new value and the
// delta from the previous value (the delta is what System.a_tot
// bookkeeping applies, per spec.md §4.8's additive-update rule).
func (r *Rule) ComputePropensity(sys *System) (float64, float64, error) {
	old := r.propensity
	var next float64
	var err error
	switch r.Kind {
	case RuleBasic:
		next, err = r.computeBasicPropensity(sys)
	case RuleDOR:
		next, err = r.computeDORPropensity(sys)
	default:
		return 0, 0, fmt.Errorf("rule %d: unknown kind", r.ID)
	}
	if err != nil {
		return old, 0, err
	}
	r.propensity = next
	return next, next - old, nil
}

func (r *Rule) computeBasicPropensity(sys *System) (float64, error) {
	rate, err := sys.Evaluator.Eval(r.RateExpr, sys.baseScope())
	if err != nil {
		return 0, err
	}
	total := rate
	for i := range r.Reactants {
		rl := r.Reactants[i].list
		count := rl.CorrectedCount(r.samePositionTypeRank(i))
		total *= float64(count)
	}
	total *= r.symmetryFactor()
	if total < 0 {
		return 0, &NumericError{Reason: fmt.Sprintf("rule %d: negative propensity", r.ID)}
	}
	return total, nil
}

// computeDORPropensity sums, over every live mapping of the DOR
// reactant position, the local function's weight for the molecule
// bound there, times the combined propensity of every other reactant
// position (spec.md §4.7).
func (r *Rule) computeDORPropensity(sys *System) (float64, error) {
	fn, ok := sys.localFunctions[r.DORFunctionID]
	if !ok {
		return 0, fmt.Errorf("rule %d: unknown DOR function %d", r.ID, r.DORFunctionID)
	}
	rate, err := sys.Evaluator.Eval(r.RateExpr, sys.baseScope())
	if err != nil {
		return 0, err
	}
	other := rate
	for i := range r.Reactants {
		if i == r.DORReactant {
			continue
		}
		rl := r.Reactants[i].list
		other *= float64(rl.CorrectedCount(r.samePositionTypeRank(i)))
	}

	dorList := r.Reactants[r.DORReactant].list
	if r.dorWeights == nil {
		r.dorWeights = make(map[int]float64)
	}
	total := 0.0
	seen := make(map[int]bool)
	for _, mp := range dorList.All() {
		molID := mp.MoleculeID[0]
		if seen[molID] {
			continue
		}
		seen[molID] = true
		m := sys.molecule(molID)
		w, err := fn.Evaluate(sys, m)
		if err != nil {
			return 0, err
		}
		r.dorWeights[molID] = w
		total += w
	}
	if total < 0 {
		return 0, &NumericError{Reason: fmt.Sprintf("rule %d: negative DOR weight sum", r.ID)}
	}
	return total * other, nil
}

// pickMapping draws a uniformly random live mapping for reactant
// position i (DOR position uses weighted draw instead), used by
// Fire's second RNG draw. Returns nil if the position has no mappings
// (a CapacityError condition the caller must check before drawing).
func (r *Rule) pickMapping(sys *System, i int) *Mapping {
	rl := r.Reactants[i].list
	all := rl.All()
	if len(all) == 0 {
		return nil
	}
	if r.Kind == RuleDOR && i == r.DORReactant {
		return r.pickWeightedMapping(sys, all)
	}
	idx := int(sys.RNG.Float64() * float64(len(all)))
	if idx >= len(all) {
		idx = len(all) - 1
	}
	return all[idx]
}

func (r *Rule) pickWeightedMapping(sys *System, all []*Mapping) *Mapping {
	total := 0.0
	for _, mp := range all {
		total += r.dorWeights[mp.MoleculeID[0]]
	}
	if total <= 0 {
		return all[0]
	}
	target := sys.RNG.Float64() * total
	cum := 0.0
	for _, mp := range all {
		cum += r.dorWeights[mp.MoleculeID[0]]
		if cum >= target {
			return mp
		}
	}
	return all[len(all)-1]
}

// Fire samples one mapping per reactant position and applies the
// rule's transformations, returning the disturbed set for the caller
// to propagate. It performs exactly one RNG draw per reactant
// position (beyond the reaction-selection draw already consumed by
// the sampler), in reactant order, so the draw sequence stays
// reproducible for a fixed seed (spec.md §4.8, determinism
// requirement).
func (r *Rule) Fire(sys *System) (*disturbed, error) {
	bound := make([][]*Molecule, len(r.Reactants))
	for i := range r.Reactants {
		mp := r.pickMapping(sys, i)
		if mp == nil {
			return nil, &CapacityError{Reason: fmt.Sprintf("rule %d: reactant %d has no live mapping at fire time", r.ID, i)}
		}
		mols := make([]*Molecule, len(mp.MoleculeID))
		for j, id := range mp.MoleculeID {
			mols[j] = sys.molecule(id)
		}
		bound[i] = mols
	}
	return ApplyTransformations(sys, bound, r.Actions), nil
}
