package nfcore

import "fmt"

// ValidateModelConfig checks a ModelConfig for the kinds of mistakes a
// hand-edited model file commonly contains, collecting every issue
// found rather than stopping at the first one, in the same style as
// the teacher's ValidationError accumulator.
func ValidateModelConfig(cfg *ModelConfig) *ModelError {
	errs := &ModelError{}

	if cfg.Name == "" {
		errs.Add("model name is required")
	}
	if len(cfg.MoleculeTypes) == 0 {
		errs.Add("at least one molecule type is required")
	}

	typeNames := make(map[string]bool)
	componentNames := make(map[string]map[string]bool)
	for _, mt := range cfg.MoleculeTypes {
		if mt.Name == "" {
			errs.Add("molecule type with empty name")
			continue
		}
		if typeNames[mt.Name] {
			errs.Add(fmt.Sprintf("duplicate molecule type %q", mt.Name))
		}
		typeNames[mt.Name] = true
		names := make(map[string]bool)
		for _, c := range mt.Components {
			if names[c.Name] {
				errs.Add(fmt.Sprintf("molecule type %q: duplicate component %q", mt.Name, c.Name))
			}
			names[c.Name] = true
			if !c.IsInteger && len(c.States) > 0 && c.DefaultState != "" {
				found := false
				for _, s := range c.States {
					if s == c.DefaultState {
						found = true
						break
					}
				}
				if !found {
					errs.Add(fmt.Sprintf("molecule type %q: component %q default state %q is not in its state list", mt.Name, c.Name, c.DefaultState))
				}
			}
		}
		for _, set := range mt.EquivalentSets {
			for _, cname := range set {
				if !names[cname] {
					errs.Add(fmt.Sprintf("molecule type %q: equivalence set references unknown component %q", mt.Name, cname))
				}
			}
		}
		componentNames[mt.Name] = names
	}

	for _, sd := range cfg.Seed {
		if !typeNames[sd.MoleculeType] {
			errs.Add(fmt.Sprintf("seed references unknown molecule type %q", sd.MoleculeType))
		}
		if sd.Count < 0 {
			errs.Add(fmt.Sprintf("seed for %q has negative count", sd.MoleculeType))
		}
	}

	ruleNames := make(map[string]bool)
	for _, r := range cfg.Rules {
		if r.Name == "" {
			errs.Add("rule with empty name")
		} else if ruleNames[r.Name] {
			errs.Add(fmt.Sprintf("duplicate rule %q", r.Name))
		}
		ruleNames[r.Name] = true
		if len(r.Reactants) == 0 {
			errs.Add(fmt.Sprintf("rule %q: at least one reactant pattern is required", r.Name))
		}
		if r.RateExpr == "" {
			errs.Add(fmt.Sprintf("rule %q: rate expression is required", r.Name))
		}
		for ri, pc := range r.Reactants {
			validatePatternConfig(errs, r.Name, ri, pc, typeNames, componentNames)
		}
		if r.DORFunction != "" && (r.DORReactant < 0 || r.DORReactant >= len(r.Reactants)) {
			errs.Add(fmt.Sprintf("rule %q: dorReactant %d out of range", r.Name, r.DORReactant))
		}
		for _, a := range r.Actions {
			validateActionConfig(errs, r.Name, a, len(r.Reactants))
		}
	}

	for _, lf := range cfg.LocalFunctions {
		if lf.Kind != "typeI" && lf.Kind != "typeII" {
			errs.Add(fmt.Sprintf("local function %q: kind must be typeI or typeII, got %q", lf.Name, lf.Kind))
		}
		for _, t := range lf.ScopeTypes {
			if !typeNames[t] {
				errs.Add(fmt.Sprintf("local function %q: unknown scope type %q", lf.Name, t))
			}
		}
	}

	for _, oc := range cfg.Observables {
		if oc.Kind != "molecules" && oc.Kind != "species" {
			errs.Add(fmt.Sprintf("observable %q: kind must be molecules or species, got %q", oc.Name, oc.Kind))
		}
		if oc.Kind == "molecules" {
			validatePatternConfig(errs, "observable "+oc.Name, 0, oc.Pattern, typeNames, componentNames)
		}
	}

	if errs.HasIssues() {
		return errs
	}
	return nil
}

func validatePatternConfig(errs *ModelError, owner string, idx int, pc PatternConfig, typeNames map[string]bool, componentNames map[string]map[string]bool) {
	if len(pc.Molecules) == 0 {
		errs.Add(fmt.Sprintf("%s: reactant %d has no molecules", owner, idx))
		return
	}
	for _, tm := range pc.Molecules {
		if !typeNames[tm.MoleculeType] {
			errs.Add(fmt.Sprintf("%s: reactant %d references unknown molecule type %q", owner, idx, tm.MoleculeType))
			continue
		}
		names := componentNames[tm.MoleculeType]
		for _, cp := range tm.Components {
			if !names[cp.Name] {
				errs.Add(fmt.Sprintf("%s: reactant %d: molecule type %q has no component %q", owner, idx, tm.MoleculeType, cp.Name))
			}
			if cp.Bond != "" && cp.Bond != "open" && cp.Bond != "bonded" {
				errs.Add(fmt.Sprintf("%s: reactant %d: component %q bond constraint must be open or bonded, got %q", owner, idx, cp.Name, cp.Bond))
			}
		}
	}
	for _, bp := range pc.Bonds {
		if bp.M1 < 0 || bp.M1 >= len(pc.Molecules) || bp.M2 < 0 || bp.M2 >= len(pc.Molecules) {
			errs.Add(fmt.Sprintf("%s: reactant %d: bond references out-of-range molecule index", owner, idx))
		}
	}
}

func validateActionConfig(errs *ModelError, ruleName string, a TransformationConfig, numReactants int) {
	switch a.Kind {
	case "changeState", "unbind", "deleteMolecule", "incrementPopulation", "decrementPopulation":
		if a.Reactant < 0 || a.Reactant >= numReactants {
			errs.Add(fmt.Sprintf("rule %q: action %q references out-of-range reactant %d", ruleName, a.Kind, a.Reactant))
		}
	case "bind":
		if a.Reactant < 0 || a.Reactant >= numReactants || a.Reactant2 < 0 || a.Reactant2 >= numReactants {
			errs.Add(fmt.Sprintf("rule %q: bind action references out-of-range reactant", ruleName))
		}
	case "addMolecule":
		if a.NewType == "" {
			errs.Add(fmt.Sprintf("rule %q: addMolecule action missing newType", ruleName))
		}
	default:
		errs.Add(fmt.Sprintf("rule %q: unknown action kind %q", ruleName, a.Kind))
	}
}
