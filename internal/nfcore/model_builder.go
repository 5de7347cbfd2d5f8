package nfcore

import (
	"fmt"
	"time"
)

// BuildModelFromConfig validates cfg, then constructs and returns a
// fully wired System: molecule types, rules (with patterns and
// transformations resolved to indices), global/local functions,
// observables, and the initial seed population, ready for
// PrepareForSimulation.
func BuildModelFromConfig(cfg *ModelConfig, logger Logger) (*System, error) {
	if err := ValidateModelConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoOpLogger()
	}

	sys := NewSystem(SystemOptions{
		Seed:                    cfg.RandomSeed,
		UniversalTraversalLimit: cfg.UniversalTraversalLimit,
		GlobalMoleculeLimit:     cfg.GlobalMoleculeLimit,
		UseConnectivity:         cfg.UseConnectivity,
		UseComplex:              cfg.UseComplex,
		Logger:                  logger,
		WallClockCap:            0,
	})
	for name, v := range cfg.Parameters {
		sys.AddParameter(name, v)
	}

	typeIndex := make(map[string]int)
	componentIndex := make(map[string]map[string]int)
	componentStates := make(map[string]map[string][]string)
	for i, mtc := range cfg.MoleculeTypes {
		states := make(map[string][]string, len(mtc.Components))
		for _, cc := range mtc.Components {
			states[cc.Name] = cc.States
		}
		componentStates[mtc.Name] = states
		components := make([]ComponentSpec, len(mtc.Components))
		cidx := make(map[string]int, len(mtc.Components))
		for j, cc := range mtc.Components {
			spec := ComponentSpec{Name: cc.Name, States: cc.States, IsInteger: cc.IsInteger}
			if cc.IsInteger {
				spec.DefaultState = 0
			} else if cc.DefaultState != "" {
				spec.DefaultState = spec.StateIndex(cc.DefaultState)
			} else {
				spec.DefaultState = NoState
			}
			components[j] = spec
			cidx[cc.Name] = j
		}
		mt := NewMoleculeType(i, mtc.Name, components, mtc.PopulationType)
		for _, set := range mtc.EquivalentSets {
			idxs := make([]int, len(set))
			for k, name := range set {
				idxs[k] = cidx[name]
			}
			mt.AddEquivalentComponents(idxs)
		}
		sys.MoleculeTypes = append(sys.MoleculeTypes, mt)
		typeIndex[mtc.Name] = i
		componentIndex[mtc.Name] = cidx
	}

	localFnIndex := make(map[string]int)
	for i, lfc := range cfg.LocalFunctions {
		kind := LocalFunctionTypeI
		if lfc.Kind == "typeII" {
			kind = LocalFunctionTypeII
		}
		scope := make([]int, len(lfc.ScopeTypes))
		for j, t := range lfc.ScopeTypes {
			scope[j] = typeIndex[t]
		}
		lf := &LocalFunction{ID: i, Name: lfc.Name, Expr: lfc.Expr, Kind: kind, ScopeTypes: scope}
		sys.AddLocalFunction(lf)
		localFnIndex[lfc.Name] = i
		for _, t := range scope {
			mt := sys.MoleculeTypes[t]
			if kind == LocalFunctionTypeI {
				mt.typeI = append(mt.typeI, i)
			} else {
				mt.typeII = append(mt.typeII, i)
			}
		}
	}

	for i, gfc := range cfg.GlobalFunctions {
		sys.AddGlobalFunction(&GlobalFunction{ID: i, Name: gfc.Name, Expr: gfc.Expr})
	}

	typeNameByID := make(map[int]string, len(cfg.MoleculeTypes))
	for _, mtc := range cfg.MoleculeTypes {
		typeNameByID[typeIndex[mtc.Name]] = mtc.Name
	}

	for i, rc := range cfg.Rules {
		rule := &Rule{ID: i, Name: rc.Name, RateExpr: rc.RateExpr}
		for _, pc := range rc.Reactants {
			p, typeID, err := buildPattern(pc, typeIndex, componentIndex, componentStates)
			if err != nil {
				return nil, err
			}
			rule.Reactants = append(rule.Reactants, RuleReactant{Pattern: p, TypeID: typeID})
		}
		for ri, react := range rule.Reactants {
			sys.MoleculeTypes[react.TypeID].addRulePosition(rule, ri)
		}
		if rc.DORFunction != "" {
			rule.Kind = RuleDOR
			rule.DORFunctionID = localFnIndex[rc.DORFunction]
			rule.DORReactant = rc.DORReactant
		}
		for _, ac := range rc.Actions {
			t, err := buildTransformation(ac, rule.Reactants, componentIndex, componentStates, typeIndex, typeNameByID)
			if err != nil {
				return nil, err
			}
			rule.Actions = append(rule.Actions, t)
		}
		sys.Rules = append(sys.Rules, rule)
	}

	for i, oc := range cfg.Observables {
		kind := ObservableMolecules
		if oc.Kind == "species" {
			kind = ObservableSpecies
		}
		o := newObservable(i, oc.Name, kind)
		if kind == ObservableMolecules {
			p, _, err := buildPattern(oc.Pattern, typeIndex, componentIndex, componentStates)
			if err != nil {
				return nil, err
			}
			o.Pattern = p
		} else {
			o.SpeciesLabels = make(map[string]struct{}, len(oc.SpeciesLabels))
			for _, l := range oc.SpeciesLabels {
				o.SpeciesLabels[l] = struct{}{}
			}
		}
		sys.Observables = append(sys.Observables, o)
	}

	for _, sd := range cfg.Seed {
		sys.Seed(typeIndex[sd.MoleculeType], sd.Count)
	}

	return sys, nil
}

func buildPattern(pc PatternConfig, typeIndex map[string]int, componentIndex map[string]map[string]int, componentStates map[string]map[string][]string) (*Pattern, int, error) {
	p := &Pattern{}
	typeID := -1
	for _, tm := range pc.Molecules {
		tID, ok := typeIndex[tm.MoleculeType]
		if !ok {
			return nil, 0, fmt.Errorf("unknown molecule type %q", tm.MoleculeType)
		}
		if typeID < 0 {
			typeID = tID
		}
		mt := TemplateMolecule{TypeID: tID}
		cidx := componentIndex[tm.MoleculeType]
		for _, cp := range tm.Components {
			idx, ok := cidx[cp.Name]
			if !ok {
				return nil, 0, fmt.Errorf("unknown component %q on %q", cp.Name, tm.MoleculeType)
			}
			comp := ComponentPattern{Index: idx, MatchAnyState: cp.State == "", MatchAnyBond: cp.Bond == ""}
			if cp.State != "" {
				comp.State = -1
				for si, s := range componentStates[tm.MoleculeType][cp.Name] {
					if s == cp.State {
						comp.State = si
					}
				}
			}
			if cp.Bond == "bonded" {
				comp.RequireBond = true
			}
			mt.Components = append(mt.Components, comp)
		}
		p.Molecules = append(p.Molecules, mt)
	}
	for _, bp := range pc.Bonds {
		p.Bonds = append(p.Bonds, BondPattern{M1: bp.M1, C1: bp.C1, M2: bp.M2, C2: bp.C2})
	}
	return p, typeID, nil
}

func buildTransformation(ac TransformationConfig, reactants []RuleReactant, componentIndex map[string]map[string]int, componentStates map[string]map[string][]string, typeIndex map[string]int, typeNameByID map[int]string) (Transformation, error) {
	t := Transformation{ReactantIndex: ac.Reactant, ReactantIndex2: ac.Reactant2, DeleteConnected: ac.Connected, Delta: ac.Delta}
	switch ac.Kind {
	case "changeState":
		t.Kind = TransformChangeState
		tname := typeNameByID[reactants[ac.Reactant].TypeID]
		t.Component = componentIndex[tname][ac.Component]
		t.NewState = -1
		for si, s := range componentStates[tname][ac.Component] {
			if s == ac.NewState {
				t.NewState = si
			}
		}
	case "bind":
		t.Kind = TransformBind
		t1 := typeNameByID[reactants[ac.Reactant].TypeID]
		t2 := typeNameByID[reactants[ac.Reactant2].TypeID]
		t.Component = componentIndex[t1][ac.Component]
		t.Component2 = componentIndex[t2][ac.Component2]
	case "unbind":
		t.Kind = TransformUnbind
		tname := typeNameByID[reactants[ac.Reactant].TypeID]
		t.Component = componentIndex[tname][ac.Component]
	case "addMolecule":
		t.Kind = TransformAddMolecule
		t.NewTypeID = typeIndex[ac.NewType]
	case "deleteMolecule":
		t.Kind = TransformDeleteMolecule
	case "incrementPopulation":
		t.Kind = TransformIncrementPopulation
	case "decrementPopulation":
		t.Kind = TransformDecrementPopulation
	default:
		return t, fmt.Errorf("unknown action kind %q", ac.Kind)
	}
	return t, nil
}

// BuildModelFromConfigWithTimeout is a convenience wrapper that also
// installs a wall-clock cap, for callers (the CLI, the server) that
// want StepTo/Sim to bail out of a runaway model instead of blocking
// forever.
func BuildModelFromConfigWithTimeout(cfg *ModelConfig, logger Logger, cap time.Duration) (*System, error) {
	sys, err := BuildModelFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	sys.wallClockCap = cap
	return sys, nil
}
