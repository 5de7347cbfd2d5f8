package client

import "testing"

func TestModelBuilderBuild(t *testing.T) {
	cfg := NewModel("test-model").
		Param("k1", 0.5).
		RandomSeed(7).
		UseComplex(true).
		MoleculeType(NewMoleculeType("A").Component("state", "off", "on").DefaultState("state", "off")).
		Rule(NewRule("flip").
			Reactant(NewPattern().Molecule("A", State("state", "off"))).
			ChangeState(0, "state", "on").
			Rate("k1")).
		Observable(NewMoleculesObservable("On", NewPattern().Molecule("A", State("state", "on")))).
		Seed("A", 10).
		Build()

	if cfg.Name != "test-model" {
		t.Errorf("expected name 'test-model', got %q", cfg.Name)
	}
	if cfg.Parameters["k1"] != 0.5 {
		t.Errorf("expected param k1=0.5, got %v", cfg.Parameters["k1"])
	}
	if cfg.RandomSeed != 7 {
		t.Errorf("expected random seed 7, got %d", cfg.RandomSeed)
	}
	if !cfg.UseComplex {
		t.Error("expected UseComplex to be true")
	}
	if len(cfg.MoleculeTypes) != 1 || cfg.MoleculeTypes[0].Name != "A" {
		t.Fatalf("expected one molecule type named A, got %+v", cfg.MoleculeTypes)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Name != "flip" {
		t.Fatalf("expected one rule named flip, got %+v", cfg.Rules)
	}
	if len(cfg.Observables) != 1 || cfg.Observables[0].Name != "On" {
		t.Fatalf("expected one observable named On, got %+v", cfg.Observables)
	}
	if len(cfg.Seed) != 1 || cfg.Seed[0].MoleculeType != "A" || cfg.Seed[0].Count != 10 {
		t.Fatalf("expected seed of 10 A, got %+v", cfg.Seed)
	}
}

func TestMoleculeTypeBuilder(t *testing.T) {
	cfg := NewMoleculeType("Receptor").
		Component("ligand", "bound", "free").
		DefaultState("ligand", "free").
		IntegerComponent("count").
		Equivalent("siteA", "siteB").
		Build()

	if cfg.Name != "Receptor" {
		t.Errorf("expected name 'Receptor', got %q", cfg.Name)
	}
	if len(cfg.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(cfg.Components))
	}
	if cfg.Components[0].DefaultState != "free" {
		t.Errorf("expected default state 'free', got %q", cfg.Components[0].DefaultState)
	}
	if !cfg.Components[1].IsInteger {
		t.Error("expected second component to be an integer component")
	}
	if len(cfg.EquivalentSets) != 1 || len(cfg.EquivalentSets[0]) != 2 {
		t.Fatalf("expected one equivalent set of size 2, got %+v", cfg.EquivalentSets)
	}
}

func TestPatternBuilderBond(t *testing.T) {
	cfg := NewPattern().
		Molecule("Receptor", Open("site")).
		Molecule("Receptor", Bonded("site")).
		Bond(0, 0, 1, 0).
		Build()

	if len(cfg.Molecules) != 2 {
		t.Fatalf("expected 2 molecules in pattern, got %d", len(cfg.Molecules))
	}
	if cfg.Molecules[0].Components[0].Bond != "open" {
		t.Errorf("expected first molecule's site to require open, got %q", cfg.Molecules[0].Components[0].Bond)
	}
	if cfg.Molecules[1].Components[0].Bond != "bonded" {
		t.Errorf("expected second molecule's site to require bonded, got %q", cfg.Molecules[1].Components[0].Bond)
	}
	if len(cfg.Bonds) != 1 {
		t.Fatalf("expected 1 bond constraint, got %d", len(cfg.Bonds))
	}
}

func TestRuleBuilderActions(t *testing.T) {
	cfg := NewRule("bindAndDecay").
		Reactant(NewPattern().Molecule("A", Open("site"))).
		Reactant(NewPattern().Molecule("B", Open("site"))).
		Bind(0, "site", 1, "site").
		DeleteMolecule(0, true).
		Rate("k").
		Build()

	if len(cfg.Reactants) != 2 {
		t.Fatalf("expected 2 reactants, got %d", len(cfg.Reactants))
	}
	if len(cfg.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(cfg.Actions))
	}
	if cfg.Actions[0].Kind != "bind" {
		t.Errorf("expected first action kind 'bind', got %q", cfg.Actions[0].Kind)
	}
	if cfg.Actions[1].Kind != "deleteMolecule" || !cfg.Actions[1].Connected {
		t.Errorf("expected second action to be a connected deleteMolecule, got %+v", cfg.Actions[1])
	}
}

func TestRuleBuilderDOR(t *testing.T) {
	cfg := NewRule("activate").
		Reactant(NewPattern().Molecule("Receptor")).
		DOR("ligandWeight", 0).
		Rate("kActivate").
		Build()

	if cfg.DORFunction != "ligandWeight" {
		t.Errorf("expected DOR function 'ligandWeight', got %q", cfg.DORFunction)
	}
	if cfg.DORReactant != 0 {
		t.Errorf("expected DOR reactant index 0, got %d", cfg.DORReactant)
	}
}

func TestObservableBuilders(t *testing.T) {
	mol := NewMoleculesObservable("Bound", NewPattern().Molecule("A", Bonded("site"))).Build()
	if mol.Kind != "molecules" || mol.Name != "Bound" {
		t.Errorf("unexpected molecules observable config: %+v", mol)
	}
	if len(mol.Pattern.Molecules) != 1 {
		t.Errorf("expected molecules observable to carry its pattern, got %+v", mol.Pattern)
	}

	species := NewSpeciesObservable("Dimers", "A(site!1).A(site!1)").Build()
	if species.Kind != "species" || len(species.SpeciesLabels) != 1 {
		t.Errorf("unexpected species observable config: %+v", species)
	}
}

func TestComponentPatternHelpers(t *testing.T) {
	if s := State("state", "on"); s.Name != "state" || s.State != "on" {
		t.Errorf("unexpected State() result: %+v", s)
	}
	if b := Bonded("site"); b.Name != "site" || b.Bond != "bonded" {
		t.Errorf("unexpected Bonded() result: %+v", b)
	}
	if o := Open("site"); o.Name != "site" || o.Bond != "open" {
		t.Errorf("unexpected Open() result: %+v", o)
	}
}
