package nfcore

// TransformKind enumerates the primitive edits a rule firing can apply
// to matched molecules (spec.md §4.4).
type TransformKind int

const (
	TransformChangeState TransformKind = iota
	TransformBind
	TransformUnbind
	TransformAddMolecule
	TransformDeleteMolecule
	TransformIncrementPopulation
	TransformDecrementPopulation
)

// Transformation is one edit within a rule's action block, addressed
// in terms of template positions (reactant index, component index)
// rather than live molecule ids; ApplyTransformations binds it to the
// molecules of a concrete mapping at firing time.
type Transformation struct {
	Kind TransformKind

	// ChangeState
	ReactantIndex int
	Component     int
	NewState      int

	// Bind / Unbind
	ReactantIndex2 int
	Component2     int

	// AddMolecule: molecule type to instantiate, using its default
	// (unbound, default-state) form.
	NewTypeID int

	// DeleteMolecule: whether bonded partners are also removed
	// (DeleteMoleculesConnected) or just unbound first.
	DeleteConnected bool

	// IncrementPopulation / DecrementPopulation
	Delta int
}

// disturbed is the accumulator the transformation pipeline fills in as
// it applies a rule's actions, so the caller can run exactly one
// reactant-list / observable update pass afterward instead of one per
// edit (spec.md §4.4, "disturbed set").
type disturbed struct {
	molecules map[int]*Molecule
}

func newDisturbed() *disturbed {
	return &disturbed{molecules: make(map[int]*Molecule)}
}

func (d *disturbed) mark(m *Molecule) {
	if m != nil {
		d.molecules[m.ID] = m
	}
}

// ApplyTransformations runs every transformation in order against the
// molecules bound by mapping (in reactant-index order, matching the
// rule's Reactants slice), mutating system state through the C1
// primitives and accumulating every touched molecule into a disturbed
// set. It returns that set so the caller (Rule.Fire) can push it
// through System.propagateDisturbed.
//
// Order matters and is preserved exactly as authored: an Unbind must
// run before a subsequent AddMolecule that assumes the site is free,
// for instance. This mirrors NFcore's transformation list semantics.
func ApplyTransformations(sys *System, reactantMolecules [][]*Molecule, actions []Transformation) *disturbed {
	d := newDisturbed()
	for _, t := range actions {
		switch t.Kind {
		case TransformChangeState:
			m := reactantMolecules[t.ReactantIndex][0]
			SetComponentState(m, t.Component, t.NewState)
			d.mark(m)

		case TransformBind:
			m1 := reactantMolecules[t.ReactantIndex][0]
			m2 := reactantMolecules[t.ReactantIndex2][0]
			Bind(sys, m1, t.Component, m2, t.Component2)
			d.mark(m1)
			d.mark(m2)

		case TransformUnbind:
			m := reactantMolecules[t.ReactantIndex][0]
			if m.IsBindingSiteOpen(t.Component) {
				continue
			}
			a, b := Unbind(sys, m, t.Component)
			d.mark(a)
			d.mark(b)

		case TransformAddMolecule:
			m := sys.instantiate(t.NewTypeID)
			d.mark(m)

		case TransformDeleteMolecule:
			m := reactantMolecules[t.ReactantIndex][0]
			sys.destroy(m, t.DeleteConnected, d)

		case TransformIncrementPopulation:
			m := reactantMolecules[t.ReactantIndex][0]
			m.PopulationCount += t.Delta
			d.mark(m)

		case TransformDecrementPopulation:
			m := reactantMolecules[t.ReactantIndex][0]
			m.PopulationCount -= t.Delta
			if m.PopulationCount < 0 {
				m.PopulationCount = 0
			}
			d.mark(m)
		}
	}
	return d
}
