package nfcore

// BondSlot is either free (MoleculeID == NoBond) or a symmetric
// reference to a peer molecule's component.
type BondSlot struct {
	MoleculeID int
	Component  int
}

// Molecule is one instance of a MoleculeType in the running system.
// Every field here is owned by the System through non-owning indices:
// ComplexID, Bond[*].MoleculeID and RxnMapping keys are ids looked up
// through the owning registries, never pointers into another
// molecule's memory, so the graph of cross-references stays acyclic
// at the ownership level even though it is densely cyclic at the
// reference level (spec.md Design Notes, "Cyclic references").
type Molecule struct {
	ID        int
	TypeID    int
	Alive     bool
	ComplexID int

	Component []int
	Bond      []BondSlot

	// PopulationCount is only meaningful when the owning MoleculeType
	// is PopulationType; it replaces per-instance tracking with a
	// single lumped stoichiometric count.
	PopulationCount int

	// RxnMapping[ruleID] is the set of mapping-ids this molecule
	// currently holds for rule ruleID, across every reactant position
	// that rule matches it at. A set, not a scalar, because symmetric
	// components can make one molecule match a rule several times.
	RxnMapping map[int]map[int]struct{}

	// ObservableMatch[obsID] is how many times this molecule currently
	// matches observable obsID's template.
	ObservableMatch map[int]int

	// LocalFuncValue[funcID] caches the last-evaluated value of a local
	// function for this molecule.
	LocalFuncValue map[int]float64

	visited bool // unused: Traverse keeps its own visited set
}

// IsBindingSiteOpen reports whether component cIndex is currently unbound.
func (m *Molecule) IsBindingSiteOpen(cIndex int) bool {
	return m.Bond[cIndex].MoleculeID == NoBond
}

// IsBindingSiteBonded is the complement of IsBindingSiteOpen.
func (m *Molecule) IsBindingSiteBonded(cIndex int) bool {
	return !m.IsBindingSiteOpen(cIndex)
}

// mappingIDs returns the full flattened set of mapping ids this
// molecule holds for ruleID, regardless of position.
func (m *Molecule) mappingIDs(ruleID int) map[int]struct{} {
	if m.RxnMapping == nil {
		return nil
	}
	return m.RxnMapping[ruleID]
}

func (m *Molecule) addMappingID(ruleID, mappingID int) {
	if m.RxnMapping == nil {
		m.RxnMapping = make(map[int]map[int]struct{})
	}
	set, ok := m.RxnMapping[ruleID]
	if !ok {
		set = make(map[int]struct{})
		m.RxnMapping[ruleID] = set
	}
	set[mappingID] = struct{}{}
}

func (m *Molecule) removeMappingID(ruleID, mappingID int) {
	if m.RxnMapping == nil {
		return
	}
	if set, ok := m.RxnMapping[ruleID]; ok {
		delete(set, mappingID)
	}
}
