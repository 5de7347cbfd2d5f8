package nfcore

// ComponentPattern constrains one component of a TemplateMolecule: an
// optional state requirement and an optional bond requirement. Either
// may be left unconstrained (MatchAnyState / MatchAnyBond).
type ComponentPattern struct {
	Index int

	MatchAnyState bool
	State         int

	MatchAnyBond bool
	// RequireBond, when true and MatchAnyBond is false, requires the
	// component to be bonded (to anything); when false it requires the
	// component to be free.
	RequireBond bool
}

// TemplateMolecule is one node of a rule's reactant pattern: a
// molecule-type constraint plus per-component constraints. Bonds
// between TemplateMolecules in the same pattern are expressed as
// parallel edges via BondPattern; the matcher does not resolve them,
// and matchSingle rejects any pattern that lists bonds.
type TemplateMolecule struct {
	TypeID     int
	Components []ComponentPattern
}

// BondPattern expresses that component c1 of template molecule m1 in
// a pattern must be bonded to component c2 of template molecule m2.
type BondPattern struct {
	M1, C1 int
	M2, C2 int
}

// Pattern is a connected (or disconnected, for multi-reactant
// patterns with no cross-molecule bonds) set of TemplateMolecules
// plus the bonds required between them. It is the unit a Rule reactant
// position or an Observable matches against live molecules.
type Pattern struct {
	Molecules []TemplateMolecule
	Bonds     []BondPattern
}

// matchesMolecule reports whether molecule m, interpreted as template
// index tIdx within p, satisfies every per-component constraint. It
// does not check cross-molecule bond constraints.
func (p *Pattern) matchesMolecule(tIdx int, m *Molecule) bool {
	tm := p.Molecules[tIdx]
	if tm.TypeID != m.TypeID {
		return false
	}
	for _, cp := range tm.Components {
		if !cp.MatchAnyState && m.Component[cp.Index] != cp.State {
			return false
		}
		if !cp.MatchAnyBond {
			bonded := m.IsBindingSiteBonded(cp.Index)
			if bonded != cp.RequireBond {
				return false
			}
		}
	}
	return true
}

// Mapping is one way a Pattern matched a set of live molecules: a
// slice parallel to Pattern.Molecules giving the matched molecule id
// at each template position.
type Mapping struct {
	ID         int
	MoleculeID []int
}

// MappingSet is the full collection of ways a Pattern currently
// matches the live system, keyed by mapping id for O(1) add/remove as
// molecules change (spec.md §4.3's "reactant list" support structure).
type MappingSet struct {
	nextID   int
	mappings map[int]*Mapping
}

func newMappingSet() *MappingSet {
	return &MappingSet{mappings: make(map[int]*Mapping)}
}

func (s *MappingSet) add(molIDs []int) *Mapping {
	id := s.nextID
	s.nextID++
	mp := &Mapping{ID: id, MoleculeID: append([]int(nil), molIDs...)}
	s.mappings[id] = mp
	return mp
}

func (s *MappingSet) remove(id int) {
	delete(s.mappings, id)
}

func (s *MappingSet) get(id int) *Mapping {
	return s.mappings[id]
}

func (s *MappingSet) Size() int {
	return len(s.mappings)
}

// componentSatisfiesAt reports whether cp's state/bond constraint,
// originally written against cp.Index, also holds for m's component
// at idx. Used to count how many sites of an equivalence class could
// have played cp's role.
func componentSatisfiesAt(m *Molecule, cp ComponentPattern, idx int) bool {
	if !cp.MatchAnyState && m.Component[idx] != cp.State {
		return false
	}
	if !cp.MatchAnyBond && m.IsBindingSiteBonded(idx) != cp.RequireBond {
		return false
	}
	return true
}

// matchSingle finds every mapping of a single-molecule pattern (the
// common case: a rule reactant that is one TemplateMolecule with no
// cross-molecule bonds) against the live instances of its molecule
// type, honoring symmetric equivalence classes so a molecule with k
// interchangeable sites that all satisfy a constraint yields k
// distinct mappings, one per qualifying site (spec.md §4.3, "symmetric
// component multiplicity").
func matchSingle(sys *System, p *Pattern, m *Molecule) [][]int {
	if len(p.Molecules) != 1 || len(p.Bonds) != 0 {
		return nil
	}
	if !p.matchesMolecule(0, m) {
		return nil
	}
	mt := sys.MoleculeTypes[m.TypeID]
	seenClass := map[int]bool{}
	multiplier := 1
	for _, cp := range p.Molecules[0].Components {
		// A component pattern that constrains nothing doesn't pick out a
		// particular site, so it contributes no multiplicity.
		if cp.MatchAnyState && cp.MatchAnyBond {
			continue
		}
		class := mt.eqClass[cp.Index]
		if class < 0 {
			continue
		}
		if seenClass[class] {
			continue
		}
		seenClass[class] = true
		count := 0
		for _, sib := range mt.eqClasses[class] {
			if componentSatisfiesAt(m, cp, sib) {
				count++
			}
		}
		if count == 0 {
			count = 1
		}
		multiplier *= count
	}
	out := make([][]int, multiplier)
	for i := range out {
		out[i] = []int{m.ID}
	}
	return out
}
