package nfcore

// SetComponentState assigns a new state code to molecule m's
// component cIndex. It does not by itself trigger reactant-list
// or observable updates; callers go through ApplyTransformations so
// the disturbed-set pipeline sees the change (spec.md §4.4).
func SetComponentState(m *Molecule, cIndex, value int) {
	m.Component[cIndex] = value
}

// Bind establishes a symmetric bond between m1's component c1 and
// m2's component c2. Both slots must be open; Bind does not check
// this, callers (the transformation pipeline) are expected to have
// validated it against the rule's pattern match already.
//
// If m1 and m2 belong to different complexes, the two complexes are
// merged into one. Binding two components already in the same
// complex (ring closure) leaves the complex set unchanged.
func Bind(sys *System, m1 *Molecule, c1 int, m2 *Molecule, c2 int) {
	m1.Bond[c1] = BondSlot{MoleculeID: m2.ID, Component: c2}
	m2.Bond[c2] = BondSlot{MoleculeID: m1.ID, Component: c1}

	if !sys.Complexes.useComplex {
		return
	}
	if m1.ComplexID != m2.ComplexID {
		sys.Complexes.merge(m1.ComplexID, m2.ComplexID)
	} else {
		sys.Complexes.Get(m1.ComplexID).invalidateLabel()
	}
}

// Unbind clears the bond at molecule m's component cIndex and the
// symmetric slot on its former partner, returning the two molecules
// that were just disconnected (the logging/observable-update
// collaborator needs both ends, per spec.md §4.1).
//
// If the registry is tracking complexes, Unbind re-traverses from m
// to decide whether the complex needs to split.
func Unbind(sys *System, m *Molecule, cIndex int) (a, b *Molecule) {
	slot := m.Bond[cIndex]
	partner := sys.molecule(slot.MoleculeID)
	partnerComponent := slot.Component

	m.Bond[cIndex] = BondSlot{MoleculeID: NoBond, Component: NoBond}
	partner.Bond[partnerComponent] = BondSlot{MoleculeID: NoBond, Component: NoBond}

	if sys.Complexes.useComplex {
		sys.Complexes.split(m, partner)
	}
	return m, partner
}

// Traverse performs a breadth-first walk of the bonded neighborhood
// reachable from start, visiting at most maxDepth edges out (the
// "universal traversal limit" of spec.md §4.2 and §9). It returns the
// set of reached molecule ids (including start, at depth 0) together
// with the depth each was first reached at, and whether the walk was
// cut short by maxDepth before exhausting the neighborhood.
//
// maxDepth <= 0 means unlimited.
func Traverse(sys *System, start *Molecule, maxDepth int) (reached map[int]int, truncated bool) {
	reached = map[int]int{start.ID: 0}
	frontier := []*Molecule{start}
	depth := 0
	for len(frontier) > 0 {
		var next []*Molecule
		for _, m := range frontier {
			for _, slot := range m.Bond {
				if slot.MoleculeID == NoBond {
					continue
				}
				if _, seen := reached[slot.MoleculeID]; seen {
					continue
				}
				if maxDepth > 0 && depth+1 > maxDepth {
					return reached, true
				}
				reached[slot.MoleculeID] = depth + 1
				next = append(next, sys.molecule(slot.MoleculeID))
			}
		}
		frontier = next
		depth++
	}
	return reached, false
}
