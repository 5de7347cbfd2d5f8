package nfcore

// NoState marks a component whose value has not yet been assigned.
const NoState = -1

// NoBond marks a binding-site slot that is currently free.
const NoBond = -1

// ComponentSpec describes one named component (binding site / state
// site) on a molecule type: its legal state symbols, its default
// state, and whether its value space is integer-valued or symbolic.
type ComponentSpec struct {
	Name          string
	States        []string // symbolic state table; empty for integer-valued components
	DefaultState  int
	IsInteger     bool
}

// StateIndex returns the integer code for a named state symbol, or -1
// if the component does not recognize it.
func (c ComponentSpec) StateIndex(name string) int {
	for i, s := range c.States {
		if s == name {
			return i
		}
	}
	return -1
}

// MoleculeType is the immutable-after-load description of a "kind" of
// molecule: its ordered components, their equivalence classes (for
// symmetric matching), and whether instances are tracked individually
// or lumped into a single population count.
type MoleculeType struct {
	ID             int
	Name           string
	Components     []ComponentSpec
	PopulationType bool

	// eqClass[i] is the equivalence-class number of component i, or -1
	// if component i belongs to no symmetric class.
	eqClass []int
	// eqClasses[k] lists the component indices sharing equivalence class k.
	eqClasses [][]int

	system    *System
	instances []int // molecule IDs of this type, dense, order not significant

	// reaction membership bookkeeping: which rules reference this type
	// at which reactant position. Recorded by the model builder; the
	// membership update scans sys.Rules directly and does not read it.
	rulePositions []rulePosition

	// local functions whose domain is any molecule of this type.
	typeI  []int // indices into System.localFunctions (Type-I: DOR dependents)
	typeII []int // indices into System.localFunctions (Type-II: observable dependents)
}

type rulePosition struct {
	rule *Rule
	pos  int
}

// NewMoleculeType constructs a molecule type with the given components.
// Equivalence classes, if any, are installed afterwards via
// AddEquivalentComponents.
func NewMoleculeType(id int, name string, components []ComponentSpec, populationType bool) *MoleculeType {
	eq := make([]int, len(components))
	for i := range eq {
		eq[i] = -1
	}
	return &MoleculeType{
		ID:             id,
		Name:           name,
		Components:     components,
		PopulationType: populationType,
		eqClass:        eq,
	}
}

// ComponentIndex returns the index of the named component, or -1.
func (mt *MoleculeType) ComponentIndex(name string) int {
	for i, c := range mt.Components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AddEquivalentComponents declares that the given component indices
// are mutually symmetric (e.g. the three 'r' sites of L(r,r,r,t,t)).
// It is called once per equivalence class while building the type.
func (mt *MoleculeType) AddEquivalentComponents(indices []int) {
	class := len(mt.eqClasses)
	mt.eqClasses = append(mt.eqClasses, append([]int(nil), indices...))
	for _, idx := range indices {
		mt.eqClass[idx] = class
	}
}

// EquivalenceClass returns the sibling component indices (including
// cIndex itself) that share cIndex's equivalence class, or nil if
// cIndex is not part of any symmetric group.
func (mt *MoleculeType) EquivalenceClass(cIndex int) []int {
	class := mt.eqClass[cIndex]
	if class < 0 {
		return nil
	}
	return mt.eqClasses[class]
}

// IsEquivalent reports whether component cIndex participates in a
// symmetric equivalence class.
func (mt *MoleculeType) IsEquivalent(cIndex int) bool {
	return mt.eqClass[cIndex] >= 0
}

// genDefaultMolecule allocates (but does not register) a molecule of
// this type with every component at its default state and every bond
// slot free.
func (mt *MoleculeType) genDefaultMolecule() *Molecule {
	comp := make([]int, len(mt.Components))
	bond := make([]BondSlot, len(mt.Components))
	for i, c := range mt.Components {
		comp[i] = c.DefaultState
		bond[i] = BondSlot{MoleculeID: NoBond, Component: NoBond}
	}
	return &Molecule{
		TypeID:    mt.ID,
		Alive:     true,
		ComplexID: -1,
		Component: comp,
		Bond:      bond,
	}
}

// addRulePosition records that rule r references this type at
// reactant position pos in rulePositions.
func (mt *MoleculeType) addRulePosition(r *Rule, pos int) {
	mt.rulePositions = append(mt.rulePositions, rulePosition{rule: r, pos: pos})
}
