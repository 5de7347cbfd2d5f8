package nfcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSystemWithType(components []ComponentSpec, useComplex bool) (*System, []*Molecule) {
	sys := NewSystem(SystemOptions{UseComplex: useComplex})
	mt := NewMoleculeType(0, "T", components, false)
	sys.MoleculeTypes = append(sys.MoleculeTypes, mt)
	mols := sys.Seed(0, 3)
	return sys, mols
}

func TestPatternMatchesMoleculeHonorsStateAndBond(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "state", States: []string{"off", "on"}}}, false)
	m := mols[0]
	m.Component[0] = 1 // "on"

	p := &Pattern{Molecules: []TemplateMolecule{{
		TypeID:     0,
		Components: []ComponentPattern{{Index: 0, State: 1}},
	}}}
	require.True(t, p.matchesMolecule(0, m))

	p.Molecules[0].Components[0].State = 0
	require.False(t, p.matchesMolecule(0, m))

	_ = sys
}

func TestPatternMatchesMoleculeRequiresBondState(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "site"}}, false)
	a, b := mols[0], mols[1]

	open := &Pattern{Molecules: []TemplateMolecule{{TypeID: 0, Components: []ComponentPattern{
		{Index: 0, MatchAnyState: true, RequireBond: false},
	}}}}
	require.True(t, open.matchesMolecule(0, a))

	Bind(sys, a, 0, b, 0)
	require.False(t, open.matchesMolecule(0, a))

	bonded := &Pattern{Molecules: []TemplateMolecule{{TypeID: 0, Components: []ComponentPattern{
		{Index: 0, MatchAnyState: true, RequireBond: true},
	}}}}
	require.True(t, bonded.matchesMolecule(0, a))
}

func TestMatchSingleWithoutEquivalenceYieldsOneMapping(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "site"}}, false)
	m := mols[0]

	p := &Pattern{Molecules: []TemplateMolecule{{TypeID: 0, Components: []ComponentPattern{
		{Index: 0, MatchAnyState: true, MatchAnyBond: true},
	}}}}
	out := matchSingle(sys, p, m)
	require.Len(t, out, 1)
	require.Equal(t, []int{m.ID}, out[0])
}

func TestMatchSingleWithEquivalenceUnconstrainedSiblingAddsNoMapping(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "siteA"}, {Name: "siteB"}}, false)
	mt := sys.MoleculeTypes[0]
	mt.AddEquivalentComponents([]int{0, 1})
	m := mols[0]

	// Pattern only constrains siteA; siteB is the unconstrained sibling
	// in the same equivalence class and adds no extra mapping.
	p := &Pattern{Molecules: []TemplateMolecule{{TypeID: 0, Components: []ComponentPattern{
		{Index: 0, MatchAnyState: true, MatchAnyBond: true},
	}}}}
	out := matchSingle(sys, p, m)
	require.Len(t, out, 1)
}

func TestMatchSingleWithEquivalenceYieldsOneMappingPerQualifyingSite(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "r1"}, {Name: "r2"}, {Name: "r3"}}, false)
	mt := sys.MoleculeTypes[0]
	mt.AddEquivalentComponents([]int{0, 1, 2})
	m := mols[0]
	// All three equivalent sites are free.

	p := &Pattern{Molecules: []TemplateMolecule{{TypeID: 0, Components: []ComponentPattern{
		{Index: 0, MatchAnyState: true, MatchAnyBond: false, RequireBond: false},
	}}}}
	out := matchSingle(sys, p, m)
	require.Len(t, out, 3)
	for _, mapping := range out {
		require.Equal(t, []int{m.ID}, mapping)
	}
}

func TestMappingSetAddRemoveGet(t *testing.T) {
	s := newMappingSet()
	mp := s.add([]int{1, 2})
	require.Equal(t, 1, s.Size())
	require.Equal(t, mp, s.get(mp.ID))

	s.remove(mp.ID)
	require.Equal(t, 0, s.Size())
	require.Nil(t, s.get(mp.ID))
}

func TestReactantListRawAndCorrectedCount(t *testing.T) {
	rl := newReactantList(0, 0, 0)
	id1 := rl.TryAdd([]int{1})
	rl.TryAdd([]int{2})
	rl.TryAdd([]int{3})

	require.Equal(t, 3, rl.RawCount())
	require.Equal(t, 3, rl.CorrectedCount(0))
	require.Equal(t, 2, rl.CorrectedCount(1))
	require.Equal(t, 1, rl.CorrectedCount(2))
	require.Equal(t, 0, rl.CorrectedCount(3))

	rl.Remove(id1)
	require.Equal(t, 2, rl.RawCount())
	require.Nil(t, rl.Get(id1))
	require.Len(t, rl.All(), 2)
}

func TestApplyTransformationsChangeState(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "state", States: []string{"off", "on"}}}, false)
	m := mols[0]

	d := ApplyTransformations(sys, [][]*Molecule{{m}}, []Transformation{
		{Kind: TransformChangeState, ReactantIndex: 0, Component: 0, NewState: 1},
	})

	require.Equal(t, 1, m.Component[0])
	require.Contains(t, d.molecules, m.ID)
}

func TestApplyTransformationsBindAndUnbind(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "site"}}, true)
	a, b := mols[0], mols[1]

	d := ApplyTransformations(sys, [][]*Molecule{{a}, {b}}, []Transformation{
		{Kind: TransformBind, ReactantIndex: 0, Component: 0, ReactantIndex2: 1, Component2: 0},
	})
	require.True(t, a.IsBindingSiteBonded(0))
	require.Contains(t, d.molecules, a.ID)
	require.Contains(t, d.molecules, b.ID)

	d2 := ApplyTransformations(sys, [][]*Molecule{{a}}, []Transformation{
		{Kind: TransformUnbind, ReactantIndex: 0, Component: 0},
	})
	require.True(t, a.IsBindingSiteOpen(0))
	require.Contains(t, d2.molecules, a.ID)
	require.Contains(t, d2.molecules, b.ID)
}

func TestApplyTransformationsIncrementDecrementPopulationClampsAtZero(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "state"}}, false)
	m := mols[0]
	m.PopulationCount = 2

	ApplyTransformations(sys, [][]*Molecule{{m}}, []Transformation{
		{Kind: TransformDecrementPopulation, ReactantIndex: 0, Delta: 5},
	})
	require.Equal(t, 0, m.PopulationCount)

	ApplyTransformations(sys, [][]*Molecule{{m}}, []Transformation{
		{Kind: TransformIncrementPopulation, ReactantIndex: 0, Delta: 3},
	})
	require.Equal(t, 3, m.PopulationCount)
}

func TestObservableMoleculesTracksIncrementalMatchChanges(t *testing.T) {
	o := newObservable(0, "On", ObservableMolecules)
	o.onMoleculeMatchChange(0, 1)
	o.onMoleculeMatchChange(0, 1)
	require.Equal(t, 2, o.Value(nil))

	o.onMoleculeMatchChange(1, 0)
	require.Equal(t, 1, o.Value(nil))
}

func TestObservableSpeciesRecomputesOnlyWhenDirty(t *testing.T) {
	sys, mols := newTestSystemWithType([]ComponentSpec{{Name: "site"}}, true)
	o := newObservable(0, "Dimers", ObservableSpecies)
	o.SpeciesLabels = map[string]struct{}{}
	o.MarkDirty()

	// With no labels registered, nothing can match regardless of
	// complex state.
	require.Equal(t, 0, o.Value(sys))
	require.False(t, o.dirty)

	label := sys.Complexes.Get(mols[0].ComplexID).Label(sys)
	o.SpeciesLabels[label] = struct{}{}
	// Stale cached value until MarkDirty runs again.
	require.Equal(t, 0, o.Value(sys))

	// All three seeded molecules are identical singleton complexes, so
	// every one carries the registered label.
	o.MarkDirty()
	require.Equal(t, 3, o.Value(sys))
}
