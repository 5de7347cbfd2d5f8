package nfcore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amstokely/nfsim/internal/nfcore"
)

func TestComponentSpecStateIndex(t *testing.T) {
	spec := nfcore.ComponentSpec{Name: "state", States: []string{"off", "on"}}
	require.Equal(t, 0, spec.StateIndex("off"))
	require.Equal(t, 1, spec.StateIndex("on"))
	require.Equal(t, -1, spec.StateIndex("missing"))
}

func TestMoleculeTypeComponentIndex(t *testing.T) {
	mt := nfcore.NewMoleculeType(0, "Receptor", []nfcore.ComponentSpec{{Name: "siteA"}, {Name: "siteB"}}, false)
	require.Equal(t, 0, mt.ComponentIndex("siteA"))
	require.Equal(t, 1, mt.ComponentIndex("siteB"))
	require.Equal(t, -1, mt.ComponentIndex("siteC"))
}

func TestMoleculeTypeEquivalenceClasses(t *testing.T) {
	mt := nfcore.NewMoleculeType(0, "Ligand", []nfcore.ComponentSpec{{Name: "r1"}, {Name: "r2"}, {Name: "r3"}, {Name: "t"}}, false)
	require.False(t, mt.IsEquivalent(0))

	mt.AddEquivalentComponents([]int{0, 1, 2})
	require.True(t, mt.IsEquivalent(0))
	require.True(t, mt.IsEquivalent(2))
	require.False(t, mt.IsEquivalent(3))

	require.ElementsMatch(t, []int{0, 1, 2}, mt.EquivalenceClass(1))
	require.Nil(t, mt.EquivalenceClass(3))
}
