package nfcore_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amstokely/nfsim/internal/nfcore"
)

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	sys := nfcore.NewSystem(nfcore.SystemOptions{UseComplex: true})
	mt := nfcore.NewMoleculeType(0, "A", []nfcore.ComponentSpec{{Name: "site"}}, false)
	sys.MoleculeTypes = append(sys.MoleculeTypes, mt)
	mols := sys.Seed(0, 2)
	nfcore.Bind(sys, mols[0], 0, mols[1], 0)

	snap := sys.Snapshot()
	require.Len(t, snap.Molecules, 2)
	require.Equal(t, sys.RunID.String(), snap.RunID)

	data, err := nfcore.EncodeSnapshotJSON(snap)
	require.NoError(t, err)

	decoded, err := nfcore.DecodeSnapshotJSON(data)
	require.NoError(t, err)
	require.Equal(t, snap.RunID, decoded.RunID)
	require.Len(t, decoded.Molecules, 2)
	require.NoError(t, nfcore.ValidateSnapshot(decoded, sys))
}

func TestValidateSnapshotRejectsDuplicateAndUnknownTypeIDs(t *testing.T) {
	sys := nfcore.NewSystem(nfcore.SystemOptions{})
	mt := nfcore.NewMoleculeType(0, "A", nil, false)
	sys.MoleculeTypes = append(sys.MoleculeTypes, mt)

	dup := nfcore.Snapshot{Molecules: []nfcore.MoleculeSnapshot{{ID: 1, TypeID: 0}, {ID: 1, TypeID: 0}}}
	require.Error(t, nfcore.ValidateSnapshot(dup, sys))

	unknownType := nfcore.Snapshot{Molecules: []nfcore.MoleculeSnapshot{{ID: 1, TypeID: 99}}}
	require.Error(t, nfcore.ValidateSnapshot(unknownType, sys))
}

func TestEncodeSamplesCSVFlattensToLongForm(t *testing.T) {
	samples := []nfcore.Sample{
		{Time: 0, Values: map[string]int{"On": 5, "Off": 95}},
		{Time: 1, Values: map[string]int{"On": 7, "Off": 93}},
	}
	data, err := nfcore.EncodeSamplesCSV(samples)
	require.NoError(t, err)

	out := string(data)
	require.Contains(t, out, "time,observable,value")
	require.Equal(t, 5, len(strings.Split(strings.TrimRight(out, "\n"), "\n"))) // header + 2 samples * 2 observables
}

func TestEncodeRuleFiringCountsCSVReadsFireCountField(t *testing.T) {
	sys := nfcore.NewSystem(nfcore.SystemOptions{})
	sys.Rules = append(sys.Rules, &nfcore.Rule{ID: 0, Name: "turnOn", FireCount: 3})
	sys.Rules = append(sys.Rules, &nfcore.Rule{ID: 1, Name: "turnOff", FireCount: 0})

	data, err := nfcore.EncodeRuleFiringCountsCSV(sys)
	require.NoError(t, err)

	out := string(data)
	require.Contains(t, out, "rule,fires")
	require.Contains(t, out, "turnOn,3")
	require.Contains(t, out, "turnOff,0")
}
