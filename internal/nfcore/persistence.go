package nfcore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gocarina/gocsv"
)

// Snapshot represents a point-in-time capture of a System's molecule
// population, adapted from the teacher's environment snapshot to the
// graph molecule model: every bond slot and component value is
// carried so a snapshot can be replayed without re-deriving structure.
type Snapshot struct {
	RunID     string            `json:"run_id"`
	Time      float64           `json:"time"`
	Molecules []MoleculeSnapshot `json:"molecules"`
}

// MoleculeSnapshot is the JSON-facing form of a Molecule.
type MoleculeSnapshot struct {
	ID              int    `json:"id"`
	TypeID          int    `json:"type_id"`
	ComplexID       int    `json:"complex_id"`
	Component       []int  `json:"component"`
	Bond            []BondSlot `json:"bond"`
	PopulationCount int    `json:"population_count,omitempty"`
}

// Snapshot captures the current molecule population.
func (sys *System) Snapshot() Snapshot {
	s := Snapshot{RunID: sys.RunID.String(), Time: sys.Time}
	ids := make([]int, 0, len(sys.molecules))
	for id := range sys.molecules {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		m := sys.molecule(id)
		s.Molecules = append(s.Molecules, MoleculeSnapshot{
			ID: m.ID, TypeID: m.TypeID, ComplexID: m.ComplexID,
			Component: append([]int(nil), m.Component...),
			Bond:      append([]BondSlot(nil), m.Bond...),
			PopulationCount: m.PopulationCount,
		})
	}
	return s
}

// ValidateSnapshot checks a Snapshot for internal consistency: unique
// molecule ids and type ids that exist in sys's molecule-type table.
func ValidateSnapshot(snap Snapshot, sys *System) error {
	seen := make(map[int]struct{})
	for _, m := range snap.Molecules {
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate molecule id %d in snapshot", m.ID)
		}
		seen[m.ID] = struct{}{}
		if sys != nil && (m.TypeID < 0 || m.TypeID >= len(sys.MoleculeTypes)) {
			return fmt.Errorf("molecule %d has unknown type id %d", m.ID, m.TypeID)
		}
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// SampleRow is the fixed-schema CSV row for a single Sample's
// observable readings, used by EncodeSamplesCSV. A wide table with one
// column per observable would change shape with every model; this
// long form (time, observable, value) has a fixed, known-ahead-of-time
// column set, which is what makes a reflection-based CSV marshaler a
// good fit here (spec.md §5 "export").
type SampleRow struct {
	Time  float64 `csv:"time"`
	Name  string  `csv:"observable"`
	Value int     `csv:"value"`
}

// EncodeSamplesCSV flattens a Sim() result into long-form rows (one
// row per observable per sample point) and marshals them with gocsv,
// since the row shape here is fixed regardless of which model
// produced the samples.
func EncodeSamplesCSV(samples []Sample) ([]byte, error) {
	var rows []SampleRow
	for _, s := range samples {
		names := make([]string, 0, len(s.Values))
		for name := range s.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, SampleRow{Time: s.Time, Name: name, Value: s.Values[name]})
		}
	}
	return gocsv.MarshalBytes(&rows)
}

// RuleFiringCount is the fixed-schema CSV row for a per-rule firing
// summary.
type RuleFiringCount struct {
	Rule  string `csv:"rule"`
	Fires int    `csv:"fires"`
}

// EncodeRuleFiringCountsCSV exports how many times each rule in sys has
// been selected and fired since the system was created.
func EncodeRuleFiringCountsCSV(sys *System) ([]byte, error) {
	rows := make([]RuleFiringCount, 0, len(sys.Rules))
	for _, r := range sys.Rules {
		rows = append(rows, RuleFiringCount{Rule: r.Name, Fires: r.FireCount})
	}
	return gocsv.MarshalBytes(&rows)
}
