package nfcore

// ReactantList tracks every current mapping of one rule's reactant
// pattern against the live system, plus the raw vs. corrected counts
// a propensity calculation needs (spec.md §4.3).
//
// "Raw" is simply len(mappings). "Corrected" divides out
// overcounting introduced by combinatorial selection without
// replacement, when several reactant positions of the same rule
// reference the same molecule type (the NFsim "n, n-1, n-2..."
// correction). The further 1/s! factor for fully symmetric reactant
// positions (e.g. homodimerization A+A) is applied on top of this by
// Rule.symmetryFactor, since it depends on pattern identity across
// positions, not on any one list's own count.
type ReactantList struct {
	RuleID   int
	Position int
	TypeID   int

	set *MappingSet
}

func newReactantList(ruleID, position, typeID int) *ReactantList {
	return &ReactantList{RuleID: ruleID, Position: position, TypeID: typeID, set: newMappingSet()}
}

// RawCount is the number of mappings currently on file, before any
// symmetry or combinatorial correction.
func (rl *ReactantList) RawCount() int {
	return rl.set.Size()
}

// TryAdd registers a new mapping (molIDs in template order) and
// returns its mapping id.
func (rl *ReactantList) TryAdd(molIDs []int) int {
	return rl.set.add(molIDs).ID
}

// Remove drops a previously added mapping.
func (rl *ReactantList) Remove(mappingID int) {
	rl.set.remove(mappingID)
}

// Get returns the mapping for a given id, or nil.
func (rl *ReactantList) Get(mappingID int) *Mapping {
	return rl.set.get(mappingID)
}

// CorrectedCount applies the same-type-multiple-positions correction:
// if otherPositionsSameType reactant positions of this rule share
// TypeID, the effective count for position index `posRank` (0-based
// rank among those same-type positions) is RawCount() - posRank, not
// allowed to go below zero. A rule with no same-type collisions simply
// returns RawCount().
func (rl *ReactantList) CorrectedCount(posRank int) int {
	n := rl.RawCount() - posRank
	if n < 0 {
		return 0
	}
	return n
}

// All returns every live mapping, unordered.
func (rl *ReactantList) All() []*Mapping {
	out := make([]*Mapping, 0, len(rl.set.mappings))
	for _, mp := range rl.set.mappings {
		out = append(out, mp)
	}
	return out
}
