package nfcore

import (
	"sort"
	"strconv"
	"strings"
)

// Canonicalizer produces a canonical string label for a Complex, used
// by Species-type observables to group complexes that are
// structurally identical up to molecule and bond relabeling (spec.md
// §4.2, §4.6, §6 "External Interfaces"). A real deployment might swap
// in a graph-isomorphism library; the default here is a deterministic
// sort-based label sufficient for the bond graphs this engine builds.
type Canonicalizer interface {
	Label(sys *System, c *Complex) string
}

// DefaultCanonicalizer computes a label by sorting each member
// molecule's (type, component states) tuple and its bonded-component
// multiset, then joining them. Two complexes with the same
// multiset-of-molecules and the same bond multiset (regardless of id
// assignment) produce the same label.
type DefaultCanonicalizer struct{}

func NewDefaultCanonicalizer() *DefaultCanonicalizer {
	return &DefaultCanonicalizer{}
}

func (d *DefaultCanonicalizer) Label(sys *System, c *Complex) string {
	parts := make([]string, 0, len(c.Members))
	for molID := range c.Members {
		m := sys.molecule(molID)
		parts = append(parts, moleculeLabel(sys, m))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func moleculeLabel(sys *System, m *Molecule) string {
	mt := sys.MoleculeTypes[m.TypeID]
	var b strings.Builder
	b.WriteString(mt.Name)
	b.WriteByte('(')
	comps := make([]string, len(mt.Components))
	for i, spec := range mt.Components {
		state := "_"
		if m.Component[i] != NoState {
			if spec.IsInteger {
				state = strconv.Itoa(m.Component[i])
			} else if m.Component[i] >= 0 && m.Component[i] < len(spec.States) {
				state = spec.States[m.Component[i]]
			}
		}
		bond := "0"
		if m.IsBindingSiteBonded(i) {
			bond = "1"
		}
		comps[i] = spec.Name + "~" + state + "!" + bond
	}
	sort.Strings(comps)
	b.WriteString(strings.Join(comps, ","))
	b.WriteByte(')')
	return b.String()
}
