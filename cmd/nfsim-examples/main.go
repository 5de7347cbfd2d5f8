// Command nfsim-examples builds a handful of small rule-based models
// in Go, using pkg/client's fluent builder, and runs each one to show
// off a specific engine behavior: a two-state switch, reversible
// homodimerization (binding, unbinding, and complex splitting), and
// distribution-of-rates weighting.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amstokely/nfsim/internal/nfcore"
	"github.com/amstokely/nfsim/pkg/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nfsim-examples",
		Short: "Run small example rule-based models",
	}
	root.AddCommand(
		&cobra.Command{Use: "switch", Short: "A molecule flipping between on/off states", RunE: runExample(twoStateSwitch)},
		&cobra.Command{Use: "dimer", Short: "Reversible homodimerization with complex split detection", RunE: runExample(homodimerization)},
		&cobra.Command{Use: "dor", Short: "Distribution-of-rates weighted receptor activation", RunE: runExample(distributionOfRates)},
	)
	return root
}

func runExample(build func() *client.ModelBuilder) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := build().Build()
		sys, err := nfcore.BuildModelFromConfig(&cfg, nil)
		if err != nil {
			return fmt.Errorf("building model: %w", err)
		}
		if err := sys.PrepareForSimulation(); err != nil {
			return fmt.Errorf("preparing simulation: %w", err)
		}
		samples, err := sys.Sim(50, 10)
		if err != nil {
			return fmt.Errorf("running simulation: %w", err)
		}
		return printSamples(samples)
	}
}

func printSamples(samples []nfcore.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	names := make([]string, 0, len(samples[0].Values))
	for name := range samples[0].Values {
		names = append(names, name)
	}
	fmt.Print("time")
	for _, n := range names {
		fmt.Printf("\t%s", n)
	}
	fmt.Println()
	for _, s := range samples {
		fmt.Printf("%g", s.Time)
		for _, n := range names {
			fmt.Printf("\t%d", s.Values[n])
		}
		fmt.Println()
	}
	return nil
}

// twoStateSwitch seeds 100 copies of a molecule with a two-valued
// "state" component and lets a pair of rules flip it on and off at
// different rates, settling toward a steady-state ratio.
func twoStateSwitch() *client.ModelBuilder {
	return client.NewModel("two_state_switch").
		Param("kOn", 0.05).
		Param("kOff", 0.02).
		MoleculeType(client.NewMoleculeType("Switch").
			Component("state", "off", "on").
			DefaultState("state", "off")).
		Rule(client.NewRule("turnOn").
			Reactant(client.NewPattern().Molecule("Switch", client.State("state", "off"))).
			ChangeState(0, "state", "on").
			Rate("kOn")).
		Rule(client.NewRule("turnOff").
			Reactant(client.NewPattern().Molecule("Switch", client.State("state", "on"))).
			ChangeState(0, "state", "off").
			Rate("kOff")).
		Observable(client.NewMoleculesObservable("On", client.NewPattern().Molecule("Switch", client.State("state", "on")))).
		Observable(client.NewMoleculesObservable("Off", client.NewPattern().Molecule("Switch", client.State("state", "off")))).
		Seed("Switch", 100).
		RandomSeed(1)
}

// homodimerization seeds 50 receptors with a single binding component
// and lets them bind pairwise into dimers and unbind again, exercising
// Bind/Unbind, complex merge on binding, and re-traversal-based split
// detection on unbinding.
func homodimerization() *client.ModelBuilder {
	return client.NewModel("homodimerization").
		Param("kBind", 0.02).
		Param("kUnbind", 0.05).
		MoleculeType(client.NewMoleculeType("Receptor").
			Component("site")).
		Rule(client.NewRule("dimerize").
			Reactant(client.NewPattern().Molecule("Receptor", client.Open("site"))).
			Reactant(client.NewPattern().Molecule("Receptor", client.Open("site"))).
			Bind(0, "site", 1, "site").
			Rate("kBind")).
		Rule(client.NewRule("dissociate").
			Reactant(client.NewPattern().Molecule("Receptor", client.Bonded("site"))).
			Unbind(0, "site").
			Rate("kUnbind")).
		Observable(client.NewMoleculesObservable("Bonded", client.NewPattern().Molecule("Receptor", client.Bonded("site")))).
		Observable(client.NewMoleculesObservable("Free", client.NewPattern().Molecule("Receptor", client.Open("site")))).
		Seed("Receptor", 50).
		UseComplex(true).
		RandomSeed(2)
}

// distributionOfRates models a ligand-gated receptor whose activation
// rate depends on how many ligands are currently bound to it (via a
// Type-I local function), so the reactant actually fired is drawn with
// probability proportional to its local weight rather than uniformly.
func distributionOfRates() *client.ModelBuilder {
	return client.NewModel("dor_activation").
		Param("kActivate", 0.1).
		MoleculeType(client.NewMoleculeType("Receptor").
			IntegerComponent("ligandCount")).
		LocalFunction("ligandWeight", "ligandCount", "typeI", "Receptor").
		Rule(client.NewRule("activate").
			Reactant(client.NewPattern().Molecule("Receptor")).
			DOR("ligandWeight", 0).
			DecrementPopulation(0, 1).
			Rate("kActivate")).
		Observable(client.NewMoleculesObservable("Receptors", client.NewPattern().Molecule("Receptor"))).
		Seed("Receptor", 30).
		RandomSeed(3)
}
