// Package client provides a fluent API for building nfcore model
// configurations in Go code, as an alternative to hand-writing the
// JSON model file BuildModelFromConfig consumes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amstokely/nfsim/internal/nfcore"
)

// ModelBuilder assembles a nfcore.ModelConfig.
type ModelBuilder struct {
	name          string
	params        map[string]float64
	moleculeTypes []*MoleculeTypeBuilder
	rules         []*RuleBuilder
	observables   []*ObservableBuilder
	globalFns     []nfcore.GlobalFunctionConfig
	localFns      []nfcore.LocalFunctionConfig
	seed          []nfcore.SeedConfig

	universalTraversalLimit int
	globalMoleculeLimit     int
	useConnectivity         bool
	useComplex              bool
	randomSeed              int64
}

// NewModel creates a model builder with the given name.
func NewModel(name string) *ModelBuilder {
	return &ModelBuilder{name: name, params: make(map[string]float64), useComplex: true}
}

func (mb *ModelBuilder) Param(name string, value float64) *ModelBuilder {
	mb.params[name] = value
	return mb
}

func (mb *ModelBuilder) MoleculeType(tb *MoleculeTypeBuilder) *ModelBuilder {
	mb.moleculeTypes = append(mb.moleculeTypes, tb)
	return mb
}

func (mb *ModelBuilder) Rule(rb *RuleBuilder) *ModelBuilder {
	mb.rules = append(mb.rules, rb)
	return mb
}

func (mb *ModelBuilder) Observable(ob *ObservableBuilder) *ModelBuilder {
	mb.observables = append(mb.observables, ob)
	return mb
}

func (mb *ModelBuilder) GlobalFunction(name, expr string) *ModelBuilder {
	mb.globalFns = append(mb.globalFns, nfcore.GlobalFunctionConfig{Name: name, Expr: expr})
	return mb
}

func (mb *ModelBuilder) LocalFunction(name, expr, kind string, scopeTypes ...string) *ModelBuilder {
	mb.localFns = append(mb.localFns, nfcore.LocalFunctionConfig{Name: name, Expr: expr, Kind: kind, ScopeTypes: scopeTypes})
	return mb
}

func (mb *ModelBuilder) Seed(moleculeType string, count int) *ModelBuilder {
	mb.seed = append(mb.seed, nfcore.SeedConfig{MoleculeType: moleculeType, Count: count})
	return mb
}

func (mb *ModelBuilder) UniversalTraversalLimit(n int) *ModelBuilder {
	mb.universalTraversalLimit = n
	return mb
}

func (mb *ModelBuilder) GlobalMoleculeLimit(n int) *ModelBuilder {
	mb.globalMoleculeLimit = n
	return mb
}

func (mb *ModelBuilder) UseConnectivity(on bool) *ModelBuilder {
	mb.useConnectivity = on
	return mb
}

func (mb *ModelBuilder) UseComplex(on bool) *ModelBuilder {
	mb.useComplex = on
	return mb
}

func (mb *ModelBuilder) RandomSeed(seed int64) *ModelBuilder {
	mb.randomSeed = seed
	return mb
}

// Build converts the builder to a nfcore.ModelConfig.
func (mb *ModelBuilder) Build() nfcore.ModelConfig {
	cfg := nfcore.ModelConfig{
		Name: mb.name, Parameters: mb.params,
		GlobalFunctions: mb.globalFns, LocalFunctions: mb.localFns,
		Seed:                    mb.seed,
		UniversalTraversalLimit: mb.universalTraversalLimit,
		GlobalMoleculeLimit:     mb.globalMoleculeLimit,
		UseConnectivity:         mb.useConnectivity,
		UseComplex:              mb.useComplex,
		RandomSeed:              mb.randomSeed,
	}
	for _, tb := range mb.moleculeTypes {
		cfg.MoleculeTypes = append(cfg.MoleculeTypes, tb.Build())
	}
	for _, rb := range mb.rules {
		cfg.Rules = append(cfg.Rules, rb.Build())
	}
	for _, ob := range mb.observables {
		cfg.Observables = append(cfg.Observables, ob.Build())
	}
	return cfg
}

// MoleculeTypeBuilder builds a nfcore.MoleculeTypeConfig.
type MoleculeTypeBuilder struct {
	name           string
	components     []nfcore.ComponentConfig
	populationType bool
	equivalentSets [][]string
}

func NewMoleculeType(name string) *MoleculeTypeBuilder {
	return &MoleculeTypeBuilder{name: name}
}

func (tb *MoleculeTypeBuilder) Component(name string, states ...string) *MoleculeTypeBuilder {
	tb.components = append(tb.components, nfcore.ComponentConfig{Name: name, States: states})
	return tb
}

func (tb *MoleculeTypeBuilder) IntegerComponent(name string) *MoleculeTypeBuilder {
	tb.components = append(tb.components, nfcore.ComponentConfig{Name: name, IsInteger: true})
	return tb
}

func (tb *MoleculeTypeBuilder) DefaultState(component, state string) *MoleculeTypeBuilder {
	for i := range tb.components {
		if tb.components[i].Name == component {
			tb.components[i].DefaultState = state
		}
	}
	return tb
}

func (tb *MoleculeTypeBuilder) PopulationType(on bool) *MoleculeTypeBuilder {
	tb.populationType = on
	return tb
}

func (tb *MoleculeTypeBuilder) Equivalent(components ...string) *MoleculeTypeBuilder {
	tb.equivalentSets = append(tb.equivalentSets, components)
	return tb
}

func (tb *MoleculeTypeBuilder) Build() nfcore.MoleculeTypeConfig {
	return nfcore.MoleculeTypeConfig{
		Name: tb.name, Components: tb.components,
		PopulationType: tb.populationType, EquivalentSets: tb.equivalentSets,
	}
}

// PatternBuilder builds a nfcore.PatternConfig.
type PatternBuilder struct {
	molecules []nfcore.TemplateMoleculeConfig
	bonds     []nfcore.BondPatternConfig
}

func NewPattern() *PatternBuilder { return &PatternBuilder{} }

func (pb *PatternBuilder) Molecule(moleculeType string, components ...nfcore.ComponentPatternConfig) *PatternBuilder {
	pb.molecules = append(pb.molecules, nfcore.TemplateMoleculeConfig{MoleculeType: moleculeType, Components: components})
	return pb
}

func (pb *PatternBuilder) Bond(m1, c1, m2, c2 int) *PatternBuilder {
	pb.bonds = append(pb.bonds, nfcore.BondPatternConfig{M1: m1, C1: c1, M2: m2, C2: c2})
	return pb
}

func (pb *PatternBuilder) Build() nfcore.PatternConfig {
	return nfcore.PatternConfig{Molecules: pb.molecules, Bonds: pb.bonds}
}

// State builds a ComponentPatternConfig constraining a named component
// to a state.
func State(name, state string) nfcore.ComponentPatternConfig {
	return nfcore.ComponentPatternConfig{Name: name, State: state}
}

// Bonded builds a ComponentPatternConfig requiring the named component
// to be bonded.
func Bonded(name string) nfcore.ComponentPatternConfig {
	return nfcore.ComponentPatternConfig{Name: name, Bond: "bonded"}
}

// Open builds a ComponentPatternConfig requiring the named component
// to be free.
func Open(name string) nfcore.ComponentPatternConfig {
	return nfcore.ComponentPatternConfig{Name: name, Bond: "open"}
}

// RuleBuilder builds a nfcore.RuleConfig.
type RuleBuilder struct {
	name        string
	reactants   []*PatternBuilder
	actions     []nfcore.TransformationConfig
	rate        string
	dorFunction string
	dorReactant int
}

func NewRule(name string) *RuleBuilder {
	return &RuleBuilder{name: name, rate: "0"}
}

func (rb *RuleBuilder) Reactant(pb *PatternBuilder) *RuleBuilder {
	rb.reactants = append(rb.reactants, pb)
	return rb
}

func (rb *RuleBuilder) Rate(expr string) *RuleBuilder {
	rb.rate = expr
	return rb
}

func (rb *RuleBuilder) DOR(functionName string, reactantIndex int) *RuleBuilder {
	rb.dorFunction = functionName
	rb.dorReactant = reactantIndex
	return rb
}

func (rb *RuleBuilder) ChangeState(reactant int, component, newState string) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "changeState", Reactant: reactant, Component: component, NewState: newState})
	return rb
}

func (rb *RuleBuilder) Bind(r1 int, c1 string, r2 int, c2 string) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "bind", Reactant: r1, Component: c1, Reactant2: r2, Component2: c2})
	return rb
}

func (rb *RuleBuilder) Unbind(reactant int, component string) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "unbind", Reactant: reactant, Component: component})
	return rb
}

func (rb *RuleBuilder) AddMolecule(newType string) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "addMolecule", NewType: newType})
	return rb
}

func (rb *RuleBuilder) DeleteMolecule(reactant int, connected bool) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "deleteMolecule", Reactant: reactant, Connected: connected})
	return rb
}

func (rb *RuleBuilder) IncrementPopulation(reactant, delta int) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "incrementPopulation", Reactant: reactant, Delta: delta})
	return rb
}

func (rb *RuleBuilder) DecrementPopulation(reactant, delta int) *RuleBuilder {
	rb.actions = append(rb.actions, nfcore.TransformationConfig{Kind: "decrementPopulation", Reactant: reactant, Delta: delta})
	return rb
}

func (rb *RuleBuilder) Build() nfcore.RuleConfig {
	cfg := nfcore.RuleConfig{
		Name: rb.name, Actions: rb.actions, RateExpr: rb.rate,
		DORFunction: rb.dorFunction, DORReactant: rb.dorReactant,
	}
	for _, pb := range rb.reactants {
		cfg.Reactants = append(cfg.Reactants, pb.Build())
	}
	return cfg
}

// ObservableBuilder builds a nfcore.ObservableConfig.
type ObservableBuilder struct {
	name    string
	kind    string
	pattern *PatternBuilder
	labels  []string
}

func NewMoleculesObservable(name string, pattern *PatternBuilder) *ObservableBuilder {
	return &ObservableBuilder{name: name, kind: "molecules", pattern: pattern}
}

func NewSpeciesObservable(name string, labels ...string) *ObservableBuilder {
	return &ObservableBuilder{name: name, kind: "species", labels: labels}
}

func (ob *ObservableBuilder) Build() nfcore.ObservableConfig {
	cfg := nfcore.ObservableConfig{Name: ob.name, Kind: ob.kind, SpeciesLabels: ob.labels}
	if ob.pattern != nil {
		cfg.Pattern = ob.pattern.Build()
	}
	return cfg
}

// ApplyModel sends the built model config to a running nfsim server's
// model-load endpoint.
func ApplyModel(ctx context.Context, baseURL string, mb *ModelBuilder) error {
	cfg := mb.Build()
	jsonData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	u, err := url.JoinPath(baseURL, "model")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
