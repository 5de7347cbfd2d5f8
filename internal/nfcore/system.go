package nfcore

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// System is the simulation driver: owns every MoleculeType, live
// Molecule, Complex, Rule and Observable, and advances simulated time
// by repeatedly drawing and firing reactions via the next-reaction
// method.
type System struct {
	RunID uuid.UUID

	MoleculeTypes []*MoleculeType
	Rules         []*Rule
	Observables   []*Observable

	Complexes     *ComplexRegistry
	Evaluator     ExpressionEvaluator
	Canonicalizer Canonicalizer
	Logger        Logger
	RNG           *rand.Rand

	// Notifier and Metrics are optional hooks a hosting process (such
	// as nfsim-server) wires in after NewSystem; SingleStep reports
	// through them when non-nil, so a bare library caller pays nothing
	// for either.
	Notifier *NotificationManager
	Metrics  *Metrics

	Parameters map[string]float64
	globalFunctions map[int]*GlobalFunction
	localFunctions  map[int]*LocalFunction

	UniversalTraversalLimit int
	GlobalMoleculeLimit     int
	UseConnectivity         bool

	molecules map[int]*Molecule
	nextMolID int

	Time          float64
	EventCounter  int
	NullEvents    int

	aTot float64

	wallClockCap time.Duration
	started      time.Time
}

// SystemOptions configures a new System; every field has a sane
// NFsim-compatible default if left zero.
type SystemOptions struct {
	Seed                    int64
	UniversalTraversalLimit int // <=0 means unlimited
	GlobalMoleculeLimit     int // stored on the System; no firing checks it
	UseConnectivity         bool
	UseComplex              bool
	Evaluator               ExpressionEvaluator
	Canonicalizer           Canonicalizer
	Logger                  Logger
	WallClockCap            time.Duration
}

// NewSystem constructs an empty System ready for molecule types,
// rules, and observables to be registered before PrepareForSimulation
// is called.
func NewSystem(opts SystemOptions) *System {
	if opts.Evaluator == nil {
		opts.Evaluator = NewDefaultExpressionEvaluator()
	}
	if opts.Canonicalizer == nil {
		opts.Canonicalizer = NewDefaultCanonicalizer()
	}
	if opts.Logger == nil {
		opts.Logger = NewNoOpLogger()
	}
	sys := &System{
		RunID:                   uuid.New(),
		Evaluator:               opts.Evaluator,
		Canonicalizer:           opts.Canonicalizer,
		Logger:                  opts.Logger,
		RNG:                     rand.New(rand.NewSource(opts.Seed)),
		Parameters:              make(map[string]float64),
		globalFunctions:         make(map[int]*GlobalFunction),
		localFunctions:          make(map[int]*LocalFunction),
		UniversalTraversalLimit: opts.UniversalTraversalLimit,
		GlobalMoleculeLimit:     opts.GlobalMoleculeLimit,
		UseConnectivity:         opts.UseConnectivity,
		molecules:               make(map[int]*Molecule),
		wallClockCap:            opts.WallClockCap,
	}
	sys.Complexes = newComplexRegistry(sys, opts.UseComplex)
	return sys
}

func (sys *System) molecule(id int) *Molecule {
	return sys.molecules[id]
}

// AddParameter registers a named constant available to every rate law
// and function expression.
func (sys *System) AddParameter(name string, value float64) {
	sys.Parameters[name] = value
}

// SetParameter updates a parameter's value and invalidates every
// cached global function, since any of them may depend on it
// (spec.md §4.9, "updateSystemWithNewParameters").
func (sys *System) SetParameter(name string, value float64) {
	sys.Parameters[name] = value
	for _, f := range sys.globalFunctions {
		f.invalidate()
	}
}

func (sys *System) baseScope() map[string]float64 {
	scope := make(map[string]float64, len(sys.Parameters)+len(sys.Observables)+len(sys.globalFunctions))
	for k, v := range sys.Parameters {
		scope[k] = v
	}
	for _, o := range sys.Observables {
		scope[o.Name] = float64(o.Value(sys))
	}
	for _, f := range sys.globalFunctions {
		if v, err := f.Value(sys); err == nil {
			scope[f.Name] = v
		}
	}
	return scope
}

// AddGlobalFunction registers a global function by id.
func (sys *System) AddGlobalFunction(f *GlobalFunction) { sys.globalFunctions[f.ID] = f }

// AddLocalFunction registers a local function by id.
func (sys *System) AddLocalFunction(f *LocalFunction) { sys.localFunctions[f.ID] = f }

// instantiate allocates a brand-new default-state molecule of typeID,
// registers it and its own singleton complex, and returns it. Used by
// AddMolecule transformations and by initial seeding.
func (sys *System) instantiate(typeID int) *Molecule {
	mt := sys.MoleculeTypes[typeID]
	m := mt.genDefaultMolecule()
	m.ID = sys.nextMolID
	sys.nextMolID++
	m.RxnMapping = make(map[int]map[int]struct{})
	m.ObservableMatch = make(map[int]int)
	m.LocalFuncValue = make(map[int]float64)
	sys.molecules[m.ID] = m
	mt.instances = append(mt.instances, m.ID)
	if sys.Complexes.useComplex {
		sys.Complexes.CreateComplex(m)
	}
	return m
}

// Seed instantiates count molecules of the named type at default
// state, for initial population setup.
func (sys *System) Seed(typeID int, count int) []*Molecule {
	out := make([]*Molecule, count)
	for i := 0; i < count; i++ {
		out[i] = sys.instantiate(typeID)
	}
	return out
}

// destroy removes molecule m from the system. If connected is true and
// complexes are tracked, every molecule in m's complex is also removed
// (DeleteMoleculesConnected); otherwise, including connected deletions
// without complex tracking, m alone is removed after being unbound from
// every partner so the remaining complex stays well-formed.
func (sys *System) destroy(m *Molecule, connected bool, d *disturbed) {
	if connected && sys.Complexes.useComplex {
		c := sys.Complexes.Get(m.ComplexID)
		for id := range c.Members {
			victim := sys.molecule(id)
			victim.Alive = false
			delete(sys.molecules, id)
			d.mark(victim)
		}
		sys.Complexes.release(c.ID)
		return
	}
	for i := range m.Bond {
		if m.IsBindingSiteBonded(i) {
			a, b := Unbind(sys, m, i)
			d.mark(a)
			d.mark(b)
		}
	}
	m.Alive = false
	delete(sys.molecules, m.ID)
	d.mark(m)
}

// PrepareForSimulation builds every rule's reactant lists from scratch
// by matching each reactant pattern against the current molecule
// population, and computes each rule's initial propensity and the
// aggregate a_tot. Must be called once after all molecules, rules and
// observables are registered and before Sim/StepTo/Equilibrate.
func (sys *System) PrepareForSimulation() error {
	for _, r := range sys.Rules {
		for i := range r.Reactants {
			r.Reactants[i].list = newReactantList(r.ID, i, r.Reactants[i].TypeID)
		}
	}
	for _, m := range sys.molecules {
		sys.rebuildMoleculeMemberships(m)
	}
	sys.aTot = 0
	for _, r := range sys.Rules {
		p, _, err := r.ComputePropensity(sys)
		if err != nil {
			return err
		}
		sys.aTot += p
	}
	return nil
}

// rebuildMoleculeMemberships matches every rule's reactant patterns,
// and every observable's pattern, against molecule m, recording any
// resulting mappings. Called during PrepareForSimulation and, for a
// newly instantiated molecule, from propagateDisturbed.
func (sys *System) rebuildMoleculeMemberships(m *Molecule) {
	for _, r := range sys.Rules {
		for i := range r.Reactants {
			react := &r.Reactants[i]
			if react.TypeID != m.TypeID {
				continue
			}
			for _, molIDs := range matchSingle(sys, react.Pattern, m) {
				id := react.list.TryAdd(molIDs)
				m.addMappingID(r.ID, id)
			}
		}
	}
	for _, o := range sys.Observables {
		if o.Kind != ObservableMolecules {
			continue
		}
		count := 0
		for _, tmpl := range o.Pattern.Molecules {
			if tmpl.TypeID != m.TypeID {
				continue
			}
			count += len(matchSingle(sys, o.Pattern, m))
		}
		old := m.ObservableMatch[o.ID]
		m.ObservableMatch[o.ID] = count
		o.onMoleculeMatchChange(old, count)
	}
}

// propagateDisturbed is the post-firing update pass: every molecule
// the just-applied transformations touched gets its rule memberships
// and observable matches recomputed, any complex-label invalidation
// is reflected into Species-type observables, and every affected
// rule's propensity (and a_tot) is refreshed. This is the single
// choke point spec.md §4.4's "disturbed set" funnels through.
func (sys *System) propagateDisturbed(d *disturbed) error {
	affectedRules := make(map[int]*Rule)
	for _, m := range d.molecules {
		if !m.Alive {
			for ruleID, mappingIDs := range m.RxnMapping {
				r := sys.Rules[ruleID]
				for i := range r.Reactants {
					if r.Reactants[i].TypeID != m.TypeID {
						continue
					}
					for mid := range mappingIDs {
						r.Reactants[i].list.Remove(mid)
					}
				}
				affectedRules[ruleID] = r
			}
			m.RxnMapping = make(map[int]map[int]struct{})
			for obsID, n := range m.ObservableMatch {
				sys.Observables[obsID].onMoleculeMatchChange(n, 0)
				m.ObservableMatch[obsID] = 0
			}
			continue
		}
		for ruleID, mappingIDs := range m.RxnMapping {
			r := sys.Rules[ruleID]
			for i := range r.Reactants {
				if r.Reactants[i].TypeID != m.TypeID {
					continue
				}
				for mid := range mappingIDs {
					r.Reactants[i].list.Remove(mid)
				}
			}
			affectedRules[ruleID] = r
		}
		m.RxnMapping = make(map[int]map[int]struct{})
		sys.rebuildMoleculeMemberships(m)
		for ruleID := range m.RxnMapping {
			affectedRules[ruleID] = sys.Rules[ruleID]
		}
	}
	for _, o := range sys.Observables {
		if o.Kind == ObservableSpecies {
			o.MarkDirty()
		}
	}
	for _, f := range sys.globalFunctions {
		f.invalidate()
	}
	if sys.UseConnectivity {
		sys.reconnectRules(d, affectedRules)
	} else {
		for _, r := range sys.Rules {
			affectedRules[r.ID] = r
		}
	}
	for _, r := range affectedRules {
		_, delta, err := r.ComputePropensity(sys)
		if err != nil {
			return err
		}
		sys.aTot += delta
	}
	if sys.aTot < -1e-9 {
		return &NumericError{Reason: fmt.Sprintf("a_tot went negative: %g", sys.aTot)}
	}
	if sys.aTot < 0 {
		sys.aTot = 0
	}
	return nil
}

// reconnectRules extends affectedRules to every rule reachable, within
// UniversalTraversalLimit, from a disturbed molecule's complex. This
// is the opt-in "connectivity inference" optimization of spec.md §4.9:
// it is unsound if a rule's pattern reads state outside the traversed
// neighborhood, and callers who enable UseConnectivity accept that
// risk in exchange for not recomputing every rule's propensity after
// every firing.
func (sys *System) reconnectRules(d *disturbed, affectedRules map[int]*Rule) {
	for _, m := range d.molecules {
		if !m.Alive {
			continue
		}
		reached, _ := Traverse(sys, m, sys.UniversalTraversalLimit)
		for id := range reached {
			nb := sys.molecule(id)
			for ruleID := range nb.RxnMapping {
				affectedRules[ruleID] = sys.Rules[ruleID]
			}
		}
	}
}

// SingleStep draws one reaction event via the next-reaction method
// and fires it, advancing Time regardless of whether the draw lands
// on a real event or a null event. It performs exactly two RNG draws
// in order (u1 for the waiting time, u2 for reaction selection) plus
// whatever additional draws Rule.Fire needs, and that order is never
// rearranged, preserving the determinism spec.md §4.8 requires for a
// fixed seed.
func (sys *System) SingleStep() error {
	if sys.aTot <= 0 {
		return &CapacityError{Reason: "a_tot is zero, no reaction can fire"}
	}
	u1 := sys.RNG.Float64()
	for u1 <= 0 {
		u1 = sys.RNG.Float64()
	}
	dt := -math.Log(u1) / sys.aTot
	sys.Time += dt

	u2 := sys.RNG.Float64() * sys.aTot
	var chosen *Rule
	cum := 0.0
	for _, r := range sys.Rules {
		cum += r.propensity
		if cum >= u2 {
			chosen = r
			break
		}
	}
	if chosen == nil {
		sys.NullEvents++
		if sys.Metrics != nil {
			sys.Metrics.RecordFiring("", true)
		}
		return nil
	}

	d, err := chosen.Fire(sys)
	if err != nil {
		if _, ok := err.(*CapacityError); ok {
			sys.NullEvents++
			if sys.Metrics != nil {
				sys.Metrics.RecordFiring("", true)
			}
			return nil
		}
		return err
	}
	sys.EventCounter++
	chosen.FireCount++
	if sys.Metrics != nil {
		sys.Metrics.RecordFiring(chosen.Name, false)
	}
	if sys.Notifier != nil {
		if ids := sys.Notifier.ListNotifiers(); len(ids) > 0 {
			sys.Notifier.Enqueue(NewFiringEvent(sys, chosen, d), ids)
		}
	}
	return sys.propagateDisturbed(d)
}

// StepTo advances the simulation until Time reaches target, subject
// to the configured wall-clock cap. It returns the number of events
// fired (null events excluded from the count, included in Time's
// advancement). If the system relaxes into a dead state (a_tot <= 0,
// no rule can ever fire again), Time is advanced directly to target
// without drawing or firing anything, per spec.md §4.7.
func (sys *System) StepTo(target float64) (int, error) {
	if sys.wallClockCap > 0 {
		sys.started = time.Now()
	}
	fired := 0
	for sys.Time < target {
		if sys.wallClockCap > 0 && time.Since(sys.started) > sys.wallClockCap {
			return fired, fmt.Errorf("wall-clock cap of %s exceeded at simulated time %g", sys.wallClockCap, sys.Time)
		}
		if sys.aTot <= 0 {
			sys.Time = target
			break
		}
		before := sys.EventCounter
		if err := sys.SingleStep(); err != nil {
			return fired, err
		}
		if sys.EventCounter != before {
			fired++
		}
	}
	return fired, nil
}

// Sim runs the simulation for `duration` simulated-time units,
// reporting sampleCount evenly spaced Observable snapshots, one per
// interval boundary (spec.md §4.9).
func (sys *System) Sim(duration float64, sampleCount int) ([]Sample, error) {
	if sampleCount < 1 {
		sampleCount = 1
	}
	samples := make([]Sample, 0, sampleCount)
	step := duration / float64(sampleCount)
	target := sys.Time
	for i := 0; i < sampleCount; i++ {
		target += step
		if _, err := sys.StepTo(target); err != nil {
			return samples, err
		}
		samples = append(samples, sys.snapshot())
	}
	return samples, nil
}

// Equilibrate advances the simulation by `duration` without recording
// any samples, used to relax a model into steady state before the
// timed run that matters begins being recorded.
func (sys *System) Equilibrate(duration float64) error {
	_, err := sys.StepTo(sys.Time + duration)
	return err
}

// Sample is one Observable snapshot taken at a point in simulated time.
type Sample struct {
	Time   float64
	Values map[string]int
}

func (sys *System) snapshot() Sample {
	vals := make(map[string]int, len(sys.Observables))
	for _, o := range sys.Observables {
		vals[o.Name] = o.Value(sys)
	}
	return Sample{Time: sys.Time, Values: vals}
}
