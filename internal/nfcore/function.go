package nfcore

// GlobalFunction is a named expression evaluated against system-wide
// scope (parameters plus observable values), used inside rate laws.
type GlobalFunction struct {
	ID   int
	Name string
	Expr string

	cached    float64
	cacheSet  bool
}

// LocalFunctionKind distinguishes the two ways a DOR rule can depend
// on a per-molecule local function (spec.md §4.7, grounded in
// NFcore.hh's Type-I/Type-II local function lists).
type LocalFunctionKind int

const (
	// LocalFunctionTypeI feeds directly into a DOR rule's per-molecule
	// weight and must be recomputed whenever any molecule in its
	// dependency neighborhood changes.
	LocalFunctionTypeI LocalFunctionKind = iota
	// LocalFunctionTypeII marks a function whose value would feed an
	// observable rather than a DOR weight. Such functions are recorded
	// on their scope molecule types by the model builder, but nothing
	// evaluates them and no observable or global function reads them.
	LocalFunctionTypeII
)

// LocalFunction is a named expression evaluated once per molecule of
// a designated scope type, used by DOR rules to weight individual
// reactants (e.g. a phosphorylation rate that depends on how many of
// a molecule's neighbors are already phosphorylated).
type LocalFunction struct {
	ID         int
	Name       string
	Expr       string
	Kind       LocalFunctionKind
	ScopeTypes []int // molecule type ids this function is defined over
}

// scopeIndex returns the position of typeID within f.ScopeTypes, or -1.
func (f *LocalFunction) scopeIndex(typeID int) int {
	for i, t := range f.ScopeTypes {
		if t == typeID {
			return i
		}
	}
	return -1
}

// Evaluate computes the local function's value for molecule m,
// building a scope of the molecule's own component states (by name)
// plus the system's global parameters. It returns
// LocalFunctionScopeError if m's type is not in the function's scope.
func (f *LocalFunction) Evaluate(sys *System, m *Molecule) (float64, error) {
	if f.scopeIndex(m.TypeID) < 0 {
		names := make([]string, len(f.ScopeTypes))
		for i, t := range f.ScopeTypes {
			names[i] = sys.MoleculeTypes[t].Name
		}
		return 0, &LocalFunctionScopeError{FunctionName: f.Name, MoleculeType: names, Index: m.TypeID}
	}
	scope := sys.baseScope()
	mt := sys.MoleculeTypes[m.TypeID]
	for i, spec := range mt.Components {
		scope[spec.Name] = float64(m.Component[i])
	}
	v, err := sys.Evaluator.Eval(f.Expr, scope)
	if err != nil {
		return 0, err
	}
	m.LocalFuncValue[f.ID] = v
	return v, nil
}

// invalidate clears a global function's cached value; called by
// SetParameter and after every firing's observable update.
func (f *GlobalFunction) invalidate() {
	f.cacheSet = false
}

// Value returns the function's current value, recomputing through the
// system evaluator if the cache was invalidated.
func (f *GlobalFunction) Value(sys *System) (float64, error) {
	if f.cacheSet {
		return f.cached, nil
	}
	scope := make(map[string]float64, len(sys.Parameters)+len(sys.Observables))
	for k, v := range sys.Parameters {
		scope[k] = v
	}
	for _, o := range sys.Observables {
		scope[o.Name] = float64(o.Value(sys))
	}
	v, err := sys.Evaluator.Eval(f.Expr, scope)
	if err != nil {
		return 0, err
	}
	f.cached = v
	f.cacheSet = true
	return v, nil
}
