package nfcore

// Complex is a non-empty set of molecules connected by bonds. Its id
// is stable while it is alive; once its last member leaves (merged
// away or the complex empties entirely) the id is queued for reuse.
type Complex struct {
	ID      int
	Members map[int]struct{} // molecule ids

	labelValid bool
	label      string
}

func newComplex(id int) *Complex {
	return &Complex{ID: id, Members: make(map[int]struct{})}
}

func (c *Complex) Size() int { return len(c.Members) }

func (c *Complex) invalidateLabel() {
	c.labelValid = false
	c.label = ""
}

// ComplexRegistry owns every live Complex, keyed by id, with a free-id
// queue so that ids vacated by a merge or an emptied complex get
// reused instead of growing without bound (spec.md §4 "Ownership").
type ComplexRegistry struct {
	sys       *System
	all       []*Complex // index == id; nil entries are free
	freeIDs   []int
	useComplex bool
}

func newComplexRegistry(sys *System, useComplex bool) *ComplexRegistry {
	return &ComplexRegistry{sys: sys, useComplex: useComplex}
}

func (r *ComplexRegistry) IsUsingComplex() bool { return r.useComplex }

// CreateComplex allocates a fresh single-member complex for m and
// returns its id.
func (r *ComplexRegistry) CreateComplex(m *Molecule) int {
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
	} else {
		id = len(r.all)
		r.all = append(r.all, nil)
	}
	c := newComplex(id)
	c.Members[m.ID] = struct{}{}
	r.all[id] = c
	m.ComplexID = id
	return id
}

// Get returns the complex with the given id. A released id yields nil;
// an id that was never allocated panics with an index out of range.
func (r *ComplexRegistry) Get(id int) *Complex {
	return r.all[id]
}

func (r *ComplexRegistry) release(id int) {
	r.all[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// merge repoints every member of the smaller complex onto the larger
// complex's id and releases the smaller id, per spec.md §4.2's merge
// protocol. It returns the surviving complex.
func (r *ComplexRegistry) merge(aID, bID int) *Complex {
	a, b := r.all[aID], r.all[bID]
	bigger, smaller := a, b
	if len(b.Members) > len(a.Members) {
		bigger, smaller = b, a
	}
	for molID := range smaller.Members {
		r.sys.molecule(molID).ComplexID = bigger.ID
		bigger.Members[molID] = struct{}{}
	}
	bigger.invalidateLabel()
	r.release(smaller.ID)
	return bigger
}

// split re-traverses from `from` after a bond between `from` and `to`
// has just been cleared. If `to` is still reachable, the complex is
// unchanged (the bond was part of a cycle). Otherwise the molecules
// reachable from `from` are moved to a freshly allocated complex and
// `to`'s side keeps the old id, per spec.md §4.2's split protocol.
//
// The traversal is capped by the system's universal traversal limit;
// when the cap truncates the search, exactness is not guaranteed — a
// still-connected complex can be misclassified as split. This mirrors
// an open question in the original NFsim source and is not guarded
// against here; see spec.md §9.
func (r *ComplexRegistry) split(from, to *Molecule) {
	c := r.all[from.ComplexID]
	limit := r.sys.UniversalTraversalLimit
	reached, _ := Traverse(r.sys, from, limit)
	if _, stillConnected := reached[to.ID]; stillConnected {
		c.invalidateLabel()
		return
	}

	newID := r.allocID()
	nc := newComplex(newID)
	for molID := range reached {
		m := r.sys.molecule(molID)
		delete(c.Members, molID)
		m.ComplexID = newID
		nc.Members[molID] = struct{}{}
	}
	r.all[newID] = nc
	c.invalidateLabel()
	nc.invalidateLabel()
}

func (r *ComplexRegistry) allocID() int {
	if n := len(r.freeIDs); n > 0 {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		return id
	}
	id := len(r.all)
	r.all = append(r.all, nil)
	return id
}

// All returns every currently live complex, in id order.
func (r *ComplexRegistry) All() []*Complex {
	out := make([]*Complex, 0, len(r.all))
	for _, c := range r.all {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Label returns the complex's canonical label, computing and caching
// it lazily through the system's Canonicalizer if it was invalidated
// since the last call. Canonicalisation is skipped entirely (empty
// string) when the registry is not tracking complexes.
func (c *Complex) Label(sys *System) string {
	if !sys.Complexes.useComplex {
		return ""
	}
	if c.labelValid {
		return c.label
	}
	c.label = sys.Canonicalizer.Label(sys, c)
	c.labelValid = true
	return c.label
}
