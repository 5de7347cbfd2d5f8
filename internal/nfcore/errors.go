package nfcore

import "fmt"

// ModelError reports an inconsistency detected while loading a model
// (unknown component state, missing parameter, duplicate name, ...).
// It is always fatal: the system never enters simulation with one pending.
type ModelError struct {
	Issues []string
}

func (e *ModelError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid model: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return "invalid model: " + e.Issues[0]
	}
	msg := "invalid model, multiple issues:"
	for _, issue := range e.Issues {
		msg += "\n  - " + issue
	}
	return msg
}

func (e *ModelError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ModelError) HasIssues() bool {
	return len(e.Issues) > 0
}

// CapacityError is raised when a drawn rule has no live mapping at one
// of its reactant positions, or when a_tot is expected to be positive
// but is zero. The event that triggered it is aborted and state remains
// invariant-consistent; it is not fatal to the run. The global molecule
// limit is not checked anywhere, so exceeding it raises no error.
type CapacityError struct {
	Reason string
}

func (e *CapacityError) Error() string {
	return "capacity error: " + e.Reason
}

// LocalFunctionScopeError is raised when a DOR rule's local function
// references a quantity undefined for the molecule type it was asked
// to evaluate against. Fatal at firing time.
type LocalFunctionScopeError struct {
	FunctionName string
	MoleculeType []string
	Index        int
}

func (e *LocalFunctionScopeError) Error() string {
	return fmt.Sprintf("local function %q has no scope defined for molecule type index %d (types considered: %v)",
		e.FunctionName, e.Index, e.MoleculeType)
}

// NumericError is raised for non-finite propensities or an a_tot that
// drifts negative beyond tolerance. Always fatal.
type NumericError struct {
	Reason string
}

func (e *NumericError) Error() string {
	return "numeric error: " + e.Reason
}
