package solve

import (
	"fmt"

	"github.com/crillab/gophersat/solver"
)

// Backend is the narrow solver contract the query layer depends on. A
// call decides one clause set over variables 1..numVars and, when
// satisfiable, returns a complete assignment indexed by variable-1.
// Repeated calls with the same input must produce the same verdict,
// though not necessarily the same model. Model enumeration is driven
// from outside by re-solving with blocking clauses appended.
type Backend interface {
	Solve(numVars int, clauses [][]int) (model []bool, sat bool, err error)
}

// BackendError wraps a solver crash or malformed solver output. It is
// fatal for the query that triggered it; the call is not retried.
type BackendError struct {
	Reason string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solver backend: %s: %v", e.Reason, e.Err)
	}
	return "solver backend: " + e.Reason
}

func (e *BackendError) Unwrap() error { return e.Err }

// Gophersat is the default Backend, backed by the gophersat CDCL solver.
// It is stateless; each Solve call builds a fresh solver instance.
type Gophersat struct{}

func (Gophersat) Solve(numVars int, clauses [][]int) (model []bool, sat bool, err error) {
	// The solver panics on malformed input (null literals, empty unit
	// clauses). Surface those as backend failures instead of crashing
	// the caller.
	defer func() {
		if r := recover(); r != nil {
			model, sat = nil, false
			err = &BackendError{Reason: fmt.Sprintf("solver panic: %v", r)}
		}
	}()

	pb := solver.ParseSlice(clauses)
	s := solver.New(pb)
	switch st := s.Solve(); st {
	case solver.Sat:
		m := s.Model()
		if len(m) < numVars {
			// Variables absent from every clause are unconstrained;
			// complete the assignment rather than returning a partial one.
			padded := make([]bool, numVars)
			copy(padded, m)
			m = padded
		}
		return m, true, nil
	case solver.Unsat:
		return nil, false, nil
	default:
		return nil, false, &BackendError{Reason: fmt.Sprintf("unexpected solver status %v", st)}
	}
}
