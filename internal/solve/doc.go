// Package solve is the query layer over an assembled theory: a
// satisfiability check, model retrieval, entailment and exclusion
// checks, and blocking-clause model counting restricted to a proposition
// subset.
//
// The SAT engine sits behind the Backend interface and is treated as an
// opaque collaborator. The default backend is gophersat. A backend call
// is blocking with no internal timeout; callers needing bounded latency
// wrap the query in their own cancellation.
//
// Query results that merely say "no" — an unsatisfiable theory, a failed
// entailment, zero models — are ordinary values, not errors. Errors are
// reserved for malformed queries and backend failures.
package solve
