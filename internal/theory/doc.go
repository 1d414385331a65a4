// Package theory assembles a proposition registry and a constraint set
// into an immutable, queryable boolean theory.
//
// Assembly is pure aggregation: constraints are neither filtered nor
// rewritten. The one guarantee added here is referential integrity —
// every proposition a constraint mentions must exist in the registry, and
// a dangling reference aborts assembly with no partial theory returned.
//
// Assembly also compiles the constraints to CNF over integer literals,
// which is the shape a SAT backend consumes. Named propositions take
// literals 1..NumNamed in registration order; Tseitin auxiliaries
// introduced by the conversion take the literals above that.
package theory
