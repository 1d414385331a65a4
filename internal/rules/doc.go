// Package rules encodes the card game War as propositional constraints.
//
// One round of War, including its tie-breaking "war" escalation, is
// modeled as a static constraint system: revealed ranks, per-level
// outcomes, and deck-validity invariants are all boolean propositions
// related by labelled constraints. The war escalation is depth-indexed
// rather than recursive, so the resulting theory is finite: level 0 is
// the initial reveal, level l+1 is the reveal that settles a war at
// level l, up to a configured maximum depth.
//
// Derived propositions (round taker, unresolved round, stacked deck) are
// introduced by definitional biconditionals. They never restrict the
// reveal variables, so asserting their definitions can not make an
// otherwise satisfiable theory unsatisfiable; they exist purely as query
// targets.
package rules
