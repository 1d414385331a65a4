// Package logic provides the propositional vocabulary for the War model:
// named boolean variables allocated through a Registry, a small formula
// AST over them, and conversion of formulas to conjunctive normal form.
//
// Propositions are identified by name. Registering the same name twice
// returns the same proposition, so rule encoders can freely re-reference
// variables defined elsewhere without risking variable explosion.
//
// Formulas are immutable value trees. A Constraint pairs a formula with a
// human-readable label; labels are what assembly-time diagnostics report
// when a constraint set turns out to be contradictory.
package logic
