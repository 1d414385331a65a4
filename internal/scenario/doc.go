// Package scenario provides conformance scenarios for the War theory.
//
// A scenario pins a concrete game situation (revealed ranks, war depth)
// and lists checks against the resulting theory: entailments,
// exclusions, model counts, likelihoods. Scenarios are YAML files,
// typically under testdata, and double as executable documentation of
// the encoding's intended semantics.
//
//	name: king_beats_queen
//	description: "A's king beats B's queen outright"
//	game:
//	  max_war_depth: 0
//	  pins:
//	    - {player: A, level: 0, rank: 13}
//	    - {player: B, level: 0, rank: 12}
//	checks:
//	  - {type: entailed, prop: A_wins_at_0}
//	  - {type: excluded, prop: war_at_0}
//
// Check types: satisfiable, entailed, excluded, count_total, likelihood.
// Boolean checks default to expecting true; set expect: false to assert
// the negative.
package scenario
