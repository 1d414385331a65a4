// Package gamespec compiles declarative analysis specs written in CUE.
//
// A spec file declares the game configuration (players, ranks, war
// depth, pinned reveals) and a list of named queries to run against the
// resulting theory:
//
//	game: {
//		player_a: "A"
//		player_b: "B"
//		max_war_depth: 2
//		pins: [{player: "A", level: 0, rank: 13}]
//	}
//	queries: [
//		{name: "consistent", kind: "satisfiable"},
//		{name: "a_takes_round", kind: "entailed", prop: "A_takes_round"},
//		{name: "p_a_wins", kind: "likelihood", prop: "A_wins_at_0"},
//	]
//
// Compilation uses the CUE Go API directly. Errors carry the source
// position when CUE provides one.
package gamespec
