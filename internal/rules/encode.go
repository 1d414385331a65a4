package rules

import (
	"fmt"

	"github.com/cardlogic/warsat/internal/logic"
)

// Encoder produces the constraint set for one round of War under a given
// Config. Proposition accessors may be called at any time; Constraints
// builds the full rule set on first call.
type Encoder struct {
	cfg   Config
	reg   *logic.Registry
	pins  []logic.Constraint
	built []logic.Constraint
}

// NewEncoder validates cfg and returns an encoder over a fresh registry.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg, reg: logic.NewRegistry()}, nil
}

// Config returns the encoder's configuration.
func (e *Encoder) Config() Config { return e.cfg }

// Registry returns the registry holding every proposition the encoder
// has allocated so far.
func (e *Encoder) Registry() *logic.Registry { return e.reg }

// Rank returns the proposition "player reveals rank at level".
func (e *Encoder) Rank(player string, level, rank int) logic.Prop {
	return e.reg.Var(fmt.Sprintf("%s_rank_is_%d_at_%d", player, rank, level))
}

// Winner returns the proposition "player wins the comparison at level".
func (e *Encoder) Winner(player string, level int) logic.Prop {
	return e.reg.Var(fmt.Sprintf("%s_wins_at_%d", player, level))
}

// War returns the proposition "the reveals at level tie, triggering a war".
func (e *Encoder) War(level int) logic.Prop {
	return e.reg.Var(fmt.Sprintf("war_at_%d", level))
}

// TakesRound returns the derived proposition "player takes the round":
// the player wins the first level not preceded by an unbroken chain of
// wars reaching it.
func (e *Encoder) TakesRound(player string) logic.Prop {
	return e.reg.Var(fmt.Sprintf("%s_takes_round", player))
}

// Unresolved returns the derived proposition "every modeled level tied":
// the war escalation ran past the configured depth.
func (e *Encoder) Unresolved() logic.Prop {
	return e.reg.Var("round_unresolved")
}

// Stacked returns the derived proposition "the deck is stacked": the two
// players' modeled reveals share more ranks than the configured
// tolerance allows.
func (e *Encoder) Stacked() logic.Prop {
	return e.reg.Var("deck_stacked")
}

func (e *Encoder) shared(rank int) logic.Prop {
	return e.reg.Var(fmt.Sprintf("rank_%d_shared", rank))
}

// Pin fixes a player's reveal at a level to a concrete rank. Pins must
// be added before Constraints is first called.
func (e *Encoder) Pin(player string, level, rank int) error {
	if player != e.cfg.PlayerA && player != e.cfg.PlayerB {
		return fmt.Errorf("rules: unknown player %q", player)
	}
	if level < 0 || level >= e.cfg.Levels() {
		return fmt.Errorf("rules: level %d out of range [0,%d)", level, e.cfg.Levels())
	}
	if !e.hasRank(rank) {
		return fmt.Errorf("rules: rank %d not in play", rank)
	}
	if e.built != nil {
		return fmt.Errorf("rules: constraints already built, pin %s=%d at level %d rejected", player, rank, level)
	}
	e.pins = append(e.pins, logic.NewConstraint(
		fmt.Sprintf("pin/%s_rank_is_%d_at_%d", player, rank, level),
		e.Rank(player, level, rank),
	))
	return nil
}

func (e *Encoder) hasRank(rank int) bool {
	for _, r := range e.cfg.Ranks {
		if r == rank {
			return true
		}
	}
	return false
}

// Constraints returns the full constraint set: reveal validity, rank
// comparison per level, war escalation bookkeeping, derived-proposition
// definitions, and any pins. The set is built once and cached.
func (e *Encoder) Constraints() []logic.Constraint {
	if e.built != nil {
		return e.built
	}
	var cons []logic.Constraint
	cons = append(cons, e.revealValidity()...)
	cons = append(cons, e.comparisons()...)
	cons = append(cons, e.outcomes()...)
	cons = append(cons, e.noRankReuse()...)
	cons = append(cons, e.roundResolution()...)
	cons = append(cons, e.stackedDefinition()...)
	cons = append(cons, e.pins...)
	e.built = cons
	return e.built
}

// revealValidity: every modeled reveal has exactly one rank.
func (e *Encoder) revealValidity() []logic.Constraint {
	var cons []logic.Constraint
	for _, player := range []string{e.cfg.PlayerA, e.cfg.PlayerB} {
		for level := 0; level < e.cfg.Levels(); level++ {
			props := make([]logic.Prop, len(e.cfg.Ranks))
			for i, r := range e.cfg.Ranks {
				props[i] = e.Rank(player, level, r)
			}
			cons = append(cons, logic.NewConstraint(
				fmt.Sprintf("reveal_exactly_one_rank/%s@%d", player, level),
				logic.ExactlyOne(props...),
			))
		}
	}
	return cons
}

// comparisons: for every level and ordered rank pair, the higher rank
// wins; equal ranks trigger a war.
func (e *Encoder) comparisons() []logic.Constraint {
	var cons []logic.Constraint
	for level := 0; level < e.cfg.Levels(); level++ {
		for _, ra := range e.cfg.Ranks {
			for _, rb := range e.cfg.Ranks {
				reveal := logic.And(
					e.Rank(e.cfg.PlayerA, level, ra),
					e.Rank(e.cfg.PlayerB, level, rb),
				)
				switch {
				case ra > rb:
					cons = append(cons, logic.NewConstraint(
						fmt.Sprintf("higher_rank_wins/%s_%d_beats_%s_%d@%d", e.cfg.PlayerA, ra, e.cfg.PlayerB, rb, level),
						logic.Implies(reveal, e.Winner(e.cfg.PlayerA, level)),
					))
				case rb > ra:
					cons = append(cons, logic.NewConstraint(
						fmt.Sprintf("higher_rank_wins/%s_%d_beats_%s_%d@%d", e.cfg.PlayerB, rb, e.cfg.PlayerA, ra, level),
						logic.Implies(reveal, e.Winner(e.cfg.PlayerB, level)),
					))
				default:
					cons = append(cons, logic.NewConstraint(
						fmt.Sprintf("equal_ranks_trigger_war/rank_%d@%d", ra, level),
						logic.Implies(reveal, e.War(level)),
					))
				}
			}
		}
	}
	return cons
}

// outcomes: each level resolves to exactly one of winner A, winner B, or
// war. Combined with the comparison rules this pins the outcome to the
// revealed ranks.
func (e *Encoder) outcomes() []logic.Constraint {
	var cons []logic.Constraint
	for level := 0; level < e.cfg.Levels(); level++ {
		cons = append(cons, logic.NewConstraint(
			fmt.Sprintf("outcome_exactly_one@%d", level),
			logic.ExactlyOne(
				e.Winner(e.cfg.PlayerA, level),
				e.Winner(e.cfg.PlayerB, level),
				e.War(level),
			),
		))
	}
	return cons
}

// noRankReuse: a player never reveals the same rank at two levels. This
// is the deck-composition invariant scoped to the reveals actually
// modeled: one copy of each rank per player.
func (e *Encoder) noRankReuse() []logic.Constraint {
	var cons []logic.Constraint
	if e.cfg.Levels() < 2 {
		return cons
	}
	for _, player := range []string{e.cfg.PlayerA, e.cfg.PlayerB} {
		for _, r := range e.cfg.Ranks {
			props := make([]logic.Prop, e.cfg.Levels())
			for level := 0; level < e.cfg.Levels(); level++ {
				props[level] = e.Rank(player, level, r)
			}
			cons = append(cons, logic.NewConstraint(
				fmt.Sprintf("no_rank_reuse/%s_rank_%d", player, r),
				logic.AtMostOne(props...),
			))
		}
	}
	return cons
}

// roundResolution defines the derived round outcome: a player takes the
// round by winning the first level reached through an unbroken war
// chain; the round is unresolved when every modeled level tied.
func (e *Encoder) roundResolution() []logic.Constraint {
	var cons []logic.Constraint
	for _, player := range []string{e.cfg.PlayerA, e.cfg.PlayerB} {
		levelWins := make([]logic.Formula, e.cfg.Levels())
		for level := 0; level < e.cfg.Levels(); level++ {
			chain := make([]logic.Formula, 0, level+1)
			for prior := 0; prior < level; prior++ {
				chain = append(chain, e.War(prior))
			}
			chain = append(chain, e.Winner(player, level))
			levelWins[level] = logic.And(chain...)
		}
		cons = append(cons, logic.NewConstraint(
			fmt.Sprintf("takes_round_definition/%s", player),
			logic.Iff(e.TakesRound(player), logic.Or(levelWins...)),
		))
	}
	allWars := make([]logic.Formula, e.cfg.Levels())
	for level := 0; level < e.cfg.Levels(); level++ {
		allWars[level] = e.War(level)
	}
	cons = append(cons, logic.NewConstraint(
		"round_unresolved_definition",
		logic.Iff(e.Unresolved(), logic.And(allWars...)),
	))
	return cons
}

// stackedDefinition defines the stacked-deck query target: per rank, a
// shared indicator holds iff both players reveal that rank somewhere in
// the modeled levels; the deck is stacked iff more than StackedTolerance
// indicators hold. Definitional only, never restricts the reveals.
func (e *Encoder) stackedDefinition() []logic.Constraint {
	var cons []logic.Constraint
	for _, r := range e.cfg.Ranks {
		var pairs []logic.Formula
		for la := 0; la < e.cfg.Levels(); la++ {
			for lb := 0; lb < e.cfg.Levels(); lb++ {
				pairs = append(pairs, logic.And(
					e.Rank(e.cfg.PlayerA, la, r),
					e.Rank(e.cfg.PlayerB, lb, r),
				))
			}
		}
		cons = append(cons, logic.NewConstraint(
			fmt.Sprintf("rank_shared_definition/%d", r),
			logic.Iff(e.shared(r), logic.Or(pairs...)),
		))
	}
	shared := make([]logic.Prop, len(e.cfg.Ranks))
	for i, r := range e.cfg.Ranks {
		shared[i] = e.shared(r)
	}
	cons = append(cons, logic.NewConstraint(
		"deck_stacked_definition",
		logic.Iff(e.Stacked(), atLeast(e.cfg.StackedTolerance+1, shared)),
	))
	return cons
}

// atLeast builds "at least k of props hold" as a disjunction over all
// k-subsets. Tolerances are small, so the subset count stays manageable.
func atLeast(k int, props []logic.Prop) logic.Formula {
	if k <= 0 {
		return logic.And()
	}
	if k > len(props) {
		return logic.Or()
	}
	var subs []logic.Formula
	subset := make([]logic.Formula, 0, k)
	var walk func(start, need int)
	walk = func(start, need int) {
		if need == 0 {
			conj := make([]logic.Formula, k)
			copy(conj, subset)
			subs = append(subs, logic.And(conj...))
			return
		}
		for i := start; i <= len(props)-need; i++ {
			subset = append(subset, props[i])
			walk(i+1, need-1)
			subset = subset[:len(subset)-1]
		}
	}
	walk(0, k)
	return logic.Or(subs...)
}
