package solve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlogic/warsat/internal/logic"
	"github.com/cardlogic/warsat/internal/rules"
	"github.com/cardlogic/warsat/internal/theory"
)

func newWarSession(t *testing.T, cfg rules.Config, pins ...Pin) *Session {
	t.Helper()
	sess, err := NewSession(cfg, pins)
	require.NoError(t, err)
	return sess
}

func tinyConfig(depth int) rules.Config {
	return rules.Config{PlayerA: "A", PlayerB: "B", Ranks: []int{2, 3}, MaxWarDepth: depth}
}

func TestEmptyTheoryIsSatisfiable(t *testing.T) {
	th, err := theory.Assemble(logic.NewRegistry(), nil)
	require.NoError(t, err)
	a := New(th)

	sat, err := a.Satisfiable()
	require.NoError(t, err)
	assert.True(t, sat, "an empty theory is trivially satisfiable")

	m, ok, err := a.FindModel()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m)
}

func TestCountModelsEmptySubsetIsDegenerate(t *testing.T) {
	th, err := theory.Assemble(logic.NewRegistry(), nil)
	require.NoError(t, err)
	a := New(th)

	counts, err := a.CountModels(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total, "empty subset collapses to a single projection")
	require.Len(t, counts.Assignments, 1)
	assert.Empty(t, counts.Assignments[0])
}

func TestBasicEntailment(t *testing.T) {
	reg := logic.NewRegistry()
	p := reg.Var("p")
	q := reg.Var("q")
	r := reg.Var("r")

	th, err := theory.Assemble(reg, []logic.Constraint{
		logic.NewConstraint("p_holds", p),
		logic.NewConstraint("p_implies_q", logic.Implies(p, q)),
		logic.NewConstraint("r_excluded", logic.Not(r)),
	})
	require.NoError(t, err)
	a := New(th)

	ent, err := a.Entailed("q")
	require.NoError(t, err)
	assert.True(t, ent)

	ent, err = a.Entailed("r")
	require.NoError(t, err)
	assert.False(t, ent, "a false proposition is not entailed")

	exc, err := a.Excluded("r")
	require.NoError(t, err)
	assert.True(t, exc)

	exc, err = a.Excluded("q")
	require.NoError(t, err)
	assert.False(t, exc)

	_, err = a.Entailed("ghost")
	var unknown *theory.UnknownPropError
	assert.ErrorAs(t, err, &unknown)
}

func TestEntailmentRoundTrip(t *testing.T) {
	// If a proposition is entailed, asserting its negation must leave no
	// model.
	reg := logic.NewRegistry()
	p := reg.Var("p")
	q := reg.Var("q")

	th, err := theory.Assemble(reg, []logic.Constraint{
		logic.NewConstraint("p_holds", p),
		logic.NewConstraint("p_implies_q", logic.Implies(p, q)),
	})
	require.NoError(t, err)

	a := New(th)
	ent, err := a.Entailed("q")
	require.NoError(t, err)
	require.True(t, ent)

	regNeg := logic.NewRegistry()
	pn := regNeg.Var("p")
	qn := regNeg.Var("q")
	thNeg, err := theory.Assemble(regNeg, []logic.Constraint{
		logic.NewConstraint("p_holds", pn),
		logic.NewConstraint("p_implies_q", logic.Implies(pn, qn)),
		logic.NewConstraint("not_q", logic.Not(qn)),
	})
	require.NoError(t, err)

	_, ok, err := New(thNeg).FindModel()
	require.NoError(t, err)
	assert.False(t, ok, "theory plus negated entailed proposition has no model")
}

func TestFindModelIsComplete(t *testing.T) {
	sess := newWarSession(t, tinyConfig(0))

	m, ok, err := sess.Analyzer.FindModel()
	require.NoError(t, err)
	require.True(t, ok)

	for _, p := range sess.Theory.Props() {
		_, bound := m[p.Name()]
		assert.Truef(t, bound, "model must bind %s", p.Name())
	}
	for _, c := range sess.Theory.Constraints() {
		assert.Truef(t, c.F.Eval(map[string]bool(m)), "model must satisfy %s", c.Label)
	}
}

func TestHigherRankWinsOutright(t *testing.T) {
	// Ranks A=King(13), B=Queen(12), war depth 0.
	cfg := rules.DefaultConfig()
	cfg.MaxWarDepth = 0
	sess := newWarSession(t, cfg,
		Pin{Player: "A", Level: 0, Rank: 13},
		Pin{Player: "B", Level: 0, Rank: 12},
	)
	a := sess.Analyzer

	ent, err := a.Entailed("A_wins_at_0")
	require.NoError(t, err)
	assert.True(t, ent, "king beats queen in every model")

	exc, err := a.Excluded("B_wins_at_0")
	require.NoError(t, err)
	assert.True(t, exc)

	exc, err = a.Excluded("war_at_0")
	require.NoError(t, err)
	assert.True(t, exc, "unequal ranks never trigger a war")

	ent, err = a.Entailed("A_takes_round")
	require.NoError(t, err)
	assert.True(t, ent)
}

func TestEqualRanksTriggerWar(t *testing.T) {
	// Ranks A=7, B=7, then war-round ranks A=9, B=4.
	cfg := rules.DefaultConfig()
	cfg.MaxWarDepth = 1
	sess := newWarSession(t, cfg,
		Pin{Player: "A", Level: 0, Rank: 7},
		Pin{Player: "B", Level: 0, Rank: 7},
		Pin{Player: "A", Level: 1, Rank: 9},
		Pin{Player: "B", Level: 1, Rank: 4},
	)
	a := sess.Analyzer

	ent, err := a.Entailed("war_at_0")
	require.NoError(t, err)
	assert.True(t, ent)

	for _, prop := range []string{"A_wins_at_0", "B_wins_at_0"} {
		exc, err := a.Excluded(prop)
		require.NoError(t, err)
		assert.Truef(t, exc, "%s must be excluded at the tied level", prop)
	}

	ent, err = a.Entailed("A_wins_at_1")
	require.NoError(t, err)
	assert.True(t, ent, "nine beats four at the war round")

	ent, err = a.Entailed("A_takes_round")
	require.NoError(t, err)
	assert.True(t, ent)
}

func TestRevealHasExactlyOneRank(t *testing.T) {
	cfg := rules.DefaultConfig()
	cfg.MaxWarDepth = 0
	sess := newWarSession(t, cfg, Pin{Player: "A", Level: 0, Rank: 13})

	exc, err := sess.Analyzer.Excluded("A_rank_is_12_at_0")
	require.NoError(t, err)
	assert.True(t, exc, "a pinned reveal admits no second rank")
}

func TestNoRankReuseAcrossWarLevels(t *testing.T) {
	cfg := rules.DefaultConfig()
	cfg.MaxWarDepth = 1
	sess := newWarSession(t, cfg,
		Pin{Player: "A", Level: 0, Rank: 7},
		Pin{Player: "B", Level: 0, Rank: 7},
	)

	exc, err := sess.Analyzer.Excluded("A_rank_is_7_at_1")
	require.NoError(t, err)
	assert.True(t, exc, "a player cannot reveal the same rank twice")
}

func TestExhaustedWarChainIsUnresolved(t *testing.T) {
	// Two ranks, depth 1: a tie at level 0 forces the remaining ranks to
	// tie again at level 1.
	sess := newWarSession(t, tinyConfig(1),
		Pin{Player: "A", Level: 0, Rank: 2},
		Pin{Player: "B", Level: 0, Rank: 2},
	)
	a := sess.Analyzer

	for _, prop := range []string{"war_at_1", "round_unresolved"} {
		ent, err := a.Entailed(prop)
		require.NoError(t, err)
		assert.Truef(t, ent, "%s must hold after deck exhaustion", prop)
	}
	for _, prop := range []string{"A_takes_round", "B_takes_round"} {
		exc, err := a.Excluded(prop)
		require.NoError(t, err)
		assert.Truef(t, exc, "%s impossible when every level ties", prop)
	}
}

func TestOutcomeSpaceCount(t *testing.T) {
	sess := newWarSession(t, tinyConfig(0))
	over := []string{"A_wins_at_0", "B_wins_at_0", "war_at_0"}

	counts, err := sess.Analyzer.CountModels(over)
	require.NoError(t, err)

	// Reveal pairs (2,2),(2,3),(3,2),(3,3) collapse to three outcomes.
	assert.Equal(t, 3, counts.Total)
	assert.Len(t, counts.Assignments, 3)
	assert.Equal(t, 1, counts.TrueCounts["A_wins_at_0"])
	assert.Equal(t, 1, counts.TrueCounts["B_wins_at_0"])
	assert.Equal(t, 1, counts.TrueCounts["war_at_0"])

	// Exactly one outcome per projection, never double-counted.
	for _, proj := range counts.Assignments {
		trues := 0
		for _, v := range proj {
			if v {
				trues++
			}
		}
		assert.Equal(t, 1, trues)
	}

	// Re-running the enumeration is idempotent.
	again, err := sess.Analyzer.CountModels(over)
	require.NoError(t, err)
	assert.Equal(t, counts.Total, again.Total)
	assert.Equal(t, counts.TrueCounts, again.TrueCounts)
}

func TestLikelihood(t *testing.T) {
	sess := newWarSession(t, tinyConfig(0))

	lk, err := sess.Analyzer.Likelihood("A_wins_at_0", []string{"B_wins_at_0", "war_at_0"})
	require.NoError(t, err)
	assert.Equal(t, 1, lk.Num)
	assert.Equal(t, 3, lk.Den)
	assert.InDelta(t, 1.0/3.0, lk.Ratio(), 1e-9)

	// The target proposition is added to the subset when absent, so
	// passing it explicitly changes nothing.
	same, err := sess.Analyzer.Likelihood("A_wins_at_0", []string{"A_wins_at_0", "B_wins_at_0", "war_at_0"})
	require.NoError(t, err)
	assert.Equal(t, lk.Num, same.Num)
	assert.Equal(t, lk.Den, same.Den)
}

func TestStackedDeck(t *testing.T) {
	t.Run("shared rank entails stacked", func(t *testing.T) {
		sess := newWarSession(t, tinyConfig(0),
			Pin{Player: "A", Level: 0, Rank: 2},
			Pin{Player: "B", Level: 0, Rank: 2},
		)
		ent, err := sess.Analyzer.Entailed("deck_stacked")
		require.NoError(t, err)
		assert.True(t, ent)
	})

	t.Run("distinct ranks exclude stacked", func(t *testing.T) {
		sess := newWarSession(t, tinyConfig(0),
			Pin{Player: "A", Level: 0, Rank: 3},
			Pin{Player: "B", Level: 0, Rank: 2},
		)
		exc, err := sess.Analyzer.Excluded("deck_stacked")
		require.NoError(t, err)
		assert.True(t, exc)
	})

	t.Run("tolerance raises the bar", func(t *testing.T) {
		cfg := tinyConfig(0)
		cfg.StackedTolerance = 1
		sess := newWarSession(t, cfg,
			Pin{Player: "A", Level: 0, Rank: 2},
			Pin{Player: "B", Level: 0, Rank: 2},
		)
		// One shared rank is within tolerance.
		exc, err := sess.Analyzer.Excluded("deck_stacked")
		require.NoError(t, err)
		assert.True(t, exc)
	})

	t.Run("unpinned deck leaves stacked open", func(t *testing.T) {
		sess := newWarSession(t, tinyConfig(0))
		ent, err := sess.Analyzer.Entailed("deck_stacked")
		require.NoError(t, err)
		assert.False(t, ent)
		exc, err := sess.Analyzer.Excluded("deck_stacked")
		require.NoError(t, err)
		assert.False(t, exc)
	})
}

func TestContradictoryPinsFailAtConstruction(t *testing.T) {
	_, err := NewSession(tinyConfig(0), []Pin{
		{Player: "A", Level: 0, Rank: 2},
		{Player: "A", Level: 0, Rank: 3},
	})
	require.Error(t, err)

	var inconsistent *InconsistentError
	require.ErrorAs(t, err, &inconsistent)
	assert.NotEmpty(t, inconsistent.Labels, "the self-check must report the constraint set")
}

func TestDefaultTheoryIsConsistent(t *testing.T) {
	sess := newWarSession(t, rules.DefaultConfig())

	sat, err := sess.Analyzer.Satisfiable()
	require.NoError(t, err)
	assert.True(t, sat, "the encoded rules must not contradict each other")
}

func TestConcurrentQueriesShareOneAnalyzer(t *testing.T) {
	sess := newWarSession(t, tinyConfig(0))
	a := sess.Analyzer

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := a.Entailed("deck_stacked")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
