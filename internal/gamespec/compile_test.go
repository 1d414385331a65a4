package gamespec

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlogic/warsat/internal/rules"
	"github.com/cardlogic/warsat/internal/solve"
)

func compileString(t *testing.T, src string) (*Spec, error) {
	t.Helper()
	return Compile(cuecontext.New().CompileString(src))
}

func TestCompileFullSpec(t *testing.T) {
	spec, err := compileString(t, `
game: {
	player_a:          "alice"
	player_b:          "bob"
	ranks:             [2, 3, 4]
	max_war_depth:     1
	stacked_tolerance: 1
	pins: [
		{player: "alice", level: 0, rank: 4},
		{player: "bob", rank: 2},
	]
}
queries: [
	{name: "consistent", kind: "satisfiable"},
	{name: "alice_wins", kind: "entailed", prop: "alice_wins_at_0"},
	{name: "outcomes", kind: "count", over: ["alice_wins_at_0", "bob_wins_at_0", "war_at_0"]},
]
`)
	require.NoError(t, err)

	assert.Equal(t, "alice", spec.Config.PlayerA)
	assert.Equal(t, "bob", spec.Config.PlayerB)
	assert.Equal(t, []int{2, 3, 4}, spec.Config.Ranks)
	assert.Equal(t, 1, spec.Config.MaxWarDepth)
	assert.Equal(t, 1, spec.Config.StackedTolerance)

	require.Len(t, spec.Pins, 2)
	assert.Equal(t, solve.Pin{Player: "alice", Level: 0, Rank: 4}, spec.Pins[0])
	assert.Equal(t, solve.Pin{Player: "bob", Level: 0, Rank: 2}, spec.Pins[1])

	require.Len(t, spec.Queries, 3)
	assert.Equal(t, "consistent", spec.Queries[0].Name)
	assert.Equal(t, solve.KindEntailed, spec.Queries[1].Kind)
	assert.Equal(t, []string{"alice_wins_at_0", "bob_wins_at_0", "war_at_0"}, spec.Queries[2].Over)
}

func TestCompileDefaults(t *testing.T) {
	spec, err := compileString(t, `game: {}`)
	require.NoError(t, err)

	want := rules.DefaultConfig()
	assert.Equal(t, want, spec.Config)
	assert.Empty(t, spec.Pins)
	assert.Empty(t, spec.Queries)
}

func TestCompileCustomRanksRederiveDepth(t *testing.T) {
	spec, err := compileString(t, `game: ranks: [2, 3, 4, 5]`)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Config.MaxWarDepth, "default depth follows the deck size")

	spec, err = compileString(t, `game: {ranks: [2, 3, 4, 5], max_war_depth: 0}`)
	require.NoError(t, err)
	assert.Equal(t, 0, spec.Config.MaxWarDepth, "an explicit depth wins")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{"missing game", `queries: []`, "game", "game section is required"},
		{"bad player type", `game: player_a: 7`, "player_a", ""},
		{"bad ranks", `game: ranks: "royal"`, "game.ranks", "must be a list of ints"},
		{"bad depth", `game: max_war_depth: "deep"`, "game.max_war_depth", ""},
		{"depth out of range", `game: max_war_depth: 40`, "game", "war depth"},
		{"same players", `game: {player_a: "x", player_b: "x"}`, "game", "distinct"},
		{"pin without player", `game: pins: [{level: 0, rank: 2}]`, "game.pins.player", "player is required"},
		{"pin without rank", `game: pins: [{player: "A"}]`, "game.pins.rank", "rank is required"},
		{"pins not a list", `game: pins: 3`, "game.pins", "pins must be a list"},
		{"queries not a list", `
game: {}
queries: "all"`, "queries", "queries must be a list"},
		{"query missing prop", `
game: {}
queries: [{name: "q", kind: "entailed"}]`, "queries", "requires prop"},
		{"query unknown kind", `
game: {}
queries: [{name: "q", kind: "prove"}]`, "queries", "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src)
			require.Error(t, err)
			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
			if tt.message != "" {
				assert.Contains(t, cerr.Error(), tt.message)
			}
		})
	}
}

func TestCompileRejectsMalformedCUE(t *testing.T) {
	_, err := compileString(t, `game: {`)
	require.Error(t, err)
	var cerr *CompileError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "king_vs_queen.cue")
	spec, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "A", spec.Config.PlayerA)
	assert.Equal(t, 0, spec.Config.MaxWarDepth)
	require.Len(t, spec.Pins, 2)
	require.Len(t, spec.Queries, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileErrorFormatting(t *testing.T) {
	err := &CompileError{Field: "game.ranks", Message: "must be a list of ints"}
	assert.Equal(t, "game.ranks: must be a list of ints", err.Error())
}
