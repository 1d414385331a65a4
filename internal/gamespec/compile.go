package gamespec

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/cardlogic/warsat/internal/rules"
	"github.com/cardlogic/warsat/internal/solve"
)

// Spec is a compiled analysis spec: the game to encode and the queries
// to run against it.
type Spec struct {
	Config  rules.Config
	Pins    []solve.Pin
	Queries []solve.Query
}

// CompileError reports a malformed spec field with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and compiles a spec file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gamespec: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value into a Spec. The value must carry a "game"
// struct; "queries" is optional.
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "spec", Message: err.Error(), Pos: v.Pos()}
	}

	spec := &Spec{Config: rules.DefaultConfig()}

	gameVal := v.LookupPath(cue.ParsePath("game"))
	if !gameVal.Exists() {
		return nil, &CompileError{Field: "game", Message: "game section is required", Pos: v.Pos()}
	}
	if err := parseGame(gameVal, spec); err != nil {
		return nil, err
	}

	queriesVal := v.LookupPath(cue.ParsePath("queries"))
	if queriesVal.Exists() {
		queries, err := parseQueries(queriesVal)
		if err != nil {
			return nil, err
		}
		spec.Queries = queries
	}

	if err := spec.Config.Validate(); err != nil {
		return nil, &CompileError{Field: "game", Message: err.Error(), Pos: gameVal.Pos()}
	}
	for _, q := range spec.Queries {
		if err := q.Validate(); err != nil {
			return nil, &CompileError{Field: "queries", Message: err.Error(), Pos: queriesVal.Pos()}
		}
	}
	return spec, nil
}

func parseGame(v cue.Value, spec *Spec) error {
	if s, err := stringField(v, "player_a"); err != nil {
		return err
	} else if s != "" {
		spec.Config.PlayerA = s
	}
	if s, err := stringField(v, "player_b"); err != nil {
		return err
	} else if s != "" {
		spec.Config.PlayerB = s
	}

	ranksVal := v.LookupPath(cue.ParsePath("ranks"))
	if ranksVal.Exists() {
		ranks, err := intList(ranksVal, "game.ranks")
		if err != nil {
			return err
		}
		spec.Config.Ranks = ranks
		// The default depth tracks the default deck; a custom deck
		// re-derives it unless the spec pins the depth explicitly.
		spec.Config.MaxWarDepth = len(ranks) - 1
	}

	depthVal := v.LookupPath(cue.ParsePath("max_war_depth"))
	if depthVal.Exists() {
		depth, err := depthVal.Int64()
		if err != nil {
			return &CompileError{Field: "game.max_war_depth", Message: err.Error(), Pos: depthVal.Pos()}
		}
		spec.Config.MaxWarDepth = int(depth)
	}

	tolVal := v.LookupPath(cue.ParsePath("stacked_tolerance"))
	if tolVal.Exists() {
		tol, err := tolVal.Int64()
		if err != nil {
			return &CompileError{Field: "game.stacked_tolerance", Message: err.Error(), Pos: tolVal.Pos()}
		}
		spec.Config.StackedTolerance = int(tol)
	}

	pinsVal := v.LookupPath(cue.ParsePath("pins"))
	if pinsVal.Exists() {
		iter, err := pinsVal.List()
		if err != nil {
			return &CompileError{Field: "game.pins", Message: "pins must be a list", Pos: pinsVal.Pos()}
		}
		for iter.Next() {
			pin, err := parsePin(iter.Value())
			if err != nil {
				return err
			}
			spec.Pins = append(spec.Pins, pin)
		}
	}
	return nil
}

func parsePin(v cue.Value) (solve.Pin, error) {
	var pin solve.Pin
	player, err := stringField(v, "player")
	if err != nil {
		return pin, err
	}
	if player == "" {
		return pin, &CompileError{Field: "game.pins.player", Message: "player is required", Pos: v.Pos()}
	}
	pin.Player = player

	levelVal := v.LookupPath(cue.ParsePath("level"))
	if levelVal.Exists() {
		level, err := levelVal.Int64()
		if err != nil {
			return pin, &CompileError{Field: "game.pins.level", Message: err.Error(), Pos: levelVal.Pos()}
		}
		pin.Level = int(level)
	}

	rankVal := v.LookupPath(cue.ParsePath("rank"))
	if !rankVal.Exists() {
		return pin, &CompileError{Field: "game.pins.rank", Message: "rank is required", Pos: v.Pos()}
	}
	rank, err := rankVal.Int64()
	if err != nil {
		return pin, &CompileError{Field: "game.pins.rank", Message: err.Error(), Pos: rankVal.Pos()}
	}
	pin.Rank = int(rank)
	return pin, nil
}

func parseQueries(v cue.Value) ([]solve.Query, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "queries", Message: "queries must be a list", Pos: v.Pos()}
	}
	var queries []solve.Query
	for iter.Next() {
		qv := iter.Value()
		var q solve.Query
		if q.Name, err = stringField(qv, "name"); err != nil {
			return nil, err
		}
		if q.Kind, err = stringField(qv, "kind"); err != nil {
			return nil, err
		}
		if q.Prop, err = stringField(qv, "prop"); err != nil {
			return nil, err
		}
		overVal := qv.LookupPath(cue.ParsePath("over"))
		if overVal.Exists() {
			over, err := stringList(overVal, "queries.over")
			if err != nil {
				return nil, err
			}
			q.Over = over
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func stringField(v cue.Value, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: name, Message: err.Error(), Pos: fv.Pos()}
	}
	return s, nil
}

func intList(v cue.Value, field string) ([]int, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of ints", Pos: v.Pos()}
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, int(n))
	}
	return out, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}
