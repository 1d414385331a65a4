package solve

import (
	"fmt"
	"log/slog"

	"github.com/cardlogic/warsat/internal/rules"
	"github.com/cardlogic/warsat/internal/theory"
)

// Query kinds understood by Session.Run.
const (
	KindSatisfiable = "satisfiable"
	KindModel       = "model"
	KindEntailed    = "entailed"
	KindExcluded    = "excluded"
	KindCount       = "count"
	KindLikelihood  = "likelihood"
)

// ValidKinds lists the allowed query kinds.
var ValidKinds = []string{KindSatisfiable, KindModel, KindEntailed, KindExcluded, KindCount, KindLikelihood}

// Query is one named question against the theory.
type Query struct {
	Name string   `json:"name" yaml:"name"`
	Kind string   `json:"kind" yaml:"kind"`
	Prop string   `json:"prop,omitempty" yaml:"prop,omitempty"` // entailed, excluded, likelihood
	Over []string `json:"over,omitempty" yaml:"over,omitempty"` // count, likelihood
}

// Validate checks the query's shape without touching the theory.
func (q Query) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("query has no name")
	}
	switch q.Kind {
	case KindSatisfiable, KindModel:
		if q.Prop != "" || len(q.Over) > 0 {
			return fmt.Errorf("query %q: kind %q takes no prop or over", q.Name, q.Kind)
		}
	case KindEntailed, KindExcluded:
		if q.Prop == "" {
			return fmt.Errorf("query %q: kind %q requires prop", q.Name, q.Kind)
		}
	case KindCount:
		if q.Prop != "" {
			return fmt.Errorf("query %q: kind count takes over, not prop", q.Name)
		}
	case KindLikelihood:
		if q.Prop == "" {
			return fmt.Errorf("query %q: kind likelihood requires prop", q.Name)
		}
	default:
		return fmt.Errorf("query %q: unknown kind %q (want one of %v)", q.Name, q.Kind, ValidKinds)
	}
	return nil
}

// Result is the typed answer to one query. Exactly one payload field is
// set, matching the query kind. Negative answers (unsatisfiable, not
// entailed, zero models) are ordinary results.
type Result struct {
	Query      Query        `json:"query"`
	Bool       *bool        `json:"bool,omitempty"`
	Model      Model        `json:"model,omitempty"`
	NoModel    bool         `json:"no_model,omitempty"`
	Count      *Projections `json:"count,omitempty"`
	Likelihood *Likelihood  `json:"likelihood,omitempty"`
}

// Pin fixes one reveal to a concrete rank before encoding.
type Pin struct {
	Player string `json:"player" yaml:"player"`
	Level  int    `json:"level" yaml:"level"`
	Rank   int    `json:"rank" yaml:"rank"`
}

// Session ties the whole pipeline together: build the registry and
// constraints from a config, assemble the theory, self-check it, then
// answer named queries. This is the stable call sequence the CLI wrapper
// consumes.
type Session struct {
	Encoder  *rules.Encoder
	Theory   *theory.Theory
	Analyzer *Analyzer
}

// NewSession encodes, assembles and self-checks a theory for the given
// game configuration. Construction defects — an invalid config, a bad
// pin, a dangling reference, a contradictory constraint set — abort the
// session; no partial session is returned.
func NewSession(cfg rules.Config, pins []Pin, opts ...Option) (*Session, error) {
	enc, err := rules.NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range pins {
		if err := enc.Pin(p.Player, p.Level, p.Rank); err != nil {
			return nil, err
		}
	}
	cons := enc.Constraints()
	th, err := theory.Assemble(enc.Registry(), cons)
	if err != nil {
		return nil, err
	}
	a := New(th, opts...)
	if err := a.VerifyConsistent(); err != nil {
		return nil, err
	}
	size := th.Size()
	slog.Debug("theory assembled",
		"props", size.Props, "constraints", size.Constraints,
		"vars", size.Vars, "clauses", size.Clauses)
	return &Session{Encoder: enc, Theory: th, Analyzer: a}, nil
}

// Run answers every query in order and returns a name → result map.
// The first malformed query or backend failure aborts the run.
func (s *Session) Run(queries []Query) (map[string]Result, error) {
	results := make(map[string]Result, len(queries))
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := results[q.Name]; dup {
			return nil, fmt.Errorf("duplicate query name %q", q.Name)
		}
		res := Result{Query: q}
		switch q.Kind {
		case KindSatisfiable:
			sat, err := s.Analyzer.Satisfiable()
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			res.Bool = &sat
		case KindModel:
			m, ok, err := s.Analyzer.FindModel()
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			if ok {
				res.Model = m
			} else {
				res.NoModel = true
			}
		case KindEntailed:
			ent, err := s.Analyzer.Entailed(q.Prop)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			res.Bool = &ent
		case KindExcluded:
			exc, err := s.Analyzer.Excluded(q.Prop)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			res.Bool = &exc
		case KindCount:
			counts, err := s.Analyzer.CountModels(q.Over)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			res.Count = counts
		case KindLikelihood:
			lk, err := s.Analyzer.Likelihood(q.Prop, q.Over)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", q.Name, err)
			}
			res.Likelihood = &lk
		}
		results[q.Name] = res
	}
	return results, nil
}
