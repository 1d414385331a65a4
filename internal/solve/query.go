package solve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardlogic/warsat/internal/theory"
)

// Model is a complete truth assignment over the theory's named
// propositions. Transient query output, not owned by the theory.
type Model map[string]bool

// Projections is the result of counting models restricted to a
// proposition subset: every distinct projected assignment, how often
// each proposition held across them, and the total.
//
// With an empty subset the result degenerates to a single empty
// projection when the theory is satisfiable, so Total is the 0/1
// satisfiability indicator.
type Projections struct {
	Props       []string       `json:"props"`
	Assignments []Model        `json:"assignments"`
	TrueCounts  map[string]int `json:"true_counts"`
	Total       int            `json:"total"`
}

// Likelihood is the fraction of projected models in which a proposition
// holds. Den is zero only for an unsatisfiable theory.
type Likelihood struct {
	Prop string `json:"prop"`
	Num  int    `json:"num"`
	Den  int    `json:"den"`
}

// Ratio returns Num/Den, or 0 for an unsatisfiable theory.
func (l Likelihood) Ratio() float64 {
	if l.Den == 0 {
		return 0
	}
	return float64(l.Num) / float64(l.Den)
}

// InconsistentError reports that the assembled constraint set is
// contradictory. Raised by the post-assembly self-check, never by
// ordinary queries.
type InconsistentError struct {
	Labels []string
}

func (e *InconsistentError) Error() string {
	n := len(e.Labels)
	if n > 8 {
		return fmt.Sprintf("theory is unsatisfiable as constructed (%d constraints: %s, ...)",
			n, strings.Join(e.Labels[:8], ", "))
	}
	return fmt.Sprintf("theory is unsatisfiable as constructed (%d constraints: %s)",
		n, strings.Join(e.Labels, ", "))
}

// Analyzer issues queries against one immutable theory. Queries never
// mutate shared state, so one Analyzer may serve concurrent queries.
type Analyzer struct {
	th      *theory.Theory
	backend Backend
	base    [][]int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBackend swaps the SAT backend.
func WithBackend(b Backend) Option {
	return func(a *Analyzer) { a.backend = b }
}

// New creates an Analyzer over the theory, defaulting to the gophersat
// backend.
func New(th *theory.Theory, opts ...Option) *Analyzer {
	a := &Analyzer{th: th, backend: Gophersat{}}
	for _, opt := range opts {
		opt(a)
	}
	a.base = th.Clauses()
	// Anchor every named proposition in the solver's variable universe
	// with a tautological clause, so models always cover all of them.
	for v := 1; v <= th.NumNamed(); v++ {
		a.base = append(a.base, []int{v, -v})
	}
	return a
}

// Theory returns the theory under analysis.
func (a *Analyzer) Theory() *theory.Theory { return a.th }

func (a *Analyzer) clauses(extra ...[]int) [][]int {
	out := make([][]int, len(a.base), len(a.base)+len(extra)+8)
	copy(out, a.base)
	return append(out, extra...)
}

// Satisfiable reports whether at least one model exists. An empty theory
// is trivially satisfiable.
func (a *Analyzer) Satisfiable() (bool, error) {
	_, sat, err := a.backend.Solve(a.th.NumVars(), a.clauses())
	return sat, err
}

// VerifyConsistent runs the post-assembly self-check: a contradictory
// constraint set is a construction defect and is reported eagerly, with
// the assembled constraint labels, instead of surfacing later as silent
// "no answer" query results.
func (a *Analyzer) VerifyConsistent() error {
	sat, err := a.Satisfiable()
	if err != nil {
		return err
	}
	if !sat {
		return &InconsistentError{Labels: a.th.ConstraintLabels()}
	}
	return nil
}

// FindModel returns one satisfying assignment over every named
// proposition, or ok=false when none exists. Never a partial assignment.
func (a *Analyzer) FindModel() (Model, bool, error) {
	raw, sat, err := a.backend.Solve(a.th.NumVars(), a.clauses())
	if err != nil || !sat {
		return nil, false, err
	}
	return a.decode(raw), true, nil
}

func (a *Analyzer) decode(raw []bool) Model {
	m := make(Model, a.th.NumNamed())
	for v := 1; v <= a.th.NumNamed(); v++ {
		val := false
		if v-1 < len(raw) {
			val = raw[v-1]
		}
		m[a.th.NameOf(v)] = val
	}
	return m
}

// Entailed reports whether prop is true in every model: theory ∧ ¬prop
// must be unsatisfiable.
func (a *Analyzer) Entailed(prop string) (bool, error) {
	lit, err := a.th.LitOf(prop)
	if err != nil {
		return false, err
	}
	_, sat, err := a.backend.Solve(a.th.NumVars(), a.clauses([]int{-lit}))
	if err != nil {
		return false, err
	}
	return !sat, nil
}

// Excluded reports whether prop is false in every model: theory ∧ prop
// must be unsatisfiable.
func (a *Analyzer) Excluded(prop string) (bool, error) {
	lit, err := a.th.LitOf(prop)
	if err != nil {
		return false, err
	}
	_, sat, err := a.backend.Solve(a.th.NumVars(), a.clauses([]int{lit}))
	if err != nil {
		return false, err
	}
	return !sat, nil
}

// CountModels enumerates the distinct satisfying assignments restricted
// to the given propositions. Standard blocking-clause enumeration: after
// each model the projected assignment is excluded and the solver re-run
// until unsatisfiable. Full models agreeing on the subset collapse into
// one projection, so nothing is double-counted.
func (a *Analyzer) CountModels(props []string) (*Projections, error) {
	lits := make([]int, len(props))
	for i, name := range props {
		lit, err := a.th.LitOf(name)
		if err != nil {
			return nil, err
		}
		lits[i] = lit
	}

	res := &Projections{
		Props:      append([]string(nil), props...),
		TrueCounts: make(map[string]int, len(props)),
	}
	clauses := a.clauses()
	for {
		raw, sat, err := a.backend.Solve(a.th.NumVars(), clauses)
		if err != nil {
			return nil, err
		}
		if !sat {
			break
		}
		proj := make(Model, len(props))
		blocking := make([]int, len(props))
		for i, name := range props {
			val := lits[i]-1 < len(raw) && raw[lits[i]-1]
			proj[name] = val
			if val {
				res.TrueCounts[name]++
				blocking[i] = -lits[i]
			} else {
				blocking[i] = lits[i]
			}
		}
		res.Assignments = append(res.Assignments, proj)
		res.Total++
		if len(blocking) == 0 {
			// Empty subset: one degenerate projection covers everything.
			break
		}
		clauses = append(clauses, blocking)
	}
	return res, nil
}

// Likelihood returns the fraction of models, projected onto `over` plus
// prop itself, in which prop holds.
func (a *Analyzer) Likelihood(prop string, over []string) (Likelihood, error) {
	props := append([]string(nil), over...)
	found := false
	for _, p := range props {
		if p == prop {
			found = true
			break
		}
	}
	if !found {
		props = append(props, prop)
	}
	sort.Strings(props)
	counts, err := a.CountModels(props)
	if err != nil {
		return Likelihood{}, err
	}
	return Likelihood{Prop: prop, Num: counts.TrueCounts[prop], Den: counts.Total}, nil
}
