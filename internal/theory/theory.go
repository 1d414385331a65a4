package theory

import (
	"fmt"

	"github.com/cardlogic/warsat/internal/logic"
)

// Theory is the assembled boolean theory: all propositions, all
// constraints, and their CNF compilation. Read-only after Assemble;
// queries may share a Theory freely across goroutines.
type Theory struct {
	props       []logic.Prop
	constraints []logic.Constraint

	index    map[string]int // proposition name → 1-based literal
	names    []string       // 1-based literal → name, auxiliaries included
	numNamed int
	clauses  [][]int
}

// Size reports the theory's dimensions, for the external size check and
// for logging.
type Size struct {
	Props       int `json:"props"`
	Constraints int `json:"constraints"`
	Vars        int `json:"vars"` // props plus CNF auxiliaries
	Clauses     int `json:"clauses"`
}

func (s Size) String() string {
	return fmt.Sprintf("%d props, %d constraints (%d vars, %d clauses as CNF)",
		s.Props, s.Constraints, s.Vars, s.Clauses)
}

// Assemble aggregates the registry and constraints into a Theory. Every
// proposition referenced by a constraint must be registered; a violation
// returns a DanglingRefError and no theory.
func Assemble(reg *logic.Registry, constraints []logic.Constraint) (*Theory, error) {
	props := reg.All()
	t := &Theory{
		props:       props,
		constraints: constraints,
		index:       make(map[string]int, len(props)),
		names:       make([]string, 0, len(props)),
		numNamed:    len(props),
	}
	for _, p := range props {
		t.names = append(t.names, p.Name())
		t.index[p.Name()] = len(t.names)
	}

	for _, c := range constraints {
		for _, p := range c.Props() {
			if !reg.Has(p.Name()) {
				return nil, &DanglingRefError{Constraint: c.Label, Prop: p.Name()}
			}
		}
	}

	aux := logic.NewRegistry()
	fresh := func() logic.Prop {
		p := aux.Var(fmt.Sprintf("_aux_%d", len(t.names)+1))
		t.names = append(t.names, p.Name())
		t.index[p.Name()] = len(t.names)
		return p
	}
	for _, c := range constraints {
		for _, clause := range logic.CNF(c.F, fresh) {
			lits := make([]int, len(clause))
			for i, l := range clause {
				v := t.index[l.P.Name()]
				if l.Neg {
					v = -v
				}
				lits[i] = v
			}
			t.clauses = append(t.clauses, lits)
		}
	}
	return t, nil
}

// Size returns the theory's dimensions.
func (t *Theory) Size() Size {
	return Size{
		Props:       t.numNamed,
		Constraints: len(t.constraints),
		Vars:        len(t.names),
		Clauses:     len(t.clauses),
	}
}

// Props returns the theory's propositions in literal order.
func (t *Theory) Props() []logic.Prop { return t.props }

// Constraints returns the assembled constraint set.
func (t *Theory) Constraints() []logic.Constraint { return t.constraints }

// ConstraintLabels returns the labels of every assembled constraint, for
// diagnostics when the set proves contradictory.
func (t *Theory) ConstraintLabels() []string {
	labels := make([]string, len(t.constraints))
	for i, c := range t.constraints {
		labels[i] = c.Label
	}
	return labels
}

// NumVars returns the CNF variable count, auxiliaries included.
func (t *Theory) NumVars() int { return len(t.names) }

// NumNamed returns the number of named propositions. Literals 1..NumNamed
// are named; anything above is a CNF auxiliary.
func (t *Theory) NumNamed() int { return t.numNamed }

// Clauses returns the CNF clause set. The outer slice is a fresh copy so
// callers may append blocking clauses; the inner clauses are shared and
// must not be mutated.
func (t *Theory) Clauses() [][]int {
	out := make([][]int, len(t.clauses), len(t.clauses)+16)
	copy(out, t.clauses)
	return out
}

// LitOf returns the positive literal for a named proposition.
func (t *Theory) LitOf(name string) (int, error) {
	v, ok := t.index[name]
	if !ok {
		return 0, &UnknownPropError{Prop: name}
	}
	return v, nil
}

// NameOf returns the proposition name for a 1-based literal index, or ""
// for out-of-range values.
func (t *Theory) NameOf(v int) string {
	if v < 1 || v > len(t.names) {
		return ""
	}
	return t.names[v-1]
}
