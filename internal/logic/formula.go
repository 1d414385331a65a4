package logic

import (
	"fmt"
	"strings"
)

// Formula is a boolean formula over registered propositions. Formulas are
// immutable; constructors share subtrees freely.
type Formula interface {
	// Eval evaluates the formula under the given assignment. Names absent
	// from the assignment evaluate to false.
	Eval(model map[string]bool) bool
	String() string

	walk(fn func(Prop))
}

func (p Prop) Eval(model map[string]bool) bool { return model[p.name] }
func (p Prop) walk(fn func(Prop))              { fn(p) }

type not [1]Formula

// Not negates the given formula.
func Not(f Formula) Formula { return not{f} }

func (n not) Eval(model map[string]bool) bool { return !n[0].Eval(model) }
func (n not) walk(fn func(Prop))              { n[0].walk(fn) }
func (n not) String() string                  { return "not(" + n[0].String() + ")" }

type and []Formula

// And builds the conjunction of the given formulas. And() is trivially true.
func And(subs ...Formula) Formula { return and(subs) }

func (a and) Eval(model map[string]bool) bool {
	for _, s := range a {
		if !s.Eval(model) {
			return false
		}
	}
	return true
}

func (a and) walk(fn func(Prop)) {
	for _, s := range a {
		s.walk(fn)
	}
}

func (a and) String() string { return connective("and", a) }

type or []Formula

// Or builds the disjunction of the given formulas. Or() is trivially false.
func Or(subs ...Formula) Formula { return or(subs) }

func (o or) Eval(model map[string]bool) bool {
	for _, s := range o {
		if s.Eval(model) {
			return true
		}
	}
	return false
}

func (o or) walk(fn func(Prop)) {
	for _, s := range o {
		s.walk(fn)
	}
}

func (o or) String() string { return connective("or", o) }

func connective(name string, subs []Formula) string {
	strs := make([]string, len(subs))
	for i, s := range subs {
		strs[i] = s.String()
	}
	return name + "(" + strings.Join(strs, ", ") + ")"
}

// Implies builds the implication f1 → f2.
func Implies(f1, f2 Formula) Formula { return Or(Not(f1), f2) }

// Iff builds the equivalence f1 ↔ f2.
func Iff(f1, f2 Formula) Formula {
	return And(Implies(f1, f2), Implies(f2, f1))
}

// AtLeastOne asserts that at least one of the given propositions is true.
func AtLeastOne(props ...Prop) Formula {
	subs := make([]Formula, len(props))
	for i, p := range props {
		subs[i] = p
	}
	return Or(subs...)
}

// AtMostOne asserts that no two of the given propositions are true
// simultaneously. Pairwise encoding: the groups in this model are small
// (13 ranks, 3 outcomes), so no commander variables are needed.
func AtMostOne(props ...Prop) Formula {
	var subs []Formula
	for i := 0; i < len(props); i++ {
		for j := i + 1; j < len(props); j++ {
			subs = append(subs, Or(Not(props[i]), Not(props[j])))
		}
	}
	return And(subs...)
}

// ExactlyOne asserts that exactly one of the given propositions is true.
func ExactlyOne(props ...Prop) Formula {
	return And(AtLeastOne(props...), AtMostOne(props...))
}

// A Constraint is a labelled formula required to hold in every model.
type Constraint struct {
	Label string
	F     Formula
}

// NewConstraint pairs a formula with a diagnostic label.
func NewConstraint(label string, f Formula) Constraint {
	return Constraint{Label: label, F: f}
}

func (c Constraint) String() string { return c.Label }

// Props returns the distinct propositions referenced by the constraint's
// formula, in first-reference order.
func (c Constraint) Props() []Prop {
	seen := make(map[string]bool)
	var props []Prop
	c.F.walk(func(p Prop) {
		if !seen[p.name] {
			seen[p.name] = true
			props = append(props, p)
		}
	})
	return props
}

// A Lit is a possibly negated proposition inside a CNF clause.
type Lit struct {
	P   Prop
	Neg bool
}

func (l Lit) String() string {
	if l.Neg {
		return "¬" + l.P.name
	}
	return l.P.name
}

// negation-normal-form nodes: literals, flat conjunctions, flat disjunctions.
type nform interface{ isNForm() }

type nlit struct {
	p   Prop
	neg bool
}
type nand []nform
type nor []nform

func (nlit) isNForm() {}
func (nand) isNForm() {}
func (nor) isNForm()  {}

func toNNF(f Formula, neg bool) nform {
	switch f := f.(type) {
	case Prop:
		return nlit{p: f, neg: neg}
	case not:
		return toNNF(f[0], !neg)
	case and:
		if neg {
			return norOf(f, true)
		}
		return nandOf(f, false)
	case or:
		if neg {
			return nandOf(f, true)
		}
		return norOf(f, false)
	default:
		panic(fmt.Sprintf("logic: unknown formula type %T", f))
	}
}

func nandOf(subs []Formula, neg bool) nform {
	var res nand
	for _, s := range subs {
		switch sub := toNNF(s, neg).(type) {
		case nand:
			res = append(res, sub...)
		default:
			res = append(res, sub)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

func norOf(subs []Formula, neg bool) nform {
	var res nor
	for _, s := range subs {
		switch sub := toNNF(s, neg).(type) {
		case nor:
			res = append(res, sub...)
		default:
			res = append(res, sub)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

// CNF converts f into conjunctive normal form. Disjunctions over
// conjunctions introduce fresh auxiliary propositions obtained from fresh
// (Tseitin-style, one implication direction per auxiliary), so clause
// count stays linear in formula size.
//
// An empty conjunction yields no clauses; an empty disjunction yields a
// single empty clause, which no assignment satisfies.
func CNF(f Formula, fresh func() Prop) [][]Lit {
	return cnfRec(toNNF(f, false), fresh)
}

func cnfRec(n nform, fresh func() Prop) [][]Lit {
	switch n := n.(type) {
	case nlit:
		return [][]Lit{{{P: n.p, Neg: n.neg}}}
	case nand:
		var res [][]Lit
		for _, sub := range n {
			res = append(res, cnfRec(sub, fresh)...)
		}
		return res
	case nor:
		var defs [][]Lit
		var clause []Lit
		for _, sub := range n {
			switch sub := sub.(type) {
			case nlit:
				clause = append(clause, Lit{P: sub.p, Neg: sub.neg})
			case nand:
				d := fresh()
				clause = append(clause, Lit{P: d})
				for _, conj := range sub {
					switch conj := conj.(type) {
					case nlit:
						defs = append(defs, []Lit{{P: d, Neg: true}, {P: conj.p, Neg: conj.neg}})
					case nor:
						inner := cnfRec(conj, fresh)
						// the disjunction itself is the last clause; earlier
						// clauses are definitional and hold unconditionally
						last := len(inner) - 1
						inner[last] = append(inner[last], Lit{P: d, Neg: true})
						defs = append(defs, inner...)
					default:
						panic("logic: conjunction nested in conjunction after NNF")
					}
				}
			default:
				panic("logic: disjunction nested in disjunction after NNF")
			}
		}
		return append(defs, clause)
	default:
		panic(fmt.Sprintf("logic: unknown NNF node %T", n))
	}
}
