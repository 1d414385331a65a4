package theory

import "fmt"

// DanglingRefError reports a constraint referencing a proposition absent
// from the registry. This is a construction-time defect: assembly fails
// and no theory is returned.
type DanglingRefError struct {
	Constraint string // constraint label
	Prop       string // missing proposition name
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("theory: constraint %q references unregistered proposition %q", e.Constraint, e.Prop)
}

// UnknownPropError reports a query naming a proposition the theory does
// not contain.
type UnknownPropError struct {
	Prop string
}

func (e *UnknownPropError) Error() string {
	return fmt.Sprintf("theory: no proposition named %q", e.Prop)
}
