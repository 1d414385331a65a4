package logic

// Prop is a named boolean variable. Identity is by name: two Props with
// the same name denote the same variable.
type Prop struct {
	name string
}

// Name returns the proposition's stable identifier.
func (p Prop) Name() string { return p.name }

func (p Prop) String() string { return p.name }

// Registry allocates the boolean variables of a theory. Registration is
// idempotent by name; the zero value is not usable, call NewRegistry.
type Registry struct {
	byName map[string]Prop
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Prop)}
}

// Var returns the proposition with the given name, creating it on first
// use. Repeated calls with the same name return the same Prop.
func (r *Registry) Var(name string) Prop {
	if p, ok := r.byName[name]; ok {
		return p
	}
	p := Prop{name: name}
	r.byName[name] = p
	r.order = append(r.order, name)
	return p
}

// Has reports whether a proposition with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered propositions.
func (r *Registry) Len() int { return len(r.order) }

// All returns every registered proposition in registration order. The
// order is stable, which keeps solver variable numbering deterministic.
func (r *Registry) All() []Prop {
	props := make([]Prop, len(r.order))
	for i, name := range r.order {
		props[i] = r.byName[name]
	}
	return props
}
