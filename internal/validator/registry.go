package validator

// Registry holds the built-in row checks in registration order. Order is
// load-bearing: the confidence ledger must come out identical on every
// reprocessing of the same document, so checks always run in a fixed
// sequence rather than map order.
type Registry struct {
	checks []RowCheck
	byKey  map[string]RowCheck
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]RowCheck)}
}

// Register appends a check. Re-registering a key replaces the original in
// place, keeping its position.
func (r *Registry) Register(c RowCheck) {
	if _, ok := r.byKey[c.Key()]; ok {
		for i, existing := range r.checks {
			if existing.Key() == c.Key() {
				r.checks[i] = c
				break
			}
		}
	} else {
		r.checks = append(r.checks, c)
	}
	r.byKey[c.Key()] = c
}

// Get returns the check for a given key, or nil if not registered.
func (r *Registry) Get(key string) RowCheck {
	return r.byKey[key]
}

// All returns the checks in registration order.
func (r *Registry) All() []RowCheck {
	return r.checks
}

// DefaultRegistry returns the registry with every built-in check in its
// canonical order.
func DefaultRegistry(tol Tolerances) *Registry {
	r := NewRegistry()
	r.Register(ItemCodeCheck())
	r.Register(ArithmeticCheck(tol))
	r.Register(MagnitudeCheck(tol))
	r.Register(GrossConsistencyCheck())
	for _, c := range CorrectionFlagChecks() {
		r.Register(c)
	}
	return r
}
