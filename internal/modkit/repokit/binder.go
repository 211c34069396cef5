package repokit

// Binder produces a repo implementation bound to one Queryer. Repos stay
// stateless; binding picks the pool or an open transaction at call time
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function into a Binder
type BindFunc[T any] func(Queryer) T

// Bind invokes the function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// RequireQueryer guards against wiring bugs where a nil Queryer leaks in
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind validates q before binding
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}
