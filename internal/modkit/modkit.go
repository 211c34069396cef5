package modkit

// Module is the common surface for service modules that expose ports.
// Keep this tiny so modules stay decoupled
type Module interface {
	// Ports returns a module specific port set interface for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps and options.
// Modules typically expose New(deps Deps, opts ...Option) Module
type Builder func(Deps, ...Option) Module
